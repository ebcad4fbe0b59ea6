package gateway

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"investor-edu/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	readLimit  = 4096
)

// Client is one websocket peer.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu      sync.RWMutex
	profile string
}

func newClient(h *Hub, conn *websocket.Conn, profile string) *Client {
	return &Client{hub: h, conn: conn, send: make(chan []byte, sendBufferSize), profile: profile}
}

// Profile returns the profile the client follows.
func (c *Client) Profile() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

func (c *Client) follow(profile string) {
	c.mu.Lock()
	c.profile = profile
	c.mu.Unlock()
}

// sendBacklog queues buffered frames. It runs before the write pump starts,
// so frames that do not fit are dropped.
func (c *Client) sendBacklog(since int64) {
	for _, data := range c.hub.backlogSince(c.Profile(), since) {
		select {
		case c.send <- markInitial(data):
		default:
			return
		}
	}
}

func markInitial(data []byte) []byte {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return data
	}
	env.Initial = true
	out, err := json.Marshal(env)
	if err != nil {
		return data
	}
	return out
}

func (c *Client) reply(env Envelope) {
	env.TS = c.hub.now()
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// writePump drains the send channel and keeps the connection alive with
// pings. Frames queued while a write is in progress go out in the same
// websocket message, separated by newlines.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(msg)
			for i, n := 0, len(c.send); i < n; i++ {
				_, _ = w.Write([]byte{'\n'})
				_, _ = w.Write(<-c.send)
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// clientMsg is a frame sent by the client: {"type":"ping"} or
// {"ping": <ms>} for an application-level ping, or
// {"type":"follow","profile":"..."} to switch profile.
type clientMsg struct {
	Type    string `json:"type"`
	Profile string `json:"profile"`
	Since   int64  `json:"since"`
	Ping    int64  `json:"ping"`
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("ws read failed", "component", "gateway", "error", err)
			}
			return
		}
		var msg clientMsg
		if json.Unmarshal(raw, &msg) != nil {
			c.reply(Envelope{Type: TypeError, Error: "invalid message"})
			continue
		}
		switch {
		case msg.Type == "follow":
			profile, err := session.NormalizeProfile(msg.Profile)
			if err != nil {
				c.reply(Envelope{Type: TypeError, Error: err.Error()})
				continue
			}
			c.follow(profile)
			c.sendBacklog(msg.Since)
		case msg.Type == "ping" || msg.Ping > 0:
			c.reply(Envelope{Type: TypePong, Ping: msg.Ping})
		}
	}
}
