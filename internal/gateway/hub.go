// Package gateway pushes portfolio events to websocket clients. Each client
// follows one profile; the hub keeps a short backlog per profile so a
// reconnecting client can resume from the last sequence number it saw.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"investor-edu/internal/markethours"
	"investor-edu/internal/metrics"
	"investor-edu/internal/model"
)

// Envelope types.
const (
	TypePortfolio = "portfolio"
	TypeStatus    = "status"
	TypePong      = "pong"
	TypeError     = "error"
)

const (
	backlogSize    = 100
	sendBufferSize = 64
)

// Envelope is one JSON frame sent to a client.
type Envelope struct {
	Type      string              `json:"type"`
	Profile   string              `json:"profile,omitempty"`
	Kind      string              `json:"kind,omitempty"`
	Seq       int64               `json:"seq,omitempty"`
	Initial   bool                `json:"initial,omitempty"`
	Portfolio *model.Portfolio    `json:"portfolio,omitempty"`
	Market    *markethours.Status `json:"market,omitempty"`
	Clients   int                 `json:"clients,omitempty"`
	Ping      int64               `json:"ping,omitempty"`
	Error     string              `json:"error,omitempty"`
	TS        time.Time           `json:"ts"`
}

// Hub tracks connected clients and routes events to the ones following the
// event's profile.
type Hub struct {
	metrics *metrics.Metrics
	now     func() time.Time

	mu       sync.RWMutex
	clients  map[*Client]bool
	seqs     map[string]int64
	backlogs map[string]*backlog
}

// NewHub creates an empty hub. m may be nil.
func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		metrics:  m,
		now:      time.Now,
		clients:  make(map[*Client]bool),
		seqs:     make(map[string]int64),
		backlogs: make(map[string]*backlog),
	}
}

// Run forwards events to clients until ctx ends or events is closed.
func (h *Hub) Run(ctx context.Context, events <-chan model.PortfolioEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.Broadcast(ev)
		}
	}
}

// Broadcast stamps ev with the profile's next sequence number, records it in
// the backlog and queues it for every client following the profile. Clients
// whose send buffer is full miss the frame and can resume from the backlog.
func (h *Hub) Broadcast(ev model.PortfolioEvent) {
	p := ev.Portfolio
	h.mu.Lock()
	h.seqs[ev.Profile]++
	env := Envelope{
		Type:      TypePortfolio,
		Profile:   ev.Profile,
		Kind:      ev.Kind,
		Seq:       h.seqs[ev.Profile],
		Portfolio: &p,
		TS:        ev.TS,
	}
	data, err := json.Marshal(env)
	if err != nil {
		h.mu.Unlock()
		slog.Error("encode envelope", "component", "gateway", "profile", ev.Profile, "error", err)
		return
	}
	bl, ok := h.backlogs[ev.Profile]
	if !ok {
		bl = newBacklog(backlogSize)
		h.backlogs[ev.Profile] = bl
	}
	bl.push(env.Seq, data)
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.Profile() != ev.Profile {
			continue
		}
		select {
		case c.send <- data:
		default:
			slog.Warn("client send buffer full, dropping frame", "component", "gateway", "profile", ev.Profile, "seq", env.Seq)
		}
	}
}

// Attach registers a client on conn following profile and starts its
// pumps. With since > 0 the client first receives every buffered frame
// after that sequence number; otherwise it receives the latest one.
func (h *Hub) Attach(conn *websocket.Conn, profile string, since int64) *Client {
	c := newClient(h, conn, profile)

	h.mu.Lock()
	h.clients[c] = true
	count := len(h.clients)
	h.mu.Unlock()
	h.setGauge(count)

	slog.Info("ws client connected", "component", "gateway", "profile", profile, "clients", count)

	c.sendBacklog(since)
	go c.writePump()
	go c.readPump()
	return c
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	count := len(h.clients)
	h.mu.Unlock()
	h.setGauge(count)

	slog.Info("ws client disconnected", "component", "gateway", "profile", c.Profile(), "clients", count)
}

func (h *Hub) setGauge(n int) {
	if h.metrics != nil {
		h.metrics.WSClients.Set(float64(n))
	}
}

// backlogSince returns buffered frames of profile after seq. With seq <= 0
// only the latest frame is returned.
func (h *Hub) backlogSince(profile string, seq int64) [][]byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	bl, ok := h.backlogs[profile]
	if !ok {
		return nil
	}
	if seq <= 0 {
		if last, ok := bl.latest(); ok {
			return [][]byte{last}
		}
		return nil
	}
	return bl.since(seq)
}

// Seq returns the last sequence number issued for profile.
func (h *Hub) Seq(profile string) int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.seqs[profile]
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RunStatus sends the market status and client count to every client each
// interval until ctx ends.
func (h *Hub) RunStatus(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.broadcastStatus()
		}
	}
}

func (h *Hub) broadcastStatus() {
	now := h.now()
	st := markethours.CurrentStatus(now)
	h.mu.RLock()
	defer h.mu.RUnlock()
	data, _ := json.Marshal(Envelope{Type: TypeStatus, Market: &st, Clients: len(h.clients), TS: now})
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
			time.Now().Add(time.Second))
		c.conn.Close()
	}
}
