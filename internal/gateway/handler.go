package gateway

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"investor-edu/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:    1024,
	WriteBufferSize:   4096,
	CheckOrigin:       func(*http.Request) bool { return true },
	EnableCompression: true,
}

// ServeHTTP upgrades the request and attaches the client. The profile comes
// from the "profile" query parameter or the X-Profile-ID header; "since"
// resumes after a sequence number.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("profile")
	if raw == "" {
		raw = r.Header.Get("X-Profile-ID")
	}
	profile, err := session.NormalizeProfile(raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var since int64
	if s := r.URL.Query().Get("since"); s != "" {
		if since, err = strconv.ParseInt(s, 10, 64); err != nil {
			http.Error(w, "since must be an integer", http.StatusBadRequest)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "component", "gateway", "error", err)
		return
	}
	h.Attach(conn, profile, since)
}
