// Package feed streams session snapshots to websocket clients as JSON, for
// overlays and remote monitors. It is read-only: clients cannot steer the bot.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/soocke/poker-pixel-bot/domain/session"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Message is the wire form of a snapshot.
type Message struct {
	Session       string            `json:"session"`
	Seq           uint64            `json:"seq"`
	At            time.Time         `json:"at"`
	Status        string            `json:"status"`
	Regions       map[string]string `json:"regions"`
	Action        string            `json:"action,omitempty"`
	LastAction    string            `json:"last_action,omitempty"`
	Dispatches    int               `json:"dispatches"`
	DispatchError string            `json:"dispatch_error,omitempty"`
	CycleMillis   float64           `json:"cycle_ms"`
	Running       bool              `json:"running"`
}

// NewMessage converts a snapshot.
func NewMessage(s session.Snapshot) Message {
	return Message{
		Session:       s.Session,
		Seq:           s.Seq,
		At:            s.At,
		Status:        s.Label(),
		Regions:       s.Regions(),
		Action:        s.Action.String(),
		LastAction:    s.LastAction.String(),
		Dispatches:    s.Dispatches,
		DispatchError: s.DispatchErr,
		CycleMillis:   float64(s.CycleTime) / float64(time.Millisecond),
		Running:       s.Running,
	}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub upgrades HTTP requests and broadcasts every published snapshot to all
// connected clients. Slow clients drop frames rather than stall the hub.
type Hub struct {
	pub      *session.Publisher
	snaps    <-chan session.Snapshot
	unsub    func()
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub(pub *session.Publisher, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	snaps, unsub := pub.Subscribe()
	return &Hub{
		pub:    pub,
		snaps:  snaps,
		unsub:  unsub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP implements http.Handler.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("feed upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 8)}
	if snap, ok := h.pub.Latest(); ok {
		if data, err := json.Marshal(NewMessage(snap)); err == nil {
			c.send <- data
		}
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("feed client connected", "remote", r.RemoteAddr, "clients", n)

	go h.writePump(c)
	go h.readPump(c)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run forwards snapshots until ctx ends. The hub subscribes at construction,
// so nothing published after NewHub is missed.
func (h *Hub) Run(ctx context.Context) {
	defer h.unsub()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case s, ok := <-h.snaps:
			if !ok {
				return
			}
			data, err := json.Marshal(NewMessage(s))
			if err != nil {
				h.logger.Error("feed encode failed", "error", err)
				continue
			}
			h.broadcast(data)
		}
	}
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Debug("feed client lagging, frame dropped")
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// readPump discards client input and tracks liveness through pongs.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("feed read error", "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

// ListenAndServe serves the hub at /feed on addr until ctx ends.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/feed", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go h.Run(ctx)
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	h.logger.Info("feed listening", "addr", addr)
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
