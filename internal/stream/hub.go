package stream

import (
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rickgao/tokenscope/internal/model"
)

// SnapshotSource provides the current derived view for new clients.
type SnapshotSource interface {
	View() []model.Token
	Criteria() model.Criteria
}

// HubObserver is notified about client churn and drops. Optional.
type HubObserver interface {
	ClientConnected()
	ClientDisconnected()
	FrameDropped()
}

// HubConfig holds hub settings.
type HubConfig struct {
	SendBuffer   int           // Per-client queued frames (default: 256)
	PingInterval time.Duration // Server ping cadence (default: 15s)
	PongTimeout  time.Duration // Read deadline extended by each pong (default: 45s)
	WriteTimeout time.Duration // Per-frame write deadline (default: 10s)
}

// DefaultHubConfig returns sensible defaults.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		SendBuffer:   256,
		PingInterval: 15 * time.Second,
		PongTimeout:  45 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Hub fans frames out to connected websocket clients.
type Hub struct {
	cfg      HubConfig
	upgrader websocket.Upgrader
	source   SnapshotSource
	observer HubObserver
	logger   *slog.Logger

	seq atomic.Int64

	mu      sync.RWMutex
	clients map[uuid.UUID]*peer
	closed  bool
}

// peer is one connected client.
type peer struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (p *peer) close() {
	p.once.Do(func() {
		close(p.done)
		p.conn.Close()
	})
}

// NewHub creates a hub. Zero config fields take their defaults. source may
// be nil, in which case new clients get no snapshot.
func NewHub(cfg HubConfig, source SnapshotSource, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultHubConfig()
	if cfg.SendBuffer < 1 {
		cfg.SendBuffer = def.SendBuffer
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = def.PongTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	return &Hub{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		source:  source,
		logger:  logger,
		clients: make(map[uuid.UUID]*peer),
	}
}

// SetObserver installs an observer. Call before serving.
func (h *Hub) SetObserver(o HubObserver) {
	h.observer = o
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	p := &peer{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, h.cfg.SendBuffer),
		done: make(chan struct{}),
	}

	// Registering under the write lock orders the snapshot before any
	// broadcast the client will see.
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	if h.source != nil {
		data, err := Encode(TypeSnapshot, h.seq.Load(), SnapshotMsg{
			Tokens:   h.source.View(),
			Criteria: h.source.Criteria(),
		})
		if err != nil {
			h.logger.Error("encode snapshot", "error", err)
		} else {
			p.send <- data
		}
	}
	h.clients[p.id] = p
	h.mu.Unlock()

	if h.observer != nil {
		h.observer.ClientConnected()
	}
	h.logger.Debug("stream client connected", "client", p.id, "remote", r.RemoteAddr)

	go h.writeLoop(p)
	go h.readLoop(p)
}

// Publish broadcasts an applied price update.
func (h *Hub) Publish(u model.PriceUpdate) {
	h.Broadcast(TypePriceUpdate, u)
}

// Broadcast encodes v once and queues it for every client. The sequence
// number is taken under the read lock so it never races a snapshot.
func (h *Hub) Broadcast(typ string, v any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := Encode(typ, h.seq.Add(1), v)
	if err != nil {
		h.logger.Error("encode frame", "type", typ, "error", err)
		return
	}

	for _, p := range h.clients {
		select {
		case p.send <- data:
		default:
			if h.observer != nil {
				h.observer.FrameDropped()
			}
			h.logger.Warn("client send queue full, dropping frame", "client", p.id)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[uuid.UUID]*peer)
	h.mu.Unlock()

	for _, p := range clients {
		h.closePeer(p)
	}
}

// remove unregisters p if it is still registered.
func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	_, ok := h.clients[p.id]
	delete(h.clients, p.id)
	h.mu.Unlock()

	if ok {
		h.closePeer(p)
	}
}

func (h *Hub) closePeer(p *peer) {
	p.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	p.close()
	if h.observer != nil {
		h.observer.ClientDisconnected()
	}
	h.logger.Debug("stream client disconnected", "client", p.id)
}

// writeLoop drains the peer's send queue and pings on an interval.
func (h *Hub) writeLoop(p *peer) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case data := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("stream write failed", "client", p.id, "error", err)
				h.remove(p)
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(h.cfg.WriteTimeout)
			if err := p.conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				h.remove(p)
				return
			}
		}
	}
}

// readLoop consumes client frames (ignored) so control frames are
// processed, and detects disconnects.
func (h *Hub) readLoop(p *peer) {
	p.conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	})

	for {
		if _, _, err := p.conn.ReadMessage(); err != nil {
			h.remove(p)
			return
		}
	}
}
