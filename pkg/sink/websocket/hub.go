// Package websocket implements a messageframer.Sink that pushes burst
// and sync-loss events straight out to connected dashboard clients.
//
// dbehnke-dmr-nexus's WebSocketHub serializes several concurrent event
// producers (peer connects, bridge config changes, status updates)
// through an internal register/unregister/broadcast channel loop. This
// daemon has exactly one producer: the burst framer's single symbol-
// processing goroutine (spec.md §5), which is already serialized by
// construction, so there is nothing left for a channel-based event
// loop to arbitrate. This hub fans events out synchronously under a
// mutex instead, and the generic Type/map[string]interface{} event
// envelope is replaced with the two concrete message shapes the
// framer actually emits.
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dbehnke/dmr-burstframer/pkg/framer"
	"github.com/dbehnke/dmr-burstframer/pkg/logger"
)

const (
	clientSendBuffer = 256
	readBufferSize   = 1024
	writeBufferSize  = 1024
)

// burstMessage is the wire shape pushed to dashboard clients for a
// framed burst.
type burstMessage struct {
	Type        string `json:"type"`
	Sync        string `json:"sync"`
	Lock        string `json:"lock"`
	BitErrors   uint8  `json:"bit_errors"`
	Timeslot    int    `json:"timeslot"`
	TimestampMs uint64 `json:"timestamp_ms"`
}

// syncLossMessage is the wire shape pushed to dashboard clients for a
// sync-loss event.
type syncLossMessage struct {
	Type        string `json:"type"`
	Bits        uint32 `json:"bits"`
	TimestampMs uint64 `json:"timestamp_ms"`
}

// client is one connected dashboard WebSocket connection.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans framed bursts and sync-loss events out to every connected
// dashboard client, implementing messageframer.Sink.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	log     *logger.Logger
}

// NewHub creates an empty dashboard hub.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     log.WithComponent("sink.websocket"),
	}
}

// OnBurst implements messageframer.Sink.
func (h *Hub) OnBurst(b framer.Burst) {
	h.push(burstMessage{
		Type:        "burst",
		Sync:        b.Sync.Class.String(),
		Lock:        b.Lock.String(),
		BitErrors:   b.BitErrors,
		Timeslot:    b.Timeslot,
		TimestampMs: b.TimestampMs,
	})
}

// OnSyncLoss implements messageframer.Sink.
func (h *Hub) OnSyncLoss(loss framer.SyncLoss) {
	h.push(syncLossMessage{
		Type:        "sync_loss",
		Bits:        loss.Bits,
		TimestampMs: loss.TimestampMs,
	})
}

// push marshals msg once and fans it out to every connected client,
// dropping it for any client whose send buffer is full rather than
// blocking the caller (the symbol-processing goroutine).
func (h *Hub) push(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to marshal dashboard message", logger.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Warn("dashboard client send buffer full, dropping event", logger.String("client_id", c.id))
		}
	}
}

// Handler upgrades incoming connections and registers them as
// dashboard clients.
func (h *Hub) Handler() http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  readBufferSize,
		WriteBufferSize: writeBufferSize,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			http.Error(w, "websocket upgrade failed", http.StatusBadRequest)
			return
		}
		c := &client{id: r.RemoteAddr, conn: conn, send: make(chan []byte, clientSendBuffer)}
		h.register(c)

		go h.readUntilClosed(c)
		go writeLoop(c)
	})
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("dashboard client registered", logger.String("client_id", c.id))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	h.log.Debug("dashboard client unregistered", logger.String("client_id", c.id))
}

// readUntilClosed drains inbound frames purely to detect the
// connection closing; dashboard clients never send commands.
func (h *Hub) readUntilClosed(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(readBufferSize)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeLoop(c *client) {
	for msg := range c.send {
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

// Close disconnects every connected dashboard client. Safe to call
// during daemon shutdown whether or not clients are still connected.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
	}
	h.clients = make(map[*client]struct{})
}

// ClientCount returns the number of connected dashboard clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
