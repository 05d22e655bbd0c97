package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/logging"
	"github.com/polychlorinated/structured-data-web-scraper/internal/infrastructure/monitoring"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// Event types pushed to stream subscribers
const (
	EventSystem      = "system"
	EventRunStarted  = "run_started"
	EventPage        = "page"
	EventRunComplete = "run_complete"
)

// Event is one progress message for stream subscribers
type Event struct {
	Type      string `json:"type"`
	RunID     string `json:"run_id,omitempty"`
	Job       string `json:"job,omitempty"`
	URL       string `json:"url,omitempty"`
	Page      int    `json:"page,omitempty"`
	Pages     int    `json:"pages,omitempty"`
	Records   int    `json:"records,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Message is one inbound client frame
type Message struct {
	Type string `json:"type"`
}

// client is one connected subscriber. Writes go through the send
// channel; gorilla connections allow a single writer.
type client struct {
	id   string
	conn *websocket.Conn
	send chan interface{}
}

// Hub fans run progress events out to stream subscribers
type Hub struct {
	logger  *logging.Logger
	metrics *monitoring.Metrics

	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub creates a subscriber hub
func NewHub(logger *logging.Logger, metrics *monitoring.Metrics) *Hub {
	return &Hub{
		logger:  logger,
		metrics: metrics,
		clients: make(map[string]*client),
	}
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	cl := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan interface{}, 64),
	}

	h.register(cl)
	defer h.unregister(cl)

	go h.writeLoop(cl)

	// Send welcome message
	h.queue(cl, Event{
		Type:      EventSystem,
		Message:   "Connected to extraction stream",
		Timestamp: time.Now().Unix(),
	})

	// Listen for messages
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			h.logger.Debug("websocket read ended", zap.String("client", cl.id), zap.Error(err))
			break
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", msg.Type)
		}

		switch msg.Type {
		case "ping":
			h.queue(cl, map[string]interface{}{"type": "pong"})
		default:
			h.sendError(cl, "unknown message type")
		}
	}
}

// Broadcast queues an event for every connected subscriber
func (h *Hub) Broadcast(event Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, cl := range h.clients {
		h.queue(cl, event)
	}
}

// Clients reports the number of connected subscribers
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(cl *client) {
	h.mu.Lock()
	h.clients[cl.id] = cl
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
	h.logger.Debug("stream subscriber connected", zap.String("client", cl.id))
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	_, ok := h.clients[cl.id]
	if ok {
		delete(h.clients, cl.id)
		close(cl.send)
	}
	h.mu.Unlock()

	if ok && h.metrics != nil {
		h.metrics.DecWSConnections()
	}
}

// queue enqueues without blocking; slow consumers lose events rather
// than stalling the run.
func (h *Hub) queue(cl *client, data interface{}) {
	select {
	case cl.send <- data:
	default:
	}
}

func (h *Hub) writeLoop(cl *client) {
	for data := range cl.send {
		if err := cl.conn.WriteJSON(data); err != nil {
			cl.conn.Close()
			return
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("out", "event")
		}
	}
}

func (h *Hub) sendError(cl *client, msg string) {
	h.queue(cl, map[string]interface{}{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	})
}
