package api

import (
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"goanalytics/domain/analysis"
	"goanalytics/internal"
)

// ClientBuffer is the per-client event backlog; a slower client misses events
const ClientBuffer = 10

// SSEHub fans settlement notifications out to Server-Sent Events clients.
// It implements ports.NotificationSink.
type SSEHub struct {
	clients    map[chan analysis.Notification]bool
	register   chan chan analysis.Notification
	unregister chan chan analysis.Notification
	broadcast  chan analysis.Notification
	count      chan chan int
	done       chan struct{}
	log        *internal.Logger

	pingInterval time.Duration
}

// NewSSEHub creates a hub and starts its dispatch loop
func NewSSEHub(logger *internal.Logger) *SSEHub {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	hub := &SSEHub{
		clients:      make(map[chan analysis.Notification]bool),
		register:     make(chan chan analysis.Notification),
		unregister:   make(chan chan analysis.Notification),
		broadcast:    make(chan analysis.Notification, 100),
		count:        make(chan chan int),
		done:         make(chan struct{}),
		log:          logger.With("SSE"),
		pingInterval: 30 * time.Second,
	}

	go hub.run()
	return hub
}

// run owns the client set; every mutation goes through it.
// register and unregister are unbuffered so nothing is queued once run exits.
func (h *SSEHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.Debug("client registered (total clients: %d)", len(h.clients))

		case client := <-h.unregister:
			if h.clients[client] {
				delete(h.clients, client)
				close(client)
				h.log.Debug("client unregistered (remaining clients: %d)", len(h.clients))
			}

		case n := <-h.broadcast:
			for client := range h.clients {
				select {
				case client <- n:
				default:
					h.log.Warn("client channel full, skipping %s event", n.Kind)
				}
			}

		case reply := <-h.count:
			reply <- len(h.clients)

		case <-h.done:
			for client := range h.clients {
				close(client)
			}
			h.clients = nil
			return
		}
	}
}

// Notify queues n for every connected client without blocking
func (h *SSEHub) Notify(n analysis.Notification) {
	select {
	case h.broadcast <- n:
	case <-h.done:
	default:
		h.log.Warn("broadcast channel full, dropping %s event", n.Kind)
	}
}

// Subscribe registers a client channel. The returned cancel func unregisters it;
// the channel is closed once the hub drops it.
func (h *SSEHub) Subscribe() (<-chan analysis.Notification, func()) {
	client := make(chan analysis.Notification, ClientBuffer)
	select {
	case h.register <- client:
	case <-h.done:
		close(client)
		return client, func() {}
	}
	return client, func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
	}
}

// ClientCount returns the number of connected clients
func (h *SSEHub) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Close stops the dispatch loop and closes every client channel
func (h *SSEHub) Close() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

// HandleSSE streams notifications as "session" events until the client disconnects
func (h *SSEHub) HandleSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "Cache-Control")

	events, cancel := h.Subscribe()
	defer cancel()

	// Send headers now so clients see the stream open before the first event
	c.Status(200)
	c.Writer.Flush()

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case n, ok := <-events:
			if !ok {
				return false
			}
			payload, err := json.Marshal(n)
			if err != nil {
				h.log.Error("failed to marshal event: %v", err)
				return true
			}
			c.SSEvent("session", string(payload))
			return true

		case <-ticker.C:
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}
