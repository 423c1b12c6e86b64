package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/CaioAP/scuderia/internal/models"
)

// Feed event types.
const (
	EventMessageCreated = "message.created"
	EventMessageLiked   = "message.liked"
	EventMessageUnliked = "message.unliked"
)

var ErrHubStopped = errors.New("hub stopped")

// Event is what subscribers receive. Message is only set for
// message.created; like events tell clients which message to refresh.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	MessageID int64           `json:"messageId"`
	UserID    int64           `json:"userId"`
	Message   *models.Message `json:"message,omitempty"`
	At        time.Time       `json:"at"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(typ string, messageID, userID int64) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      typ,
		MessageID: messageID,
		UserID:    userID,
		At:        time.Now().UTC(),
	}
}

type Client struct {
	UserID int64
	Send   chan []byte
	Conn   *websocket.Conn // nil for in-process subscribers
}

func NewClient(userID int64, conn *websocket.Conn) *Client {
	return &Client{UserID: userID, Send: make(chan []byte, 256), Conn: conn}
}

type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan []byte
	mu         sync.RWMutex

	done  chan struct{}
	gauge prometheus.Gauge
	log   *zap.SugaredLogger
}

// NewHub creates a hub; gauge may be nil.
func NewHub(log *zap.SugaredLogger, gauge prometheus.Gauge) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		gauge:      gauge,
		log:        log,
	}
}

// Run serves the hub until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.Clients {
				delete(h.Clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			h.setGauge()
			h.log.Info("websocket hub stopped")
			return
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client] = true
			h.mu.Unlock()
			h.setGauge()
			h.log.Debugw("websocket client registered", "user_id", client.UserID)
		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			h.setGauge()
		case msg := <-h.Broadcast:
			h.mu.Lock()
			for client := range h.Clients {
				select {
				case client.Send <- msg:
				default:
					// slow consumer
					close(client.Send)
					delete(h.Clients, client)
					h.log.Warnw("dropping slow websocket client", "user_id", client.UserID)
				}
			}
			h.mu.Unlock()
			h.setGauge()
		}
	}
}

// Publish queues evt for every connected client.
func (h *Hub) Publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	select {
	case h.Broadcast <- data:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers c unless the hub has stopped.
func (h *Hub) Subscribe(ctx context.Context, c *Client) error {
	select {
	case h.Register <- c:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Leave unregisters c; it is a no-op once the hub has stopped.
func (h *Hub) Leave(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Clients)
}

func (h *Hub) setGauge() {
	if h.gauge != nil {
		h.gauge.Set(float64(h.Len()))
	}
}
