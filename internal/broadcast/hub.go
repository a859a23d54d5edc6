package broadcast

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Publisher fans an event payload out to every subscriber of a topic.
// Publishing is best effort and never blocks ride-critical paths.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// WSHub delivers events to connected websocket clients grouped by topic.
// A connection may subscribe to several topics; slow or broken
// connections are dropped rather than back-pressuring the hub.
type WSHub struct {
	mu     sync.RWMutex
	topics map[string]map[*client]struct{}
	logger *zap.Logger
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes, gorilla allows one writer
}

func NewWSHub(logger *zap.Logger) *WSHub {
	return &WSHub{
		topics: make(map[string]map[*client]struct{}),
		logger: logger,
	}
}

// Register attaches a websocket connection to the given topics and
// returns an unregister func the caller must invoke when the
// connection closes.
func (h *WSHub) Register(conn *websocket.Conn, topics []string) func() {
	c := &client{conn: conn}

	h.mu.Lock()
	for _, t := range topics {
		set, ok := h.topics[t]
		if !ok {
			set = make(map[*client]struct{})
			h.topics[t] = set
		}
		set[c] = struct{}{}
	}
	h.mu.Unlock()

	return func() { h.remove(c, topics) }
}

func (h *WSHub) remove(c *client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range topics {
		set, ok := h.topics[t]
		if !ok {
			continue
		}
		delete(set, c)
		if len(set) == 0 {
			delete(h.topics, t)
		}
	}
}

// SubscriberCount reports how many connections are attached to a topic.
func (h *WSHub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *WSHub) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	subs := make([]*client, 0, len(h.topics[topic]))
	for c := range h.topics[topic] {
		subs = append(subs, c)
	}
	h.mu.RUnlock()

	for _, c := range subs {
		c.mu.Lock()
		err := c.conn.WriteMessage(websocket.TextMessage, data)
		c.mu.Unlock()
		if err != nil {
			// Reader loop closes the connection and unregisters it.
			h.logger.Debug("websocket write failed, dropping subscriber",
				zap.String("topic", topic), zap.Error(err))
		}
	}
	return nil
}
