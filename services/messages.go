package services

import (
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Pending messages per client before it is considered too slow
const CLIENT_BUFFER = 32

type HubClient struct {
	Send chan []byte
}

// Relays chat messages between the websocket clients of every instance.
// Without a bus it only broadcasts to local clients
type MessageHub struct {
	mu      sync.Mutex
	clients map[*HubClient]struct{}
	bus     EventPublisher
	logger  *zap.Logger
}

func (h *MessageHub) Register() *HubClient {
	client := &HubClient{
		Send: make(chan []byte, CLIENT_BUFFER),
	}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client connected", zap.Int("clients", total))
	return client
}

func (h *MessageHub) Unregister(client *HubClient) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.Send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.logger.Info("client disconnected", zap.Int("clients", total))
	}
}

func (h *MessageHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *MessageHub) Publish(message []byte) error {
	if h.bus == nil {
		h.Broadcast(message)
		return nil
	}
	return h.bus.Publish(MESSAGES_SUBJECT, message)
}

// Slow clients lose the message instead of blocking the rest
func (h *MessageHub) Broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.Send <- message:
		default:
			h.logger.Warn("client buffer full, message dropped")
		}
	}
}

func (h *MessageHub) HandleMsg(m *nats.Msg) {
	h.Broadcast(m.Data)
}

func NewMessageHub(bus EventPublisher, logger *zap.Logger) *MessageHub {
	return &MessageHub{
		clients: make(map[*HubClient]struct{}),
		bus:     bus,
		logger:  logger,
	}
}
