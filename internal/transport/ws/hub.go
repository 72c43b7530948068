package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"questionflow/internal/metrics"
)

// Message is the WebSocket envelope format
type Message struct {
	Type            string          `json:"type"`
	QuestionnaireID string          `json:"questionnaireId"`
	Payload         json.RawMessage `json:"payload"`
}

// Connection is one subscriber to a questionnaire's change feed
type Connection struct {
	QuestionnaireID string
	HostID          string
	Send            chan []byte
}

// broadcastMessage carries either data or a disconnect request. Both share
// one queue so a disconnect is delivered after earlier broadcasts.
type broadcastMessage struct {
	questionnaireID string
	data            []byte
	disconnect      bool
}

// Hub fans questionnaire changes out to every connected editor. It
// implements service.Broadcaster.
type Hub struct {
	conns map[string]map[*Connection]struct{} // questionnaireID -> subscribers
	mu    sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *broadcastMessage
	done       chan struct{}
	closeOnce  sync.Once

	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewHub creates a hub and starts its run loop
func NewHub(logger *slog.Logger, m *metrics.Metrics) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *broadcastMessage, 256),
		done:       make(chan struct{}),
		metrics:    m,
		logger:     logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.QuestionnaireID] == nil {
				h.conns[conn.QuestionnaireID] = make(map[*Connection]struct{})
			}
			h.conns[conn.QuestionnaireID][conn] = struct{}{}
			h.mu.Unlock()
			h.metrics.WSConnected(1)
			h.logger.Debug("feed subscriber connected", "questionnaire_id", conn.QuestionnaireID, "host_id", conn.HostID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if subs, ok := h.conns[conn.QuestionnaireID]; ok {
				if _, ok := subs[conn]; ok {
					h.drop(conn)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			if msg.disconnect {
				h.mu.Lock()
				for conn := range h.conns[msg.questionnaireID] {
					h.drop(conn)
				}
				h.mu.Unlock()
				continue
			}
			h.mu.RLock()
			for conn := range h.conns[msg.questionnaireID] {
				select {
				case conn.Send <- msg.data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for _, subs := range h.conns {
				for conn := range subs {
					h.drop(conn)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// drop closes a connection's send channel; callers hold h.mu
func (h *Hub) drop(conn *Connection) {
	subs := h.conns[conn.QuestionnaireID]
	delete(subs, conn)
	if len(subs) == 0 {
		delete(h.conns, conn.QuestionnaireID)
	}
	close(conn.Send)
	h.metrics.WSConnected(-1)
	h.logger.Debug("feed subscriber disconnected", "questionnaire_id", conn.QuestionnaireID, "host_id", conn.HostID)
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Broadcast queues a message for every subscriber of a questionnaire
func (h *Hub) Broadcast(questionnaireID, msgType string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode feed payload", "type", msgType, "error", err)
		return
	}
	data, _ := json.Marshal(&Message{Type: msgType, QuestionnaireID: questionnaireID, Payload: body})

	select {
	case h.broadcast <- &broadcastMessage{questionnaireID: questionnaireID, data: data}:
	case <-h.done:
	}
}

// Disconnect closes every subscriber of a questionnaire once the
// broadcasts queued before it are delivered
func (h *Hub) Disconnect(questionnaireID string) {
	select {
	case h.broadcast <- &broadcastMessage{questionnaireID: questionnaireID, disconnect: true}:
	case <-h.done:
	}
}

// Subscribers returns how many connections a questionnaire has
func (h *Hub) Subscribers(questionnaireID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[questionnaireID])
}

// Close stops the run loop and closes every connection
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
