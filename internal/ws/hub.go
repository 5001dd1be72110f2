package ws

import (
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// EventType identifies the shape of a broadcast event.
type EventType string

const (
	EventTelemetryUpdate EventType = "TELEMETRY_UPDATE"
	EventAlertNew        EventType = "ALERT_NEW"
)

// AlertPayload is the alert block of an ALERT_NEW event.
type AlertPayload struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Event is one message delivered to every connected subscriber.
// TELEMETRY_UPDATE events carry Data; ALERT_NEW events carry Alert.
type Event struct {
	Type      EventType     `json:"type"`
	PatientID string        `json:"patient_id"`
	Data      interface{}   `json:"data,omitempty"`
	Alert     *AlertPayload `json:"alert,omitempty"`
}

// Sink is one subscriber delivery target. WebSocket connections satisfy it
// through wsSink; tests inject failing implementations.
type Sink interface {
	WriteJSON(v interface{}) error
	Close() error
}

// wsSink wraps a websocket connection with a write mutex, since gorilla
// connections do not support concurrent writers.
type wsSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSink) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *wsSink) Close() error {
	return s.conn.Close()
}

// Hub maintains the set of live subscriber connections and fans events out
// to all of them. Delivery is best-effort: no acknowledgment, no replay, and
// a failing subscriber never affects the others.
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	sinks    map[string]Sink
}

// NewHub creates an empty subscriber hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Dashboard may be served from any origin
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sinks: make(map[string]Sink),
	}
}

// Register adds a sink to the registry and returns its handle.
func (h *Hub) Register(s Sink) string {
	handle := uuid.New().String()
	h.mu.Lock()
	h.sinks[handle] = s
	h.mu.Unlock()
	return handle
}

// Unregister removes a sink from the registry. Unknown handles are ignored.
func (h *Hub) Unregister(handle string) {
	h.mu.Lock()
	delete(h.sinks, handle)
	h.mu.Unlock()
}

// Count returns the number of registered subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sinks)
}

// Broadcast delivers an event to every registered subscriber. A failed send
// is logged, the broken sink is removed, and delivery to the remaining
// subscribers continues. Broadcast never returns an error to the caller.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	targets := make(map[string]Sink, len(h.sinks))
	for handle, sink := range h.sinks {
		targets[handle] = sink
	}
	h.mu.RUnlock()

	for handle, sink := range targets {
		if err := sink.WriteJSON(event); err != nil {
			log.Printf("Dropping subscriber %s: %v", handle, err)
			h.Unregister(handle)
			sink.Close()
		}
	}
}

// HandleWS upgrades the request to a WebSocket subscriber session. The read
// loop only keeps the connection alive; inbound messages are discarded. The
// handle is removed when the client disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		return
	}

	handle := h.Register(&wsSink{conn: conn})
	log.Printf("Subscriber %s connected from %s", handle, r.RemoteAddr)

	defer func() {
		h.Unregister(handle)
		conn.Close()
		log.Printf("Subscriber %s disconnected", handle)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
	}
}
