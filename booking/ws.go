package booking

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 32
)

// Event is what live-feed subscribers receive on every booking change.
type Event struct {
	Type         string `json:"type"`
	BookingID    string `json:"bookingId"`
	Status       string `json:"status,omitempty"`
	Availability bool   `json:"availability"`
}

// subscriber owns one connection. Only its writer goroutine writes to conn.
type subscriber struct {
	conn      *websocket.Conn
	send      chan []byte
	closeCode int // close frame sent once send is drained; 0 sends none
}

func (s *subscriber) writePump(log zerolog.Logger) {
	defer s.conn.Close()
	for msg := range s.send {
		s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			// Closing conn ends the reader, which unsubscribes.
			log.Debug().Err(err).Msg("websocket write failed")
			return
		}
	}
	if s.closeCode != 0 {
		msg := websocket.FormatCloseMessage(s.closeCode, "")
		s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	}
}

// Hub fans booking events out to websocket subscribers keyed by "<targetType>:<targetId>".
type Hub struct {
	upgrader websocket.Upgrader
	log      zerolog.Logger

	mu          sync.Mutex
	subscribers map[string]map[*subscriber]struct{}
	closed      bool
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:         log.With().Str("component", "ws").Logger(),
		subscribers: make(map[string]map[*subscriber]struct{}),
	}
}

// HandleWS serves GET /ws/bookings/:targetType/:targetId.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	targetType := ps.ByName("targetType")
	if targetType != "hotel" && targetType != "restaurant" {
		http.Error(w, "unknown target type", http.StatusBadRequest)
		return
	}
	key := targetType + ":" + ps.ByName("targetId")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	sub := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.add(key, sub) {
		conn.Close()
		return
	}
	go sub.writePump(h.log)

	for {
		// Keeps the connection open until the client goes away.
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(key, sub, 0)
}

func (h *Hub) add(key string, sub *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.subscribers[key] == nil {
		h.subscribers[key] = make(map[*subscriber]struct{})
	}
	h.subscribers[key][sub] = struct{}{}
	return true
}

func (h *Hub) remove(key string, sub *subscriber, code int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(key, sub, code)
}

// removeLocked closes the subscriber's queue once; its writer then sends the
// close frame for code and closes the connection.
func (h *Hub) removeLocked(key string, sub *subscriber, code int) {
	subs, ok := h.subscribers[key]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.subscribers, key)
	}
	sub.closeCode = code
	close(sub.send)
}

// Broadcast queues ev for every subscriber of key without waiting on the network.
// A subscriber whose queue is full is dropped.
func (h *Hub) Broadcast(key string, ev Event) {
	if h == nil || key == "" {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error().Err(err).Msg("marshal event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers[key] {
		select {
		case sub.send <- data:
		default:
			h.log.Warn().Str("target", key).Msg("dropping slow live-feed subscriber")
			h.removeLocked(key, sub, websocket.CloseTryAgainLater)
		}
	}
}

// Subscribers is the number of open connections listening on key.
func (h *Hub) Subscribers(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[key])
}

// Close sends a close frame to every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for key, subs := range h.subscribers {
		for sub := range subs {
			h.removeLocked(key, sub, websocket.CloseGoingAway)
		}
	}
}
