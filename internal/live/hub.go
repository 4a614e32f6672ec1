// Package live pushes state changes to open browser tabs over a websocket.
package live

import (
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/wolfman30/doctor-booking/internal/observability/metrics"
	"github.com/wolfman30/doctor-booking/internal/session"
	"github.com/wolfman30/doctor-booking/internal/state"
	"github.com/wolfman30/doctor-booking/pkg/logging"
)

const sendBuffer = 16

// InboundMessage is what a tab sends.
type InboundMessage struct {
	Type string `json:"type"` // "ping"
}

// OutboundMessage is what we push to a tab.
type OutboundMessage struct {
	Type         string `json:"type"` // "snapshot", "appointment.added", "search.changed", "pong", "error"
	Appointments int    `json:"appointments"`
	SearchTerm   string `json:"search_term"`
	Text         string `json:"text,omitempty"`
}

type wsConn struct {
	conn *websocket.Conn
	send chan OutboundMessage
	once sync.Once
	done chan struct{}
}

func (c *wsConn) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

type room struct {
	conns       map[*wsConn]struct{}
	unsubscribe func()
}

// Hub fans store changes out to every connection of the same session.
type Hub struct {
	logger  *logging.Logger
	metrics *metrics.BookingMetrics

	mu    sync.Mutex
	rooms map[string]*room
	// watched holds sessions whose close hook is registered.
	watched map[string]struct{}
}

// NewHub creates an empty hub.
func NewHub(m *metrics.BookingMetrics, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		logger:  logger,
		metrics: m,
		rooms:   make(map[string]*room),
		watched: make(map[string]struct{}),
	}
}

// HandleWebSocket upgrades to a websocket and streams the caller's session
// changes until the tab disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Hub) serveWS(conn *websocket.Conn, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "missing session"})
		return
	}

	wsc := &wsConn{conn: conn, send: make(chan OutboundMessage, sendBuffer), done: make(chan struct{})}
	wsc.send <- snapshot(sess.Store)
	h.join(sess, wsc)
	defer h.leave(sess.ID, wsc)

	h.logger.Debug("live: connection opened", "session_id", sess.ID)
	go h.writeLoop(wsc)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("live: connection closed", "session_id", sess.ID, "error", err)
			return
		}
		if msg.Type == "ping" {
			h.deliver(wsc, OutboundMessage{Type: "pong"})
		}
	}
}

func (h *Hub) writeLoop(c *wsConn) {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := websocket.JSON.Send(c.conn, msg); err != nil {
				c.close()
				return
			}
		}
	}
}

func (h *Hub) join(sess *session.Session, c *wsConn) {
	id := sess.ID

	h.mu.Lock()
	rm, ok := h.rooms[id]
	if !ok {
		rm = &room{conns: make(map[*wsConn]struct{})}
		rm.unsubscribe = sess.Store.Subscribe(func(change state.Change) {
			h.Broadcast(id, fromChange(change))
		})
		h.rooms[id] = rm
	}
	rm.conns[c] = struct{}{}
	_, watching := h.watched[id]
	if !watching {
		h.watched[id] = struct{}{}
	}
	h.mu.Unlock()

	h.metrics.AddLiveConnections(1)
	if !watching {
		// Registered outside h.mu: a booking holds the session lock while
		// its change is broadcast.
		sess.OnClose(func() { h.closeRoom(id) })
	}
}

func (h *Hub) leave(sessionID string, c *wsConn) {
	c.close()

	h.mu.Lock()
	defer h.mu.Unlock()
	rm, ok := h.rooms[sessionID]
	if !ok {
		return
	}
	if _, ok := rm.conns[c]; !ok {
		return
	}
	delete(rm.conns, c)
	h.metrics.AddLiveConnections(-1)
	if len(rm.conns) == 0 {
		rm.unsubscribe()
		delete(h.rooms, sessionID)
	}
}

func (h *Hub) closeRoom(sessionID string) {
	h.mu.Lock()
	delete(h.watched, sessionID)
	rm, ok := h.rooms[sessionID]
	if ok {
		delete(h.rooms, sessionID)
		h.metrics.AddLiveConnections(-len(rm.conns))
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	rm.unsubscribe()
	for c := range rm.conns {
		c.close()
	}
}

// Broadcast queues msg for every connection of sessionID. Connections whose
// buffer is full are dropped.
func (h *Hub) Broadcast(sessionID string, msg OutboundMessage) {
	h.mu.Lock()
	rm, ok := h.rooms[sessionID]
	var conns []*wsConn
	if ok {
		conns = make([]*wsConn, 0, len(rm.conns))
		for c := range rm.conns {
			conns = append(conns, c)
		}
	}
	h.mu.Unlock()

	for _, c := range conns {
		h.deliver(c, msg)
	}
}

func (h *Hub) deliver(c *wsConn, msg OutboundMessage) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		h.logger.Warn("live: dropping slow connection")
		c.close()
	}
}

// Connections reports how many tabs are connected for sessionID.
func (h *Hub) Connections(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if rm, ok := h.rooms[sessionID]; ok {
		return len(rm.conns)
	}
	return 0
}

func snapshot(s *state.Store) OutboundMessage {
	return OutboundMessage{
		Type:         "snapshot",
		Appointments: len(s.Appointments()),
		SearchTerm:   s.SearchTerm(),
	}
}

func fromChange(c state.Change) OutboundMessage {
	return OutboundMessage{
		Type:         string(c.Kind),
		Appointments: c.AppointmentCount,
		SearchTerm:   c.SearchTerm,
	}
}
