package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/physics2d/internal/core/observability/log"
	"github.com/zeusync/physics2d/internal/core/systems/physics/resolver"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The viewer is served from anywhere during development.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Message types sent to viewers.
const (
	MessageWelcome        = "welcome"
	MessageSnapshot       = "snapshot"
	MessageCollisionBegin = "collision.begin"
	MessageCollisionEnd   = "collision.end"
)

// Message is the envelope of everything written to a viewer.
type Message struct {
	Type      string             `json:"type"`
	Tick      uint64             `json:"tick"`
	Client    string             `json:"client,omitempty"`
	Snapshot  *resolver.Snapshot `json:"snapshot,omitempty"`
	Collision *Collision         `json:"collision,omitempty"`
}

type Collision struct {
	Body   uint64   `json:"body"`
	Name   string   `json:"name,omitempty"`
	Others []uint64 `json:"others,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan Message
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// hub fans messages out to connected viewers. A viewer whose queue is full
// is disconnected rather than allowed to stall the simulation.
type hub struct {
	config  Config
	logger  log.Log
	mu      sync.Mutex
	clients map[string]*client
}

func newHub(config Config, logger log.Log) *hub {
	return &hub{
		config:  config,
		logger:  logger,
		clients: make(map[string]*client),
	}
}

// add registers conn and queues welcome as its first message.
func (h *hub) add(conn *websocket.Conn, welcome Message) (*client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) >= h.config.MaxClients {
		return nil, ErrMaxClientsReached
	}
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan Message, h.config.SendBuffer),
	}
	welcome.Client = c.id
	c.send <- welcome
	h.clients[c.id] = c
	return c, nil
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	if h.clients[c.id] == c {
		delete(h.clients, c.id)
	}
	h.mu.Unlock()
	c.close()
}

func (h *hub) full() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) >= h.config.MaxClients
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("Dropping slow client", log.String("client", id))
			delete(h.clients, id)
			c.close()
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		delete(h.clients, id)
		c.close()
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub.full() {
		http.Error(w, ErrMaxClientsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", log.Error(err))
		return
	}

	latest := s.latest.Load()
	c, err := s.hub.add(conn, Message{Type: MessageWelcome, Tick: latest.Tick, Snapshot: latest})
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(s.config.WriteTimeout))
		_ = conn.Close()
		return
	}
	s.logger.Info("Viewer connected", log.String("client", c.id), log.String("remote", r.RemoteAddr))

	go s.writePump(c)
	s.readPump(c)
}

// readPump discards viewer input and notices when the viewer goes away.
func (s *Server) readPump(c *client) {
	defer func() {
		s.hub.remove(c)
		s.logger.Info("Viewer disconnected", log.String("client", c.id))
	}()

	c.conn.SetReadLimit(1024)
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

func (s *Server) writePump(c *client) {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		if err := c.conn.WriteJSON(msg); err != nil {
			s.logger.Debug("Write to viewer failed", log.String("client", c.id), log.Error(err))
			s.hub.remove(c)
			return
		}
	}

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(s.config.WriteTimeout))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, err := s.latest.Load().Serialize()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(data); err != nil {
		s.logger.Warn("Failed to write snapshot", log.Error(err))
	}
}
