package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Event types pushed to connected clients.
const (
	EventStockUpdate = "stock_update"
	EventOrderUpdate = "order_update"
	EventNewMessage  = "new_message"
	EventUserStatus  = "user_status_update"
)

// Locals keys the upgrade guard sets before Serve runs.
const (
	LocalUserID = "ws_user_id"
	LocalRole   = "ws_user_role"
)

// Event is the JSON envelope every broadcast uses.
type Event struct {
	Type    string      `json:"type"`
	Action  string      `json:"action,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`

	// To limits delivery. The zero value reaches every connected client.
	To Audience `json:"-"`
}

// Audience selects recipients: a client receives the event when its user is in
// Users or its role is in Roles.
type Audience struct {
	Users []uuid.UUID
	Roles []string
}

func (a Audience) includes(c *Client) bool {
	if len(a.Users) == 0 && len(a.Roles) == 0 {
		return true
	}
	for _, id := range a.Users {
		if id == c.UserID {
			return true
		}
	}
	for _, r := range a.Roles {
		if r == c.Role {
			return true
		}
	}
	return false
}

// conn is the part of *websocket.Conn the hub writes to.
type conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one authenticated socket.
type Client struct {
	UserID uuid.UUID
	Role   string
	conn   conn
}

type outbound struct {
	payload []byte
	to      Audience
}

type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
	done       chan struct{}
	stopOnce   sync.Once
	mutex      sync.Mutex
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, 64),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.stopOnce.Do(func() { close(h.done) })
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for c := range h.clients {
				c.conn.Close()
				delete(h.clients, c)
			}
			h.mutex.Unlock()
			return

		case c := <-h.register:
			h.mutex.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug("ws client connected", slog.String("user_id", c.UserID.String()), slog.Int("clients", n))

		case c := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.conn.Close()
			}
			h.mutex.Unlock()

		case out := <-h.broadcast:
			h.mutex.Lock()
			for c := range h.clients {
				if !out.to.includes(c) {
					continue
				}
				if err := c.conn.WriteMessage(websocket.TextMessage, out.payload); err != nil {
					c.conn.Close()
					delete(h.clients, c)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// ClientCount returns the number of connected clients. A nil hub has none.
func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Publish encodes ev and queues it for delivery without blocking the caller.
// Events are dropped when the hub is stopped or its queue is full. A nil hub drops everything.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("ws encode event", slog.String("type", ev.Type), slog.Any("error", err))
		return
	}
	select {
	case <-h.done:
	case h.broadcast <- outbound{payload: msg, to: ev.To}:
	default:
		h.logger.Warn("ws queue full, event dropped", slog.String("type", ev.Type))
	}
}

// Serve is the websocket handler: it registers the connection under the user
// stored in its locals and reads until the client goes away.
func (h *Hub) Serve(wsConn *websocket.Conn) {
	client := &Client{conn: wsConn}
	if id, err := uuid.Parse(stringLocal(wsConn.Locals(LocalUserID))); err == nil {
		client.UserID = id
	}
	client.Role = stringLocal(wsConn.Locals(LocalRole))
	if client.UserID == uuid.Nil {
		wsConn.Close()
		return
	}

	if !h.add(client) {
		wsConn.Close()
		return
	}
	defer h.remove(client)

	for {
		if _, _, err := wsConn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func stringLocal(v interface{}) string {
	s, _ := v.(string)
	return s
}
