package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one websocket connection of a signed-in user.
type Client struct {
	UserID string
	Conn   Conn
}

// Message is delivered to every connection of UserID.
type Message struct {
	UserID string
	Data   []byte
}

// Event is the JSON body pushed to clients after a workspace change.
type Event struct {
	Type       string      `json:"type"`
	Action     string      `json:"action"`
	BusinessID string      `json:"businessId,omitempty"`
	CashbookID string      `json:"cashbookId,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
}

type Hub struct {
	Clients    map[string]map[Conn]bool
	Register   chan Client
	Unregister chan Client
	Broadcast  chan Message
	mutex      sync.Mutex
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		Clients:    make(map[string]map[Conn]bool),
		Register:   make(chan Client),
		Unregister: make(chan Client),
		Broadcast:  make(chan Message, 64),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.Register:
			h.mutex.Lock()
			conns, ok := h.Clients[c.UserID]
			if !ok {
				conns = make(map[Conn]bool)
				h.Clients[c.UserID] = conns
			}
			conns[c.Conn] = true
			h.mutex.Unlock()
			h.log.Info("ws client connected", "user_id", c.UserID)

		case c := <-h.Unregister:
			h.mutex.Lock()
			if conns, ok := h.Clients[c.UserID]; ok {
				if _, ok := conns[c.Conn]; ok {
					delete(conns, c.Conn)
					c.Conn.Close()
				}
				if len(conns) == 0 {
					delete(h.Clients, c.UserID)
				}
			}
			h.mutex.Unlock()

		case msg := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients[msg.UserID] {
				if err := conn.WriteMessage(websocket.TextMessage, msg.Data); err != nil {
					conn.Close()
					delete(h.Clients[msg.UserID], conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Publish queues ev for every connection of userID without blocking the caller.
func (h *Hub) Publish(userID string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("ws event encode failed", "error", err)
		return
	}
	go func() {
		h.Broadcast <- Message{UserID: userID, Data: data}
	}()
}

// Connected returns the number of open connections of userID.
func (h *Hub) Connected(userID string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients[userID])
}
