package live

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event types pushed to a session's clients.
const (
	CartUpdated     = "cart.updated"
	CatalogReloaded = "catalog.reloaded"
	OrderSubmitting = "order.submitting"
	OrderConfirmed  = "order.confirmed"
	OrderFailed     = "order.failed"
	RegisterErrors  = "register.errors"
)

// Event is the JSON frame written to websocket clients.
type Event struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Client is one websocket connection subscribed to a room. Rooms are session
// ids.
type Client struct {
	Send chan []byte
	Room string
}

type broadcastMsg struct {
	Room string
	Data []byte
}

// Hub fans events out to the clients of a room.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	quit       chan struct{}
	stopOnce   sync.Once
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg, 64),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.Room] == nil {
				h.rooms[c.Room] = make(map[*Client]bool)
			}
			h.rooms[c.Room][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			h.dropLocked(c)
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.Room] {
				select {
				case c.Send <- m.Data:
				default:
					h.dropLocked(c)
				}
			}
			h.mu.Unlock()

		case <-h.quit:
			h.mu.Lock()
			for _, conns := range h.rooms {
				for c := range conns {
					h.dropLocked(c)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) dropLocked(c *Client) {
	conns := h.rooms[c.Room]
	if conns == nil || !conns[c] {
		return
	}
	delete(conns, c)
	close(c.Send)
	if len(conns) == 0 {
		delete(h.rooms, c.Room)
	}
}

// Stop disconnects every client and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.quit:
		close(c.Send)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// Publish queues an event for every client of room. It never blocks on slow
// clients.
func (h *Hub) Publish(room, typ string, data any) {
	frame, err := json.Marshal(Event{Type: typ, Data: data, Timestamp: time.Now().Unix()})
	if err != nil {
		zap.L().Error("live event encode", zap.String("type", typ), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- broadcastMsg{Room: room, Data: frame}:
	case <-h.quit:
	default:
		zap.L().Warn("live broadcast queue full, dropping event", zap.String("room", room), zap.String("type", typ))
	}
}

// Clients reports the number of clients in room.
func (h *Hub) Clients(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}
