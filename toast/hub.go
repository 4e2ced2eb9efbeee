package toast

import (
	"encoding/json"
	"log"
	"sync"
)

// Client is one live dashboard tab listening for toasts in Room.
type Client struct {
	Send chan []byte
	Room string
}

type broadcastMsg struct {
	Room string
	Data []byte
}

// Hub fans toasts out to the clients of a room. Rooms are live session ids.
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
			if conns := h.rooms[c.Room]; conns != nil && conns[c] {
				delete(conns, c)
				close(c.Send)
				if len(conns) == 0 {
					delete(h.rooms, c.Room)
				}
			}
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.Room] {
				select {
				case c.Send <- m.Data:
				default:
					// slow client: drop it rather than block every room
					close(c.Send)
					delete(h.rooms[m.Room], c)
				}
			}
			h.mu.Unlock()

		case <-h.quit:
			h.mu.Lock()
			for _, conns := range h.rooms {
				for c := range conns {
					close(c.Send)
				}
			}
			h.rooms = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

// Stop closes every client channel and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.quit:
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

type envelope struct {
	Type  string `json:"type"`
	Toast Toast  `json:"toast"`
}

// Publish sends t to every client of room.
func (h *Hub) Publish(room string, t Toast) {
	data, err := json.Marshal(envelope{Type: "toast", Toast: t})
	if err != nil {
		log.Printf("[toast] marshal: %v", err)
		return
	}
	h.Send(room, data)
}

// Send delivers an already encoded message to every client of room.
func (h *Hub) Send(room string, data []byte) {
	select {
	case h.broadcast <- broadcastMsg{Room: room, Data: data}:
	case <-h.quit:
	}
}

// RoomNotifier publishes to one room of a hub.
type RoomNotifier struct {
	Hub  *Hub
	Room string
}

func (n RoomNotifier) Success(msg string) { n.Hub.Publish(n.Room, New(LevelSuccess, msg)) }
func (n RoomNotifier) Error(msg string)   { n.Hub.Publish(n.Room, New(LevelError, msg)) }
func (n RoomNotifier) Info(msg string)    { n.Hub.Publish(n.Room, New(LevelInfo, msg)) }
