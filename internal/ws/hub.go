package ws

import (
	"log/slog"
	"sync"
)

// Hub tracks which connections belong to which rooms and fans outbound events
// out to them. It implements game.Broadcaster.
type Hub struct {
	mu sync.RWMutex
	// roomID -> clientID -> client
	rooms   map[string]map[string]*Client
	clients map[string]*Client

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:   make(map[string]map[string]*Client),
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// unregister drops the client from every room and closes its send channel.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	for roomID, members := range h.rooms {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	c.close()
}

// Join adds the connection to a room's broadcast set.
func (h *Hub) Join(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]*Client)
	}
	h.rooms[roomID][c.ID] = c
}

// Leave removes the connection from a room's broadcast set.
func (h *Hub) Leave(roomID string, clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[roomID]; ok {
		delete(members, clientID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// ToRoom broadcasts an event to every connection in the room.
func (h *Hub) ToRoom(roomID string, event string, payload any) {
	h.fanOut(roomID, "", event, payload)
}

// ToRoomExcept broadcasts to everyone in the room but the named connection.
func (h *Hub) ToRoomExcept(roomID string, exceptSocketID string, event string, payload any) {
	h.fanOut(roomID, exceptSocketID, event, payload)
}

// ToClient sends an event to a single connection.
func (h *Hub) ToClient(clientID string, event string, payload any) {
	frame, err := marshalEnvelope(event, payload)
	if err != nil {
		h.logger.Error("failed to encode event", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	c, ok := h.clients[clientID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if !c.enqueue(frame) {
		h.logger.Warn("dropping event for slow client", "client_id", clientID, "event", event)
	}
}

func (h *Hub) fanOut(roomID, exceptID, event string, payload any) {
	frame, err := marshalEnvelope(event, payload)
	if err != nil {
		h.logger.Error("failed to encode event", "event", event, "room_id", roomID, "error", err)
		return
	}

	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[roomID]))
	for id, c := range h.rooms[roomID] {
		if id == exceptID {
			continue
		}
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		if !c.enqueue(frame) {
			h.logger.Warn("dropping event for slow client", "client_id", c.ID, "event", event, "room_id", roomID)
		}
	}
}

// IsMember reports whether the connection is in the room's broadcast set.
func (h *Hub) IsMember(roomID string, clientID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[roomID][clientID]
	return ok
}

// RoomSize returns the number of live connections in a room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
