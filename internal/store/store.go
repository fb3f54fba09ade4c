package store

import (
	"context"
	"errors"
	"sync"
)

// ErrRoomNotFound is returned by FindByRoomID when no room exists under the
// given id.
var ErrRoomNotFound = errors.New("room not found")

// RoomStore is the persistence boundary for rooms. Implementations must make
// UpsertOnCreate atomic: concurrent creators of the same room id all observe
// the single winning document.
type RoomStore interface {
	FindByRoomID(ctx context.Context, roomID string) (*Room, error)
	// UpsertOnCreate inserts the room if absent and returns the stored
	// document either way, with created reporting whether the insert won.
	UpsertOnCreate(ctx context.Context, room *Room) (stored *Room, created bool, err error)
	Save(ctx context.Context, room *Room) error
	// FindBySocketID returns every room containing a player whose current
	// socketId matches. Used for disconnect cleanup; uniqueness is not
	// assumed.
	FindBySocketID(ctx context.Context, socketID string) ([]*Room, error)
}

// MemoryStore keeps rooms in a mutex-guarded map. Rooms are deep-copied on
// the way in and out so callers never share mutable state with the store.
type MemoryStore struct {
	roomsMu sync.RWMutex
	rooms   map[string]*Room
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]*Room),
	}
}

func (s *MemoryStore) FindByRoomID(_ context.Context, roomID string) (*Room, error) {
	s.roomsMu.RLock()
	defer s.roomsMu.RUnlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (s *MemoryStore) UpsertOnCreate(_ context.Context, room *Room) (*Room, bool, error) {
	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()
	if existing, ok := s.rooms[room.RoomID]; ok {
		return existing.Clone(), false, nil
	}
	s.rooms[room.RoomID] = room.Clone()
	return room.Clone(), true, nil
}

func (s *MemoryStore) Save(_ context.Context, room *Room) error {
	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()
	s.rooms[room.RoomID] = room.Clone()
	return nil
}

func (s *MemoryStore) FindBySocketID(_ context.Context, socketID string) ([]*Room, error) {
	s.roomsMu.RLock()
	defer s.roomsMu.RUnlock()
	var result []*Room
	for _, room := range s.rooms {
		for i := range room.Players {
			if room.Players[i].SocketID == socketID {
				result = append(result, room.Clone())
				break
			}
		}
	}
	return result, nil
}
