package memory

import (
	"context"
	"sync"

	"github.com/RexySaragih/rapid-quack/internal/model"
	"github.com/RexySaragih/rapid-quack/internal/storage"
)

// chatHistoryCap bounds the per-room chat history
const chatHistoryCap = 100

// Storage is an in-memory implementation of the store interface. Rooms have
// no TTL expiry; they exist until explicitly deleted when they empty out.
type Storage struct {
	mu sync.RWMutex

	rooms    map[model.RoomID]*model.Room
	sessions map[model.ConnectionID]*model.Session
	chats    map[model.RoomID][]model.ChatMessage // newest first
	stats    map[string]int64
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms:    make(map[model.RoomID]*model.Room),
		sessions: make(map[model.ConnectionID]*model.Session),
		chats:    make(map[model.RoomID][]model.ChatMessage),
		stats:    make(map[string]int64),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *room
	copied.Players = append([]model.Player(nil), room.Players...)
	s.rooms[room.ID] = &copied
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	copied := *room
	copied.Players = append([]model.Player(nil), room.Players...)
	return &copied, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	delete(s.chats, id)
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[id]
	return ok, nil
}

func (s *Storage) ListRoomIDs(ctx context.Context) ([]model.RoomID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]model.RoomID, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	return ids, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	s.sessions[session.ConnectionID] = &copied
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.ConnectionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.ConnectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Chat history

func (s *Storage) AppendChatMessage(ctx context.Context, roomID model.RoomID, msg model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append([]model.ChatMessage{msg}, s.chats[roomID]...)
	if len(history) > chatHistoryCap {
		history = history[:chatHistoryCap]
	}
	s.chats[roomID] = history
	return nil
}

func (s *Storage) ChatHistory(ctx context.Context, roomID model.RoomID, limit int) ([]model.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.chats[roomID]
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return append([]model.ChatMessage(nil), history...), nil
}

// Stats

func (s *Storage) IncrStat(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[name]++
	return nil
}

func (s *Storage) GetStats(ctx context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := make(map[string]int64, len(storage.StatNames))
	for _, name := range storage.StatNames {
		stats[name] = s.stats[name]
	}
	return stats, nil
}

// Ping always succeeds for the in-memory backend
func (s *Storage) Ping(ctx context.Context) error {
	return nil
}
