package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/RexySaragih/rapid-quack/internal/model"
	"github.com/RexySaragih/rapid-quack/internal/storage"
)

// chatHistoryCap bounds the per-room chat history list
const chatHistoryCap = 100

// Storage is a Redis-backed implementation of the store interface. Room and
// session snapshots are whole-record JSON values with TTL expiry; reads go
// through a short-lived local cache.
type Storage struct {
	client *redis.Client
	cfg    Config
	cache  *readCache
}

// New creates a new Redis storage instance, verifying connectivity before
// returning. A connection failure here is the caller's signal to fall back
// to the in-memory backend for the process lifetime.
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %w", model.ErrBackendUnavailable, err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
		cache:  newReadCache(cfg.ReadCacheTTL),
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
		cache:  newReadCache(cfg.ReadCacheTTL),
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Client exposes the underlying Redis client for components that share the
// connection (e.g. the rate limiter)
func (s *Storage) Client() *redis.Client {
	return s.client
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// backendErr wraps a Redis failure so callers can classify it with
// errors.Is(err, model.ErrBackendUnavailable)
func backendErr(err error) error {
	return fmt.Errorf("%w: %w", model.ErrBackendUnavailable, err)
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	key := roomKey(room.ID)

	// Pipeline the snapshot write and the live-room index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, s.cfg.RoomTTL)
	pipe.SAdd(ctx, activeRoomsKey(), string(room.ID))
	pipe.Expire(ctx, activeRoomsKey(), s.cfg.RoomTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return backendErr(err)
	}

	s.cache.invalidate(key)
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	key := roomKey(id)

	data, ok := s.cache.get(key)
	if !ok {
		var err error
		data, err = s.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, model.ErrRoomNotFound
			}
			return nil, backendErr(err)
		}
		s.cache.set(key, data)
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, roomKey(id))
	pipe.Del(ctx, chatKey(id))
	pipe.SRem(ctx, activeRoomsKey(), string(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return backendErr(err)
	}

	s.cache.invalidate(roomKey(id))
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	if _, ok := s.cache.get(roomKey(id)); ok {
		return true, nil
	}
	exists, err := s.client.Exists(ctx, roomKey(id)).Result()
	if err != nil {
		return false, backendErr(err)
	}
	return exists > 0, nil
}

func (s *Storage) ListRoomIDs(ctx context.Context) ([]model.RoomID, error) {
	members, err := s.client.SMembers(ctx, activeRoomsKey()).Result()
	if err != nil {
		return nil, backendErr(err)
	}
	ids := make([]model.RoomID, len(members))
	for i, m := range members {
		ids[i] = model.RoomID(m)
	}
	return ids, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	key := sessionKey(session.ConnectionID)
	if err := s.client.Set(ctx, key, data, s.cfg.SessionTTL).Err(); err != nil {
		return backendErr(err)
	}

	s.cache.invalidate(key)
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.ConnectionID) (*model.Session, error) {
	key := sessionKey(id)

	data, ok := s.cache.get(key)
	if !ok {
		var err error
		data, err = s.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, model.ErrSessionNotFound
			}
			return nil, backendErr(err)
		}
		s.cache.set(key, data)
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.ConnectionID) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return backendErr(err)
	}
	s.cache.invalidate(sessionKey(id))
	return nil
}

// Chat history

func (s *Storage) AppendChatMessage(ctx context.Context, roomID model.RoomID, msg model.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := chatKey(roomID)

	// Push newest first and trim to the cap
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, chatHistoryCap-1)
	pipe.Expire(ctx, key, s.cfg.ChatTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return backendErr(err)
	}
	return nil
}

func (s *Storage) ChatHistory(ctx context.Context, roomID model.RoomID, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 || limit > chatHistoryCap {
		limit = chatHistoryCap
	}

	raw, err := s.client.LRange(ctx, chatKey(roomID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, backendErr(err)
	}

	messages := make([]model.ChatMessage, 0, len(raw))
	for _, entry := range raw {
		var msg model.ChatMessage
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			continue // skip invalid data
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Stats

func (s *Storage) IncrStat(ctx context.Context, name string) error {
	pipe := s.client.Pipeline()
	pipe.Incr(ctx, statKey(name))
	pipe.Expire(ctx, statKey(name), s.cfg.StatsTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return backendErr(err)
	}
	return nil
}

func (s *Storage) GetStats(ctx context.Context) (map[string]int64, error) {
	keys := make([]string, len(storage.StatNames))
	for i, name := range storage.StatNames {
		keys[i] = statKey(name)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, backendErr(err)
	}

	stats := make(map[string]int64, len(storage.StatNames))
	for i, name := range storage.StatNames {
		var count int64
		if raw, ok := values[i].(string); ok {
			count, _ = strconv.ParseInt(raw, 10, 64)
		}
		stats[name] = count
	}
	return stats, nil
}

// Ping reports backend connectivity
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return backendErr(err)
	}
	return nil
}
