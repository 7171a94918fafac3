package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/RexySaragih/rapid-quack/internal/api/response"
	"github.com/RexySaragih/rapid-quack/internal/model"
	"github.com/RexySaragih/rapid-quack/internal/storage"
	"github.com/RexySaragih/rapid-quack/internal/storage/memory"
	"github.com/RexySaragih/rapid-quack/internal/testutil"
)

type RouterSuite struct {
	suite.Suite
	storage *memory.Storage
	router  http.Handler
	ctx     context.Context
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.storage = memory.New()
	s.router = NewRouter(RouterConfig{
		Logger:         testutil.NopLogger(),
		Store:          s.storage,
		StorageBackend: "memory",
		WSHandler:      http.NotFoundHandler(),
	})
	s.ctx = context.Background()
}

func (s *RouterSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) TestHealth() {
	rec := s.get("/api/v1/health")
	s.Equal(http.StatusOK, rec.Code)

	var health response.Health
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &health))
	s.Equal("ok", health.Status)
	s.Equal("memory", health.Backend)
}

func (s *RouterSuite) TestStats() {
	s.Require().NoError(s.storage.IncrStat(s.ctx, storage.StatRoomsCreated))

	rec := s.get("/api/v1/stats")
	s.Equal(http.StatusOK, rec.Code)

	var stats response.Stats
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &stats))
	s.Equal(int64(1), stats.Counters[storage.StatRoomsCreated])
	s.Contains(stats.Counters, storage.StatGamesStarted)
}

func (s *RouterSuite) TestRoomsEmpty() {
	rec := s.get("/api/v1/rooms")
	s.Equal(http.StatusOK, rec.Code)

	var list response.RoomList
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &list))
	s.Empty(list.Rooms)
}

func (s *RouterSuite) TestRoomsListsLiveRooms() {
	room := &model.Room{
		ID: "abc234",
		Players: []model.Player{
			{ID: "conn-1", DisplayName: "Alice"},
			{ID: "conn-2", DisplayName: "Bob"},
		},
		Difficulty:   model.DifficultyHard,
		GameDuration: 90,
		IsStarted:    true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	rec := s.get("/api/v1/rooms")
	s.Equal(http.StatusOK, rec.Code)

	var list response.RoomList
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &list))
	s.Require().Len(list.Rooms, 1)
	s.Equal("abc234", list.Rooms[0].ID)
	s.Equal(2, list.Rooms[0].PlayerCount)
	s.True(list.Rooms[0].IsStarted)
	s.Equal("hard", list.Rooms[0].Difficulty)
}

func (s *RouterSuite) TestUnknownRouteIs404() {
	rec := s.get("/api/v1/nope")
	s.Equal(http.StatusNotFound, rec.Code)
}
