package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/RexySaragih/rapid-quack/internal/model"
	"github.com/RexySaragih/rapid-quack/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) sampleRoom(id model.RoomID) *model.Room {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &model.Room{
		ID: id,
		Players: []model.Player{
			{ID: "conn-1", DisplayName: "Alice"},
		},
		Difficulty:   model.DifficultyNormal,
		GameDuration: 60,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := s.sampleRoom("abc234")
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	got, err := s.storage.GetRoom(s.ctx, "abc234")
	s.Require().NoError(err)
	s.Equal(room.ID, got.ID)
	s.Equal(room.Players, got.Players)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "nosuch")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestGetRoomReturnsCopy() {
	room := s.sampleRoom("abc234")
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	first, err := s.storage.GetRoom(s.ctx, "abc234")
	s.Require().NoError(err)
	first.Players[0].Score = 999
	first.IsStarted = true

	second, err := s.storage.GetRoom(s.ctx, "abc234")
	s.Require().NoError(err)
	s.Equal(0, second.Players[0].Score)
	s.False(second.IsStarted)
}

func (s *StorageSuite) TestSaveRoomDetachesCaller() {
	room := s.sampleRoom("abc234")
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	room.Players[0].DisplayName = "Mallory"

	got, err := s.storage.GetRoom(s.ctx, "abc234")
	s.Require().NoError(err)
	s.Equal("Alice", got.Players[0].DisplayName)
}

func (s *StorageSuite) TestDeleteRoom() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.sampleRoom("abc234")))
	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "abc234"))

	_, err := s.storage.GetRoom(s.ctx, "abc234")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestDeleteRoomDropsChatHistory() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.sampleRoom("abc234")))
	s.Require().NoError(s.storage.AppendChatMessage(s.ctx, "abc234", model.ChatMessage{Author: "Alice", Text: "hi"}))

	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "abc234"))

	history, err := s.storage.ChatHistory(s.ctx, "abc234", 50)
	s.Require().NoError(err)
	s.Empty(history)
}

func (s *StorageSuite) TestRoomExists() {
	exists, err := s.storage.RoomExists(s.ctx, "abc234")
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.sampleRoom("abc234")))

	exists, err = s.storage.RoomExists(s.ctx, "abc234")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StorageSuite) TestListRoomIDs() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.sampleRoom("room01")))
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.sampleRoom("room02")))

	ids, err := s.storage.ListRoomIDs(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]model.RoomID{"room01", "room02"}, ids)
}

// Session tests

func (s *StorageSuite) TestSaveAndGetSession() {
	sess := &model.Session{
		ConnectionID: "conn-1",
		RoomID:       "abc234",
		PlayerID:     "conn-1",
		PlayerName:   "Alice",
		JoinedAt:     time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.storage.SaveSession(s.ctx, sess))

	got, err := s.storage.GetSession(s.ctx, "conn-1")
	s.Require().NoError(err)
	s.Equal(sess, got)
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "conn-missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestDeleteSession() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, &model.Session{ConnectionID: "conn-1"}))
	s.Require().NoError(s.storage.DeleteSession(s.ctx, "conn-1"))

	_, err := s.storage.GetSession(s.ctx, "conn-1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Chat tests

func (s *StorageSuite) TestChatHistoryNewestFirst() {
	for i := 1; i <= 3; i++ {
		msg := model.ChatMessage{Author: "Alice", Text: fmt.Sprintf("msg-%d", i), Timestamp: int64(i)}
		s.Require().NoError(s.storage.AppendChatMessage(s.ctx, "abc234", msg))
	}

	history, err := s.storage.ChatHistory(s.ctx, "abc234", 50)
	s.Require().NoError(err)
	s.Require().Len(history, 3)
	s.Equal("msg-3", history[0].Text)
	s.Equal("msg-1", history[2].Text)
}

func (s *StorageSuite) TestChatHistoryRespectsLimit() {
	for i := 0; i < 10; i++ {
		msg := model.ChatMessage{Author: "Alice", Text: fmt.Sprintf("msg-%d", i)}
		s.Require().NoError(s.storage.AppendChatMessage(s.ctx, "abc234", msg))
	}

	history, err := s.storage.ChatHistory(s.ctx, "abc234", 4)
	s.Require().NoError(err)
	s.Len(history, 4)
}

func (s *StorageSuite) TestChatHistoryCapped() {
	for i := 0; i < chatHistoryCap+20; i++ {
		msg := model.ChatMessage{Author: "Alice", Text: fmt.Sprintf("msg-%d", i)}
		s.Require().NoError(s.storage.AppendChatMessage(s.ctx, "abc234", msg))
	}

	history, err := s.storage.ChatHistory(s.ctx, "abc234", 0)
	s.Require().NoError(err)
	s.Len(history, chatHistoryCap)
	// Oldest messages fall off
	s.Equal(fmt.Sprintf("msg-%d", chatHistoryCap+19), history[0].Text)
}

func (s *StorageSuite) TestChatHistoryEmptyRoom() {
	history, err := s.storage.ChatHistory(s.ctx, "abc234", 50)
	s.Require().NoError(err)
	s.Empty(history)
}

// Stats tests

func (s *StorageSuite) TestStatsStartAtZero() {
	stats, err := s.storage.GetStats(s.ctx)
	s.Require().NoError(err)
	for _, name := range storage.StatNames {
		s.Equal(int64(0), stats[name])
	}
}

func (s *StorageSuite) TestIncrStat() {
	s.Require().NoError(s.storage.IncrStat(s.ctx, storage.StatRoomsCreated))
	s.Require().NoError(s.storage.IncrStat(s.ctx, storage.StatRoomsCreated))
	s.Require().NoError(s.storage.IncrStat(s.ctx, storage.StatGamesStarted))

	stats, err := s.storage.GetStats(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), stats[storage.StatRoomsCreated])
	s.Equal(int64(1), stats[storage.StatGamesStarted])
}

func (s *StorageSuite) TestPing() {
	s.NoError(s.storage.Ping(s.ctx))
}
