package relay

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/RexySaragih/rapid-quack/internal/dependencies/mocks"
	"github.com/RexySaragih/rapid-quack/internal/model"
	"github.com/RexySaragih/rapid-quack/internal/storage/memory"
	"github.com/RexySaragih/rapid-quack/internal/testutil"
)

// fakeSender records every delivery
type fakeSender struct {
	roomEvents   []sentEvent
	exceptEvents []sentEvent
	connEvents   []sentEvent
}

type sentEvent struct {
	RoomID  model.RoomID
	ConnID  model.ConnectionID
	Except  model.ConnectionID
	Event   model.EventType
	Payload any
}

func (f *fakeSender) ToRoom(roomID model.RoomID, event model.EventType, payload any) {
	f.roomEvents = append(f.roomEvents, sentEvent{RoomID: roomID, Event: event, Payload: payload})
}

func (f *fakeSender) ToRoomExcept(roomID model.RoomID, except model.ConnectionID, event model.EventType, payload any) {
	f.exceptEvents = append(f.exceptEvents, sentEvent{RoomID: roomID, Except: except, Event: event, Payload: payload})
}

func (f *fakeSender) ToConnection(connID model.ConnectionID, event model.EventType, payload any) {
	f.connEvents = append(f.connEvents, sentEvent{ConnID: connID, Event: event, Payload: payload})
}

type RelaySuite struct {
	suite.Suite
	storage *memory.Storage
	sender  *fakeSender
	clock   *mocks.MockClock
	relay   *Relay
	ctx     context.Context
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupTest() {
	s.storage = memory.New()
	s.sender = &fakeSender{}
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.relay = New(s.storage, s.sender, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *RelaySuite) saveRoom(id model.RoomID, started bool) {
	room := &model.Room{
		ID:        id,
		Players:   []model.Player{{ID: "conn-1", DisplayName: "Alice"}},
		IsStarted: started,
	}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))
}

// Gameplay tests

func (s *RelaySuite) TestGameplayFansOutExcludingOrigin() {
	s.saveRoom("abc234", true)
	duck := model.Duck{ID: "duck-1", Word: "quack", X: 10, Y: 20}

	err := s.relay.Gameplay(s.ctx, "conn-1", "abc234", model.EventDuckSpawn, duck)
	s.Require().NoError(err)

	s.Require().Len(s.sender.exceptEvents, 1)
	sent := s.sender.exceptEvents[0]
	s.Equal(model.RoomID("abc234"), sent.RoomID)
	s.Equal(model.ConnectionID("conn-1"), sent.Except)
	s.Equal(model.EventDuckSpawn, sent.Event)
	s.Equal(duck, sent.Payload)
}

func (s *RelaySuite) TestGameplayDroppedBeforeStart() {
	s.saveRoom("abc234", false)

	err := s.relay.Gameplay(s.ctx, "conn-1", "abc234", model.EventDuckHit, nil)
	s.Require().NoError(err)
	s.Empty(s.sender.exceptEvents)
}

func (s *RelaySuite) TestGameplayDroppedForUnknownRoom() {
	err := s.relay.Gameplay(s.ctx, "conn-1", "nosuch", model.EventEffectTrigger, nil)
	s.Require().NoError(err)
	s.Empty(s.sender.exceptEvents)
}

// Chat tests

func (s *RelaySuite) TestChatBroadcastsToWholeRoom() {
	s.saveRoom("abc234", false)
	msg := model.ChatMessage{Author: "Alice", Text: "hello", Timestamp: 1700000000000}

	err := s.relay.Chat(s.ctx, "abc234", msg)
	s.Require().NoError(err)

	s.Require().Len(s.sender.roomEvents, 1)
	s.Equal(model.EventChatMessage, s.sender.roomEvents[0].Event)
	s.Equal(msg, s.sender.roomEvents[0].Payload)
}

func (s *RelaySuite) TestChatAllowedInLobby() {
	// A room that has not started still accepts chat
	s.saveRoom("abc234", false)

	err := s.relay.Chat(s.ctx, "abc234", model.ChatMessage{Author: "Alice", Text: "ready?"})
	s.Require().NoError(err)
	s.Len(s.sender.roomEvents, 1)
}

func (s *RelaySuite) TestChatStampsMissingTimestamp() {
	s.saveRoom("abc234", true)

	err := s.relay.Chat(s.ctx, "abc234", model.ChatMessage{Author: "Alice", Text: "hi"})
	s.Require().NoError(err)

	sent := s.sender.roomEvents[0].Payload.(model.ChatMessage)
	s.Equal(s.clock.Now().UnixMilli(), sent.Timestamp)
}

func (s *RelaySuite) TestChatPersistedToHistory() {
	s.saveRoom("abc234", true)

	s.Require().NoError(s.relay.Chat(s.ctx, "abc234", model.ChatMessage{Author: "Alice", Text: "first"}))
	s.Require().NoError(s.relay.Chat(s.ctx, "abc234", model.ChatMessage{Author: "Alice", Text: "second"}))

	history, err := s.storage.ChatHistory(s.ctx, "abc234", 50)
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal("second", history[0].Text)
}

func (s *RelaySuite) TestChatDroppedForUnknownRoom() {
	err := s.relay.Chat(s.ctx, "nosuch", model.ChatMessage{Author: "Alice", Text: "hi"})
	s.Require().NoError(err)
	s.Empty(s.sender.roomEvents)
}

// History tests

func (s *RelaySuite) TestHistorySentToRequester() {
	s.saveRoom("abc234", true)
	for i := 1; i <= 3; i++ {
		msg := model.ChatMessage{Author: "Alice", Text: fmt.Sprintf("msg-%d", i)}
		s.Require().NoError(s.relay.Chat(s.ctx, "abc234", msg))
	}

	err := s.relay.History(s.ctx, "conn-1", "abc234")
	s.Require().NoError(err)

	s.Require().Len(s.sender.connEvents, 1)
	sent := s.sender.connEvents[0]
	s.Equal(model.ConnectionID("conn-1"), sent.ConnID)
	s.Equal(model.EventChatHistory, sent.Event)

	messages := sent.Payload.([]model.ChatMessage)
	s.Require().Len(messages, 3)
	s.Equal("msg-3", messages[0].Text)
}

func (s *RelaySuite) TestHistoryCappedAtDefaultLimit() {
	s.saveRoom("abc234", true)
	for i := 0; i < DefaultHistoryLimit+10; i++ {
		msg := model.ChatMessage{Author: "Alice", Text: fmt.Sprintf("msg-%d", i)}
		s.Require().NoError(s.relay.Chat(s.ctx, "abc234", msg))
	}

	s.Require().NoError(s.relay.History(s.ctx, "conn-1", "abc234"))

	messages := s.sender.connEvents[0].Payload.([]model.ChatMessage)
	s.Len(messages, DefaultHistoryLimit)
}

func (s *RelaySuite) TestHistoryEmptyRoomSendsEmptySlice() {
	err := s.relay.History(s.ctx, "conn-1", "nosuch")
	s.Require().NoError(err)

	s.Require().Len(s.sender.connEvents, 1)
	messages := s.sender.connEvents[0].Payload.([]model.ChatMessage)
	s.NotNil(messages)
	s.Empty(messages)
}
