package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRoom(roomID string) *Room {
	return &Room{
		RoomID:       roomID,
		MaxPlayers:   4,
		GameState:    GameStateLobby,
		GameDuration: DefaultGameDuration,
		Players: []Player{
			{SocketID: "s1", Name: "alice", Online: true, Status: StatusWaiting, IsHost: true},
		},
		Chat: []ChatMessage{},
	}
}

func TestMemoryStoreFindMissing(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()

	_, err := s.FindByRoomID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestMemoryStoreSaveAndFind(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleRoom("r1")))

	room, err := s.FindByRoomID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", room.RoomID)
	require.Len(t, room.Players, 1)

	// the store hands out copies; mutating them must not leak back
	room.Players[0].Name = "mallory"
	room.GameState = GameStateFinished

	again, err := s.FindByRoomID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Players[0].Name)
	assert.Equal(t, GameStateLobby, again.GameState)
}

func TestMemoryStoreUpsertOnCreate(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	first := sampleRoom("r1")
	stored, created, err := s.UpsertOnCreate(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "alice", stored.Players[0].Name)

	second := sampleRoom("r1")
	second.Players[0].Name = "bob"
	stored, created, err = s.UpsertOnCreate(ctx, second)
	require.NoError(t, err)
	assert.False(t, created, "second creator loses the race")
	assert.Equal(t, "alice", stored.Players[0].Name, "winner's document stands")
}

func TestMemoryStoreFindBySocketID(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleRoom("r1")))
	other := sampleRoom("r2")
	other.Players[0].SocketID = "s2"
	other.Players[0].Name = "bob"
	require.NoError(t, s.Save(ctx, other))

	rooms, err := s.FindBySocketID(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "r1", rooms[0].RoomID)

	rooms, err = s.FindBySocketID(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestRoomClone(t *testing.T) {
	t.Parallel()
	now := time.Now()
	room := sampleRoom("r1")
	room.GameStartTime = &now
	room.Players[0].SubmittedAt = &now
	room.Question = &Question{ID: 1, Title: "Two Sum", TestCases: []TestCase{{Input: "in", ExpectedOutput: "out"}}}

	cp := room.Clone()
	cp.Players[0].Name = "bob"
	*cp.GameStartTime = now.Add(time.Hour)
	*cp.Players[0].SubmittedAt = now.Add(time.Hour)
	cp.Question.TestCases[0].Input = "changed"
	cp.Chat = append(cp.Chat, ChatMessage{PlayerName: "bob", Message: "hi"})

	assert.Equal(t, "alice", room.Players[0].Name)
	assert.True(t, room.GameStartTime.Equal(now))
	assert.True(t, room.Players[0].SubmittedAt.Equal(now))
	assert.Equal(t, "in", room.Question.TestCases[0].Input)
	assert.Empty(t, room.Chat)
}

func TestRoomHelpers(t *testing.T) {
	t.Parallel()
	room := sampleRoom("r1")
	room.Players = append(room.Players,
		Player{SocketID: "s2", Name: "bob", Online: false, Status: StatusWaiting},
		Player{SocketID: "s3", Name: "carol", Online: true, Status: StatusReady},
	)

	assert.NotNil(t, room.FindPlayerBySocket("s2"))
	assert.Nil(t, room.FindPlayerBySocket("s9"))
	assert.NotNil(t, room.FindPlayerByName("carol"))
	assert.Nil(t, room.FindPlayerByName("dave"))

	online := room.OnlinePlayers()
	require.Len(t, online, 2)
	assert.Equal(t, "alice", online[0].Name)
	assert.Equal(t, "carol", online[1].Name)

	assert.True(t, room.HasOnlineHost())
	room.Players[0].Online = false
	assert.False(t, room.HasOnlineHost())
}

func TestQuestionPool(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	empty := NewMemoryQuestionPool(nil)
	_, err := empty.Random(ctx)
	assert.ErrorIs(t, err, ErrNoQuestions)

	pool := NewSeededQuestionPool()
	count, err := pool.Count(ctx)
	require.NoError(t, err)
	assert.Greater(t, count, 0)

	q, err := pool.Random(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, q.Title)
	assert.NotEmpty(t, q.TestCases)

	// mutating a drawn question must not corrupt the pool
	q.TestCases[0].ExpectedOutput = "tampered"
	all, err := pool.All(ctx)
	require.NoError(t, err)
	for _, original := range all {
		if original.ID == q.ID {
			assert.NotEqual(t, "tampered", original.TestCases[0].ExpectedOutput)
		}
	}
}
