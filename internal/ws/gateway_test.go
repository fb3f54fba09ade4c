package ws

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thamizhanban2006/code-clash/internal/events"
	"github.com/Thamizhanban2006/code-clash/internal/game"
	"github.com/Thamizhanban2006/code-clash/internal/store"
	"github.com/Thamizhanban2006/code-clash/internal/timers"
)

func newTestGateway() (*Gateway, *Hub) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub(logger)
	manager := game.NewManager(
		store.NewMemoryStore(),
		store.NewSeededQuestionPool(),
		timers.NewServiceWithInterval(logger, time.Millisecond),
		hub,
		logger,
	)
	return NewGateway(hub, manager, logger), hub
}

func joinPayload(t *testing.T, roomID, name string, maxPlayers int) []byte {
	t.Helper()
	data, err := json.Marshal(joinRoomPayload{RoomID: roomID, PlayerName: name, MaxPlayers: maxPlayers})
	require.NoError(t, err)
	return data
}

func lastError(t *testing.T, c *Client) (string, bool) {
	t.Helper()
	var msg string
	found := false
	for _, env := range drain(t, c) {
		if env.Event == events.ErrorMessage {
			s, ok := env.Data.(string)
			require.True(t, ok)
			msg = s
			found = true
		}
	}
	return msg, found
}

func TestFailedRejoinKeepsMembership(t *testing.T) {
	t.Parallel()
	g, h := newTestGateway()

	a := newClient("sa", nil, h.logger)
	b := newClient("sb", nil, h.logger)
	h.register(a)
	h.register(b)

	g.handleJoinRoom(a, joinPayload(t, "r1", "alice", 4))
	g.handleJoinRoom(b, joinPayload(t, "r1", "bob", 0))
	require.True(t, h.IsMember("r1", a.ID))
	drain(t, a)

	// taking bob's name fails, but alice's live connection must keep
	// receiving room broadcasts
	g.handleJoinRoom(a, joinPayload(t, "r1", "bob", 0))
	assert.True(t, h.IsMember("r1", a.ID))

	msg, found := lastError(t, a)
	require.True(t, found)
	assert.Equal(t, game.ErrNameTaken.Error(), msg)

	h.ToRoom("r1", events.RoomUpdate, nil)
	assert.NotEmpty(t, drain(t, a))
}

func TestFailedFreshJoinLeavesNoMembership(t *testing.T) {
	t.Parallel()
	g, h := newTestGateway()

	a := newClient("sa", nil, h.logger)
	b := newClient("sb", nil, h.logger)
	c := newClient("sc", nil, h.logger)
	for _, cl := range []*Client{a, b, c} {
		h.register(cl)
	}

	g.handleJoinRoom(a, joinPayload(t, "r1", "alice", 2))
	g.handleJoinRoom(b, joinPayload(t, "r1", "bob", 0))

	g.handleJoinRoom(c, joinPayload(t, "r1", "carol", 0))
	assert.False(t, h.IsMember("r1", c.ID))

	msg, found := lastError(t, c)
	require.True(t, found)
	assert.Equal(t, game.ErrRoomFull.Error(), msg)
}

func TestJoinRoomRejectsMissingFields(t *testing.T) {
	t.Parallel()
	g, h := newTestGateway()

	a := newClient("sa", nil, h.logger)
	h.register(a)

	g.handleJoinRoom(a, joinPayload(t, "", "alice", 0))
	assert.False(t, h.IsMember("", a.ID))

	msg, found := lastError(t, a)
	require.True(t, found)
	assert.Equal(t, "Missing roomId or playerName", msg)
}
