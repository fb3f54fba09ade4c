package ws

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thamizhanban2006/code-clash/internal/events"
)

func newTestHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func drain(t *testing.T, c *Client) []events.Envelope {
	t.Helper()
	var out []events.Envelope
	for {
		select {
		case frame := <-c.send:
			var env events.Envelope
			require.NoError(t, json.Unmarshal(frame, &env))
			out = append(out, env)
		default:
			return out
		}
	}
}

func TestHubToRoom(t *testing.T) {
	t.Parallel()
	h := newTestHub()

	a := newClient("a", nil, h.logger)
	b := newClient("b", nil, h.logger)
	c := newClient("c", nil, h.logger)
	for _, cl := range []*Client{a, b, c} {
		h.register(cl)
	}
	h.Join("r1", a)
	h.Join("r1", b)
	h.Join("r2", c)

	h.ToRoom("r1", events.RoomUpdate, map[string]string{"roomId": "r1"})

	require.Len(t, drain(t, a), 1)
	require.Len(t, drain(t, b), 1)
	assert.Empty(t, drain(t, c), "other rooms must not receive the event")
}

func TestHubToRoomExcept(t *testing.T) {
	t.Parallel()
	h := newTestHub()

	a := newClient("a", nil, h.logger)
	b := newClient("b", nil, h.logger)
	h.register(a)
	h.register(b)
	h.Join("r1", a)
	h.Join("r1", b)

	h.ToRoomExcept("r1", "a", events.PlayerJoined, events.PlayerJoinedPayload{PlayerName: "bob"})

	assert.Empty(t, drain(t, a))
	got := drain(t, b)
	require.Len(t, got, 1)
	assert.Equal(t, events.PlayerJoined, got[0].Event)
}

func TestHubToClient(t *testing.T) {
	t.Parallel()
	h := newTestHub()

	a := newClient("a", nil, h.logger)
	h.register(a)

	h.ToClient("a", events.ErrorMessage, "boom")
	h.ToClient("missing", events.ErrorMessage, "dropped")

	got := drain(t, a)
	require.Len(t, got, 1)
	assert.Equal(t, events.ErrorMessage, got[0].Event)
}

func TestHubUnregisterLeavesAllRooms(t *testing.T) {
	t.Parallel()
	h := newTestHub()

	a := newClient("a", nil, h.logger)
	h.register(a)
	h.Join("r1", a)
	h.Join("r2", a)

	h.unregister(a)

	assert.Equal(t, 0, h.RoomSize("r1"))
	assert.Equal(t, 0, h.RoomSize("r2"))
	// double unregister must not close the channel twice
	h.unregister(a)
}

func TestHubBroadcastDuringUnregister(t *testing.T) {
	// needs real parallelism to exercise the enqueue/close race
	prev := runtime.GOMAXPROCS(4)
	defer runtime.GOMAXPROCS(prev)

	h := newTestHub()

	const members = 500
	clients := make([]*Client, 0, members)
	for i := 0; i < members; i++ {
		c := newClient(fmt.Sprintf("c-%d", i), nil, h.logger)
		h.register(c)
		h.Join("r1", c)
		clients = append(clients, c)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			h.ToRoom("r1", events.RoomUpdate, nil)
		}
	}()
	for _, c := range clients {
		h.unregister(c)
	}
	<-done

	assert.Equal(t, 0, h.RoomSize("r1"))

	// a frame aimed at a closed client is dropped, never a panic
	h.ToClient("c-0", events.ErrorMessage, "late")
}

func TestHubLeave(t *testing.T) {
	t.Parallel()
	h := newTestHub()

	a := newClient("a", nil, h.logger)
	b := newClient("b", nil, h.logger)
	h.register(a)
	h.register(b)
	h.Join("r1", a)
	h.Join("r1", b)

	h.Leave("r1", "a")
	assert.Equal(t, 1, h.RoomSize("r1"))

	h.ToRoom("r1", events.RoomUpdate, nil)
	assert.Empty(t, drain(t, a))
	assert.Len(t, drain(t, b), 1)
}
