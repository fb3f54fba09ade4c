package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thamizhanban2006/code-clash/internal/store"
)

func playingRoom(duration int, start time.Time, players ...store.Player) *store.Room {
	return &store.Room{
		RoomID:        "r1",
		GameState:     store.GameStatePlaying,
		GameDuration:  duration,
		GameStartTime: &start,
		Players:       players,
	}
}

func submittedPlayer(name, socket string, passed, total int, submittedAt time.Time) store.Player {
	return store.Player{
		SocketID:    socket,
		Name:        name,
		Online:      true,
		Status:      store.StatusSubmitted,
		SubmittedAt: &submittedAt,
		TestsPassed: passed,
		TotalTests:  total,
	}
}

func TestComputeLeaderboardScores(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	room := playingRoom(900, start,
		// fully correct after 183s: 100 + 50*717/900 + 50 = 189
		submittedPlayer("alice", "s1", 5, 5, start.Add(183*time.Second)),
		// partial 2/5 after 300s: no correct bonus, no time bonus, 20 partial
		submittedPlayer("bob", "s2", 2, 5, start.Add(300*time.Second)),
		// never submitted, ran 1/5 tests: charged the full duration
		store.Player{SocketID: "s3", Name: "carol", Online: true, Status: store.StatusCoding, TestsPassed: 1, TotalTests: 5},
	)

	entries := computeLeaderboard(room)
	require.Len(t, entries, 3)

	assert.Equal(t, "alice", entries[0].PlayerName)
	assert.Equal(t, 189, entries[0].Score)
	assert.Equal(t, 183, entries[0].TimeTaken)
	assert.Equal(t, 1, entries[0].Rank)

	assert.Equal(t, "bob", entries[1].PlayerName)
	assert.Equal(t, 20, entries[1].Score)
	assert.Equal(t, 2, entries[1].Rank)

	assert.Equal(t, "carol", entries[2].PlayerName)
	assert.Equal(t, 10, entries[2].Score)
	assert.Equal(t, 900, entries[2].TimeTaken)
	assert.Equal(t, 3, entries[2].Rank)
}

func TestComputeLeaderboardTieBreaksOnTime(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// no time bonus for either (incorrect), same partial credit
	room := playingRoom(600, start,
		submittedPlayer("slow", "s1", 3, 5, start.Add(400*time.Second)),
		submittedPlayer("fast", "s2", 3, 5, start.Add(100*time.Second)),
	)

	entries := computeLeaderboard(room)
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0].Score, entries[1].Score)
	assert.Equal(t, "fast", entries[0].PlayerName)
	assert.Equal(t, "slow", entries[1].PlayerName)
}

func TestComputeLeaderboardSkipsOfflinePlayers(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	room := playingRoom(900, start,
		submittedPlayer("alice", "s1", 5, 5, start.Add(60*time.Second)),
		store.Player{SocketID: "s2", Name: "ghost", Online: false},
	)

	entries := computeLeaderboard(room)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].PlayerName)
}

func TestComputeLeaderboardZeroTests(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// totalTests of zero must not divide by zero or award the correct bonus
	room := playingRoom(900, start,
		submittedPlayer("alice", "s1", 0, 0, start.Add(10*time.Second)),
	)

	entries := computeLeaderboard(room)
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].Score)
}

func TestComputeLeaderboardLateSubmissionClampsTimeBonus(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// submitted after the clock ran out; time bonus clamps at zero
	room := playingRoom(100, start,
		submittedPlayer("alice", "s1", 5, 5, start.Add(150*time.Second)),
	)

	entries := computeLeaderboard(room)
	require.Len(t, entries, 1)
	assert.Equal(t, 150, entries[0].TimeTaken)
	assert.Equal(t, 150, entries[0].Score, "100 correct + 0 time + 50 partial")
}
