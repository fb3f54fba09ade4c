package store

import "time"

// Game lifecycle states. Transitions only move forward; finished is terminal.
const (
	GameStateLobby     = "lobby"
	GameStateCountdown = "countdown"
	GameStatePlaying   = "playing"
	GameStateFinished  = "finished"
)

// Player statuses within a room.
const (
	StatusWaiting   = "waiting"
	StatusReady     = "ready"
	StatusCoding    = "coding"
	StatusSubmitted = "submitted"
)

const (
	DefaultGameDuration = 900 // seconds
	MinPlayers          = 2
	MaxPlayersCap       = 4
)

// Player is embedded in a Room. A player's identity is its name; the socketId
// is just the current transport connection and is reassigned on reconnect.
type Player struct {
	SocketID    string     `json:"socketId"`
	Name        string     `json:"name"`
	Code        string     `json:"code"`
	Online      bool       `json:"online"`
	Status      string     `json:"status"`
	IsHost      bool       `json:"isHost"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	TestsPassed int        `json:"testsPassed"`
	TotalTests  int        `json:"totalTests"`
	Score       int        `json:"score"`
}

type ChatMessage struct {
	PlayerName string    `json:"playerName"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

type LeaderboardEntry struct {
	PlayerID    string `json:"playerId"`
	PlayerName  string `json:"playerName"`
	TestsPassed int    `json:"testsPassed"`
	TotalTests  int    `json:"totalTests"`
	TimeTaken   int    `json:"timeTaken"`
	Score       int    `json:"score"`
	Rank        int    `json:"rank"`
}

type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

type Question struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	SampleInput  string     `json:"sampleInput"`
	SampleOutput string     `json:"sampleOutput"`
	TestCases    []TestCase `json:"testCases"`
	Difficulty   string     `json:"difficulty"`
}

// Room is the unit of persistence and of mutual exclusion. Players keep join
// order; chat is append-only; the leaderboard stays empty until the game
// finishes and is computed exactly once.
type Room struct {
	RoomID             string             `json:"roomId"`
	MaxPlayers         int                `json:"maxPlayers"`
	GameState          string             `json:"gameState"`
	GameStartTime      *time.Time         `json:"gameStartTime,omitempty"`
	CountdownStartTime *time.Time         `json:"countdownStartTime,omitempty"`
	GameDuration       int                `json:"gameDuration"`
	Players            []Player           `json:"players"`
	Chat               []ChatMessage      `json:"chat"`
	Question           *Question          `json:"question,omitempty"`
	Leaderboard        []LeaderboardEntry `json:"leaderboard"`
}

// FindPlayerBySocket returns a pointer into the room's player slice, so
// mutations through it stick until the room is saved.
func (r *Room) FindPlayerBySocket(socketID string) *Player {
	for i := range r.Players {
		if r.Players[i].SocketID == socketID {
			return &r.Players[i]
		}
	}
	return nil
}

// FindPlayerByName matches on the stable identity used across reconnects.
func (r *Room) FindPlayerByName(name string) *Player {
	for i := range r.Players {
		if r.Players[i].Name == name {
			return &r.Players[i]
		}
	}
	return nil
}

// OnlinePlayers returns the currently connected players in join order.
func (r *Room) OnlinePlayers() []*Player {
	var online []*Player
	for i := range r.Players {
		if r.Players[i].Online {
			online = append(online, &r.Players[i])
		}
	}
	return online
}

// HasOnlineHost reports whether any connected player currently holds the host
// flag.
func (r *Room) HasOnlineHost() bool {
	for i := range r.Players {
		if r.Players[i].IsHost && r.Players[i].Online {
			return true
		}
	}
	return false
}

// Clone deep-copies a room so callers can mutate freely before saving.
func (r *Room) Clone() *Room {
	cp := *r
	cp.Players = append([]Player(nil), r.Players...)
	cp.Chat = append([]ChatMessage(nil), r.Chat...)
	cp.Leaderboard = append([]LeaderboardEntry(nil), r.Leaderboard...)
	if r.GameStartTime != nil {
		t := *r.GameStartTime
		cp.GameStartTime = &t
	}
	if r.CountdownStartTime != nil {
		t := *r.CountdownStartTime
		cp.CountdownStartTime = &t
	}
	for i := range cp.Players {
		if cp.Players[i].SubmittedAt != nil {
			t := *cp.Players[i].SubmittedAt
			cp.Players[i].SubmittedAt = &t
		}
	}
	if r.Question != nil {
		q := *r.Question
		q.TestCases = append([]TestCase(nil), r.Question.TestCases...)
		cp.Question = &q
	}
	return &cp
}
