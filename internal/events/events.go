package events

import "github.com/Thamizhanban2006/code-clash/internal/store"

// Inbound event names (client -> server).
const (
	JoinRoom         = "join-room"
	PlayerReady      = "player-ready"
	StartCountdown   = "start-countdown"
	CodeChange       = "code-change"
	PlayerSubmit     = "player-submit"
	SendChat         = "send-chat"
	LeaveRoom        = "leave-room"
	RequestRoomState = "request-room-state"
)

// Outbound event names (server -> room members, ErrorMessage excepted which
// goes to the offending connection only).
const (
	RoomUpdate          = "room-update"
	PlayerJoined        = "player-joined"
	PlayerLeft          = "player-left"
	HostChanged         = "host-changed"
	PlayerStatusChanged = "player-status-changed"
	PlayerSubmitted     = "player-submitted"
	CountdownStarted    = "countdown-started"
	CountdownTick       = "countdown-tick"
	GameStarted         = "game-started"
	TimerSync           = "timer-sync"
	GameFinished        = "game-finished"
	ChatUpdate          = "chat-update"
	CodeUpdate          = "code-update"
	ErrorMessage        = "error-message"
)

// Envelope is the wire frame for every websocket message in both directions.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type PlayerJoinedPayload struct {
	PlayerName string `json:"playerName"`
}

type PlayerLeftPayload struct {
	PlayerName string `json:"playerName"`
}

type HostChangedPayload struct {
	NewHostName string `json:"newHostName"`
}

type PlayerStatusChangedPayload struct {
	PlayerName string `json:"playerName"`
	Status     string `json:"status"`
}

type PlayerSubmittedPayload struct {
	PlayerName  string `json:"playerName"`
	TestsPassed int    `json:"testsPassed"`
	TotalTests  int    `json:"totalTests"`
}

type GameStartedPayload struct {
	StartTime string `json:"startTime"`
	Duration  int    `json:"duration"`
}

type GameFinishedPayload struct {
	Leaderboard []store.LeaderboardEntry `json:"leaderboard"`
}

type CodeUpdatePayload struct {
	PlayerID string `json:"playerId"`
	Code     string `json:"code"`
}
