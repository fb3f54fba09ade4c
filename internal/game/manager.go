package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Thamizhanban2006/code-clash/internal/events"
	"github.com/Thamizhanban2006/code-clash/internal/store"
	"github.com/Thamizhanban2006/code-clash/internal/timers"
)

const countdownSeconds = 10

// Broadcaster delivers outbound events to every connection in a room. The
// websocket hub implements it; tests substitute a recorder.
type Broadcaster interface {
	ToRoom(roomID string, event string, payload any)
	ToRoomExcept(roomID string, exceptSocketID string, event string, payload any)
}

// Submission is the record handed to the grading/audit pipeline after an
// accepted submission.
type Submission struct {
	RoomID      string    `json:"roomId"`
	PlayerName  string    `json:"playerName"`
	SocketID    string    `json:"socketId"`
	TestsPassed int       `json:"testsPassed"`
	TotalTests  int       `json:"totalTests"`
	Score       int       `json:"score"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// SubmissionSink receives accepted submissions, best effort.
type SubmissionSink interface {
	Publish(ctx context.Context, sub Submission) error
}

// Manager is the room state machine. Every operation acquires the room's
// mutex, loads the room from the store, applies the transition, saves, and
// broadcasts — so mutations on one room are strictly serialized and
// broadcasts follow mutation order.
type Manager struct {
	store       store.RoomStore
	questions   store.QuestionPool
	timers      *timers.Service
	broadcaster Broadcaster
	sink        SubmissionSink
	logger      *slog.Logger
	locks       *keyedMutex
	duration    int
	now         func() time.Time
}

func NewManager(roomStore store.RoomStore, questions store.QuestionPool, timerSvc *timers.Service, broadcaster Broadcaster, logger *slog.Logger) *Manager {
	return &Manager{
		store:       roomStore,
		questions:   questions,
		timers:      timerSvc,
		broadcaster: broadcaster,
		logger:      logger,
		locks:       newKeyedMutex(),
		duration:    store.DefaultGameDuration,
		now:         time.Now,
	}
}

// SetGameDuration overrides the duration, in seconds, given to new rooms.
func (m *Manager) SetGameDuration(seconds int) {
	if seconds > 0 {
		m.duration = seconds
	}
}

// SetSubmissionSink attaches the optional grading/audit pipeline.
func (m *Manager) SetSubmissionSink(sink SubmissionSink) {
	m.sink = sink
}

// JoinParams carries a join-room request. OldSocketID is the client's
// previous-connection hint for reconnects.
type JoinParams struct {
	RoomID      string
	PlayerName  string
	SocketID    string
	OldSocketID string
	MaxPlayers  int
}

// JoinRoom creates the room on first join or adds/reattaches the player
// otherwise. Reconnect matches by name first, then by the old socket id, and
// is allowed mid-game; brand-new players are rejected once the game left the
// lobby.
func (m *Manager) JoinRoom(ctx context.Context, p JoinParams) (*store.Room, error) {
	unlock := m.locks.lock(p.RoomID)
	defer unlock()

	room, err := m.store.FindByRoomID(ctx, p.RoomID)
	if errors.Is(err, store.ErrRoomNotFound) {
		room, err = m.createRoom(ctx, p)
		if err != nil {
			return nil, err
		}
		m.logger.Info("room created", "room_id", p.RoomID, "max_players", room.MaxPlayers, "host", p.PlayerName)
		m.broadcaster.ToRoom(p.RoomID, events.RoomUpdate, room)
		return room, nil
	}
	if err != nil {
		return nil, err
	}

	inProgress := room.GameState == store.GameStatePlaying || room.GameState == store.GameStateCountdown

	existing := room.FindPlayerByName(p.PlayerName)
	if existing == nil && p.OldSocketID != "" {
		existing = room.FindPlayerBySocket(p.OldSocketID)
	}

	switch {
	case existing != nil:
		// The name's holder being online only blocks the join when the caller
		// cannot present the holder's previous socket; with a matching hint
		// the reconnect is last-writer-wins over the stale session.
		if existing.Online && existing.SocketID != p.OldSocketID && existing.SocketID != p.SocketID {
			return nil, ErrNameTaken
		}
		m.logger.Info("player reconnected", "room_id", p.RoomID, "player", p.PlayerName, "socket_id", p.SocketID)
		existing.SocketID = p.SocketID
		existing.Online = true

	case inProgress:
		return nil, ErrGameInProgress

	case len(room.Players) >= room.MaxPlayers:
		return nil, ErrRoomFull

	default:
		room.Players = append(room.Players, store.Player{
			SocketID: p.SocketID,
			Name:     p.PlayerName,
			Online:   true,
			Status:   store.StatusWaiting,
			IsHost:   !room.HasOnlineHost(),
		})
		m.logger.Info("player joined", "room_id", p.RoomID, "player", p.PlayerName)
		m.broadcaster.ToRoomExcept(p.RoomID, p.SocketID, events.PlayerJoined, events.PlayerJoinedPayload{PlayerName: p.PlayerName})
	}

	if err := m.store.Save(ctx, room); err != nil {
		return nil, fmt.Errorf("save room %s: %w", p.RoomID, err)
	}
	m.broadcaster.ToRoom(p.RoomID, events.RoomUpdate, room)
	return room, nil
}

func (m *Manager) createRoom(ctx context.Context, p JoinParams) (*store.Room, error) {
	count, err := m.questions.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	if count == 0 {
		return nil, ErrNoQuestions
	}
	question, err := m.questions.Random(ctx)
	if err != nil {
		return nil, ErrNoQuestions
	}

	maxPlayers := p.MaxPlayers
	if maxPlayers < store.MinPlayers {
		maxPlayers = store.MinPlayers
	}
	if maxPlayers > store.MaxPlayersCap {
		maxPlayers = store.MaxPlayersCap
	}

	room := &store.Room{
		RoomID:       p.RoomID,
		MaxPlayers:   maxPlayers,
		GameState:    store.GameStateLobby,
		GameDuration: m.duration,
		Players: []store.Player{{
			SocketID: p.SocketID,
			Name:     p.PlayerName,
			Online:   true,
			Status:   store.StatusWaiting,
			IsHost:   true, // first player is host
		}},
		Chat:     []store.ChatMessage{},
		Question: question,
	}

	stored, created, err := m.store.UpsertOnCreate(ctx, room)
	if err != nil {
		return nil, fmt.Errorf("create room %s: %w", p.RoomID, err)
	}
	if !created {
		// Lost a cross-process create race; the winner's document stands and
		// this join retries against it.
		return nil, fmt.Errorf("room %s already created elsewhere: %w", stored.RoomID, store.ErrRoomNotFound)
	}
	return stored, nil
}

// SetReady marks the caller's player ready. Absent room or player is a
// silent no-op; repeated calls are idempotent.
func (m *Manager) SetReady(ctx context.Context, roomID, socketID string) error {
	unlock := m.locks.lock(roomID)
	defer unlock()

	room, err := m.store.FindByRoomID(ctx, roomID)
	if err != nil {
		return m.ignoreNotFound(err)
	}
	player := room.FindPlayerBySocket(socketID)
	if player == nil {
		return nil
	}

	player.Status = store.StatusReady
	if err := m.store.Save(ctx, room); err != nil {
		return fmt.Errorf("save room %s: %w", roomID, err)
	}
	m.broadcaster.ToRoom(roomID, events.RoomUpdate, room)
	m.broadcaster.ToRoom(roomID, events.PlayerStatusChanged, events.PlayerStatusChangedPayload{
		PlayerName: player.Name,
		Status:     store.StatusReady,
	})
	return nil
}

// StartCountdown moves the room to countdown and arms the 10-second timer.
// Host only; all online players must be ready and at least two present.
func (m *Manager) StartCountdown(ctx context.Context, roomID, socketID string) error {
	unlock := m.locks.lock(roomID)
	defer unlock()

	room, err := m.store.FindByRoomID(ctx, roomID)
	if err != nil {
		return m.ignoreNotFound(err)
	}

	player := room.FindPlayerBySocket(socketID)
	if player == nil || !player.IsHost {
		return ErrNotHost
	}
	for _, p := range room.Players {
		if p.Online && p.Status != store.StatusReady {
			return ErrPlayersNotReady
		}
	}
	if len(room.OnlinePlayers()) < store.MinPlayers {
		return ErrInsufficientPlayers
	}

	now := m.now()
	room.GameState = store.GameStateCountdown
	room.CountdownStartTime = &now
	if err := m.store.Save(ctx, room); err != nil {
		return fmt.Errorf("save room %s: %w", roomID, err)
	}

	m.logger.Info("countdown started", "room_id", roomID, "host", player.Name)
	m.broadcaster.ToRoom(roomID, events.CountdownStarted, nil)

	m.timers.StartCountdown(roomID, countdownSeconds,
		func(remaining int) {
			m.broadcaster.ToRoom(roomID, events.CountdownTick, remaining)
		},
		func() {
			if err := m.startGame(context.Background(), roomID); err != nil {
				m.logger.Error("failed to start game", "room_id", roomID, "error", err)
			}
		})
	return nil
}

// startGame transitions countdown -> playing, marks online players coding and
// arms the game clock.
func (m *Manager) startGame(ctx context.Context, roomID string) error {
	unlock := m.locks.lock(roomID)
	defer unlock()

	room, err := m.store.FindByRoomID(ctx, roomID)
	if err != nil {
		return m.ignoreNotFound(err)
	}
	if room.GameState != store.GameStateCountdown {
		return nil
	}

	now := m.now()
	room.GameState = store.GameStatePlaying
	room.GameStartTime = &now
	for i := range room.Players {
		if room.Players[i].Online {
			room.Players[i].Status = store.StatusCoding
		}
	}
	if err := m.store.Save(ctx, room); err != nil {
		return fmt.Errorf("save room %s: %w", roomID, err)
	}

	m.logger.Info("game started", "room_id", roomID, "duration", room.GameDuration)
	m.broadcaster.ToRoom(roomID, events.GameStarted, events.GameStartedPayload{
		StartTime: now.UTC().Format(time.RFC3339),
		Duration:  room.GameDuration,
	})
	m.broadcaster.ToRoom(roomID, events.RoomUpdate, room)

	m.timers.StartGameClock(roomID, func() bool {
		return m.gameTick(context.Background(), roomID)
	})
	return nil
}

// gameTick runs once per second while the game clock is armed. Remaining time
// is recomputed from the stored start timestamp each tick. Returns true when
// the clock should stop.
func (m *Manager) gameTick(ctx context.Context, roomID string) bool {
	unlock := m.locks.lock(roomID)
	defer unlock()

	room, err := m.store.FindByRoomID(ctx, roomID)
	if err != nil {
		return true
	}
	if room.GameState != store.GameStatePlaying || room.GameStartTime == nil {
		return true
	}

	elapsed := int(m.now().Sub(*room.GameStartTime).Seconds())
	remaining := room.GameDuration - elapsed
	m.broadcaster.ToRoom(roomID, events.TimerSync, remaining)

	if remaining <= 0 {
		if err := m.endGameLocked(ctx, room); err != nil {
			m.logger.Error("failed to end game on timeout", "room_id", roomID, "error", err)
		}
		return true
	}
	return false
}

// SubmitCode records a graded result. Only the first submission per player
// counts; when every online player has submitted the game ends.
func (m *Manager) SubmitCode(ctx context.Context, roomID, socketID string, testsPassed, totalTests, score int) error {
	unlock := m.locks.lock(roomID)
	defer unlock()

	room, err := m.store.FindByRoomID(ctx, roomID)
	if err != nil {
		return m.ignoreNotFound(err)
	}
	player := room.FindPlayerBySocket(socketID)
	if player == nil || player.Status == store.StatusSubmitted {
		return nil
	}

	now := m.now()
	player.Status = store.StatusSubmitted
	player.SubmittedAt = &now
	player.TestsPassed = testsPassed
	player.TotalTests = totalTests
	player.Score = score

	if err := m.store.Save(ctx, room); err != nil {
		return fmt.Errorf("save room %s: %w", roomID, err)
	}

	m.logger.Info("solution submitted", "room_id", roomID, "player", player.Name,
		"tests_passed", testsPassed, "total_tests", totalTests)
	m.broadcaster.ToRoom(roomID, events.PlayerSubmitted, events.PlayerSubmittedPayload{
		PlayerName:  player.Name,
		TestsPassed: testsPassed,
		TotalTests:  totalTests,
	})
	m.publishSubmission(Submission{
		RoomID:      roomID,
		PlayerName:  player.Name,
		SocketID:    socketID,
		TestsPassed: testsPassed,
		TotalTests:  totalTests,
		Score:       score,
		SubmittedAt: now,
	})

	for _, p := range room.OnlinePlayers() {
		if p.Status != store.StatusSubmitted {
			return nil
		}
	}
	return m.endGameLocked(ctx, room)
}

// EndGame finishes the room and computes the leaderboard. Idempotent.
func (m *Manager) EndGame(ctx context.Context, roomID string) error {
	unlock := m.locks.lock(roomID)
	defer unlock()

	room, err := m.store.FindByRoomID(ctx, roomID)
	if err != nil {
		return m.ignoreNotFound(err)
	}
	return m.endGameLocked(ctx, room)
}

// endGameLocked requires the caller to hold the room lock.
func (m *Manager) endGameLocked(ctx context.Context, room *store.Room) error {
	if room.GameState == store.GameStateFinished {
		return nil
	}

	m.timers.Cancel(room.RoomID, timers.PurposeGame)

	room.GameState = store.GameStateFinished
	room.Leaderboard = computeLeaderboard(room)

	if err := m.store.Save(ctx, room); err != nil {
		return fmt.Errorf("save room %s: %w", room.RoomID, err)
	}

	m.logger.Info("game finished", "room_id", room.RoomID, "players_ranked", len(room.Leaderboard))
	m.broadcaster.ToRoom(room.RoomID, events.GameFinished, events.GameFinishedPayload{Leaderboard: room.Leaderboard})
	return nil
}

// HandleLeave marks a player offline, reassigns the host if needed and ends
// the game early when fewer than two players remain mid-match. Covers both
// explicit leave-room and transport disconnects.
func (m *Manager) HandleLeave(ctx context.Context, roomID, socketID string) error {
	unlock := m.locks.lock(roomID)
	defer unlock()

	room, err := m.store.FindByRoomID(ctx, roomID)
	if err != nil {
		return m.ignoreNotFound(err)
	}
	player := room.FindPlayerBySocket(socketID)
	if player == nil {
		return nil
	}

	player.Online = false

	if player.IsHost {
		player.IsHost = false
		for i := range room.Players {
			p := &room.Players[i]
			if p.Online && p.SocketID != socketID {
				p.IsHost = true
				m.broadcaster.ToRoom(roomID, events.HostChanged, events.HostChangedPayload{NewHostName: p.Name})
				break
			}
		}
	}

	if err := m.store.Save(ctx, room); err != nil {
		return fmt.Errorf("save room %s: %w", roomID, err)
	}

	m.logger.Info("player left", "room_id", roomID, "player", player.Name)
	m.broadcaster.ToRoom(roomID, events.PlayerLeft, events.PlayerLeftPayload{PlayerName: player.Name})
	m.broadcaster.ToRoom(roomID, events.RoomUpdate, room)

	if room.GameState == store.GameStatePlaying && len(room.OnlinePlayers()) < store.MinPlayers {
		return m.endGameLocked(ctx, room)
	}
	return nil
}

// DisconnectSocket handles an implicit transport drop: every room holding a
// player under this socket id sees the player leave. The lookup tolerates
// stale duplicate memberships.
func (m *Manager) DisconnectSocket(ctx context.Context, socketID string) {
	rooms, err := m.store.FindBySocketID(ctx, socketID)
	if err != nil {
		m.logger.Error("disconnect lookup failed", "socket_id", socketID, "error", err)
		return
	}
	for _, room := range rooms {
		if err := m.HandleLeave(ctx, room.RoomID, socketID); err != nil {
			m.logger.Error("disconnect cleanup failed", "room_id", room.RoomID, "socket_id", socketID, "error", err)
		}
	}
}

// AppendChat appends a message and broadcasts the full chat log.
func (m *Manager) AppendChat(ctx context.Context, roomID, socketID, message string) error {
	unlock := m.locks.lock(roomID)
	defer unlock()

	room, err := m.store.FindByRoomID(ctx, roomID)
	if err != nil {
		return m.ignoreNotFound(err)
	}

	playerName := "Unknown"
	if player := room.FindPlayerBySocket(socketID); player != nil {
		playerName = player.Name
	}
	room.Chat = append(room.Chat, store.ChatMessage{
		PlayerName: playerName,
		Message:    message,
		Timestamp:  m.now(),
	})

	if err := m.store.Save(ctx, room); err != nil {
		return fmt.Errorf("save room %s: %w", roomID, err)
	}
	m.broadcaster.ToRoom(roomID, events.ChatUpdate, room.Chat)
	return nil
}

// UpdateCode persists a player's editor snapshot, best effort. The
// low-latency code-update broadcast happens at the gateway before this runs.
func (m *Manager) UpdateCode(ctx context.Context, roomID, socketID, code string) error {
	unlock := m.locks.lock(roomID)
	defer unlock()

	room, err := m.store.FindByRoomID(ctx, roomID)
	if err != nil {
		return m.ignoreNotFound(err)
	}
	player := room.FindPlayerBySocket(socketID)
	if player == nil {
		return nil
	}
	player.Code = code
	return m.store.Save(ctx, room)
}

// RoomState returns the current persisted room snapshot.
func (m *Manager) RoomState(ctx context.Context, roomID string) (*store.Room, error) {
	return m.store.FindByRoomID(ctx, roomID)
}

func (m *Manager) publishSubmission(sub Submission) {
	if m.sink == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.sink.Publish(ctx, sub); err != nil {
			m.logger.Error("failed to publish submission", "room_id", sub.RoomID, "player", sub.PlayerName, "error", err)
		}
	}()
}

// Best-effort operations treat a missing room as a no-op.
func (m *Manager) ignoreNotFound(err error) error {
	if errors.Is(err, store.ErrRoomNotFound) {
		return nil
	}
	return err
}
