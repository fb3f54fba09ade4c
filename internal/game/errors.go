package game

import "errors"

// Per-operation failures reported back to the offending connection as
// error-message events. None of these mutate the room.
var (
	ErrRoomFull            = errors.New("room is full")
	ErrGameInProgress      = errors.New("game already in progress")
	ErrNameTaken           = errors.New("username already taken in this room")
	ErrNotHost             = errors.New("only host can start the game")
	ErrPlayersNotReady     = errors.New("all players must be ready")
	ErrInsufficientPlayers = errors.New("need at least 2 players to start")
	ErrNoQuestions         = errors.New("no questions available")
)
