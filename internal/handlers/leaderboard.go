package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Thamizhanban2006/code-clash/internal/store"
	"github.com/Thamizhanban2006/code-clash/pkg/common/response"
)

// GetLeaderboardHandler returns the final ranking of a finished game. Until
// the game finishes the leaderboard does not exist.
func (hr *HandlerRepo) GetLeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	hr.logger.Info("GetLeaderboardHandler hit", "room_id", roomID)

	room, err := hr.rooms.FindByRoomID(r.Context(), roomID)
	if errors.Is(err, store.ErrRoomNotFound) {
		response.JSON(w, http.StatusNotFound, nil, true, "room not found")
		return
	}
	if err != nil {
		hr.logger.Error("failed to load room", "room_id", roomID, "error", err)
		response.JSON(w, http.StatusInternalServerError, nil, true, "failed to load room")
		return
	}

	if room.GameState != store.GameStateFinished {
		response.JSON(w, http.StatusNotFound, nil, true, "game not finished yet")
		return
	}

	response.JSON(w, http.StatusOK, room.Leaderboard, false, "get leaderboard successfully")
}
