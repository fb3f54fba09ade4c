package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Thamizhanban2006/code-clash/internal/store"
	"github.com/Thamizhanban2006/code-clash/pkg/common/response"
)

// GetRoomHandler returns the current persisted snapshot of a room.
func (hr *HandlerRepo) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		response.JSON(w, http.StatusBadRequest, nil, true, "missing room id")
		return
	}

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

	response.JSON(w, http.StatusOK, room, false, "get room successfully")
}

// HealthHandler is a basic liveness probe.
func (hr *HandlerRepo) HealthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]bool{"ok": true}, false, "")
}
