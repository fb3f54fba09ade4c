package handlers

import (
	"context"
	"log/slog"

	"github.com/Thamizhanban2006/code-clash/internal/store"
)

// QuestionLister is the read side of the question pool used by the listing
// endpoint.
type QuestionLister interface {
	All(ctx context.Context) ([]store.Question, error)
}

// HandlerRepo holds all the dependencies required by the REST handlers:
// the application logger, the room store and the question pool.
type HandlerRepo struct {
	logger    *slog.Logger
	rooms     store.RoomStore
	questions QuestionLister
}

// NewHandlerRepo creates a new HandlerRepo with the provided dependencies.
func NewHandlerRepo(logger *slog.Logger, rooms store.RoomStore, questions QuestionLister) *HandlerRepo {
	return &HandlerRepo{
		logger:    logger,
		rooms:     rooms,
		questions: questions,
	}
}
