package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func (app *Application) routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(cors.AllowAll().Handler)

	mux.Get("/health", app.handlers.HealthHandler)

	mux.Route("/ws", func(r chi.Router) {
		r.Get("/", app.gateway.ServeWS)
	})

	mux.Route("/rooms", func(r chi.Router) {
		r.Get("/{roomId}", app.handlers.GetRoomHandler)
		r.Get("/{roomId}/leaderboard", app.handlers.GetLeaderboardHandler)
	})

	mux.Route("/questions", func(r chi.Router) {
		r.Get("/", app.handlers.ListQuestionsHandler)
	})

	return mux
}
