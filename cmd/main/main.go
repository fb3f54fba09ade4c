package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/Thamizhanban2006/code-clash/database"
	"github.com/Thamizhanban2006/code-clash/internal/game"
	"github.com/Thamizhanban2006/code-clash/internal/handlers"
	"github.com/Thamizhanban2006/code-clash/internal/queue"
	"github.com/Thamizhanban2006/code-clash/internal/store"
	"github.com/Thamizhanban2006/code-clash/internal/timers"
	"github.com/Thamizhanban2006/code-clash/internal/ws"
	"github.com/Thamizhanban2006/code-clash/pkg/common/env"
)

type Application struct {
	cfg      *Config
	logger   *slog.Logger
	manager  *game.Manager
	gateway  *ws.Gateway
	handlers *handlers.HandlerRepo
}

type Config struct {
	Port         int
	DatabaseURL  string
	AmqpURL      string
	GameDuration int
}

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Error loading .env file: %v", err)
	}

	cfg := &Config{
		Port:         env.GetInt("PORT", 8080),
		DatabaseURL:  env.GetString("DATABASE_URL", ""),
		AmqpURL:      env.GetString("AMQP_URL", ""),
		GameDuration: env.GetInt("GAME_DURATION_SECONDS", store.DefaultGameDuration),
	}

	// log to os standard output
	slogHandler := tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug, AddSource: true})
	logger := slog.New(slogHandler)
	slog.SetDefault(logger)

	// Rooms live in memory unless a database is configured.
	var rooms store.RoomStore = store.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		db, err := database.NewPool(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()

		pg, err := store.NewPostgresStore(context.Background(), db)
		if err != nil {
			log.Fatalf("failed to prepare room table: %v", err)
		}
		rooms = pg
		logger.Info("using postgres room store")
	} else {
		logger.Info("DATABASE_URL not set, using in-memory room store")
	}

	questions := store.NewSeededQuestionPool()
	timerSvc := timers.NewService(logger)
	hub := ws.NewHub(logger)

	manager := game.NewManager(rooms, questions, timerSvc, hub, logger)
	manager.SetGameDuration(cfg.GameDuration)

	if cfg.AmqpURL != "" {
		publisher, err := queue.NewSubmissionPublisher(cfg.AmqpURL, logger)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer publisher.Close()
		manager.SetSubmissionSink(publisher)
		logger.Info("submission publishing enabled")
	} else {
		logger.Info("AMQP_URL not set, submissions will not be published")
	}

	gateway := ws.NewGateway(hub, manager, logger)
	handlerRepo := handlers.NewHandlerRepo(logger, rooms, questions)

	app := &Application{
		cfg:      cfg,
		logger:   logger,
		manager:  manager,
		gateway:  gateway,
		handlers: handlerRepo,
	}

	err = app.run()
	if err != nil {
		log.Printf("CRITICAL ERROR from run(): %v\n", err)
		currentTrace := string(debug.Stack())
		log.Printf("Trace: %s\n", currentTrace)
		slog.Error("CRITICAL ERROR from run()", "error", err.Error(), "trace", currentTrace)
		os.Exit(1)
	}
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.cfg.Port),
		Handler:      app.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // websocket connections stay open
		IdleTimeout:  2 * time.Minute,
	}

	app.logger.Info("server listening", "port", app.cfg.Port)
	return srv.ListenAndServe()
}
