package timers

import (
	"log/slog"
	"sync"
	"time"
)

// Purpose distinguishes the two clocks a room can own.
type Purpose string

const (
	PurposeCountdown Purpose = "countdown"
	PurposeGame      Purpose = "game"
)

type timerKey struct {
	roomID  string
	purpose Purpose
}

// Service owns at most one active timer per (room, purpose) pair. Cancellation
// is idempotent and a stop signal is observed before any tick side effect, so
// a canceled timer never fires into a room that moved on.
type Service struct {
	mu       sync.Mutex
	active   map[timerKey]chan struct{}
	interval time.Duration
	logger   *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	return &Service{
		active:   make(map[timerKey]chan struct{}),
		interval: time.Second,
		logger:   logger,
	}
}

// NewServiceWithInterval is for tests that want faster ticks.
func NewServiceWithInterval(logger *slog.Logger, interval time.Duration) *Service {
	s := NewService(logger)
	s.interval = interval
	return s
}

// StartCountdown ticks once per interval, calling onTick with seconds-1 down
// to 0, then fires onDone and releases the timer slot. Starting a countdown
// for a room that already has one replaces it.
func (s *Service) StartCountdown(roomID string, seconds int, onTick func(remaining int), onDone func()) {
	stop := s.register(roomID, PurposeCountdown)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		remaining := seconds
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
			// A cancel racing the tick wins: no side effect after stop.
			select {
			case <-stop:
				return
			default:
			}

			remaining--
			onTick(remaining)
			if remaining <= 0 {
				s.release(roomID, PurposeCountdown, stop)
				onDone()
				return
			}
		}
	}()
}

// StartGameClock ticks once per interval until onTick reports the clock
// should stop. The callback owns all room-state logic; recomputing remaining
// time from the authoritative start timestamp keeps the clock honest across
// reconnects.
func (s *Service) StartGameClock(roomID string, onTick func() (stop bool)) {
	stopCh := s.register(roomID, PurposeGame)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
			}
			select {
			case <-stopCh:
				return
			default:
			}

			if onTick() {
				s.release(roomID, PurposeGame, stopCh)
				return
			}
		}
	}()
}

// Cancel stops the timer for (roomID, purpose). Canceling an absent timer is
// a no-op.
func (s *Service) Cancel(roomID string, purpose Purpose) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := timerKey{roomID: roomID, purpose: purpose}
	if stop, ok := s.active[key]; ok {
		close(stop)
		delete(s.active, key)
	}
}

// Active reports whether a timer currently exists for the pair.
func (s *Service) Active(roomID string, purpose Purpose) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[timerKey{roomID: roomID, purpose: purpose}]
	return ok
}

func (s *Service) register(roomID string, purpose Purpose) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := timerKey{roomID: roomID, purpose: purpose}
	if old, ok := s.active[key]; ok {
		s.logger.Warn("replacing active timer", "room_id", roomID, "purpose", purpose)
		close(old)
	}
	stop := make(chan struct{})
	s.active[key] = stop
	return stop
}

// release clears the slot after a timer ran to completion, unless it was
// already canceled and replaced.
func (s *Service) release(roomID string, purpose Purpose, own chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := timerKey{roomID: roomID, purpose: purpose}
	if current, ok := s.active[key]; ok && current == own {
		delete(s.active, key)
	}
}
