package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper drops idle sessions and reports how many were removed.
type Sweeper interface {
	Sweep(now time.Time) int
	Len() int
}

// SessionWorker is a periodic background job that expires idle page sessions.
type SessionWorker struct {
	sessions Sweeper
	interval time.Duration
	log      zerolog.Logger
	stopCh   chan struct{}
}

// NewSessionWorker creates a worker that sweeps every interval.
func NewSessionWorker(sessions Sweeper, interval time.Duration, log zerolog.Logger) *SessionWorker {
	return &SessionWorker{
		sessions: sessions,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the sweep loop until ctx is done or Stop is called.
func (w *SessionWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("session-worker: starting")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			w.tick(now)
		case <-ctx.Done():
			w.log.Info().Msg("session-worker: stopping (context cancelled)")
			return
		case <-w.stopCh:
			w.log.Info().Msg("session-worker: stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop.
func (w *SessionWorker) Stop() {
	close(w.stopCh)
}

func (w *SessionWorker) tick(now time.Time) {
	removed := w.sessions.Sweep(now)
	if removed > 0 {
		w.log.Debug().Int("removed", removed).Int("live", w.sessions.Len()).Msg("session-worker: swept idle sessions")
	}
}
