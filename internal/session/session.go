// Package session turns a live listening session into progression events.
// It owns the per-second heartbeat: every tick accrues travel-log time for
// the tuned country, and every full minute of listening is reported to the
// progression engine.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wanderwave/passport-radio/internal/progression"
)

// TravelLogger accrues per-country listening time.
type TravelLogger interface {
	AddTravelSeconds(ctx context.Context, userID, country, iso string, seconds int) error
}

// Engine is the slice of the progression engine the listener drives.
type Engine interface {
	RecordEvent(ctx context.Context, ev progression.Event)
	Flush(ctx context.Context) error
}

// Station identifies what the listener is tuned to.
type Station struct {
	ID          string
	Name        string
	CountryCode string // ISO code, e.g. "FR"
	Country     string // display name, e.g. "France"
}

// Listener tracks one user's playback and emits progression events while
// audio is playing. It is safe for concurrent use.
type Listener struct {
	mu      sync.Mutex
	engine  Engine
	travel  TravelLogger
	logger  *zap.Logger
	userID  string
	tick    time.Duration
	station *Station
	seconds int // seconds listened since the last whole minute
	cancel  context.CancelFunc
}

// Option configures a Listener.
type Option func(*Listener)

// WithTickInterval overrides the heartbeat interval. Useful in tests.
func WithTickInterval(d time.Duration) Option {
	return func(l *Listener) { l.tick = d }
}

func NewListener(userID string, engine Engine, travel TravelLogger, logger *zap.Logger, opts ...Option) *Listener {
	l := &Listener{
		engine: engine,
		travel: travel,
		logger: logger,
		userID: userID,
		tick:   time.Second,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tune switches playback to a station. The visit is reported immediately;
// listening time starts accruing on the next heartbeat. Tuning while
// already playing keeps the heartbeat running against the new station.
func (l *Listener) Tune(ctx context.Context, st Station) {
	l.mu.Lock()
	l.station = &st
	running := l.cancel != nil
	l.mu.Unlock()

	l.engine.RecordEvent(ctx, progression.Event{
		Type:        progression.EventVisitStation,
		StationID:   st.ID,
		CountryCode: st.CountryCode,
	})

	l.logger.Info("tuned",
		zap.String("station", st.Name),
		zap.String("country", st.CountryCode))

	if !running {
		l.start(ctx)
	}
}

func (l *Listener) start(ctx context.Context) {
	l.mu.Lock()
	if l.cancel != nil {
		l.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	interval := l.tick
	l.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				l.beat(runCtx)
			}
		}
	}()
}

// beat accounts for one second of listening.
func (l *Listener) beat(ctx context.Context) {
	l.mu.Lock()
	st := l.station
	if st == nil {
		l.mu.Unlock()
		return
	}
	l.seconds++
	minute := l.seconds >= 60
	if minute {
		l.seconds = 0
	}
	l.mu.Unlock()

	if l.travel != nil && st.Country != "" {
		if err := l.travel.AddTravelSeconds(ctx, l.userID, st.Country, st.CountryCode, 1); err != nil {
			l.logger.Debug("travel log write failed", zap.Error(err))
		}
	}

	if minute {
		l.engine.RecordEvent(ctx, progression.Event{Type: progression.EventAddListeningMinute})
	}
}

// Pause stops the heartbeat but keeps the tuned station, so Resume picks
// up where playback left off. Partial-minute progress is kept.
func (l *Listener) Pause() {
	l.mu.Lock()
	cancel := l.cancel
	l.cancel = nil
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Resume restarts the heartbeat after a Pause. No-op if nothing is tuned.
func (l *Listener) Resume(ctx context.Context) {
	l.mu.Lock()
	tuned := l.station != nil
	l.mu.Unlock()
	if tuned {
		l.start(ctx)
	}
}

// Stop ends the session and makes a best-effort attempt to sync pending
// progression state. The flush error is logged, not returned: stopping
// playback must always succeed.
func (l *Listener) Stop(ctx context.Context) {
	l.Pause()

	l.mu.Lock()
	l.station = nil
	l.seconds = 0
	l.mu.Unlock()

	if err := l.engine.Flush(ctx); err != nil {
		l.logger.Warn("final sync failed, progress will retry next session", zap.Error(err))
	}
}

// Playing reports whether the heartbeat is currently running.
func (l *Listener) Playing() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}
