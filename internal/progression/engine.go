package progression

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/wanderwave/passport-radio/internal/profile"
)

// XP granted directly by events, before any badge rewards.
const (
	xpNewStation      = 10
	xpNewCountry      = 50
	xpListeningMinute = 5
	xpTriviaWin       = 50
)

// Default flush policy: batch profile writes and sync at most once per
// window, or immediately once more than defaultFlushThreshold events have
// accumulated since the last sync.
const (
	defaultFlushWindow    = time.Minute
	defaultFlushThreshold = 10
)

// ProfileStore is the persistence collaborator the engine writes through.
type ProfileStore interface {
	LoadProfile(ctx context.Context, userID string) (*profile.Record, error)
	CreateProfile(ctx context.Context, rec *profile.Record) error
	ApplyUpdate(ctx context.Context, userID string, upd profile.Update) error
}

// MarkerStore is the idempotency collaborator that makes badge unlocks
// exactly-once. SetMarkerIfAbsent must be an atomic test-and-set.
type MarkerStore interface {
	SetMarkerIfAbsent(userID, badgeID string) (bool, error)
}

// Engine is the sole authority for turning listening events into stat
// mutations, badge unlocks and XP. It keeps a local mirror of the profile
// responsive while throttling writes to the store.
//
// All methods are safe for concurrent use; calls are serialized through a
// single mutex so events apply in call order.
type Engine struct {
	mu      sync.Mutex
	store   ProfileStore
	markers MarkerStore
	logger  *zap.Logger
	now     func() time.Time

	userID string
	loaded bool

	xp     int
	level  int
	stats  Stats
	earned map[string]bool
	order  []string // earned badge ids in unlock order

	recentUnlock *Unlock

	pending       profile.Update
	pendingEvents int
	lastFlush     time.Time

	flushWindow    time.Duration
	flushThreshold int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithFlushPolicy overrides the write throttling policy.
func WithFlushPolicy(window time.Duration, threshold int) Option {
	return func(e *Engine) {
		e.flushWindow = window
		e.flushThreshold = threshold
	}
}

func NewEngine(userID string, store ProfileStore, markers MarkerStore, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:          store,
		markers:        markers,
		logger:         logger,
		now:            time.Now,
		userID:         userID,
		earned:         map[string]bool{},
		flushWindow:    defaultFlushWindow,
		flushThreshold: defaultFlushThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load reads the user's profile into the local mirror, creating a zeroed
// profile on first sign-in. Until Load succeeds, RecordEvent is a no-op.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, err := e.store.LoadProfile(ctx, e.userID)
	if err != nil {
		return fmt.Errorf("loading profile for %s: %w", e.userID, err)
	}

	if rec == nil {
		rec = &profile.Record{UserID: e.userID, Level: 1}
		if err := e.store.CreateProfile(ctx, rec); err != nil {
			return fmt.Errorf("creating profile for %s: %w", e.userID, err)
		}
		e.logger.Info("created new profile", zap.String("user", e.userID))
	}

	e.xp = rec.XP
	e.level = LevelForXP(rec.XP)
	e.stats = Stats{
		TotalMinutes:    rec.TotalMinutes,
		UniqueCountries: rec.CountryList(),
		UniqueStations:  rec.StationList(),
		TriviaWins:      rec.TriviaWins,
	}
	e.order = rec.BadgeList()
	e.earned = map[string]bool{}
	for _, id := range e.order {
		e.earned[id] = true
	}

	e.pending = profile.Update{}
	e.pendingEvents = 0
	e.lastFlush = e.now()
	e.loaded = true

	return nil
}

// RecordEvent is the engine's single entry point. It applies the event's
// stat delta, evaluates the badge catalog and the Paragon rule, recomputes
// the level, and queues the deltas for a throttled flush.
//
// It never returns an error: persistence failures are logged and retried at
// the next flush opportunity, unknown events are ignored, and calls made
// before Load completes are silently dropped.
func (e *Engine) RecordEvent(ctx context.Context, ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		return
	}

	gain := 0
	mutated := false

	switch ev.Type {
	case EventVisitStation:
		if ev.StationID != "" && !lo.Contains(e.stats.UniqueStations, ev.StationID) {
			e.stats.UniqueStations = append(e.stats.UniqueStations, ev.StationID)
			e.pending.AddStations = append(e.pending.AddStations, ev.StationID)
			gain += xpNewStation
			mutated = true
		}
		if ev.CountryCode != "" && !lo.Contains(e.stats.UniqueCountries, ev.CountryCode) {
			e.stats.UniqueCountries = append(e.stats.UniqueCountries, ev.CountryCode)
			e.pending.AddCountries = append(e.pending.AddCountries, ev.CountryCode)
			gain += xpNewCountry
			mutated = true
		}
	case EventAddListeningMinute:
		e.stats.TotalMinutes++
		e.pending.MinutesDelta++
		gain += xpListeningMinute
		mutated = true
	case EventAddXP:
		if ev.Amount > 0 {
			gain += ev.Amount
			mutated = true
		}
	case EventWinTriviaRound:
		e.stats.TriviaWins++
		e.pending.TriviaWinsDelta++
		gain += xpTriviaWin
		mutated = true
	default:
		e.logger.Debug("ignoring unknown progression event", zap.String("type", string(ev.Type)))
		return
	}

	evalCtx := Context{Now: e.now()}
	for _, def := range Catalog {
		if e.earned[def.ID] || !def.Met(e.stats, evalCtx) {
			continue
		}
		if reward := e.unlock(def); reward > 0 {
			gain += reward
			mutated = true
		}
	}

	if tier := ParagonLevelForMinutes(e.stats.TotalMinutes); tier > 0 {
		def := ParagonDefinition(tier)
		if !e.earned[def.ID] {
			if reward := e.unlock(def); reward > 0 {
				gain += reward
				mutated = true
			}
		}
	}

	if gain > 0 {
		e.xp += gain
		e.pending.XPDelta += gain
	}

	if newLevel := LevelForXP(e.xp); newLevel != e.level {
		e.logger.Info("level up",
			zap.String("user", e.userID),
			zap.Int("from", e.level),
			zap.Int("to", newLevel))
		e.level = newLevel
		e.pending.Level = newLevel
	}

	if mutated {
		e.pendingEvents++
		e.maybeFlush(ctx)
	}
}

// unlock credits a badge exactly once. The idempotency marker is written
// synchronously with the local decision, before any XP is counted, so a
// crash before the next flush cannot lead to a duplicate credit. Returns
// the XP reward, or 0 if the badge had already been credited elsewhere.
func (e *Engine) unlock(def Definition) int {
	created, err := e.markers.SetMarkerIfAbsent(e.userID, def.ID)
	if err != nil {
		// Without the marker we cannot guarantee exactly-once credit, so
		// skip; the badge unlocks on a later event once the store recovers.
		e.logger.Warn("badge marker write failed",
			zap.String("badge", def.ID), zap.Error(err))
		return 0
	}

	e.earned[def.ID] = true
	if !created {
		return 0
	}

	e.order = append(e.order, def.ID)
	e.pending.AddBadges = append(e.pending.AddBadges, def.ID)
	e.recentUnlock = &Unlock{
		Badge:      def,
		Message:    fmt.Sprintf("%s unlocked! +%s XP", def.Label, humanize.Comma(int64(def.XPReward))),
		UnlockedAt: e.now(),
	}

	e.logger.Info("badge unlocked",
		zap.String("user", e.userID),
		zap.String("badge", def.ID),
		zap.Int("xp_reward", def.XPReward))

	return def.XPReward
}

func (e *Engine) maybeFlush(ctx context.Context) {
	if e.now().Sub(e.lastFlush) >= e.flushWindow || e.pendingEvents > e.flushThreshold {
		_ = e.flushLocked(ctx)
	}
}

// Flush forces a write of the pending buffer, e.g. on logout. On failure the
// buffer is kept intact for the next attempt.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flushLocked(ctx)
}

func (e *Engine) flushLocked(ctx context.Context) error {
	if e.pending.Empty() {
		return nil
	}

	if err := e.store.ApplyUpdate(ctx, e.userID, e.pending); err != nil {
		e.logger.Warn("profile sync failed, keeping buffer for retry",
			zap.String("user", e.userID), zap.Error(err))
		return err
	}

	e.pending = profile.Update{}
	e.pendingEvents = 0
	e.lastFlush = e.now()
	e.logger.Debug("profile synced", zap.String("user", e.userID))
	return nil
}

// XP returns the cumulative experience in the local mirror.
func (e *Engine) XP() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.xp
}

// Level returns the current level. It always equals LevelForXP(XP()).
func (e *Engine) Level() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.level
}

// NextLevelXP returns the cumulative XP target of the next level.
func (e *Engine) NextLevelXP() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return NextLevelTarget(e.level)
}

// Stats returns a copy of the aggregate counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats.clone()
}

// EarnedBadges returns the earned badge ids in unlock order.
func (e *Engine) EarnedBadges() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.order...)
}

// RecentUnlock returns the most recent unlock notification, or nil if it
// has been cleared or nothing has unlocked yet.
func (e *Engine) RecentUnlock() *Unlock {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recentUnlock
}

// ClearRecentUnlock resets the notification slot once the UI has shown it.
func (e *Engine) ClearRecentUnlock() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recentUnlock = nil
}

// Loaded reports whether the profile mirror is ready to accept events.
func (e *Engine) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}
