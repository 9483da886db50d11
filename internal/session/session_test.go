package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/wanderwave/passport-radio/internal/progression"
)

type fakeEngine struct {
	mu      sync.Mutex
	events  []progression.Event
	flushes int
	flushEr error
}

func (f *fakeEngine) RecordEvent(ctx context.Context, ev progression.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fakeEngine) Flush(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	return f.flushEr
}

func (f *fakeEngine) recorded() []progression.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]progression.Event(nil), f.events...)
}

type fakeTravelLog struct {
	mu      sync.Mutex
	seconds map[string]int
}

func (f *fakeTravelLog) AddTravelSeconds(ctx context.Context, userID, country, iso string, seconds int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seconds == nil {
		f.seconds = map[string]int{}
	}
	f.seconds[country] += seconds
	return nil
}

var testStation = Station{ID: "fip", Name: "FIP", CountryCode: "FR", Country: "France"}

func TestTuneReportsVisit(t *testing.T) {
	engine := &fakeEngine{}
	listener := NewListener("tester", engine, nil, zap.NewNop())
	defer listener.Stop(context.Background())

	listener.Tune(context.Background(), testStation)

	events := engine.recorded()
	if assert.Len(t, events, 1) {
		assert.Equal(t, progression.EventVisitStation, events[0].Type)
		assert.Equal(t, "fip", events[0].StationID)
		assert.Equal(t, "FR", events[0].CountryCode)
	}
	assert.True(t, listener.Playing())
}

func TestHeartbeatAccruesTravelAndMinutes(t *testing.T) {
	engine := &fakeEngine{}
	travel := &fakeTravelLog{}
	listener := NewListener("tester", engine, travel, zap.NewNop())

	ctx := context.Background()
	listener.Tune(ctx, testStation)
	listener.Pause()

	// Drive the heartbeat directly so the test is deterministic.
	for i := 0; i < 61; i++ {
		listener.beat(ctx)
	}

	travel.mu.Lock()
	assert.Equal(t, 61, travel.seconds["France"], "Every heartbeat accrues one travel second")
	travel.mu.Unlock()

	var minutes int
	for _, ev := range engine.recorded() {
		if ev.Type == progression.EventAddListeningMinute {
			minutes++
		}
	}
	assert.Equal(t, 1, minutes, "61 seconds of listening is exactly one reported minute")
}

func TestHeartbeatWithoutStationIsNoop(t *testing.T) {
	engine := &fakeEngine{}
	travel := &fakeTravelLog{}
	listener := NewListener("tester", engine, travel, zap.NewNop())

	listener.beat(context.Background())

	assert.Empty(t, engine.recorded())
	assert.Empty(t, travel.seconds)
}

func TestTickerDrivesHeartbeat(t *testing.T) {
	engine := &fakeEngine{}
	travel := &fakeTravelLog{}
	listener := NewListener("tester", engine, travel, zap.NewNop(),
		WithTickInterval(time.Millisecond))

	ctx := context.Background()
	listener.Tune(ctx, testStation)

	assert.Eventually(t, func() bool {
		travel.mu.Lock()
		defer travel.mu.Unlock()
		return travel.seconds["France"] >= 3
	}, time.Second, time.Millisecond, "Ticker should accrue travel seconds")

	listener.Stop(ctx)
	assert.False(t, listener.Playing())
}

func TestPauseAndResume(t *testing.T) {
	engine := &fakeEngine{}
	listener := NewListener("tester", engine, nil, zap.NewNop(),
		WithTickInterval(time.Millisecond))
	ctx := context.Background()

	listener.Tune(ctx, testStation)
	listener.Pause()
	assert.False(t, listener.Playing())

	listener.Resume(ctx)
	assert.True(t, listener.Playing())

	listener.Stop(ctx)
}

func TestResumeWithoutStationIsNoop(t *testing.T) {
	listener := NewListener("tester", &fakeEngine{}, nil, zap.NewNop())
	listener.Resume(context.Background())
	assert.False(t, listener.Playing())
}

func TestStopFlushesBestEffort(t *testing.T) {
	engine := &fakeEngine{flushEr: errors.New("offline")}
	listener := NewListener("tester", engine, nil, zap.NewNop())
	ctx := context.Background()

	listener.Tune(ctx, testStation)
	listener.Stop(ctx)

	assert.Equal(t, 1, engine.flushes, "Stop must attempt a final sync even when it fails")
	assert.False(t, listener.Playing())
}
