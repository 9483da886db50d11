package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	assert.NoError(t, err, "Failed to create store")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLoadMissingProfile(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.LoadProfile(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, rec, "Missing profile must be (nil, nil), not an error")
}

func TestCreateAndLoadProfile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.CreateProfile(ctx, &Record{UserID: "alice", Level: 1})
	assert.NoError(t, err)

	rec, err := store.LoadProfile(ctx, "alice")
	assert.NoError(t, err)
	if assert.NotNil(t, rec) {
		assert.Equal(t, 0, rec.XP)
		assert.Equal(t, 1, rec.Level)
		assert.Empty(t, rec.CountryList())
		assert.Empty(t, rec.BadgeList())
	}
}

func TestApplyUpdateAccumulates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.NoError(t, store.CreateProfile(ctx, &Record{UserID: "alice", Level: 1}))

	err := store.ApplyUpdate(ctx, "alice", Update{
		XPDelta:      60,
		AddCountries: []string{"FR"},
		AddStations:  []string{"fip"},
	})
	assert.NoError(t, err)

	err = store.ApplyUpdate(ctx, "alice", Update{
		XPDelta:         105,
		MinutesDelta:    5,
		TriviaWinsDelta: 1,
		AddCountries:    []string{"FR", "DE"},
		AddBadges:       []string{"scout_rank_1"},
	})
	assert.NoError(t, err)

	rec, err := store.LoadProfile(ctx, "alice")
	assert.NoError(t, err)
	assert.Equal(t, 165, rec.XP)
	assert.Equal(t, 5, rec.TotalMinutes)
	assert.Equal(t, 1, rec.TriviaWins)
	assert.Equal(t, []string{"FR", "DE"}, rec.CountryList(), "Country merge must be if-absent")
	assert.Equal(t, []string{"fip"}, rec.StationList())
	assert.Equal(t, []string{"scout_rank_1"}, rec.BadgeList())
}

func TestApplyUpdateMissingUser(t *testing.T) {
	store := newTestStore(t)

	err := store.ApplyUpdate(context.Background(), "ghost", Update{XPDelta: 10})
	assert.Error(t, err, "Updating a non-existent profile must fail")
}

func TestApplyEmptyUpdateIsNoop(t *testing.T) {
	store := newTestStore(t)

	assert.NoError(t, store.ApplyUpdate(context.Background(), "ghost", Update{}),
		"An empty update must not touch the database at all")
}

func TestUpdateLevelColumn(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.NoError(t, store.CreateProfile(ctx, &Record{UserID: "alice", Level: 1}))
	assert.NoError(t, store.ApplyUpdate(ctx, "alice", Update{XPDelta: 1000, Level: 2}))

	rec, _ := store.LoadProfile(ctx, "alice")
	assert.Equal(t, 2, rec.Level)
}

func TestTopByXP(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.NoError(t, store.CreateProfile(ctx, &Record{UserID: "alice", XP: 300, Level: 1}))
	assert.NoError(t, store.CreateProfile(ctx, &Record{UserID: "bob", XP: 1200, Level: 2}))
	assert.NoError(t, store.CreateProfile(ctx, &Record{UserID: "carol", XP: 700, Level: 1}))

	top, err := store.TopByXP(ctx, 2)
	assert.NoError(t, err)
	if assert.Len(t, top, 2) {
		assert.Equal(t, "bob", top[0].UserID)
		assert.Equal(t, "carol", top[1].UserID)
	}
}

func TestMarkerSetIfAbsent(t *testing.T) {
	store := newTestStore(t)

	created, err := store.SetMarkerIfAbsent("alice", "scout_rank_1")
	assert.NoError(t, err)
	assert.True(t, created, "First set must report created")

	created, err = store.SetMarkerIfAbsent("alice", "scout_rank_1")
	assert.NoError(t, err)
	assert.False(t, created, "Second set must report already present")

	// A different user or badge is an independent marker.
	created, _ = store.SetMarkerIfAbsent("bob", "scout_rank_1")
	assert.True(t, created)
	created, _ = store.SetMarkerIfAbsent("alice", "scout_rank_2")
	assert.True(t, created)

	has, err := store.HasMarker("alice", "scout_rank_1")
	assert.NoError(t, err)
	assert.True(t, has)

	has, _ = store.HasMarker("carol", "scout_rank_1")
	assert.False(t, has)
}

func TestTravelLogAccrual(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 90; i++ {
		assert.NoError(t, store.AddTravelSeconds(ctx, "alice", "France", "FR", 1))
	}
	assert.NoError(t, store.AddTravelSeconds(ctx, "alice", "Japan", "JP", 30))
	assert.NoError(t, store.AddTravelSeconds(ctx, "bob", "France", "FR", 500))

	totals, err := store.TravelTotals(ctx, "alice")
	assert.NoError(t, err)
	if assert.Len(t, totals, 2) {
		assert.Equal(t, "France", totals[0].Country)
		assert.Equal(t, 90, totals[0].Seconds)
		assert.Equal(t, "Japan", totals[1].Country)
		assert.Equal(t, 30, totals[1].Seconds)
	}

	count, err := store.TravelCountryCount(ctx, "alice")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}
