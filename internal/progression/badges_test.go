package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCatalogIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range Catalog {
		assert.False(t, seen[d.ID], "Duplicate badge id %s", d.ID)
		seen[d.ID] = true
		assert.NotEmpty(t, d.Label, "Badge %s has no label", d.ID)
	}
}

func TestThresholdBadgesMetAtExactValue(t *testing.T) {
	ctx := Context{Now: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)}

	rookie := *BadgeByID("scout_rank_1")
	assert.False(t, rookie.Met(Stats{TotalMinutes: 4}, ctx))
	assert.True(t, rookie.Met(Stats{TotalMinutes: 5}, ctx))
	assert.True(t, rookie.Met(Stats{TotalMinutes: 6}, ctx))

	tourist := *BadgeByID("explorer_novice")
	assert.False(t, tourist.Met(Stats{UniqueCountries: []string{"FR", "DE", "JP", "BR"}}, ctx))
	assert.True(t, tourist.Met(Stats{UniqueCountries: []string{"FR", "DE", "JP", "BR", "US"}}, ctx))
}

func TestContextBadgeWindows(t *testing.T) {
	owl := *BadgeByID("night_owl")
	bird := *BadgeByID("early_bird")
	warrior := *BadgeByID("weekend_warrior")

	at := func(hour int) Context {
		// 2026-08-25 is a Tuesday.
		return Context{Now: time.Date(2026, 8, 25, hour, 30, 0, 0, time.UTC)}
	}

	assert.False(t, owl.Met(Stats{}, at(0)))
	assert.True(t, owl.Met(Stats{}, at(1)))
	assert.True(t, owl.Met(Stats{}, at(4)))
	assert.False(t, owl.Met(Stats{}, at(5)))

	assert.True(t, bird.Met(Stats{}, at(5)))
	assert.True(t, bird.Met(Stats{}, at(8)))
	assert.False(t, bird.Met(Stats{}, at(9)))

	saturday := Context{Now: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)}
	assert.False(t, warrior.Met(Stats{}, at(12)))
	assert.True(t, warrior.Met(Stats{}, saturday))
}

func TestBadgeByIDMissing(t *testing.T) {
	assert.Nil(t, BadgeByID("no_such_badge"))
}

func TestBadgesByType(t *testing.T) {
	ranks := BadgesByType(TypeScoutRank)
	assert.Len(t, ranks, 10)
	for i := 1; i < len(ranks); i++ {
		assert.Greater(t, ranks[i].Threshold, ranks[i-1].Threshold,
			"Scout ranks must have strictly increasing thresholds")
	}
}

func TestLevelForXP(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(0))
	assert.Equal(t, 1, LevelForXP(999))
	assert.Equal(t, 2, LevelForXP(1000))
	assert.Equal(t, 3, LevelForXP(2500))
	assert.Equal(t, 1, LevelForXP(-10), "Negative XP must clamp to level 1")
}

func TestNextLevelTarget(t *testing.T) {
	assert.Equal(t, 1000, NextLevelTarget(1))
	assert.Equal(t, 5000, NextLevelTarget(5))
	assert.Equal(t, 1000, NextLevelTarget(0))
}

func TestParagonLevelForMinutes(t *testing.T) {
	assert.Equal(t, 0, ParagonLevelForMinutes(0))
	assert.Equal(t, 0, ParagonLevelForMinutes(60000), "At the cap there is no Paragon tier yet")
	assert.Equal(t, 1, ParagonLevelForMinutes(60001))
	assert.Equal(t, 1, ParagonLevelForMinutes(61439))
	assert.Equal(t, 2, ParagonLevelForMinutes(61440), "A full step past the cap reaches the second tier")
	assert.Equal(t, 3, ParagonLevelForMinutes(62880))
}

func TestBadgeDetailsResolvesEverything(t *testing.T) {
	assert.Equal(t, "Signal Rookie", BadgeDetails("scout_rank_1").Label)

	p := BadgeDetails("paragon_level_7")
	assert.Equal(t, "Paragon Level 7", p.Label)
	assert.Equal(t, 500, p.XPReward)
	assert.Equal(t, TypeParagon, p.Type)

	unknown := BadgeDetails("paragon_level_x")
	assert.Equal(t, "Unknown Badge", unknown.Label)
	assert.Equal(t, "Mystery Achievement", unknown.Description)
}
