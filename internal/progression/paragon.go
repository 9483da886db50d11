package progression

import (
	"fmt"
	"strconv"
	"strings"
)

// The Paragon ladder begins once a listener passes the Radio Titan cap
// (1,000 hours) and advances one tier per 24 further hours, forever.
const (
	ParagonCap      = 60000 // minutes; the highest scout rank's threshold
	ParagonStep     = 1440  // minutes per Paragon tier (24 hours)
	ParagonXPReward = 500
)

const paragonIDPrefix = "paragon_level_"

// ParagonLevelForMinutes returns the Paragon tier earned at the given total
// listening minutes, or 0 at or below the cap. Tiers are computed, never
// enumerated; the ladder has no top.
func ParagonLevelForMinutes(minutes int) int {
	if minutes <= ParagonCap {
		return 0
	}
	return (minutes-ParagonCap)/ParagonStep + 1
}

// ParagonBadgeID constructs the badge id for a Paragon tier.
func ParagonBadgeID(level int) string {
	return paragonIDPrefix + strconv.Itoa(level)
}

// ParagonDefinition builds the on-demand badge definition for a Paragon
// tier. The threshold is the total-minutes mark at which the tier unlocks:
// tier 1 starts one minute past the cap, each later tier a full step after
// the previous one.
func ParagonDefinition(level int) Definition {
	threshold := ParagonCap + 1
	if level > 1 {
		threshold = ParagonCap + (level-1)*ParagonStep
	}
	return Definition{
		ID:          ParagonBadgeID(level),
		Label:       fmt.Sprintf("Paragon Level %d", level),
		Description: "Infinite progression beyond the known limits.",
		XPReward:    ParagonXPReward,
		Type:        TypeParagon,
		Kind:        KindTotalMinutes,
		Threshold:   threshold,
	}
}

// BadgeDetails resolves any badge id to a displayable definition: a static
// catalog entry, a computed Paragon tier, or an "unknown" fallback so callers
// never have to nil-check when rendering a stored badge list.
func BadgeDetails(id string) Definition {
	if found := BadgeByID(id); found != nil {
		return *found
	}

	if rest, ok := strings.CutPrefix(id, paragonIDPrefix); ok {
		if level, err := strconv.Atoi(rest); err == nil && level > 0 {
			return ParagonDefinition(level)
		}
	}

	return Definition{
		ID:          "unknown",
		Label:       "Unknown Badge",
		Description: "Mystery Achievement",
		Type:        TypeSpecial,
	}
}
