package progression

// XPPerLevel is the flat XP cost of each level.
const XPPerLevel = 1000

// LevelForXP derives the level from cumulative XP. Level is never stored as
// ground truth independent of XP; it is always this function of it.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// NextLevelTarget returns the cumulative XP needed to leave the given level.
func NextLevelTarget(level int) int {
	if level < 1 {
		level = 1
	}
	return level * XPPerLevel
}
