package domain

// Level math. Levels are linear: every 100 XP is one level, starting at 1.
// Level derives from lifetime TotalXP, so spending points never lowers it.

const xpPerLevel = 100

// LevelForPoints returns the level for a lifetime XP total.
// Negative totals are treated as zero.
func LevelForPoints(points int) int {
	if points < 0 {
		points = 0
	}
	return points/xpPerLevel + 1
}

// PointsForLevel returns the minimum lifetime XP required to hold a level.
func PointsForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return (level - 1) * xpPerLevel
}

// ProgressInLevel returns how far into the current level a total is,
// and the span of the level. Both are in XP.
func ProgressInLevel(points int) (into, span int) {
	if points < 0 {
		points = 0
	}
	return points % xpPerLevel, xpPerLevel
}

// LevelUpCoinBonus returns the coin reward for reaching a level.
func LevelUpCoinBonus(newLevel int) int {
	return newLevel * 10
}
