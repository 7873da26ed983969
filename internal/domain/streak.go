package domain

import "time"

// DateFormat is the canonical date-only layout for streak bookkeeping.
const DateFormat = "2006-01-02"

// Streak tracks consecutive days of activity for a user.
// LastActiveDate is date-only in the canonical timezone; comparing whole
// days (not 24h spans) is what makes an 11pm-then-7am pair count as two days.
type Streak struct {
	UserID         string    `json:"user_id"`
	Current        int       `json:"current"`
	Longest        int       `json:"longest"`
	LastActiveDate string    `json:"last_active_date,omitempty"`
	Freezes        int       `json:"freezes"`
	MilestonesHit  []int     `json:"milestones_hit,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasMilestone returns true if the milestone was already awarded.
func (s *Streak) HasMilestone(days int) bool {
	for _, m := range s.MilestonesHit {
		if m == days {
			return true
		}
	}
	return false
}

// StreakTransition describes what a touch did to the streak.
type StreakTransition string

const (
	// StreakStarted is the first ever activity day.
	StreakStarted StreakTransition = "started"
	// StreakUnchanged means the day was already counted.
	StreakUnchanged StreakTransition = "unchanged"
	// StreakExtended means the streak grew by one day.
	StreakExtended StreakTransition = "extended"
	// StreakFrozen means a freeze covered a one-day gap and the streak grew.
	StreakFrozen StreakTransition = "frozen"
	// StreakReset means the gap was too large and the streak restarted at 1.
	StreakReset StreakTransition = "reset"
)

// StreakMilestones are the day counts that trigger one-time rewards.
var StreakMilestones = []int{3, 7, 14, 30, 60, 90, 100, 180, 365}

// MilestoneReward is the one-time payout for hitting a streak milestone.
type MilestoneReward struct {
	XP      int
	Coins   int
	BadgeID string // empty if the milestone carries no badge
}

// milestoneRewards maps milestone day counts to their payouts.
var milestoneRewards = map[int]MilestoneReward{
	3:   {XP: 10, Coins: 5},
	7:   {XP: 25, Coins: 10, BadgeID: BadgeWeekStreak},
	14:  {XP: 50, Coins: 15},
	30:  {XP: 100, Coins: 50, BadgeID: BadgeMonthStreak},
	60:  {XP: 150, Coins: 75},
	90:  {XP: 200, Coins: 100},
	100: {XP: 250, Coins: 150, BadgeID: BadgeCenturyStreak},
	180: {XP: 400, Coins: 250},
	365: {XP: 1000, Coins: 500, BadgeID: BadgeYearStreak},
}

// RewardForMilestone returns the payout for a milestone day count.
func RewardForMilestone(days int) (MilestoneReward, bool) {
	r, ok := milestoneRewards[days]
	return r, ok
}

// StreakMultiplier returns the point multiplier earned by a streak.
// Applied to base activity points, floored after multiplication.
func StreakMultiplier(days int) float64 {
	switch {
	case days >= 30:
		return 2.0
	case days >= 7:
		return 1.5
	default:
		return 1.0
	}
}

// DateKey formats a time as a date-only key in the given zone.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateFormat)
}

// DaysBetween returns the calendar-day distance between two date keys.
// Date keys are zone-free, so the arithmetic runs in UTC where every
// day is exactly 24 hours; DST shifts in the zone that produced the
// keys cannot skew the count. Returns a negative count if to is before
// from, and 0 for equal or unparseable keys.
func DaysBetween(from, to string) int {
	if from == "" || to == "" {
		return 0
	}
	a, errA := time.ParseInLocation(DateFormat, from, time.UTC)
	b, errB := time.ParseInLocation(DateFormat, to, time.UTC)
	if errA != nil || errB != nil {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}
