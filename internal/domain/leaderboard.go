package domain

import (
	"fmt"
	"time"
)

// LeaderboardWindow is one of the independent scoring periods.
// Each window accumulates its own score; a weekly rollover never
// touches the monthly or all-time totals.
type LeaderboardWindow string

const (
	WindowWeekly  LeaderboardWindow = "weekly"
	WindowMonthly LeaderboardWindow = "monthly"
	WindowAllTime LeaderboardWindow = "all_time"
)

// AllWindows lists every window a score lands in.
var AllWindows = []LeaderboardWindow{WindowWeekly, WindowMonthly, WindowAllTime}

// Valid returns true if the window is a recognized value.
func (w LeaderboardWindow) Valid() bool {
	switch w {
	case WindowWeekly, WindowMonthly, WindowAllTime:
		return true
	default:
		return false
	}
}

// PeriodKey returns the bucket key for the window containing now.
// Weeks start on Sunday 00:00 in the given zone and are keyed by the
// Sunday's date; months are keyed by calendar month; all-time is "all".
func (w LeaderboardWindow) PeriodKey(now time.Time, loc *time.Location) string {
	now = now.In(loc)
	switch w {
	case WindowWeekly:
		start := weekStart(now, loc)
		return "w:" + start.Format(DateFormat)
	case WindowMonthly:
		return fmt.Sprintf("m:%04d-%02d", now.Year(), int(now.Month()))
	default:
		return "all"
	}
}

// Bounds returns the start (inclusive) and end (exclusive) of the window
// containing now. The all-time window has zero bounds.
func (w LeaderboardWindow) Bounds(now time.Time, loc *time.Location) (start, end time.Time) {
	now = now.In(loc)
	switch w {
	case WindowWeekly:
		start = weekStart(now, loc)
		return start, start.AddDate(0, 0, 7)
	case WindowMonthly:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	default:
		return time.Time{}, time.Time{}
	}
}

// weekStart returns Sunday 00:00 of the week containing t.
func weekStart(t time.Time, loc *time.Location) time.Time {
	year, month, day := t.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, loc)
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}

// LeaderboardScope filters a ranking to a cohort.
type LeaderboardScope string

const (
	ScopeGlobal  LeaderboardScope = "global"
	ScopeGrade   LeaderboardScope = "grade"
	ScopeCollege LeaderboardScope = "college"
)

// Valid returns true if the scope is a recognized value.
func (s LeaderboardScope) Valid() bool {
	switch s {
	case ScopeGlobal, ScopeGrade, ScopeCollege:
		return true
	default:
		return false
	}
}

// LeaderboardEntry is one user's score within a window period.
// Rank is display-only and recomputed on read; Score is authoritative.
type LeaderboardEntry struct {
	UserID      string            `json:"user_id"`
	DisplayName string            `json:"display_name,omitempty"`
	Window      LeaderboardWindow `json:"window"`
	PeriodKey   string            `json:"period_key"`
	Score       int               `json:"score"`
	Rank        int               `json:"rank,omitempty"`
	Grade       string            `json:"grade,omitempty"`
	College     string            `json:"college,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Standing is a user's own position in a window.
type Standing struct {
	Entry      LeaderboardEntry `json:"entry"`
	TotalUsers int              `json:"total_users"`
	Percentile float64          `json:"percentile"` // share of users at or below this rank, 0-100
}

// AssignRanks numbers entries 1..n in their current order. The input
// must already be sorted by the caller's stable ordering, which is also
// what breaks ties; ranks are written in place and every entry gets a
// distinct rank.
func AssignRanks(entries []*LeaderboardEntry) {
	for i, e := range entries {
		e.Rank = i + 1
	}
}
