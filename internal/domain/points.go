package domain

import "time"

// PointsSource identifies what kind of activity produced a ledger entry.
type PointsSource string

// Ledger entry sources.
const (
	PointsSourceLesson      PointsSource = "lesson"
	PointsSourceQuiz        PointsSource = "quiz"
	PointsSourceLogin       PointsSource = "login"
	PointsSourceRecycle     PointsSource = "recycle"
	PointsSourceEcoAction   PointsSource = "eco_action"
	PointsSourceStreakBonus PointsSource = "streak_bonus"
	PointsSourceMission     PointsSource = "mission"
	PointsSourceAchievement PointsSource = "achievement"
	PointsSourcePurchase    PointsSource = "purchase"
	PointsSourceAdjustment  PointsSource = "adjustment"
)

// Valid returns true if the source is a recognized value.
func (s PointsSource) Valid() bool {
	switch s {
	case PointsSourceLesson, PointsSourceQuiz, PointsSourceLogin,
		PointsSourceRecycle, PointsSourceEcoAction, PointsSourceStreakBonus,
		PointsSourceMission, PointsSourceAchievement, PointsSourcePurchase,
		PointsSourceAdjustment:
		return true
	default:
		return false
	}
}

// PointsLedgerEntry is one append-only record of points moving.
// Points is signed: spends and corrections are negative entries,
// never edits to prior rows. The ledger is the source of truth;
// User.Points and UserProgress.TotalXP are derived mirrors.
type PointsLedgerEntry struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Points      int          `json:"points"`
	Source      PointsSource `json:"source"`
	SourceID    string       `json:"source_id,omitempty"` // lesson, quiz, mission or achievement ID
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// UserProgress holds the per-user aggregates the progression engine reads.
// TotalXP mirrors the ledger sum and moves with it transactionally.
type UserProgress struct {
	UserID            string    `json:"user_id"`
	TotalXP           int       `json:"total_xp"`
	Level             int       `json:"level"`
	Coins             int       `json:"coins"`
	LessonsCompleted  int       `json:"lessons_completed"`
	QuizzesCompleted  int       `json:"quizzes_completed"`
	PerfectQuizzes    int       `json:"perfect_quizzes"`
	MissionsCompleted int       `json:"missions_completed"`
	LoginCount        int       `json:"login_count"`
	LastLoginDate     string    `json:"last_login_date,omitempty"` // date-only, canonical zone
	UpdatedAt         time.Time `json:"updated_at"`
}
