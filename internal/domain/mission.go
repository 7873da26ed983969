package domain

import "time"

// MissionCadence is how often a mission template is handed out.
type MissionCadence string

const (
	// CadenceDaily missions expire 24 hours after generation.
	CadenceDaily MissionCadence = "daily"
	// CadenceWeekly missions expire 7 days after generation.
	CadenceWeekly MissionCadence = "weekly"
)

// Valid returns true if the cadence is a recognized value.
func (c MissionCadence) Valid() bool {
	return c == CadenceDaily || c == CadenceWeekly
}

// MissionDifficulty tiers templates so low-level users see easier goals.
type MissionDifficulty string

const (
	DifficultyEasy   MissionDifficulty = "easy"
	DifficultyMedium MissionDifficulty = "medium"
	DifficultyHard   MissionDifficulty = "hard"
)

// Valid returns true if the difficulty is a recognized value.
func (d MissionDifficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// AllowedForLevel reports whether a user of the given level may be
// assigned this difficulty. Under level 5 only easy missions appear,
// medium opens at 5, hard at 15.
func (d MissionDifficulty) AllowedForLevel(level int) bool {
	switch d {
	case DifficultyEasy:
		return true
	case DifficultyMedium:
		return level >= 5
	case DifficultyHard:
		return level >= 15
	default:
		return false
	}
}

// MissionType is the closed set of trackable mission goals.
// Activity events map onto these in the orchestrator.
type MissionType string

const (
	MissionCompleteLessons MissionType = "complete_lessons"
	MissionCompleteQuizzes MissionType = "complete_quizzes"
	MissionEarnXP          MissionType = "earn_xp"
	MissionPerfectScore    MissionType = "perfect_score"
	MissionDailyLogin      MissionType = "daily_login"
	MissionRecycleItems    MissionType = "recycle_items"
	MissionEcoAction       MissionType = "eco_action"
)

// Valid returns true if the mission type is a recognized value.
func (t MissionType) Valid() bool {
	switch t {
	case MissionCompleteLessons, MissionCompleteQuizzes, MissionEarnXP,
		MissionPerfectScore, MissionDailyLogin, MissionRecycleItems,
		MissionEcoAction:
		return true
	default:
		return false
	}
}

// MissionStatus is the lifecycle state of an assigned mission.
type MissionStatus string

const (
	// MissionActive missions accept progress until they expire.
	MissionActive MissionStatus = "active"
	// MissionCompleted missions have paid out and are terminal.
	MissionCompleted MissionStatus = "completed"
	// MissionNeedsReview missions await a teacher or admin decision.
	MissionNeedsReview MissionStatus = "needs_review"
	// MissionExpired missions lapsed before completion.
	MissionExpired MissionStatus = "expired"
)

// MissionTemplate is the reusable definition a mission is stamped from.
type MissionTemplate struct {
	Base
	Type        MissionType       `json:"type"`
	Cadence     MissionCadence    `json:"cadence"`
	Difficulty  MissionDifficulty `json:"difficulty"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	TargetValue int               `json:"target_value"`
	RewardXP    int               `json:"reward_xp"`
	RewardCoins int               `json:"reward_coins"`
	MinLevel    int               `json:"min_level,omitempty"`
	Active      bool              `json:"active"`
}

// Mission is one template instance assigned to a user for a period.
type Mission struct {
	Base
	UserID      string            `json:"user_id"`
	TemplateID  string            `json:"template_id"`
	Type        MissionType       `json:"type"`
	Cadence     MissionCadence    `json:"cadence"`
	Difficulty  MissionDifficulty `json:"difficulty"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	TargetValue int               `json:"target_value"`
	Progress    int               `json:"progress"`
	RewardXP    int               `json:"reward_xp"`
	RewardCoins int               `json:"reward_coins"`
	Status      MissionStatus     `json:"status"`
	PeriodKey   string            `json:"period_key"` // generation date (daily) or week key (weekly)
	ExpiresAt   time.Time         `json:"expires_at"`
	CompletedAt time.Time         `json:"completed_at,omitzero"`
	ProofRef    string            `json:"proof_ref,omitempty"`
	ProofScore  float64           `json:"proof_score,omitempty"`
	ReviewedBy  string            `json:"reviewed_by,omitempty"`
}

// IsExpired reports whether the mission lapsed before the given time.
func (m *Mission) IsExpired(now time.Time) bool {
	return now.After(m.ExpiresAt)
}

// Remaining returns how much progress is still needed.
func (m *Mission) Remaining() int {
	if m.Progress >= m.TargetValue {
		return 0
	}
	return m.TargetValue - m.Progress
}

// ProofVerdict is the outcome of scoring a submitted proof.
type ProofVerdict string

const (
	ProofApproved    ProofVerdict = "approved"
	ProofNeedsReview ProofVerdict = "needs_review"
	ProofRejected    ProofVerdict = "rejected"
)
