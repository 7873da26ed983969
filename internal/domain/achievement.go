package domain

import "time"

// ConditionKind is the closed set of aggregates an achievement can test.
// Adding a kind means extending the switch in Condition.Met; there is
// deliberately no string-keyed dispatch.
type ConditionKind string

const (
	ConditionTotalXP           ConditionKind = "total_xp"
	ConditionLevel             ConditionKind = "level"
	ConditionStreakDays        ConditionKind = "streak_days"
	ConditionLessonsCompleted  ConditionKind = "lessons_completed"
	ConditionQuizzesCompleted  ConditionKind = "quizzes_completed"
	ConditionMissionsCompleted ConditionKind = "missions_completed"
	ConditionPerfectQuizzes    ConditionKind = "perfect_quizzes"
	ConditionLogins            ConditionKind = "logins"
)

// Valid returns true if the kind is a recognized value.
func (k ConditionKind) Valid() bool {
	switch k {
	case ConditionTotalXP, ConditionLevel, ConditionStreakDays,
		ConditionLessonsCompleted, ConditionQuizzesCompleted,
		ConditionMissionsCompleted, ConditionPerfectQuizzes, ConditionLogins:
		return true
	default:
		return false
	}
}

// ConditionOp compares the observed aggregate against the target value.
type ConditionOp string

const (
	OpGTE ConditionOp = "gte"
	OpLTE ConditionOp = "lte"
	OpEQ  ConditionOp = "eq"
)

// Valid returns true if the operator is a recognized value.
func (o ConditionOp) Valid() bool {
	return o == OpGTE || o == OpLTE || o == OpEQ
}

// Condition is a single threshold test over the user's aggregates.
type Condition struct {
	Kind  ConditionKind `json:"kind"`
	Op    ConditionOp   `json:"op"`
	Value int           `json:"value"`
}

// ProgressSnapshot is the read-only view of a user's aggregates that
// achievement conditions evaluate against.
type ProgressSnapshot struct {
	TotalXP           int
	Level             int
	StreakDays        int
	LessonsCompleted  int
	QuizzesCompleted  int
	MissionsCompleted int
	PerfectQuizzes    int
	LoginCount        int
}

// Met evaluates the condition against a snapshot.
// Unknown kinds never match.
func (c Condition) Met(snap ProgressSnapshot) bool {
	var observed int
	switch c.Kind {
	case ConditionTotalXP:
		observed = snap.TotalXP
	case ConditionLevel:
		observed = snap.Level
	case ConditionStreakDays:
		observed = snap.StreakDays
	case ConditionLessonsCompleted:
		observed = snap.LessonsCompleted
	case ConditionQuizzesCompleted:
		observed = snap.QuizzesCompleted
	case ConditionMissionsCompleted:
		observed = snap.MissionsCompleted
	case ConditionPerfectQuizzes:
		observed = snap.PerfectQuizzes
	case ConditionLogins:
		observed = snap.LoginCount
	default:
		return false
	}

	switch c.Op {
	case OpGTE:
		return observed >= c.Value
	case OpLTE:
		return observed <= c.Value
	case OpEQ:
		return observed == c.Value
	default:
		return false
	}
}

// AchievementTier groups achievements for display.
type AchievementTier string

const (
	TierBronze   AchievementTier = "bronze"
	TierSilver   AchievementTier = "silver"
	TierGold     AchievementTier = "gold"
	TierPlatinum AchievementTier = "platinum"
)

// Achievement is a one-time unlockable definition.
type Achievement struct {
	Base
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Tier          AchievementTier `json:"tier"`
	Condition     Condition       `json:"condition"`
	Prerequisites []string        `json:"prerequisites,omitempty"` // achievement IDs that must unlock first
	RewardXP      int             `json:"reward_xp"`
	RewardCoins   int             `json:"reward_coins"`
	BadgeID       string          `json:"badge_id,omitempty"`
	Hidden        bool            `json:"hidden,omitempty"` // not shown until unlocked
}

// UserAchievement records a single unlock. Uniqueness on
// (user, achievement) is enforced at the storage layer.
type UserAchievement struct {
	UserID        string    `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}
