package domain

import "time"

// ActivityType identifies what a reported event represents.
type ActivityType string

const (
	// ActivityLessonCompleted fires when a user finishes a lesson.
	ActivityLessonCompleted ActivityType = "lesson_completed"
	// ActivityQuizCompleted fires when a quiz is submitted and graded.
	ActivityQuizCompleted ActivityType = "quiz_completed"
	// ActivityLogin fires once per calendar day on first login.
	ActivityLogin ActivityType = "login"
	// ActivityRecycleLogged fires when recycled items are logged.
	ActivityRecycleLogged ActivityType = "recycle_logged"
	// ActivityEcoAction fires for a verified real-world eco action.
	ActivityEcoAction ActivityType = "eco_action"
)

// Valid returns true if the activity type is a recognized value.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityLessonCompleted, ActivityQuizCompleted, ActivityLogin,
		ActivityRecycleLogged, ActivityEcoAction:
		return true
	default:
		return false
	}
}

// ActivityEvent is one unit of reported user activity.
type ActivityEvent struct {
	Type        ActivityType `json:"type"`
	SubjectID   string       `json:"subject_id,omitempty"`   // lesson or quiz ID
	Score       int          `json:"score,omitempty"`        // quiz score
	MaxScore    int          `json:"max_score,omitempty"`    // quiz maximum
	Attempt     int          `json:"attempt,omitempty"`      // 1-based quiz attempt number, 0 if unknown
	DurationSec int          `json:"duration_sec,omitempty"` // time taken on the quiz, 0 if unknown
	Quantity    int          `json:"quantity,omitempty"`     // items for recycle_logged
	OccurredAt  time.Time    `json:"occurred_at"`
}

// IsPerfectQuiz reports whether the event is a full-score quiz.
func (e *ActivityEvent) IsPerfectQuiz() bool {
	return e.Type == ActivityQuizCompleted && e.MaxScore > 0 && e.Score >= e.MaxScore
}

// BasePoints returns the unmultiplied points an event earns.
// Quiz scoring pays a flat 10 plus accuracy, first-attempt and speed
// bonuses; recycling pays per item.
func (e *ActivityEvent) BasePoints() int {
	switch e.Type {
	case ActivityLessonCompleted:
		return 5
	case ActivityQuizCompleted:
		return 10 + e.quizBonus()
	case ActivityLogin:
		return 1
	case ActivityRecycleLogged:
		qty := e.Quantity
		if qty < 1 {
			qty = 1
		}
		return 2 * qty
	case ActivityEcoAction:
		return 3
	default:
		return 0
	}
}

// fastQuizSeconds is the cutoff under which a quiz earns the speed bonus.
const fastQuizSeconds = 120

// quizBonus pays accuracy (15 for perfect, 10 at 90%, 5 at 75%) plus
// 5 for passing on the first attempt and 5 for finishing within the
// speed cutoff. Attempt and duration default to "unknown" and earn
// nothing.
func (e *ActivityEvent) quizBonus() int {
	bonus := 0

	if e.MaxScore > 0 {
		pct := float64(e.Score) / float64(e.MaxScore) * 100
		switch {
		case pct >= 100:
			bonus += 15
		case pct >= 90:
			bonus += 10
		case pct >= 75:
			bonus += 5
		}
	}

	if e.Attempt == 1 {
		bonus += 5
	}
	if e.DurationSec > 0 && e.DurationSec <= fastQuizSeconds {
		bonus += 5
	}

	return bonus
}

// LoginCountBonus returns the one-time fixed bonus paid at exact login
// counts, or 0.
func LoginCountBonus(count int) int {
	switch count {
	case 7:
		return 10
	case 30:
		return 50
	case 100:
		return 200
	default:
		return 0
	}
}

// MissionDelta is a unit of mission progress contributed by an event.
type MissionDelta struct {
	Type  MissionType
	Delta int
}

// MissionDeltas maps an activity event onto the mission goals it advances.
// Perfect quizzes advance both the quiz-count and perfect-score goals.
// Progress for earn_xp missions is driven by the awarded XP instead and
// is not produced here.
func (e *ActivityEvent) MissionDeltas() []MissionDelta {
	switch e.Type {
	case ActivityLessonCompleted:
		return []MissionDelta{{MissionCompleteLessons, 1}}
	case ActivityQuizCompleted:
		deltas := []MissionDelta{{MissionCompleteQuizzes, 1}}
		if e.IsPerfectQuiz() {
			deltas = append(deltas, MissionDelta{MissionPerfectScore, 1})
		}
		return deltas
	case ActivityLogin:
		return []MissionDelta{{MissionDailyLogin, 1}}
	case ActivityRecycleLogged:
		qty := e.Quantity
		if qty < 1 {
			qty = 1
		}
		return []MissionDelta{{MissionRecycleItems, qty}}
	case ActivityEcoAction:
		return []MissionDelta{{MissionEcoAction, 1}}
	default:
		return nil
	}
}
