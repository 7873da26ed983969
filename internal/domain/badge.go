package domain

import "time"

// Well-known badge IDs awarded by streak milestones. Seeded at startup
// so references from the milestone table always resolve.
const (
	BadgeWeekStreak    = "bdg-week-streak"
	BadgeMonthStreak   = "bdg-month-streak"
	BadgeCenturyStreak = "bdg-century-streak"
	BadgeYearStreak    = "bdg-year-streak"
)

// BadgeRarity grades how hard a badge is to earn.
type BadgeRarity string

const (
	RarityCommon    BadgeRarity = "common"
	RarityRare      BadgeRarity = "rare"
	RarityEpic      BadgeRarity = "epic"
	RarityLegendary BadgeRarity = "legendary"
)

// Badge is a cosmetic collectible, earned via achievements or streak
// milestones.
type Badge struct {
	Base
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Icon        string      `json:"icon,omitempty"`
	Rarity      BadgeRarity `json:"rarity"`
}

// UserBadge records a badge earned by a user.
type UserBadge struct {
	UserID   string    `json:"user_id"`
	BadgeID  string    `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}
