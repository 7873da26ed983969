// Package sse implements Server-Sent Events for real-time progression updates.
package sse

import (
	"time"

	"github.com/ecomindsapp/ecominds-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventPointsAwarded fires whenever a ledger entry lands for a user.
	EventPointsAwarded EventType = "points.awarded"
	// EventLevelUp fires when lifetime XP crosses a level boundary.
	EventLevelUp EventType = "level.up"
	// EventStreakMilestone fires when a streak reaches a rewarded length.
	EventStreakMilestone EventType = "streak.milestone"
	// EventAchievementUnlocked fires on a first-time achievement unlock.
	EventAchievementUnlocked EventType = "achievement.unlocked"
	// EventMissionCompleted fires when a mission reaches its target.
	EventMissionCompleted EventType = "mission.completed"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// Progression events are personal, so every event carries the user
	// it belongs to and broadcast() delivers it to that user only.
	// Not serialized to the client.
	UserID string `json:"-"`
}

// PointsAwardedEventData is the data payload for points.awarded events.
type PointsAwardedEventData struct {
	Points  int                 `json:"points"`
	Source  domain.PointsSource `json:"source"`
	Balance int                 `json:"balance"`
	TotalXP int                 `json:"total_xp"`
}

// LevelUpEventData is the data payload for level.up events.
type LevelUpEventData struct {
	Level     int `json:"level"`
	CoinBonus int `json:"coin_bonus"`
}

// StreakMilestoneEventData is the data payload for streak.milestone events.
type StreakMilestoneEventData struct {
	Days        int    `json:"days"`
	RewardXP    int    `json:"reward_xp"`
	RewardCoins int    `json:"reward_coins"`
	BadgeID     string `json:"badge_id,omitempty"`
}

// AchievementUnlockedEventData is the data payload for achievement.unlocked events.
type AchievementUnlockedEventData struct {
	AchievementID string `json:"achievement_id"`
	Name          string `json:"name"`
	RewardXP      int    `json:"reward_xp"`
	RewardCoins   int    `json:"reward_coins"`
}

// MissionCompletedEventData is the data payload for mission.completed events.
type MissionCompletedEventData struct {
	MissionID   string `json:"mission_id"`
	Title       string `json:"title"`
	RewardXP    int    `json:"reward_xp"`
	RewardCoins int    `json:"reward_coins"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewPointsAwardedEvent creates a points.awarded event for a user.
func NewPointsAwardedEvent(userID string, points int, source domain.PointsSource, balance, totalXP int) Event {
	return Event{
		Type:      EventPointsAwarded,
		UserID:    userID,
		Data:      PointsAwardedEventData{Points: points, Source: source, Balance: balance, TotalXP: totalXP},
		Timestamp: time.Now(),
	}
}

// NewLevelUpEvent creates a level.up event for a user.
func NewLevelUpEvent(userID string, level, coinBonus int) Event {
	return Event{
		Type:      EventLevelUp,
		UserID:    userID,
		Data:      LevelUpEventData{Level: level, CoinBonus: coinBonus},
		Timestamp: time.Now(),
	}
}

// NewStreakMilestoneEvent creates a streak.milestone event for a user.
func NewStreakMilestoneEvent(userID string, days int, reward domain.MilestoneReward) Event {
	return Event{
		Type:   EventStreakMilestone,
		UserID: userID,
		Data: StreakMilestoneEventData{
			Days:        days,
			RewardXP:    reward.XP,
			RewardCoins: reward.Coins,
			BadgeID:     reward.BadgeID,
		},
		Timestamp: time.Now(),
	}
}

// NewAchievementUnlockedEvent creates an achievement.unlocked event for a user.
func NewAchievementUnlockedEvent(userID string, achievement *domain.Achievement) Event {
	return Event{
		Type:   EventAchievementUnlocked,
		UserID: userID,
		Data: AchievementUnlockedEventData{
			AchievementID: achievement.ID,
			Name:          achievement.Name,
			RewardXP:      achievement.RewardXP,
			RewardCoins:   achievement.RewardCoins,
		},
		Timestamp: time.Now(),
	}
}

// NewMissionCompletedEvent creates a mission.completed event for a user.
func NewMissionCompletedEvent(userID string, mission *domain.Mission) Event {
	return Event{
		Type:   EventMissionCompleted,
		UserID: userID,
		Data: MissionCompletedEventData{
			MissionID:   mission.ID,
			Title:       mission.Title,
			RewardXP:    mission.RewardXP,
			RewardCoins: mission.RewardCoins,
		},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Data:      HeartbeatEventData{ServerTime: time.Now()},
		Timestamp: time.Now(),
	}
}
