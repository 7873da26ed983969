package api

import (
	"github.com/ecomindsapp/ecominds-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth         *service.AuthService
	User         *service.UserService
	Points       *service.PointsService
	Streaks      *service.StreakService
	Missions     *service.MissionService
	Leaderboard  *service.LeaderboardService
	Achievements *service.AchievementService
	Progression  *service.ProgressionService
}
