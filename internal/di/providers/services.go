package providers

import (
	"github.com/samber/do/v2"

	"github.com/ecomindsapp/ecominds-server/internal/auth"
	"github.com/ecomindsapp/ecominds-server/internal/config"
	"github.com/ecomindsapp/ecominds-server/internal/logger"
	"github.com/ecomindsapp/ecominds-server/internal/service"
	"github.com/ecomindsapp/ecominds-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvidePointsService provides the points ledger service.
func ProvidePointsService(i do.Injector) (*service.PointsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPointsService(storeHandle.Store, sseHandle.Manager, log.Logger), nil
}

// ProvideStreakService provides the streak service.
func ProvideStreakService(i do.Injector) (*service.StreakService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	points := do.MustInvoke[*service.PointsService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStreakService(
		storeHandle.Store,
		points,
		sseHandle.Manager,
		log.Logger,
		cfg.Location(),
		cfg.Progression.FreezeCostCoins,
		cfg.Progression.MaxFreezes,
	), nil
}

// ProvideMissionService provides the mission service.
func ProvideMissionService(i do.Injector) (*service.MissionService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	points := do.MustInvoke[*service.PointsService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMissionService(
		storeHandle.Store,
		points,
		service.HeuristicScorer{},
		sseHandle.Manager,
		log.Logger,
		cfg.Location(),
	), nil
}

// ProvideLeaderboardService provides the leaderboard service.
func ProvideLeaderboardService(i do.Injector) (*service.LeaderboardService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLeaderboardService(
		storeHandle.Store,
		cacheHandle.Cache,
		log.Logger,
		cfg.Location(),
		cfg.Progression.LeaderboardCacheTTL,
	), nil
}

// ProvideAchievementService provides the achievement service.
func ProvideAchievementService(i do.Injector) (*service.AchievementService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	points := do.MustInvoke[*service.PointsService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAchievementService(storeHandle.Store, points, sseHandle.Manager, log.Logger), nil
}

// ProvideProgressionService provides the activity orchestrator.
func ProvideProgressionService(i do.Injector) (*service.ProgressionService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	points := do.MustInvoke[*service.PointsService](i)
	streaks := do.MustInvoke[*service.StreakService](i)
	missions := do.MustInvoke[*service.MissionService](i)
	leaderboard := do.MustInvoke[*service.LeaderboardService](i)
	achievements := do.MustInvoke[*service.AchievementService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProgressionService(
		storeHandle.Store,
		points,
		streaks,
		missions,
		leaderboard,
		achievements,
		log.Logger,
		cfg.Location(),
	), nil
}

// ProvideUserService provides the user profile service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, log.Logger, cfg.Location()), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	progression := do.MustInvoke[*service.ProgressionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, validator, progression, log.Logger), nil
}
