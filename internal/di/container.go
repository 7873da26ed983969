// Package di provides dependency injection configuration for the EcoMinds server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/ecomindsapp/ecominds-server/internal/auth"
	"github.com/ecomindsapp/ecominds-server/internal/config"
	"github.com/ecomindsapp/ecominds-server/internal/di/providers"
	"github.com/ecomindsapp/ecominds-server/internal/logger"
	"github.com/ecomindsapp/ecominds-server/internal/service"
	"github.com/ecomindsapp/ecominds-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideValidator)

	// Data layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideCache)
	do.Provide(injector, providers.ProvideBootstrap)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Progression services
	do.Provide(injector, providers.ProvidePointsService)
	do.Provide(injector, providers.ProvideStreakService)
	do.Provide(injector, providers.ProvideMissionService)
	do.Provide(injector, providers.ProvideLeaderboardService)
	do.Provide(injector, providers.ProvideAchievementService)
	do.Provide(injector, providers.ProvideProgressionService)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideAuthService)

	// Background jobs and server
	do.Provide(injector, providers.ProvideJobs)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.CacheHandle](injector)
	_ = do.MustInvoke[*providers.Bootstrap](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Progression services
	_ = do.MustInvoke[*service.PointsService](injector)
	_ = do.MustInvoke[*service.StreakService](injector)
	_ = do.MustInvoke[*service.MissionService](injector)
	_ = do.MustInvoke[*service.LeaderboardService](injector)
	_ = do.MustInvoke[*service.AchievementService](injector)
	_ = do.MustInvoke[*service.ProgressionService](injector)
	_ = do.MustInvoke[*service.UserService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)

	// Jobs and server last so every dependency is ready
	_ = do.MustInvoke[*providers.JobsHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
