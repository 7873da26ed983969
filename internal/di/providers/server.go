package providers

import (
	"context"
	"net"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/ecomindsapp/ecominds-server/internal/api"
	"github.com/ecomindsapp/ecominds-server/internal/config"
	"github.com/ecomindsapp/ecominds-server/internal/logger"
	"github.com/ecomindsapp/ecominds-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	apiServer *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.apiServer.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:         do.MustInvoke[*service.AuthService](i),
		User:         do.MustInvoke[*service.UserService](i),
		Points:       do.MustInvoke[*service.PointsService](i),
		Streaks:      do.MustInvoke[*service.StreakService](i),
		Missions:     do.MustInvoke[*service.MissionService](i),
		Leaderboard:  do.MustInvoke[*service.LeaderboardService](i),
		Achievements: do.MustInvoke[*service.AchievementService](i),
		Progression:  do.MustInvoke[*service.ProgressionService](i),
	}

	handler := api.NewServer(cfg.Server.Name, storeHandle.Store, services, sseHandle.Manager, log.Logger)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, apiServer: handler}, nil
}
