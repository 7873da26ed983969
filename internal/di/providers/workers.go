package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/ecomindsapp/ecominds-server/internal/config"
	"github.com/ecomindsapp/ecominds-server/internal/logger"
	"github.com/ecomindsapp/ecominds-server/internal/service"
)

// JobsHandle owns the background job goroutines.
type JobsHandle struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *JobsHandle) Shutdown() error {
	h.cancel()
	return nil
}

// ProvideJobs starts the periodic maintenance jobs: mission expiry
// sweeps, leaderboard cache rewarming and ledger reconciliation.
func ProvideJobs(i do.Injector) (*JobsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	missions := do.MustInvoke[*service.MissionService](i)
	leaderboard := do.MustInvoke[*service.LeaderboardService](i)
	points := do.MustInvoke[*service.PointsService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	runEvery(ctx, cfg.Jobs.MissionSweepInterval, func() {
		expired, err := missions.Sweep(ctx, time.Now())
		if err != nil {
			log.Warn("Mission sweep failed", "error", err)
			return
		}
		if expired > 0 {
			log.Info("Mission sweep expired lapsed missions", "count", expired)
		}
	})

	runEvery(ctx, cfg.Jobs.RankRefreshInterval, func() {
		if err := leaderboard.Refresh(ctx, time.Now()); err != nil {
			log.Warn("Leaderboard refresh failed", "error", err)
		}
	})

	runEvery(ctx, cfg.Jobs.ReconcileInterval, func() {
		users, err := storeHandle.ListUsers(ctx)
		if err != nil {
			log.Warn("Reconciliation user listing failed", "error", err)
			return
		}
		for _, user := range users {
			if _, err := points.Reconcile(ctx, user.ID); err != nil {
				log.Warn("Reconciliation failed", "userID", user.ID, "error", err)
			}
		}
		log.Info("Ledger reconciliation pass finished", "users", len(users))
	})

	log.Info("Background jobs started",
		"missionSweep", cfg.Jobs.MissionSweepInterval,
		"rankRefresh", cfg.Jobs.RankRefreshInterval,
		"reconcile", cfg.Jobs.ReconcileInterval)

	return &JobsHandle{cancel: cancel}, nil
}

// runEvery runs fn on a fixed cadence until ctx is canceled.
func runEvery(ctx context.Context, interval time.Duration, fn func()) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-ctx.Done():
				return
			}
		}
	}()
}
