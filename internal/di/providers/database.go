package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/ecomindsapp/ecominds-server/internal/cache"
	"github.com/ecomindsapp/ecominds-server/internal/config"
	"github.com/ecomindsapp/ecominds-server/internal/logger"
	"github.com/ecomindsapp/ecominds-server/internal/sse"
	"github.com/ecomindsapp/ecominds-server/internal/store"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.Dir, "db")
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// CacheHandle wraps the leaderboard cache with shutdown capability.
type CacheHandle struct {
	cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideCache provides the in-memory TTL cache used by the leaderboard.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	c, err := cache.NewMemory()
	if err != nil {
		return nil, err
	}
	return &CacheHandle{Cache: c}, nil
}
