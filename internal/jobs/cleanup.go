// Package jobs runs periodic catalog maintenance in the background.
package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/inflationfighter/price-service/internal/catalog"
)

const dateLayout = "2006-01-02"

// CleanupConfig holds configuration for cleanup jobs
type CleanupConfig struct {
	Enabled           bool
	DealPruneInterval time.Duration
}

// DefaultCleanupConfig returns the default cleanup configuration
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		Enabled:           true,
		DealPruneInterval: time.Hour,
	}
}

// CleanupManager prunes expired deals on a fixed interval
type CleanupManager struct {
	config CleanupConfig
	pruner catalog.DealPruner
	logger zerolog.Logger
	now    func() time.Time

	done chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(config CleanupConfig, pruner catalog.DealPruner, logger zerolog.Logger) *CleanupManager {
	if config.DealPruneInterval <= 0 {
		config.DealPruneInterval = DefaultCleanupConfig().DealPruneInterval
	}
	return &CleanupManager{
		config: config,
		pruner: pruner,
		logger: logger.With().Str("component", "cleanup").Logger(),
		now:    time.Now,
		done:   make(chan struct{}),
	}
}

// Start runs the deal pruning job until ctx is done. Wait blocks until it
// has returned.
func (cm *CleanupManager) Start(ctx context.Context) {
	if !cm.config.Enabled {
		cm.logger.Info().Msg("Cleanup jobs are disabled, not starting")
		close(cm.done)
		return
	}

	cm.logger.Info().
		Dur("deal_interval", cm.config.DealPruneInterval).
		Msg("Starting cleanup manager")

	go cm.run(ctx)
}

// Wait blocks until the job stops or the timeout elapses.
func (cm *CleanupManager) Wait(timeout time.Duration) {
	select {
	case <-cm.done:
		cm.logger.Info().Msg("Cleanup manager stopped")
	case <-time.After(timeout):
		cm.logger.Warn().Msg("Cleanup job did not stop gracefully")
	}
}

func (cm *CleanupManager) run(ctx context.Context) {
	defer close(cm.done)

	ticker := time.NewTicker(cm.config.DealPruneInterval)
	defer ticker.Stop()

	// Run once immediately on startup
	cm.PruneDeals(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cm.PruneDeals(ctx)
		}
	}
}

// PruneDeals removes deals that ended before today and returns how many
// were deleted.
func (cm *CleanupManager) PruneDeals(ctx context.Context) int {
	start := time.Now()
	today := cm.now().Format(dateLayout)

	deleted, err := cm.pruner.PruneExpiredDeals(ctx, today)
	if err != nil {
		cm.logger.Error().Err(err).Msg("Failed to prune expired deals")
		return 0
	}

	if deleted > 0 {
		cm.logger.Info().
			Int("deleted", deleted).
			Str("before", today).
			Dur("duration", time.Since(start)).
			Msg("Pruned expired deals")
	} else {
		cm.logger.Debug().Msg("No expired deals to prune")
	}
	return deleted
}
