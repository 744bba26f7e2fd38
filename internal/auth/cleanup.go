// AngelaMos | 2026
// cleanup.go

package auth

import (
	"context"
	"log/slog"
	"time"
)

const pruneTimeout = 30 * time.Second

// Pruner is the part of Service the cleanup loop needs.
type Pruner interface {
	PruneExpired(ctx context.Context) (int64, error)
}

// RunCleanup prunes expired refresh tokens once immediately and then on
// every tick until ctx is canceled. A non-positive interval disables it.
func RunCleanup(
	ctx context.Context,
	pruner Pruner,
	interval time.Duration,
	logger *slog.Logger,
) {
	if interval <= 0 {
		return
	}

	prune(ctx, pruner, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("refresh token cleanup stopped")
			return
		case <-ticker.C:
			prune(ctx, pruner, logger)
		}
	}
}

func prune(ctx context.Context, pruner Pruner, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, pruneTimeout)
	defer cancel()

	n, err := pruner.PruneExpired(ctx)
	if err != nil {
		logger.Warn("refresh token cleanup failed", "error", err)
		return
	}

	if n > 0 {
		logger.Info("pruned expired refresh tokens", "deleted", n)
	}
}
