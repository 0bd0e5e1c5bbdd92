package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/docrelay/docrelay/internal/shares"
	"github.com/docrelay/docrelay/pkg/lifecycle"
)

// purgeTimeout bounds a single purge sweep.
const purgeTimeout = time.Minute

// StartPurge runs periodic expired-share cleanup until shutdown. The
// loop is registered with the coordinator so shutdown waits for an
// in-flight sweep to finish.
func StartPurge(coordinator *lifecycle.Coordinator, system shares.System, interval time.Duration, logger *slog.Logger) {
	coordinator.OnShutdown(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		logger.Info("share purge scheduled", "interval", interval)

		for {
			select {
			case <-coordinator.Context().Done():
				logger.Info("share purge stopped")
				return
			case <-ticker.C:
				sweep(system, logger)
			}
		}
	})
}

func sweep(system shares.System, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	if _, err := system.PurgeExpired(ctx); err != nil {
		logger.Error("share purge failed", "error", err)
	}
}
