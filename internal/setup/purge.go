package setup

import (
	"context"
	"log/slog"
	"time"

	"github.com/bornholm/go-x/slogx"

	"github.com/Overland-East-Bay/membership-tracker/internal/platform/metrics"
	"github.com/Overland-East-Bay/membership-tracker/internal/ports/out/clock"
	"github.com/Overland-East-Bay/membership-tracker/internal/ports/out/idempotency"
)

// PurgeIdempotency drops records older than retention once per interval
// until ctx is done. The first sweep runs immediately.
func PurgeIdempotency(ctx context.Context, store idempotency.Store, clk clock.Clock, retention, interval time.Duration, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		sweepIdempotency(ctx, store, clk.Now().Add(-retention), logger)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func sweepIdempotency(ctx context.Context, store idempotency.Store, cutoff time.Time, logger *slog.Logger) {
	removed, err := store.Purge(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			logger.ErrorContext(ctx, "could not purge idempotency records", slogx.Error(err))
		}
		return
	}
	if removed > 0 {
		metrics.IdempotencyPurged.Add(float64(removed))
		logger.DebugContext(ctx, "purged idempotency records", slog.Int("removed", removed), slog.Time("cutoff", cutoff))
	}
}
