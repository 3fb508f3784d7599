package jobs

import (
	"context"
	"log"
	"time"

	"registro/attendance/internal/config"
	"registro/attendance/internal/db"
)

// StartRetentionJob periodically prunes archived reports older than the
// configured maximum age. The job stops with the parent context.
func StartRetentionJob(ctx context.Context, cfg config.Config, store *db.Store) {
	if !cfg.RetentionJobEnabled {
		return
	}
	if store == nil {
		log.Printf("retention job disabled: archive store not configured")
		return
	}
	interval := cfg.RetentionJobInterval
	if interval <= 0 {
		interval = time.Hour
	}
	maxAge := cfg.ArchiveMaxAge
	if maxAge <= 0 {
		maxAge = 365 * 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().UTC().Add(-maxAge)
				tickCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				purged, err := store.DeleteReportsBefore(tickCtx, cutoff)
				cancel()
				if err != nil {
					log.Printf("retention job error: %v", err)
					continue
				}
				if purged > 0 {
					log.Printf("retention job purged %d archived reports", purged)
				}
			}
		}
	}()
}
