package jobs

import (
	"context"
	"database/sql"

	"github.com/sssohn/pointsd/internal/db"
	"github.com/sssohn/pointsd/internal/metrics"
)

// RefreshPendingGauge keeps the pending-request gauge honest even when no
// dispositions flow through this process.
func RefreshPendingGauge(database *sql.DB) Job {
	return func(ctx context.Context) error {
		n, err := db.CountPendingRequests(ctx, database)
		if err != nil {
			return err
		}
		metrics.PendingRequests.Set(float64(n))
		return nil
	}
}
