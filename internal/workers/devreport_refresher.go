package workers

import (
	"context"
	"log"
	"time"

	"intersect-backend/internal/services"
	"intersect-backend/internal/storage"
)

const refreshInterval = time.Hour

// StartDevReportRefresher keeps each organization's daily dev report warm so
// the first dashboard view of the day does not pay the generation latency.
func StartDevReportRefresher(ctx context.Context, store *storage.Storage, reports *services.DevReportService) {
	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refreshOnce(ctx, store, reports)
			}
		}
	}()
	log.Println("INFO Dev report refresher started")
}

func refreshOnce(ctx context.Context, store *storage.Storage, reports *services.DevReportService) {
	orgs, err := store.ListOrganizationsWithRepo(ctx)
	if err != nil {
		log.Printf("WARN Dev report refresher list organizations error: %v", err)
		return
	}

	for i := range orgs {
		orgCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		if _, err := reports.LatestDevReport(orgCtx, &orgs[i]); err != nil {
			log.Printf("WARN Dev report refresh error for %s: %v", orgs[i].ID, err)
		}
		cancel()
	}
}
