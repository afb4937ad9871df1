package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/username/dealfolio/backend/src/logger"
	"github.com/username/dealfolio/backend/src/views"
	"golang.org/x/oauth2"
)

// SheetSyncService periodically re-fetches each view's Google-Sheet CSV
// export and pushes it through the normal upload path. Duplicate rows are
// dropped by the storage layer, so a sync only adds what changed.
type SheetSyncService struct {
	dealService DealService
	registry    *views.Registry
	client      *http.Client
	cron        *cron.Cron
}

// NewSheetSyncService builds the sync service. An empty token produces a
// plain HTTP client, which still works for sheets published to the web.
func NewSheetSyncService(dealService DealService, registry *views.Registry, token string) *SheetSyncService {
	client := &http.Client{}
	if token != "" {
		source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client = oauth2.NewClient(context.Background(), source)
	}
	client.Timeout = 30 * time.Second
	return &SheetSyncService{
		dealService: dealService,
		registry:    registry,
		client:      client,
		cron:        cron.New(),
	}
}

// Start registers the sync job on the given cron schedule and starts the
// scheduler.
func (s *SheetSyncService) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.SyncAll); err != nil {
		return fmt.Errorf("invalid sheet sync schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	logger.L.Info("Sheet sync scheduler started", "schedule", schedule)
	return nil
}

// Stop halts the scheduler, waiting for a running sync to finish.
func (s *SheetSyncService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.L.Info("Sheet sync scheduler stopped")
}

// SyncAll syncs every view that has a sheet URL configured. One failing
// view does not stop the others.
func (s *SheetSyncService) SyncAll() {
	for _, name := range s.registry.Names() {
		view, err := s.registry.Get(name)
		if err != nil || view.SheetURL == "" {
			continue
		}
		if err := s.SyncView(view); err != nil {
			logger.L.Error("Sheet sync failed for view", "view", name, "error", err)
		}
	}
}

// SyncView fetches one view's sheet export and ingests it.
func (s *SheetSyncService) SyncView(view views.View) error {
	logger.L.Info("Syncing sheet for view", "view", view.Name, "url", view.SheetURL)

	resp, err := s.client.Get(view.SheetURL)
	if err != nil {
		return fmt.Errorf("fetching sheet for view %s: %w", view.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching sheet for view %s: unexpected status %d", view.Name, resp.StatusCode)
	}

	summary, err := s.dealService.ProcessUpload(resp.Body, view.Name, "gsheet")
	if err != nil {
		return fmt.Errorf("ingesting sheet for view %s: %w", view.Name, err)
	}
	logger.L.Info("Sheet sync complete", "view", view.Name,
		"parsed", summary.Parsed, "inserted", summary.Inserted, "duplicates", summary.Duplicates)
	return nil
}
