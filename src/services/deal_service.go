package services

import (
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/dealfolio/backend/src/database"
	"github.com/username/dealfolio/backend/src/logger"
	"github.com/username/dealfolio/backend/src/models"
	"github.com/username/dealfolio/backend/src/parsers"
	"github.com/username/dealfolio/backend/src/views"
)

const (
	ckDealsForView = "deals_view_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type dealServiceImpl struct {
	registry  *views.Registry
	dealCache *cache.Cache
}

func NewDealService(registry *views.Registry, dealCache *cache.Cache) DealService {
	return &dealServiceImpl{
		registry:  registry,
		dealCache: dealCache,
	}
}

// ProcessUpload parses the file and stores its deals under the view.
// Rows already present (same view + row hash) are skipped, so re-uploading
// the same sheet is idempotent.
func (s *dealServiceImpl) ProcessUpload(fileReader io.Reader, view, source string) (*UploadSummary, error) {
	startTime := time.Now()
	logger.L.Info("ProcessUpload START", "view", view, "source", source)

	if _, err := s.registry.Get(view); err != nil {
		return nil, err
	}

	parser, err := parsers.GetParser(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	deals, err := parser.Parse(fileReader, view)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	summary := &UploadSummary{View: view, Parsed: len(deals)}
	if len(deals) == 0 {
		return summary, nil
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: beginning database transaction: %v", ErrProcessingFailed, err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`INSERT INTO deals (view, owner, company, stage, source_type, pipeline_value, discovery_date, input_string, hash_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("%w: preparing insert statement: %v", ErrProcessingFailed, err)
	}
	defer stmt.Close()

	for _, deal := range deals {
		var discovery interface{}
		if deal.DiscoveryDate != nil {
			discovery = deal.DiscoveryDate.Format("2006-01-02")
		}
		_, err := stmt.Exec(deal.View, deal.Owner, deal.Company, deal.Stage, deal.SourceType,
			deal.PipelineValue, discovery, deal.InputString, deal.HashID)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
				summary.Duplicates++
				continue
			}
			return nil, fmt.Errorf("%w: inserting deal (owner %s, company %s): %v", ErrProcessingFailed, deal.Owner, deal.Company, err)
		}
		summary.Inserted++
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing deals: %v", ErrProcessingFailed, err)
	}

	s.InvalidateViewCache(view)
	logger.L.Info("ProcessUpload END", "view", view, "parsed", summary.Parsed,
		"inserted", summary.Inserted, "duplicates", summary.Duplicates, "duration", time.Since(startTime))
	return summary, nil
}

// GetDeals returns the view's deal snapshot, from cache when warm.
func (s *dealServiceImpl) GetDeals(view string) ([]models.Deal, error) {
	if _, err := s.registry.Get(view); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf(ckDealsForView, view)
	if cached, found := s.dealCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for deal snapshot", "view", view)
		return cached.([]models.Deal), nil
	}

	logger.L.Info("Cache miss for deal snapshot, loading from DB", "view", view)
	deals, err := fetchDealsForView(view)
	if err != nil {
		return nil, err
	}
	s.dealCache.Set(cacheKey, deals, DefaultCacheExpiration)
	return deals, nil
}

func (s *dealServiceImpl) DeleteAllDeals(view string) error {
	if _, err := s.registry.Get(view); err != nil {
		return err
	}
	result, err := database.DB.Exec(`DELETE FROM deals WHERE view = ?`, view)
	if err != nil {
		return fmt.Errorf("error deleting deals for view %s: %w", view, err)
	}
	deleted, _ := result.RowsAffected()
	s.InvalidateViewCache(view)
	logger.L.Info("Deleted all deals for view", "view", view, "deleted", deleted)
	return nil
}

// InvalidateViewCache clears the view's cached snapshot, forcing a DB
// reload on the next request.
func (s *dealServiceImpl) InvalidateViewCache(view string) {
	s.dealCache.Delete(fmt.Sprintf(ckDealsForView, view))
	logger.L.Info("Invalidated deal cache for view", "view", view)
}

func fetchDealsForView(view string) ([]models.Deal, error) {
	rows, err := database.DB.Query(`SELECT id, view, owner, company, stage, source_type, pipeline_value, discovery_date, input_string, hash_id FROM deals WHERE view = ? ORDER BY discovery_date ASC, id ASC`, view)
	if err != nil {
		return nil, fmt.Errorf("error querying deals for view %s: %w", view, err)
	}
	defer rows.Close()

	var deals []models.Deal
	for rows.Next() {
		var deal models.Deal
		var company, sourceType, discovery, inputString, hashID sql.NullString
		var pipelineValue sql.NullFloat64
		scanErr := rows.Scan(&deal.ID, &deal.View, &deal.Owner, &company, &deal.Stage,
			&sourceType, &pipelineValue, &discovery, &inputString, &hashID)
		if scanErr != nil {
			return nil, fmt.Errorf("error scanning deal row for view %s: %w", view, scanErr)
		}
		deal.Company = company.String
		deal.SourceType = sourceType.String
		deal.PipelineValue = pipelineValue.Float64
		deal.InputString = inputString.String
		deal.HashID = hashID.String
		if discovery.Valid && discovery.String != "" {
			if ts, parseErr := time.Parse("2006-01-02", discovery.String); parseErr == nil {
				deal.DiscoveryDate = &ts
			}
		}
		deals = append(deals, deal)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over deal rows for view %s: %w", view, err)
	}
	logger.L.Info("DB fetch complete.", "view", view, "dealCount", len(deals))
	return deals, nil
}
