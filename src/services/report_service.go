package services

import (
	"time"

	"github.com/username/dealfolio/backend/src/models"
	"github.com/username/dealfolio/backend/src/processors"
	"github.com/username/dealfolio/backend/src/valuation"
	"github.com/username/dealfolio/backend/src/views"
)

type reportServiceImpl struct {
	dealService DealService
	registry    *views.Registry
}

func NewReportService(dealService DealService, registry *views.Registry) ReportService {
	return &reportServiceImpl{
		dealService: dealService,
		registry:    registry,
	}
}

// GetValuedDeals annotates the view's snapshot with probabilities and
// weighted values at the reference time.
func (s *reportServiceImpl) GetValuedDeals(view string, now time.Time) ([]models.ValuedDeal, error) {
	deals, err := s.dealService.GetDeals(view)
	if err != nil {
		return nil, err
	}
	return valuation.ValuateAll(deals, now), nil
}

func (s *reportServiceImpl) GetPipelineReport(view string, now time.Time) ([]models.StageBucket, error) {
	v, err := s.registry.Get(view)
	if err != nil {
		return nil, err
	}
	deals, err := s.dealService.GetDeals(view)
	if err != nil {
		return nil, err
	}
	return processors.BuildPipelineReport(deals, now, v.ExcludedStageSet()), nil
}

func (s *reportServiceImpl) GetAEPerformance(view string, month, now time.Time) ([]models.AEPerformance, error) {
	v, err := s.registry.Get(view)
	if err != nil {
		return nil, err
	}
	deals, err := s.dealService.GetDeals(view)
	if err != nil {
		return nil, err
	}
	return processors.BuildAEPerformance(deals, now, v, month), nil
}

func (s *reportServiceImpl) GetClosingProjections(view string, start, end, now time.Time) ([]models.MonthlyProjection, error) {
	deals, err := s.dealService.GetDeals(view)
	if err != nil {
		return nil, err
	}
	return processors.BuildClosingProjections(deals, start, end, now), nil
}

func (s *reportServiceImpl) GetMeetingGeneration(view string, start, end time.Time) ([]models.MeetingGeneration, error) {
	deals, err := s.dealService.GetDeals(view)
	if err != nil {
		return nil, err
	}
	return processors.BuildMeetingGeneration(deals, start, end), nil
}
