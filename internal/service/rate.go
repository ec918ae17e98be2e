package service

import (
	"context"
	"fmt"
	"time"

	"fleetrent-backend/internal/domain"
	"fleetrent-backend/internal/logger"
	"fleetrent-backend/internal/repository"
	"fleetrent-backend/internal/utils"
)

type rateService struct {
	rateRepo repository.RateRepository
}

func NewRateService(rateRepo repository.RateRepository) RateService {
	return &rateService{rateRepo: rateRepo}
}

func (s *rateService) Resolve(ctx context.Context, companyID, groupID int32, start, end time.Time) (*domain.RateQuote, error) {
	logger.EnterMethod("rateService.Resolve", "companyID", companyID, "groupID", groupID, "start", start, "end", end)

	if end.Before(start) {
		err := domain.ValidationError{Field: "return", Msg: "must not be before pickup"}
		logger.ExitMethodWithError("rateService.Resolve", err, "groupID", groupID)
		return nil, err
	}
	days := utils.RentalDays(start, end)

	rates, err := s.rateRepo.ListActive(ctx, companyID)
	if err != nil {
		logger.ExitMethodWithError("rateService.Resolve", err, "groupID", groupID)
		return nil, fmt.Errorf("failed to list rates: %w", err)
	}
	rate := domain.SelectRate(rates, start, end)
	if rate == nil {
		err := domain.NotFoundError{Resource: "rate"}
		logger.ExitMethodWithError("rateService.Resolve", err, "groupID", groupID)
		return nil, err
	}

	tiers, err := s.rateRepo.ListTiers(ctx, rate.ID, groupID)
	if err != nil {
		logger.ExitMethodWithError("rateService.Resolve", err, "rateID", rate.ID, "groupID", groupID)
		return nil, fmt.Errorf("failed to list price tiers: %w", err)
	}
	tier := domain.SelectTier(tiers, groupID, days)
	if tier == nil {
		err := domain.NotFoundError{Resource: "price tier"}
		logger.ExitMethodWithError("rateService.Resolve", err, "rateID", rate.ID, "groupID", groupID, "days", days)
		return nil, err
	}

	quote := domain.NewRateQuote(*rate, *tier, days)
	logger.ExitMethod("rateService.Resolve", "rateID", rate.ID, "days", days, "dailyPrice", quote.DailyPrice.String())
	return quote, nil
}

func (s *rateService) SetPriceTiers(ctx context.Context, companyID, rateID, groupID int32, tiers []domain.PriceTier) error {
	logger.EnterMethod("rateService.SetPriceTiers", "companyID", companyID, "rateID", rateID, "groupID", groupID, "count", len(tiers))

	// Scope check: the rate must belong to the company.
	if _, err := s.rateRepo.GetByID(ctx, companyID, rateID); err != nil {
		logger.ExitMethodWithError("rateService.SetPriceTiers", err, "rateID", rateID)
		return err
	}

	for i := range tiers {
		tiers[i].RateID = rateID
		tiers[i].GroupID = groupID
	}
	if err := domain.ValidateTiers(tiers); err != nil {
		logger.ExitMethodWithError("rateService.SetPriceTiers", err, "rateID", rateID)
		return err
	}

	if err := s.rateRepo.ReplaceTiers(ctx, rateID, groupID, tiers); err != nil {
		logger.ExitMethodWithError("rateService.SetPriceTiers", err, "rateID", rateID)
		return err
	}
	logger.ExitMethod("rateService.SetPriceTiers", "rateID", rateID, "groupID", groupID)
	return nil
}
