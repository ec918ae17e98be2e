package service

import (
	"context"
	"time"

	"fleetrent-backend/internal/domain"
	"fleetrent-backend/internal/logger"
	"fleetrent-backend/internal/repository"
)

type discountService struct {
	discountRepo repository.DiscountRepository
	now          func() time.Time
}

func NewDiscountService(discountRepo repository.DiscountRepository) DiscountService {
	return &discountService{discountRepo: discountRepo, now: time.Now}
}

func (s *discountService) Validate(ctx context.Context, check domain.DiscountCheck) (*domain.DiscountResult, error) {
	logger.EnterMethod("discountService.Validate", "companyID", check.CompanyID, "code", check.Code, "days", check.TotalDays)

	code, err := s.discountRepo.GetByCode(ctx, check.CompanyID, domain.NormalizeDiscountCode(check.Code))
	if err != nil && !domain.IsNotFound(err) {
		logger.ExitMethodWithError("discountService.Validate", err, "code", check.Code)
		return nil, err
	}
	if err != nil {
		code = nil
	}

	result := domain.EvaluateDiscount(code, check, s.now())
	logger.ExitMethod("discountService.Validate", "code", check.Code, "valid", result.IsValid, "amount", result.Amount.String())
	return result, nil
}

func (s *discountService) CreateCode(ctx context.Context, code *domain.DiscountCode) error {
	logger.EnterMethod("discountService.CreateCode", "companyID", code.CompanyID, "code", code.Code)

	if code.CompanyID <= 0 {
		err := domain.ValidationError{Field: "company_id", Msg: "is required"}
		logger.ExitMethodWithError("discountService.CreateCode", err)
		return err
	}
	if err := code.Validate(); err != nil {
		logger.ExitMethodWithError("discountService.CreateCode", err, "code", code.Code)
		return err
	}
	if err := s.discountRepo.Create(ctx, code); err != nil {
		logger.ExitMethodWithError("discountService.CreateCode", err, "code", code.Code)
		return err
	}
	logger.ExitMethod("discountService.CreateCode", "id", code.ID, "code", code.Code)
	return nil
}
