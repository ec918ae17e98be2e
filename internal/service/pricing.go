package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"fleetrent-backend/internal/domain"
	"fleetrent-backend/internal/logger"
	"fleetrent-backend/internal/repository"
)

type pricingService struct {
	companyRepo  repository.CompanyRepository
	locationRepo repository.LocationRepository
	vehicleRepo  repository.VehicleRepository
	extraRepo    repository.ExtraRepository
	rateSvc      RateService
	discountSvc  DiscountService
	taxRate      decimal.Decimal
}

// NewPricingService builds the calculator used for both the estimate and the
// persisted booking price. defaultTaxRate applies to companies without their
// own rate.
func NewPricingService(
	companyRepo repository.CompanyRepository,
	locationRepo repository.LocationRepository,
	vehicleRepo repository.VehicleRepository,
	extraRepo repository.ExtraRepository,
	rateSvc RateService,
	discountSvc DiscountService,
	defaultTaxRate decimal.Decimal,
) PricingService {
	return &pricingService{
		companyRepo:  companyRepo,
		locationRepo: locationRepo,
		vehicleRepo:  vehicleRepo,
		extraRepo:    extraRepo,
		rateSvc:      rateSvc,
		discountSvc:  discountSvc,
		taxRate:      defaultTaxRate,
	}
}

func (s *pricingService) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.Quote, error) {
	logger.EnterMethod("pricingService.Quote", "companyID", req.CompanyID, "groupID", req.GroupID, "pickup", req.PickupDate, "return", req.ReturnDate)

	if err := req.Validate(); err != nil {
		logger.ExitMethodWithError("pricingService.Quote", err, "companyID", req.CompanyID)
		return nil, err
	}
	start, end, err := domain.RentalWindow(req.PickupDate, req.PickupTime, req.ReturnDate, req.ReturnTime)
	if err != nil {
		logger.ExitMethodWithError("pricingService.Quote", err, "companyID", req.CompanyID)
		return nil, err
	}
	if end.Before(start) {
		err := domain.ValidationError{Field: "return_time", Msg: "return must not be before pickup"}
		logger.ExitMethodWithError("pricingService.Quote", err, "companyID", req.CompanyID)
		return nil, err
	}

	company, err := s.companyRepo.GetByID(ctx, req.CompanyID)
	if err != nil {
		logger.ExitMethodWithError("pricingService.Quote", err, "companyID", req.CompanyID)
		return nil, err
	}
	group, err := s.vehicleRepo.GetGroup(ctx, req.CompanyID, req.GroupID)
	if err != nil {
		logger.ExitMethodWithError("pricingService.Quote", err, "groupID", req.GroupID)
		return nil, err
	}
	if !group.IsActive {
		err := domain.ValidationError{Field: "group_id", Msg: "vehicle group is not active"}
		logger.ExitMethodWithError("pricingService.Quote", err, "groupID", req.GroupID)
		return nil, err
	}

	pickup, err := s.activeLocation(ctx, req.CompanyID, req.PickupLocationID, "pickup_location_id")
	if err != nil {
		logger.ExitMethodWithError("pricingService.Quote", err, "locationID", req.PickupLocationID)
		return nil, err
	}
	ret := pickup
	if req.ReturnLocationID != req.PickupLocationID {
		ret, err = s.activeLocation(ctx, req.CompanyID, req.ReturnLocationID, "return_location_id")
		if err != nil {
			logger.ExitMethodWithError("pricingService.Quote", err, "locationID", req.ReturnLocationID)
			return nil, err
		}
	}

	lines, err := s.extraLines(ctx, req.CompanyID, req.Extras)
	if err != nil {
		logger.ExitMethodWithError("pricingService.Quote", err, "companyID", req.CompanyID)
		return nil, err
	}

	rateQuote, err := s.rateSvc.Resolve(ctx, req.CompanyID, req.GroupID, start, end)
	if err != nil {
		logger.ExitMethodWithError("pricingService.Quote", err, "groupID", req.GroupID)
		return nil, err
	}
	if rateQuote.KmPerDay == 0 {
		rateQuote.KmPerDay = group.DefaultKmPerDay
	}

	in := domain.PriceInput{
		DailyPrice:     rateQuote.DailyPrice,
		Days:           rateQuote.Days,
		Extras:         lines,
		PickupLocation: *pickup,
		ReturnLocation: *ret,
		DiscountAmount: decimal.Zero,
		TaxRate:        company.EffectiveTaxRate(s.taxRate),
		DepositAmount:  group.DepositAmount,
	}

	var discount *domain.DiscountResult
	if req.DiscountCode != "" {
		groupID := req.GroupID
		discount, err = s.discountSvc.Validate(ctx, domain.DiscountCheck{
			CompanyID:  req.CompanyID,
			Code:       req.DiscountCode,
			CustomerID: req.CustomerID,
			TotalDays:  rateQuote.Days,
			Amount:     domain.PreDiscountAmount(in),
			GroupID:    &groupID,
		})
		if err != nil {
			logger.ExitMethodWithError("pricingService.Quote", err, "code", req.DiscountCode)
			return nil, err
		}
		if !discount.IsValid {
			err := domain.ValidationError{Field: "discount_code", Msg: discount.ErrorMessage}
			logger.ExitMethodWithError("pricingService.Quote", err, "code", req.DiscountCode)
			return nil, err
		}
		in.DiscountAmount = discount.Amount
	}

	quote := &domain.Quote{
		Rate:      *rateQuote,
		Price:     domain.CalculatePrice(in),
		Discount:  discount,
		GroupName: group.Name,
	}
	logger.ExitMethod("pricingService.Quote", "groupID", req.GroupID, "days", quote.Price.Days, "total", quote.Price.TotalPrice.String())
	return quote, nil
}

func (s *pricingService) activeLocation(ctx context.Context, companyID, locationID int32, field string) (*domain.Location, error) {
	loc, err := s.locationRepo.GetByID(ctx, companyID, locationID)
	if err != nil {
		return nil, err
	}
	if !loc.IsActive {
		return nil, domain.ValidationError{Field: field, Msg: "location is not active"}
	}
	return loc, nil
}

// extraLines prices the selection from the catalog, preserving request order.
func (s *pricingService) extraLines(ctx context.Context, companyID int32, selection []domain.ExtraSelection) ([]domain.ExtraLine, error) {
	if len(selection) == 0 {
		return nil, nil
	}
	ids := make([]int32, 0, len(selection))
	for _, sel := range selection {
		ids = append(ids, sel.ExtraID)
	}
	catalog, err := s.extraRepo.ListByIDs(ctx, companyID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load extras: %w", err)
	}
	byID := make(map[int32]domain.Extra, len(catalog))
	for _, e := range catalog {
		byID[e.ID] = e
	}

	lines := make([]domain.ExtraLine, 0, len(selection))
	for _, sel := range selection {
		e, ok := byID[sel.ExtraID]
		if !ok {
			return nil, domain.ValidationError{Field: "extras", Msg: fmt.Sprintf("extra %d is not available", sel.ExtraID)}
		}
		lines = append(lines, domain.ExtraLine{
			ExtraID:     e.ID,
			Name:        e.Name,
			Quantity:    sel.Quantity,
			UnitPrice:   e.Price,
			IsPerRental: e.IsPerRental,
		})
	}
	return lines, nil
}
