package service

import (
	"context"
	"fmt"
	"sort"

	"fleetrent-backend/internal/domain"
	"fleetrent-backend/internal/logger"
	"fleetrent-backend/internal/repository"
)

type availabilityService struct {
	vehicleRepo repository.VehicleRepository
	bookingRepo repository.BookingRepository
	rateSvc     RateService
}

func NewAvailabilityService(
	vehicleRepo repository.VehicleRepository,
	bookingRepo repository.BookingRepository,
	rateSvc RateService,
) AvailabilityService {
	return &availabilityService{
		vehicleRepo: vehicleRepo,
		bookingRepo: bookingRepo,
		rateSvc:     rateSvc,
	}
}

// Search returns one offer per vehicle group that has at least one free
// vehicle and a price for the requested window, cheapest first.
func (s *availabilityService) Search(ctx context.Context, filter domain.SearchFilter) ([]domain.GroupOffer, error) {
	logger.EnterMethod("availabilityService.Search", "companyID", filter.CompanyID, "pickup", filter.PickupDate, "return", filter.ReturnDate)

	if err := filter.Validate(); err != nil {
		logger.ExitMethodWithError("availabilityService.Search", err, "companyID", filter.CompanyID)
		return nil, err
	}
	start, end, err := filter.Window()
	if err != nil {
		logger.ExitMethodWithError("availabilityService.Search", err, "companyID", filter.CompanyID)
		return nil, err
	}

	candidates, err := s.vehicleRepo.ListCandidates(ctx, filter)
	if err != nil {
		logger.ExitMethodWithError("availabilityService.Search", err, "companyID", filter.CompanyID)
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	if len(candidates) == 0 {
		logger.ExitMethod("availabilityService.Search", "companyID", filter.CompanyID, "offers", 0)
		return []domain.GroupOffer{}, nil
	}

	blocked, err := s.bookingRepo.ListBlockingVehicleIDs(ctx, filter.CompanyID, filter.PickupDate, filter.ReturnDate)
	if err != nil {
		logger.ExitMethodWithError("availabilityService.Search", err, "companyID", filter.CompanyID)
		return nil, fmt.Errorf("failed to list blocking bookings: %w", err)
	}
	busy := make(map[int32]bool, len(blocked))
	for _, id := range blocked {
		busy[id] = true
	}

	// Group free vehicles, keeping the repository order of groups.
	var order []int32
	byGroup := make(map[int32]*domain.GroupOffer)
	for _, c := range candidates {
		if busy[c.Vehicle.ID] {
			continue
		}
		offer, ok := byGroup[c.Group.ID]
		if !ok {
			offer = &domain.GroupOffer{Group: c.Group, VehicleIDs: []int32{}}
			byGroup[c.Group.ID] = offer
			order = append(order, c.Group.ID)
		}
		offer.VehicleIDs = append(offer.VehicleIDs, c.Vehicle.ID)
		offer.AvailableCount++
	}

	offers := make([]domain.GroupOffer, 0, len(order))
	for _, groupID := range order {
		quote, err := s.rateSvc.Resolve(ctx, filter.CompanyID, groupID, start, end)
		if err != nil {
			if domain.IsNotFound(err) {
				logger.Debug("Group has no price for window, omitted", "groupID", groupID, "reason", err.Error())
				continue
			}
			logger.ExitMethodWithError("availabilityService.Search", err, "groupID", groupID)
			return nil, err
		}
		offer := byGroup[groupID]
		offer.Quote = *quote
		offers = append(offers, *offer)
	}

	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].Quote.DailyPrice.LessThan(offers[j].Quote.DailyPrice)
	})

	logger.ExitMethod("availabilityService.Search", "companyID", filter.CompanyID, "offers", len(offers))
	return offers, nil
}
