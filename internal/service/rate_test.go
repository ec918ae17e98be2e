package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fleetrent-backend/internal/domain"
	"fleetrent-backend/internal/service"
)

func intPtr(v int) *int { return &v }

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// econoTiers is [1,3] @40 and [4,∞) @30 for group 7 on rate 1.
func econoTiers() []domain.PriceTier {
	return []domain.PriceTier{
		{ID: 11, RateID: 1, GroupID: 7, MinDays: 1, MaxDays: intPtr(3), DailyPrice: decimal.NewFromInt(40), KmPerDay: 200},
		{ID: 12, RateID: 1, GroupID: 7, MinDays: 4, DailyPrice: decimal.NewFromInt(30), KmPerDay: 250},
	}
}

func generalRate() domain.Rate {
	return domain.Rate{ID: 1, CompanyID: 1, Name: "Standard", IsActive: true, CreatedAt: at("2024-01-01 00:00")}
}

func TestRateService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("Scenario A four days", func(t *testing.T) {
		repo := new(MockRateRepo)
		svc := service.NewRateService(repo)
		repo.On("ListActive", ctx, int32(1)).Return([]domain.Rate{generalRate()}, nil)
		repo.On("ListTiers", ctx, int32(1), int32(7)).Return(econoTiers(), nil)

		q, err := svc.Resolve(ctx, 1, 7, at("2025-06-10 10:00"), at("2025-06-14 10:00"))
		require.NoError(t, err)
		assert.Equal(t, 4, q.Days)
		assert.Equal(t, "30.00", q.DailyPrice.StringFixed(2))
		assert.Equal(t, "120.00", q.TotalPrice.StringFixed(2))
		assert.Equal(t, int32(12), q.TierID)
		repo.AssertExpectations(t)
	})

	t.Run("days counted by calendar date", func(t *testing.T) {
		repo := new(MockRateRepo)
		svc := service.NewRateService(repo)
		repo.On("ListActive", ctx, int32(1)).Return([]domain.Rate{generalRate()}, nil)
		repo.On("ListTiers", ctx, int32(1), int32(7)).Return(econoTiers(), nil)

		q, err := svc.Resolve(ctx, 1, 7, at("2025-06-01 10:00"), at("2025-06-05 12:00"))
		require.NoError(t, err)
		assert.Equal(t, 4, q.Days)
		assert.Equal(t, int32(12), q.TierID)
		assert.Equal(t, "120.00", q.TotalPrice.StringFixed(2))
	})

	t.Run("late return hour stays in shorter bracket", func(t *testing.T) {
		repo := new(MockRateRepo)
		svc := service.NewRateService(repo)
		repo.On("ListActive", ctx, int32(1)).Return([]domain.Rate{generalRate()}, nil)
		repo.On("ListTiers", ctx, int32(1), int32(7)).Return(econoTiers(), nil)

		q, err := svc.Resolve(ctx, 1, 7, at("2025-06-10 10:00"), at("2025-06-13 11:00"))
		require.NoError(t, err)
		assert.Equal(t, 3, q.Days)
		assert.Equal(t, "40.00", q.DailyPrice.StringFixed(2))
	})

	t.Run("window rate wins over general", func(t *testing.T) {
		repo := new(MockRateRepo)
		svc := service.NewRateService(repo)
		from, until := day("2025-06-01"), day("2025-08-31")
		summer := domain.Rate{ID: 2, CompanyID: 1, Name: "Summer", ValidFrom: &from, ValidUntil: &until, IsActive: true, CreatedAt: at("2025-01-01 00:00")}
		repo.On("ListActive", ctx, int32(1)).Return([]domain.Rate{summer, generalRate()}, nil)
		repo.On("ListTiers", ctx, int32(2), int32(7)).Return([]domain.PriceTier{
			{ID: 21, RateID: 2, GroupID: 7, MinDays: 1, DailyPrice: decimal.NewFromInt(55)},
		}, nil)

		q, err := svc.Resolve(ctx, 1, 7, at("2025-06-10 10:00"), at("2025-06-12 10:00"))
		require.NoError(t, err)
		assert.Equal(t, "Summer", q.RateName)
		assert.Equal(t, "110.00", q.TotalPrice.StringFixed(2))
	})

	t.Run("no rate", func(t *testing.T) {
		repo := new(MockRateRepo)
		svc := service.NewRateService(repo)
		repo.On("ListActive", ctx, int32(1)).Return([]domain.Rate{}, nil)

		_, err := svc.Resolve(ctx, 1, 7, at("2025-06-10 10:00"), at("2025-06-12 10:00"))
		var nf domain.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "rate", nf.Resource)
		repo.AssertNotCalled(t, "ListTiers", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no tier for duration", func(t *testing.T) {
		repo := new(MockRateRepo)
		svc := service.NewRateService(repo)
		repo.On("ListActive", ctx, int32(1)).Return([]domain.Rate{generalRate()}, nil)
		repo.On("ListTiers", ctx, int32(1), int32(7)).Return(econoTiers()[:1], nil)

		_, err := svc.Resolve(ctx, 1, 7, at("2025-06-10 10:00"), at("2025-06-20 10:00"))
		var nf domain.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "price tier", nf.Resource)
	})

	t.Run("store error propagates", func(t *testing.T) {
		repo := new(MockRateRepo)
		svc := service.NewRateService(repo)
		repo.On("ListActive", ctx, int32(1)).Return([]domain.Rate{}, errors.New("db down"))

		_, err := svc.Resolve(ctx, 1, 7, at("2025-06-10 10:00"), at("2025-06-12 10:00"))
		require.Error(t, err)
		assert.False(t, domain.IsNotFound(err))
	})

	t.Run("return before pickup", func(t *testing.T) {
		svc := service.NewRateService(new(MockRateRepo))
		_, err := svc.Resolve(ctx, 1, 7, at("2025-06-12 10:00"), at("2025-06-10 10:00"))
		assert.True(t, domain.IsValidation(err))
	})
}

func TestRateService_SetPriceTiers(t *testing.T) {
	ctx := context.Background()

	t.Run("success stamps rate and group", func(t *testing.T) {
		repo := new(MockRateRepo)
		svc := service.NewRateService(repo)
		rate := generalRate()
		repo.On("GetByID", ctx, int32(1), int32(1)).Return(&rate, nil)
		repo.On("ReplaceTiers", ctx, int32(1), int32(7), mock.MatchedBy(func(tiers []domain.PriceTier) bool {
			return len(tiers) == 2 && tiers[0].RateID == 1 && tiers[1].GroupID == 7
		})).Return(nil)

		tiers := []domain.PriceTier{
			{MinDays: 1, MaxDays: intPtr(3), DailyPrice: decimal.NewFromInt(40)},
			{MinDays: 4, DailyPrice: decimal.NewFromInt(30)},
		}
		require.NoError(t, svc.SetPriceTiers(ctx, 1, 1, 7, tiers))
		repo.AssertExpectations(t)
	})

	t.Run("overlapping brackets rejected before write", func(t *testing.T) {
		repo := new(MockRateRepo)
		svc := service.NewRateService(repo)
		rate := generalRate()
		repo.On("GetByID", ctx, int32(1), int32(1)).Return(&rate, nil)

		tiers := []domain.PriceTier{
			{MinDays: 1, MaxDays: intPtr(5), DailyPrice: decimal.NewFromInt(40)},
			{MinDays: 4, DailyPrice: decimal.NewFromInt(30)},
		}
		err := svc.SetPriceTiers(ctx, 1, 1, 7, tiers)
		assert.True(t, domain.IsValidation(err))
		repo.AssertNotCalled(t, "ReplaceTiers", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rate of another company", func(t *testing.T) {
		repo := new(MockRateRepo)
		svc := service.NewRateService(repo)
		repo.On("GetByID", ctx, int32(2), int32(1)).Return(nil, domain.NotFoundError{Resource: "rate"})

		err := svc.SetPriceTiers(ctx, 2, 1, 7, nil)
		assert.True(t, domain.IsNotFound(err))
	})
}
