package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fleetrent-backend/internal/domain"
	"fleetrent-backend/internal/service"
)

func TestDiscountService_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("Scenario C fixed capped at amount", func(t *testing.T) {
		repo := new(MockDiscountRepo)
		svc := service.NewDiscountService(repo)
		repo.On("GetByCode", ctx, int32(1), "summer50").Return(&domain.DiscountCode{
			ID: 5, CompanyID: 1, Code: "summer50", Type: domain.DiscountTypeFixed, Value: decimal.NewFromInt(50), IsActive: true,
		}, nil)

		res, err := svc.Validate(ctx, domain.DiscountCheck{CompanyID: 1, Code: "  SUMMER50 ", TotalDays: 1, Amount: decimal.NewFromInt(40)})
		require.NoError(t, err)
		assert.True(t, res.IsValid)
		assert.Equal(t, int32(5), res.DiscountID)
		assert.Equal(t, "40.00", res.Amount.StringFixed(2))
		repo.AssertExpectations(t)
	})

	t.Run("unknown code is an invalid result, not an error", func(t *testing.T) {
		repo := new(MockDiscountRepo)
		svc := service.NewDiscountService(repo)
		repo.On("GetByCode", ctx, int32(1), "nope").Return(nil, domain.NotFoundError{Resource: "discount code"})

		res, err := svc.Validate(ctx, domain.DiscountCheck{CompanyID: 1, Code: "nope", TotalDays: 3, Amount: decimal.NewFromInt(100)})
		require.NoError(t, err)
		assert.False(t, res.IsValid)
		assert.Equal(t, "discount code not found or inactive", res.ErrorMessage)
	})

	t.Run("usage cap reached", func(t *testing.T) {
		repo := new(MockDiscountRepo)
		svc := service.NewDiscountService(repo)
		repo.On("GetByCode", ctx, int32(1), "last").Return(&domain.DiscountCode{
			ID: 6, Code: "last", Type: domain.DiscountTypePercentage, Value: decimal.NewFromInt(10),
			MaxUses: intPtr(3), CurrentUses: 3, IsActive: true,
		}, nil)

		res, err := svc.Validate(ctx, domain.DiscountCheck{CompanyID: 1, Code: "last", TotalDays: 3, Amount: decimal.NewFromInt(100)})
		require.NoError(t, err)
		assert.False(t, res.IsValid)
		assert.Equal(t, "discount code usage limit reached", res.ErrorMessage)
	})

	t.Run("store failure is an error", func(t *testing.T) {
		repo := new(MockDiscountRepo)
		svc := service.NewDiscountService(repo)
		repo.On("GetByCode", ctx, int32(1), "x").Return(nil, errors.New("timeout"))

		_, err := svc.Validate(ctx, domain.DiscountCheck{CompanyID: 1, Code: "x"})
		assert.Error(t, err)
	})
}

func TestDiscountService_CreateCode(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes before insert", func(t *testing.T) {
		repo := new(MockDiscountRepo)
		svc := service.NewDiscountService(repo)
		code := &domain.DiscountCode{CompanyID: 1, Code: " Spring10 ", Type: domain.DiscountTypePercentage, Value: decimal.NewFromInt(10), IsActive: true}
		repo.On("Create", ctx, code).Return(nil)

		require.NoError(t, svc.CreateCode(ctx, code))
		assert.Equal(t, "spring10", code.Code)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate is a conflict", func(t *testing.T) {
		repo := new(MockDiscountRepo)
		svc := service.NewDiscountService(repo)
		code := &domain.DiscountCode{CompanyID: 1, Code: "dup", Type: domain.DiscountTypeFixed, Value: decimal.NewFromInt(5)}
		repo.On("Create", ctx, code).Return(domain.ConflictError{Resource: "discount code", Msg: "code already exists"})

		assert.True(t, domain.IsConflict(svc.CreateCode(ctx, code)))
	})

	t.Run("invalid percentage", func(t *testing.T) {
		repo := new(MockDiscountRepo)
		svc := service.NewDiscountService(repo)
		code := &domain.DiscountCode{CompanyID: 1, Code: "big", Type: domain.DiscountTypePercentage, Value: decimal.NewFromInt(150)}

		assert.True(t, domain.IsValidation(svc.CreateCode(ctx, code)))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
