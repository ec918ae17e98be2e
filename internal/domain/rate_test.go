package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	t := day(s)
	return &t
}

func econoTiers() []PriceTier {
	return []PriceTier{
		{ID: 1, RateID: 1, GroupID: 10, MinDays: 1, MaxDays: intPtr(3), DailyPrice: decimal.NewFromInt(40), KmPerDay: 200},
		{ID: 2, RateID: 1, GroupID: 10, MinDays: 4, MaxDays: nil, DailyPrice: decimal.NewFromInt(30), KmPerDay: 250},
	}
}

func TestSelectTier(t *testing.T) {
	tiers := econoTiers()

	t.Run("Short rental uses first bracket", func(t *testing.T) {
		tier := SelectTier(tiers, 10, 3)
		require.NotNil(t, tier)
		assert.Equal(t, int32(1), tier.ID)
	})

	t.Run("Unbounded upper bracket", func(t *testing.T) {
		tier := SelectTier(tiers, 10, 45)
		require.NotNil(t, tier)
		assert.Equal(t, int32(2), tier.ID)
	})

	t.Run("Other group has no tier", func(t *testing.T) {
		assert.Nil(t, SelectTier(tiers, 11, 4))
	})

	t.Run("Gap between brackets", func(t *testing.T) {
		gapped := []PriceTier{
			{ID: 1, GroupID: 10, MinDays: 1, MaxDays: intPtr(3), DailyPrice: decimal.NewFromInt(40)},
			{ID: 2, GroupID: 10, MinDays: 7, DailyPrice: decimal.NewFromInt(25)},
		}
		assert.Nil(t, SelectTier(gapped, 10, 5))
	})

	t.Run("Every duration resolves to at most one tier", func(t *testing.T) {
		require.NoError(t, ValidateTiers(tiers))
		for days := 1; days <= 60; days++ {
			matches := 0
			for _, tier := range tiers {
				if tier.GroupID == 10 && tier.Contains(days) {
					matches++
				}
			}
			assert.LessOrEqual(t, matches, 1, "days=%d", days)
		}
	})
}

func TestNewRateQuote_ScenarioA(t *testing.T) {
	rate := Rate{ID: 1, Name: "Standard", IsActive: true}
	tier := SelectTier(econoTiers(), 10, 4)
	require.NotNil(t, tier)

	q := NewRateQuote(rate, *tier, 4)
	assert.True(t, q.DailyPrice.Equal(decimal.NewFromInt(30)))
	assert.True(t, q.TotalPrice.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, 4, q.Days)
	assert.Equal(t, "Standard", q.RateName)
	assert.Equal(t, int32(250), q.KmPerDay)
}

func TestValidateTiers(t *testing.T) {
	t.Run("Overlapping brackets rejected", func(t *testing.T) {
		err := ValidateTiers([]PriceTier{
			{GroupID: 10, MinDays: 1, MaxDays: intPtr(5), DailyPrice: decimal.NewFromInt(40)},
			{GroupID: 10, MinDays: 5, DailyPrice: decimal.NewFromInt(30)},
		})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("Two unbounded brackets overlap", func(t *testing.T) {
		err := ValidateTiers([]PriceTier{
			{GroupID: 10, MinDays: 1, DailyPrice: decimal.NewFromInt(40)},
			{GroupID: 10, MinDays: 30, DailyPrice: decimal.NewFromInt(30)},
		})
		assert.Error(t, err)
	})

	t.Run("Same bracket in different groups is fine", func(t *testing.T) {
		err := ValidateTiers([]PriceTier{
			{GroupID: 10, MinDays: 1, DailyPrice: decimal.NewFromInt(40)},
			{GroupID: 11, MinDays: 1, DailyPrice: decimal.NewFromInt(60)},
		})
		assert.NoError(t, err)
	})

	t.Run("Inverted bracket rejected", func(t *testing.T) {
		err := ValidateTiers([]PriceTier{{GroupID: 10, MinDays: 5, MaxDays: intPtr(2), DailyPrice: decimal.NewFromInt(40)}})
		assert.Error(t, err)
	})

	t.Run("Zero price rejected", func(t *testing.T) {
		err := ValidateTiers([]PriceTier{{GroupID: 10, MinDays: 1, DailyPrice: decimal.Zero}})
		assert.Error(t, err)
	})
}

func TestSelectRate(t *testing.T) {
	general := Rate{ID: 1, Name: "General", IsActive: true, CreatedAt: day("2023-01-01")}
	summer := Rate{ID: 2, Name: "Summer", IsActive: true, ValidFrom: datePtr("2024-06-01"), ValidUntil: datePtr("2024-08-31"), CreatedAt: day("2024-01-01")}
	summerPromo := Rate{ID: 3, Name: "Summer promo", IsActive: true, ValidFrom: datePtr("2024-07-01"), ValidUntil: datePtr("2024-07-31"), CreatedAt: day("2024-03-01")}
	rates := []Rate{general, summer, summerPromo}

	t.Run("Window fully containing the rental wins", func(t *testing.T) {
		r := SelectRate(rates, day("2024-06-10"), day("2024-06-14"))
		require.NotNil(t, r)
		assert.Equal(t, "Summer", r.Name)
	})

	t.Run("Most recently created window wins ties", func(t *testing.T) {
		r := SelectRate(rates, day("2024-07-10"), day("2024-07-14"))
		require.NotNil(t, r)
		assert.Equal(t, "Summer promo", r.Name)
	})

	t.Run("Partially covered range falls back to general", func(t *testing.T) {
		r := SelectRate(rates, day("2024-08-28"), day("2024-09-03"))
		require.NotNil(t, r)
		assert.Equal(t, "General", r.Name)
	})

	t.Run("Inactive rates ignored", func(t *testing.T) {
		inactive := summer
		inactive.IsActive = false
		r := SelectRate([]Rate{inactive}, day("2024-06-10"), day("2024-06-14"))
		assert.Nil(t, r)
	})

	t.Run("Nothing applies", func(t *testing.T) {
		assert.Nil(t, SelectRate([]Rate{summer}, day("2024-01-10"), day("2024-01-12")))
	})
}
