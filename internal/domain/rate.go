package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fleetrent-backend/internal/utils"
)

type Rate struct {
	ID         int32      `json:"id"`
	CompanyID  int32      `json:"company_id"`
	Name       string     `json:"name"`
	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
}

// IsGeneral reports whether the rate has no effective window.
func (r Rate) IsGeneral() bool {
	return r.ValidFrom == nil && r.ValidUntil == nil
}

// Covers reports whether the rate window fully contains [start, end],
// compared by calendar date. An open bound is unbounded on that side.
func (r Rate) Covers(start, end time.Time) bool {
	if r.IsGeneral() {
		return false
	}
	s, e := utils.DateOf(start), utils.DateOf(end)
	if r.ValidFrom != nil && s.Before(utils.DateOf(*r.ValidFrom)) {
		return false
	}
	if r.ValidUntil != nil && e.After(utils.DateOf(*r.ValidUntil)) {
		return false
	}
	return true
}

type PriceTier struct {
	ID         int32           `json:"id"`
	RateID     int32           `json:"rate_id"`
	GroupID    int32           `json:"group_id"`
	MinDays    int             `json:"min_days"`
	MaxDays    *int            `json:"max_days,omitempty"` // nil is unbounded
	DailyPrice decimal.Decimal `json:"daily_price"`
	KmPerDay   int32           `json:"km_per_day"`
}

func (t PriceTier) Contains(days int) bool {
	if days < t.MinDays {
		return false
	}
	return t.MaxDays == nil || days <= *t.MaxDays
}

func (t PriceTier) overlaps(o PriceTier) bool {
	// [a1, a2] and [b1, b2] overlap when a1 <= b2 and b1 <= a2, nil upper bound is infinity.
	if t.MaxDays != nil && *t.MaxDays < o.MinDays {
		return false
	}
	if o.MaxDays != nil && *o.MaxDays < t.MinDays {
		return false
	}
	return true
}

// RateQuote is the resolved price for one group and duration.
type RateQuote struct {
	RateID     int32           `json:"rate_id"`
	RateName   string          `json:"rate_name"`
	TierID     int32           `json:"tier_id"`
	Days       int             `json:"days"`
	DailyPrice decimal.Decimal `json:"daily_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	KmPerDay   int32           `json:"km_per_day"`
}

// ValidateTiers enforces the bracket rules for the tiers of one rate: sane
// bounds and no overlapping brackets within a vehicle group.
func ValidateTiers(tiers []PriceTier) error {
	byGroup := make(map[int32][]PriceTier)
	for _, t := range tiers {
		if t.MinDays < 1 {
			return ValidationError{Field: "min_days", Msg: "must be at least 1"}
		}
		if t.MaxDays != nil && *t.MaxDays < t.MinDays {
			return ValidationError{Field: "max_days", Msg: "must not be lower than min_days"}
		}
		if !t.DailyPrice.IsPositive() {
			return ValidationError{Field: "daily_price", Msg: "must be positive"}
		}
		byGroup[t.GroupID] = append(byGroup[t.GroupID], t)
	}
	for groupID, group := range byGroup {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if group[i].overlaps(group[j]) {
					return ValidationError{
						Field: "price_tiers",
						Msg:   fmt.Sprintf("brackets starting at %d and %d overlap for group %d", group[i].MinDays, group[j].MinDays, groupID),
					}
				}
			}
		}
	}
	return nil
}

// SelectRate picks the most recently created active window rate covering
// [start, end], falling back to the general rate. Returns nil when neither exists.
func SelectRate(rates []Rate, start, end time.Time) *Rate {
	windowed := make([]Rate, 0, len(rates))
	var general *Rate
	for i := range rates {
		r := rates[i]
		if !r.IsActive {
			continue
		}
		if r.IsGeneral() {
			if general == nil {
				general = &rates[i]
			}
			continue
		}
		if r.Covers(start, end) {
			windowed = append(windowed, r)
		}
	}
	if len(windowed) > 0 {
		sort.SliceStable(windowed, func(i, j int) bool {
			if windowed[i].CreatedAt.Equal(windowed[j].CreatedAt) {
				return windowed[i].ID > windowed[j].ID
			}
			return windowed[i].CreatedAt.After(windowed[j].CreatedAt)
		})
		return &windowed[0]
	}
	return general
}

// SelectTier returns the tier for groupID whose bracket contains days.
func SelectTier(tiers []PriceTier, groupID int32, days int) *PriceTier {
	for i := range tiers {
		if tiers[i].GroupID == groupID && tiers[i].Contains(days) {
			return &tiers[i]
		}
	}
	return nil
}

// NewRateQuote builds the quote for a resolved rate and tier.
func NewRateQuote(rate Rate, tier PriceTier, days int) *RateQuote {
	return &RateQuote{
		RateID:     rate.ID,
		RateName:   rate.Name,
		TierID:     tier.ID,
		Days:       days,
		DailyPrice: tier.DailyPrice,
		TotalPrice: tier.DailyPrice.Mul(decimal.NewFromInt(int64(days))),
		KmPerDay:   tier.KmPerDay,
	}
}
