package postgres

import (
	"context"
	"database/sql"

	"fleetrent-backend/internal/domain"
	"fleetrent-backend/internal/logger"
	"fleetrent-backend/internal/repository"
	"fleetrent-backend/internal/utils"
)

type rateRepository struct {
	db *sql.DB
}

func NewRateRepository(db *sql.DB) repository.RateRepository {
	return &rateRepository{db: db}
}

const rateColumns = `id, company_id, name, valid_from, valid_until, is_active, created_at`

func scanRate(row interface{ Scan(...interface{}) error }) (domain.Rate, error) {
	var (
		rt         domain.Rate
		from, till sql.NullTime
	)
	if err := row.Scan(&rt.ID, &rt.CompanyID, &rt.Name, &from, &till, &rt.IsActive, &rt.CreatedAt); err != nil {
		return rt, err
	}
	if from.Valid {
		d := utils.DateOf(from.Time)
		rt.ValidFrom = &d
	}
	if till.Valid {
		d := utils.DateOf(till.Time)
		rt.ValidUntil = &d
	}
	return rt, nil
}

func (r *rateRepository) GetByID(ctx context.Context, companyID, id int32) (*domain.Rate, error) {
	query := `SELECT ` + rateColumns + ` FROM rates WHERE id = $1 AND company_id = $2`
	rt, err := scanRate(r.db.QueryRowContext(ctx, query, id, companyID))
	if err != nil {
		return nil, notFound(err, "rate")
	}
	return &rt, nil
}

// ListActive returns the company's active rates, newest first.
func (r *rateRepository) ListActive(ctx context.Context, companyID int32) ([]domain.Rate, error) {
	query := `SELECT ` + rateColumns + ` FROM rates WHERE company_id = $1 AND is_active = true ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []domain.Rate
	for rows.Next() {
		rt, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, rt)
	}
	return rates, rows.Err()
}

func (r *rateRepository) ListTiers(ctx context.Context, rateID, groupID int32) ([]domain.PriceTier, error) {
	query := `SELECT id, rate_id, group_id, min_days, max_days, daily_price, km_per_day
	          FROM rate_group_prices WHERE rate_id = $1 AND group_id = $2 ORDER BY min_days`
	rows, err := r.db.QueryContext(ctx, query, rateID, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []domain.PriceTier
	for rows.Next() {
		var (
			t       domain.PriceTier
			maxDays sql.NullInt32
		)
		if err := rows.Scan(&t.ID, &t.RateID, &t.GroupID, &t.MinDays, &maxDays, &t.DailyPrice, &t.KmPerDay); err != nil {
			return nil, err
		}
		if maxDays.Valid {
			m := int(maxDays.Int32)
			t.MaxDays = &m
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

// ReplaceTiers swaps the whole tier set of one (rate, group) in a transaction.
// The exclusion constraint on rate_group_prices backs the overlap rule.
func (r *rateRepository) ReplaceTiers(ctx context.Context, rateID, groupID int32, tiers []domain.PriceTier) error {
	logger.EnterMethod("rateRepository.ReplaceTiers", "rateID", rateID, "groupID", groupID, "count", len(tiers))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rate_group_prices WHERE rate_id = $1 AND group_id = $2`, rateID, groupID); err != nil {
		logger.ExitMethodWithError("rateRepository.ReplaceTiers", err)
		return err
	}

	query := `INSERT INTO rate_group_prices (rate_id, group_id, min_days, max_days, daily_price, km_per_day)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	for i := range tiers {
		t := &tiers[i]
		var maxDays sql.NullInt32
		if t.MaxDays != nil {
			maxDays = sql.NullInt32{Int32: int32(*t.MaxDays), Valid: true}
		}
		if err := tx.QueryRowContext(ctx, query, rateID, groupID, t.MinDays, maxDays, t.DailyPrice, t.KmPerDay).Scan(&t.ID); err != nil {
			if code, _ := pqCode(err); code == codeExclusionViolation {
				err = domain.ValidationError{Field: "price_tiers", Msg: "day brackets overlap", Err: err}
			}
			logger.ExitMethodWithError("rateRepository.ReplaceTiers", err)
			return err
		}
		t.RateID, t.GroupID = rateID, groupID
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.ExitMethod("rateRepository.ReplaceTiers", "rateID", rateID)
	return nil
}
