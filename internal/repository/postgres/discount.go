package postgres

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"fleetrent-backend/internal/domain"
	"fleetrent-backend/internal/repository"
	"fleetrent-backend/internal/utils"
)

type discountRepository struct {
	db *sql.DB
}

func NewDiscountRepository(db *sql.DB) repository.DiscountRepository {
	return &discountRepository{db: db}
}

func (r *discountRepository) GetByCode(ctx context.Context, companyID int32, code string) (*domain.DiscountCode, error) {
	query := `SELECT id, company_id, code, discount_type, value, valid_from, valid_until, max_uses, current_uses,
	                 min_days, min_amount, group_id, is_active, created_at
	          FROM discount_codes WHERE company_id = $1 AND lower(code) = $2`

	var (
		d                domain.DiscountCode
		from, till       sql.NullTime
		maxUses, minDays sql.NullInt32
		groupID          sql.NullInt32
		minAmount        decimal.NullDecimal
	)
	err := r.db.QueryRowContext(ctx, query, companyID, domain.NormalizeDiscountCode(code)).Scan(
		&d.ID, &d.CompanyID, &d.Code, &d.Type, &d.Value, &from, &till, &maxUses, &d.CurrentUses,
		&minDays, &minAmount, &groupID, &d.IsActive, &d.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err, "discount code")
	}
	if from.Valid {
		t := utils.DateOf(from.Time)
		d.ValidFrom = &t
	}
	if till.Valid {
		t := utils.DateOf(till.Time)
		d.ValidUntil = &t
	}
	if maxUses.Valid {
		v := int(maxUses.Int32)
		d.MaxUses = &v
	}
	if minDays.Valid {
		v := int(minDays.Int32)
		d.MinDays = &v
	}
	if minAmount.Valid {
		d.MinAmount = &minAmount.Decimal
	}
	if groupID.Valid {
		g := groupID.Int32
		d.GroupID = &g
	}
	return &d, nil
}

func (r *discountRepository) Create(ctx context.Context, d *domain.DiscountCode) error {
	query := `INSERT INTO discount_codes (company_id, code, discount_type, value, valid_from, valid_until, max_uses,
	                                      current_uses, min_days, min_amount, group_id, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		d.CompanyID, d.Code, d.Type, d.Value, d.ValidFrom, d.ValidUntil, nullInt(d.MaxUses),
		d.CurrentUses, nullInt(d.MinDays), nullDecimal(d.MinAmount), d.GroupID, d.IsActive,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		if code, _ := pqCode(err); code == codeUniqueViolation {
			return domain.ConflictError{Resource: "discount code", Msg: "code already exists for this company", Err: err}
		}
		return err
	}
	return nil
}

func nullInt(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

func nullDecimal(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *v, Valid: true}
}
