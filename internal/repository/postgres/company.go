package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"fleetrent-backend/internal/domain"
	"fleetrent-backend/internal/repository"
)

type companyRepository struct {
	db *sql.DB
}

func NewCompanyRepository(db *sql.DB) repository.CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) GetByID(ctx context.Context, id int32) (*domain.Company, error) {
	c := &domain.Company{}
	var taxRate decimal.NullDecimal
	query := `SELECT id, name, booking_prefix, tax_rate, created_at FROM companies WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.BookingPrefix, &taxRate, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err, "company")
	}
	if taxRate.Valid {
		c.TaxRate = &taxRate.Decimal
	}
	return c, nil
}

type locationRepository struct {
	db *sql.DB
}

func NewLocationRepository(db *sql.DB) repository.LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) GetByID(ctx context.Context, companyID, id int32) (*domain.Location, error) {
	l := &domain.Location{}
	query := `SELECT id, company_id, name, different_return_fee, is_active FROM locations WHERE id = $1 AND company_id = $2`
	err := r.db.QueryRowContext(ctx, query, id, companyID).Scan(&l.ID, &l.CompanyID, &l.Name, &l.DifferentReturnFee, &l.IsActive)
	if err != nil {
		return nil, notFound(err, "location")
	}
	return l, nil
}

type extraRepository struct {
	db *sql.DB
}

func NewExtraRepository(db *sql.DB) repository.ExtraRepository {
	return &extraRepository{db: db}
}

func (r *extraRepository) ListByIDs(ctx context.Context, companyID int32, ids []int32) ([]domain.Extra, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, company_id, name, price, is_per_rental, is_active FROM extras
	          WHERE company_id = $1 AND id = ANY($2) AND is_active = true ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, companyID, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var extras []domain.Extra
	for rows.Next() {
		var e domain.Extra
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.Name, &e.Price, &e.IsPerRental, &e.IsActive); err != nil {
			return nil, err
		}
		extras = append(extras, e)
	}
	return extras, rows.Err()
}
