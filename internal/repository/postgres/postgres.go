package postgres

import (
	"context"
	"database/sql"
	"time"

	"fleetrent-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.CompanyRepository
	repository.LocationRepository
	repository.ExtraRepository
	repository.VehicleRepository
	repository.RateRepository
	repository.DiscountRepository
	repository.BookingRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                 db,
		CompanyRepository:  NewCompanyRepository(db),
		LocationRepository: NewLocationRepository(db),
		ExtraRepository:    NewExtraRepository(db),
		VehicleRepository:  NewVehicleRepository(db),
		RateRepository:     NewRateRepository(db),
		DiscountRepository: NewDiscountRepository(db),
		BookingRepository:  NewBookingRepository(db),
	}
}

// Open connects to PostgreSQL and applies the pool limits.
func Open(dsn string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) DB() *sql.DB {
	return s.db
}
