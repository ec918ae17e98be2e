package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"fleetrent-backend/internal/domain"
	"fleetrent-backend/internal/logger"
	"fleetrent-backend/internal/repository"
)

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) GetByID(ctx context.Context, companyID, id int32) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	query := `SELECT id, company_id, group_id, location_id, plate, status, is_active FROM vehicles WHERE id = $1 AND company_id = $2`
	err := r.db.QueryRowContext(ctx, query, id, companyID).Scan(&v.ID, &v.CompanyID, &v.GroupID, &v.LocationID, &v.Plate, &v.Status, &v.IsActive)
	if err != nil {
		return nil, notFound(err, "vehicle")
	}
	return v, nil
}

func (r *vehicleRepository) GetGroup(ctx context.Context, companyID, groupID int32) (*domain.VehicleGroup, error) {
	g := &domain.VehicleGroup{}
	query := `SELECT id, company_id, name, vehicle_type, deposit_amount, default_km_per_day, is_active, is_visible
	          FROM vehicle_groups WHERE id = $1 AND company_id = $2`
	err := r.db.QueryRowContext(ctx, query, groupID, companyID).Scan(
		&g.ID, &g.CompanyID, &g.Name, &g.VehicleType, &g.DepositAmount, &g.DefaultKmPerDay, &g.IsActive, &g.IsVisible,
	)
	if err != nil {
		return nil, notFound(err, "vehicle group")
	}
	return g, nil
}

// ListCandidates returns every in-service vehicle, not only those with status
// "available": status reflects the current moment, and a vehicle rented today
// can be free next week. The overlap filter on bookings decides.
func (r *vehicleRepository) ListCandidates(ctx context.Context, f domain.SearchFilter) ([]domain.CandidateVehicle, error) {
	logger.EnterMethod("vehicleRepository.ListCandidates", "companyID", f.CompanyID)

	query := `SELECT v.id, v.company_id, v.group_id, v.location_id, v.plate, v.status, v.is_active,
	                 g.id, g.company_id, g.name, g.vehicle_type, g.deposit_amount, g.default_km_per_day, g.is_active, g.is_visible
	          FROM vehicles v
	          JOIN vehicle_groups g ON g.id = v.group_id
	          WHERE v.company_id = $1
	            AND v.is_active = true
	            AND v.status NOT IN ('maintenance', 'inactive')
	            AND g.is_active = true
	            AND g.is_visible = true`
	args := []interface{}{f.CompanyID}
	argIdx := 2
	if f.VehicleType != nil {
		query += fmt.Sprintf(" AND g.vehicle_type = $%d", argIdx)
		args = append(args, string(*f.VehicleType))
		argIdx++
	}
	if f.LocationID != nil {
		query += fmt.Sprintf(" AND v.location_id = $%d", argIdx)
		args = append(args, *f.LocationID)
	}
	query += " ORDER BY g.id, v.id"

	logger.DatabaseCall("list_candidate_vehicles", query, "companyID", f.CompanyID)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.ExitMethodWithError("vehicleRepository.ListCandidates", err)
		return nil, err
	}
	defer rows.Close()

	var out []domain.CandidateVehicle
	for rows.Next() {
		var c domain.CandidateVehicle
		v, g := &c.Vehicle, &c.Group
		if err := rows.Scan(
			&v.ID, &v.CompanyID, &v.GroupID, &v.LocationID, &v.Plate, &v.Status, &v.IsActive,
			&g.ID, &g.CompanyID, &g.Name, &g.VehicleType, &g.DepositAmount, &g.DefaultKmPerDay, &g.IsActive, &g.IsVisible,
		); err != nil {
			logger.ExitMethodWithError("vehicleRepository.ListCandidates", err)
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.ExitMethod("vehicleRepository.ListCandidates", "count", len(out))
	return out, nil
}
