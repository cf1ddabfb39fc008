package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/barbershop-queue/internal/model"
)

// ServiceTypeRepo provides persistence for a location's service
// catalog. Durations feed the wait estimator; popularity counters are
// advanced only through IncrementPopularityTx when a service completes.
type ServiceTypeRepo struct {
	db *sql.DB
}

// NewServiceTypeRepo returns a new ServiceTypeRepo bound to the given database.
func NewServiceTypeRepo(db *sql.DB) *ServiceTypeRepo { return &ServiceTypeRepo{db: db} }

const serviceTypeColumns = `id, location_id, name, duration_min, popularity, created_at, updated_at`

func scanServiceType(row interface{ Scan(...any) error }) (model.ServiceType, error) {
	var s model.ServiceType
	err := row.Scan(&s.ID, &s.LocationID, &s.Name, &s.DurationMin, &s.Popularity,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return model.ServiceType{}, err
	}
	return s, nil
}

// Create inserts a new service type and populates the generated ID.
func (r *ServiceTypeRepo) Create(ctx context.Context, s *model.ServiceType) error {
	const q = `INSERT INTO service_types (location_id, name, duration_min) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.LocationID, s.Name, s.DurationMin)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID loads a service type. Returns ErrServiceNotFound when absent.
func (r *ServiceTypeRepo) GetByID(ctx context.Context, id uint64) (model.ServiceType, error) {
	const q = `SELECT ` + serviceTypeColumns + ` FROM service_types WHERE id = ?`
	s, err := scanServiceType(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.ServiceType{}, ErrServiceNotFound
	}
	return s, err
}

// ListByLocation returns a location's catalog ordered by ID.
func (r *ServiceTypeRepo) ListByLocation(ctx context.Context, locationID uint64) ([]model.ServiceType, error) {
	const q = `SELECT ` + serviceTypeColumns + ` FROM service_types WHERE location_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := make([]model.ServiceType, 0)
	for rows.Next() {
		s, err := scanServiceType(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return services, nil
}

// DurationsFor maps a batch of service type IDs to their durations in
// one query, for estimating over a WAITING snapshot.
func (r *ServiceTypeRepo) DurationsFor(ctx context.Context, locationID uint64) (map[uint64]int, error) {
	const q = `SELECT id, duration_min FROM service_types WHERE location_id = ?`
	rows, err := r.db.QueryContext(ctx, q, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	durations := make(map[uint64]int)
	for rows.Next() {
		var (
			id  uint64
			min int
		)
		if err := rows.Scan(&id, &min); err != nil {
			return nil, err
		}
		durations[id] = min
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return durations, nil
}

// IncrementPopularityTx bumps the completion counter inside an
// existing transaction, as part of finish-service side effects.
func (r *ServiceTypeRepo) IncrementPopularityTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE service_types SET popularity = popularity + 1 WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrServiceNotFound
	}
	return nil
}
