package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/barbershop-queue/internal/model"
)

// LocationRepo provides persistence for locations. The location row
// doubles as the serialization point for queue mutations: handlers take
// GetByIDForUpdateTx before reordering, so concurrent check-ins and
// transitions at the same location apply one at a time.
type LocationRepo struct {
	db *sql.DB
}

// NewLocationRepo returns a new LocationRepo bound to the given database.
func NewLocationRepo(db *sql.DB) *LocationRepo { return &LocationRepo{db: db} }

const locationColumns = `id, owner_id, name, open_minute, close_minute,
       operating_days, max_waiting, priority_enabled, created_at, updated_at`

func scanLocation(row interface{ Scan(...any) error }) (model.Location, error) {
	var l model.Location
	err := row.Scan(&l.ID, &l.OwnerID, &l.Name, &l.OpenMinute, &l.CloseMinute,
		&l.OperatingDays, &l.MaxWaiting, &l.PriorityEnabled, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return model.Location{}, err
	}
	return l, nil
}

// Create inserts a new location and populates the generated ID.
func (r *LocationRepo) Create(ctx context.Context, l *model.Location) error {
	const q = `INSERT INTO locations
	           (owner_id, name, open_minute, close_minute, operating_days, max_waiting, priority_enabled)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		l.OwnerID, l.Name, l.OpenMinute, l.CloseMinute, l.OperatingDays, l.MaxWaiting, l.PriorityEnabled)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return nil
}

// GetByID loads a location. Returns ErrLocationNotFound when absent.
func (r *LocationRepo) GetByID(ctx context.Context, id uint64) (model.Location, error) {
	const q = `SELECT ` + locationColumns + ` FROM locations WHERE id = ?`
	l, err := scanLocation(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Location{}, ErrLocationNotFound
	}
	return l, err
}

// GetByIDForUpdateTx loads a location inside a transaction holding the
// row lock until commit. All queue-mutating handlers go through this.
func (r *LocationRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Location, error) {
	const q = `SELECT ` + locationColumns + ` FROM locations WHERE id = ? FOR UPDATE`
	l, err := scanLocation(tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Location{}, ErrLocationNotFound
	}
	return l, err
}

// ListByOwner returns every location belonging to an owner account.
func (r *LocationRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Location, error) {
	const q = `SELECT ` + locationColumns + ` FROM locations WHERE owner_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]model.Location, 0)
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return locations, nil
}

// UpdateSettings persists hours, operating days, capacity and the
// priority toggle. Ownership is checked first; RowsAffected cannot be
// used for that because MySQL reports 0 when the values are unchanged.
func (r *LocationRepo) UpdateSettings(ctx context.Context, l *model.Location) error {
	var ownerID uint64
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM locations WHERE id = ?`, l.ID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrLocationNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != l.OwnerID {
		return ErrForbidden
	}

	const q = `UPDATE locations
	           SET name = ?, open_minute = ?, close_minute = ?, operating_days = ?,
	               max_waiting = ?, priority_enabled = ?
	           WHERE id = ?`
	_, err = r.db.ExecContext(ctx, q,
		l.Name, l.OpenMinute, l.CloseMinute, l.OperatingDays,
		l.MaxWaiting, l.PriorityEnabled, l.ID)
	return err
}
