package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/barbershop-queue/internal/model"
)

// ClientRepo provides persistence for walk-in clients. Tier
// classification reads the snapshot this repo returns; visit counters
// are only advanced through ApplyVisitTx so the history stays
// consistent with completed services.
type ClientRepo struct {
	db *sql.DB
}

// NewClientRepo returns a new ClientRepo bound to the given database.
func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{db: db} }

const clientColumns = `id, name, phone, visit_count, is_vip, last_visit_at, created_at, updated_at`

func scanClient(row interface{ Scan(...any) error }) (model.Client, error) {
	var (
		c         model.Client
		lastVisit sql.NullTime
	)
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.VisitCount, &c.IsVIP,
		&lastVisit, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return model.Client{}, err
	}
	if lastVisit.Valid {
		t := lastVisit.Time
		c.LastVisitAt = &t
	}
	return c, nil
}

// Create inserts a new client and populates the generated ID.
func (r *ClientRepo) Create(ctx context.Context, c *model.Client) error {
	const q = `INSERT INTO clients (name, phone, is_vip) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Phone, c.IsVIP)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID loads a client snapshot. Returns ErrClientNotFound when absent.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (model.Client, error) {
	const q = `SELECT ` + clientColumns + ` FROM clients WHERE id = ?`
	c, err := scanClient(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Client{}, ErrClientNotFound
	}
	return c, err
}

// GetByPhone looks a client up by phone number for repeat check-ins.
func (r *ClientRepo) GetByPhone(ctx context.Context, phone string) (model.Client, error) {
	const q = `SELECT ` + clientColumns + ` FROM clients WHERE phone = ?`
	c, err := scanClient(r.db.QueryRowContext(ctx, q, phone))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Client{}, ErrClientNotFound
	}
	return c, err
}

// GetByIDTx loads a client inside a transaction with a row lock, used
// by finish-service so the visit counter increment is race-free.
func (r *ClientRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Client, error) {
	const q = `SELECT ` + clientColumns + ` FROM clients WHERE id = ? FOR UPDATE`
	c, err := scanClient(tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Client{}, ErrClientNotFound
	}
	return c, err
}

// ApplyVisitTx records one completed visit inside an existing
// transaction. The increment happens in SQL rather than from the loaded
// struct so concurrent finishes at other locations cannot lose counts.
func (r *ClientRepo) ApplyVisitTx(ctx context.Context, tx *sql.Tx, clientID uint64, at time.Time) error {
	const q = `UPDATE clients SET visit_count = visit_count + 1, last_visit_at = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, at.UTC(), clientID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrClientNotFound
	}
	return nil
}

// SetVIP toggles the manual VIP flag.
func (r *ClientRepo) SetVIP(ctx context.Context, clientID uint64, vip bool) error {
	const q = `UPDATE clients SET is_vip = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, vip, clientID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrClientNotFound
	}
	return nil
}
