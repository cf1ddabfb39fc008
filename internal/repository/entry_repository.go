package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/barbershop-queue/internal/model"
	"github.com/iliyamo/barbershop-queue/internal/queue"
)

// EntryRepo provides persistence for queue entries. It lists WAITING
// sets, creates entries and applies status updates; all policy
// (ordering, guards, estimation) lives in the queue package.
// Timestamps are stored in UTC.
type EntryRepo struct {
	db *sql.DB
}

// NewEntryRepo returns a new EntryRepo bound to the given database.
func NewEntryRepo(db *sql.DB) *EntryRepo { return &EntryRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning several repositories.
func (r *EntryRepo) DB() *sql.DB { return r.db }

const entryColumns = `id, location_id, client_id, service_type_id, agent_id,
       status, tier, position, arrived_at, started_at, finished_at,
       version, created_at, updated_at`

func scanEntry(row interface{ Scan(...any) error }) (model.QueueEntry, error) {
	var (
		e          model.QueueEntry
		agentID    sql.NullInt64
		startedAt  sql.NullTime
		finishedAt sql.NullTime
	)
	err := row.Scan(
		&e.ID, &e.LocationID, &e.ClientID, &e.ServiceTypeID, &agentID,
		&e.Status, &e.Tier, &e.Position, &e.ArrivedAt, &startedAt, &finishedAt,
		&e.Version, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return model.QueueEntry{}, err
	}
	if agentID.Valid {
		id := uint64(agentID.Int64)
		e.AgentID = &id
	}
	if startedAt.Valid {
		t := startedAt.Time
		e.StartedAt = &t
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		e.FinishedAt = &t
	}
	return e, nil
}

// CreateTx inserts a new WAITING entry within an existing transaction
// and populates the generated ID and timestamps on the provided struct.
// The caller must commit or roll back.
func (r *EntryRepo) CreateTx(ctx context.Context, tx *sql.Tx, e *model.QueueEntry) error {
	const q = `INSERT INTO queue_entries
	           (location_id, client_id, service_type_id, status, tier, position, arrived_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		e.LocationID, e.ClientID, e.ServiceTypeID, e.Status, e.Tier, e.Position, e.ArrivedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	const sel = `SELECT ` + entryColumns + ` FROM queue_entries WHERE id = ?`
	created, err := scanEntry(tx.QueryRowContext(ctx, sel, e.ID))
	if err != nil {
		return err
	}
	*e = created
	return nil
}

// GetByID loads a single entry. Returns ErrEntryNotFound when absent.
func (r *EntryRepo) GetByID(ctx context.Context, id uint64) (model.QueueEntry, error) {
	const q = `SELECT ` + entryColumns + ` FROM queue_entries WHERE id = ?`
	e, err := scanEntry(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.QueueEntry{}, ErrEntryNotFound
	}
	return e, err
}

// GetByIDTx loads an entry inside a transaction with a row lock, so at
// most one lifecycle transition per entry is in flight at a time.
func (r *EntryRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.QueueEntry, error) {
	const q = `SELECT ` + entryColumns + ` FROM queue_entries WHERE id = ? FOR UPDATE`
	e, err := scanEntry(tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.QueueEntry{}, ErrEntryNotFound
	}
	return e, err
}

// ListWaiting returns the WAITING set for a location ordered by arrival
// then ID. The deterministic ordering feeds the engine's snapshot.
func (r *EntryRepo) ListWaiting(ctx context.Context, locationID uint64) ([]model.QueueEntry, error) {
	const q = `SELECT ` + entryColumns + ` FROM queue_entries
	           WHERE location_id = ? AND status = ?
	           ORDER BY arrived_at, id`
	rows, err := r.db.QueryContext(ctx, q, locationID, model.StatusWaiting)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

// ListWaitingTx is ListWaiting inside a transaction; the caller is
// expected to hold the location row lock so the snapshot is stable.
func (r *EntryRepo) ListWaitingTx(ctx context.Context, tx *sql.Tx, locationID uint64) ([]model.QueueEntry, error) {
	const q = `SELECT ` + entryColumns + ` FROM queue_entries
	           WHERE location_id = ? AND status = ?
	           ORDER BY arrived_at, id`
	rows, err := tx.QueryContext(ctx, q, locationID, model.StatusWaiting)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func collectEntries(rows *sql.Rows) ([]model.QueueEntry, error) {
	entries := make([]model.QueueEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// CountWaiting returns the size of the WAITING set for the capacity
// check at check-in.
func (r *EntryRepo) CountWaiting(ctx context.Context, locationID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM queue_entries WHERE location_id = ? AND status = ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, locationID, model.StatusWaiting).Scan(&n)
	return n, err
}

// UpdateStatusTx persists a lifecycle transition with an optimistic
// version check. The entry must carry the version read before the
// engine mutated it; when the row's version has moved on, nothing is
// written and ErrVersionConflict is returned.
func (r *EntryRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, e *model.QueueEntry) error {
	const q = `UPDATE queue_entries
	           SET status = ?, agent_id = ?, started_at = ?, finished_at = ?,
	               position = ?, version = version + 1
	           WHERE id = ? AND version = ?`
	var agentID any
	if e.AgentID != nil {
		agentID = *e.AgentID
	}
	var startedAt, finishedAt any
	if e.StartedAt != nil {
		startedAt = e.StartedAt.UTC()
	}
	if e.FinishedAt != nil {
		finishedAt = e.FinishedAt.UTC()
	}
	res, err := tx.ExecContext(ctx, q,
		e.Status, agentID, startedAt, finishedAt, e.Position, e.ID, e.Version)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	e.Version++
	return nil
}

// UpdatePositionsTx writes recomputed positions for a location's WAITING
// set. Positions are display values only; skipping entries whose
// position is unchanged keeps the statement count low on busy queues.
func (r *EntryRepo) UpdatePositionsTx(ctx context.Context, tx *sql.Tx, ranked []queue.Ranked) error {
	const q = `UPDATE queue_entries SET position = ? WHERE id = ?`
	for _, rk := range ranked {
		if rk.Entry.Position == rk.Position {
			continue
		}
		if _, err := tx.ExecContext(ctx, q, rk.Position, rk.Entry.ID); err != nil {
			return err
		}
	}
	return nil
}

// ListRecent returns a location's entries (any status) newest first, for
// staff history views.
func (r *EntryRepo) ListRecent(ctx context.Context, locationID uint64, limit int) ([]model.QueueEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const q = `SELECT ` + entryColumns + ` FROM queue_entries
	           WHERE location_id = ?
	           ORDER BY arrived_at DESC, id DESC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, locationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}
