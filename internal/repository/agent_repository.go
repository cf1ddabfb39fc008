package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/barbershop-queue/internal/model"
)

// AgentRepo provides persistence for service agents. The active count
// (AVAILABLE plus BUSY) is the denominator of the wait estimator.
type AgentRepo struct {
	db *sql.DB
}

// NewAgentRepo returns a new AgentRepo bound to the given database.
func NewAgentRepo(db *sql.DB) *AgentRepo { return &AgentRepo{db: db} }

const agentColumns = `id, location_id, name, status, created_at, updated_at`

func scanAgent(row interface{ Scan(...any) error }) (model.Agent, error) {
	var a model.Agent
	err := row.Scan(&a.ID, &a.LocationID, &a.Name, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.Agent{}, err
	}
	return a, nil
}

// Create inserts a new agent and populates the generated ID.
func (r *AgentRepo) Create(ctx context.Context, a *model.Agent) error {
	const q = `INSERT INTO agents (location_id, name, status) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, a.LocationID, a.Name, a.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByID loads an agent. Returns ErrAgentNotFound when absent.
func (r *AgentRepo) GetByID(ctx context.Context, id uint64) (model.Agent, error) {
	const q = `SELECT ` + agentColumns + ` FROM agents WHERE id = ?`
	a, err := scanAgent(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Agent{}, ErrAgentNotFound
	}
	return a, err
}

// ListByLocation returns a location's agents ordered by ID.
func (r *AgentRepo) ListByLocation(ctx context.Context, locationID uint64) ([]model.Agent, error) {
	const q = `SELECT ` + agentColumns + ` FROM agents WHERE location_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agents := make([]model.Agent, 0)
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return agents, nil
}

// CountActive returns how many agents are AVAILABLE or BUSY.
func (r *AgentRepo) CountActive(ctx context.Context, locationID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM agents WHERE location_id = ? AND status IN (?, ?)`
	var n int
	err := r.db.QueryRowContext(ctx, q, locationID,
		model.AgentAvailable, model.AgentBusy).Scan(&n)
	return n, err
}

// CountActiveTx is CountActive inside a transaction, so handlers
// holding the location lock see a consistent denominator.
func (r *AgentRepo) CountActiveTx(ctx context.Context, tx *sql.Tx, locationID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM agents WHERE location_id = ? AND status IN (?, ?)`
	var n int
	err := tx.QueryRowContext(ctx, q, locationID,
		model.AgentAvailable, model.AgentBusy).Scan(&n)
	return n, err
}

// UpdateStatus sets an agent's availability state.
func (r *AgentRepo) UpdateStatus(ctx context.Context, id uint64, status model.AgentStatus) error {
	return r.updateStatus(ctx, r.db, id, status)
}

// UpdateStatusTx is UpdateStatus inside an existing transaction, used
// when start/finish flips an agent between AVAILABLE and BUSY.
func (r *AgentRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.AgentStatus) error {
	return r.updateStatus(ctx, tx, id, status)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *AgentRepo) updateStatus(ctx context.Context, ex execer, id uint64, status model.AgentStatus) error {
	const q = `UPDATE agents SET status = ? WHERE id = ?`
	res, err := ex.ExecContext(ctx, q, status, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected != 0 {
		return nil
	}
	// RowsAffected is 0 both for a missing row and for a no-op update.
	var exists int
	err = ex.QueryRowContext(ctx, `SELECT 1 FROM agents WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAgentNotFound
	}
	return err
}
