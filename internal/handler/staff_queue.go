package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/barbershop-queue/internal/model"
	"github.com/iliyamo/barbershop-queue/internal/queue"
)

// Staff endpoints drive the entry lifecycle: start, finish and no-show.
// Each one follows the same shape: open a transaction, take the
// location row lock, re-read the entry, run the engine transition,
// persist with the optimistic version check, recompute positions,
// commit, then invalidate caches and publish events.

type startReq struct {
	AgentID uint64 `json:"agent_id"`
}

type agentStatusReq struct {
	Status string `json:"status"`
}

// StartService handles POST /staff/entries/:id/start.
func (h *QueueHandler) StartService(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}
	var req startReq
	if err := c.Bind(&req); err != nil || req.AgentID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "agent_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry, err := h.Entries.GetByID(ctx, id)
	if err != nil {
		return mapError(c, err)
	}
	agent, err := h.Agents.GetByID(ctx, req.AgentID)
	if err != nil {
		return mapError(c, err)
	}
	if agent.LocationID != entry.LocationID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "agent belongs to another location"})
	}
	if agent.Status != model.AgentAvailable {
		return c.JSON(http.StatusConflict, echo.Map{"error": "agent is not available"})
	}

	tx, err := h.Entries.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	loc, err := h.Locations.GetByIDForUpdateTx(ctx, tx, entry.LocationID)
	if err != nil {
		return mapError(c, err)
	}
	entry, err = h.Entries.GetByIDTx(ctx, tx, id)
	if err != nil {
		return mapError(c, err)
	}

	if err := queue.StartService(&entry, agent.ID, time.Now().UTC()); err != nil {
		return mapError(c, err)
	}
	entry.Position = 0 // no longer in the waiting order
	if err := h.Entries.UpdateStatusTx(ctx, tx, &entry); err != nil {
		return mapError(c, err)
	}
	if err := h.Agents.UpdateStatusTx(ctx, tx, agent.ID, model.AgentBusy); err != nil {
		return mapError(c, err)
	}

	waiting, _, err := h.reorderTx(ctx, tx, loc)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update positions failed"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	h.afterQueueMutation(ctx, loc, waiting, &entry)

	return c.JSON(http.StatusOK, entryResp{
		QueueEntry:  entry,
		StatusLabel: entry.Status.Label(),
		TierLabel:   entry.Tier.Label(),
	})
}

// FinishService handles POST /staff/entries/:id/finish. Completion
// applies the visit side effects: client visit count and last-visit
// timestamp, service popularity. All rows commit atomically with the
// status change.
func (h *QueueHandler) FinishService(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry, err := h.Entries.GetByID(ctx, id)
	if err != nil {
		return mapError(c, err)
	}

	tx, err := h.Entries.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	loc, err := h.Locations.GetByIDForUpdateTx(ctx, tx, entry.LocationID)
	if err != nil {
		return mapError(c, err)
	}
	entry, err = h.Entries.GetByIDTx(ctx, tx, id)
	if err != nil {
		return mapError(c, err)
	}
	client, err := h.Clients.GetByIDTx(ctx, tx, entry.ClientID)
	if err != nil {
		return mapError(c, err)
	}
	svc, err := h.Services.GetByID(ctx, entry.ServiceTypeID)
	if err != nil {
		return mapError(c, err)
	}

	now := time.Now().UTC()
	if err := queue.FinishService(&entry, &client, &svc, now); err != nil {
		return mapError(c, err)
	}
	if err := h.Entries.UpdateStatusTx(ctx, tx, &entry); err != nil {
		return mapError(c, err)
	}
	if err := h.Clients.ApplyVisitTx(ctx, tx, client.ID, now); err != nil {
		return mapError(c, err)
	}
	if err := h.Services.IncrementPopularityTx(ctx, tx, svc.ID); err != nil {
		return mapError(c, err)
	}
	if entry.AgentID != nil {
		if err := h.Agents.UpdateStatusTx(ctx, tx, *entry.AgentID, model.AgentAvailable); err != nil {
			return mapError(c, err)
		}
	}

	waiting, _, err := h.reorderTx(ctx, tx, loc)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update positions failed"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	h.afterQueueMutation(ctx, loc, waiting, &entry)

	return c.JSON(http.StatusOK, entryResp{
		QueueEntry:  entry,
		StatusLabel: entry.Status.Label(),
		TierLabel:   entry.Tier.Label(),
	})
}

// MarkNoShow handles POST /staff/entries/:id/no-show. Allowed from both
// WAITING and IN_SERVICE; no visit side effects are applied.
func (h *QueueHandler) MarkNoShow(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry, err := h.Entries.GetByID(ctx, id)
	if err != nil {
		return mapError(c, err)
	}

	tx, err := h.Entries.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	loc, err := h.Locations.GetByIDForUpdateTx(ctx, tx, entry.LocationID)
	if err != nil {
		return mapError(c, err)
	}
	entry, err = h.Entries.GetByIDTx(ctx, tx, id)
	if err != nil {
		return mapError(c, err)
	}

	wasInService := entry.Status == model.StatusInService
	if err := queue.MarkNoShow(&entry, time.Now().UTC()); err != nil {
		return mapError(c, err)
	}
	entry.Position = 0
	if err := h.Entries.UpdateStatusTx(ctx, tx, &entry); err != nil {
		return mapError(c, err)
	}
	if wasInService && entry.AgentID != nil {
		if err := h.Agents.UpdateStatusTx(ctx, tx, *entry.AgentID, model.AgentAvailable); err != nil {
			return mapError(c, err)
		}
	}

	waiting, _, err := h.reorderTx(ctx, tx, loc)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update positions failed"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	h.afterQueueMutation(ctx, loc, waiting, &entry)

	return c.JSON(http.StatusOK, entryResp{
		QueueEntry:  entry,
		StatusLabel: entry.Status.Label(),
		TierLabel:   entry.Tier.Label(),
	})
}

// ListAgents handles GET /staff/locations/:id/agents.
func (h *QueueHandler) ListAgents(c echo.Context) error {
	locID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	agents, err := h.Agents.ListByLocation(ctx, locID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load agents failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"agents": agents})
}

// UpdateAgentStatus handles PATCH /staff/agents/:id/status. A status
// flip changes the estimator's denominator, so the aggregate cache is
// invalidated and a queue event is published.
func (h *QueueHandler) UpdateAgentStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid agent id"})
	}
	var req agentStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	raw := strings.ToUpper(strings.TrimSpace(req.Status))
	if !model.ValidAgentStatus(raw) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	status := model.AgentStatus(raw)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	agent, err := h.Agents.GetByID(ctx, id)
	if err != nil {
		return mapError(c, err)
	}
	if err := h.Agents.UpdateStatus(ctx, id, status); err != nil {
		return mapError(c, err)
	}
	agent.Status = status

	h.Agg.InvalidateLocation(ctx, agent.LocationID)
	if loc, err := h.Locations.GetByID(ctx, agent.LocationID); err == nil {
		waiting, _ := h.Entries.ListWaiting(ctx, loc.ID)
		h.afterQueueMutation(ctx, loc, waiting, nil)
	}

	return c.JSON(http.StatusOK, echo.Map{"agent": agent})
}

// History handles GET /staff/locations/:id/entries, recent entries in
// any status.
func (h *QueueHandler) History(c echo.Context) error {
	locID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.Entries.ListRecent(ctx, locID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load entries failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"entries": entries})
}

// reorderTx recomputes and persists positions for the location's
// WAITING set inside the caller's transaction.
func (h *QueueHandler) reorderTx(ctx context.Context, tx *sql.Tx, loc model.Location) ([]model.QueueEntry, []queue.Ranked, error) {
	waiting, err := h.Entries.ListWaitingTx(ctx, tx, loc.ID)
	if err != nil {
		return nil, nil, err
	}
	ranked := queue.Order(waiting, loc.PriorityEnabled)
	if err := h.Entries.UpdatePositionsTx(ctx, tx, ranked); err != nil {
		return nil, nil, err
	}
	return waiting, ranked, nil
}

// afterQueueMutation refreshes the aggregate cache and publishes the
// queue snapshot. Runs strictly after commit.
func (h *QueueHandler) afterQueueMutation(ctx context.Context, loc model.Location, waiting []model.QueueEntry, entry *model.QueueEntry) {
	h.Agg.InvalidateLocation(ctx, loc.ID)
	agents, aerr := h.Agents.CountActive(ctx, loc.ID)
	estimate := 0
	if durations, derr := h.Services.DurationsFor(ctx, loc.ID); derr == nil && aerr == nil {
		estimate = fullWait(waiting, durations, agents)
		h.Agg.StoreWaitMinutes(ctx, loc.ID, estimate)
	}
	position := 0
	if entry != nil {
		position = entry.Position
	}
	h.announce(ctx, loc, len(waiting), estimate, agents, entry, position)
}
