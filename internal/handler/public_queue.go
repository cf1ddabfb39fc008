package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/barbershop-queue/internal/cache"
	"github.com/iliyamo/barbershop-queue/internal/event"
	"github.com/iliyamo/barbershop-queue/internal/model"
	"github.com/iliyamo/barbershop-queue/internal/queue"
	"github.com/iliyamo/barbershop-queue/internal/repository"
	eventpub "github.com/iliyamo/barbershop-queue/internal/service"
)

// QueueHandler bundles dependencies for the walk-in queue endpoints,
// public and staff alike.
type QueueHandler struct {
	Entries   *repository.EntryRepo
	Clients   *repository.ClientRepo
	Locations *repository.LocationRepo
	Services  *repository.ServiceTypeRepo
	Agents    *repository.AgentRepo
	Agg       *cache.Aggregates
}

func NewQueueHandler(
	entries *repository.EntryRepo,
	clients *repository.ClientRepo,
	locations *repository.LocationRepo,
	services *repository.ServiceTypeRepo,
	agents *repository.AgentRepo,
	agg *cache.Aggregates,
) *QueueHandler {
	return &QueueHandler{
		Entries:   entries,
		Clients:   clients,
		Locations: locations,
		Services:  services,
		Agents:    agents,
		Agg:       agg,
	}
}

// ----- DTOs -----

type checkInReq struct {
	ClientID      uint64 `json:"client_id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	ServiceTypeID uint64 `json:"service_type_id"`
}

type entryResp struct {
	model.QueueEntry
	StatusLabel   string `json:"status_label"`
	TierLabel     string `json:"tier_label"`
	EstimatedWait int    `json:"estimated_wait_min,omitempty"`
	WaitDisplay   string `json:"estimated_wait,omitempty"`
}

type queueEntryPart struct {
	ID            uint64     `json:"id"`
	Position      int        `json:"position"`
	ClientID      uint64     `json:"client_id"`
	ServiceTypeID uint64     `json:"service_type_id"`
	Tier          model.Tier `json:"tier"`
	TierLabel     string     `json:"tier_label"`
	ArrivedAt     time.Time  `json:"arrived_at"`
	EstimatedWait int        `json:"estimated_wait_min"`
}

// ----- helpers -----

// isOpenNow answers the hours question through the aggregate cache,
// recomputing from the location's settings on a miss.
func (h *QueueHandler) isOpenNow(ctx context.Context, loc model.Location, now time.Time) bool {
	if open, ok := h.Agg.Open(ctx, loc.ID); ok {
		return open
	}
	open := queue.IsOpen(queue.MondayWeekday(now), queue.MinuteOfDay(now),
		loc.OperatingDays, loc.OpenMinute, loc.CloseMinute)
	h.Agg.StoreOpen(ctx, loc.ID, open)
	return open
}

// waitAhead sums the durations of the entries ranked at or before the
// given position and divides across active agents.
func waitAhead(ranked []queue.Ranked, durations map[uint64]int, position, agents int) int {
	ahead := make([]int, 0, position)
	for _, r := range ranked {
		if r.Position <= position {
			ahead = append(ahead, durations[r.Entry.ServiceTypeID])
		}
	}
	return queue.EstimateMinutes(ahead, agents)
}

// fullWait estimates the wait a brand-new arrival would face: every
// waiting entry's duration divided across active agents.
func fullWait(entries []model.QueueEntry, durations map[uint64]int, agents int) int {
	all := make([]int, len(entries))
	for i, e := range entries {
		all[i] = durations[e.ServiceTypeID]
	}
	return queue.EstimateMinutes(all, agents)
}

// announce publishes the post-mutation queue snapshot and, when entry
// is non-nil, the per-entry status event. Failures are logged inside
// the publisher and deliberately dropped here.
func (h *QueueHandler) announce(ctx context.Context, loc model.Location, waitingCount, estimate, agents int, entry *model.QueueEntry, position int) {
	now := time.Now().UTC().Format(time.RFC3339)
	_ = eventpub.PublishQueueChanged(ctx, event.QueueChanged{
		EventID:         uuid.NewString(),
		LocationID:      loc.ID,
		WaitingCount:    waitingCount,
		EstimatedWait:   estimate,
		ActiveAgents:    agents,
		PriorityEnabled: loc.PriorityEnabled,
		OccurredAt:      now,
	})
	if entry != nil {
		_ = eventpub.PublishEntryStatusChanged(ctx, event.EntryStatusChanged{
			EventID:    uuid.NewString(),
			EntryID:    entry.ID,
			LocationID: entry.LocationID,
			ClientID:   entry.ClientID,
			AgentID:    entry.AgentID,
			Status:     string(entry.Status),
			Position:   position,
			OccurredAt: now,
		})
	}
}

// resolveClient finds the check-in client by ID, by phone, or creates a
// new record from name+phone.
func (h *QueueHandler) resolveClient(ctx context.Context, req checkInReq) (model.Client, error) {
	if req.ClientID != 0 {
		return h.Clients.GetByID(ctx, req.ClientID)
	}
	phone := strings.TrimSpace(req.Phone)
	if phone != "" {
		if c, err := h.Clients.GetByPhone(ctx, phone); err == nil {
			return c, nil
		} else if err != repository.ErrClientNotFound {
			return model.Client{}, err
		}
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Client{}, repository.ErrClientNotFound
	}
	c := model.Client{Name: name, Phone: phone}
	if err := h.Clients.Create(ctx, &c); err != nil {
		return model.Client{}, err
	}
	return c, nil
}

// ----- endpoints -----

// CheckIn handles POST /locations/:id/checkin. The classifier runs on
// the client snapshot read here; the entry's tier is frozen at this
// moment and later profile changes do not reorder existing entries.
func (h *QueueHandler) CheckIn(c echo.Context) error {
	locID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}
	var req checkInReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ServiceTypeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "service_type_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	loc, err := h.Locations.GetByID(ctx, locID)
	if err != nil {
		return mapError(c, err)
	}

	now := time.Now()
	if !h.isOpenNow(ctx, loc, now) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "location is closed"})
	}

	svc, err := h.Services.GetByID(ctx, req.ServiceTypeID)
	if err != nil {
		return mapError(c, err)
	}
	if svc.LocationID != loc.ID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "service type belongs to another location"})
	}

	client, err := h.resolveClient(ctx, req)
	if err != nil {
		if err == repository.ErrClientNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_id or name required"})
		}
		return mapError(c, err)
	}
	tier := queue.ClassifyTier(client.VisitCount, client.IsVIP)

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

	// The location row lock serializes all queue mutations per location.
	loc, err = h.Locations.GetByIDForUpdateTx(ctx, tx, locID)
	if err != nil {
		return mapError(c, err)
	}

	waiting, err := h.Entries.ListWaitingTx(ctx, tx, loc.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load queue failed"})
	}
	if loc.MaxWaiting > 0 && len(waiting) >= loc.MaxWaiting {
		return c.JSON(http.StatusConflict, echo.Map{"error": "queue is full"})
	}

	entry := model.QueueEntry{
		LocationID:    loc.ID,
		ClientID:      client.ID,
		ServiceTypeID: svc.ID,
		Status:        model.StatusWaiting,
		Tier:          tier,
		ArrivedAt:     now.UTC(),
	}
	if err := h.Entries.CreateTx(ctx, tx, &entry); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create entry failed"})
	}

	waiting = append(waiting, entry)
	ranked := queue.Order(waiting, loc.PriorityEnabled)
	if err := h.Entries.UpdatePositionsTx(ctx, tx, ranked); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update positions failed"})
	}
	position := 0
	for _, r := range ranked {
		if r.Entry.ID == entry.ID {
			position = r.Position
			break
		}
	}
	entry.Position = position

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	h.Agg.InvalidateLocation(ctx, loc.ID)

	durations, derr := h.Services.DurationsFor(ctx, loc.ID)
	agents, aerr := h.Agents.CountActive(ctx, loc.ID)
	estimate := 0
	if derr == nil && aerr == nil {
		estimate = waitAhead(ranked, durations, position, agents)
		h.Agg.StoreWaitMinutes(ctx, loc.ID, fullWait(waiting, durations, agents))
	}

	h.announce(ctx, loc, len(waiting), estimate, agents, &entry, position)

	return c.JSON(http.StatusCreated, entryResp{
		QueueEntry:    entry,
		StatusLabel:   entry.Status.Label(),
		TierLabel:     entry.Tier.Label(),
		EstimatedWait: estimate,
		WaitDisplay:   queue.FormatWait(estimate),
	})
}

// Queue handles GET /locations/:id/queue: the ordered WAITING set with
// per-entry wait estimates.
func (h *QueueHandler) Queue(c echo.Context) error {
	locID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	loc, err := h.Locations.GetByID(ctx, locID)
	if err != nil {
		return mapError(c, err)
	}
	waiting, err := h.Entries.ListWaiting(ctx, loc.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load queue failed"})
	}
	durations, err := h.Services.DurationsFor(ctx, loc.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load services failed"})
	}
	agents, err := h.Agents.CountActive(ctx, loc.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load agents failed"})
	}

	ranked := queue.Order(waiting, loc.PriorityEnabled)
	parts := make([]queueEntryPart, len(ranked))
	for i, r := range ranked {
		parts[i] = queueEntryPart{
			ID:            r.Entry.ID,
			Position:      r.Position,
			ClientID:      r.Entry.ClientID,
			ServiceTypeID: r.Entry.ServiceTypeID,
			Tier:          r.Entry.Tier,
			TierLabel:     r.Entry.Tier.Label(),
			ArrivedAt:     r.Entry.ArrivedAt,
			EstimatedWait: waitAhead(ranked, durations, r.Position, agents),
		}
	}

	estimate := fullWait(waiting, durations, agents)
	h.Agg.StoreWaitMinutes(ctx, loc.ID, estimate)

	return c.JSON(http.StatusOK, echo.Map{
		"location_id":        loc.ID,
		"priority_enabled":   loc.PriorityEnabled,
		"waiting_count":      len(parts),
		"active_agents":      agents,
		"estimated_wait_min": estimate,
		"estimated_wait":     queue.FormatWait(estimate),
		"entries":            parts,
	})
}

// Status handles GET /locations/:id/status: the display-board summary,
// served from the aggregate cache when warm.
func (h *QueueHandler) Status(c echo.Context) error {
	locID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	loc, err := h.Locations.GetByID(ctx, locID)
	if err != nil {
		return mapError(c, err)
	}

	open := h.isOpenNow(ctx, loc, time.Now())

	waitingCount, err := h.Entries.CountWaiting(ctx, loc.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load queue failed"})
	}
	agents, err := h.Agents.CountActive(ctx, loc.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load agents failed"})
	}

	estimate, cached := h.Agg.WaitMinutes(ctx, loc.ID)
	if !cached {
		waiting, err := h.Entries.ListWaiting(ctx, loc.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load queue failed"})
		}
		durations, err := h.Services.DurationsFor(ctx, loc.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load services failed"})
		}
		estimate = fullWait(waiting, durations, agents)
		h.Agg.StoreWaitMinutes(ctx, loc.ID, estimate)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"location_id":        loc.ID,
		"name":               loc.Name,
		"open":               open,
		"hours":              queue.FormatClock(loc.OpenMinute) + "-" + queue.FormatClock(loc.CloseMinute),
		"waiting_count":      waitingCount,
		"active_agents":      agents,
		"estimated_wait_min": estimate,
		"estimated_wait":     queue.FormatWait(estimate),
	})
}

// Entry handles GET /entries/:id: a single entry with its live position
// and remaining wait.
func (h *QueueHandler) Entry(c echo.Context) error {
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

	estimate := 0
	if entry.Status == model.StatusWaiting {
		loc, err := h.Locations.GetByID(ctx, entry.LocationID)
		if err != nil {
			return mapError(c, err)
		}
		waiting, err := h.Entries.ListWaiting(ctx, loc.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load queue failed"})
		}
		durations, err := h.Services.DurationsFor(ctx, loc.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load services failed"})
		}
		agents, err := h.Agents.CountActive(ctx, loc.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load agents failed"})
		}
		ranked := queue.Order(waiting, loc.PriorityEnabled)
		entry.Position = queue.Rank(waiting, entry, loc.PriorityEnabled)
		estimate = waitAhead(ranked, durations, entry.Position, agents)
	}

	return c.JSON(http.StatusOK, entryResp{
		QueueEntry:    entry,
		StatusLabel:   entry.Status.Label(),
		TierLabel:     entry.Tier.Label(),
		EstimatedWait: estimate,
		WaitDisplay:   queue.FormatWait(estimate),
	})
}

// CancelEntry handles POST /entries/:id/cancel, the client-side exit
// from the queue. Only WAITING entries can cancel.
func (h *QueueHandler) CancelEntry(c echo.Context) error {
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

	if err := queue.Cancel(&entry, time.Now().UTC()); err != nil {
		return mapError(c, err)
	}
	if err := h.Entries.UpdateStatusTx(ctx, tx, &entry); err != nil {
		return mapError(c, err)
	}

	waiting, err := h.Entries.ListWaitingTx(ctx, tx, loc.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load queue failed"})
	}
	ranked := queue.Order(waiting, loc.PriorityEnabled)
	if err := h.Entries.UpdatePositionsTx(ctx, tx, ranked); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update positions failed"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	h.Agg.InvalidateLocation(ctx, loc.ID)
	agents, _ := h.Agents.CountActive(ctx, loc.ID)
	estimate := 0
	if durations, err := h.Services.DurationsFor(ctx, loc.ID); err == nil {
		estimate = fullWait(waiting, durations, agents)
		h.Agg.StoreWaitMinutes(ctx, loc.ID, estimate)
	}
	h.announce(ctx, loc, len(waiting), estimate, agents, &entry, 0)

	return c.JSON(http.StatusOK, entryResp{
		QueueEntry:  entry,
		StatusLabel: entry.Status.Label(),
		TierLabel:   entry.Tier.Label(),
		WaitDisplay: queue.FormatWait(0),
	})
}
