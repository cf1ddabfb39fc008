package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/barbershop-queue/internal/cache"
	"github.com/iliyamo/barbershop-queue/internal/model"
	"github.com/iliyamo/barbershop-queue/internal/queue"
	"github.com/iliyamo/barbershop-queue/internal/repository"
)

// OwnerHandler bundles dependencies for the owner-facing management
// endpoints: locations, service catalogs, agents and client VIP flags.
type OwnerHandler struct {
	Locations *repository.LocationRepo
	Services  *repository.ServiceTypeRepo
	Agents    *repository.AgentRepo
	Clients   *repository.ClientRepo
	Entries   *repository.EntryRepo
	Agg       *cache.Aggregates
}

func NewOwnerHandler(
	locations *repository.LocationRepo,
	services *repository.ServiceTypeRepo,
	agents *repository.AgentRepo,
	clients *repository.ClientRepo,
	entries *repository.EntryRepo,
	agg *cache.Aggregates,
) *OwnerHandler {
	return &OwnerHandler{
		Locations: locations,
		Services:  services,
		Agents:    agents,
		Clients:   clients,
		Entries:   entries,
		Agg:       agg,
	}
}

// ----- DTOs -----

type locationReq struct {
	Name            string `json:"name"`
	Open            string `json:"open"`  // "HH:MM"
	Close           string `json:"close"` // "HH:MM"
	Days            []int  `json:"days"`  // 0 = Monday ... 6 = Sunday
	MaxWaiting      int    `json:"max_waiting"`
	PriorityEnabled bool   `json:"priority_enabled"`
}

type serviceTypeReq struct {
	Name        string `json:"name"`
	DurationMin int    `json:"duration_min"`
}

type agentReq struct {
	Name string `json:"name"`
}

type vipReq struct {
	IsVIP bool `json:"is_vip"`
}

type locationResp struct {
	model.Location
	Open  string `json:"open"`
	Close string `json:"close"`
}

func toLocationResp(l model.Location) locationResp {
	return locationResp{
		Location: l,
		Open:     queue.FormatClock(l.OpenMinute),
		Close:    queue.FormatClock(l.CloseMinute),
	}
}

// parseLocationReq validates hours and days and maps them onto the
// model's minute/bitmask representation.
func parseLocationReq(req locationReq) (model.Location, string) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Location{}, "name required"
	}
	openMin, err := queue.ParseClock(req.Open)
	if err != nil {
		return model.Location{}, "invalid open time"
	}
	closeMin, err := queue.ParseClock(req.Close)
	if err != nil {
		return model.Location{}, "invalid close time"
	}
	if openMin >= closeMin {
		return model.Location{}, "open must be before close"
	}
	if len(req.Days) == 0 {
		return model.Location{}, "days required"
	}
	var days uint8
	for _, d := range req.Days {
		if d < 0 || d > 6 {
			return model.Location{}, "days must be 0 (Monday) through 6 (Sunday)"
		}
		days |= 1 << uint(d)
	}
	if req.MaxWaiting < 0 {
		return model.Location{}, "max_waiting must not be negative"
	}
	return model.Location{
		Name:            name,
		OpenMinute:      openMin,
		CloseMinute:     closeMin,
		OperatingDays:   days,
		MaxWaiting:      req.MaxWaiting,
		PriorityEnabled: req.PriorityEnabled,
	}, ""
}

// ----- endpoints -----

// CreateLocation handles POST /owner/locations.
func (h *OwnerHandler) CreateLocation(c echo.Context) error {
	ownerID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req locationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	loc, msg := parseLocationReq(req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	loc.OwnerID = ownerID

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Locations.Create(ctx, &loc); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create location failed"})
	}
	return c.JSON(http.StatusCreated, toLocationResp(loc))
}

// ListLocations handles GET /owner/locations.
func (h *OwnerHandler) ListLocations(c echo.Context) error {
	ownerID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	locations, err := h.Locations.ListByOwner(ctx, ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load locations failed"})
	}
	out := make([]locationResp, len(locations))
	for i, l := range locations {
		out[i] = toLocationResp(l)
	}
	return c.JSON(http.StatusOK, echo.Map{"locations": out})
}

// UpdateLocation handles PUT /owner/locations/:id. Settings feed both
// the hours validator and the ordering engine, so after a successful
// update the waiting positions are recomputed under the location lock
// and the aggregate cache is dropped. Flipping priority_enabled
// reorders the existing queue immediately.
func (h *OwnerHandler) UpdateLocation(c echo.Context) error {
	ownerID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	locID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}
	var req locationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	loc, msg := parseLocationReq(req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	loc.ID = locID
	loc.OwnerID = ownerID

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Locations.UpdateSettings(ctx, &loc); err != nil {
		return mapError(c, err)
	}

	// Re-rank the waiting set under the new settings.
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
	locked, err := h.Locations.GetByIDForUpdateTx(ctx, tx, locID)
	if err != nil {
		return mapError(c, err)
	}
	waiting, err := h.Entries.ListWaitingTx(ctx, tx, locked.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load queue failed"})
	}
	ranked := queue.Order(waiting, locked.PriorityEnabled)
	if err := h.Entries.UpdatePositionsTx(ctx, tx, ranked); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update positions failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	h.Agg.InvalidateLocation(ctx, locID)

	return c.JSON(http.StatusOK, toLocationResp(locked))
}

// CreateServiceType handles POST /owner/locations/:id/services.
func (h *OwnerHandler) CreateServiceType(c echo.Context) error {
	ownerID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	locID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}
	var req serviceTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || req.DurationMin <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and positive duration_min required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	loc, err := h.Locations.GetByID(ctx, locID)
	if err != nil {
		return mapError(c, err)
	}
	if loc.OwnerID != ownerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	svc := model.ServiceType{LocationID: locID, Name: name, DurationMin: req.DurationMin}
	if err := h.Services.Create(ctx, &svc); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create service failed"})
	}
	return c.JSON(http.StatusCreated, svc)
}

// ListServiceTypes handles GET /locations/:id/services (public: walk-in
// clients pick from it at check-in).
func (h *OwnerHandler) ListServiceTypes(c echo.Context) error {
	locID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	services, err := h.Services.ListByLocation(ctx, locID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load services failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"services": services})
}

// CreateAgent handles POST /owner/locations/:id/agents. New agents
// start OFFLINE and come online through the staff status endpoint.
func (h *OwnerHandler) CreateAgent(c echo.Context) error {
	ownerID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	locID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}
	var req agentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	loc, err := h.Locations.GetByID(ctx, locID)
	if err != nil {
		return mapError(c, err)
	}
	if loc.OwnerID != ownerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	agent := model.Agent{LocationID: locID, Name: strings.TrimSpace(req.Name), Status: model.AgentOffline}
	if err := h.Agents.Create(ctx, &agent); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create agent failed"})
	}
	return c.JSON(http.StatusCreated, agent)
}

// SetClientVIP handles PATCH /owner/clients/:id/vip. The flag affects
// only future check-ins; entries already in a queue keep the tier
// classified at their arrival.
func (h *OwnerHandler) SetClientVIP(c echo.Context) error {
	clientID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}
	var req vipReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Clients.SetVIP(ctx, clientID, req.IsVIP); err != nil {
		return mapError(c, err)
	}
	client, err := h.Clients.GetByID(ctx, clientID)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, client)
}
