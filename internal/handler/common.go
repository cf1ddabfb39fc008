// Package handler implements the HTTP endpoints. Handlers orchestrate
// repositories and the queue engine: they load snapshots, call the pure
// engine functions, persist the results in one transaction and only
// after commit touch the aggregate cache and the event broker.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/barbershop-queue/internal/queue"
	"github.com/iliyamo/barbershop-queue/internal/repository"
)

// getUserID extracts the authenticated user ID placed in the context by
// the JWT middleware. The "sub" claim arrives as a JSON number.
func getUserID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), true
	case uint64:
		return v, true
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// mapError converts repository and engine errors into JSON responses.
// Unknown errors become 500 with a generic message.
func mapError(c echo.Context, err error) error {
	var invalid *queue.InvalidTransitionError
	switch {
	case errors.As(err, &invalid):
		return c.JSON(http.StatusConflict, echo.Map{"error": invalid.Error()})
	case errors.Is(err, repository.ErrVersionConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "entry was modified concurrently"})
	case errors.Is(err, repository.ErrEntryNotFound),
		errors.Is(err, repository.ErrLocationNotFound),
		errors.Is(err, repository.ErrClientNotFound),
		errors.Is(err, repository.ErrServiceNotFound),
		errors.Is(err, repository.ErrAgentNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
