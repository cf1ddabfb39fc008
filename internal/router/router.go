// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/barbershop-queue/internal/handler"
	"github.com/iliyamo/barbershop-queue/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication
// and are not part of the queue API. Currently only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the staff authentication routes.
// Unauthenticated operations live under /v1/auth; protected endpoints
// live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout works without JWT middleware: a refresh token in the body
	// ends one session, a bearer token alone ends all sessions.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("OWNER", "BARBER"))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the walk-in endpoints. No authentication:
// clients check in at a kiosk or from their phone with no account.
func RegisterPublic(e *echo.Echo, q *handler.QueueHandler, o *handler.OwnerHandler) {
	e.POST("/v1/locations/:id/checkin", q.CheckIn)
	e.GET("/v1/locations/:id/queue", q.Queue)
	e.GET("/v1/locations/:id/status", q.Status)
	e.GET("/v1/locations/:id/services", o.ListServiceTypes)
	e.GET("/v1/entries/:id", q.Entry)
	// Cancel is a DELETE on the entry; the POST alias serves kiosk
	// frontends that cannot issue DELETE.
	e.DELETE("/v1/entries/:id", q.CancelEntry)
	e.POST("/v1/entries/:id/cancel", q.CancelEntry)
}

// RegisterStaff registers the barber endpoints driving the entry
// lifecycle. Both roles may operate the queue.
func RegisterStaff(e *echo.Echo, q *handler.QueueHandler, jwtSecret string) {
	g := e.Group("/v1/staff")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("BARBER", "OWNER"))

	g.POST("/entries/:id/start", q.StartService)
	g.POST("/entries/:id/finish", q.FinishService)
	g.POST("/entries/:id/no-show", q.MarkNoShow)
	g.GET("/locations/:id/agents", q.ListAgents)
	g.PATCH("/agents/:id/status", q.UpdateAgentStatus)
	g.GET("/locations/:id/entries", q.History)
}

// RegisterOwner registers the management endpoints, OWNER role only.
func RegisterOwner(e *echo.Echo, o *handler.OwnerHandler, jwtSecret string) {
	g := e.Group("/v1/owner")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("OWNER"))

	g.POST("/locations", o.CreateLocation)
	g.GET("/locations", o.ListLocations)
	g.PUT("/locations/:id", o.UpdateLocation)
	g.POST("/locations/:id/services", o.CreateServiceType)
	g.POST("/locations/:id/agents", o.CreateAgent)
	g.PATCH("/clients/:id/vip", o.SetClientVIP)
}
