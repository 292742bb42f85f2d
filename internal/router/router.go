// Package router wires HTTP routes to their handlers.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-slot-booking/internal/handler"
	"github.com/iliyamo/flight-slot-booking/internal/middleware"
	"github.com/iliyamo/flight-slot-booking/internal/model"
)

// RegisterRoutes registers routes that carry no authentication. At the
// moment that is only the health probe.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the staff auth endpoints. Register, login,
// refresh and logout live under /v1/auth without middleware; /v1/me
// requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleStaff),
	)
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated pilot-facing routes.
// Pilots browse events, inspect open slots and submit registrations
// without an account; their identity is the VATSIM CID in the booking
// body. Extra middleware (rate limiting, response caching) is attached
// by the caller.
func RegisterPublic(e *echo.Echo, p *handler.PublicEventHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)
	g.GET("/events", p.ListEvents)
	g.GET("/events/:id", p.GetEvent)
	g.GET("/events/:id/slots", p.GetSlots)
	g.POST("/events/:id/registrations", p.SubmitRegistration)
}

// RegisterAdmin registers event and ban management under /v1/admin.
// Reads are open to both staff roles; every route that mutates state
// requires ADMIN.
func RegisterAdmin(e *echo.Echo, ev *handler.AdminEventHandler, bans *handler.AdminBanHandler, jwtSecret string) {
	read := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleStaff),
	)
	read.GET("/events/:id/registrations", ev.ListRegistrations)
	read.GET("/bans", bans.List)

	write := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	write.POST("/events", ev.CreateEvent)
	write.PATCH("/events/:id", ev.UpdateEvent)
	write.PATCH("/events/:id/status", ev.SetStatus)
	write.DELETE("/events/:id", ev.DeleteEvent)
	write.PATCH("/events/:id/registrations/:regID/status", ev.SetRegistrationStatus)
	write.POST("/bans", bans.Ban)
	write.DELETE("/bans/:id", bans.Unban)
}
