// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"chrono/internal/delivery/http/middleware"
	"chrono/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler        *handler.AuthHandler
	AppointmentHandler *handler.AppointmentHandler
	HistoryHandler     *handler.HistoryHandler
	SessionMiddleware  *middleware.SessionMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler        *handler.AuthHandler
	appointmentHandler *handler.AppointmentHandler
	historyHandler     *handler.HistoryHandler
	sessionMiddleware  *middleware.SessionMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:        params.AuthHandler,
		appointmentHandler: params.AppointmentHandler,
		historyHandler:     params.HistoryHandler,
		sessionMiddleware:  params.SessionMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	api := e.Group("/api")
	api.Use(r.sessionMiddleware.BindToken)

	// Auth routes. Register and login are open; logout acts on the presented token.
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/logout", r.authHandler.Logout)
	}

	// Appointment routes. Authorization is resolved per operation inside the
	// use case layer, never here.
	appointmentGroup := api.Group("/appointments")
	{
		appointmentGroup.POST("", r.appointmentHandler.Create)
		appointmentGroup.GET("/:id", r.appointmentHandler.Get)
		appointmentGroup.PATCH("/:id", r.appointmentHandler.Update)
		appointmentGroup.DELETE("/:id", r.appointmentHandler.Delete)

		appointmentGroup.POST("/:id/signups", r.appointmentHandler.Join)
		appointmentGroup.DELETE("/:id/signups", r.appointmentHandler.Leave)

		appointmentGroup.GET("/:id/history", r.historyHandler.History)
		appointmentGroup.GET("/:id/state", r.historyHandler.AppointmentState)
		appointmentGroup.POST("/:id/rollback", r.historyHandler.Rollback)
	}

	// Signup time travel.
	signupGroup := api.Group("/signups")
	{
		signupGroup.GET("/:id/state", r.historyHandler.SignupState)
	}
}
