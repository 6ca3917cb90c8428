package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/frahmantamala/leave-management/internal/transport/middleware"
	"github.com/frahmantamala/leave-management/internal/transport/swagger"
	"github.com/frahmantamala/leave-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// APIPrefix is where the REST surface is mounted.
const APIPrefix = "/api"

type Handlers struct {
	Health       *HealthHandler
	Auth         *auth.Middleware
	User         *user.Handler
	Leave        *leave.Handler
	Notification *notification.Handler
}

type Options struct {
	AllowedOrigins []string
	LoginLimiter   *middleware.RateLimiter
	Validator      *middleware.OpenAPIValidator
	OpenAPISpec    []byte
}

func RegisterAllRoutes(router chi.Router, h Handlers, opts Options, logger *slog.Logger) {
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware(logger))

	if len(opts.OpenAPISpec) > 0 {
		spec := opts.OpenAPISpec
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(spec)
		})
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route(APIPrefix, func(r chi.Router) {
		if opts.Validator != nil {
			r.Use(opts.Validator.Middleware)
		}

		r.Get("/ping", h.Health.Ping)
		r.Get("/health", h.Health.Health)

		r.Group(func(lr chi.Router) {
			if opts.LoginLimiter != nil {
				lr.Use(opts.LoginLimiter.Middleware)
			}
			lr.Post("/auth/login", h.User.Login)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.Authenticate)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/", h.User.ListUsers)
				ur.With(h.Auth.RequireRole(string(user.RoleSupervisor))).Post("/", h.User.RegisterUser)
				ur.Get("/{id}", h.User.GetUser)
				ur.Patch("/{id}/password", h.User.ChangePassword)
			})

			pr.Route("/leave-requests", func(lr chi.Router) {
				lr.Get("/", h.Leave.ListLeaveRequests)
				lr.Post("/", h.Leave.CreateLeaveRequest)
				lr.Get("/pending", h.Leave.ListPendingLeaveRequests)
				lr.Get("/user/{id}", h.Leave.ListEmployeeLeaveRequests)
				lr.Get("/{id}", h.Leave.GetLeaveRequest)
				lr.With(h.Auth.RequireRole(string(user.RoleSupervisor))).Patch("/{id}/status", h.Leave.UpdateLeaveRequestStatus)
				lr.Patch("/{id}/signature", h.Leave.AddEmployeeSignature)
			})

			pr.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", h.Notification.ListNotifications)
				nr.Post("/", h.Notification.SendNotification)
				nr.Get("/unread-count", h.Notification.UnreadCount)
				nr.Patch("/{id}/read", h.Notification.MarkAsRead)
			})
		})
	})
}
