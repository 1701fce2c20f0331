/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client IP from proxy headers
  3. Logger:     Request logging
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests from the order-management UI
  6. JSON:       Responses default to application/json (render)

ROUTE GROUPS:
  /api/sla/*            Deadline, status, working minutes
  /api/developers/*     Calendar and leave store (dev glue)
  /api/scenarios/*      Demo scenarios
  /api/health           Liveness

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// DefaultAllowedOrigins is used when no origins are configured.
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured. Credentials
// are only allowed for an explicit origin list, never with "*".
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}
	credentials := !slices.Contains(allowedOrigins, "*")

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: credentials,
	}))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			render.JSON(w, r, map[string]string{"status": "ok"})
		})

		// SLA routes
		r.Route("/sla", func(r chi.Router) {
			r.Post("/deadline", h.ComputeDeadline)
			r.Post("/status", h.Status)
			r.Post("/working-minutes", h.WorkingMinutes)
		})

		// Developer calendar and leave routes
		r.Route("/developers/{id}", func(r chi.Router) {
			r.Get("/calendar", h.GetCalendar)
			r.Put("/calendar", h.PutCalendar)
			r.Get("/leaves", h.ListLeaves)
			r.Post("/leaves", h.CreateLeave)
			r.Post("/leaves/{leaveID}/approve", h.ApproveLeave)
			r.Post("/leaves/{leaveID}/reject", h.RejectLeave)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
