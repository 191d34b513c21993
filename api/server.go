/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer between URLs and handlers.

MIDDLEWARE STACK:
  1. Logger:     request logging
  2. Recoverer:  panic recovery (500 instead of crash)
  3. RequestID:  unique ID per request for tracing
  4. CORS:       cross-origin requests for the dashboard frontend

ROUTE GROUPS:
  /api/machines/*               machine config + derived schedule reads
  /api/employees/*              employee reads + effective role
  /api/assignments/*            labor assignment writes
  /api/supervisor-assignments   supervisor duty writes
  /api/overrides                role override writes
  /api/supervisor-coverage      advisory coverage report
  /api/scenarios/*              demo seed data

SECURITY NOTE:
  No authentication middleware. The capability check in handlers.go is
  an honor-system guard for the demo surface; real auth sits in front
  of this service.

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/machines", func(r chi.Router) {
			r.Get("/", h.ListMachines)
			r.Get("/{id}", h.GetMachine)
			r.Get("/{id}/crews", h.ListCrews)
			r.Get("/{id}/preview", h.GetPreview)
			r.Get("/{id}/staffing", h.GetStaffing)
			r.Get("/{id}/coverage", h.GetCoverage)
			r.Get("/{id}/rules", h.GetRuleFindings)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Get("/{id}/effective-role", h.GetEffectiveRole)
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Post("/", h.CreateAssignment)
			r.Post("/{id}/transition", h.TransitionAssignment)
		})

		r.Post("/supervisor-assignments", h.CreateSupervisorAssignment)
		r.Post("/overrides", h.CreateOverride)
		r.Get("/supervisor-coverage", h.GetSupervisorCoverage)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
