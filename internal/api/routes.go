package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Get("/health", h.Health)
		r.Post("/auth/link", h.RequestLink)
		r.Post("/auth/verify", h.Verify)

		// Protected routes (session required)
		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(h.auth))

			r.Get("/auth/session", h.Session)
			r.Post("/auth/signout", h.SignOut)

			r.Get("/library", h.Library)

			r.Get("/routines", h.ListRoutines)
			r.Post("/routines", h.CreateRoutine)
			r.Put("/routines/{id}", h.UpdateRoutine)
			r.Delete("/routines/{id}", h.DeleteRoutine)
			r.Post("/routines/{id}/duplicate", h.DuplicateRoutine)
			r.Post("/routines/{id}/apply", h.ApplyRoutine)

			r.Get("/tasks", h.Day)
			r.Post("/tasks", h.CreateTask)
			r.Delete("/tasks/{id}", h.DeleteTask)
			r.Post("/tasks/{id}/duplicate", h.DuplicateTask)
			r.Put("/tasks/{id}/completion", h.SetTaskCompletion)
			r.Put("/task-items/{id}/progress", h.RecordItemProgress)
		})
	})

	return r
}
