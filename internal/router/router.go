// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// docforge API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"docforge/internal/handlers"
	"docforge/internal/middleware"
)

// New creates the chi router. A nil limiter leaves render and preview
// unthrottled.
func New(api *handlers.API, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.Identity)
	r.Use(middleware.Logger)

	r.Get("/health", healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", api.ListTemplates)
			r.Post("/", api.CreateTemplate)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", api.GetTemplate)
				r.Patch("/", api.UpdateTemplate)
				r.Delete("/", api.DeleteTemplate)

				r.Post("/publish", api.PublishTemplate)
				r.Post("/archive", api.ArchiveTemplate)
				r.Post("/deprecate", api.DeprecateTemplate)
				r.Post("/clone", api.CloneTemplate)

				r.Get("/versions", api.ListVersions)
				r.Post("/versions/{version}/restore", api.RestoreVersion)
				r.Get("/placeholders", api.TemplatePlaceholders)
				r.Get("/events", api.TemplateEvents)

				// Interpretation is the expensive path.
				r.Group(func(r chi.Router) {
					if limiter != nil {
						r.Use(limiter.Middleware)
					}
					r.Post("/preview", api.PreviewTemplate)
					r.Post("/render", api.RenderTemplate)
				})
			})
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", api.ListDocuments)
			r.Get("/{id}", api.GetDocument)
			r.Delete("/{id}", api.DeleteDocument)
			r.Get("/{id}/content", api.DocumentContent)
			r.Get("/{id}/archive-url", api.DocumentArchiveURL)
		})

		r.Get("/categories", api.ListCategories)
		r.Post("/categories", api.CreateCategory)
		r.Get("/stats", api.Stats)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
