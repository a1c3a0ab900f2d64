// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"docforge/internal/middleware"
	"docforge/internal/models"
	"docforge/internal/templates"
)

// ListCategories returns all template categories.
func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := a.catalog.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*models.Category{}
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateCategory adds a template category.
func (a *API) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var p templates.CategoryParams
	if !decodeJSON(w, r, &p) {
		return
	}
	c, err := a.catalog.Create(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Stats returns template and document statistics for the caller's tenant,
// or across all tenants when the request carries none.
func (a *API) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := a.documents.Stats(r.Context(), middleware.Tenant(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
