// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"docforge/internal/middleware"
	"docforge/internal/models"
	"docforge/internal/storage"
)

var (
	errArchiveDisabled = fmt.Errorf("document archive is not configured: %w", models.ErrNotFound)
	errAuditDisabled   = fmt.Errorf("event log is not configured: %w", models.ErrNotFound)
)

// ListDocuments returns generated documents, newest first. Query filters:
// template_id, generated_by, tenant_id, from, to (RFC 3339), limit, offset.
func (a *API) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.DocumentFilter{
		TemplateID:  q.Get("template_id"),
		GeneratedBy: q.Get("generated_by"),
		TenantID:    q.Get("tenant_id"),
	}

	var err error
	if f.Limit, err = intParam(r, "limit", defaultPageSize); err != nil {
		writeError(w, r, err)
		return
	}
	f.Limit = min(max(f.Limit, 1), maxPageSize)
	if f.Offset, err = intParam(r, "offset", 0); err != nil {
		writeError(w, r, err)
		return
	}
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(w, r, p.name+" must be an RFC 3339 timestamp")
			return
		}
		*p.dst = &ts
	}

	list, err := a.documents.ListDocuments(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*models.GeneratedDocument{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetDocument returns a stored document with its metadata.
func (a *API) GetDocument(w http.ResponseWriter, r *http.Request) {
	d, err := a.documents.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// DocumentContent returns only the rendered markup, typed by format.
func (a *API) DocumentContent(w http.ResponseWriter, r *http.Request) {
	d, err := a.documents.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", d.Format.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(d.Content))
}

// DeleteDocument removes a stored document.
func (a *API) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := a.documents.DeleteDocument(r.Context(), chi.URLParam(r, "id"), middleware.Actor(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DocumentArchiveURL returns a short-lived signed link to the archived
// markup, for the external PDF/DOCX renderer.
func (a *API) DocumentArchiveURL(w http.ResponseWriter, r *http.Request) {
	if a.archive == nil {
		writeError(w, r, errArchiveDisabled)
		return
	}
	d, err := a.documents.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	url, err := a.archive.PresignedURL(r.Context(), storage.DocumentKey(d.ID, d.Format), archiveURLTTL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"url":        url,
		"expires_in": int(archiveURLTTL.Seconds()),
	})
}
