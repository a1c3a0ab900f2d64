// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"docforge/internal/documents"
	"docforge/internal/engine"
	"docforge/internal/middleware"
	"docforge/internal/models"
	"docforge/internal/templates"
	"docforge/internal/value"
)

// ListTemplates returns the templates matching the query filters
// (type, status, category, tenant_id, system, q).
func (a *API) ListTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.TemplateFilter{
		Type:     models.TemplateType(q.Get("type")),
		Status:   models.TemplateStatus(q.Get("status")),
		Category: q.Get("category"),
		TenantID: q.Get("tenant_id"),
		Search:   q.Get("q"),
	}
	if raw := q.Get("system"); raw != "" {
		system, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(w, r, "system must be true or false")
			return
		}
		f.IsSystem = &system
	}

	list, err := a.templates.ListTemplates(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*models.Template{}
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateTemplate stores a new DRAFT template. The caller's tenant is used
// when the body names none.
func (a *API) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var p templates.CreateParams
	if !decodeJSON(w, r, &p) {
		return
	}
	if msg := validateTemplate(p.Name, p.Description, &p.Content); msg != "" {
		badRequest(w, r, msg)
		return
	}
	if p.TenantID == "" {
		p.TenantID = middleware.Tenant(r.Context())
	}

	t, err := a.templates.Create(r.Context(), p, middleware.Actor(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// GetTemplate returns one template.
func (a *API) GetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := a.templates.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UpdateTemplate applies a partial update.
func (a *API) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var p templates.Patch
	if !decodeJSON(w, r, &p) {
		return
	}
	var name, description string
	if p.Name != nil {
		name = *p.Name
	}
	if p.Description != nil {
		description = *p.Description
	}
	if msg := validateTemplate(name, description, p.Content); msg != "" {
		badRequest(w, r, msg)
		return
	}

	t, err := a.templates.Update(r.Context(), chi.URLParam(r, "id"), p, middleware.Actor(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTemplate removes a user template and its history.
func (a *API) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := a.templates.Delete(r.Context(), chi.URLParam(r, "id"), middleware.Actor(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type publishRequest struct {
	Changelog string `json:"changelog"`
}

// PublishTemplate makes a template ACTIVE. The body is optional.
func (a *API) PublishTemplate(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	if msg := validateChangelog(req.Changelog); msg != "" {
		badRequest(w, r, msg)
		return
	}

	t, err := a.templates.Publish(r.Context(), chi.URLParam(r, "id"), req.Changelog, middleware.Actor(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ArchiveTemplate moves a template to ARCHIVED.
func (a *API) ArchiveTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := a.templates.Archive(r.Context(), chi.URLParam(r, "id"), middleware.Actor(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeprecateTemplate moves an ACTIVE template to DEPRECATED.
func (a *API) DeprecateTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := a.templates.Deprecate(r.Context(), chi.URLParam(r, "id"), middleware.Actor(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CloneTemplate copies any template into a new DRAFT.
func (a *API) CloneTemplate(w http.ResponseWriter, r *http.Request) {
	var p templates.CloneParams
	if !decodeJSON(w, r, &p) {
		return
	}
	if msg := validateTemplate(p.Name, "", nil); msg != "" {
		badRequest(w, r, msg)
		return
	}
	if p.TenantID == "" {
		p.TenantID = middleware.Tenant(r.Context())
	}

	t, err := a.templates.Clone(r.Context(), chi.URLParam(r, "id"), p, middleware.Actor(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// ListVersions returns a template's history in append order.
func (a *API) ListVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := a.templates.GetTemplateVersions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if versions == nil {
		versions = []*models.TemplateVersion{}
	}
	writeJSON(w, http.StatusOK, versions)
}

// RestoreVersion copies a historical version back onto the template.
func (a *API) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	version, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil || version < 1 {
		badRequest(w, r, "version must be a positive integer")
		return
	}

	t, err := a.templates.RestoreVersion(r.Context(), chi.URLParam(r, "id"), version, middleware.Actor(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// TemplatePlaceholders lists the value paths a template's content reads,
// so callers can build a value bag.
func (a *API) TemplatePlaceholders(w http.ResponseWriter, r *http.Request) {
	t, err := a.templates.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"placeholders": engine.Placeholders(t.Content),
		"variables":    t.Variables,
	})
}

// TemplateEvents returns the template's recent audit events.
func (a *API) TemplateEvents(w http.ResponseWriter, r *http.Request) {
	if a.audit == nil {
		writeError(w, r, errAuditDisabled)
		return
	}
	limit, err := intParam(r, "limit", defaultPageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	list, err := a.audit.ForTemplate(r.Context(), chi.URLParam(r, "id"), min(max(limit, 1), maxPageSize))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// renderRequest is the body of render and preview calls.
type renderRequest struct {
	Values   value.Value         `json:"values"`
	Format   models.OutputFormat `json:"format"`
	Language string              `json:"language"`
}

// RenderTemplate renders an ACTIVE template and stores the document.
func (a *API) RenderTemplate(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Format == "" {
		badRequest(w, r, "format is required")
		return
	}

	doc, err := a.documents.RenderDocument(r.Context(), chi.URLParam(r, "id"), req.Values,
		documents.RenderOptions{Format: req.Format, Language: req.Language},
		middleware.Actor(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// PreviewTemplate interprets a template in any status without storing
// anything. The rendered markup is returned as is.
func (a *API) PreviewTemplate(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Format == "" {
		req.Format = models.FormatHTML
	}

	out, err := a.documents.Preview(r.Context(), chi.URLParam(r, "id"), req.Values,
		documents.RenderOptions{Format: req.Format, Language: req.Language})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", req.Format.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out))
}
