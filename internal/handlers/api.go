// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers exposes the template manager and the rendering
// orchestrator as a JSON HTTP API. Handlers decode requests, call the
// library and map its error kinds to status codes.
package handlers

import (
	"context"
	"time"

	"docforge/internal/documents"
	"docforge/internal/events"
	"docforge/internal/templates"
)

// ArchiveLinker signs download links for archived documents.
type ArchiveLinker interface {
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// AuditLog reads back recorded events.
type AuditLog interface {
	ForTemplate(ctx context.Context, templateID string, limit int) ([]events.Event, error)
}

// archiveURLTTL is the lifetime of signed archive links.
const archiveURLTTL = 15 * time.Minute

// API groups the HTTP handlers and their dependencies.
type API struct {
	templates *templates.Manager
	documents *documents.Service
	catalog   *templates.Catalog
	archive   ArchiveLinker
	audit     AuditLog
}

// Option configures optional API dependencies.
type Option func(*API)

// WithArchive enables the archive-url endpoint.
func WithArchive(a ArchiveLinker) Option {
	return func(api *API) { api.archive = a }
}

// WithAuditLog enables the template events endpoint.
func WithAuditLog(l AuditLog) Option {
	return func(api *API) { api.audit = l }
}

// NewAPI creates the handler group.
func NewAPI(tm *templates.Manager, docs *documents.Service, catalog *templates.Catalog, opts ...Option) *API {
	api := &API{templates: tm, documents: docs, catalog: catalog}
	for _, opt := range opts {
		opt(api)
	}
	return api
}
