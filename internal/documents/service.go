// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package documents renders templates into generated documents. A render
// checks the template (exists, ACTIVE, format declared), validates the
// value bag, interprets header, body and footer, and stores the result.
// Either a complete document is stored or nothing is.
package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"docforge/internal/engine"
	"docforge/internal/events"
	"docforge/internal/locale"
	"docforge/internal/models"
	"docforge/internal/storage"
	"docforge/internal/value"
)

// Templates is the part of the lifecycle manager the service reads from.
type Templates interface {
	GetTemplate(ctx context.Context, id string) (*models.Template, error)
	ListTemplates(ctx context.Context, f models.TemplateFilter) ([]*models.Template, error)
	RecordUsage(ctx context.Context, id string) error
}

// Validator checks a value bag against a template's variables.
type Validator interface {
	Validate(t *models.Template, bag value.Value) error
}

// Renderer interprets template content.
type Renderer interface {
	Render(c models.Content, bag value.Value, lang locale.Language) (string, error)
}

// MarkupConverter turns interpreted Markdown into HTML.
type MarkupConverter interface {
	ToHTML(source string) (string, error)
}

// Archive stores rendered markup for the external binary renderer.
type Archive interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	Delete(ctx context.Context, key string) error
}

// Cache is a read-through cache of stored documents.
type Cache interface {
	Get(ctx context.Context, id string) (*models.GeneratedDocument, bool)
	Set(ctx context.Context, d *models.GeneratedDocument)
	Invalidate(ctx context.Context, id string)
}

// Service is the rendering orchestrator.
type Service struct {
	templates Templates
	repo      Repository
	validator Validator
	renderer  Renderer
	sink      events.Sink

	markdown MarkupConverter
	archive  Archive
	cache    Cache
	ttl      time.Duration
	now      func() time.Time
	newID    func() string
}

// Option configures a Service.
type Option func(*Service)

// WithMarkdown enables Markdown-to-HTML conversion for markdown templates
// rendered as html.
func WithMarkdown(c MarkupConverter) Option {
	return func(s *Service) { s.markdown = c }
}

// WithArchive uploads every rendered document to a.
func WithArchive(a Archive) Option {
	return func(s *Service) { s.archive = a }
}

// WithCache reads documents through c.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithTTL sets the lifetime of generated documents. Zero keeps them until
// deleted.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithClock replaces time.Now as the source of timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService wires the orchestrator. A nil sink discards events.
func NewService(tmpl Templates, repo Repository, validator Validator, renderer Renderer, sink events.Sink, opts ...Option) *Service {
	if sink == nil {
		sink = events.Nop{}
	}
	s := &Service{
		templates: tmpl,
		repo:      repo,
		validator: validator,
		renderer:  renderer,
		sink:      sink,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RenderOptions selects the output of a render.
type RenderOptions struct {
	Format   models.OutputFormat `json:"format"`
	Language string              `json:"language"`
}

// RenderDocument renders template id with values and stores the result.
func (s *Service) RenderDocument(ctx context.Context, id string, values value.Value, opts RenderOptions, actor string) (*models.GeneratedDocument, error) {
	t, err := s.templates.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsActive() {
		return nil, fmt.Errorf("template %s is %s: %w", t.ID, t.Status, models.ErrNotActive)
	}
	if !t.SupportsFormat(opts.Format) {
		return nil, fmt.Errorf("template %s does not declare format %q: %w", t.ID, opts.Format, models.ErrUnsupportedFormat)
	}

	lang := resolveLanguage(opts.Language, t.Content.Language)
	content, err := s.interpret(t, values, opts.Format, lang)
	if err != nil {
		return nil, err
	}

	now := s.now()
	doc := &models.GeneratedDocument{
		ID:              s.newID(),
		TemplateID:      t.ID,
		TemplateVersion: t.Version,
		TemplateName:    t.Name,
		Format:          opts.Format,
		Content:         content,
		Values:          values,
		Language:        string(lang),
		Size:            int64(len(content)),
		GeneratedBy:     actor,
		TenantID:        t.TenantID,
		GeneratedAt:     now,
	}
	if s.ttl > 0 {
		exp := now.Add(s.ttl)
		doc.ExpiresAt = &exp
	}

	if err := s.repo.InsertDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}
	if err := s.templates.RecordUsage(ctx, t.ID); err != nil {
		slog.Warn("record usage failed", "template_id", t.ID, "error", err)
	}

	slog.Info("document generated",
		"document_id", doc.ID,
		"template_id", t.ID,
		"version", t.Version,
		"format", doc.Format,
		"language", doc.Language,
		"size", doc.Size,
	)
	s.sink.Emit(ctx, events.Event{
		Type:       events.DocumentGenerated,
		TemplateID: t.ID,
		DocumentID: doc.ID,
		Version:    t.Version,
		Actor:      actor,
		TenantID:   doc.TenantID,
		At:         now,
	})
	s.store(ctx, doc)
	return doc, nil
}

// Preview interprets template id in any status without storing a
// document or counting usage.
func (s *Service) Preview(ctx context.Context, id string, values value.Value, opts RenderOptions) (string, error) {
	t, err := s.templates.GetTemplate(ctx, id)
	if err != nil {
		return "", err
	}
	if opts.Format == "" {
		opts.Format = models.FormatHTML
	}
	return s.interpret(t, values, opts.Format, resolveLanguage(opts.Language, t.Content.Language))
}

// interpret validates, fills defaults and renders. The renderer is not
// called when validation fails.
func (s *Service) interpret(t *models.Template, values value.Value, format models.OutputFormat, lang locale.Language) (string, error) {
	bag := engine.ApplyDefaults(t.Variables, values)
	if err := s.validator.Validate(t, bag); err != nil {
		return "", err
	}

	content, err := s.renderer.Render(t.Content, bag, lang)
	if err != nil {
		return "", err
	}

	if t.Content.Markup == models.MarkupMarkdown && format == models.FormatHTML && s.markdown != nil {
		content, err = s.markdown.ToHTML(content)
		if err != nil {
			return "", fmt.Errorf("convert markdown: %w", err)
		}
	}
	slog.Debug("template rendered", "template_id", t.ID, "version", t.Version, "language", lang)
	return content, nil
}

// store pushes a new document to the cache and the archive. Both are
// best-effort.
func (s *Service) store(ctx context.Context, doc *models.GeneratedDocument) {
	if s.cache != nil {
		s.cache.Set(ctx, doc)
	}
	if s.archive != nil {
		key := storage.DocumentKey(doc.ID, doc.Format)
		if err := s.archive.Put(ctx, key, doc.Format.ContentType(), []byte(doc.Content)); err != nil {
			slog.Warn("document archive failed", "document_id", doc.ID, "key", key, "error", err)
		}
	}
}

// GetDocument returns a stored document, or ErrNotFound.
func (s *Service) GetDocument(ctx context.Context, id string) (*models.GeneratedDocument, error) {
	if s.cache != nil {
		if d, ok := s.cache.Get(ctx, id); ok {
			return d, nil
		}
	}

	d, err := s.repo.FindDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	if d == nil {
		return nil, fmt.Errorf("document %s: %w", id, models.ErrNotFound)
	}
	if s.cache != nil {
		s.cache.Set(ctx, d)
	}
	return d, nil
}

// ListDocuments returns the documents matching f, newest first.
func (s *Service) ListDocuments(ctx context.Context, f models.DocumentFilter) ([]*models.GeneratedDocument, error) {
	list, err := s.repo.ListDocuments(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return list, nil
}

// DeleteDocument removes a stored document together with its cache entry
// and archived copy.
func (s *Service) DeleteDocument(ctx context.Context, id, actor string) error {
	d, err := s.repo.FindDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("find document: %w", err)
	}
	if d == nil {
		return fmt.Errorf("document %s: %w", id, models.ErrNotFound)
	}
	return s.remove(ctx, d, actor)
}

func (s *Service) remove(ctx context.Context, d *models.GeneratedDocument, actor string) error {
	ok, err := s.repo.DeleteDocument(ctx, d.ID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if !ok {
		return fmt.Errorf("document %s: %w", d.ID, models.ErrNotFound)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, d.ID)
	}
	if s.archive != nil {
		key := storage.DocumentKey(d.ID, d.Format)
		if err := s.archive.Delete(ctx, key); err != nil {
			slog.Warn("document archive delete failed", "document_id", d.ID, "key", key, "error", err)
		}
	}

	slog.Info("document deleted", "document_id", d.ID, "template_id", d.TemplateID, "actor", actor)
	s.sink.Emit(ctx, events.Event{
		Type:       events.DocumentDeleted,
		TemplateID: d.TemplateID,
		DocumentID: d.ID,
		Version:    d.TemplateVersion,
		Actor:      actor,
		TenantID:   d.TenantID,
		At:         s.now(),
	})
	return nil
}

// purgeBatch bounds how many expired documents one query fetches.
const purgeBatch = 100

// PurgeExpired deletes every document whose expiry has passed and returns
// how many were removed.
func (s *Service) PurgeExpired(ctx context.Context) (int, error) {
	purged := 0
	for {
		expired, err := s.repo.ListExpired(ctx, s.now(), purgeBatch)
		if err != nil {
			return purged, fmt.Errorf("list expired documents: %w", err)
		}
		if len(expired) == 0 {
			break
		}
		for _, d := range expired {
			if err := s.remove(ctx, d, "system"); err != nil {
				if errors.Is(err, models.ErrNotFound) {
					continue
				}
				return purged, err
			}
			purged++
		}
		if len(expired) < purgeBatch {
			break
		}
	}

	if purged > 0 {
		slog.Info("expired documents purged", "count", purged)
	}
	return purged, nil
}
