// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package templates owns template records: their DRAFT/ACTIVE/ARCHIVED/
// DEPRECATED state machine, append-only version history, cloning and
// restore-to-version. Mutations of a single template are serialized by a
// per-id lock; reads go straight to the repository, which returns a
// consistent copy of the stored record.
package templates

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"docforge/internal/events"
	"docforge/internal/models"
)

const (
	changelogInitial  = "Initial version"
	changelogRestored = "Restored from version %d"
	changelogCloned   = "Cloned from %s v%d"
)

// Manager implements the template lifecycle on top of a Repository.
type Manager struct {
	repo  Repository
	sink  events.Sink
	locks *keyedLocks
	now   func() time.Time
	newID func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now as the source of timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// NewManager creates a Manager. A nil sink discards events.
func NewManager(repo Repository, sink events.Sink, opts ...Option) *Manager {
	if sink == nil {
		sink = events.Nop{}
	}
	m := &Manager{
		repo:  repo,
		sink:  sink,
		locks: newKeyedLocks(),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateParams describes a new template.
type CreateParams struct {
	Name          string                `json:"name"`
	NameRO        string                `json:"name_ro"`
	Description   string                `json:"description"`
	Type          models.TemplateType   `json:"type"`
	Content       models.Content        `json:"content"`
	Variables     []models.Variable     `json:"variables"`
	Sections      []models.Section      `json:"sections"`
	Styling       models.Styling        `json:"styling"`
	OutputFormats []models.OutputFormat `json:"output_formats"`
	Metadata      models.Metadata       `json:"metadata"`
	TenantID      string                `json:"tenant_id"`
}

// Create stores a new DRAFT template at version 1 with an "Initial version"
// history entry.
func (m *Manager) Create(ctx context.Context, p CreateParams, actor string) (*models.Template, error) {
	now := m.now()
	t := &models.Template{
		ID:            m.newID(),
		Name:          p.Name,
		NameRO:        p.NameRO,
		Description:   p.Description,
		Type:          p.Type,
		Status:        models.TemplateStatusDraft,
		Version:       1,
		Content:       p.Content,
		Variables:     p.Variables,
		Sections:      p.Sections,
		Styling:       p.Styling,
		OutputFormats: p.OutputFormats,
		Metadata:      p.Metadata,
		CreatedBy:     actor,
		TenantID:      p.TenantID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	t.Metadata.UsageCount = 0
	normalize(t)
	if err := checkDefinition(t); err != nil {
		return nil, err
	}

	if err := m.repo.InsertTemplate(ctx, t, t.Snapshot(m.newID(), changelogInitial, actor, now)); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}

	slog.Info("template created", "template_id", t.ID, "type", t.Type, "actor", actor)
	m.emit(ctx, events.TemplateCreated, t, actor)
	return t, nil
}

// Patch lists the mutable fields of a template. Nil fields are left
// unchanged. Identity, ownership, timestamps and the system flag are not
// patchable.
type Patch struct {
	Name          *string                `json:"name"`
	NameRO        *string                `json:"name_ro"`
	Description   *string                `json:"description"`
	Type          *models.TemplateType   `json:"type"`
	Content       *models.Content        `json:"content"`
	Variables     *[]models.Variable     `json:"variables"`
	Sections      *[]models.Section      `json:"sections"`
	Styling       *models.Styling        `json:"styling"`
	OutputFormats *[]models.OutputFormat `json:"output_formats"`
	Category      *string                `json:"category"`
	Tags          *[]string              `json:"tags"`
	IsCompliant   *bool                  `json:"is_compliant"`
}

func (p Patch) apply(t *models.Template) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.NameRO != nil {
		t.NameRO = *p.NameRO
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Content != nil {
		t.Content = *p.Content
	}
	if p.Variables != nil {
		t.Variables = *p.Variables
	}
	if p.Sections != nil {
		t.Sections = *p.Sections
	}
	if p.Styling != nil {
		t.Styling = *p.Styling
	}
	if p.OutputFormats != nil {
		t.OutputFormats = *p.OutputFormats
	}
	if p.Category != nil {
		t.Metadata.Category = *p.Category
	}
	if p.Tags != nil {
		t.Metadata.Tags = *p.Tags
	}
	if p.IsCompliant != nil {
		t.Metadata.IsCompliant = *p.IsCompliant
	}
}

// Update applies p to a DRAFT, ACTIVE or DEPRECATED user template. The
// version and history are not touched; publish to record a new version.
func (m *Manager) Update(ctx context.Context, id string, p Patch, actor string) (*models.Template, error) {
	return m.mutate(ctx, id, actor, func(t *models.Template) (change, error) {
		if err := requireEditable(t, "update"); err != nil {
			return change{}, err
		}
		p.apply(t)
		normalize(t)
		if err := checkDefinition(t); err != nil {
			return change{}, err
		}
		t.UpdatedAt = m.now()
		return change{event: events.TemplateUpdated}, nil
	})
}

// Publish makes a template ACTIVE. Re-publishing an ACTIVE template bumps
// its version first; the first publish of a DRAFT keeps version 1. Either
// way a history entry is appended for the resulting version.
func (m *Manager) Publish(ctx context.Context, id, changelog, actor string) (*models.Template, error) {
	return m.mutate(ctx, id, actor, func(t *models.Template) (change, error) {
		if err := requireEditable(t, "publish"); err != nil {
			return change{}, err
		}
		if t.Status == models.TemplateStatusActive {
			t.Version++
		}
		now := m.now()
		t.Status = models.TemplateStatusActive
		t.PublishedAt = &now
		t.UpdatedAt = now
		return change{
			event:   events.TemplatePublished,
			version: t.Snapshot(m.newID(), changelog, actor, now),
		}, nil
	})
}

// Archive moves a user template to ARCHIVED. Archived templates stay
// readable and cloneable. Archiving twice is a no-op.
func (m *Manager) Archive(ctx context.Context, id, actor string) (*models.Template, error) {
	return m.mutate(ctx, id, actor, func(t *models.Template) (change, error) {
		if t.IsSystem {
			return change{}, forbidden("archive", "system template")
		}
		if t.Status == models.TemplateStatusArchived {
			return change{}, nil
		}
		t.Status = models.TemplateStatusArchived
		t.UpdatedAt = m.now()
		return change{event: events.TemplateArchived}, nil
	})
}

// Deprecate moves an ACTIVE user template to DEPRECATED. It can no longer
// be rendered until it is published again.
func (m *Manager) Deprecate(ctx context.Context, id, actor string) (*models.Template, error) {
	return m.mutate(ctx, id, actor, func(t *models.Template) (change, error) {
		if t.IsSystem {
			return change{}, forbidden("deprecate", "system template")
		}
		if t.Status != models.TemplateStatusActive {
			return change{}, forbidden("deprecate", string(t.Status)+" template")
		}
		t.Status = models.TemplateStatusDeprecated
		t.UpdatedAt = m.now()
		return change{event: events.TemplateDeprecated}, nil
	})
}

// Delete removes a user template and its history. Generated documents
// that reference it are kept.
func (m *Manager) Delete(ctx context.Context, id, actor string) error {
	unlock := m.locks.lock(id)
	defer unlock()

	t, err := m.load(ctx, id)
	if err != nil {
		return err
	}
	if t.IsSystem {
		return forbidden("delete", "system template")
	}

	ok, err := m.repo.DeleteTemplate(ctx, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if !ok {
		return fmt.Errorf("template %s: %w", id, models.ErrNotFound)
	}

	slog.Info("template deleted", "template_id", id, "actor", actor)
	m.emit(ctx, events.TemplateDeleted, t, actor)
	return nil
}

// CloneParams names the copy produced by Clone. An empty TenantID keeps
// the source template's tenant.
type CloneParams struct {
	Name     string `json:"name"`
	NameRO   string `json:"name_ro"`
	TenantID string `json:"tenant_id"`
}

// Clone derives a new DRAFT user template at version 1 from any source,
// system or not, in any status.
func (m *Manager) Clone(ctx context.Context, sourceID string, p CloneParams, actor string) (*models.Template, error) {
	src, err := m.load(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	t := src.Clone()
	t.ID = m.newID()
	t.Name = p.Name
	t.NameRO = p.NameRO
	t.Status = models.TemplateStatusDraft
	t.Version = 1
	t.IsSystem = false
	t.CreatedBy = actor
	t.PublishedAt = nil
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Metadata.UsageCount = 0
	if p.TenantID != "" {
		t.TenantID = p.TenantID
	}
	normalize(t)
	if err := checkDefinition(t); err != nil {
		return nil, err
	}

	changelog := fmt.Sprintf(changelogCloned, src.Name, src.Version)
	if err := m.repo.InsertTemplate(ctx, t, t.Snapshot(m.newID(), changelog, actor, now)); err != nil {
		return nil, fmt.Errorf("clone template: %w", err)
	}

	slog.Info("template cloned", "template_id", t.ID, "source_id", src.ID, "source_version", src.Version, "actor", actor)
	m.emit(ctx, events.TemplateCreated, t, actor)
	return t, nil
}

// RestoreVersion copies the content, variables and sections recorded for
// version onto the template, bumps its version and appends a "Restored
// from version N" entry. When a version number appears more than once in
// history the latest entry wins. An unknown version leaves the template
// untouched.
func (m *Manager) RestoreVersion(ctx context.Context, id string, version int, actor string) (*models.Template, error) {
	return m.mutate(ctx, id, actor, func(t *models.Template) (change, error) {
		if err := requireEditable(t, "restore"); err != nil {
			return change{}, err
		}

		history, err := m.repo.ListVersions(ctx, id)
		if err != nil {
			return change{}, fmt.Errorf("list template versions: %w", err)
		}
		var snap *models.TemplateVersion
		for _, v := range history {
			if v.Version == version {
				snap = v
			}
		}
		if snap == nil {
			return change{}, fmt.Errorf("template %s version %d: %w", id, version, models.ErrNotFound)
		}

		now := m.now()
		snap.ApplyTo(t)
		t.Version++
		t.UpdatedAt = now
		return change{
			event:   events.TemplateRestored,
			version: t.Snapshot(m.newID(), fmt.Sprintf(changelogRestored, version), actor, now),
		}, nil
	})
}

// GetTemplate returns a snapshot of the template, or ErrNotFound.
func (m *Manager) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	return m.load(ctx, id)
}

// ListTemplates returns the templates matching f.
func (m *Manager) ListTemplates(ctx context.Context, f models.TemplateFilter) ([]*models.Template, error) {
	list, err := m.repo.ListTemplates(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return list, nil
}

// GetTemplateVersions returns a template's history in append order.
func (m *Manager) GetTemplateVersions(ctx context.Context, id string) ([]*models.TemplateVersion, error) {
	if _, err := m.load(ctx, id); err != nil {
		return nil, err
	}
	history, err := m.repo.ListVersions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list template versions: %w", err)
	}
	return history, nil
}

// RecordUsage increments the usage counter after a successful render.
func (m *Manager) RecordUsage(ctx context.Context, id string) error {
	if err := m.repo.IncrementUsage(ctx, id); err != nil {
		return fmt.Errorf("record template usage: %w", err)
	}
	return nil
}

// change describes what a mutation did. A zero change means nothing needs
// saving.
type change struct {
	event   events.Type
	version *models.TemplateVersion
}

// mutate loads a template under its lock, lets fn change it and saves the
// result with the history entry fn returns, if any. Nothing is written
// and no event is emitted when fn fails.
func (m *Manager) mutate(ctx context.Context, id, actor string, fn func(t *models.Template) (change, error)) (*models.Template, error) {
	unlock := m.locks.lock(id)
	defer unlock()

	t, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}

	c, err := fn(t)
	if err != nil {
		return nil, err
	}
	if c.event == "" {
		return t, nil
	}

	if err := m.repo.SaveTemplate(ctx, t, c.version); err != nil {
		return nil, fmt.Errorf("save template: %w", err)
	}

	slog.Info("template changed",
		"event", c.event,
		"template_id", t.ID,
		"version", t.Version,
		"status", t.Status,
		"actor", actor,
	)
	m.emit(ctx, c.event, t, actor)
	return t, nil
}

func (m *Manager) load(ctx context.Context, id string) (*models.Template, error) {
	t, err := m.repo.FindTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find template: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("template %s: %w", id, models.ErrNotFound)
	}
	return t, nil
}

func (m *Manager) emit(ctx context.Context, typ events.Type, t *models.Template, actor string) {
	m.sink.Emit(ctx, events.Event{
		Type:       typ,
		TemplateID: t.ID,
		Version:    t.Version,
		Actor:      actor,
		TenantID:   t.TenantID,
		At:         m.now(),
	})
}

// requireEditable rejects changes to system and archived templates.
func requireEditable(t *models.Template, op string) error {
	if t.IsSystem {
		return forbidden(op, "system template")
	}
	if t.Status == models.TemplateStatusArchived {
		return forbidden(op, "archived template")
	}
	return nil
}

func forbidden(op, what string) error {
	return fmt.Errorf("cannot %s %s: %w", op, what, models.ErrForbidden)
}
