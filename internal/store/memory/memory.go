// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package memory is an in-process record store for templates, their
// history, generated documents and categories. Every read returns a copy,
// so callers never observe later writes through a value they hold.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"docforge/internal/models"
)

// Store keeps all records in maps guarded by one RWMutex.
type Store struct {
	mu         sync.RWMutex
	templates  map[string]*models.Template
	versions   map[string][]*models.TemplateVersion
	documents  map[string]*models.GeneratedDocument
	categories map[string]*models.Category
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		templates:  make(map[string]*models.Template),
		versions:   make(map[string][]*models.TemplateVersion),
		documents:  make(map[string]*models.GeneratedDocument),
		categories: make(map[string]*models.Category),
	}
}

// --------------------------------------------------------------------------
// Templates
// --------------------------------------------------------------------------

// InsertTemplate stores t and its first history entry.
func (s *Store) InsertTemplate(_ context.Context, t *models.Template, first *models.TemplateVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[t.ID]; ok {
		return fmt.Errorf("insert template %s: duplicate id", t.ID)
	}
	s.templates[t.ID] = t.Clone()
	if first != nil {
		s.versions[t.ID] = []*models.TemplateVersion{first.Clone()}
	}
	return nil
}

// SaveTemplate overwrites t and appends v when non-nil. The usage counter
// is owned by IncrementUsage and is never overwritten here.
func (s *Store) SaveTemplate(_ context.Context, t *models.Template, v *models.TemplateVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.templates[t.ID]
	if !ok {
		return fmt.Errorf("save template %s: %w", t.ID, models.ErrNotFound)
	}
	next := t.Clone()
	next.Metadata.UsageCount = cur.Metadata.UsageCount
	s.templates[t.ID] = next
	if v != nil {
		s.versions[t.ID] = append(s.versions[t.ID], v.Clone())
	}
	return nil
}

// FindTemplate returns a copy of the template, or nil.
func (s *Store) FindTemplate(_ context.Context, id string) (*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, nil
	}
	return t.Clone(), nil
}

// ListTemplates returns copies of the matching templates ordered by type,
// then name.
func (s *Store) ListTemplates(_ context.Context, f models.TemplateFilter) ([]*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Template
	for _, t := range s.templates {
		if f.Match(t) {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteTemplate removes the template and its history.
func (s *Store) DeleteTemplate(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[id]; !ok {
		return false, nil
	}
	delete(s.templates, id)
	delete(s.versions, id)
	return true, nil
}

// ListVersions returns copies of the history in append order.
func (s *Store) ListVersions(_ context.Context, templateID string) ([]*models.TemplateVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.versions[templateID]
	out := make([]*models.TemplateVersion, len(history))
	for i, v := range history {
		out[i] = v.Clone()
	}
	return out, nil
}

// IncrementUsage adds one to the template's usage counter.
func (s *Store) IncrementUsage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[id]
	if !ok {
		return fmt.Errorf("increment usage %s: %w", id, models.ErrNotFound)
	}
	t.Metadata.UsageCount++
	return nil
}

// --------------------------------------------------------------------------
// Generated documents
// --------------------------------------------------------------------------

// InsertDocument stores d.
func (s *Store) InsertDocument(_ context.Context, d *models.GeneratedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[d.ID]; ok {
		return fmt.Errorf("insert document %s: duplicate id", d.ID)
	}
	c := *d
	s.documents[d.ID] = &c
	return nil
}

// FindDocument returns a copy of the document, or nil.
func (s *Store) FindDocument(_ context.Context, id string) (*models.GeneratedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.documents[id]
	if !ok {
		return nil, nil
	}
	c := *d
	return &c, nil
}

// ListDocuments returns matching documents, newest first.
func (s *Store) ListDocuments(_ context.Context, f models.DocumentFilter) ([]*models.GeneratedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.GeneratedDocument
	for _, d := range s.documents {
		if f.Match(d) {
			c := *d
			out = append(out, &c)
		}
	}
	sortDocuments(out)
	return paginate(out, f.Limit, f.Offset), nil
}

// DeleteDocument removes the document.
func (s *Store) DeleteDocument(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return false, nil
	}
	delete(s.documents, id)
	return true, nil
}

// ListExpired returns up to limit documents expired at now, oldest expiry
// first.
func (s *Store) ListExpired(_ context.Context, now time.Time, limit int) ([]*models.GeneratedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.GeneratedDocument
	for _, d := range s.documents {
		if d.Expired(now) {
			c := *d
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(*out[j].ExpiresAt) })
	return paginate(out, limit, 0), nil
}

// CountDocumentsByFormat counts documents per format.
func (s *Store) CountDocumentsByFormat(_ context.Context, tenantID string) (map[models.OutputFormat]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.OutputFormat]int)
	for _, d := range s.documents {
		if tenantID == "" || d.TenantID == tenantID {
			counts[d.Format]++
		}
	}
	return counts, nil
}

func sortDocuments(docs []*models.GeneratedDocument) {
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].GeneratedAt.Equal(docs[j].GeneratedAt) {
			return docs[i].GeneratedAt.After(docs[j].GeneratedAt)
		}
		return docs[i].ID < docs[j].ID
	})
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// --------------------------------------------------------------------------
// Categories
// --------------------------------------------------------------------------

// InsertCategory stores c.
func (s *Store) InsertCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

// FindCategoryBySlug returns a copy of the category, or nil.
func (s *Store) FindCategoryBySlug(_ context.Context, slug string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if strings.EqualFold(c.Slug, slug) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

// ListCategories returns all categories by sort order, then name.
func (s *Store) ListCategories(_ context.Context) ([]*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
