// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package templates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docforge/internal/models"
	"docforge/internal/slug"
)

// CategoryRepository persists template categories. FindCategoryBySlug
// returns (nil, nil) when the slug is unknown.
type CategoryRepository interface {
	InsertCategory(ctx context.Context, c *models.Category) error
	FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
}

// Catalog manages the flat list of template categories.
type Catalog struct {
	repo CategoryRepository
}

// NewCatalog creates a Catalog backed by repo.
func NewCatalog(repo CategoryRepository) *Catalog {
	return &Catalog{repo: repo}
}

// CategoryParams describes a new category. An empty Slug is derived from
// Name.
type CategoryParams struct {
	Name      string `json:"name"`
	NameRO    string `json:"name_ro"`
	Slug      string `json:"slug"`
	Icon      string `json:"icon"`
	SortOrder int    `json:"sort_order"`
}

// Create stores a new category. Slugs are unique.
func (c *Catalog) Create(ctx context.Context, p CategoryParams) (*models.Category, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, invalid("category name is required")
	}
	s := p.Slug
	if s == "" {
		s = name
	}
	s = slug.Generate(s)
	if s == "" {
		return nil, invalid("category slug is empty")
	}

	existing, err := c.repo.FindCategoryBySlug(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if existing != nil {
		return nil, invalid("category %q already exists", s)
	}

	cat := &models.Category{
		ID:        uuid.NewString(),
		Name:      name,
		NameRO:    strings.TrimSpace(p.NameRO),
		Slug:      s,
		Icon:      p.Icon,
		SortOrder: p.SortOrder,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.repo.InsertCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return cat, nil
}

// List returns all categories ordered by sort order, then name.
func (c *Catalog) List(ctx context.Context) ([]*models.Category, error) {
	list, err := c.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return list, nil
}
