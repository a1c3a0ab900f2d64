// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"docforge/internal/models"
)

// CategoryStore manages template categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, name_ro, slug, icon, sort_order, created_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.NameRO, &c.Slug,
		&c.Icon, &c.SortOrder, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// InsertCategory stores a new category.
func (s *CategoryStore) InsertCategory(ctx context.Context, c *models.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO template_categories (`+categoryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.Name, c.NameRO, c.Slug, c.Icon, c.SortOrder, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// FindCategoryBySlug looks a category up case-insensitively. Returns nil
// if not found.
func (s *CategoryStore) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM template_categories WHERE LOWER(slug) = LOWER($1)
	`, slug)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// ListCategories returns all categories ordered by sort_order, then name.
func (s *CategoryStore) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM template_categories
		ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []*models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
