// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"docforge/internal/models"
)

// templateColumns lists all columns for templates SELECTs.
const templateColumns = `id, name, name_ro, description, type, status, version,
	content, variables, sections, styling, output_formats,
	category, tags, usage_count, is_compliant, is_system,
	created_by, tenant_id, published_at, created_at, updated_at`

// TemplateStore persists templates and their version history in PostgreSQL.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

// scanTemplate scans a single templates row, decoding the JSONB columns.
func scanTemplate(scanner interface{ Scan(...any) error }) (*models.Template, error) {
	var (
		t                                               models.Template
		content, vars, sections, styling, formats, tags []byte
	)
	err := scanner.Scan(
		&t.ID, &t.Name, &t.NameRO, &t.Description, &t.Type, &t.Status, &t.Version,
		&content, &vars, &sections, &styling, &formats,
		&t.Metadata.Category, &tags, &t.Metadata.UsageCount, &t.Metadata.IsCompliant, &t.IsSystem,
		&t.CreatedBy, &t.TenantID, &t.PublishedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, col := range []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"content", content, &t.Content},
		{"variables", vars, &t.Variables},
		{"sections", sections, &t.Sections},
		{"styling", styling, &t.Styling},
		{"output_formats", formats, &t.OutputFormats},
		{"tags", tags, &t.Metadata.Tags},
	} {
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return nil, fmt.Errorf("decode template %s: %w", col.name, err)
		}
	}
	return &t, nil
}

// templateArgs encodes the JSONB columns of t in templateColumns order.
type templateArgs struct {
	content, vars, sections, styling, formats, tags string
}

func encodeTemplate(t *models.Template) (templateArgs, error) {
	var (
		a   templateArgs
		err error
	)
	for _, col := range []struct {
		dst *string
		src any
	}{
		{&a.content, t.Content},
		{&a.vars, nonNil(t.Variables)},
		{&a.sections, nonNil(t.Sections)},
		{&a.styling, t.Styling},
		{&a.formats, nonNil(t.OutputFormats)},
		{&a.tags, nonNil(t.Metadata.Tags)},
	} {
		if *col.dst, err = jsonb(col.src); err != nil {
			return a, err
		}
	}
	return a, nil
}

// nonNil keeps nil slices from being stored as JSON null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// InsertTemplate stores a new template and its first history entry in one
// transaction.
func (s *TemplateStore) InsertTemplate(ctx context.Context, t *models.Template, first *models.TemplateVersion) error {
	a, err := encodeTemplate(t)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO templates (`+templateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`,
		t.ID, t.Name, t.NameRO, t.Description, t.Type, t.Status, t.Version,
		a.content, a.vars, a.sections, a.styling, a.formats,
		t.Metadata.Category, a.tags, t.Metadata.UsageCount, t.Metadata.IsCompliant, t.IsSystem,
		t.CreatedBy, t.TenantID, t.PublishedAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}

	if first != nil {
		if err := insertVersion(ctx, tx, first); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveTemplate overwrites the template row and, when v is non-nil, appends
// v to the history in the same transaction. The usage counter is left
// untouched; only IncrementUsage changes it.
func (s *TemplateStore) SaveTemplate(ctx context.Context, t *models.Template, v *models.TemplateVersion) error {
	a, err := encodeTemplate(t)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE templates SET
			name = $1, name_ro = $2, description = $3, type = $4, status = $5,
			version = $6, content = $7, variables = $8, sections = $9,
			styling = $10, output_formats = $11, category = $12, tags = $13,
			is_compliant = $14, published_at = $15, updated_at = $16
		WHERE id = $17
	`,
		t.Name, t.NameRO, t.Description, t.Type, t.Status,
		t.Version, a.content, a.vars, a.sections,
		a.styling, a.formats, t.Metadata.Category, a.tags,
		t.Metadata.IsCompliant, t.PublishedAt, t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update template %s: %w", t.ID, models.ErrNotFound)
	}

	if v != nil {
		if err := insertVersion(ctx, tx, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// FindTemplate retrieves a template by ID. Returns nil if not found.
func (s *TemplateStore) FindTemplate(ctx context.Context, id string) (*models.Template, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+templateColumns+`
		FROM templates WHERE id = $1
	`, id)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by id: %w", err)
	}
	return t, nil
}

// ListTemplates returns the templates matching f ordered by type and name.
func (s *TemplateStore) ListTemplates(ctx context.Context, f models.TemplateFilter) ([]*models.Template, error) {
	qb := &queryBuilder{}
	if f.Type != "" {
		qb.add("type = $?", f.Type)
	}
	if f.Status != "" {
		qb.add("status = $?", f.Status)
	}
	if f.Category != "" {
		qb.add("category = $?", f.Category)
	}
	if f.TenantID != "" {
		qb.add("tenant_id = $?", f.TenantID)
	}
	if f.IsSystem != nil {
		qb.add("is_system = $?", *f.IsSystem)
	}
	if f.Search != "" {
		qb.add("(name ILIKE $? OR name_ro ILIKE $?)", likePattern(f.Search))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+templateColumns+`
		FROM templates`+qb.where()+`
		ORDER BY type, name, id
	`, qb.args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// DeleteTemplate removes a template. Its history goes with it through the
// foreign key cascade.
func (s *TemplateStore) DeleteTemplate(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete template rows: %w", err)
	}
	return n > 0, nil
}

// IncrementUsage adds one to the template's usage counter.
func (s *TemplateStore) IncrementUsage(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE templates SET usage_count = usage_count + 1 WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("increment template usage: %w", err)
	}
	return nil
}
