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
	"time"

	"docforge/internal/models"
)

const documentColumns = `id, template_id, template_version, template_name, format,
	content, "values", language, size, generated_by, tenant_id,
	generated_at, expires_at`

// DocumentStore persists generated documents in PostgreSQL.
type DocumentStore struct {
	db *sql.DB
}

// NewDocumentStore creates a new DocumentStore.
func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func scanDocument(scanner interface{ Scan(...any) error }) (*models.GeneratedDocument, error) {
	var (
		d      models.GeneratedDocument
		values []byte
	)
	err := scanner.Scan(
		&d.ID, &d.TemplateID, &d.TemplateVersion, &d.TemplateName, &d.Format,
		&d.Content, &values, &d.Language, &d.Size, &d.GeneratedBy, &d.TenantID,
		&d.GeneratedAt, &d.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(values, &d.Values); err != nil {
		return nil, fmt.Errorf("decode document values: %w", err)
	}
	return &d, nil
}

func (s *DocumentStore) list(ctx context.Context, query string, args ...any) ([]*models.GeneratedDocument, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.GeneratedDocument
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// InsertDocument stores a generated document.
func (s *DocumentStore) InsertDocument(ctx context.Context, d *models.GeneratedDocument) error {
	values, err := jsonb(d.Values)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO generated_documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		d.ID, d.TemplateID, d.TemplateVersion, d.TemplateName, d.Format,
		d.Content, values, d.Language, d.Size, d.GeneratedBy, d.TenantID,
		d.GeneratedAt, d.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// FindDocument retrieves a document by ID. Returns nil if not found.
func (s *DocumentStore) FindDocument(ctx context.Context, id string) (*models.GeneratedDocument, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+`
		FROM generated_documents WHERE id = $1
	`, id)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find document by id: %w", err)
	}
	return d, nil
}

// ListDocuments returns matching documents, newest first.
func (s *DocumentStore) ListDocuments(ctx context.Context, f models.DocumentFilter) ([]*models.GeneratedDocument, error) {
	qb := &queryBuilder{}
	if f.TemplateID != "" {
		qb.add("template_id = $?", f.TemplateID)
	}
	if f.GeneratedBy != "" {
		qb.add("generated_by = $?", f.GeneratedBy)
	}
	if f.TenantID != "" {
		qb.add("tenant_id = $?", f.TenantID)
	}
	if f.From != nil {
		qb.add("generated_at >= $?", *f.From)
	}
	if f.To != nil {
		qb.add("generated_at < $?", *f.To)
	}

	query := qb.paginate(`
		SELECT `+documentColumns+`
		FROM generated_documents`+qb.where()+`
		ORDER BY generated_at DESC, id`, f.Limit, f.Offset)
	return s.list(ctx, query, qb.args...)
}

// DeleteDocument removes a document. It reports false when nothing was
// deleted.
func (s *DocumentStore) DeleteDocument(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM generated_documents WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete document rows: %w", err)
	}
	return n > 0, nil
}

// ListExpired returns up to limit documents whose expiry is at or before
// now, oldest expiry first.
func (s *DocumentStore) ListExpired(ctx context.Context, now time.Time, limit int) ([]*models.GeneratedDocument, error) {
	return s.list(ctx, `
		SELECT `+documentColumns+`
		FROM generated_documents
		WHERE expires_at IS NOT NULL AND expires_at <= $1
		ORDER BY expires_at, id
		LIMIT $2
	`, now, limit)
}

// CountDocumentsByFormat counts documents per format. An empty tenantID
// counts across all tenants.
func (s *DocumentStore) CountDocumentsByFormat(ctx context.Context, tenantID string) (map[models.OutputFormat]int, error) {
	qb := &queryBuilder{}
	if tenantID != "" {
		qb.add("tenant_id = $?", tenantID)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT format, COUNT(*)
		FROM generated_documents`+qb.where()+`
		GROUP BY format
	`, qb.args...)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.OutputFormat]int)
	for rows.Next() {
		var (
			format models.OutputFormat
			n      int
		)
		if err := rows.Scan(&format, &n); err != nil {
			return nil, fmt.Errorf("scan document count: %w", err)
		}
		counts[format] = n
	}
	return counts, rows.Err()
}
