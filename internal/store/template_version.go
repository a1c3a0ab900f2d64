// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"docforge/internal/models"
)

// templateVersionColumns lists all columns for template_versions SELECTs.
const templateVersionColumns = `id, template_id, version, content, variables,
	sections, changelog, created_by, created_at`

// scanTemplateVersion scans a single template_versions row.
func scanTemplateVersion(scanner interface{ Scan(...any) error }) (*models.TemplateVersion, error) {
	var (
		v                       models.TemplateVersion
		content, vars, sections []byte
	)
	err := scanner.Scan(
		&v.ID, &v.TemplateID, &v.Version, &content, &vars,
		&sections, &v.Changelog, &v.CreatedBy, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(content, &v.Content); err != nil {
		return nil, fmt.Errorf("decode version content: %w", err)
	}
	if err := json.Unmarshal(vars, &v.Variables); err != nil {
		return nil, fmt.Errorf("decode version variables: %w", err)
	}
	if err := json.Unmarshal(sections, &v.Sections); err != nil {
		return nil, fmt.Errorf("decode version sections: %w", err)
	}
	return &v, nil
}

// insertVersion appends a history entry inside tx.
func insertVersion(ctx context.Context, tx *sql.Tx, v *models.TemplateVersion) error {
	content, err := jsonb(v.Content)
	if err != nil {
		return err
	}
	vars, err := jsonb(nonNil(v.Variables))
	if err != nil {
		return err
	}
	sections, err := jsonb(nonNil(v.Sections))
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO template_versions (`+templateVersionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		v.ID, v.TemplateID, v.Version, content, vars,
		sections, v.Changelog, v.CreatedBy, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert template version: %w", err)
	}
	return nil
}

// ListVersions returns a template's history in append order.
func (s *TemplateStore) ListVersions(ctx context.Context, templateID string) ([]*models.TemplateVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+templateVersionColumns+`
		FROM template_versions
		WHERE template_id = $1
		ORDER BY seq
	`, templateID)
	if err != nil {
		return nil, fmt.Errorf("list template versions: %w", err)
	}
	defer rows.Close()

	var versions []*models.TemplateVersion
	for rows.Next() {
		v, err := scanTemplateVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
