// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package templates

import (
	"context"

	"docforge/internal/models"
)

// Repository persists templates and their append-only history. Find
// returns (nil, nil) when no template has the id. Returned templates are
// owned by the caller.
type Repository interface {
	// InsertTemplate stores a new template together with its first history
	// entry.
	InsertTemplate(ctx context.Context, t *models.Template, first *models.TemplateVersion) error

	// SaveTemplate overwrites the stored template and, when v is non-nil,
	// appends v to its history in the same unit of work.
	SaveTemplate(ctx context.Context, t *models.Template, v *models.TemplateVersion) error

	FindTemplate(ctx context.Context, id string) (*models.Template, error)
	ListTemplates(ctx context.Context, f models.TemplateFilter) ([]*models.Template, error)

	// DeleteTemplate removes a template and its history. It reports false
	// when nothing was deleted.
	DeleteTemplate(ctx context.Context, id string) (bool, error)

	// ListVersions returns a template's history in append order.
	ListVersions(ctx context.Context, templateID string) ([]*models.TemplateVersion, error)

	// IncrementUsage atomically adds one to a template's usage counter.
	IncrementUsage(ctx context.Context, id string) error
}
