// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package documents

import (
	"context"
	"time"

	"docforge/internal/models"
)

// Repository persists generated documents. Find returns (nil, nil) when no
// document has the id.
type Repository interface {
	InsertDocument(ctx context.Context, d *models.GeneratedDocument) error
	FindDocument(ctx context.Context, id string) (*models.GeneratedDocument, error)

	// ListDocuments returns matching documents, newest first, honouring
	// the filter's Limit and Offset.
	ListDocuments(ctx context.Context, f models.DocumentFilter) ([]*models.GeneratedDocument, error)

	// DeleteDocument reports false when nothing was deleted.
	DeleteDocument(ctx context.Context, id string) (bool, error)

	// ListExpired returns up to limit documents whose expiry is at or
	// before now.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*models.GeneratedDocument, error)

	// CountDocumentsByFormat counts documents per format, optionally
	// scoped to a tenant.
	CountDocumentsByFormat(ctx context.Context, tenantID string) (map[models.OutputFormat]int, error)
}
