// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// document.go caches generated documents in Valkey. Documents are
// immutable once stored, so entries only leave the cache on deletion or
// TTL expiry.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"docforge/internal/models"
)

const (
	// documentKeyPrefix is the Valkey key prefix for cached documents.
	documentKeyPrefix = "document:"

	// DefaultDocumentTTL is how long a document stays cached.
	DefaultDocumentTTL = 10 * time.Minute
)

// DocumentCache is a best-effort Valkey cache of generated documents.
// Errors are logged and reported as misses.
type DocumentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDocumentCache creates a document cache backed by the given client.
func NewDocumentCache(client *redis.Client, ttl time.Duration) *DocumentCache {
	if ttl <= 0 {
		ttl = DefaultDocumentTTL
	}
	return &DocumentCache{client: client, ttl: ttl}
}

// Get returns the cached document for id.
func (dc *DocumentCache) Get(ctx context.Context, id string) (*models.GeneratedDocument, bool) {
	data, err := dc.client.Get(ctx, documentKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("document cache get error", "document_id", id, "error", err)
		return nil, false
	}

	var d models.GeneratedDocument
	if err := json.Unmarshal(data, &d); err != nil {
		slog.Warn("document cache decode error", "document_id", id, "error", err)
		return nil, false
	}
	slog.Debug("document cache hit", "document_id", id)
	return &d, true
}

// Set stores d with the configured TTL, capped at the document's own
// expiry.
func (dc *DocumentCache) Set(ctx context.Context, d *models.GeneratedDocument) {
	ttl := dc.ttl
	if d.ExpiresAt != nil {
		left := time.Until(*d.ExpiresAt)
		if left <= 0 {
			return
		}
		ttl = min(ttl, left)
	}

	data, err := json.Marshal(d)
	if err != nil {
		slog.Warn("document cache encode error", "document_id", d.ID, "error", err)
		return
	}
	if err := dc.client.Set(ctx, documentKeyPrefix+d.ID, data, ttl).Err(); err != nil {
		slog.Warn("document cache set error", "document_id", d.ID, "error", err)
	}
}

// Invalidate removes a document from the cache.
func (dc *DocumentCache) Invalidate(ctx context.Context, id string) {
	if err := dc.client.Del(ctx, documentKeyPrefix+id).Err(); err != nil {
		slog.Warn("document cache invalidate error", "document_id", id, "error", err)
		return
	}
	slog.Debug("document cache invalidated", "document_id", id)
}
