// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// event_log.go records lifecycle and document events in the database as
// an audit trail. Writes are best-effort.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"docforge/internal/events"
)

// eventWriteTimeout bounds a single audit INSERT.
const eventWriteTimeout = 5 * time.Second

// EventLogStore is an events.Sink that appends to template_events.
// Inserts run in the background so a slow database never holds up the
// template lock or the request that emitted the event.
type EventLogStore struct {
	db *sql.DB
	wg sync.WaitGroup
}

// NewEventLogStore creates a new EventLogStore.
func NewEventLogStore(db *sql.DB) *EventLogStore {
	return &EventLogStore{db: db}
}

// Emit records e asynchronously. Failures are logged and dropped.
func (s *EventLogStore) Emit(_ context.Context, e events.Event) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), eventWriteTimeout)
		defer cancel()
		s.insert(ctx, e)
	}()
}

// Wait blocks until every pending insert has finished. Call it before
// closing the database.
func (s *EventLogStore) Wait() {
	s.wg.Wait()
}

func (s *EventLogStore) insert(ctx context.Context, e events.Event) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO template_events (type, template_id, document_id, version, actor, tenant_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.Type, e.TemplateID, e.DocumentID, e.Version, e.Actor, e.TenantID, e.At)
	if err != nil {
		slog.Warn("failed to log event",
			"type", e.Type,
			"template_id", e.TemplateID,
			"error", err,
		)
		return
	}
	slog.Debug("event logged", "type", e.Type, "template_id", e.TemplateID)
}

// ForTemplate returns the most recent events of a template, newest first.
func (s *EventLogStore) ForTemplate(ctx context.Context, templateID string, limit int) ([]events.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT type, template_id, document_id, version, actor, tenant_id, occurred_at
		FROM template_events
		WHERE template_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, templateID, limit)
	if err != nil {
		return nil, fmt.Errorf("query event log: %w", err)
	}
	defer rows.Close()

	var entries []events.Event
	for rows.Next() {
		var e events.Event
		if err := rows.Scan(&e.Type, &e.TemplateID, &e.DocumentID, &e.Version, &e.Actor, &e.TenantID, &e.At); err != nil {
			return nil, fmt.Errorf("scan event log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
