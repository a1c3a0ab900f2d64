// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package events delivers fire-and-forget notifications about template
// lifecycle transitions and generated documents. Emitting never blocks the
// caller and never fails an operation.
package events

import (
	"context"
	"log/slog"
	"time"
)

// Type names a notification.
type Type string

const (
	TemplateCreated    Type = "template.created"
	TemplateUpdated    Type = "template.updated"
	TemplatePublished  Type = "template.published"
	TemplateArchived   Type = "template.archived"
	TemplateDeprecated Type = "template.deprecated"
	TemplateDeleted    Type = "template.deleted"
	TemplateRestored   Type = "template.restored"
	DocumentGenerated  Type = "document.generated"
	DocumentDeleted    Type = "document.deleted"
)

// Event is a single notification. TemplateID is set for every event;
// DocumentID only for document events.
type Event struct {
	Type       Type      `json:"type"`
	TemplateID string    `json:"template_id,omitempty"`
	DocumentID string    `json:"document_id,omitempty"`
	Version    int       `json:"version,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	TenantID   string    `json:"tenant_id,omitempty"`
	At         time.Time `json:"at"`
}

// Sink receives events. Implementations must return promptly.
type Sink interface {
	Emit(ctx context.Context, e Event)
}

// Nop discards every event.
type Nop struct{}

// Emit does nothing.
func (Nop) Emit(context.Context, Event) {}

// LogSink writes events to the default slog logger.
type LogSink struct{}

// Emit logs the event at Info.
func (LogSink) Emit(_ context.Context, e Event) {
	slog.Info("event",
		"type", e.Type,
		"template_id", e.TemplateID,
		"document_id", e.DocumentID,
		"version", e.Version,
		"actor", e.Actor,
	)
}

// Multi fans an event out to several sinks in order.
type Multi []Sink

// Emit forwards e to every sink.
func (m Multi) Emit(ctx context.Context, e Event) {
	for _, s := range m {
		s.Emit(ctx, e)
	}
}

// Func adapts a plain function to Sink.
type Func func(ctx context.Context, e Event)

// Emit calls f.
func (f Func) Emit(ctx context.Context, e Event) { f(ctx, e) }
