// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"strings"
)

// Headers set by the authenticating gateway in front of the API.
const (
	ActorHeader  = "X-Actor-ID"
	TenantHeader = "X-Tenant-ID"
)

// AnonymousActor is recorded when a request carries no actor header.
const AnonymousActor = "anonymous"

type ctxKey int

const (
	actorKey ctxKey = iota
	tenantKey
)

// Identity copies the caller identity headers into the request context.
// Authentication itself happens upstream.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithIdentity(r.Context(), actorHeader(r), strings.TrimSpace(r.Header.Get(TenantHeader)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithIdentity returns a context carrying actor and tenant.
func WithIdentity(ctx context.Context, actor, tenant string) context.Context {
	ctx = context.WithValue(ctx, actorKey, actor)
	return context.WithValue(ctx, tenantKey, tenant)
}

// Actor returns the caller recorded by Identity, or AnonymousActor.
func Actor(ctx context.Context) string {
	if a, ok := ctx.Value(actorKey).(string); ok && a != "" {
		return a
	}
	return AnonymousActor
}

// Tenant returns the caller's tenant, or "" for a single-tenant setup.
func Tenant(ctx context.Context) string {
	t, _ := ctx.Value(tenantKey).(string)
	return t
}

func actorHeader(r *http.Request) string {
	if a := strings.TrimSpace(r.Header.Get(ActorHeader)); a != "" {
		return a
	}
	return AnonymousActor
}
