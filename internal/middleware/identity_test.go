package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIdentity(t *testing.T) {
	tests := []struct {
		name       string
		actor      string
		tenant     string
		wantActor  string
		wantTenant string
	}{
		{"both headers", "u1", "acme", "u1", "acme"},
		{"trimmed", "  u2 ", " beta ", "u2", "beta"},
		{"no headers", "", "", AnonymousActor, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotActor, gotTenant string
			handler := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotActor = Actor(r.Context())
				gotTenant = Tenant(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.actor != "" {
				req.Header.Set(ActorHeader, tt.actor)
			}
			if tt.tenant != "" {
				req.Header.Set(TenantHeader, tt.tenant)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if gotActor != tt.wantActor || gotTenant != tt.wantTenant {
				t.Errorf("got (%q, %q), want (%q, %q)", gotActor, gotTenant, tt.wantActor, tt.wantTenant)
			}
		})
	}
}

func TestActorWithoutMiddleware(t *testing.T) {
	if got := Actor(context.Background()); got != AnonymousActor {
		t.Errorf("Actor = %q", got)
	}
	if got := Tenant(context.Background()); got != "" {
		t.Errorf("Tenant = %q", got)
	}
}
