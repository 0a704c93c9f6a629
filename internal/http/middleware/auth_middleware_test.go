package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CobrasOrg/auth-service/internal/domain"
	"github.com/CobrasOrg/auth-service/internal/security"
	"github.com/CobrasOrg/auth-service/internal/service"
)

func newMiddlewareFixture(t *testing.T) (*service.TokenService, func(http.Handler) http.Handler) {
	t.Helper()
	codec := security.NewTokenCodec("0123456789abcdef0123456789abcdef", 30*time.Minute, 15*time.Minute)
	tokens := service.NewTokenService(codec, service.NewInMemoryTokenRevocationStore())
	return tokens, RequireAuth(tokens)
}

func TestBearerTokenExtraction(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"missing", "", "", false},
		{"no scheme", "abc123", "", false},
		{"wrong scheme", "Basic abc123", "", false},
		{"bearer", "Bearer abc123", "abc123", true},
		{"lowercase scheme", "bearer abc123", "abc123", true},
		{"empty token", "Bearer ", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			got, ok := BearerToken(req)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("expected (%q, %v), got (%q, %v)", tc.want, tc.ok, got, ok)
			}
		})
	}
}

func TestRequireAuthPassesClaims(t *testing.T) {
	tokens, requireAuth := newMiddlewareFixture(t)

	raw, err := tokens.IssueAccess("user-1", "mw@example.com", domain.UserTypeOwner)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var gotSubject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Fatal("expected claims in context")
		}
		gotSubject = claims.Subject
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	requireAuth(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected handler to run, got %d (%s)", rec.Code, rec.Body.String())
	}
	if gotSubject != "user-1" {
		t.Fatalf("expected subject user-1, got %q", gotSubject)
	}
}

func TestRequireAuthRejections(t *testing.T) {
	tokens, requireAuth := newMiddlewareFixture(t)

	revoked, err := tokens.IssueAccess("user-2", "rev@example.com", domain.UserTypeOwner)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := tokens.Revoke(context.Background(), revoked, time.Now().Add(30*time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	reset, err := tokens.IssueReset("user-2")
	if err != nil {
		t.Fatalf("issue reset: %v", err)
	}

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"garbage token", "Bearer garbage"},
		{"revoked token", "Bearer " + revoked},
		{"reset token on access route", "Bearer " + reset},
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for rejected requests")
	})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			requireAuth(next).ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestClaimsFromContextMissing(t *testing.T) {
	if _, ok := ClaimsFromContext(context.Background()); ok {
		t.Fatal("expected no claims in a bare context")
	}
}
