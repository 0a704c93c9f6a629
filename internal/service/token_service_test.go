package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CobrasOrg/auth-service/internal/domain"
	"github.com/CobrasOrg/auth-service/internal/security"
)

type failingRevocationStore struct {
	err error
}

func (s *failingRevocationStore) Revoke(context.Context, string, time.Time) error {
	return s.err
}

func (s *failingRevocationStore) IsRevoked(context.Context, string) (bool, error) {
	return false, s.err
}

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	codec := security.NewTokenCodec("0123456789abcdef0123456789abcdef", 30*time.Minute, 15*time.Minute)
	return NewTokenService(codec, NewInMemoryTokenRevocationStore())
}

func TestValidateAcceptsFreshAccessToken(t *testing.T) {
	svc := newTestTokenService(t)

	raw, err := svc.IssueAccess("user-1", "a@example.com", domain.UserTypeOwner)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.Validate(context.Background(), raw, security.TokenTypeAccess)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("expected subject user-1, got %q", claims.Subject)
	}
}

func TestValidateRejectsRevokedToken(t *testing.T) {
	svc := newTestTokenService(t)

	raw, err := svc.IssueAccess("user-2", "b@example.com", domain.UserTypeOwner)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Revoke(context.Background(), raw, time.Now().Add(30*time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.Validate(context.Background(), raw, security.TokenTypeAccess); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}

func TestValidateRejectsWrongType(t *testing.T) {
	svc := newTestTokenService(t)

	reset, err := svc.IssueReset("user-3")
	if err != nil {
		t.Fatalf("issue reset: %v", err)
	}
	if _, err := svc.Validate(context.Background(), reset, security.TokenTypeAccess); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("expected ErrWrongTokenType, got %v", err)
	}

	access, err := svc.IssueAccess("user-3", "c@example.com", domain.UserTypeClinic)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	if _, err := svc.Validate(context.Background(), access, security.TokenTypeReset); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("expected ErrWrongTokenType, got %v", err)
	}
}

func TestValidateRejectsMissingSubject(t *testing.T) {
	codec := security.NewTokenCodec("0123456789abcdef0123456789abcdef", 30*time.Minute, 15*time.Minute)
	svc := NewTokenService(codec, NewInMemoryTokenRevocationStore())

	raw, err := codec.IssueAccess("", "nobody@example.com", domain.UserTypeOwner)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Validate(context.Background(), raw, security.TokenTypeAccess); !errors.Is(err, ErrMissingSubject) {
		t.Fatalf("expected ErrMissingSubject, got %v", err)
	}
}

// A revoked wrong-type token must fail on revocation, not on type:
// the checks run in a fixed order.
func TestValidateCheckOrderRevocationBeforeType(t *testing.T) {
	svc := newTestTokenService(t)

	reset, err := svc.IssueReset("user-4")
	if err != nil {
		t.Fatalf("issue reset: %v", err)
	}
	if err := svc.Revoke(context.Background(), reset, time.Now().Add(15*time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.Validate(context.Background(), reset, security.TokenTypeAccess); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked before type check, got %v", err)
	}
}

func TestValidateFailsClosedOnStoreError(t *testing.T) {
	storeErr := errors.New("registry unavailable")
	codec := security.NewTokenCodec("0123456789abcdef0123456789abcdef", 30*time.Minute, 15*time.Minute)
	svc := NewTokenService(codec, &failingRevocationStore{err: storeErr})

	raw, err := svc.IssueAccess("user-5", "d@example.com", domain.UserTypeOwner)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Validate(context.Background(), raw, security.TokenTypeAccess); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}
