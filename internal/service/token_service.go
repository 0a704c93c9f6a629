package service

import (
	"context"
	"errors"
	"time"

	"github.com/CobrasOrg/auth-service/internal/domain"
	"github.com/CobrasOrg/auth-service/internal/security"
)

var (
	ErrTokenRevoked   = errors.New("token has been revoked")
	ErrMissingSubject = errors.New("token has no subject")
	ErrWrongTokenType = errors.New("unexpected token type")
)

// TokenService pairs the stateless codec with the revocation registry.
type TokenService struct {
	codec      *security.TokenCodec
	revocation TokenRevocationStore
}

func NewTokenService(codec *security.TokenCodec, revocation TokenRevocationStore) *TokenService {
	return &TokenService{codec: codec, revocation: revocation}
}

func (s *TokenService) IssueAccess(userID, email string, userType domain.UserType) (string, error) {
	return s.codec.IssueAccess(userID, email, userType)
}

func (s *TokenService) IssueReset(userID string) (string, error) {
	return s.codec.IssueReset(userID)
}

func (s *TokenService) AccessTTL() time.Duration { return s.codec.AccessTTL() }

// Validate runs the checks in a fixed order so a given bad input always
// yields the same error: signature/expiry, then revocation, then
// subject presence, then type. Revocation-store failures propagate
// rather than letting a possibly revoked token through.
func (s *TokenService) Validate(ctx context.Context, raw string, expected security.TokenType) (*security.Claims, error) {
	claims, err := s.codec.Decode(raw)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revocation.IsRevoked(ctx, raw)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	if claims.TokenType != expected {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// DecodeForRevocation accepts any structurally valid token of either
// type, expired or not, so logout can recover its expiry.
func (s *TokenService) DecodeForRevocation(raw string) (*security.Claims, error) {
	return s.codec.DecodeExpired(raw)
}

func (s *TokenService) Revoke(ctx context.Context, raw string, expiresAt time.Time) error {
	return s.revocation.Revoke(ctx, raw, expiresAt)
}
