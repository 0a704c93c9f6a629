package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/CobrasOrg/auth-service/internal/domain"
)

type TokenType string

const (
	TokenTypeAccess TokenType = "access"
	TokenTypeReset  TokenType = "reset"
)

var (
	ErrTokenMalformed = errors.New("token is malformed or has an invalid signature")
	ErrTokenExpired   = errors.New("token has expired")
)

// Claims is the signed payload carried by both access and reset tokens.
type Claims struct {
	TokenType TokenType       `json:"type"`
	UserType  domain.UserType `json:"userType,omitempty"`
	Email     string          `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies claims with a single process-wide
// symmetric key and a fixed HS256 algorithm.
type TokenCodec struct {
	secret    []byte
	accessTTL time.Duration
	resetTTL  time.Duration
}

func NewTokenCodec(secret string, accessTTL, resetTTL time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), accessTTL: accessTTL, resetTTL: resetTTL}
}

func (c *TokenCodec) AccessTTL() time.Duration { return c.accessTTL }
func (c *TokenCodec) ResetTTL() time.Duration  { return c.resetTTL }

func (c *TokenCodec) IssueAccess(userID, email string, userType domain.UserType) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		TokenType: TokenTypeAccess,
		UserType:  userType,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *TokenCodec) IssueReset(userID string) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		TokenType: TokenTypeReset,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.resetTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies signature and expiry. It distinguishes ErrTokenExpired
// (valid signature, exp in the past) from ErrTokenMalformed (anything
// structurally or cryptographically wrong) for caller-facing messaging.
func (c *TokenCodec) Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// DecodeExpired verifies the signature but skips expiry validation.
// Logout uses it to recover exp for revocation bookkeeping from tokens
// that have already expired but are otherwise authentic.
func (c *TokenCodec) DecodeExpired(raw string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	claims := &Claims{}
	if _, err := parser.ParseWithClaims(raw, claims, c.keyFunc); err != nil {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func (c *TokenCodec) keyFunc(*jwt.Token) (any, error) {
	return c.secret, nil
}
