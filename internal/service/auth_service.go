package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/CobrasOrg/auth-service/internal/config"
	"github.com/CobrasOrg/auth-service/internal/domain"
	"github.com/CobrasOrg/auth-service/internal/repository"
	"github.com/CobrasOrg/auth-service/internal/security"
)

var (
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrEmailTaken               = errors.New("email already registered")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
	ErrInvalidOrExpiredToken    = errors.New("invalid or expired token")
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Locality string
}

type AuthResult struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"token"`
	ExpiresAt   time.Time    `json:"expiresAt"`
}

type TokenIntrospection struct {
	UserID   string          `json:"userId"`
	UserType domain.UserType `json:"userType"`
}

// AuthService orchestrates the credential flows over the user
// directory, the token service and the reset notifier.
type AuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	tokenSvc *TokenService
	notifier PasswordResetNotifier
	logger   *slog.Logger
}

func NewAuthService(
	cfg *config.Config,
	userRepo repository.UserRepository,
	tokenSvc *TokenService,
	notifier PasswordResetNotifier,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		cfg:      cfg,
		userRepo: userRepo,
		tokenSvc: tokenSvc,
		notifier: notifier,
		logger:   logger,
	}
}

// Register persists a new credential and issues its first access token.
// Email uniqueness relies on the store's unique index, not a pre-check,
// so two concurrent registrations cannot both win.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, userType domain.UserType) (*AuthResult, error) {
	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Email:        repository.NormalizeEmail(in.Email),
		Name:         in.Name,
		Phone:        in.Phone,
		Address:      in.Address,
		PasswordHash: hash,
		UserType:     userType,
	}
	if userType == domain.UserTypeClinic {
		locality := in.Locality
		user.Locality = &locality
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.issueFor(user)
}

// Login deliberately returns the same error for an unknown email and a
// wrong password so callers cannot probe which emails are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	ok, err := security.VerifyPassword(user.PasswordHash, password)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	return s.issueFor(user)
}

// Logout revokes the presented token for the rest of its natural
// lifetime. The type check is bypassed and expiry is not validated:
// a user logging out after their token expired still succeeds, as long
// as the token is structurally authentic.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	claims, err := s.tokenSvc.DecodeForRevocation(raw)
	if err != nil || claims.ExpiresAt == nil {
		return ErrInvalidOrExpiredToken
	}
	return s.tokenSvc.Revoke(ctx, raw, claims.ExpiresAt.Time)
}

// ChangePassword swaps the stored hash after verifying the current
// password. The caller's access token stays valid; only the credential
// changes.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := security.VerifyPassword(user.PasswordHash, currentPassword)
	if err != nil || !ok {
		return ErrCurrentPasswordIncorrect
	}
	newHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, newHash)
}

// ForgotPassword reports success no matter what. Unknown emails and
// notifier failures are swallowed so the response cannot be used to
// enumerate accounts; failures are only logged.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			s.logger.WarnContext(ctx, "forgot password lookup failed", "error", err)
		}
		return nil
	}
	token, err := s.tokenSvc.IssueReset(user.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "reset token issuance failed", "error", err)
		return nil
	}
	notification := PasswordResetNotification{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: time.Now().Add(s.cfg.ResetTTL),
		ResetURL:  s.cfg.ResetURL(token),
	}
	if err := s.notifier.SendPasswordReset(ctx, notification); err != nil {
		s.logger.WarnContext(ctx, "password reset notification failed", "user_id", user.ID, "error", err)
	}
	return nil
}

// ResetPassword consumes a reset token: the new hash is persisted and
// the token revoked in the same operation, so a captured token cannot
// be replayed within its remaining TTL.
func (s *AuthService) ResetPassword(ctx context.Context, raw, newPassword string) error {
	claims, err := s.tokenSvc.Validate(ctx, raw, security.TokenTypeReset)
	if err != nil {
		return mapTokenError(err)
	}
	newHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, claims.Subject, newHash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}
	if err := s.tokenSvc.Revoke(ctx, raw, claims.ExpiresAt.Time); err != nil {
		// The new hash is already persisted at this point; the error
		// only means the token was not retired and may be replayed.
		s.logger.WarnContext(ctx, "reset token revocation failed after password update",
			"user_id", claims.Subject, "error", err)
		return err
	}
	return nil
}

// VerifyToken introspects an access token and confirms its subject
// still exists, covering accounts deleted after issuance. The user
// type is read from the claim, not re-fetched.
func (s *AuthService) VerifyToken(ctx context.Context, raw string) (*TokenIntrospection, error) {
	claims, err := s.tokenSvc.Validate(ctx, raw, security.TokenTypeAccess)
	if err != nil {
		return nil, mapTokenError(err)
	}
	if _, err := s.userRepo.FindByID(ctx, claims.Subject); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, err
	}
	return &TokenIntrospection{UserID: claims.Subject, UserType: claims.UserType}, nil
}

func (s *AuthService) issueFor(user *domain.User) (*AuthResult, error) {
	token, err := s.tokenSvc.IssueAccess(user.ID, user.Email, user.UserType)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:        user,
		AccessToken: token,
		ExpiresAt:   time.Now().Add(s.tokenSvc.AccessTTL()),
	}, nil
}

// mapTokenError collapses the fine-grained validation failures into the
// umbrella kind surfaced to callers, so responses do not reveal which
// check rejected the token. Revocation keeps its own kind: the single
// use property of reset tokens is observable on purpose.
func mapTokenError(err error) error {
	switch {
	case errors.Is(err, ErrTokenRevoked):
		return ErrTokenRevoked
	case errors.Is(err, security.ErrTokenMalformed),
		errors.Is(err, security.ErrTokenExpired),
		errors.Is(err, ErrMissingSubject),
		errors.Is(err, ErrWrongTokenType):
		return ErrInvalidOrExpiredToken
	default:
		return err
	}
}
