package service

import (
	"context"

	"github.com/CobrasOrg/auth-service/internal/domain"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, in RegisterInput, userType domain.UserType) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, raw string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, raw, newPassword string) error
	VerifyToken(ctx context.Context, raw string) (*TokenIntrospection, error)
}
