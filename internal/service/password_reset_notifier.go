package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type PasswordResetNotification struct {
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
	ResetURL  string
}

type PasswordResetNotifier interface {
	SendPasswordReset(ctx context.Context, notification PasswordResetNotification) error
}

// DevPasswordResetNotifier stands in for a real mail sender in
// development and tests; it just logs the reset link.
type DevPasswordResetNotifier struct {
	logger *slog.Logger
}

func NewDevPasswordResetNotifier(logger *slog.Logger) *DevPasswordResetNotifier {
	return &DevPasswordResetNotifier{logger: logger}
}

func (n *DevPasswordResetNotifier) SendPasswordReset(ctx context.Context, notification PasswordResetNotification) error {
	link := notification.ResetURL
	if strings.TrimSpace(link) == "" {
		link = fmt.Sprintf("token=%s", notification.Token)
	}
	n.logger.InfoContext(ctx, "password reset token issued",
		"user_id", notification.UserID,
		"email", notification.Email,
		"expires_at", notification.ExpiresAt,
		"reset", link,
	)
	return nil
}
