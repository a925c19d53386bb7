package service

import (
	"context"
	"log/slog"
	"net/url"

	"go-auth-api/internal/model"
)

// ResetNotifier delivers a password reset token to its owner.
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, user model.User, token string) error
}

// LogResetNotifier writes the reset link to the log instead of mailing it.
// BaseURL, when set, receives the token as its "token" query parameter.
type LogResetNotifier struct {
	BaseURL string
}

func (n LogResetNotifier) SendPasswordReset(ctx context.Context, user model.User, token string) error {
	link := token
	if n.BaseURL != "" {
		u, err := url.Parse(n.BaseURL)
		if err != nil {
			return err
		}
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
		link = u.String()
	}

	slog.InfoContext(ctx, "password reset issued", "user_id", user.ID, "email", user.Email, "link", link)
	return nil
}
