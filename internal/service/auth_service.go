package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"go-auth-api/internal/model"
	"go-auth-api/internal/security"
)

// UserStore is the persistence the auth and user services depend on.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	Create(ctx context.Context, u model.User) (model.User, error)
	Update(ctx context.Context, id int64, patch model.UserPatch) (model.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) (model.User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
	List(ctx context.Context, offset int, limit int) ([]model.User, error)
	Count(ctx context.Context) (int64, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) bool
}

type AuthService struct {
	users    UserStore
	hasher   passwordHasher
	tokens   *security.TokenCodec
	notifier ResetNotifier
	now      func() time.Time

	decoyOnce sync.Once
	decoyHash string
}

func NewAuthService(users UserStore, hasher passwordHasher, tokens *security.TokenCodec, notifier ResetNotifier) *AuthService {
	if notifier == nil {
		notifier = LogResetNotifier{}
	}
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in model.NewUser) (model.PublicUser, error) {
	in.IsActive = true
	in.IsSuperuser = false

	user, err := createUser(ctx, s.users, s.hasher, in)
	if err != nil {
		return model.PublicUser{}, err
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user.Public(), nil
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (model.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, model.ErrUserNotFound) {
		// Unknown emails pay for one bcrypt compare like known ones do.
		s.hasher.Verify(password, s.decoy())
		return model.TokenPair{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.TokenPair{}, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return model.TokenPair{}, model.ErrInvalidCredentials
	}

	if !user.IsActive {
		return model.TokenPair{}, model.ErrInactiveUser
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		return model.TokenPair{}, err
	}

	slog.Info("user logged in", "user_id", user.ID)
	return s.issueTokenPair(user.ID)
}

// Refresh mints a new pair from a refresh token. The presented token is not
// revoked and stays usable until it expires.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, security.TokenRefresh)
	if err != nil {
		return model.TokenPair{}, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return model.TokenPair{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.TokenPair{}, model.ErrUnauthenticated
	}
	if err != nil {
		return model.TokenPair{}, err
	}

	if !user.IsActive {
		return model.TokenPair{}, model.ErrInactiveUser
	}

	slog.Info("token refreshed", "user_id", user.ID)
	return s.issueTokenPair(user.ID)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int64, current string, next string) (model.PublicUser, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.PublicUser{}, err
	}

	if !s.hasher.Verify(current, user.PasswordHash) {
		return model.PublicUser{}, model.ErrIncorrectPassword
	}

	updated, err := s.setPassword(ctx, user.ID, next)
	if err != nil {
		return model.PublicUser{}, err
	}

	slog.Info("password changed", "user_id", user.ID)
	return updated.Public(), nil
}

// RequestPasswordReset never reveals whether email belongs to an account.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, model.ErrUserNotFound) {
		slog.Debug("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	if !user.IsActive {
		slog.Debug("password reset requested for inactive user", "user_id", user.ID)
		return nil
	}

	token, err := s.tokens.IssuePasswordReset(user.Email)
	if err != nil {
		return err
	}

	if err := s.notifier.SendPasswordReset(ctx, user, token); err != nil {
		slog.Error("failed to deliver password reset", "user_id", user.ID, "error", err)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token string, next string) (model.PublicUser, error) {
	email, err := s.tokens.VerifyPasswordReset(token)
	if err != nil {
		return model.PublicUser{}, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.PublicUser{}, model.ErrUnauthenticated
	}
	if err != nil {
		return model.PublicUser{}, err
	}

	if !user.IsActive {
		return model.PublicUser{}, model.ErrInactiveUser
	}

	updated, err := s.setPassword(ctx, user.ID, next)
	if err != nil {
		return model.PublicUser{}, err
	}

	slog.Info("password reset completed", "user_id", user.ID)
	return updated.Public(), nil
}

// decoy returns a hash at the hasher's cost that no real password matches.
func (s *AuthService) decoy() string {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash("decoy-" + strconv.FormatInt(s.now().UnixNano(), 36))
		if err != nil {
			slog.Error("failed to build decoy password hash", "error", err)
			return
		}
		s.decoyHash = hash
	})
	return s.decoyHash
}

func (s *AuthService) setPassword(ctx context.Context, userID int64, password string) (model.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

func (s *AuthService) issueTokenPair(userID int64) (model.TokenPair, error) {
	access, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return model.TokenPair{}, err
	}

	refresh, err := s.tokens.IssueRefresh(userID)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// createUser checks both unique keys before inserting; the database
// constraints still catch concurrent duplicates.
func createUser(ctx context.Context, users UserStore, hasher passwordHasher, in model.NewUser) (model.User, error) {
	email := normalizeEmail(in.Email)
	username := normalizeUsername(in.Username)

	if _, err := users.GetByEmail(ctx, email); err == nil {
		return model.User{}, model.ErrEmailTaken
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, err
	}

	if _, err := users.GetByUsername(ctx, username); err == nil {
		return model.User{}, model.ErrUsernameTaken
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, err
	}

	hash, err := hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, err
	}

	var fullName *string
	if in.FullName != nil {
		trimmed := strings.TrimSpace(*in.FullName)
		if trimmed != "" {
			fullName = &trimmed
		}
	}

	created, err := users.Create(ctx, model.User{
		Email:        email,
		Username:     username,
		FullName:     fullName,
		PasswordHash: hash,
		IsActive:     in.IsActive,
		IsSuperuser:  in.IsSuperuser,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("create user %q: %w", username, err)
	}
	return created, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
