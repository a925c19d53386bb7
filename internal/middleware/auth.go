package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go-auth-api/internal/model"
	"go-auth-api/internal/security"
	"go-auth-api/pkg/apierror"
)

type tokenVerifier interface {
	Verify(tokenString string, expected security.TokenType) (security.Claims, error)
}

type userLoader interface {
	GetByID(ctx context.Context, id int64) (model.User, error)
}

type contextKey string

const (
	userContextKey   contextKey = "auth_user"
	userIDContextKey contextKey = "auth_user_id"
)

// AuthGuard turns an Authorization header into the current user. Each step
// is usable on its own; the http adapters below chain them.
type AuthGuard struct {
	tokens tokenVerifier
	users  userLoader
}

func NewAuthGuard(tokens tokenVerifier, users userLoader) *AuthGuard {
	return &AuthGuard{tokens: tokens, users: users}
}

// ResolveUserID validates a bearer access token. Every failure is
// ErrUnauthenticated.
func (g *AuthGuard) ResolveUserID(header string) (int64, error) {
	token, ok := bearerToken(header)
	if !ok {
		return 0, model.ErrUnauthenticated
	}

	claims, err := g.tokens.Verify(token, security.TokenAccess)
	if err != nil {
		return 0, model.ErrUnauthenticated
	}

	id, err := claims.UserID()
	if err != nil {
		return 0, model.ErrUnauthenticated
	}
	return id, nil
}

// ResolveUser loads the account behind a verified id. Missing and inactive
// accounts are ErrUnauthenticated; storage failures pass through.
func (g *AuthGuard) ResolveUser(ctx context.Context, id int64) (model.User, error) {
	user, err := g.users.GetByID(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, model.ErrUnauthenticated
	}
	if err != nil {
		return model.User{}, err
	}
	if !user.IsActive {
		return model.User{}, model.ErrUnauthenticated
	}
	return user, nil
}

func (g *AuthGuard) RequireSuperuser(user model.User) (model.User, error) {
	if !user.IsSuperuser {
		return model.User{}, model.ErrForbidden
	}
	return user, nil
}

// OptionalUserID never fails: an absent or invalid credential means anonymous.
func (g *AuthGuard) OptionalUserID(header string) (int64, bool) {
	if strings.TrimSpace(header) == "" {
		return 0, false
	}
	id, err := g.ResolveUserID(header)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (g *AuthGuard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.ResolveUserID(r.Header.Get("Authorization"))
		if err != nil {
			writeAuthError(w, r, err)
			return
		}

		user, err := g.ResolveUser(r.Context(), id)
		if err != nil {
			writeAuthError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, userIDContextKey, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SuperuserOnly must run after Authenticate.
func (g *AuthGuard) SuperuserOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeAuthError(w, r, model.ErrUnauthenticated)
			return
		}
		if _, err := g.RequireSuperuser(user); err != nil {
			writeAuthError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *AuthGuard) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := g.OptionalUserID(r.Header.Get("Authorization")); ok {
			r = r.WithContext(context.WithValue(r.Context(), userIDContextKey, id))
		}
		next.ServeHTTP(w, r)
	})
}

func UserFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(userContextKey).(model.User)
	return user, ok
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDContextKey).(int64)
	return id, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrForbidden):
		writeAPIError(w, apierror.Forbidden("Not enough privileges"))
	case errors.Is(err, model.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeAPIError(w, apierror.Unauthenticated("Incorrect credentials"))
	default:
		slog.ErrorContext(r.Context(), "failed to resolve current user", "request_id", RequestIDFromContext(r.Context()), "error", err)
		writeAPIError(w, apierror.Internal())
	}
}
