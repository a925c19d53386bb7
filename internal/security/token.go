package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	TokenAccess        TokenType = "access"
	TokenRefresh       TokenType = "refresh"
	TokenPasswordReset TokenType = "password_reset"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrWrongTokenType = errors.New("wrong token type")
)

const (
	claimSubject   = "sub"
	claimIssuedAt  = "iat"
	claimExpiresAt = "exp"
	claimType      = "type"
)

type TokenConfig struct {
	Secret     string
	Algorithm  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ResetTTL   time.Duration
}

// Claims is the verified content of a token.
type Claims struct {
	Subject   string
	Type      TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
}

// UserID interprets the subject of an access or refresh token.
func (c Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

type TokenCodecOption func(*TokenCodec)

// WithClock replaces the time source used for iat/exp and expiry checks.
func WithClock(now func() time.Time) TokenCodecOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

// TokenCodec signs and verifies JWTs with a single HMAC algorithm. It holds no
// mutable state and never performs I/O.
type TokenCodec struct {
	key        []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

func NewTokenCodec(cfg TokenConfig, opts ...TokenCodecOption) (*TokenCodec, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("token secret is required")
	}

	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported token algorithm %q", cfg.Algorithm)
	}

	codec := &TokenCodec{
		key:        []byte(cfg.Secret),
		method:     method,
		accessTTL:  orDefault(cfg.AccessTTL, 30*time.Minute),
		refreshTTL: orDefault(cfg.RefreshTTL, 7*24*time.Hour),
		resetTTL:   orDefault(cfg.ResetTTL, 15*time.Minute),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(codec)
	}

	codec.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return codec.now() }),
	)

	return codec, nil
}

func (c *TokenCodec) AccessTTL() time.Duration {
	return c.accessTTL
}

// Issue signs a token for subject. Reserved claims always win over extra.
func (c *TokenCodec) Issue(subject string, typ TokenType, ttl time.Duration, extra map[string]any) (string, error) {
	now := c.now()

	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	claims[claimSubject] = subject
	claims[claimIssuedAt] = jwt.NewNumericDate(now)
	claims[claimExpiresAt] = jwt.NewNumericDate(now.Add(ttl))
	claims[claimType] = string(typ)

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (c *TokenCodec) IssueAccess(userID int64) (string, error) {
	return c.Issue(strconv.FormatInt(userID, 10), TokenAccess, c.accessTTL, nil)
}

func (c *TokenCodec) IssueRefresh(userID int64) (string, error) {
	return c.Issue(strconv.FormatInt(userID, 10), TokenRefresh, c.refreshTTL, nil)
}

func (c *TokenCodec) IssuePasswordReset(email string) (string, error) {
	return c.Issue(email, TokenPasswordReset, c.resetTTL, nil)
}

// Verify checks signature, then expiry, then the token type.
func (c *TokenCodec) Verify(tokenString string, expected TokenType) (Claims, error) {
	parsed, err := c.parser.ParseWithClaims(tokenString, jwt.MapClaims{}, func(*jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	subject, err := mapClaims.GetSubject()
	if err != nil || subject == "" {
		return Claims{}, ErrInvalidToken
	}

	typ, _ := mapClaims[claimType].(string)
	if TokenType(typ) != expected {
		return Claims{}, ErrWrongTokenType
	}

	claims := Claims{
		Subject: subject,
		Type:    TokenType(typ),
		Extra:   map[string]any{},
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	for k, v := range mapClaims {
		switch k {
		case claimSubject, claimIssuedAt, claimExpiresAt, claimType:
			continue
		}
		claims.Extra[k] = v
	}

	return claims, nil
}

// VerifyPasswordReset returns the email a reset token was issued for.
func (c *TokenCodec) VerifyPasswordReset(tokenString string) (string, error) {
	claims, err := c.Verify(tokenString, TokenPasswordReset)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func orDefault(v time.Duration, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}
