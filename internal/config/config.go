package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvTesting     = "testing"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

var (
	validEnvironments = []string{EnvDevelopment, EnvTesting, EnvStaging, EnvProduction}
	validAlgorithms   = []string{"HS256", "HS384", "HS512"}
	validLogFormats   = []string{"json", "pretty"}
)

// Config is built once at start-up and shared read-only afterwards.
type Config struct {
	AppName     string
	Version     string
	Environment string
	Debug       bool

	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration
	APIPrefix               string

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32
	AutoMigrate bool

	SecretKey        string
	Algorithm        string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	PasswordResetTTL time.Duration
	BcryptRounds     int
	PasswordResetURL string

	LogLevel  string
	LogFormat string

	CORSOrigins       []string
	RateLimitRPM      int
	AuthRateLimitRPM  int
	TrustProxyHeaders bool

	OpenAIAPIKey       string
	OpenAIModel        string
	OpenRouterAPIKey   string
	OpenRouterModel    string
	OpenRouterBaseURL  string
	OpenRouterReferer  string
	OpenRouterAppTitle string
}

func Load() (*Config, error) {
	environment := strings.ToLower(getEnv("ENVIRONMENT", EnvDevelopment))
	// Per-environment overrides first; godotenv never overwrites values already set.
	_ = godotenv.Load(".env." + environment)
	_ = godotenv.Load()

	cfg := &Config{
		AppName:     getEnv("APP_NAME", "go-auth-api"),
		Version:     getEnv("VERSION", "1.0.0"),
		Environment: environment,
		Debug:       getBool("DEBUG", false),

		ServerPort:              getEnv("SERVER_PORT", "8000"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 90*time.Second),
		APIPrefix:               strings.TrimRight(getEnv("API_PREFIX", "/api/v1"), "/"),

		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 1)),
		AutoMigrate: getBool("AUTO_MIGRATE", true),

		SecretKey:        strings.TrimSpace(os.Getenv("SECRET_KEY")),
		Algorithm:        strings.ToUpper(getEnv("ALGORITHM", "HS256")),
		AccessTokenTTL:   time.Duration(getInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		RefreshTokenTTL:  time.Duration(getInt("REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,
		PasswordResetTTL: time.Duration(getInt("PASSWORD_RESET_EXPIRE_MINUTES", 15)) * time.Minute,
		BcryptRounds:     getInt("BCRYPT_ROUNDS", 12),
		PasswordResetURL: getEnv("PASSWORD_RESET_URL", "http://localhost:3000/reset-password"),

		LogLevel:  strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "json")),

		CORSOrigins:       splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080")),
		RateLimitRPM:      getInt("RATE_LIMIT_RPM", 100),
		AuthRateLimitRPM:  getInt("AUTH_RATE_LIMIT_RPM", 10),
		// Only enable behind a proxy that overwrites X-Forwarded-For.
		TrustProxyHeaders: getBool("TRUST_PROXY_HEADERS", false),

		OpenAIAPIKey:       strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenRouterAPIKey:   strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")),
		OpenRouterModel:    getEnv("OPENROUTER_MODEL", "openrouter/auto"),
		OpenRouterBaseURL:  getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterReferer:  strings.TrimSpace(os.Getenv("OPENROUTER_REFERER")),
		OpenRouterAppTitle: strings.TrimSpace(os.Getenv("OPENROUTER_APP_TITLE")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if !slices.Contains(validEnvironments, c.Environment) {
		return fmt.Errorf("ENVIRONMENT must be one of %s", strings.Join(validEnvironments, ", "))
	}

	if c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}

	if len(c.SecretKey) < 32 {
		return fmt.Errorf("SECRET_KEY must be at least 32 characters long")
	}

	if !slices.Contains(validAlgorithms, c.Algorithm) {
		return fmt.Errorf("ALGORITHM must be one of %s", strings.Join(validAlgorithms, ", "))
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.APIPrefix == "" || !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("API_PREFIX must start with '/'")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 || c.PasswordResetTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}

	if c.BcryptRounds < 4 || c.BcryptRounds > 31 {
		return fmt.Errorf("BCRYPT_ROUNDS must be between 4 and 31")
	}

	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS/DB_MAX_CONNS are inconsistent")
	}

	if !slices.Contains(validLogFormats, c.LogFormat) {
		return fmt.Errorf("LOG_FORMAT must be one of %s", strings.Join(validLogFormats, ", "))
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
