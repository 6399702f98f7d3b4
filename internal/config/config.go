package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/hongminglow/homeride-be/internal/auth"
	"github.com/hongminglow/homeride-be/internal/logging"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	AutoMigrate bool

	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	PasswordPepper string
	HashAlgorithm  string

	CORSOrigins []string
	LogLevel    string
	LogFormat   string
	// TrustProxy honours X-Forwarded-For style headers for the client IP.
	// Leave it off unless a reverse proxy rewrites them.
	TrustProxy bool

	AuthRatePerMinute int
	AuthRateBurst     int
}

// Load reads configuration from the environment. A missing signing key or
// pepper is an error; the caller is expected to exit.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", logging.FormatJSON)
	v.SetDefault("PASSWORD_HASH_ALGORITHM", auth.AlgorithmArgon2id)
	v.SetDefault("AUTO_MIGRATE", false)
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("AUTH_RATE_LIMIT_PER_MINUTE", 10)
	v.SetDefault("AUTH_RATE_LIMIT_BURST", 5)

	cfg := Config{
		Port:              strings.TrimSpace(v.GetString("PORT")),
		Env:               strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		DatabaseURL:       strings.TrimSpace(v.GetString("DATABASE_URL")),
		AutoMigrate:       v.GetBool("AUTO_MIGRATE"),
		JWTSecret:         strings.TrimSpace(v.GetString("JWT_SECRET")),
		JWTIssuer:         strings.TrimSpace(v.GetString("JWT_ISSUER")),
		JWTAudience:       strings.TrimSpace(v.GetString("JWT_AUDIENCE")),
		PasswordPepper:    v.GetString("PASSWORD_PEPPER"),
		HashAlgorithm:     strings.ToLower(strings.TrimSpace(v.GetString("PASSWORD_HASH_ALGORITHM"))),
		CORSOrigins:       parseCSV(v.GetString("CORS_ALLOWED_ORIGINS")),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         strings.ToLower(strings.TrimSpace(v.GetString("LOG_FORMAT"))),
		TrustProxy:        v.GetBool("TRUST_PROXY"),
		AuthRatePerMinute: v.GetInt("AUTH_RATE_LIMIT_PER_MINUTE"),
		AuthRateBurst:     v.GetInt("AUTH_RATE_LIMIT_BURST"),
	}

	var errs []error
	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if strings.TrimSpace(cfg.PasswordPepper) == "" {
		errs = append(errs, errors.New("PASSWORD_PEPPER is required"))
	}
	if err := logging.ValidateFormat(cfg.LogFormat); err != nil {
		errs = append(errs, err)
	}
	if cfg.AuthRatePerMinute <= 0 || cfg.AuthRateBurst <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT_PER_MINUTE and AUTH_RATE_LIMIT_BURST must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RequireDatabase reports an error when no database is configured.
func (c Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}

// LoadDatabaseURL reads only DATABASE_URL, for commands such as migrations
// that never touch credentials.
func LoadDatabaseURL() (string, error) {
	v := viper.New()
	v.AutomaticEnv()
	cfg := Config{DatabaseURL: strings.TrimSpace(v.GetString("DATABASE_URL"))}
	if err := cfg.RequireDatabase(); err != nil {
		return "", err
	}
	return cfg.DatabaseURL, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// IsDevelopment disables the Secure cookie flag so local HTTP works.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// HashConfig returns the password hashing parameters.
func (c Config) HashConfig() auth.HashConfig {
	return auth.HashConfig{Algorithm: c.HashAlgorithm}
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
