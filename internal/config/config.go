package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AuthModeDev    = "dev"
	AuthModeJWT    = "jwt"
	AuthModeRemote = "remote"
)

type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	DBDSN          string `mapstructure:"DB_DSN"`
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`

	AuthMode        string `mapstructure:"AUTH_MODE"`
	AuthJWTSecret   string `mapstructure:"AUTH_JWT_SECRET"`
	AuthJWTIssuer   string `mapstructure:"AUTH_JWT_ISSUER"`
	AuthJWTAudience string `mapstructure:"AUTH_JWT_AUDIENCE"`

	IDPBaseURL      string `mapstructure:"IDP_BASE_URL"`
	IDPAPIKey       string `mapstructure:"IDP_API_KEY"`
	IDPAPIKeyHeader string `mapstructure:"IDP_API_KEY_HEADER"`
	IDPSignInURL    string `mapstructure:"IDP_SIGN_IN_URL"`
	IDPSignUpURL    string `mapstructure:"IDP_SIGN_UP_URL"`

	SessionCookie   string        `mapstructure:"SESSION_COOKIE"`
	SessionCacheTTL time.Duration `mapstructure:"SESSION_CACHE_TTL"`
	RedisURL        string        `mapstructure:"REDIS_URL"`

	LabCompletionPolicy string `mapstructure:"LAB_COMPLETION_POLICY"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	AppName   string `mapstructure:"APP_NAME"`
}

var keys = []string{
	"PORT", "ENV",
	"DB_DSN", "DB_MAX_OPEN_CONNS",
	"AUTH_MODE", "AUTH_JWT_SECRET", "AUTH_JWT_ISSUER", "AUTH_JWT_AUDIENCE",
	"IDP_BASE_URL", "IDP_API_KEY", "IDP_API_KEY_HEADER", "IDP_SIGN_IN_URL", "IDP_SIGN_UP_URL",
	"SESSION_COOKIE", "SESSION_CACHE_TTL", "REDIS_URL",
	"LAB_COMPLETION_POLICY",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"LOG_LEVEL", "LOG_FORMAT", "APP_NAME",
}

// Load lee env vars (y un .env opcional en el cwd).
func Load() (*Config, error) {
	return load(viper.New(), ".env")
}

func load(v *viper.Viper, envFile string) (*Config, error) {
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
	}
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("AUTH_MODE", "")
	v.SetDefault("IDP_API_KEY_HEADER", "X-Api-Key")
	v.SetDefault("IDP_SIGN_IN_URL", "/sign-in")
	v.SetDefault("IDP_SIGN_UP_URL", "/sign-up")
	v.SetDefault("SESSION_COOKIE", "__session")
	v.SetDefault("SESSION_CACHE_TTL", "1m")
	v.SetDefault("LAB_COMPLETION_POLICY", "first_result")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("APP_NAME", "health-dashboard")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env es opcional
	if envFile != "" {
		_ = v.ReadInConfig()
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ResolvedAuthMode: AUTH_MODE explícito gana; si no,
//   - AUTH_JWT_SECRET seteado => jwt
//   - IDP_BASE_URL seteado    => remote
//   - si no                   => dev (solo permitido con ENV=development)
func (c *Config) ResolvedAuthMode() string {
	if m := strings.ToLower(strings.TrimSpace(c.AuthMode)); m != "" {
		return m
	}
	if c.AuthJWTSecret != "" {
		return AuthModeJWT
	}
	if c.IDPBaseURL != "" {
		return AuthModeRemote
	}
	return AuthModeDev
}

func (c *Config) Validate() error {
	switch c.ResolvedAuthMode() {
	case AuthModeDev:
		if !c.IsDev() {
			return fmt.Errorf("AUTH_MODE=dev is only allowed with ENV=development (current ENV=%q)", c.Env)
		}
	case AuthModeJWT:
		if c.AuthJWTSecret == "" {
			return fmt.Errorf("AUTH_JWT_SECRET is required when AUTH_MODE is %q", AuthModeJWT)
		}
	case AuthModeRemote:
		if c.IDPBaseURL == "" || c.IDPAPIKey == "" {
			return fmt.Errorf("IDP_BASE_URL and IDP_API_KEY are required when AUTH_MODE is %q", AuthModeRemote)
		}
	default:
		return fmt.Errorf("AUTH_MODE must be %q, %q or %q, got %q", AuthModeDev, AuthModeJWT, AuthModeRemote, c.AuthMode)
	}

	switch c.LabCompletionPolicy {
	case "first_result", "all_tests":
	default:
		return fmt.Errorf("LAB_COMPLETION_POLICY must be \"first_result\" or \"all_tests\", got %q", c.LabCompletionPolicy)
	}

	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	return nil
}

// Addr devuelve ":<PORT>".
func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}
