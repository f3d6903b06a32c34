package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"postboard/cmd/internal/posts"
	"postboard/cmd/internal/realtime"
	"postboard/cmd/internal/storage"
	"postboard/cmd/security/password"
	"postboard/cmd/security/token"
)

// Deployment environments.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Version is reported by /health.
const Version = "1.0.0"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr    string `env:"POSTBOARD_HTTP_ADDR" envDefault:"0.0.0.0:8000"`
	Environment string `env:"POSTBOARD_ENV" envDefault:"development"`
	LogLevel    string `env:"POSTBOARD_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"POSTBOARD_LOG_FORMAT" envDefault:"json"`

	ReadHeaderTimeout time.Duration `env:"POSTBOARD_HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ReadTimeout       time.Duration `env:"POSTBOARD_HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout      time.Duration `env:"POSTBOARD_HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout       time.Duration `env:"POSTBOARD_HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout   time.Duration `env:"POSTBOARD_HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxHeaderBytes    int           `env:"POSTBOARD_HTTP_MAX_HEADER_BYTES" envDefault:"1048576"`
	MaxPayloadBytes   int64         `env:"POSTBOARD_MAX_PAYLOAD_BYTES" envDefault:"1048576"`

	DatabaseURL   string `env:"POSTBOARD_DATABASE_URL"`
	DBSchema      string `env:"POSTBOARD_DB_SCHEMA" envDefault:"postboard"`
	DBMaxConns    int32  `env:"POSTBOARD_DB_MAX_CONNS" envDefault:"10"`
	DBMinConns    int32  `env:"POSTBOARD_DB_MIN_CONNS" envDefault:"0"`
	DBAutoMigrate bool   `env:"POSTBOARD_DB_AUTO_MIGRATE" envDefault:"true"`
	SQLitePath    string `env:"POSTBOARD_SQLITE_PATH"`

	TokenSecret string        `env:"POSTBOARD_TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"POSTBOARD_TOKEN_TTL" envDefault:"30m"`
	TokenIssuer string        `env:"POSTBOARD_TOKEN_ISSUER" envDefault:"postboard"`

	PasswordAlgorithm string `env:"POSTBOARD_PASSWORD_ALGORITHM" envDefault:"argon2id"`
	BcryptCost        int    `env:"POSTBOARD_BCRYPT_COST" envDefault:"12"`
	Argon2MemoryKiB   uint32 `env:"POSTBOARD_ARGON2_MEMORY_KIB" envDefault:"65536"`
	Argon2Iterations  uint32 `env:"POSTBOARD_ARGON2_ITERATIONS" envDefault:"3"`
	Argon2Parallelism uint8  `env:"POSTBOARD_ARGON2_PARALLELISM"`

	CacheTTL    time.Duration `env:"POSTBOARD_CACHE_TTL" envDefault:"5m"`
	CacheShards int           `env:"POSTBOARD_CACHE_SHARDS" envDefault:"32"`

	CORSAllowedOrigins   []string `env:"POSTBOARD_CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	CORSAllowCredentials bool     `env:"POSTBOARD_CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	CORSMaxAgeSeconds    int      `env:"POSTBOARD_CORS_MAX_AGE_SECONDS" envDefault:"600"`

	WSEnabled         bool          `env:"POSTBOARD_WS_ENABLED" envDefault:"true"`
	WSOriginRequired  bool          `env:"POSTBOARD_WS_ORIGIN_REQUIRED" envDefault:"false"`
	WSAllowedOrigins  []string      `env:"POSTBOARD_WS_ALLOWED_ORIGINS" envDefault:"http://localhost,http://127.0.0.1" envSeparator:","`
	WSSendQueue       int           `env:"POSTBOARD_WS_SEND_QUEUE" envDefault:"64"`
	WSWriteTimeout    time.Duration `env:"POSTBOARD_WS_WRITE_TIMEOUT" envDefault:"5s"`
	WSReadIdleTimeout time.Duration `env:"POSTBOARD_WS_READ_IDLE_TIMEOUT" envDefault:"2m"`
	WSHeartbeat       time.Duration `env:"POSTBOARD_WS_HEARTBEAT_INTERVAL" envDefault:"25s"`
}

// LoadConfig parses the environment and validates the result.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error

	switch c.Environment {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("POSTBOARD_ENV: unknown environment %q", c.Environment))
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("POSTBOARD_LOG_FORMAT: want json or text, got %q", c.LogFormat))
	}
	if strings.TrimSpace(c.HTTPAddr) == "" {
		errs = append(errs, errors.New("POSTBOARD_HTTP_ADDR is required"))
	}
	if c.MaxPayloadBytes <= 0 {
		errs = append(errs, errors.New("POSTBOARD_MAX_PAYLOAD_BYTES must be positive"))
	}
	if c.DatabaseURL != "" {
		if !storage.ValidSchema(c.DBSchema) {
			errs = append(errs, fmt.Errorf("POSTBOARD_DB_SCHEMA: invalid identifier %q", c.DBSchema))
		}
		if c.DBMaxConns > 0 && c.DBMinConns > c.DBMaxConns {
			errs = append(errs, errors.New("POSTBOARD_DB_MIN_CONNS exceeds POSTBOARD_DB_MAX_CONNS"))
		}
	}
	if c.TokenSecret == "" && c.Environment == EnvProduction {
		errs = append(errs, errors.New("POSTBOARD_TOKEN_SECRET is required in production"))
	}
	if c.TokenSecret != "" && len(c.TokenSecret) < token.MinSecretBytes {
		errs = append(errs, fmt.Errorf("POSTBOARD_TOKEN_SECRET must be at least %d bytes", token.MinSecretBytes))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("POSTBOARD_TOKEN_TTL must be positive"))
	}
	if _, err := c.PasswordConfig().Check(); err != nil {
		errs = append(errs, fmt.Errorf("password settings: %w", err))
	}

	return errors.Join(errs...)
}

// PasswordConfig derives the credential hasher settings.
func (c Config) PasswordConfig() password.Config {
	pc := password.DefaultConfig()
	if c.PasswordAlgorithm != "" {
		pc.Algorithm = c.PasswordAlgorithm
	}
	if c.BcryptCost > 0 {
		pc.BcryptCost = c.BcryptCost
	}
	if c.Argon2MemoryKiB > 0 {
		pc.Params.MemoryKiB = c.Argon2MemoryKiB
	}
	if c.Argon2Iterations > 0 {
		pc.Params.Iterations = c.Argon2Iterations
	}
	if c.Argon2Parallelism > 0 {
		pc.Params.Parallelism = c.Argon2Parallelism
	}
	return pc
}

// TokenConfig derives the token manager settings for secret.
func (c Config) TokenConfig(secret []byte) token.Config {
	return token.Config{
		Secret: secret,
		TTL:    c.TokenTTL,
		Issuer: c.TokenIssuer,
	}
}

// CacheConfig derives the post cache settings.
func (c Config) CacheConfig() posts.CacheConfig {
	return posts.CacheConfig{TTL: c.CacheTTL, Shards: c.CacheShards}
}

// GatewayConfig derives the websocket gateway settings.
func (c Config) GatewayConfig() realtime.GatewayConfig {
	return realtime.GatewayConfig{
		OriginRequired:    c.WSOriginRequired,
		AllowedOrigins:    c.WSAllowedOrigins,
		WriteTimeout:      c.WSWriteTimeout,
		ReadIdleTimeout:   c.WSReadIdleTimeout,
		SendQueueSize:     c.WSSendQueue,
		HeartbeatInterval: c.WSHeartbeat,
	}
}
