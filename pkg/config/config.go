package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Currency      CurrencyConfig
	Metrics       MetricsConfig
	CORS          CORSConfig
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the environment, resolves the database driver and DSN, and
// validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.resolveDatabase(); err != nil {
		return nil, err
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// resolveDatabase forces sqlite when the flag is set and otherwise makes sure
// postgres has a DSN.
func (c *Config) resolveDatabase() error {
	if c.FeatureFlags.UseSQLite {
		if c.App.IsProd() {
			return fmt.Errorf("%s is not allowed in %s", EnvUseSQLite, AppEnvProd)
		}
		c.DB.Driver = "sqlite"
	}
	if c.DB.Driver == "sqlite" || c.DB.DSN != "" {
		return nil
	}
	dsn, err := c.DB.legacyDSN()
	if err != nil {
		return err
	}
	c.DB.DSN = dsn
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"LEDGERVIEW_APP_ENV" required:"true" validate:"required"`
	Port         string `envconfig:"LEDGERVIEW_APP_PORT" required:"true" validate:"required"`
	LogLevel     string `envconfig:"LEDGERVIEW_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LEDGERVIEW_LOG_FORMAT" default:"json" validate:"oneof=json console"`
	LogWarnStack bool   `envconfig:"LEDGERVIEW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `envconfig:"LEDGERVIEW_HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"LEDGERVIEW_HTTP_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `envconfig:"LEDGERVIEW_HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"LEDGERVIEW_HTTP_SHUTDOWN_TIMEOUT" default:"15s"`
}

type DBConfig struct {
	DSN        string `envconfig:"LEDGERVIEW_DB_DSN"`
	Driver     string `envconfig:"LEDGERVIEW_DB_DRIVER" default:"postgres" validate:"oneof=postgres sqlite"`
	SQLitePath string `envconfig:"LEDGERVIEW_DB_SQLITE_PATH" default:"ledgerview.db"`

	LegacyHost     string `envconfig:"LEDGERVIEW_DB_HOST"`
	LegacyPort     int    `envconfig:"LEDGERVIEW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LEDGERVIEW_DB_USER"`
	LegacyPassword string `envconfig:"LEDGERVIEW_DB_PASSWORD"`
	LegacyName     string `envconfig:"LEDGERVIEW_DB_NAME"`
	LegacySSLMode  string `envconfig:"LEDGERVIEW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LEDGERVIEW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LEDGERVIEW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LEDGERVIEW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LEDGERVIEW_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQuery is the duration above which statements are logged at warn.
	SlowQuery time.Duration `envconfig:"LEDGERVIEW_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LEDGERVIEW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LEDGERVIEW_REDIS_ADDR"`
	Password     string        `envconfig:"LEDGERVIEW_REDIS_PASSWORD"`
	DB           int           `envconfig:"LEDGERVIEW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LEDGERVIEW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LEDGERVIEW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LEDGERVIEW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LEDGERVIEW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LEDGERVIEW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"LEDGERVIEW_JWT_SECRET" required:"true" validate:"required"`
	Issuer                 string `envconfig:"LEDGERVIEW_JWT_ISSUER" required:"true" validate:"required"`
	ExpirationMinutes      int    `envconfig:"LEDGERVIEW_JWT_EXPIRATION_MINUTES" required:"true" validate:"gt=0"`
	RefreshTokenTTLMinutes int    `envconfig:"LEDGERVIEW_REFRESH_TOKEN_TTL_MINUTES" default:"43200" validate:"gtfield=ExpirationMinutes"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LEDGERVIEW_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LEDGERVIEW_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LEDGERVIEW_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LEDGERVIEW_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LEDGERVIEW_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"LEDGERVIEW_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"LEDGERVIEW_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"LEDGERVIEW_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"LEDGERVIEW_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"LEDGERVIEW_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"LEDGERVIEW_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LEDGERVIEW_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LEDGERVIEW_AUTO_MIGRATE" default:"false"`
}

// CurrencyConfig controls the marker used when rendering money for display.
type CurrencyConfig struct {
	Marker string `envconfig:"LEDGERVIEW_CURRENCY_MARKER" default:"R" validate:"max=8"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"LEDGERVIEW_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"LEDGERVIEW_METRICS_PATH" default:"/metrics" validate:"startswith=/"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"LEDGERVIEW_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
