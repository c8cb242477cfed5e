package config

// EnvPrefix is passed to envconfig; tagged fields resolve through their bare tag name.
const EnvPrefix = "LEDGERVIEW"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "LEDGERVIEW_APP_ENV"
	EnvPort      = "LEDGERVIEW_APP_PORT"
	EnvLogLevel  = "LEDGERVIEW_LOG_LEVEL"
	EnvLogFormat = "LEDGERVIEW_LOG_FORMAT"

	EnvDBDSN  = "LEDGERVIEW_DB_DSN"
	EnvDBHost = "LEDGERVIEW_DB_HOST"
	EnvDBUser = "LEDGERVIEW_DB_USER"
	EnvDBName = "LEDGERVIEW_DB_NAME"

	EnvRedisURL = "LEDGERVIEW_REDIS_URL"

	EnvJWTSecret              = "LEDGERVIEW_JWT_SECRET"
	EnvJWTIssuer              = "LEDGERVIEW_JWT_ISSUER"
	EnvJWTExpMins             = "LEDGERVIEW_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "LEDGERVIEW_REFRESH_TOKEN_TTL_MINUTES"

	EnvUseSQLite      = "LEDGERVIEW_USE_SQLITE"
	EnvCurrencyMarker = "LEDGERVIEW_CURRENCY_MARKER"
)
