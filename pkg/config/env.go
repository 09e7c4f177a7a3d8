package config

// EnvPrefix is passed to envconfig; every field also carries its full
// variable name so lookups fall back to the unprefixed key.
const EnvPrefix = "GMCHICKS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	PaymentsModeDev  = "dev"
	PaymentsModeHTTP = "http"
)

const (
	EnvAppEnv         = "GMCHICKS_APP_ENV"
	EnvPort           = "GMCHICKS_APP_PORT"
	EnvLogLevel       = "GMCHICKS_LOG_LEVEL"
	EnvRequestTimeout = "GMCHICKS_HTTP_REQUEST_TIMEOUT"
	EnvFrontendURL    = "GMCHICKS_FRONTEND_URL"

	EnvDBDSN  = "GMCHICKS_DB_DSN"
	EnvDBHost = "GMCHICKS_DB_HOST"
	EnvDBPort = "GMCHICKS_DB_PORT"
	EnvDBUser = "GMCHICKS_DB_USER"
	EnvDBPass = "GMCHICKS_DB_PASSWORD"
	EnvDBName = "GMCHICKS_DB_NAME"

	EnvRedisURL = "GMCHICKS_REDIS_URL"

	EnvJWTSecret = "GMCHICKS_JWT_SECRET"
	EnvJWTIssuer = "GMCHICKS_JWT_ISSUER"

	EnvRateLimitWindow = "GMCHICKS_RATE_LIMIT_WINDOW"
	EnvRateLimitMax    = "GMCHICKS_RATE_LIMIT_MAX"

	EnvOrderPendingTTL   = "GMCHICKS_ORDER_PENDING_TTL"
	EnvVisitSlotCapacity = "GMCHICKS_VISIT_SLOT_CAPACITY"

	EnvPaymentsMode = "GMCHICKS_PAYMENTS_MODE"
	EnvPaymentsURL  = "GMCHICKS_PAYMENTS_URL"

	EnvGCPProjectID      = "GMCHICKS_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic = "GMCHICKS_PUBSUB_ORDERS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
