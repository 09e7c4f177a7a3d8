package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	Orders       OrdersConfig
	Visits       VisitsConfig
	Payments     PaymentsConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Payments.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env            string        `envconfig:"GMCHICKS_APP_ENV" required:"true"`
	Port           string        `envconfig:"GMCHICKS_APP_PORT" required:"true"`
	LogLevel       string        `envconfig:"GMCHICKS_LOG_LEVEL" default:"info"`
	LogWarnStack   bool          `envconfig:"GMCHICKS_LOG_WARN_STACK" default:"false"`
	RequestTimeout time.Duration `envconfig:"GMCHICKS_HTTP_REQUEST_TIMEOUT" default:"15s"`
	FrontendURL    string        `envconfig:"GMCHICKS_FRONTEND_URL"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"GMCHICKS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GMCHICKS_DB_DSN"`
	Driver string `envconfig:"GMCHICKS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GMCHICKS_DB_HOST"`
	LegacyPort     int    `envconfig:"GMCHICKS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GMCHICKS_DB_USER"`
	LegacyPassword string `envconfig:"GMCHICKS_DB_PASSWORD"`
	LegacyName     string `envconfig:"GMCHICKS_DB_NAME"`
	LegacySSLMode  string `envconfig:"GMCHICKS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GMCHICKS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GMCHICKS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GMCHICKS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GMCHICKS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GMCHICKS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GMCHICKS_REDIS_ADDR"`
	Password     string        `envconfig:"GMCHICKS_REDIS_PASSWORD"`
	DB           int           `envconfig:"GMCHICKS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GMCHICKS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GMCHICKS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GMCHICKS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GMCHICKS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GMCHICKS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig holds the verification settings for bearer tokens minted by the
// identity provider.
type JWTConfig struct {
	Secret            string `envconfig:"GMCHICKS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GMCHICKS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GMCHICKS_JWT_EXPIRATION_MINUTES" default:"10080"`
}

type RateLimitConfig struct {
	Window time.Duration `envconfig:"GMCHICKS_RATE_LIMIT_WINDOW" default:"15m"`
	Limit  int           `envconfig:"GMCHICKS_RATE_LIMIT_MAX" default:"100"`
}

type OrdersConfig struct {
	PendingTTL        time.Duration `envconfig:"GMCHICKS_ORDER_PENDING_TTL" default:"48h"`
	LowStockThreshold int           `envconfig:"GMCHICKS_LOW_STOCK_THRESHOLD" default:"20"`
}

type VisitsConfig struct {
	SlotCapacity int    `envconfig:"GMCHICKS_VISIT_SLOT_CAPACITY" default:"15"`
	HorizonDays  int    `envconfig:"GMCHICKS_VISIT_HORIZON_DAYS" default:"90"`
	TimeZone     string `envconfig:"GMCHICKS_FARM_TIMEZONE" default:"Africa/Nairobi"`
}

type PaymentsConfig struct {
	Mode        string        `envconfig:"GMCHICKS_PAYMENTS_MODE" default:"dev"`
	URL         string        `envconfig:"GMCHICKS_PAYMENTS_URL"`
	APIKey      string        `envconfig:"GMCHICKS_PAYMENTS_API_KEY"`
	CallbackURL string        `envconfig:"GMCHICKS_PAYMENTS_CALLBACK_URL"`
	Timeout     time.Duration `envconfig:"GMCHICKS_PAYMENTS_TIMEOUT" default:"20s"`
}

func (p PaymentsConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(p.Mode)) {
	case PaymentsModeDev:
		return nil
	case PaymentsModeHTTP:
		if p.URL == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvPaymentsURL, EnvPaymentsMode, PaymentsModeHTTP)
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvPaymentsMode, p.Mode)
	}
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GMCHICKS_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"GMCHICKS_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"GMCHICKS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"GMCHICKS_PUBSUB_ORDERS_TOPIC" default:"gmchicks-orders"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"GMCHICKS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"GMCHICKS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"GMCHICKS_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"GMCHICKS_OUTBOX_RETENTION_DAYS" default:"30"`
}

// CronConfig drives the scheduled maintenance worker.
type CronConfig struct {
	Interval    time.Duration `envconfig:"GMCHICKS_CRON_INTERVAL" default:"15m"`
	LockTTL     time.Duration `envconfig:"GMCHICKS_CRON_LOCK_TTL" default:"10m"`
	ExpiryBatch int           `envconfig:"GMCHICKS_CRON_EXPIRY_BATCH" default:"200"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
