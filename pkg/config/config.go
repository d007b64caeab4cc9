package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "EVENTDESK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	EnvAppEnv     = "EVENTDESK_APP_ENV"
	EnvPort       = "EVENTDESK_APP_PORT"
	EnvLogLevel   = "EVENTDESK_LOG_LEVEL"
	EnvDBDSN      = "EVENTDESK_DB_DSN"
	EnvDBHost     = "EVENTDESK_DB_HOST"
	EnvDBUser     = "EVENTDESK_DB_USER"
	EnvDBName     = "EVENTDESK_DB_NAME"
	EnvRedisURL   = "EVENTDESK_REDIS_URL"
	EnvJWTSecret  = "EVENTDESK_JWT_SECRET"
	EnvJWTIssuer  = "EVENTDESK_JWT_ISSUER"
	EnvJWTExpMins = "EVENTDESK_JWT_EXPIRATION_MINUTES"
	EnvUseSQLite  = "EVENTDESK_USE_SQLITE"

	EnvQuotesDefaultTaxRate = "EVENTDESK_QUOTES_DEFAULT_TAX_RATE"
	EnvQuotesRefPrefix      = "EVENTDESK_QUOTES_REFERENCE_PREFIX"

	EnvGCPProjectID         = "EVENTDESK_GCP_PROJECT_ID"
	EnvPubSubQuotesTopic    = "EVENTDESK_PUBSUB_QUOTES_TOPIC"
	EnvPubSubQuotesSub      = "EVENTDESK_PUBSUB_QUOTES_SUBSCRIPTION"
	EnvPubSubQuotesDLQTopic = "EVENTDESK_PUBSUB_QUOTES_DLQ_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Quotes       QuotesConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Maintenance  MaintenanceConfig
}

// Load reads the API configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Quotes.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EVENTDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"EVENTDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"EVENTDESK_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"EVENTDESK_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"EVENTDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"EVENTDESK_DB_DSN"`
	Driver string `envconfig:"EVENTDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"EVENTDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"EVENTDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"EVENTDESK_DB_USER"`
	LegacyPassword string `envconfig:"EVENTDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"EVENTDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"EVENTDESK_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"EVENTDESK_SQLITE_PATH" default:"eventdesk.db"`

	MaxOpenConns    int           `envconfig:"EVENTDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EVENTDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EVENTDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EVENTDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"EVENTDESK_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

// IsSQLite reports whether the local sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"EVENTDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"EVENTDESK_REDIS_ADDR"`
	Password     string        `envconfig:"EVENTDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"EVENTDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EVENTDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EVENTDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EVENTDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EVENTDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EVENTDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"EVENTDESK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"EVENTDESK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"EVENTDESK_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"EVENTDESK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"EVENTDESK_AUTO_MIGRATE" default:"false"`
	Idempotency bool `envconfig:"EVENTDESK_FEATURE_IDEMPOTENCY" default:"true"`
}

type QuotesConfig struct {
	DefaultTaxRate  string        `envconfig:"EVENTDESK_QUOTES_DEFAULT_TAX_RATE" default:"20"`
	ReferencePrefix string        `envconfig:"EVENTDESK_QUOTES_REFERENCE_PREFIX" default:"DEV"`
	CompanyName     string        `envconfig:"EVENTDESK_QUOTES_COMPANY_NAME" default:"EventDesk"`
	DefaultValidity time.Duration `envconfig:"EVENTDESK_QUOTES_DEFAULT_VALIDITY" default:"720h"`
}

// TaxRate returns the configured default VAT percentage.
func (q QuotesConfig) TaxRate() decimal.Decimal {
	rate, err := decimal.NewFromString(strings.TrimSpace(q.DefaultTaxRate))
	if err != nil {
		return decimal.NewFromInt(20)
	}
	return rate
}

func (q QuotesConfig) validate() error {
	rate, err := decimal.NewFromString(strings.TrimSpace(q.DefaultTaxRate))
	if err != nil {
		return fmt.Errorf("%s must be a decimal: %w", EnvQuotesDefaultTaxRate, err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvQuotesDefaultTaxRate)
	}
	if strings.TrimSpace(q.ReferencePrefix) == "" {
		return fmt.Errorf("%s must not be empty", EnvQuotesRefPrefix)
	}
	return nil
}

type GCPConfig struct {
	ProjectID string `envconfig:"EVENTDESK_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	QuotesTopic        string `envconfig:"EVENTDESK_PUBSUB_QUOTES_TOPIC" default:"eventdesk-quote-events"`
	QuotesSubscription string `envconfig:"EVENTDESK_PUBSUB_QUOTES_SUBSCRIPTION"`
	QuotesDLQTopic     string `envconfig:"EVENTDESK_PUBSUB_QUOTES_DLQ_TOPIC"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"EVENTDESK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"EVENTDESK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"EVENTDESK_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// MaintenanceConfig drives the cron worker that prunes relayed outbox rows.
type MaintenanceConfig struct {
	Interval            time.Duration `envconfig:"EVENTDESK_MAINTENANCE_INTERVAL" default:"24h"`
	LockTTL             time.Duration `envconfig:"EVENTDESK_MAINTENANCE_LOCK_TTL" default:"1h"`
	OutboxRetentionDays int           `envconfig:"EVENTDESK_MAINTENANCE_OUTBOX_RETENTION_DAYS" default:"30"`
	DLQRetentionDays    int           `envconfig:"EVENTDESK_MAINTENANCE_DLQ_RETENTION_DAYS" default:"90"`
}

func (db *DBConfig) ensureDSN() error {
	if db.IsSQLite() {
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}
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
