package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "AGROALERT"

	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Env var names shared with tests and deploy scripts.
const (
	EnvAppEnv   = "AGROALERT_APP_ENV"
	EnvPort     = "AGROALERT_APP_PORT"
	EnvDBDSN    = "AGROALERT_DB_DSN"
	EnvRedisURL = "AGROALERT_REDIS_URL"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Store        StoreConfig
	Poll         PollConfig
	Maintenance  MaintenanceConfig
	Push         PushConfig
	CORS         CORSConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AGROALERT_APP_ENV" required:"true"`
	Port         string `envconfig:"AGROALERT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AGROALERT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AGROALERT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"AGROALERT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"AGROALERT_DB_DSN" required:"true"`
	Driver string `envconfig:"AGROALERT_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"AGROALERT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AGROALERT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AGROALERT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AGROALERT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AGROALERT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AGROALERT_REDIS_ADDR"`
	Password     string        `envconfig:"AGROALERT_REDIS_PASSWORD"`
	DB           int           `envconfig:"AGROALERT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AGROALERT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AGROALERT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AGROALERT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AGROALERT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AGROALERT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"AGROALERT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"AGROALERT_AUTO_MIGRATE" default:"false"`
}

// StoreConfig bounds the in-memory notification store and its durable snapshot.
type StoreConfig struct {
	Capacity     int `envconfig:"AGROALERT_STORE_CAPACITY" default:"100"`
	SnapshotSize int `envconfig:"AGROALERT_STORE_SNAPSHOT_SIZE" default:"50"`
}

// PollConfig carries the per-adapter cadences. They are independent knobs;
// changing one never shifts another.
type PollConfig struct {
	WeatherInterval    time.Duration `envconfig:"AGROALERT_POLL_WEATHER_INTERVAL" default:"5m"`
	PriceInterval      time.Duration `envconfig:"AGROALERT_POLL_PRICE_INTERVAL" default:"10m"`
	SeasonalInterval   time.Duration `envconfig:"AGROALERT_POLL_SEASONAL_INTERVAL" default:"60m"`
	GovernmentInterval time.Duration `envconfig:"AGROALERT_POLL_GOVERNMENT_INTERVAL" default:"30m"`
}

type MaintenanceConfig struct {
	EvictionInterval      time.Duration `envconfig:"AGROALERT_MAINTENANCE_EVICTION_INTERVAL" default:"10m"`
	SubscriptionMaxAge    time.Duration `envconfig:"AGROALERT_MAINTENANCE_SUBSCRIPTION_MAX_AGE" default:"2160h"`
	SubscriptionInterval  time.Duration `envconfig:"AGROALERT_MAINTENANCE_SUBSCRIPTION_INTERVAL" default:"24h"`
	SchedulerLockDisabled bool          `envconfig:"AGROALERT_MAINTENANCE_LOCK_DISABLED" default:"false"`
}

type PushConfig struct {
	SendTimeout   time.Duration `envconfig:"AGROALERT_PUSH_SEND_TIMEOUT" default:"10s"`
	PermissionTTL time.Duration `envconfig:"AGROALERT_PUSH_PERMISSION_TTL" default:"0"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"AGROALERT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"AGROALERT_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"AGROALERT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"AGROALERT_GOOGLE_APPLICATION_CREDENTIALS"`
}

// Enabled reports whether the optional GCP integrations should be wired.
func (g GCPConfig) Enabled() bool {
	return strings.TrimSpace(g.ProjectID) != ""
}

type PubSubConfig struct {
	NotificationTopic string `envconfig:"AGROALERT_PUBSUB_NOTIFICATION_TOPIC" default:"agroalert-notification-events"`
}

type BigQueryConfig struct {
	Dataset            string `envconfig:"AGROALERT_BIGQUERY_DATASET" default:"agroalert"`
	DeliveryFactsTable string `envconfig:"AGROALERT_BIGQUERY_DELIVERY_TABLE" default:"delivery_facts"`
}
