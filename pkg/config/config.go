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
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	Goal         GoalConfig
	Notify       NotifyConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
	Realtime     RealtimeConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WAYTRACK_APP_ENV" required:"true"`
	Port         string `envconfig:"WAYTRACK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WAYTRACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WAYTRACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"WAYTRACK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"WAYTRACK_DB_DSN"`
	Driver string `envconfig:"WAYTRACK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WAYTRACK_DB_HOST"`
	LegacyPort     int    `envconfig:"WAYTRACK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WAYTRACK_DB_USER"`
	LegacyPassword string `envconfig:"WAYTRACK_DB_PASSWORD"`
	LegacyName     string `envconfig:"WAYTRACK_DB_NAME"`
	LegacySSLMode  string `envconfig:"WAYTRACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WAYTRACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WAYTRACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WAYTRACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WAYTRACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WAYTRACK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WAYTRACK_REDIS_ADDR"`
	Password     string        `envconfig:"WAYTRACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"WAYTRACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WAYTRACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WAYTRACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WAYTRACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WAYTRACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WAYTRACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret   string `envconfig:"WAYTRACK_JWT_SECRET" required:"true"`
	Issuer   string `envconfig:"WAYTRACK_JWT_ISSUER" required:"true"`
	Audience string `envconfig:"WAYTRACK_JWT_AUDIENCE"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WAYTRACK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WAYTRACK_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	RealtimeIdempotencyTTL time.Duration `envconfig:"WAYTRACK_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

// GoalConfig carries the daily distance goal. The threshold is expressed in
// kilometers with two decimal places; a day's journeys award the goal once
// their running total reaches it.
type GoalConfig struct {
	DailyThresholdKm string `envconfig:"WAYTRACK_GOAL_DAILY_THRESHOLD_KM" default:"20.00"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"WAYTRACK_CORS_ORIGINS" default:"http://localhost:3000"`
}

type RateLimitConfig struct {
	Requests int64         `envconfig:"WAYTRACK_RATE_LIMIT_REQUESTS" default:"300"`
	Window   time.Duration `envconfig:"WAYTRACK_RATE_LIMIT_WINDOW" default:"1m"`
}

type NotifyConfig struct {
	BaseURL string        `envconfig:"WAYTRACK_NOTIFY_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"WAYTRACK_NOTIFY_TIMEOUT" default:"10s"`
}

type RealtimeConfig struct {
	SendBufferSize int           `envconfig:"WAYTRACK_REALTIME_SEND_BUFFER" default:"32"`
	WriteTimeout   time.Duration `envconfig:"WAYTRACK_REALTIME_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"WAYTRACK_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"WAYTRACK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"WAYTRACK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	JourneyTopic         string `envconfig:"WAYTRACK_PUBSUB_JOURNEY_TOPIC" required:"true"`
	RewardSubscription   string `envconfig:"WAYTRACK_PUBSUB_REWARD_SUBSCRIPTION" required:"true"`
	RealtimeSubscription string `envconfig:"WAYTRACK_PUBSUB_REALTIME_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"WAYTRACK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"WAYTRACK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"WAYTRACK_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
