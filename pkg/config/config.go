package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "LOKAPASAR"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv                 = "LOKAPASAR_APP_ENV"
	EnvPort                   = "LOKAPASAR_APP_PORT"
	EnvDBDSN                  = "LOKAPASAR_DB_DSN"
	EnvDBHost                 = "LOKAPASAR_DB_HOST"
	EnvDBUser                 = "LOKAPASAR_DB_USER"
	EnvDBName                 = "LOKAPASAR_DB_NAME"
	EnvRedisURL               = "LOKAPASAR_REDIS_URL"
	EnvJWTSecret              = "LOKAPASAR_JWT_SECRET"
	EnvJWTIssuer              = "LOKAPASAR_JWT_ISSUER"
	EnvJWTExpMins             = "LOKAPASAR_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "LOKAPASAR_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Orders        OrdersConfig
	Cron          CronConfig
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
	Env          string `envconfig:"LOKAPASAR_APP_ENV" required:"true"`
	Port         string `envconfig:"LOKAPASAR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LOKAPASAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOKAPASAR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LOKAPASAR_DB_DSN"`
	Driver string `envconfig:"LOKAPASAR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LOKAPASAR_DB_HOST"`
	LegacyPort     int    `envconfig:"LOKAPASAR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LOKAPASAR_DB_USER"`
	LegacyPassword string `envconfig:"LOKAPASAR_DB_PASSWORD"`
	LegacyName     string `envconfig:"LOKAPASAR_DB_NAME"`
	LegacySSLMode  string `envconfig:"LOKAPASAR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LOKAPASAR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LOKAPASAR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LOKAPASAR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LOKAPASAR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LOKAPASAR_REDIS_URL" required:"true"`
	Password     string        `envconfig:"LOKAPASAR_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOKAPASAR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOKAPASAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOKAPASAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOKAPASAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOKAPASAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOKAPASAR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"LOKAPASAR_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"LOKAPASAR_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"LOKAPASAR_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"LOKAPASAR_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LOKAPASAR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LOKAPASAR_ARGON_TIME" default:"1"`
	ArgonParallelism int `envconfig:"LOKAPASAR_ARGON_PARALLELISM" default:"4"`
	ArgonSaltLen     int `envconfig:"LOKAPASAR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LOKAPASAR_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"LOKAPASAR_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"LOKAPASAR_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"LOKAPASAR_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"LOKAPASAR_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"LOKAPASAR_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"LOKAPASAR_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LOKAPASAR_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LOKAPASAR_AUTO_MIGRATE" default:"false"`
}

type OrdersConfig struct {
	// PendingTTL bounds how long a vendor may sit on a pending order before
	// the cron worker cancels it.
	PendingTTL time.Duration `envconfig:"LOKAPASAR_ORDERS_PENDING_TTL" default:"240h"`
}

type CronConfig struct {
	Interval              time.Duration `envconfig:"LOKAPASAR_CRON_INTERVAL" default:"1h"`
	NotificationRetention time.Duration `envconfig:"LOKAPASAR_CRON_NOTIFICATION_RETENTION" default:"2160h"`
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
