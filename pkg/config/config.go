package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	LeadRateLimit LeadRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Mail          MailConfig
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
	Env          string `envconfig:"PADDOCKSHARE_APP_ENV" required:"true"`
	Port         string `envconfig:"PADDOCKSHARE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PADDOCKSHARE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PADDOCKSHARE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PADDOCKSHARE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PADDOCKSHARE_DB_DSN"`
	Driver string `envconfig:"PADDOCKSHARE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PADDOCKSHARE_DB_HOST"`
	LegacyPort     int    `envconfig:"PADDOCKSHARE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PADDOCKSHARE_DB_USER"`
	LegacyPassword string `envconfig:"PADDOCKSHARE_DB_PASSWORD"`
	LegacyName     string `envconfig:"PADDOCKSHARE_DB_NAME"`
	LegacySSLMode  string `envconfig:"PADDOCKSHARE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PADDOCKSHARE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PADDOCKSHARE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PADDOCKSHARE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PADDOCKSHARE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PADDOCKSHARE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PADDOCKSHARE_REDIS_ADDR"`
	Password     string        `envconfig:"PADDOCKSHARE_REDIS_PASSWORD"`
	DB           int           `envconfig:"PADDOCKSHARE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PADDOCKSHARE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PADDOCKSHARE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PADDOCKSHARE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PADDOCKSHARE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PADDOCKSHARE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"PADDOCKSHARE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"PADDOCKSHARE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"PADDOCKSHARE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"PADDOCKSHARE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PADDOCKSHARE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PADDOCKSHARE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PADDOCKSHARE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PADDOCKSHARE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PADDOCKSHARE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"PADDOCKSHARE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"PADDOCKSHARE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"PADDOCKSHARE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"PADDOCKSHARE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"PADDOCKSHARE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"PADDOCKSHARE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type LeadRateLimitConfig struct {
	Window  time.Duration `envconfig:"PADDOCKSHARE_LEAD_RATE_LIMIT_WINDOW" default:"5m"`
	IPLimit int           `envconfig:"PADDOCKSHARE_LEAD_RATE_LIMIT_IP_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PADDOCKSHARE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PADDOCKSHARE_AUTO_MIGRATE" default:"false"`
}

type MailConfig struct {
	SendgridAPIKey string `envconfig:"PADDOCKSHARE_SENDGRID_API_KEY"`
	DefaultFrom    string `envconfig:"PADDOCKSHARE_SENDGRID_FROM_EMAIL" default:"owners@paddockshare.co.uk"`
	DefaultName    string `envconfig:"PADDOCKSHARE_SENDGRID_FROM_NAME" default:"PaddockShare"`
}

// Enabled reports whether outbound mail is configured.
func (m MailConfig) Enabled() bool {
	return strings.TrimSpace(m.SendgridAPIKey) != ""
}

type CronConfig struct {
	Interval             time.Duration `envconfig:"PADDOCKSHARE_CRON_INTERVAL" default:"10m"`
	NotificationTTL      time.Duration `envconfig:"PADDOCKSHARE_CRON_NOTIFICATION_TTL" default:"2160h"`
	LockTTL              time.Duration `envconfig:"PADDOCKSHARE_CRON_LOCK_TTL" default:"15m"`
	DisableBallotClose   bool          `envconfig:"PADDOCKSHARE_CRON_DISABLE_BALLOT_CLOSE" default:"false"`
	DisableVoteClose     bool          `envconfig:"PADDOCKSHARE_CRON_DISABLE_VOTE_CLOSE" default:"false"`
	DisableNotifications bool          `envconfig:"PADDOCKSHARE_CRON_DISABLE_NOTIFICATION_CLEANUP" default:"false"`
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
