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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	RateLimit    RateLimitConfig
	Admin        AdminConfig
	Cron         CronConfig
	Mailer       MailerConfig
	Telegram     TelegramConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"BLOOMSTACK_APP_ENV" required:"true"`
	Port         string `envconfig:"BLOOMSTACK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"BLOOMSTACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BLOOMSTACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BLOOMSTACK_DB_DSN"`
	Driver string `envconfig:"BLOOMSTACK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"BLOOMSTACK_DB_HOST"`
	Port     int    `envconfig:"BLOOMSTACK_DB_PORT" default:"5432"`
	User     string `envconfig:"BLOOMSTACK_DB_USER"`
	Password string `envconfig:"BLOOMSTACK_DB_PASSWORD"`
	Name     string `envconfig:"BLOOMSTACK_DB_NAME"`
	SSLMode  string `envconfig:"BLOOMSTACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BLOOMSTACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BLOOMSTACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BLOOMSTACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BLOOMSTACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BLOOMSTACK_REDIS_URL"`
	Address      string        `envconfig:"BLOOMSTACK_REDIS_ADDR"`
	Password     string        `envconfig:"BLOOMSTACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"BLOOMSTACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BLOOMSTACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BLOOMSTACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BLOOMSTACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BLOOMSTACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BLOOMSTACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"BLOOMSTACK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"BLOOMSTACK_JWT_ISSUER" default:"bloomstack"`
	ExpirationMinutes      int    `envconfig:"BLOOMSTACK_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"BLOOMSTACK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BLOOMSTACK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BLOOMSTACK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BLOOMSTACK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BLOOMSTACK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BLOOMSTACK_ARGON_KEY_LEN" default:"32"`
}

type RateLimitConfig struct {
	Window      time.Duration `envconfig:"BLOOMSTACK_RATE_LIMIT_WINDOW" default:"1m"`
	LoginLimit  int           `envconfig:"BLOOMSTACK_RATE_LIMIT_LOGIN" default:"10"`
	SignupLimit int           `envconfig:"BLOOMSTACK_RATE_LIMIT_SIGNUP" default:"5"`
	OrderLimit  int           `envconfig:"BLOOMSTACK_RATE_LIMIT_ORDER" default:"20"`
	SubmitLimit int           `envconfig:"BLOOMSTACK_RATE_LIMIT_SUBSCRIPTION" default:"5"`
}

// AdminConfig guards the back-office surface. The secret signs short-lived
// HMAC tokens; there is intentionally no default value.
type AdminConfig struct {
	TokenSecret string        `envconfig:"BLOOMSTACK_ADMIN_TOKEN_SECRET" required:"true"`
	TokenSkew   time.Duration `envconfig:"BLOOMSTACK_ADMIN_TOKEN_SKEW" default:"10m"`
}

type CronConfig struct {
	TokenSecret string        `envconfig:"BLOOMSTACK_CRON_TOKEN_SECRET" required:"true"`
	TokenSkew   time.Duration `envconfig:"BLOOMSTACK_CRON_TOKEN_SKEW" default:"10m"`
	Interval    time.Duration `envconfig:"BLOOMSTACK_CRON_INTERVAL" default:"1h"`
	WarnWindow  time.Duration `envconfig:"BLOOMSTACK_CRON_EXPIRY_WARN_WINDOW" default:"168h"`
}

type MailerConfig struct {
	APIKey      string        `envconfig:"BLOOMSTACK_MAILER_API_KEY"`
	BaseURL     string        `envconfig:"BLOOMSTACK_MAILER_BASE_URL" default:"https://api.sendgrid.com"`
	DefaultFrom string        `envconfig:"BLOOMSTACK_MAILER_FROM_EMAIL"`
	Timeout     time.Duration `envconfig:"BLOOMSTACK_MAILER_TIMEOUT" default:"10s"`
}

type TelegramConfig struct {
	BotToken      string        `envconfig:"BLOOMSTACK_TELEGRAM_BOT_TOKEN"`
	WebhookSecret string        `envconfig:"BLOOMSTACK_TELEGRAM_WEBHOOK_SECRET"`
	BaseURL       string        `envconfig:"BLOOMSTACK_TELEGRAM_BASE_URL" default:"https://api.telegram.org"`
	Timeout       time.Duration `envconfig:"BLOOMSTACK_TELEGRAM_TIMEOUT" default:"10s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BLOOMSTACK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if parts[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
