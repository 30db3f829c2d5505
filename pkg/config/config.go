package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "TR"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TR_DB_DSN"
	EnvDBHost = "TR_DB_HOST"
	EnvDBUser = "TR_DB_USER"
	EnvDBName = "TR_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	SMTP          SMTPConfig
	Uploads       UploadsConfig
	Shop          ShopConfig
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
	Env          string `envconfig:"TR_APP_ENV" required:"true"`
	Port         string `envconfig:"TR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TR_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TR_DB_DSN"`
	Driver string `envconfig:"TR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TR_DB_HOST"`
	LegacyPort     int    `envconfig:"TR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TR_DB_USER"`
	LegacyPassword string `envconfig:"TR_DB_PASSWORD"`
	LegacyName     string `envconfig:"TR_DB_NAME"`
	LegacySSLMode  string `envconfig:"TR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TR_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TR_REDIS_ADDR"`
	Password     string        `envconfig:"TR_REDIS_PASSWORD"`
	DB           int           `envconfig:"TR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"TR_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"TR_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"TR_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"TR_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"TR_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"TR_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"TR_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"TR_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"TR_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"TR_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TR_AUTO_MIGRATE" default:"false"`
}

type SMTPConfig struct {
	Host     string `envconfig:"TR_SMTP_HOST"`
	Port     int    `envconfig:"TR_SMTP_PORT" default:"587"`
	Username string `envconfig:"TR_SMTP_USERNAME"`
	Password string `envconfig:"TR_SMTP_PASSWORD"`
	From     string `envconfig:"TR_SMTP_FROM" default:"no-reply@talabarteriarodriguez.mx"`
}

// Enabled reports whether outbound SMTP is configured. When false the app
// falls back to the log-only mailer.
func (s SMTPConfig) Enabled() bool {
	return strings.TrimSpace(s.Host) != ""
}

type UploadsConfig struct {
	Dir         string `envconfig:"TR_UPLOADS_DIR" default:"static/uploads"`
	PublicPath  string `envconfig:"TR_UPLOADS_PUBLIC_PATH" default:"/static/uploads"`
	MaxUploadMB int    `envconfig:"TR_UPLOADS_MAX_MB" default:"8"`
}

type ShopConfig struct {
	PublicBaseURL string `envconfig:"TR_SHOP_PUBLIC_BASE_URL" default:"http://localhost:3000"`
	CartTTLHours  int    `envconfig:"TR_SHOP_CART_TTL_HOURS" default:"168"`
}

// CartTTL returns the guest/user cart retention window.
func (s ShopConfig) CartTTL() time.Duration {
	if s.CartTTLHours <= 0 {
		return 168 * time.Hour
	}
	return time.Duration(s.CartTTLHours) * time.Hour
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
