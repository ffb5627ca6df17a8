package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Database
	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"lostfound"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"lostfound.db"`

	// Tokens and auth flows
	JWTSecret          string        `env:"JWT_SECRET"`
	JWTExpiry          time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	OTPTTL             time.Duration `env:"OTP_TTL" envDefault:"5m"`
	ResetTTL           time.Duration `env:"RESET_TTL" envDefault:"10m"`
	ResetURLBase       string        `env:"RESET_URL_BASE" envDefault:"http://localhost:3000/reset-password"`
	DirectLoginEnabled bool          `env:"AUTH_DIRECT_LOGIN_ENABLED" envDefault:"false"`
	BcryptCost         int           `env:"BCRYPT_COST" envDefault:"10"`
	AuthRateLimit      int           `env:"AUTH_RATE_LIMIT" envDefault:"10"`
	APIRateLimit       int           `env:"API_RATE_LIMIT" envDefault:"60"`

	// Seed administrator, created at startup when SeedAdminEmail is set
	SeedAdminEmail    string `env:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword string `env:"SEED_ADMIN_PASSWORD"`
	SeedAdminName     string `env:"SEED_ADMIN_NAME" envDefault:"Administrator"`
	SeedAdminPhone    string `env:"SEED_ADMIN_PHONE"`

	// Mail
	SMTPHost        string        `env:"SMTP_HOST"`
	SMTPPort        int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername    string        `env:"SMTP_USERNAME"`
	SMTPPassword    string        `env:"SMTP_PASSWORD"`
	MailFrom        string        `env:"MAIL_FROM" envDefault:"no-reply@lostfound.local"`
	MailTimeout     time.Duration `env:"MAIL_TIMEOUT" envDefault:"10s"`
	NotifyQueueSize int           `env:"NOTIFY_QUEUE_SIZE" envDefault:"100"`

	// Server
	Port             string `env:"PORT" envDefault:"8080"`
	CORSOrigins      string `env:"CORS_ORIGINS" envDefault:"*"`
	PhoneRegion      string `env:"PHONE_REGION" envDefault:"US"`
	LogRetentionDays int    `env:"LOG_RETENTION_DAYS" envDefault:"30"`

	// Error tracking
	SentryDSN string `env:"SENTRY_DSN"`
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if c.SeedAdminEmail != "" && (c.SeedAdminPassword == "" || c.SeedAdminPhone == "") {
		return errors.New("SEED_ADMIN_PASSWORD and SEED_ADMIN_PHONE are required with SEED_ADMIN_EMAIL")
	}
	switch c.DBDriver {
	case "postgres":
		if c.DBPassword == "" {
			return errors.New("DB_PASSWORD environment variable is required")
		}
	case "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}
