package config // package config loads application configuration from the environment

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable; a .env file in the working directory is read
// first, so real environment variables always take precedence.
type Config struct {
	Env     string `env:"APP_ENV" env-default:"local"`
	Port    string `env:"APP_PORT" env-default:"8080"`
	BaseURL string `env:"APP_BASE_URL" env-default:"http://localhost:8080"`

	DB        DBConfig
	Token     TokenConfig
	Cookie    CookieConfig
	Mail      MailConfig
	SMTP      SMTPConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Log       LogConfig

	BcryptCost  int      `env:"BCRYPT_COST" env-default:"12"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
}

// DBConfig selects the SQL driver and how to reach it.  DSN wins over the
// discrete fields when set; a MySQL DSN must then carry parseTime=true and
// clientFoundRows=true, which the built DSN always sets.
type DBConfig struct {
	Driver string `env:"DB_DRIVER" env-default:"mysql"` // mysql | postgres | sqlite3
	DSN    string `env:"DB_DSN"`
	User   string `env:"DB_USER" env-default:"root"`
	Pass   string `env:"DB_PASS"`
	Host   string `env:"DB_HOST" env-default:"127.0.0.1"`
	Port   string `env:"DB_PORT"`
	Name   string `env:"DB_NAME" env-default:"auth"`
	Path   string `env:"DB_PATH" env-default:"data/auth.db"` // sqlite3 only
}

// TokenConfig drives the token codec and the lifetimes of every issued token.
type TokenConfig struct {
	SecretKey              string `env:"SECRET_KEY" env-required:"true"`
	Algorithm              string `env:"ALGORITHM" env-default:"HS256"`
	AccessExpireMinutes    int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" env-default:"15"`
	RefreshExpireDays      int    `env:"REFRESH_TOKEN_EXPIRE_DAYS" env-default:"7"`
	VerifyEmailExpireMin   int    `env:"VERIFY_EMAIL_TOKEN_EXPIRE_MINUTES" env-default:"1440"`
	ResetPasswordExpireMin int    `env:"RESET_PASSWORD_TOKEN_EXPIRE_MINUTES" env-default:"120"`
}

func (t TokenConfig) AccessTTL() time.Duration {
	return time.Duration(t.AccessExpireMinutes) * time.Minute
}

func (t TokenConfig) RefreshTTL() time.Duration {
	return time.Duration(t.RefreshExpireDays) * 24 * time.Hour
}

func (t TokenConfig) VerifyEmailTTL() time.Duration {
	return time.Duration(t.VerifyEmailExpireMin) * time.Minute
}

func (t TokenConfig) ResetPasswordTTL() time.Duration {
	return time.Duration(t.ResetPasswordExpireMin) * time.Minute
}

type CookieConfig struct {
	Secure bool   `env:"COOKIE_SECURE" env-default:"true"`
	Path   string `env:"COOKIE_PATH" env-default:"/v1/auth"`
}

// MailConfig controls how verification and reset emails leave the process.
// With an empty AMQPURL emails are sent from a goroutine of the API process.
type MailConfig struct {
	AMQPURL       string `env:"AMQP_URL"`
	Queue         string `env:"MAIL_QUEUE" env-default:"auth.email"`
	WorkerEnabled bool   `env:"MAIL_WORKER_ENABLED" env-default:"true"`
}

type SMTPConfig struct {
	Server   string `env:"SMTP_SERVER"`
	Port     int    `env:"SMTP_PORT" env-default:"465"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT"` // json | text; empty picks by APP_ENV
}

// Load reads configuration values from the environment (after an optional
// .env file) and validates the values that cleanenv cannot check alone.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is like Load but halts the program when configuration is
// missing or malformed.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch strings.ToUpper(c.Token.Algorithm) {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("config: unsupported ALGORITHM %q", c.Token.Algorithm)
	}
	switch c.DB.Driver {
	case "mysql", "postgres", "sqlite3":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.Token.AccessExpireMinutes <= 0 || c.Token.RefreshExpireDays <= 0 {
		return errors.New("config: token lifetimes must be positive")
	}
	if c.Token.VerifyEmailExpireMin <= 0 || c.Token.ResetPasswordExpireMin <= 0 {
		return errors.New("config: one-time token lifetimes must be positive")
	}
	return nil
}

// RefreshCookieMaxAge is the refresh cookie lifetime in seconds.
func (c *Config) RefreshCookieMaxAge() int {
	return int(c.Token.RefreshTTL() / time.Second)
}
