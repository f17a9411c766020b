package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the common prefix of every variable name.
const EnvPrefix = "STUDYGUARD"

// Config holds application configuration
type Config struct {
	ServerPort string `envconfig:"STUDYGUARD_PORT" default:"8080"`
	LogLevel   string `envconfig:"STUDYGUARD_LOG_LEVEL" default:"info"`
	LogFormat  string `envconfig:"STUDYGUARD_LOG_FORMAT" default:"json"`

	DatabaseType string `envconfig:"STUDYGUARD_DB_TYPE" default:"sqlite"`
	DatabasePath string `envconfig:"STUDYGUARD_DB_PATH" default:"./studyguard.db"`
	DatabaseURL  string `envconfig:"STUDYGUARD_DB_URL"`

	JWTSecret string        `envconfig:"STUDYGUARD_JWT_SECRET" default:"change-me"`
	JWTIssuer string        `envconfig:"STUDYGUARD_JWT_ISSUER" default:"studyguard"`
	TokenTTL  time.Duration `envconfig:"STUDYGUARD_TOKEN_TTL" default:"720h"`

	Retention RetentionConfig
	Heartbeat HeartbeatConfig
	Signup    SignupConfig
	Email     EmailConfig
}

// RetentionConfig controls the heartbeat retention sweeper.
type RetentionConfig struct {
	Days      int           `envconfig:"STUDYGUARD_RETENTION_DAYS" default:"7"`
	Interval  time.Duration `envconfig:"STUDYGUARD_RETENTION_INTERVAL" default:"1h"`
	BatchSize int           `envconfig:"STUDYGUARD_RETENTION_BATCH_SIZE" default:"500"`
}

// HeartbeatConfig limits how often a single child may report in.
type HeartbeatConfig struct {
	Rate   int           `envconfig:"STUDYGUARD_HEARTBEAT_RATE" default:"12"`
	Window time.Duration `envconfig:"STUDYGUARD_HEARTBEAT_WINDOW" default:"1m"`
}

// SignupConfig limits account registrations per client address.
type SignupConfig struct {
	Rate   int           `envconfig:"STUDYGUARD_SIGNUP_RATE" default:"10"`
	Window time.Duration `envconfig:"STUDYGUARD_SIGNUP_WINDOW" default:"1h"`
}

type EmailConfig struct {
	AWSRegion  string `envconfig:"STUDYGUARD_AWS_REGION" default:"us-east-1"`
	FromEmail  string `envconfig:"STUDYGUARD_SES_FROM_EMAIL"`
	FromName   string `envconfig:"STUDYGUARD_SES_FROM_NAME" default:"StudyGuard"`
	AppBaseURL string `envconfig:"STUDYGUARD_APP_BASE_URL" default:"http://localhost:8080"`
}

// Load reads configuration from the environment (and .env when present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.DatabaseType) {
	case "sqlite", "sqlite3", "":
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("%s_DB_URL is required for database type %q", EnvPrefix, c.DatabaseType)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
	if c.Retention.Days <= 0 {
		return fmt.Errorf("%s_RETENTION_DAYS must be positive", EnvPrefix)
	}
	return nil
}
