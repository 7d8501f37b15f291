package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the runtime configuration of the process. It is built once at
// start-up and passed to constructors; business code never reads the
// environment directly.
type Config struct {
	Port  string
	Mongo MongoConfig
	Auth  AuthConfig
	Mail  MailConfig
	Redis RedisConfig
	Log   LogConfig
	CORS  []string
}

type MongoConfig struct {
	URI      string
	Database string
}

type AuthConfig struct {
	JWTSecret          string
	StudentEmailDomain string
	OTPTTL             time.Duration
	SessionTTL         time.Duration
	ResetTTL           time.Duration
}

// MailConfig selects and configures the notification transport.
type MailConfig struct {
	Transport    string // smtp or resend
	From         string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	ResendAPIKey string
	ResendAPIURL string
}

// RedisConfig is optional; an empty URL disables the reset replay guard.
type RedisConfig struct {
	URL string
}

type LogConfig struct {
	Mode       string // debug or release
	Dir        string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

const (
	MailTransportSMTP   = "smtp"
	MailTransportResend = "resend"
)

var (
	ErrMissingMongoURI  = errors.New("MONGO_URI is not set")
	ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("MONGO_DATABASE", "placement_hub")
	v.SetDefault("STUDENT_EMAIL_DOMAIN", "g.bracu.ac.bd")
	v.SetDefault("OTP_TTL", "10m")
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("RESET_TTL", "15m")
	v.SetDefault("MAIL_TRANSPORT", MailTransportSMTP)
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("LOG_MODE", "release")
	v.SetDefault("LOG_DIR", "logs")
	v.SetDefault("LOG_FILENAME", "placementhub.log")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 7)
	v.SetDefault("LOG_MAX_AGE_DAYS", 30)
}

// Load reads configuration from the environment. Required values that are
// missing abort start-up rather than falling back to insecure defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port: v.GetString("PORT"),
		Mongo: MongoConfig{
			URI:      strings.TrimSpace(v.GetString("MONGO_URI")),
			Database: v.GetString("MONGO_DATABASE"),
		},
		Auth: AuthConfig{
			JWTSecret:          v.GetString("JWT_SECRET"),
			StudentEmailDomain: strings.TrimPrefix(strings.ToLower(strings.TrimSpace(v.GetString("STUDENT_EMAIL_DOMAIN"))), "@"),
			OTPTTL:             v.GetDuration("OTP_TTL"),
			SessionTTL:         v.GetDuration("SESSION_TTL"),
			ResetTTL:           v.GetDuration("RESET_TTL"),
		},
		Mail: MailConfig{
			Transport:    strings.ToLower(strings.TrimSpace(v.GetString("MAIL_TRANSPORT"))),
			From:         v.GetString("FROM_EMAIL"),
			SMTPHost:     v.GetString("SMTP_HOST"),
			SMTPPort:     v.GetInt("SMTP_PORT"),
			SMTPUser:     v.GetString("MAIL_USER"),
			SMTPPassword: v.GetString("MAIL_PASS"),
			ResendAPIKey: v.GetString("RESEND_API_KEY"),
			ResendAPIURL: v.GetString("RESEND_API_URL"),
		},
		Redis: RedisConfig{URL: strings.TrimSpace(v.GetString("REDIS_URL"))},
		Log: LogConfig{
			Mode:       v.GetString("LOG_MODE"),
			Dir:        v.GetString("LOG_DIR"),
			Filename:   v.GetString("LOG_FILENAME"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		},
		CORS: splitList(v.GetString("CORS_ORIGINS")),
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.SMTPUser
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values the process cannot run without.
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return ErrMissingMongoURI
	}
	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	switch c.Mail.Transport {
	case MailTransportSMTP:
		if c.Mail.SMTPHost == "" || c.Mail.SMTPPort == 0 || c.Mail.From == "" {
			return errors.New("smtp transport requires SMTP_HOST, SMTP_PORT and FROM_EMAIL or MAIL_USER")
		}
	case MailTransportResend:
		if c.Mail.ResendAPIKey == "" || c.Mail.From == "" {
			return errors.New("resend transport requires RESEND_API_KEY and FROM_EMAIL")
		}
	default:
		return fmt.Errorf("unknown MAIL_TRANSPORT %q", c.Mail.Transport)
	}
	if c.Auth.OTPTTL <= 0 || c.Auth.SessionTTL <= 0 || c.Auth.ResetTTL <= 0 {
		return errors.New("token and code lifetimes must be positive")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
