// Package config loads runtime settings from the environment (and an
// optional .env file) through viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	BaseURL        string
	FrontendOrigin string
	LogLevel       string

	DatabaseDSN string

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	RedisAddr string

	KafkaBrokers string
	KafkaTopic   string

	ResendAPIKey string
	MailFrom     string
	AdminEmail   string

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string

	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	UploadDir            string
	TracingEnabled       bool
	InvoiceSweepInterval time.Duration
}

// LoadDotEnv reads .env if present. A missing file is only a warning.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Warn().Msg("could not load .env file, relying on system environment variables")
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("FRONTEND_ORIGIN", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SESSION_TTL", "72h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("KAFKA_TOPIC", "inkframe.events")
	v.SetDefault("MAIL_FROM", "Inkframe Studio <no-reply@inkframe.local>")
	v.SetDefault("CURRENCY", "sar")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("INVOICE_SWEEP_INTERVAL", "1h")
}

// keys lists every variable so AutomaticEnv lookups also work for keys
// without a default.
var keys = []string{
	"DB_DSN_PRIMARY", "SESSION_SECRET", "REDIS_ADDR", "KAFKA_BROKERS",
	"RESEND_API_KEY", "ADMIN_EMAIL", "STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET",
	"OIDC_ISSUER", "OIDC_CLIENT_ID", "OIDC_CLIENT_SECRET", "OIDC_REDIRECT_URL",
}

// Load reads the environment into a Config and validates it.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{
		AppEnv:         v.GetString("APP_ENV"),
		HTTPAddr:       v.GetString("HTTP_ADDR"),
		BaseURL:        strings.TrimRight(v.GetString("BASE_URL"), "/"),
		FrontendOrigin: strings.TrimRight(v.GetString("FRONTEND_ORIGIN"), "/"),
		LogLevel:       v.GetString("LOG_LEVEL"),

		DatabaseDSN: v.GetString("DB_DSN_PRIMARY"),

		SessionSecret: v.GetString("SESSION_SECRET"),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		CookieSecure:  v.GetBool("COOKIE_SECURE"),

		RedisAddr: v.GetString("REDIS_ADDR"),

		KafkaBrokers: v.GetString("KAFKA_BROKERS"),
		KafkaTopic:   v.GetString("KAFKA_TOPIC"),

		ResendAPIKey: v.GetString("RESEND_API_KEY"),
		MailFrom:     v.GetString("MAIL_FROM"),
		AdminEmail:   v.GetString("ADMIN_EMAIL"),

		StripeSecretKey:     v.GetString("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
		Currency:            v.GetString("CURRENCY"),

		OIDCIssuer:       v.GetString("OIDC_ISSUER"),
		OIDCClientID:     v.GetString("OIDC_CLIENT_ID"),
		OIDCClientSecret: v.GetString("OIDC_CLIENT_SECRET"),
		OIDCRedirectURL:  v.GetString("OIDC_REDIRECT_URL"),

		UploadDir:            v.GetString("UPLOAD_DIR"),
		TracingEnabled:       v.GetBool("TRACING_ENABLED"),
		InvoiceSweepInterval: v.GetDuration("INVOICE_SWEEP_INTERVAL"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DB_DSN_PRIMARY is required"))
	}
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	} else if len(c.SessionSecret) < 32 && c.IsProduction() {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 characters in production"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) OIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != "" && c.OIDCRedirectURL != ""
}
