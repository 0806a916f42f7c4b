// Package config reads settings from the environment, with an optional .env
// file for local development.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Auth modes.
const (
	AuthJWT           = "jwt"
	AuthTrustedHeader = "trusted-header"
	AuthDisabled      = "disabled"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	MongoURI    string
	DBName      string
	StoreDriver string

	AuthMode    string
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeCurrency      string

	RedisURL       string
	WebhookDedupe  time.Duration
	RequestTimeout time.Duration

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	ZeptoAPIURL   string
	ZeptoAPIKey   string
	EmailFrom     string
	EmailFromName string

	CORSOrigins []string
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_NAME", "clubify")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("AUTH_MODE", AuthJWT)
	v.SetDefault("STRIPE_CURRENCY", "usd")
	v.SetDefault("WEBHOOK_DEDUPE_TTL", "72h")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("ZEPTO_API_URL", "https://api.zeptomail.com/v1.1/email")
	v.SetDefault("EMAIL_FROM_NAME", "Clubify")
	v.SetDefault("CORS_ORIGINS", "*")
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()
	return v
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:     v.GetString("PORT"),
		Env:      v.GetString("APP_ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),

		MongoURI:    v.GetString("MONGO_URI"),
		DBName:      v.GetString("DB_NAME"),
		StoreDriver: strings.ToLower(v.GetString("STORE_DRIVER")),

		AuthMode:    strings.ToLower(v.GetString("AUTH_MODE")),
		JWTSecret:   v.GetString("JWT_SECRET"),
		JWTIssuer:   v.GetString("JWT_ISSUER"),
		JWTAudience: v.GetString("JWT_AUDIENCE"),

		StripeSecretKey:     v.GetString("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
		StripeCurrency:      strings.ToLower(v.GetString("STRIPE_CURRENCY")),

		RedisURL:       v.GetString("REDIS_URL"),
		WebhookDedupe:  v.GetDuration("WEBHOOK_DEDUPE_TTL"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),

		CloudinaryCloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    v.GetString("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: v.GetString("CLOUDINARY_API_SECRET"),

		ZeptoAPIURL:   v.GetString("ZEPTO_API_URL"),
		ZeptoAPIKey:   v.GetString("ZEPTO_API_KEY"),
		EmailFrom:     v.GetString("EMAIL_FROM"),
		EmailFromName: v.GetString("EMAIL_FROM_NAME"),

		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.AuthMode {
	case AuthJWT:
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required when AUTH_MODE=jwt"))
		}
	case AuthTrustedHeader, AuthDisabled:
		if c.IsProduction() {
			errs = append(errs, fmt.Errorf("AUTH_MODE=%s is not allowed when APP_ENV=production", c.AuthMode))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode))
	}

	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when STORE_DRIVER=mongo"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// ImagesEnabled reports whether every Cloudinary credential is set.
func (c *Config) ImagesEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
