package config

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Auth    AuthConfig
	Portal  PortalConfig
	Session SessionConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
	SeedDemo bool
}

type DBConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	TimeZone string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret             string
	AccessExpiry       time.Duration
	RefreshExpiry      time.Duration
	ConfirmationExpiry time.Duration
}

type AuthConfig struct {
	RequireEmailConfirmation bool
	AllowAdminSignup         bool
	LoginRatePerMinute       int
	LoginBurst               int
}

type PortalConfig struct {
	Port     string
	ClientID string
}

type SessionConfig struct {
	ProfileFetchRetries int
	ProfileFetchBackoff time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_LOG_LEVEL", "info")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_TIMEZONE", "Asia/Jakarta")
	viper.SetDefault("AUTH_REQUIRE_EMAIL_CONFIRMATION", true)
	viper.SetDefault("AUTH_LOGIN_RATE_PER_MINUTE", 10)
	viper.SetDefault("AUTH_LOGIN_BURST", 5)
	viper.SetDefault("PORTAL_PORT", "8081")
	viper.SetDefault("PORTAL_CLIENT_ID", "portal")
	viper.SetDefault("SESSION_PROFILE_FETCH_RETRIES", 0)

	if err := viper.ReadInConfig(); err != nil {
		// Environment variables alone are enough
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Port:     viper.GetString("APP_PORT"),
			Env:      viper.GetString("APP_ENV"),
			LogLevel: viper.GetString("APP_LOG_LEVEL"),
			SeedDemo: viper.GetBool("APP_SEED_DEMO"),
		},
		DB: DBConfig{
			Driver:   viper.GetString("DB_DRIVER"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			TimeZone: viper.GetString("DB_TIMEZONE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:             viper.GetString("JWT_SECRET"),
			AccessExpiry:       parseDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry:      parseDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
			ConfirmationExpiry: parseDuration("JWT_CONFIRMATION_EXPIRY", 24*time.Hour),
		},
		Auth: AuthConfig{
			RequireEmailConfirmation: viper.GetBool("AUTH_REQUIRE_EMAIL_CONFIRMATION"),
			AllowAdminSignup:         viper.GetBool("AUTH_ALLOW_ADMIN_SIGNUP"),
			LoginRatePerMinute:       viper.GetInt("AUTH_LOGIN_RATE_PER_MINUTE"),
			LoginBurst:               viper.GetInt("AUTH_LOGIN_BURST"),
		},
		Portal: PortalConfig{
			Port:     viper.GetString("PORTAL_PORT"),
			ClientID: viper.GetString("PORTAL_CLIENT_ID"),
		},
		Session: SessionConfig{
			ProfileFetchRetries: viper.GetInt("SESSION_PROFILE_FETCH_RETRIES"),
			ProfileFetchBackoff: parseDuration("SESSION_PROFILE_FETCH_BACKOFF", 500*time.Millisecond),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return config, nil
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}
