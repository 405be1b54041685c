package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Stripe   StripeConfig
	Mail     MailConfig
	Frontend FrontendConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	SessionExpiry int // in minutes
	ResetExpiry   int // in minutes
}

type StripeConfig struct {
	APIKey        string
	WebhookSecret string
	Currency      string
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type FrontendConfig struct {
	BaseURL            string
	CheckoutSuccessURL string
	CheckoutCancelURL  string
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_SESSION_EXPIRY", 60)
	viper.SetDefault("JWT_RESET_EXPIRY", 30)
	viper.SetDefault("STRIPE_CURRENCY", "eur")
	viper.SetDefault("MAIL_HOST", "smtp.gmail.com")
	viper.SetDefault("MAIL_PORT", 587)
	viper.SetDefault("FRONTEND_URL", "http://localhost:5173")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	frontendURL := viper.GetString("FRONTEND_URL")
	viper.SetDefault("CHECKOUT_SUCCESS_URL", frontendURL+"/checkout/success")
	viper.SetDefault("CHECKOUT_CANCEL_URL", frontendURL+"/checkout/cancel")

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			SessionExpiry: viper.GetInt("JWT_SESSION_EXPIRY"),
			ResetExpiry:   viper.GetInt("JWT_RESET_EXPIRY"),
		},
		Stripe: StripeConfig{
			APIKey:        viper.GetString("STRIPE_API_KEY"),
			WebhookSecret: viper.GetString("STRIPE_WEBHOOK_SECRET"),
			Currency:      viper.GetString("STRIPE_CURRENCY"),
		},
		Mail: MailConfig{
			Host:     viper.GetString("MAIL_HOST"),
			Port:     viper.GetInt("MAIL_PORT"),
			Username: viper.GetString("MAIL_USERNAME"),
			Password: viper.GetString("MAIL_PASSWORD"),
			From:     viper.GetString("MAIL_FROM"),
		},
		Frontend: FrontendConfig{
			BaseURL:            frontendURL,
			CheckoutSuccessURL: viper.GetString("CHECKOUT_SUCCESS_URL"),
			CheckoutCancelURL:  viper.GetString("CHECKOUT_CANCEL_URL"),
		},
	}
}
