// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/diewo77/go-rentals/internal/tax"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Auth     AuthConfig
	Mail     MailConfig
	Finance  FinanceConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// ConnectRetries is how many times startup retries the first connection.
	ConnectRetries int
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool
	Migrations bool
	DBDebug    bool
	LogLevel   string
}

// AuthConfig holds token signing and the bootstrap administrator.
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
}

// MailConfig holds the SMTP relay used for tenant notices.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// FinanceConfig holds the monetary policy handed to the core engines.
type FinanceConfig struct {
	// Timezone decides what "today" means for late fees and distributions.
	Timezone string
	// DefaultDailyLateFeeRate is used when a contract does not set its own (percent per day).
	DefaultDailyLateFeeRate decimal.Decimal

	IVARate              decimal.Decimal
	ITRate               decimal.Decimal
	RCIVARate            decimal.Decimal
	IVACompensationCap   decimal.Decimal
	RCIVACompensationCap decimal.Decimal
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Addr returns host:port of the SMTP relay.
func (m MailConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

// Enabled reports whether an SMTP relay is configured.
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.From != ""
}

// TaxRates converts the configured percentages into engine rates.
func (f FinanceConfig) TaxRates() tax.Rates {
	return tax.Rates{
		IVA:                  f.IVARate,
		IT:                   f.ITRate,
		RCIVA:                f.RCIVARate,
		IVACompensationCap:   f.IVACompensationCap,
		RCIVACompensationCap: f.RCIVACompensationCap,
	}
}

// Location loads the configured time zone, falling back to UTC.
func (f FinanceConfig) Location() *time.Location {
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	defaults := tax.DefaultRates()
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnvInt("DB_PORT", 5432),
			User:           getEnv("DB_USER", "rentals"),
			Password:       getEnv("DB_PASSWORD", "rentals123"),
			DBName:         getEnv("DB_NAME", "rentals"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			ConnectRetries: getEnvInt("DB_CONNECT_RETRIES", 5),
		},
		App: AppConfig{
			Dev:        getEnvBool("DEV", true),
			Migrations: getEnvBool("MIGRATIONS", false),
			DBDebug:    getEnvBool("DB_DEBUG", false),
			LogLevel:   getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
			TokenTTL:      time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60)) * time.Minute,
			AdminEmail:    getEnv("ADMIN_EMAIL", "admin@rentals.local"),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		},
		Mail: MailConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		Finance: FinanceConfig{
			Timezone:                getEnv("TIMEZONE", "America/La_Paz"),
			DefaultDailyLateFeeRate: getEnvDecimal("DEFAULT_DAILY_LATE_FEE_RATE", decimal.RequireFromString("0.5")),
			IVARate:                 getEnvDecimal("TAX_IVA_RATE", defaults.IVA),
			ITRate:                  getEnvDecimal("TAX_IT_RATE", defaults.IT),
			RCIVARate:               getEnvDecimal("TAX_RC_IVA_RATE", defaults.RCIVA),
			IVACompensationCap:      getEnvDecimal("TAX_IVA_COMPENSATION_CAP", defaults.IVACompensationCap),
			RCIVACompensationCap:    getEnvDecimal("TAX_RC_IVA_COMPENSATION_CAP", defaults.RCIVACompensationCap),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvDecimal returns the decimal value of an environment variable or a default.
func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
