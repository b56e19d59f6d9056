package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries everything the server needs from the environment.
// Loaded once in main and passed down explicitly.
type Config struct {
	Port string

	Database DatabaseConfig
	Midtrans MidtransConfig
	Telegram TelegramConfig
	SMTP     SMTPConfig
	Admin    AdminConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// MidtransConfig holds the Snap API credentials. ServerKey may be empty;
// checkout requests then fail fast with a "not configured" error instead of
// hitting the network.
type MidtransConfig struct {
	ServerKey    string
	ClientKey    string
	IsProduction bool
}

type TelegramConfig struct {
	BotToken string
	ChatID   string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type AdminConfig struct {
	// bcrypt hash of the operator password for /api/admin/login
	PasswordHash string
	JWTSecret    string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// .env is optional; in production everything comes from real env vars.
	_ = godotenv.Load()

	cfg := &Config{
		Port: envStr("PORT", "3001"),
		Database: DatabaseConfig{
			Host:     envStr("DB_HOST", "localhost"),
			Port:     envInt("DB_PORT", 5432),
			Name:     envStr("DB_NAME", "nala"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			SSLMode:  envStr("DB_SSLMODE", "disable"),
		},
		Midtrans: MidtransConfig{
			ServerKey:    os.Getenv("MIDTRANS_SERVER_KEY"),
			ClientKey:    os.Getenv("MIDTRANS_CLIENT_KEY"),
			IsProduction: os.Getenv("MIDTRANS_IS_PRODUCTION") == "true",
		},
		Telegram: TelegramConfig{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
			ChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envInt("SMTP_PORT", 465),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     envStr("SMTP_FROM", os.Getenv("SMTP_USER")),
		},
		Admin: AdminConfig{
			PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			JWTSecret:    os.Getenv("ADMIN_JWT_SECRET"),
		},
	}

	if cfg.Database.User == "" {
		return nil, fmt.Errorf("DB_USER is not set")
	}
	return cfg, nil
}

// DSN builds the Postgres connection string for GORM.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=Asia/Jakarta",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
