package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port             int             `json:"port"`
	PublicBaseURL    string          `json:"public_base_url" env:"CONTACTBOOK_PUBLIC_BASE_URL"`
	JWTSecret        string          `json:"jwt_secret" env:"CONTACTBOOK_JWT_SECRET"`
	AccessTTLMinutes int             `json:"access_ttl_minutes"`
	RefreshTTLHours  int             `json:"refresh_ttl_hours"`
	VerifyTTLHours   int             `json:"verify_ttl_hours"`
	LogLevel         string          `json:"log_level"`
	LogConsole       bool            `json:"log_console"`
	Database         DatabaseConfig  `json:"database"`
	Mail             MailConfig      `json:"mail"`
	FileStore        FileStoreConfig `json:"file_store"`
	RateLimit        RateLimitConfig `json:"rate_limit"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn" env:"CONTACTBOOK_DB_DSN"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password" env:"CONTACTBOOK_DB_PASSWORD"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type MailConfig struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Username    string `json:"username"`
	Password    string `json:"password" env:"CONTACTBOOK_SMTP_PASSWORD"`
	From        string `json:"from"`
	MaxAttempts int    `json:"max_attempts"`
}

type FileStoreConfig struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

type RateLimitConfig struct {
	ContactCreatePerMinute int `json:"contact_create_per_minute"`
}

// Load reads the JSON config file and then applies environment overrides, so
// secrets never have to live on disk.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.AccessTTLMinutes == 0 {
		cfg.AccessTTLMinutes = 15
	}
	if cfg.RefreshTTLHours == 0 {
		cfg.RefreshTTLHours = 24 * 7
	}
	if cfg.VerifyTTLHours == 0 {
		cfg.VerifyTTLHours = 24
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Mail.MaxAttempts == 0 {
		cfg.Mail.MaxAttempts = 5
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
		if cfg.FileStore.Data == nil {
			cfg.FileStore.Data = map[string]interface{}{"dir": "./data/avatars"}
		}
	}
	if cfg.RateLimit.ContactCreatePerMinute == 0 {
		cfg.RateLimit.ContactCreatePerMinute = 5
	}
	return &cfg, nil
}
