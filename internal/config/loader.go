package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the optional YAML file read before the environment.
const ConfigFileEnv = "BOOKING_CONFIG_FILE"

// Config captures the settings of the booking service.
type Config struct {
	HTTPPort          int
	DatabasePath      string
	Timezone          string
	SlotMinutes       int
	SessionSecret     string
	SubmitRateLimit   int
	AdminRateLimit    int
	TrustProxy        bool
	AdminUsername     string
	AdminPasswordHash string
	MetricsEnabled    bool
	TelegramToken     string
	TelegramChatID    int64
}

// fileConfig mirrors the YAML layout. Pointers distinguish an explicit zero
// from an absent key.
type fileConfig struct {
	Server struct {
		Port            *int   `yaml:"port"`
		SessionSecret   string `yaml:"session_secret"`
		SubmitRateLimit *int   `yaml:"submit_rate_limit"`
		AdminRateLimit  *int   `yaml:"admin_rate_limit"`
		TrustProxy      *bool  `yaml:"trust_proxy"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Booking struct {
		Timezone    string `yaml:"timezone"`
		SlotMinutes *int   `yaml:"slot_minutes"`
	} `yaml:"booking"`

	Admin struct {
		Username     string `yaml:"username"`
		PasswordHash string `yaml:"password_hash"`
	} `yaml:"admin"`

	Monitoring struct {
		MetricsEnabled *bool `yaml:"metrics_enabled"`
	} `yaml:"monitoring"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   *int64 `yaml:"chat_id"`
	} `yaml:"telegram"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		HTTPPort:        5000,
		DatabasePath:    "barbershop.db",
		Timezone:        "Asia/Tehran",
		SlotMinutes:     30,
		SubmitRateLimit: 20,
		AdminRateLimit:  10,
		AdminUsername:   "admin",
		MetricsEnabled:  true,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// BOOKING_CONFIG_FILE (with ${VAR} placeholders expanded), then environment
// variables. Every invalid value is reported in a single localized error.
func Load() (Config, error) {
	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv(ConfigFileEnv)); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	invalid := make([]string, 0, 2)
	applyEnv(&cfg, &invalid)
	validate(cfg, &invalid)

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("مقدار تنظیمات نامعتبر است: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

// Location resolves the configured time zone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// AdminEnabled reports whether the admin routes should be mounted.
func (c Config) AdminEnabled() bool {
	return strings.TrimSpace(c.AdminPasswordHash) != ""
}

// TelegramEnabled reports whether booking notifications are configured.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("خواندن فایل تنظیمات %s ناموفق بود: %w", path, err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("فایل تنظیمات %s معتبر نیست: %w", path, err)
	}

	if file.Server.Port != nil {
		cfg.HTTPPort = *file.Server.Port
	}
	if file.Server.SessionSecret != "" {
		cfg.SessionSecret = file.Server.SessionSecret
	}
	if file.Server.SubmitRateLimit != nil {
		cfg.SubmitRateLimit = *file.Server.SubmitRateLimit
	}
	if file.Server.AdminRateLimit != nil {
		cfg.AdminRateLimit = *file.Server.AdminRateLimit
	}
	if file.Server.TrustProxy != nil {
		cfg.TrustProxy = *file.Server.TrustProxy
	}
	if file.Database.Path != "" {
		cfg.DatabasePath = file.Database.Path
	}
	if file.Booking.Timezone != "" {
		cfg.Timezone = file.Booking.Timezone
	}
	if file.Booking.SlotMinutes != nil {
		cfg.SlotMinutes = *file.Booking.SlotMinutes
	}
	if file.Admin.Username != "" {
		cfg.AdminUsername = file.Admin.Username
	}
	if file.Admin.PasswordHash != "" {
		cfg.AdminPasswordHash = file.Admin.PasswordHash
	}
	if file.Monitoring.MetricsEnabled != nil {
		cfg.MetricsEnabled = *file.Monitoring.MetricsEnabled
	}
	if file.Telegram.BotToken != "" {
		cfg.TelegramToken = file.Telegram.BotToken
	}
	if file.Telegram.ChatID != nil {
		cfg.TelegramChatID = *file.Telegram.ChatID
	}
	return nil
}

func applyEnv(cfg *Config, invalid *[]string) {
	if value := env("PORT"); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			*invalid = append(*invalid, "PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if value := env("BOOKING_DB_PATH"); value != "" {
		cfg.DatabasePath = value
	}
	if value := env("BOOKING_TIMEZONE"); value != "" {
		cfg.Timezone = value
	}

	if value := env("BOOKING_SLOT_MINUTES"); value != "" {
		minutes, err := strconv.Atoi(value)
		if err != nil {
			*invalid = append(*invalid, "BOOKING_SLOT_MINUTES")
		} else {
			cfg.SlotMinutes = minutes
		}
	}

	if value := env("BOOKING_SESSION_SECRET"); value != "" {
		cfg.SessionSecret = value
	}

	if value := env("BOOKING_SUBMIT_RATE_LIMIT"); value != "" {
		limit, err := strconv.Atoi(value)
		if err != nil {
			*invalid = append(*invalid, "BOOKING_SUBMIT_RATE_LIMIT")
		} else {
			cfg.SubmitRateLimit = limit
		}
	}

	if value := env("BOOKING_ADMIN_RATE_LIMIT"); value != "" {
		limit, err := strconv.Atoi(value)
		if err != nil {
			*invalid = append(*invalid, "BOOKING_ADMIN_RATE_LIMIT")
		} else {
			cfg.AdminRateLimit = limit
		}
	}

	if value := env("BOOKING_TRUST_PROXY"); value != "" {
		trust, err := strconv.ParseBool(value)
		if err != nil {
			*invalid = append(*invalid, "BOOKING_TRUST_PROXY")
		} else {
			cfg.TrustProxy = trust
		}
	}

	if value := env("BOOKING_ADMIN_USER"); value != "" {
		cfg.AdminUsername = value
	}
	if value := env("BOOKING_ADMIN_PASSWORD_HASH"); value != "" {
		cfg.AdminPasswordHash = value
	}

	if value := env("BOOKING_METRICS_ENABLED"); value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			*invalid = append(*invalid, "BOOKING_METRICS_ENABLED")
		} else {
			cfg.MetricsEnabled = enabled
		}
	}

	if value := env("BOOKING_TELEGRAM_TOKEN"); value != "" {
		cfg.TelegramToken = value
	}
	if value := env("BOOKING_TELEGRAM_CHAT_ID"); value != "" {
		chatID, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			*invalid = append(*invalid, "BOOKING_TELEGRAM_CHAT_ID")
		} else {
			cfg.TelegramChatID = chatID
		}
	}
}

var errEmptyTimezone = errors.New("config: empty timezone")

func validate(cfg Config, invalid *[]string) {
	add := func(key string) {
		for _, existing := range *invalid {
			if existing == key {
				return
			}
		}
		*invalid = append(*invalid, key)
	}

	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		add("PORT")
	}
	if strings.TrimSpace(cfg.DatabasePath) == "" {
		add("BOOKING_DB_PATH")
	}
	if _, err := loadLocation(cfg.Timezone); err != nil {
		add("BOOKING_TIMEZONE")
	}
	if cfg.SlotMinutes <= 0 || cfg.SlotMinutes > 24*60 {
		add("BOOKING_SLOT_MINUTES")
	}
	if cfg.SubmitRateLimit < 0 {
		add("BOOKING_SUBMIT_RATE_LIMIT")
	}
	if cfg.AdminRateLimit < 0 {
		add("BOOKING_ADMIN_RATE_LIMIT")
	}
	if cfg.AdminEnabled() && strings.TrimSpace(cfg.AdminUsername) == "" {
		add("BOOKING_ADMIN_USER")
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		add("BOOKING_TELEGRAM_CHAT_ID")
	}
}

func loadLocation(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errEmptyTimezone
	}
	return time.LoadLocation(name)
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
