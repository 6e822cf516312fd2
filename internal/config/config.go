package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for CareLink
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Storage StorageConfig `mapstructure:"storage"`
	Auth    AuthConfig    `mapstructure:"auth"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address      string   `mapstructure:"address"`
	Port         int      `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout"`
	WriteTimeout int      `mapstructure:"write_timeout"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// GeminiConfig holds the generative model settings. Temperature and TopP
// are fixed low for consistency over creativity.
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	Timeout     int     `mapstructure:"timeout"`
	// RequestsPerMinute caps outbound model calls (0 = unlimited)
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

// StorageConfig holds durable storage settings
type StorageConfig struct {
	DataDir    string `mapstructure:"data_dir"`
	BadgerPath string `mapstructure:"badger_path"`
	// GCSchedule is a cron expression for badger value-log GC
	GCSchedule string `mapstructure:"gc_schedule"`
}

// AuthConfig holds identity token settings. CareLink only reads tokens to
// scope conversation history; it never issues them.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// Load loads configuration from file, env, and defaults
func Load(configPath, dataDir string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if dataDir == "" {
		dataDir = getDefaultDataDir()
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	v.Set("storage.data_dir", dataDir)
	v.Set("storage.badger_path", filepath.Join(dataDir, "badger"))

	if configPath == "" {
		configPath = filepath.Join(dataDir, "carelink.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Environment variables (CARELINK_SERVER_PORT, CARELINK_GEMINI_API_KEY, etc.)
	v.SetEnvPrefix("CARELINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	loadEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.allow_origins", []string{"*"})

	// Model defaults
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.model", "gemini-1.5-pro")
	v.SetDefault("gemini.temperature", 0.5)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.timeout", 60)
	v.SetDefault("gemini.requests_per_minute", 60)

	// Storage defaults
	v.SetDefault("storage.gc_schedule", "@every 30m")
}

func getDefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "carelink")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}

	return filepath.Join(home, ".local", "share", "carelink")
}

// loadEnvOverrides loads specific env vars that Viper misses when a config
// file sets the same section
func loadEnvOverrides(cfg *Config) {
	getEnv := func(key, fallback string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		return fallback
	}

	cfg.Gemini.APIKey = getEnv("CARELINK_GEMINI_API_KEY", cfg.Gemini.APIKey)
	cfg.Gemini.BaseURL = getEnv("CARELINK_GEMINI_BASE_URL", cfg.Gemini.BaseURL)
	cfg.Gemini.Model = getEnv("CARELINK_GEMINI_MODEL", cfg.Gemini.Model)

	cfg.Server.Address = getEnv("CARELINK_SERVER_ADDRESS", cfg.Server.Address)
	if port := os.Getenv("CARELINK_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	cfg.Storage.DataDir = getEnv("CARELINK_STORAGE_DATA_DIR", cfg.Storage.DataDir)
	cfg.Auth.JWTSecret = getEnv("CARELINK_AUTH_JWT_SECRET", cfg.Auth.JWTSecret)
}

func validate(cfg *Config) error {
	if cfg.Gemini.APIKey == "" {
		return fmt.Errorf("gemini.api_key is required")
	}
	if cfg.Gemini.Model == "" {
		return fmt.Errorf("gemini.model is required")
	}
	if cfg.Gemini.Temperature < 0 || cfg.Gemini.Temperature > 2 {
		return fmt.Errorf("gemini.temperature must be between 0 and 2")
	}
	if cfg.Gemini.TopP <= 0 || cfg.Gemini.TopP > 1 {
		return fmt.Errorf("gemini.top_p must be in (0, 1]")
	}

	// A secret is still needed to verify inbound identity tokens
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = generateRandomString(32)
	}

	return nil
}

// generateRandomString returns n random characters from crypto/rand. The
// secret signs identity tokens, so it must not be guessable.
func generateRandomString(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	rand.Read(b)
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return string(b)
}
