package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServicesConfig holds the base URLs of the backend services the client
// talks to.
type ServicesConfig struct {
	// Orders is the order gateway base URL.
	Orders string `mapstructure:"orders" yaml:"orders"`

	// Auth is the authentication service base URL.
	Auth string `mapstructure:"auth" yaml:"auth"`

	// Notifications is the notification service REST base URL.
	Notifications string `mapstructure:"notifications" yaml:"notifications"`

	// WebSocket is the notification service streaming endpoint.
	WebSocket string `mapstructure:"websocket" yaml:"websocket"`
}

// NotificationsConfig tunes the live notification channel.
type NotificationsConfig struct {
	// HeartbeatIntervalMs is the heartbeat interval in each direction,
	// in milliseconds. Missing inbound traffic for a multiple of this
	// interval is treated as a dropped connection.
	HeartbeatIntervalMs int `mapstructure:"heartbeat_interval_ms" yaml:"heartbeat_interval_ms"`

	// ReconnectDelayMs is the fixed delay between reconnect attempts,
	// in milliseconds.
	ReconnectDelayMs int `mapstructure:"reconnect_delay_ms" yaml:"reconnect_delay_ms"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Services      ServicesConfig      `mapstructure:"services" yaml:"services"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
	Display       DisplayConfig       `mapstructure:"display" yaml:"display"`
	LogPath       string              `mapstructure:"log_path" yaml:"log_path"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/swifttrack/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "swifttrack", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration pointing at
// a locally running SwiftTrack stack.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Services: ServicesConfig{
			Orders:        "http://localhost:8080",
			Auth:          "http://localhost:4010",
			Notifications: "http://localhost:8083",
			WebSocket:     "ws://localhost:8083/ws",
		},
		Notifications: NotificationsConfig{
			HeartbeatIntervalMs: 4000,
			ReconnectDelayMs:    5000,
		},
		Display: DisplayConfig{Theme: "default"},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("services.orders", "http://localhost:8080")
	v.SetDefault("services.auth", "http://localhost:4010")
	v.SetDefault("services.notifications", "http://localhost:8083")
	v.SetDefault("services.websocket", "ws://localhost:8083/ws")
	v.SetDefault("notifications.heartbeat_interval_ms", 4000)
	v.SetDefault("notifications.reconnect_delay_ms", 5000)
	v.SetDefault("display.theme", "default")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("services", cfg.Services)
	v.Set("notifications", cfg.Notifications)
	v.Set("display", cfg.Display)
	if cfg.LogPath != "" {
		v.Set("log_path", cfg.LogPath)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
