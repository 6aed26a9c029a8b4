// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Display connection settings
	Display DisplayConfig `mapstructure:"display"`

	// Input classification settings
	Input InputConfig `mapstructure:"input"`

	// Clipboard synchronization settings
	Clipboard ClipboardConfig `mapstructure:"clipboard"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// DisplayConfig describes how to reach the remote display server
type DisplayConfig struct {
	Display string `mapstructure:"display"` // DISPLAY string, e.g. ":1"
	FD      int    `mapstructure:"fd"`      // Already-connected descriptor from the bootstrap, -1 if unused
}

// InputConfig contains gesture classification settings
type InputConfig struct {
	Mode             string  `mapstructure:"mode"`               // trackpad, simulated_touch or touch
	Density          float64 `mapstructure:"density"`            // Display density (dp -> px factor)
	EdgeSlopPx       int     `mapstructure:"edge_slop_px"`       // Inset from view edges rejecting pan gestures
	SwipeThresholdDp float64 `mapstructure:"swipe_threshold_dp"` // Multi-finger swipe trigger distance in dp
	PreferScancodes  bool    `mapstructure:"prefer_scancodes"`   // Use raw scan codes for key events when present
	TouchDevice      string  `mapstructure:"touch_device"`       // Explicit /dev/input path, empty = autodetect
	MouseDevice      string  `mapstructure:"mouse_device"`       // Explicit /dev/input path, empty = autodetect
	KeyboardDevice   string  `mapstructure:"keyboard_device"`    // Explicit /dev/input path, empty = autodetect
	GrabDevices      bool    `mapstructure:"grab_devices"`       // Take exclusive device access while forwarding
}

// ClipboardConfig contains clipboard sync settings
type ClipboardConfig struct {
	SyncEnabled bool `mapstructure:"sync_enabled"` // Follow remote CLIPBOARD ownership changes
	LocalMirror bool `mapstructure:"local_mirror"` // Write delivered text into the local clipboard
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Display: DisplayConfig{
			Display: ":0",
			FD:      -1,
		},
		Input: InputConfig{
			Mode:             "trackpad",
			Density:          1.0,
			EdgeSlopPx:       16,
			SwipeThresholdDp: 40,
			PreferScancodes:  true,
			TouchDevice:      "",
			MouseDevice:      "",
			KeyboardDevice:   "",
			GrabDevices:      true,
		},
		Clipboard: ClipboardConfig{
			SyncEnabled: true,
			LocalMirror: true,
		},
		Logging: LoggingConfig{
			LogLevel: "",
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("xtouch")
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		viper.AddConfigPath("/etc/xtouch")
		if home := os.Getenv("HOME"); home != "" {
			viper.AddConfigPath(filepath.Join(home, ".config", "xtouch"))
		}
		viper.AddConfigPath(".")
	}

	// Set defaults - need to set individual fields for proper merging
	viper.SetDefault("display.display", DefaultConfig.Display.Display)
	viper.SetDefault("display.fd", DefaultConfig.Display.FD)

	viper.SetDefault("input.mode", DefaultConfig.Input.Mode)
	viper.SetDefault("input.density", DefaultConfig.Input.Density)
	viper.SetDefault("input.edge_slop_px", DefaultConfig.Input.EdgeSlopPx)
	viper.SetDefault("input.swipe_threshold_dp", DefaultConfig.Input.SwipeThresholdDp)
	viper.SetDefault("input.prefer_scancodes", DefaultConfig.Input.PreferScancodes)
	viper.SetDefault("input.touch_device", DefaultConfig.Input.TouchDevice)
	viper.SetDefault("input.mouse_device", DefaultConfig.Input.MouseDevice)
	viper.SetDefault("input.keyboard_device", DefaultConfig.Input.KeyboardDevice)
	viper.SetDefault("input.grab_devices", DefaultConfig.Input.GrabDevices)

	viper.SetDefault("clipboard.sync_enabled", DefaultConfig.Clipboard.SyncEnabled)
	viper.SetDefault("clipboard.local_mirror", DefaultConfig.Clipboard.LocalMirror)

	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}

	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/xtouch/xtouch.toml"
	}

	return filepath.Join(home, ".config", "xtouch", "xtouch.toml")
}
