// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	AppName       = "heartbeat"
	ConfigType    = "yaml"
	DefaultConfig = `# Heartbeat Configuration

# Signal extraction
extraction: "green"     # Extraction path: green (single channel) or chrominance (RGB)
channels: 1             # Values per sample: 1 (green) or 3 (RGB, required for chrominance)

# Timing
time_base: 0.001        # Seconds per timestamp unit (0.001 = millisecond timestamps)
sampling_frequency: 1.0 # Seconds between heart-rate reports
rescan_interval: 1.0    # Seconds between tracker rescans (resync flag cadence)
window_seconds: 10      # Rolling signal window span in seconds

# Estimation
low_bpm: 42             # Lower bound of the spectral peak search
high_bpm: 240           # Upper bound of the spectral peak search
detrend_lambda: 0       # Smoothness-priors regularizer (0 = use measured sample rate)
smooth_passes: 3        # Moving-average repetitions

# Output
log_diagnostics: false  # Write semicolon-CSV diagnostic dumps
log_path: "heartbeat"   # Base path for diagnostic files
debug: false            # Enable per-frame debug output
`
)

// Settings holds all application configuration
type Settings struct {
	// Signal extraction
	Extraction string `mapstructure:"extraction"`
	Channels   int    `mapstructure:"channels"`

	// Timing
	TimeBase          float64 `mapstructure:"time_base"`
	SamplingFrequency float64 `mapstructure:"sampling_frequency"`
	RescanInterval    float64 `mapstructure:"rescan_interval"`
	WindowSeconds     float64 `mapstructure:"window_seconds"`

	// Estimation
	LowBPM        float64 `mapstructure:"low_bpm"`
	HighBPM       float64 `mapstructure:"high_bpm"`
	DetrendLambda float64 `mapstructure:"detrend_lambda"`
	SmoothPasses  int     `mapstructure:"smooth_passes"`

	// Output
	LogDiagnostics bool   `mapstructure:"log_diagnostics"`
	LogPath        string `mapstructure:"log_path"`
	Debug          bool   `mapstructure:"debug"`
}

// Init initializes Viper with defaults and config file.
// Config file search order: current directory, then ~/.config/heartbeat/
func Init() error {
	// Set defaults
	viper.SetDefault("extraction", "green")
	viper.SetDefault("channels", 1)
	viper.SetDefault("time_base", 0.001)
	viper.SetDefault("sampling_frequency", 1.0)
	viper.SetDefault("rescan_interval", 1.0)
	viper.SetDefault("window_seconds", 10)
	viper.SetDefault("low_bpm", 42)
	viper.SetDefault("high_bpm", 240)
	viper.SetDefault("detrend_lambda", 0)
	viper.SetDefault("smooth_passes", 3)
	viper.SetDefault("log_diagnostics", false)
	viper.SetDefault("log_path", "heartbeat")
	viper.SetDefault("debug", false)

	viper.SetConfigType(ConfigType)

	// Priority order: current directory first, then XDG config
	viper.AddConfigPath(".")

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	viper.AddConfigPath(filepath.Join(configDir, AppName))

	// Try .config.yaml first (hidden file), then config.yaml
	viper.SetConfigName(".config")
	if err = viper.ReadInConfig(); err != nil {
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	// Read config file - if not found, create default in XDG config dir
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			xdgConfigPath := filepath.Join(configDir, AppName)
			if err = ensureConfigExists(xdgConfigPath); err != nil {
				return err
			}
			if err = viper.ReadInConfig(); err != nil {
				return fmt.Errorf("read config: %w", err)
			}
		} else {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// Validate checks that all settings are within acceptable ranges
func (s *Settings) Validate() error {
	var errs []error

	// Signal extraction
	if s.Extraction != "green" && s.Extraction != "chrominance" {
		errs = append(errs, fmt.Errorf("extraction must be green or chrominance, got %q", s.Extraction))
	}
	if s.Channels != 1 && s.Channels != 3 {
		errs = append(errs, fmt.Errorf("channels must be 1 or 3, got %d", s.Channels))
	}
	if s.Extraction == "chrominance" && s.Channels != 3 {
		errs = append(errs, fmt.Errorf("chrominance extraction requires 3 channels, got %d", s.Channels))
	}

	// Timing
	if s.TimeBase <= 0 {
		errs = append(errs, fmt.Errorf("time_base must be positive, got %v", s.TimeBase))
	}
	if s.SamplingFrequency <= 0 {
		errs = append(errs, fmt.Errorf("sampling_frequency must be positive, got %v", s.SamplingFrequency))
	}
	if s.RescanInterval <= 0 {
		errs = append(errs, fmt.Errorf("rescan_interval must be positive, got %v", s.RescanInterval))
	}
	if s.WindowSeconds < 1 || s.WindowSeconds > 60 {
		errs = append(errs, fmt.Errorf("window_seconds must be between 1 and 60, got %v", s.WindowSeconds))
	}

	// Estimation
	if s.LowBPM <= 0 || s.HighBPM <= s.LowBPM {
		errs = append(errs, fmt.Errorf("bpm band must satisfy 0 < low_bpm < high_bpm, got [%v, %v]", s.LowBPM, s.HighBPM))
	}
	if s.HighBPM > 600 {
		errs = append(errs, fmt.Errorf("high_bpm must be at most 600, got %v", s.HighBPM))
	}
	if s.DetrendLambda < 0 {
		errs = append(errs, fmt.Errorf("detrend_lambda must be non-negative, got %v", s.DetrendLambda))
	}
	if s.SmoothPasses < 1 || s.SmoothPasses > 10 {
		errs = append(errs, fmt.Errorf("smooth_passes must be between 1 and 10, got %d", s.SmoothPasses))
	}

	// Output
	if s.LogDiagnostics && s.LogPath == "" {
		errs = append(errs, errors.New("log_path must be set when log_diagnostics is enabled"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
