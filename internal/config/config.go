// Package config loads travelprism settings from the environment, an
// optional .env file and an optional ~/.travelprism/config.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. TRAVELPRISM_THEME
const EnvPrefix = "TRAVELPRISM"

// Config holds every tunable setting
type Config struct {
	Theme               string // "light", "dark" or empty for the default palette
	NoColor             bool
	SkipUpdateCheck     bool
	UpdateCheckInterval int // days
	LogLevel            string
	HistoryDir          string
	HistoryMaxFiles     int
	Agent               AgentConfig
}

// AgentConfig describes the external browser agent command
type AgentConfig struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// Options controls where Load looks for settings
type Options struct {
	ConfigDir string // directory holding config.yaml; also the default history dir
	EnvFile   string // dotenv file; empty skips loading
}

func setDefaults(v *viper.Viper, opts Options) {
	v.SetDefault("theme", "")
	v.SetDefault("no_color", "")
	v.SetDefault("skip_update_check", "")
	v.SetDefault("update_check_interval", 7)
	v.SetDefault("log.level", "info")
	v.SetDefault("history.dir", opts.ConfigDir)
	v.SetDefault("history.max_files", 100)
	v.SetDefault("agent.command", "browser-use")
	v.SetDefault("agent.args", []string{})
	v.SetDefault("agent.timeout", "10m")
}

// Load reads settings into a Config. Environment variables override the
// config file, which overrides defaults.
func Load(v *viper.Viper, opts Options) (Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", opts.EnvFile, err)
		}
	}

	setDefaults(v, opts)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigDir != "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(opts.ConfigDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	timeout, err := time.ParseDuration(v.GetString("agent.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid agent.timeout %q: %w", v.GetString("agent.timeout"), err)
	}

	theme := strings.ToLower(strings.TrimSpace(v.GetString("theme")))
	switch theme {
	case "", "light", "dark":
	default:
		return Config{}, fmt.Errorf("invalid theme %q: want light or dark", theme)
	}

	interval := v.GetInt("update_check_interval")
	if interval <= 0 {
		interval = 7
	}

	return Config{
		Theme:               theme,
		NoColor:             IsTruthy(v.GetString("no_color")),
		SkipUpdateCheck:     IsTruthy(v.GetString("skip_update_check")),
		UpdateCheckInterval: interval,
		LogLevel:            v.GetString("log.level"),
		HistoryDir:          v.GetString("history.dir"),
		HistoryMaxFiles:     v.GetInt("history.max_files"),
		Agent: AgentConfig{
			Command: v.GetString("agent.command"),
			Args:    v.GetStringSlice("agent.args"),
			Timeout: timeout,
		},
	}, nil
}

// IsTruthy reports whether s is one of 1, true, yes or on
func IsTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
