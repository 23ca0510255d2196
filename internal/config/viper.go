// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"fjacquet/pgn-ratings/internal/aggregator"
	"fjacquet/pgn-ratings/internal/report"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key read from the environment.
const EnvPrefix = "PGNR"

// LogConfig selects the logrus level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// OutputConfig controls where category tables are written.
type OutputConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
	Extension string `mapstructure:"extension" yaml:"extension"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// SummaryConfig controls the optional summary document.
type SummaryConfig struct {
	File   string `mapstructure:"file" yaml:"file"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ClassificationConfig controls how games are assigned to categories.
type ClassificationConfig struct {
	Strategies    []string `mapstructure:"strategies" yaml:"strategies"`
	CasualMarkers []string `mapstructure:"casual_markers" yaml:"casual_markers"`
}

// StoreConfig controls the optional SQLite run sink.
type StoreConfig struct {
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

// Config represents the complete application configuration
type Config struct {
	Log            LogConfig            `mapstructure:"log" yaml:"log"`
	Output         OutputConfig         `mapstructure:"output" yaml:"output"`
	Summary        SummaryConfig        `mapstructure:"summary" yaml:"summary"`
	Classification ClassificationConfig `mapstructure:"classification" yaml:"classification"`
	Store          StoreConfig          `mapstructure:"store" yaml:"store"`
}

// DelimiterRune returns the configured output delimiter as a rune.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Output.Delimiter)
	return r
}

// ExportOptions maps the output and summary sections onto report options.
func (c *Config) ExportOptions() report.Options {
	return report.Options{
		Directory:     c.Output.Directory,
		Extension:     c.Output.Extension,
		Delimiter:     c.DelimiterRune(),
		SummaryFile:   c.Summary.File,
		SummaryFormat: c.Summary.Format,
	}
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return InitializeConfigWithFile("")
}

// InitializeConfigWithFile behaves like InitializeConfig but reads the given
// config file instead of searching the default locations. A missing explicit
// file is an error.
func InitializeConfigWithFile(file string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.pgn-ratings")
		v.AddConfigPath(".pgn-ratings")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless explicit)
	if err := v.ReadInConfig(); err != nil {
		if file != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// stdout carries the status lines, so warnings go to stderr
			fmt.Fprintf(os.Stderr, "Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// 5. The unprefixed LOG_LEVEL / LOG_FORMAT variables are honoured as well
	if err := v.BindEnv("log.level", EnvPrefix+"_LOG_LEVEL", "LOG_LEVEL"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind LOG_LEVEL environment variable: %v\n", err)
	}
	if err := v.BindEnv("log.format", EnvPrefix+"_LOG_FORMAT", "LOG_FORMAT"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind LOG_FORMAT environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	normalize(&config)

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("output.directory", ".")
	v.SetDefault("output.extension", ".data")
	v.SetDefault("output.delimiter", ",")

	v.SetDefault("summary.file", "")
	v.SetDefault("summary.format", report.FormatYAML)

	v.SetDefault("classification.strategies", []string{aggregator.StrategyTimeControl})
	v.SetDefault("classification.casual_markers", aggregator.DefaultCasualMarkers)

	v.SetDefault("store.sqlite_path", "")
}

// normalize lowercases enumerated values and drops blank list entries.
func normalize(config *Config) {
	config.Log.Level = strings.ToLower(strings.TrimSpace(config.Log.Level))
	config.Log.Format = strings.ToLower(strings.TrimSpace(config.Log.Format))
	config.Summary.Format = strings.ToLower(strings.TrimSpace(config.Summary.Format))
	config.Classification.Strategies = cleanList(config.Classification.Strategies)
	config.Classification.CasualMarkers = cleanList(config.Classification.CasualMarkers)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if utf8.RuneCountInString(config.Output.Delimiter) != 1 {
		return fmt.Errorf("output delimiter must be a single character, got: %q", config.Output.Delimiter)
	}
	if d := config.DelimiterRune(); d == '"' || d == '\r' || d == '\n' || d == utf8.RuneError {
		return fmt.Errorf("output delimiter %q is not usable in CSV", config.Output.Delimiter)
	}

	if config.Summary.Format != report.FormatYAML && config.Summary.Format != report.FormatJSON {
		return fmt.Errorf("invalid summary format: %s (must be 'yaml' or 'json')", config.Summary.Format)
	}

	if len(config.Classification.Strategies) == 0 {
		return fmt.Errorf("classification.strategies must name at least one strategy")
	}
	known := []string{aggregator.StrategyTimeControl, aggregator.StrategyEventName}
	for _, name := range config.Classification.Strategies {
		if !slices.Contains(known, name) {
			return fmt.Errorf("unknown classification strategy: %s", name)
		}
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// Validate re-checks the configuration, e.g. after command-line overrides.
func (c *Config) Validate() error {
	normalize(c)
	return validateConfig(c)
}
