package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/reoring/jsonleaf"
)

// fileConfig is the layout of the --config YAML file. Flags given on the
// command line take precedence over it.
type fileConfig struct {
	Driver        string                `yaml:"driver"`
	LogLevel      string                `yaml:"log_level"`
	MaxNesting    int                   `yaml:"max_nesting"`
	MaxBytes      int64                 `yaml:"max_bytes"`
	DuplicateKeys string                `yaml:"duplicate_keys"`
	Filter        jsonleaf.FilterConfig `yaml:"filter"`
}

type settings struct {
	driver     jsonleaf.JSONDriver
	level      slog.Level
	maxNesting int
	maxBytes   int64
	duplicates jsonleaf.Severity
	filter     jsonleaf.FilterConfig
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

func resolveSettings(cli *CLI) (settings, error) {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return settings{}, err
	}

	s := settings{
		maxNesting: firstNonZero(cli.MaxNesting, cfg.MaxNesting),
		maxBytes:   firstNonZero(cli.MaxBytes, cfg.MaxBytes),
		filter:     cfg.Filter,
	}

	if s.driver, err = jsonleaf.DriverByName(firstNonZero(cli.Driver, cfg.Driver)); err != nil {
		return settings{}, err
	}
	if s.level, err = parseLevel(firstNonZero(cli.LogLevel, cfg.LogLevel)); err != nil {
		return settings{}, err
	}
	if s.duplicates, err = parseSeverity(firstNonZero(cli.DuplicateKeys, cfg.DuplicateKeys)); err != nil {
		return settings{}, err
	}
	return s, nil
}

func firstNonZero[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelWarn, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

func parseSeverity(s string) (jsonleaf.Severity, error) {
	switch strings.ToLower(s) {
	case "", "ignore":
		return jsonleaf.Ignore, nil
	case "warn":
		return jsonleaf.Warn, nil
	case "error":
		return jsonleaf.Error, nil
	}
	return 0, fmt.Errorf("invalid duplicate key reaction %q", s)
}

// loadEnvFile loads KEY=VALUE defaults from path when it exists. Variables
// already present in the environment are kept.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
