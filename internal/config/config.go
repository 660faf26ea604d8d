// Package config loads user settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nconklindev/sheetview/internal/view"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const appName = "sheetview"

// Settings are the tunables read from the config file. Command-line flags
// override them.
type Settings struct {
	PageSize            int    `yaml:"page_size"`
	MinColumnWidth      int    `yaml:"min_column_width"`
	TextFilterThreshold int    `yaml:"text_filter_threshold"`
	StrictBatch         bool   `yaml:"strict_batch"`
	MaxParallelDecodes  int    `yaml:"max_parallel_decodes"`
	LogFile             string `yaml:"log_file"`
	LogLevel            string `yaml:"log_level"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		PageSize:            view.DefaultPageSize,
		MinColumnWidth:      view.DefaultMinColumnWidth,
		TextFilterThreshold: view.DefaultTextFilterThreshold,
		LogLevel:            logrus.InfoLevel.String(),
	}
}

// DefaultPath is $XDG_CONFIG_HOME/sheetview/config.yaml, or the platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.yaml"), nil
}

// Load reads settings from path on top of the defaults. A missing file is
// not an error.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return s, s.Validate()
}

// Validate rejects values the view engine cannot use.
func (s Settings) Validate() error {
	var errs []error
	if !view.ValidPageSize(s.PageSize) {
		errs = append(errs, fmt.Errorf("page_size must be one of %v, got %d", view.PageSizes, s.PageSize))
	}
	if s.MinColumnWidth <= 0 {
		errs = append(errs, fmt.Errorf("min_column_width must be positive, got %d", s.MinColumnWidth))
	}
	if s.TextFilterThreshold <= 0 {
		errs = append(errs, fmt.Errorf("text_filter_threshold must be positive, got %d", s.TextFilterThreshold))
	}
	if s.MaxParallelDecodes < 0 {
		errs = append(errs, fmt.Errorf("max_parallel_decodes cannot be negative, got %d", s.MaxParallelDecodes))
	}
	if _, err := logrus.ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	return errors.Join(errs...)
}

// ViewOptions converts the settings for the view engine.
func (s Settings) ViewOptions() view.Options {
	return view.Options{
		MinColumnWidth:      s.MinColumnWidth,
		TextFilterThreshold: s.TextFilterThreshold,
	}
}

// Level returns the parsed log level, falling back to info.
func (s Settings) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(s.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
