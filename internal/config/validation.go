package config

import (
	"errors"
	"fmt"
	"slices"
)

func (c *Config) Validate() error {
	var errs []error

	if err := c.Detect.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("detect: %w", err))
	}

	if err := c.Python.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("python: %w", err))
	}

	if err := c.System.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("system: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Output.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("output: %w", err))
	}

	return errors.Join(errs...)
}

func (d *DetectConfig) Validate() error {
	var errs []error

	if d.CommandTimeout <= 0 {
		errs = append(errs, fmt.Errorf("command_timeout must be positive, got %s", d.CommandTimeout))
	}

	switch d.Platform {
	case "", "linux", "darwin", "windows":
	default:
		errs = append(errs, fmt.Errorf("invalid platform: %s (valid: linux, darwin, windows)", d.Platform))
	}

	for _, name := range d.Skip {
		if !slices.Contains(Detectors, name) {
			errs = append(errs, fmt.Errorf("unknown detector in skip: %s", name))
		}
	}

	return errors.Join(errs...)
}

func (p *PythonConfig) Validate() error {
	if p.Interpreter == "" {
		return fmt.Errorf("interpreter cannot be empty")
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", p.Timeout)
	}
	return nil
}

func (s *SystemConfig) Validate() error {
	for _, p := range s.Paths {
		if p == "" {
			return fmt.Errorf("paths cannot contain an empty entry")
		}
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", l.Level)
	}

	validFormats := map[string]bool{
		"auto": true,
		"json": true,
		"text": true,
	}
	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s (valid: auto, json, text)", l.Format)
	}

	return nil
}

func (o *OutputConfig) Validate() error {
	switch o.Color {
	case "auto", "always", "never":
		return nil
	}
	return fmt.Errorf("invalid color mode: %s (valid: auto, always, never)", o.Color)
}
