package config

import "time"

// Config holds every setting the probe reads. Each section can be set from
// a YAML or TOML file and overridden by GPUPROBE_* environment variables.
type Config struct {
	Detect  DetectConfig  `yaml:"detect" toml:"detect"`
	Python  PythonConfig  `yaml:"python" toml:"python"`
	System  SystemConfig  `yaml:"system" toml:"system"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
	Output  OutputConfig  `yaml:"output" toml:"output"`
}

type DetectConfig struct {
	// CommandTimeout bounds every external tool invocation.
	CommandTimeout time.Duration `yaml:"command_timeout" toml:"command_timeout" env:"GPUPROBE_COMMAND_TIMEOUT"`
	// Platform overrides host detection: linux, darwin or windows. Empty means
	// the running OS.
	Platform string `yaml:"platform" toml:"platform" env:"GPUPROBE_PLATFORM"`
	// Skip lists detectors that are never tried.
	Skip []string `yaml:"skip" toml:"skip" env:"GPUPROBE_SKIP"`
}

type PythonConfig struct {
	Enabled     bool          `yaml:"enabled" toml:"enabled" env:"GPUPROBE_PYTHON_ENABLED"`
	Interpreter string        `yaml:"interpreter" toml:"interpreter" env:"GPUPROBE_PYTHON"`
	Timeout     time.Duration `yaml:"timeout" toml:"timeout" env:"GPUPROBE_PYTHON_TIMEOUT"`
}

type SystemConfig struct {
	// Paths are the mount points reported in Disk sections.
	Paths []string `yaml:"paths" toml:"paths" env:"GPUPROBE_DISK_PATHS"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" env:"GPUPROBE_LOG_LEVEL"`
	Format string `yaml:"format" toml:"format" env:"GPUPROBE_LOG_FORMAT"`
}

type OutputConfig struct {
	// Color is auto, always or never.
	Color   string `yaml:"color" toml:"color" env:"GPUPROBE_COLOR"`
	Verbose bool   `yaml:"verbose" toml:"verbose" env:"GPUPROBE_VERBOSE"`
}

// Skipped reports whether the named detector is listed in detect.skip.
func (c *Config) Skipped(name string) bool {
	for _, s := range c.Detect.Skip {
		if s == name {
			return true
		}
	}
	return false
}
