package config

import "time"

// Detector names accepted by detect.skip.
var Detectors = []string{"nvidia", "amd", "opencl", "platform", "pci", "cuda", "python"}

func Default() *Config {
	return &Config{
		Detect: DetectConfig{
			CommandTimeout: 10 * time.Second,
		},
		Python: PythonConfig{
			Enabled:     true,
			Interpreter: "python3",
			Timeout:     15 * time.Second,
		},
		System: SystemConfig{
			Paths: []string{"/"},
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "auto",
		},
		Output: OutputConfig{
			Color: "auto",
		},
	}
}
