package app

import "errors"

// Config holds all the configuration an App instance needs to run.
type Config struct {
	ManifestPath string // hcl files
	LockPath     string // pinned dependency graph, read-only
	OutDir       string // published outputs, one subdirectory per platform

	// Systems restricts the platform matrix; empty means the default cross
	// product.
	Systems []string

	// SourceRev is the build-identity marker recorded in the descriptor
	// environment. Empty marks a dirty working copy.
	SourceRev string

	// DryRun assembles and prints descriptors without invoking the build
	// executor.
	DryRun bool

	LogFormat   string
	LogLevel    string
	WorkerCount int
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ManifestPath == "" {
		return nil, errors.New("ManifestPath is a required configuration field and cannot be empty")
	}
	if cfg.LockPath == "" {
		return nil, errors.New("LockPath is a required configuration field and cannot be empty")
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "result"
	}
	return &cfg, nil
}
