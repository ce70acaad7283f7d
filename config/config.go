// Package config holds the daemon configuration and its defaults.
package config

import (
	"os"
	"path/filepath"
)

// Default listen address and port of the API server.
const (
	DefaultHost = "0.0.0.0"
	DefaultPort = 8080
)

// Config is the tierproofd daemon configuration.
type Config struct {
	// Host and Port are the API listen address.
	Host string
	Port int
	// DataDir is the base directory for the credential ledger database.
	DataDir string
	// ArtifactsDir holds the compiled circuit artifacts. Empty means a
	// subdirectory of DataDir.
	ArtifactsDir string
	// LogLevel is one of debug, info, warn or error.
	LogLevel string
}

// New returns a Config with all defaults filled in.
func New() *Config {
	return &Config{
		Host:     DefaultHost,
		Port:     DefaultPort,
		DataDir:  defaultDataDir(),
		LogLevel: "info",
	}
}

// Artifacts returns the effective artifacts directory.
func (c *Config) Artifacts() string {
	if c.ArtifactsDir != "" {
		return c.ArtifactsDir
	}
	return filepath.Join(c.DataDir, "artifacts")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tierproofd"
	}
	return filepath.Join(home, ".tierproofd")
}
