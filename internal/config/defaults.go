package config

import (
	"os"
	"strings"

	"github.com/five82/logdog/internal/match"
)

// Default values for configuration.
const (
	DefaultMode       = "points"
	DefaultMaxRecords = 10000
	DefaultLogEvery   = 1000
	DefaultLevelError = 2
)

// Environment variable names.
const (
	EnvPhrases = "LOGDOG_PHRASES"
	EnvMode    = "LOGDOG_MODE"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Mode:           DefaultMode,
		TextExtensions: []string{".txt", ".log"},
		Evtx: EvtxConfig{
			MaxRecords: DefaultMaxRecords,
			Levels:     []int{DefaultLevelError},
			LogEvery:   DefaultLogEvery,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() error {
	if raw, ok := os.LookupEnv(EnvPhrases); ok && strings.TrimSpace(raw) != "" {
		phrases, err := match.ParsePhrases(raw)
		if err != nil {
			return err
		}
		c.Phrases = phrases
	}
	if mode := os.Getenv(EnvMode); mode != "" {
		c.Mode = mode
	}
	return nil
}
