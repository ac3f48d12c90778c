package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/tickgrid/internal/frameloop"
	"github.com/specialistvlad/tickgrid/internal/registry"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GridPath    string // hcl files: entities and scenes
	ModulesPath string // hcl files: behaviours

	// Frames is the frame count for scenes that do not set their own.
	// Zero runs until the context is cancelled.
	Frames        int
	TickRate      time.Duration
	FixedStep     time.Duration
	MaxFixedSteps int
	DevMode       bool
	// EmptyGroups is "skip" (default) or "stop".
	EmptyGroups string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates cfg and fills in defaults for zero timing values.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GridPath == "" {
		return nil, errors.New("GridPath is a required configuration field and cannot be empty")
	}
	if cfg.Frames < 0 {
		return nil, fmt.Errorf("frames must not be negative, got %d", cfg.Frames)
	}

	defaults := frameloop.DefaultConfig()
	if cfg.TickRate == 0 {
		cfg.TickRate = defaults.TickRate
	}
	if cfg.FixedStep == 0 {
		cfg.FixedStep = defaults.FixedStep
	}
	if cfg.MaxFixedSteps == 0 {
		cfg.MaxFixedSteps = defaults.MaxFixedSteps
	}
	if cfg.TickRate < 0 || cfg.FixedStep < 0 || cfg.MaxFixedSteps < 0 {
		return nil, fmt.Errorf("timing values must be positive (tick-rate=%s, fixed-step=%s, max-fixed-steps=%d)",
			cfg.TickRate, cfg.FixedStep, cfg.MaxFixedSteps)
	}
	if _, err := parseEmptyGroupPolicy(cfg.EmptyGroups); err != nil {
		return nil, err
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("healthcheck port out of range: %d", cfg.HealthcheckPort)
	}
	return &cfg, nil
}

func (c *Config) loopConfig() frameloop.Config {
	return frameloop.Config{
		TickRate:      c.TickRate,
		FixedStep:     c.FixedStep,
		MaxFixedSteps: c.MaxFixedSteps,
		DevMode:       c.DevMode,
	}
}

func parseEmptyGroupPolicy(s string) (registry.EmptyGroupPolicy, error) {
	switch s {
	case "", "skip":
		return registry.SkipEmptyGroups, nil
	case "stop":
		return registry.StopAtEmptyGroup, nil
	default:
		return 0, fmt.Errorf("invalid empty-groups policy %q: must be 'skip' or 'stop'", s)
	}
}
