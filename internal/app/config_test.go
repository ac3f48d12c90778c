package app

import (
	"testing"
	"time"

	"github.com/specialistvlad/tickgrid/internal/frameloop"
	"github.com/specialistvlad/tickgrid/internal/registry"
	"github.com/specialistvlad/tickgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(Config{GridPath: "grid.hcl"})
	require.NoError(t, err)

	defaults := frameloop.DefaultConfig()
	assert.Equal(t, defaults.TickRate, cfg.TickRate)
	assert.Equal(t, defaults.FixedStep, cfg.FixedStep)
	assert.Equal(t, defaults.MaxFixedSteps, cfg.MaxFixedSteps)

	cfg.DevMode = true
	assert.Equal(t, frameloop.Config{
		TickRate:      defaults.TickRate,
		FixedStep:     defaults.FixedStep,
		MaxFixedSteps: defaults.MaxFixedSteps,
		DevMode:       true,
	}, cfg.loopConfig())
}

func TestNewConfig_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"missing grid path", Config{}, "GridPath is a required"},
		{"negative frames", Config{GridPath: "g", Frames: -1}, "frames must not be negative"},
		{"negative tick rate", Config{GridPath: "g", TickRate: -time.Second}, "timing values must be positive"},
		{"bad policy", Config{GridPath: "g", EmptyGroups: "halt"}, "invalid empty-groups policy"},
		{"bad port", Config{GridPath: "g", HealthcheckPort: 70000}, "healthcheck port out of range"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestParseEmptyGroupPolicy(t *testing.T) {
	p, err := parseEmptyGroupPolicy("")
	require.NoError(t, err)
	assert.Equal(t, registry.SkipEmptyGroups, p)

	p, err = parseEmptyGroupPolicy("stop")
	require.NoError(t, err)
	assert.Equal(t, registry.StopAtEmptyGroup, p)
}

func TestNewLogger(t *testing.T) {
	buf := &testutil.SafeBuffer{}
	logger := newLogger("warn", "json", buf)
	logger.Info("hidden")
	logger.Warn("Shown.", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"Shown."`)
}
