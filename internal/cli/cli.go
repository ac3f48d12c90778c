package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/specialistvlad/tickgrid/internal/app"
	"github.com/specialistvlad/tickgrid/internal/frameloop"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override flags,
// e.g. TICKGRID_LOG_LEVEL=debug.
const EnvPrefix = "TICKGRID"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
//
// Values are resolved flag first, then TICKGRID_* environment variables,
// then the optional --config file, then defaults.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	v := viper.New()
	var parsed *app.Config
	ran := false

	cmd := newRootCommand(v, func(cmd *cobra.Command, positional []string) error {
		ran = true
		cfg, err := buildConfig(v, positional)
		if err != nil {
			return err
		}
		if cfg == nil {
			slog.Debug("No grid path provided, printing usage and exiting.")
			return cmd.Usage()
		}
		parsed = cfg
		return nil
	})
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(output)
	cmd.SetErr(output)

	if err := cmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return nil, false, exitErr
		}
		return nil, false, usageError("%s", err.Error())
	}
	if !ran || parsed == nil {
		// --help, --version, or no grid path.
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "config", parsed)
	return parsed, false, nil
}

func newRootCommand(v *viper.Viper, run func(*cobra.Command, []string) error) *cobra.Command {
	defaults := frameloop.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "tickgrid [flags] [GRID_PATH]",
		Short: "A declarative frame-callback host",
		Long: `tickgrid - a declarative frame-callback host.

GRID_PATH is a single .hcl file or a directory of .hcl files declaring the
entities and scenes to play. Behaviours are loaded from --modules-path.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          run,
	}

	f := cmd.Flags()
	f.StringP("grid", "g", "", "Path to the grid file or directory.")
	f.String("modules-path", "modules", "Path to the directory containing behaviour manifests.")
	f.Int("frames", 0, "Frames per scene for scenes that do not set their own. 0 runs until interrupted.")
	f.Duration("tick-rate", defaults.TickRate, "Wall-clock interval between frames.")
	f.Duration("fixed-rate", defaults.FixedStep, "Simulated time consumed by one fixed update.")
	f.Int("max-fixed-steps", defaults.MaxFixedSteps, "Maximum fixed updates per frame.")
	f.Bool("dev", false, "Development mode: dispatch the debug_draw phase.")
	f.String("empty-groups", "skip", "Empty order-group policy. Options: 'skip' or 'stop'.")
	f.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	f.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	f.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	f.StringP("config", "c", "", "Config file (yaml, toml or json).")

	_ = v.BindPFlags(f)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return cmd
}

// buildConfig reads the resolved values. It returns nil, nil when no grid
// path was given anywhere.
func buildConfig(v *viper.Viper, positional []string) (*app.Config, error) {
	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, usageError("failed to read config file %s: %v", cfgFile, err)
		}
		slog.Debug("Config file loaded.", "path", v.ConfigFileUsed())
	}

	path := v.GetString("grid")
	if len(positional) > 0 {
		path = positional[0]
	}
	slog.Debug("Grid path determined.", "path", path)
	if path == "" {
		return nil, nil
	}

	logFormat := strings.ToLower(v.GetString("log-format"))
	if logFormat != "text" && logFormat != "json" {
		return nil, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(v.GetString("log-level"))
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	tickRate, err := durationValue(v, "tick-rate")
	if err != nil {
		return nil, err
	}
	fixedRate, err := durationValue(v, "fixed-rate")
	if err != nil {
		return nil, err
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		GridPath:        path,
		ModulesPath:     v.GetString("modules-path"),
		Frames:          v.GetInt("frames"),
		TickRate:        tickRate,
		FixedStep:       fixedRate,
		MaxFixedSteps:   v.GetInt("max-fixed-steps"),
		DevMode:         v.GetBool("dev"),
		EmptyGroups:     strings.ToLower(v.GetString("empty-groups")),
		HealthcheckPort: v.GetInt("healthcheck-port"),
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, usageError("%s", err.Error())
	}
	return config, nil
}

// durationValue rejects values viper could not parse as a duration, which
// GetDuration would otherwise turn into zero.
func durationValue(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.Get(key)
	if s, ok := raw.(string); ok {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, usageError("invalid %s %q: %v", key, s, err)
		}
		return d, nil
	}
	return v.GetDuration(key), nil
}
