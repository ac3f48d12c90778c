package app

import (
	"os"
	"testing"

	"github.com/specialistvlad/tickgrid/internal/handlers"
	"github.com/specialistvlad/tickgrid/internal/hcl_adapter"
	"github.com/specialistvlad/tickgrid/internal/testutil"
	"github.com/stretchr/testify/require"
)

// SetupAppTest creates a new app instance for system testing. Logs and
// module output share the returned buffer.
func SetupAppTest(t *testing.T, appConfig *Config, modules ...handlers.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	appConfig.LogLevel = "debug"
	appConfig.LogFormat = "text"
	cfg, err := NewConfig(*appConfig)
	require.NoError(t, err)

	testApp, err := NewApp(logBuffer, cfg, hcl_adapter.NewLoader(), modules...)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("TICKGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
