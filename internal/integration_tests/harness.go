// Package integration_tests drives whole grids through the loader, manifest
// resolution, the registry and the frame loop. Each subpackage covers one
// area of behaviour; this package holds the shared harness.
package integration_tests

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/specialistvlad/tickgrid/internal/app"
	"github.com/specialistvlad/tickgrid/internal/binding"
	"github.com/specialistvlad/tickgrid/internal/handlers"
	"github.com/specialistvlad/tickgrid/internal/hcl_adapter"
	"github.com/specialistvlad/tickgrid/internal/testutil"
	"github.com/stretchr/testify/require"
)

// runTimeout bounds a grid run that never finishes on its own.
const runTimeout = 5 * time.Second

// Result is the outcome of one integration run.
type Result struct {
	App    *app.App
	Output string
	Err    error
}

// Files maps a relative path to file content. Paths under "modules/" go to
// the modules directory, everything else to the grid directory.
type Files map[string]string

// WriteFiles lays files out under a fresh temp dir and returns the grid and
// modules directories.
func WriteFiles(t *testing.T, files Files) (gridDir, modulesDir string) {
	t.Helper()
	root := t.TempDir()
	gridDir = filepath.Join(root, "grid")
	modulesDir = filepath.Join(root, "modules")
	require.NoError(t, os.MkdirAll(gridDir, 0o755))
	require.NoError(t, os.MkdirAll(modulesDir, 0o755))

	for name, content := range files {
		path := filepath.Join(gridDir, name)
		if rel, ok := strings.CutPrefix(name, "modules/"); ok {
			path = filepath.Join(modulesDir, rel)
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return gridDir, modulesDir
}

// RunIntegrationTest writes files, builds the app from them and plays it to
// completion. cfg.GridPath and cfg.ModulesPath are filled in. The app must
// build; use BuildError for grids expected to be rejected.
func RunIntegrationTest(t *testing.T, files Files, cfg app.Config, modules ...handlers.Module) *Result {
	t.Helper()
	cfg.GridPath, cfg.ModulesPath = WriteFiles(t, files)
	if cfg.TickRate == 0 {
		cfg.TickRate = time.Millisecond
	}

	a, out := app.SetupAppTest(t, &cfg, modules...)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	err := a.Run(ctx)
	return &Result{App: a, Output: out.String(), Err: err}
}

// BuildError writes files and returns the error from building the app.
func BuildError(t *testing.T, files Files, modules ...handlers.Module) error {
	t.Helper()
	gridDir, modulesDir := WriteFiles(t, files)
	cfg, err := app.NewConfig(app.Config{GridPath: gridDir, ModulesPath: modulesDir})
	require.NoError(t, err)

	_, err = app.NewApp(&testutil.SafeBuffer{}, cfg, hcl_adapter.NewLoader(), modules...)
	return err
}

// RecordingModule registers one handler per name. Each bound procedure
// records "<handler>:<entity name>" into Rec.
type RecordingModule struct {
	Rec   *testutil.Recorder
	Names []string
}

// Register implements handlers.Module.
func (m *RecordingModule) Register(h *handlers.Handlers) {
	for _, name := range m.Names {
		h.RegisterHandler(name, &handlers.RegisteredHandler{
			Description: "Records its invocations.",
			Bind: func(bc handlers.BindContext) binding.Procedure {
				return m.Rec.Record(name + ":" + bc.Entity.Name())
			},
		})
	}
}

// DespawnModule registers "OnDespawnTarget": the bound procedure records its
// call and despawns the entity named by the "target" attribute, once.
type DespawnModule struct {
	Rec *testutil.Recorder
}

// Register implements handlers.Module.
func (m *DespawnModule) Register(h *handlers.Handlers) {
	h.RegisterHandler("OnDespawnTarget", &handlers.RegisteredHandler{
		Description: "Despawns the entity named by `target`.",
		Bind: func(bc handlers.BindContext) binding.Procedure {
			record := m.Rec.Record("OnDespawnTarget:" + bc.Entity.Name())
			target := bc.Entity.Str("target", "")
			return func() {
				record()
				if victim, ok := bc.Entity.World().Find(target); ok {
					victim.Despawn()
				}
			}
		},
	})
}
