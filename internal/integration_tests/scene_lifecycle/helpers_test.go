package scene_lifecycle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// readManifest returns the manifest shipped with a built-in module.
func readManifest(t *testing.T, module string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("..", "..", "..", "modules", module, "manifest.hcl"))
	require.NoError(t, err)
	return string(content)
}
