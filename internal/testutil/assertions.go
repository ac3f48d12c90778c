package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertLogged checks that every fragment appears on a single line of the
// captured log output.
func AssertLogged(t *testing.T, logs string, fragments ...string) {
	t.Helper()
	require.True(t, findLine(logs, fragments), "expected a log line containing %q, got:\n%s", fragments, logs)
}

// AssertNotLogged checks that no single line contains every fragment.
func AssertNotLogged(t *testing.T, logs string, fragments ...string) {
	t.Helper()
	require.False(t, findLine(logs, fragments), "unexpected log line containing %q, got:\n%s", fragments, logs)
}

func findLine(logs string, fragments []string) bool {
	for _, line := range strings.Split(logs, "\n") {
		matched := true
		for _, f := range fragments {
			if !strings.Contains(line, f) {
				matched = false
				break
			}
		}
		if matched && line != "" {
			return true
		}
	}
	return false
}
