package error_handling

import (
	"testing"

	"github.com/specialistvlad/tickgrid/internal/integration_tests"
	"github.com/specialistvlad/tickgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test for: grids that cannot be played are rejected before the first frame
func TestErrorHandling_RejectedGrids(t *testing.T) {
	testCases := []struct {
		name    string
		files   integration_tests.Files
		wantErr []string
	}{
		{
			name:    "invalid hcl",
			files:   integration_tests.Files{"main.hcl": "entity \"x\" \"y\" {\n"},
			wantErr: []string{"failed to load configuration"},
		},
		{
			name: "unknown phase",
			files: integration_tests.Files{"modules/m.hcl": `
behaviour "m" {
  callback "render" {
    handler = "OnRecord"
  }
}`},
			wantErr: []string{"Unknown phase"},
		},
		{
			name: "unsupported attribute type",
			files: integration_tests.Files{"modules/m.hcl": `
behaviour "m" {
  attribute "when" {
    type = list(string)
  }
}`},
			wantErr: []string{"failed to load configuration", "Invalid type specification"},
		},
		{
			name: "duplicate behaviour across files",
			files: integration_tests.Files{
				"modules/a.hcl": `behaviour "m" {}`,
				"modules/b.hcl": `behaviour "m" {}`,
			},
			wantErr: []string{`duplicate behaviour "m"`},
		},
		{
			name: "every manifest problem is reported together",
			files: integration_tests.Files{
				"modules/m.hcl": `
behaviour "m" {
  attribute "speed" {
    type = number
  }
  callback "update" {
    handler = "OnMissing"
  }
}`,
				"main.hcl": `
entity "m" "a" {}
entity "m" "a" {
  attributes = { speed = 1, colour = "red" }
}
entity "ghost" "g" {}
`,
			},
			wantErr: []string{
				"manifest validation failed",
				"handler 'OnMissing' is not registered",
				"entity 'a': missing required attribute 'speed'",
				"entity 'a': declared more than once",
				"attribute 'colour' is not declared by behaviour 'm'",
				"entity 'g': unknown behaviour 'ghost'",
			},
		},
		{
			name: "scene entity shadows a global",
			files: integration_tests.Files{
				"modules/m.hcl": `behaviour "m" {}`,
				"main.hcl": `
entity "m" "a" {}
scene "s" {
  entity "m" "a" {}
}`,
			},
			wantErr: []string{"scene 's', entity 'a': declared more than once"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &testutil.Recorder{}
			err := integration_tests.BuildError(t, tc.files, &integration_tests.RecordingModule{Rec: rec, Names: []string{"OnRecord"}})

			require.Error(t, err)
			for _, want := range tc.wantErr {
				assert.Contains(t, err.Error(), want)
			}
			assert.Empty(t, rec.Calls())
		})
	}
}
