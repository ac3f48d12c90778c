package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsExportedSymbol(t *testing.T) {
	cases := map[string]bool{
		"github.com/x/pkg.(*Widget).Tick-fm":     true,
		"github.com/x/pkg.(*Widget).tick-fm":     false,
		"github.com/x/pkg.Widget.Tick-fm":        true,
		"github.com/x/pkg.OnTick":                true,
		"github.com/x/pkg.onTick":                false,
		"github.com/x/pkg.NewWidget.func1":       false,
		"github.com/x/pkg.NewWidget.func1.1":     false,
		"github.com/x/pkg.Wrap[...].func2":       false,
		"github.com/x/pkg.(*Box[...]).Update-fm": true,
		"":                                       false,
	}
	for symbol, want := range cases {
		assert.Equal(t, want, isExportedSymbol(symbol), "symbol %q", symbol)
	}
}

func TestShortSymbol(t *testing.T) {
	assert.Equal(t, "pkg.(*Widget).Tick", shortSymbol("github.com/x/pkg.(*Widget).Tick-fm"))
	assert.Equal(t, "main.run", shortSymbol("main.run"))
}
