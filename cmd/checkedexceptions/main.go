// Command checkedexceptions runs the three checked-exceptions lint rules as
// a standalone go vet-style binary, bundling them the way the golangci-lint
// plugin (internal/lint/plugin.go) does for editor/CI integration instead.
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"

	"github.com/go-checked/checkedexceptions/internal/lint"
)

func main() {
	multichecker.Main(
		lint.UncaughtThrowAnalyzer,
		lint.UnsafeAssignmentAnalyzer,
		lint.UnsafeOverrideAnalyzer,
	)
}
