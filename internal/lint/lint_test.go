package lint_test

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"

	"github.com/go-checked/checkedexceptions/internal/lint"
)

func TestUncaughtThrow(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), lint.UncaughtThrowAnalyzer, "uncaughtthrow")
}

func TestUnsafeAssignment(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), lint.UnsafeAssignmentAnalyzer, "unsafeassignment")
}

func TestUnsafeOverride(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), lint.UnsafeOverrideAnalyzer, "unsafeoverride")
}
