package lint

import (
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/mod/modfile"
	"golang.org/x/tools/go/analysis"
)

var (
	projectRootCache = make(map[string]string)
	projectRootMutex sync.RWMutex
)

// projectRootFor returns the directory containing the go.mod governing
// pass's package, walking up from its first file's directory — the location
// spec §6's project-wide lib/checked_exceptions.yaml is resolved relative to.
// Empty if no go.mod is found.
func projectRootFor(pass *analysis.Pass) string {
	pkgPath := pass.Pkg.Path()

	projectRootMutex.RLock()
	if cached, ok := projectRootCache[pkgPath]; ok {
		projectRootMutex.RUnlock()
		return cached
	}
	projectRootMutex.RUnlock()

	root := findGoModDir(packageDir(pass))

	projectRootMutex.Lock()
	projectRootCache[pkgPath] = root
	projectRootMutex.Unlock()
	return root
}

// packageDir returns the directory holding pass's source files.
func packageDir(pass *analysis.Pass) string {
	for _, file := range pass.Files {
		pos := pass.Fset.Position(file.Pos())
		if pos.Filename != "" {
			return filepath.Dir(pos.Filename)
		}
	}
	return ""
}

// findGoModDir walks up from dir until it finds a directory containing a
// parseable go.mod.
func findGoModDir(dir string) string {
	if dir == "" {
		return ""
	}
	for {
		goModPath := filepath.Join(dir, "go.mod")
		if data, err := os.ReadFile(goModPath); err == nil {
			if _, err := modfile.Parse(goModPath, data, nil); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
