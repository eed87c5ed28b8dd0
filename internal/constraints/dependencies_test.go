package constraints

import (
	"bytes"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

type goListPackage struct {
	ImportPath string
	Imports    []string
}

const modulePrefix = "github.com/jacoelho/rowmap/internal/"

var enginePackages = []string{
	"number",
	"value",
	"path",
	"projection",
	"filter",
	"sorting",
	"paginate",
	"mapping",
}

var servicePackages = []string{
	"apperr",
	"config",
	"logger",
	"metrics",
	"ratelimit",
	"server",
	"source",
	"store",
}

func TestEnginePackagesDoNotImportServicePackages(t *testing.T) {
	t.Parallel()

	engine := packageSet(enginePackages)
	packages := goList(t, "./internal/...")

	var violations []string
	for _, pkg := range packages {
		if _, ok := engine[pkg.ImportPath]; !ok {
			continue
		}
		for _, imp := range pkg.Imports {
			for _, name := range servicePackages {
				if imp == modulePrefix+name {
					violations = append(violations, pkg.ImportPath+" imports "+imp)
				}
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("found forbidden engine->service imports:\n%s", strings.Join(violations, "\n"))
	}
}

func TestStoreDoesNotImportHTTPSurface(t *testing.T) {
	t.Parallel()

	packages := goList(t, "./internal/store/...")
	forbidden := map[string]struct{}{
		modulePrefix + "server":    {},
		"github.com/gin-gonic/gin": {},
	}

	var violations []string
	for _, pkg := range packages {
		for _, imp := range pkg.Imports {
			if _, banned := forbidden[imp]; banned {
				violations = append(violations, pkg.ImportPath+" imports "+imp)
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("found forbidden store imports:\n%s", strings.Join(violations, "\n"))
	}
}

func TestPurePackagesAvoidSideEffectImports(t *testing.T) {
	t.Parallel()

	purePackages := packageSet(enginePackages)

	forbidden := map[string]struct{}{
		"os":           {},
		"net/http":     {},
		"log/slog":     {},
		"database/sql": {},
		"math/rand":    {},
		"math/rand/v2": {},
	}

	packages := goList(t, "./internal/...")

	var violations []string
	for _, pkg := range packages {
		if _, ok := purePackages[pkg.ImportPath]; !ok {
			continue
		}
		for _, imp := range pkg.Imports {
			if _, banned := forbidden[imp]; banned {
				violations = append(violations, pkg.ImportPath+" imports forbidden package "+imp)
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("found forbidden imports in pure packages:\n%s", strings.Join(violations, "\n"))
	}
}

func packageSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[modulePrefix+name] = struct{}{}
	}
	return set
}

func goList(t *testing.T, patterns ...string) []goListPackage {
	t.Helper()

	args := append([]string{"list", "-json"}, patterns...)
	cmd := exec.Command("go", args...)
	cmd.Dir = repoRoot(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.Fatalf("go list failed: %v\nstderr:\n%s", err, stderr.String())
	}

	decoder := json.NewDecoder(bytes.NewReader(stdout.Bytes()))
	var packages []goListPackage
	for decoder.More() {
		var pkg goListPackage
		if err := decoder.Decode(&pkg); err != nil {
			t.Fatalf("decode go list json: %v", err)
		}
		packages = append(packages, pkg)
	}

	return packages
}

func repoRoot(t *testing.T) string {
	t.Helper()

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}

	return filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
}
