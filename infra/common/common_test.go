package common

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSourceHashTracksBuildInputsOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "go.mod", "module example\n")
	writeFile(t, root, "cmd/api/main.go", "package main\n")

	base, err := SourceHash(root)
	if err != nil {
		t.Fatalf("SourceHash: %v", err)
	}

	writeFile(t, root, "cmd/api/main_test.go", "package main\n")
	writeFile(t, root, "infra/main.go", "package main\n")
	writeFile(t, root, ".git/HEAD", "ref: main\n")
	writeFile(t, root, "README.md", "docs\n")
	if got, _ := SourceHash(root); got != base {
		t.Fatalf("hash changed for non-build files: %s != %s", got, base)
	}

	writeFile(t, root, "cmd/api/main.go", "package main\n\nfunc main() {}\n")
	if got, _ := SourceHash(root); got == base {
		t.Fatalf("hash did not change after editing a source file")
	}
}

func TestSourceHashIncludesPaths(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeFile(t, a, "x.go", "package x\n")
	writeFile(t, b, "y.go", "package x\n")

	ha, _ := SourceHash(a)
	hb, _ := SourceHash(b)
	if ha == hb {
		t.Fatalf("renamed file produced the same hash")
	}
}
