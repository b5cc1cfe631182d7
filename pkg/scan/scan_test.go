package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for relative, content := range files {
		full := filepath.Join(root, relative)
		if err := os.MkdirAll(filepath.Dir(full), 0700); err != nil {
			t.Fatalf("unable to create directory: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0600); err != nil {
			t.Fatalf("unable to write file: %v", err)
		}
	}
}

// TestScanMissingRootIsEmpty ensures that scanning a non-existent directory
// returns an empty map, not an error.
func TestScanMissingRootIsEmpty(t *testing.T) {
	entries, err := Scan(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty scan, got %d entries", len(entries))
	}
}

// TestScanBasic verifies that regular files are found at their relative
// paths and symlinks are skipped.
func TestScanBasic(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":        "alpha",
		"sub/b.txt":    "beta",
		"sub/sub2/c.md": "gamma",
	})
	if err := os.Symlink(filepath.Join(root, "a.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported on this platform: %v", err)
	}

	entries, err := Scan(root, nil)
	if err != nil {
		t.Fatalf("unable to scan: %v", err)
	}

	for _, expected := range []string{"a.txt", "sub/b.txt", "sub/sub2/c.md"} {
		if _, ok := entries[expected]; !ok {
			t.Errorf("missing expected entry %q", expected)
		}
	}
	if _, ok := entries["link.txt"]; ok {
		t.Error("symlink should not have been included in scan")
	}
}

// TestScanDeterministicDigest ensures identical content at different paths
// produces identical digests.
func TestScanDeterministicDigest(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"one.txt": "same content",
		"two.txt": "same content",
	})

	entries, err := Scan(root, nil)
	if err != nil {
		t.Fatalf("unable to scan: %v", err)
	}
	if entries["one.txt"].Digest != entries["two.txt"].Digest {
		t.Error("identical content produced different digests")
	}
}

// TestScanIgnore verifies that ignored paths are excluded entirely.
func TestScanIgnore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"keep.txt":       "keep",
		"skip.log":       "skip",
		"vendor/dep.txt": "vendored",
	})

	ignorer, err := NewIgnorer([]string{"*.log", "vendor/"})
	if err != nil {
		t.Fatalf("unable to build ignorer: %v", err)
	}

	entries, err := Scan(root, ignorer)
	if err != nil {
		t.Fatalf("unable to scan: %v", err)
	}

	if _, ok := entries["skip.log"]; ok {
		t.Error("skip.log should have been ignored")
	}
	if _, ok := entries["vendor/dep.txt"]; ok {
		t.Error("vendor/dep.txt should have been ignored via directory pattern")
	}
	if _, ok := entries["keep.txt"]; !ok {
		t.Error("keep.txt should not have been ignored")
	}
}

// TestScanIgnoreNegation verifies that a later negated pattern can override
// an earlier ignore at the same depth.
func TestScanIgnoreNegation(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.log":       "a",
		"important.log": "important",
	})

	ignorer, err := NewIgnorer([]string{"*.log", "!important.log"})
	if err != nil {
		t.Fatalf("unable to build ignorer: %v", err)
	}

	entries, err := Scan(root, ignorer)
	if err != nil {
		t.Fatalf("unable to scan: %v", err)
	}

	if _, ok := entries["a.log"]; ok {
		t.Error("a.log should have been ignored")
	}
	if _, ok := entries["important.log"]; !ok {
		t.Error("important.log should have been un-ignored")
	}
}
