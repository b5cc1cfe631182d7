package patch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/treepatch/treepatch/pkg/scan"
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

func scanTree(t *testing.T, root string) map[string]scan.Entry {
	t.Helper()
	entries, err := scan.Scan(root, nil)
	if err != nil {
		t.Fatalf("unable to scan %s: %v", root, err)
	}
	return entries
}

func assertScansEqual(t *testing.T, got, want map[string]scan.Entry) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("scan size mismatch: got %d entries, want %d (%v vs %v)", len(got), len(want), got, want)
	}
	for path, wantEntry := range want {
		gotEntry, ok := got[path]
		if !ok {
			t.Fatalf("missing expected path %q", path)
		}
		if gotEntry.Digest != wantEntry.Digest {
			t.Errorf("digest mismatch for %q", path)
		}
	}
}

// TestCreateApplyRoundTrip mirrors the specification's create+apply round
// trip scenario: diffing a source and target tree, applying the result to a
// copy of the source, and checking that the result matches the target.
func TestCreateApplyRoundTrip(t *testing.T) {
	root := t.TempDir()
	sourceDir := filepath.Join(root, "source")
	targetDir := filepath.Join(root, "target")
	workingDir := filepath.Join(root, "working")

	writeTree(t, sourceDir, map[string]string{
		"same.txt":    "same",
		"removed.txt": "old",
		"changed.txt": "before",
	})
	writeTree(t, targetDir, map[string]string{
		"same.txt":    "same",
		"added.txt":   "new",
		"changed.txt": "after",
	})
	writeTree(t, workingDir, map[string]string{
		"same.txt":    "same",
		"removed.txt": "old",
		"changed.txt": "before",
	})

	patchPath := filepath.Join(root, "patch.tpatch")
	if err := Create(sourceDir, targetDir, patchPath, CreateOptions{}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := Apply(workingDir, patchPath); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	assertScansEqual(t, scanTree(t, workingDir), scanTree(t, targetDir))
}

// TestCreateEmptyDiff ensures that diffing two identical trees reports
// ErrEmptyDiff and writes no archive.
func TestCreateEmptyDiff(t *testing.T) {
	root := t.TempDir()
	sourceDir := filepath.Join(root, "source")
	targetDir := filepath.Join(root, "target")
	writeTree(t, sourceDir, map[string]string{"a.txt": "same"})
	writeTree(t, targetDir, map[string]string{"a.txt": "same"})

	patchPath := filepath.Join(root, "patch.tpatch")
	err := Create(sourceDir, targetDir, patchPath, CreateOptions{})
	if err != ErrEmptyDiff {
		t.Fatalf("expected ErrEmptyDiff, got %v", err)
	}
	if _, statErr := os.Stat(patchPath); !os.IsNotExist(statErr) {
		t.Error("expected no archive to be written for an empty diff")
	}
}

// TestThreeVersionMerge mirrors the specification's three-version merge
// scenario: composing diff(S0,S1) and diff(S1,S2) should apply to a copy of
// S0 to yield S2.
func TestThreeVersionMerge(t *testing.T) {
	root := t.TempDir()
	s0 := filepath.Join(root, "s0")
	s1 := filepath.Join(root, "s1")
	s2 := filepath.Join(root, "s2")
	working := filepath.Join(root, "working")

	writeTree(t, s0, map[string]string{
		"stay": "base",
		"edit": "v1",
		"drop": "remove",
	})
	writeTree(t, s1, map[string]string{
		"stay":    "base",
		"edit":    "v2",
		"new_mid": "mid add",
	})
	writeTree(t, s2, map[string]string{
		"stay":       "base",
		"edit":       "v3",
		"new_mid":    "mid add updated",
		"final_only": "final add",
	})
	writeTree(t, working, map[string]string{
		"stay": "base",
		"edit": "v1",
		"drop": "remove",
	})

	p1 := filepath.Join(root, "p1.tpatch")
	p2 := filepath.Join(root, "p2.tpatch")
	merged := filepath.Join(root, "merged.tpatch")

	if err := Create(s0, s1, p1, CreateOptions{}); err != nil {
		t.Fatalf("unable to create p1: %v", err)
	}
	if err := Create(s1, s2, p2, CreateOptions{}); err != nil {
		t.Fatalf("unable to create p2: %v", err)
	}
	if err := Merge(p1, p2, merged); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if err := Apply(working, merged); err != nil {
		t.Fatalf("Apply of merged patch failed: %v", err)
	}

	assertScansEqual(t, scanTree(t, working), scanTree(t, s2))
}

// TestApplyRejectsCorruptArchive ensures a non-archive file is rejected as
// InvalidPatch and leaves the target tree untouched.
func TestApplyRejectsCorruptArchive(t *testing.T) {
	root := t.TempDir()
	targetDir := filepath.Join(root, "target")
	writeTree(t, targetDir, map[string]string{"a.txt": "unchanged"})

	patchPath := filepath.Join(root, "bad.tpatch")
	if err := os.WriteFile(patchPath, []byte("not a tar.gz"), 0600); err != nil {
		t.Fatalf("unable to write corrupt patch: %v", err)
	}

	err := Apply(targetDir, patchPath)
	if err == nil {
		t.Fatal("expected Apply to reject a corrupt archive")
	}
	var invalidPatch *InvalidPatchError
	if !errors.As(err, &invalidPatch) {
		t.Errorf("expected an *InvalidPatchError in the chain, got %T: %v", err, err)
	}

	contents, readErr := os.ReadFile(filepath.Join(targetDir, "a.txt"))
	if readErr != nil || string(contents) != "unchanged" {
		t.Error("target tree was modified despite a rejected patch")
	}
}
