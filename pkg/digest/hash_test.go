package digest

import (
	"os"
	"path/filepath"
	"testing"
)

// TestHashFileVector checks the hash of "hello world" against the known
// SHA-256 test vector.
func TestHashFileVector(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "hello.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0600); err != nil {
		t.Fatalf("unable to write test file: %v", err)
	}

	result, err := HashFile(path)
	if err != nil {
		t.Fatalf("unable to hash file: %v", err)
	}

	const expected = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if result.String() != expected {
		t.Errorf("hash mismatch: got %s, expected %s", result.String(), expected)
	}
}

// TestHashFileDeterministic ensures identical content always hashes equal.
func TestHashFileDeterministic(t *testing.T) {
	directory := t.TempDir()
	pathA := filepath.Join(directory, "a.txt")
	pathB := filepath.Join(directory, "b.txt")
	content := []byte("identical content, different paths")
	if err := os.WriteFile(pathA, content, 0600); err != nil {
		t.Fatalf("unable to write test file: %v", err)
	}
	if err := os.WriteFile(pathB, content, 0600); err != nil {
		t.Fatalf("unable to write test file: %v", err)
	}

	hashA, err := HashFile(pathA)
	if err != nil {
		t.Fatalf("unable to hash file: %v", err)
	}
	hashB, err := HashFile(pathB)
	if err != nil {
		t.Fatalf("unable to hash file: %v", err)
	}

	if !hashA.Equal(hashB) {
		t.Error("identical content produced different digests")
	}
}

// TestHashFileMissing ensures a missing file produces an error.
func TestHashFileMissing(t *testing.T) {
	if _, err := HashFile(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Error("expected error hashing a missing file")
	}
}
