package patch

import (
	"testing"

	"github.com/treepatch/treepatch/pkg/digest"
)

func TestChecksumsIsEmpty(t *testing.T) {
	c := NewChecksums()
	if !c.IsEmpty() {
		t.Error("expected a fresh Checksums to be empty")
	}
	c.Deleted = append(c.Deleted, "a.txt")
	if c.IsEmpty() {
		t.Error("expected Checksums with a deletion to be non-empty")
	}
}

func TestChecksumsEnsureValidRejectsOverlap(t *testing.T) {
	c := NewChecksums()
	c.Added["a.txt"] = digest.Digest{1}
	c.Deleted = append(c.Deleted, "a.txt")

	if err := c.EnsureValid(func(string) error { return nil }); err == nil {
		t.Error("expected overlapping added/deleted paths to be rejected")
	}
}

func TestChecksumsEnsureValidRejectsBadPath(t *testing.T) {
	c := NewChecksums()
	c.Added["../escape"] = digest.Digest{1}

	validate := func(p string) error {
		if p == "../escape" {
			return errTestInvalidPath
		}
		return nil
	}
	if err := c.EnsureValid(validate); err == nil {
		t.Error("expected invalid path to be rejected")
	}
}

var errTestInvalidPath = &InvalidPatchError{Cause: errTestInvalidPathCause{}}

type errTestInvalidPathCause struct{}

func (errTestInvalidPathCause) Error() string { return "invalid path" }

func TestChecksumsSummary(t *testing.T) {
	c := NewChecksums()
	c.Added["a.txt"] = digest.Digest{1}
	c.Deleted = append(c.Deleted, "b.txt", "c.txt")

	summary := c.Summary()
	if summary == "" {
		t.Error("expected a non-empty summary")
	}
}
