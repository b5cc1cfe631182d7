package patch

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/treepatch/treepatch/pkg/digest"
)

// FormatVersion is the container format version produced and accepted by
// this implementation.
const FormatVersion = "1.0"

// Metadata is the content of a patch's metadata.toml.
type Metadata struct {
	// Version is the container format version.
	Version string `toml:"version"`
	// CreatedAt is the RFC-3339 UTC timestamp identifying when the patch was
	// produced. It carries no semantic meaning for apply or merge, but
	// external orderers (e.g. drag-and-drop wrappers that need to apply
	// patches in sequence) use it to order a set of patches.
	CreatedAt string `toml:"created_at"`
	// SourceVersion optionally names the pre-patch version.
	SourceVersion string `toml:"source_version,omitempty"`
	// TargetVersion optionally names the post-patch version.
	TargetVersion string `toml:"target_version,omitempty"`
	// Description optionally describes the patch.
	Description string `toml:"description,omitempty"`
}

// NewMetadata returns a Metadata record stamped with the current time and
// the format version this implementation produces.
func NewMetadata(now time.Time) Metadata {
	return Metadata{
		Version:   FormatVersion,
		CreatedAt: now.UTC().Format(time.RFC3339),
	}
}

// ModifiedChecksum carries the checksum chain for a single modified file:
// the digest the target tree must currently have (the precondition) and the
// digest of the content the patch delivers.
type ModifiedChecksum struct {
	Original digest.Digest `toml:"original"`
	Modified digest.Digest `toml:"modified"`
}

// Checksums is the content of a patch's checksums.toml: the manifest
// describing the added, modified, and deleted file sets.
type Checksums struct {
	// Added maps path to the digest of the shipped content.
	Added map[string]digest.Digest `toml:"added"`
	// Modified maps path to its checksum chain.
	Modified map[string]ModifiedChecksum `toml:"modified"`
	// Deleted lists paths to remove. Order is preserved on disk but carries
	// no semantic meaning.
	Deleted []string `toml:"deleted"`
}

// NewChecksums returns an empty, initialized Checksums value.
func NewChecksums() *Checksums {
	return &Checksums{
		Added:    make(map[string]digest.Digest),
		Modified: make(map[string]ModifiedChecksum),
	}
}

// IsEmpty reports whether the manifest describes no changes at all.
func (c *Checksums) IsEmpty() bool {
	return len(c.Added) == 0 && len(c.Modified) == 0 && len(c.Deleted) == 0
}

// Summary returns a short human-readable description of the manifest's
// contents.
func (c *Checksums) Summary() string {
	return fmt.Sprintf("%d added, %d modified, %d deleted",
		len(c.Added), len(c.Modified), len(c.Deleted))
}

// EnsureValid checks the manifest's structural invariants: the three key
// sets must be pairwise disjoint, and every path must be a valid relative
// archive path.
func (c *Checksums) EnsureValid(validatePath func(string) error) error {
	seen := make(map[string]string, len(c.Added)+len(c.Modified)+len(c.Deleted))

	mark := func(path, set string) error {
		if err := validatePath(path); err != nil {
			return errors.Wrapf(err, "invalid path in %s set", set)
		}
		if existing, ok := seen[path]; ok {
			return errors.Errorf("path %q appears in both %s and %s", path, existing, set)
		}
		seen[path] = set
		return nil
	}

	for path := range c.Added {
		if err := mark(path, "added"); err != nil {
			return err
		}
	}
	for path := range c.Modified {
		if err := mark(path, "modified"); err != nil {
			return err
		}
	}
	for _, path := range c.Deleted {
		if err := mark(path, "deleted"); err != nil {
			return err
		}
	}

	return nil
}
