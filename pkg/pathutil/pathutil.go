// Package pathutil normalizes relative paths at the boundary between the
// host filesystem and a patch archive. A manifest path must always use
// forward slashes and a single Unicode normal form, regardless of which
// platform or filesystem produced it, so that a patch built on one host
// applies identically on another.
package pathutil

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// ToArchive converts a host-native relative path (using the OS path
// separator) into the archive's canonical form: forward-slash separated and
// NFC-normalized. This mirrors, for Unicode form, the same boundary
// normalization that native separators require — a host might produce
// decomposed Unicode (as HFS+ historically did) just as readily as it might
// produce backslash separators.
func ToArchive(nativePath string) string {
	return norm.NFC.String(filepath.ToSlash(nativePath))
}

// Validate ensures that an archive-form path is relative, contains no ".."
// traversal segments, and does not begin with a slash, per the container's
// path invariants.
func Validate(archivePath string) error {
	if archivePath == "" {
		return errors.New("empty path")
	}
	if strings.HasPrefix(archivePath, "/") {
		return errors.Errorf("path %q begins with a slash", archivePath)
	}
	cleaned := path.Clean(archivePath)
	for _, segment := range strings.Split(cleaned, "/") {
		if segment == ".." {
			return errors.Errorf("path %q contains a traversal segment", archivePath)
		}
	}
	return nil
}

// FromArchive converts an archive-form path back into a host-native relative
// path, suitable for joining onto a target tree root with filepath.Join.
func FromArchive(archivePath string) string {
	return filepath.FromSlash(archivePath)
}
