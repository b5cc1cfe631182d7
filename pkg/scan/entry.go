// Package scan implements the directory scanner: a recursive walk that
// yields, for every regular file beneath a root, its archive-relative path,
// content digest, and size.
package scan

import "github.com/treepatch/treepatch/pkg/digest"

// Entry is a single scanner output record.
type Entry struct {
	// Path is the archive-relative path (forward-slash separated) of the
	// file, relative to the scanned root.
	Path string
	// Digest is the file's content digest.
	Digest digest.Digest
	// Size is the file's size in bytes. It is informational only and plays
	// no part in equivalence checks between scans.
	Size int64
}
