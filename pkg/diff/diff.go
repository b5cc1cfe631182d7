// Package diff compares two directory scans and produces the sequence of
// per-file actions needed to transform the source into the target.
package diff

import "github.com/treepatch/treepatch/pkg/scan"

// Kind identifies the category of a file action.
type Kind uint8

const (
	// Added indicates a file present in the target but absent from the
	// source.
	Added Kind = iota
	// Deleted indicates a file present in the source but absent from the
	// target.
	Deleted
	// Modified indicates a file present in both trees with differing
	// digests.
	Modified
)

// String returns a human-readable name for the action kind.
func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	case Modified:
		return "modified"
	default:
		return "unknown"
	}
}

// Symbol returns the single-character marker used for the action kind in CLI
// output, matching the teacher's convention of a leading +/-/* column.
func (k Kind) Symbol() string {
	switch k {
	case Added:
		return "+"
	case Deleted:
		return "-"
	case Modified:
		return "*"
	default:
		return "?"
	}
}

// Action is a single file-level difference between a source and target scan.
type Action struct {
	// Kind is the category of the action.
	Kind Kind
	// Path is the archive-relative path the action applies to.
	Path string
}

// Diff compares a source scan and a target scan and returns the sequence of
// actions that, if applied to source, would transform it into target. The
// order of the returned slice is unspecified.
func Diff(source, target map[string]scan.Entry) []Action {
	var actions []Action

	for path, targetEntry := range target {
		if sourceEntry, ok := source[path]; ok {
			if sourceEntry.Digest != targetEntry.Digest {
				actions = append(actions, Action{Kind: Modified, Path: path})
			}
		} else {
			actions = append(actions, Action{Kind: Added, Path: path})
		}
	}

	for path := range source {
		if _, ok := target[path]; !ok {
			actions = append(actions, Action{Kind: Deleted, Path: path})
		}
	}

	return actions
}
