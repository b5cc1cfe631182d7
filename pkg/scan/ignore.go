package scan

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// ignorePattern represents a single parsed ignore pattern, in the same
// syntax the teacher project uses for its ignore masks: a leading "!"
// negates, a trailing "/" restricts the pattern to directories, and a
// pattern with no interior slash also matches against a path's base name.
type ignorePattern struct {
	negated       bool
	directoryOnly bool
	matchLeaf     bool
	pattern       string
}

// newIgnorePattern validates and parses a single ignore pattern.
func newIgnorePattern(pattern string) (*ignorePattern, error) {
	if pattern == "" {
		return nil, errors.New("empty pattern")
	}

	var negated bool
	if pattern[0] == '!' {
		negated = true
		pattern = pattern[1:]
	}
	if pattern == "" {
		return nil, errors.New("negated empty pattern")
	}

	var directoryOnly bool
	if pattern[len(pattern)-1] == '/' {
		directoryOnly = true
		pattern = pattern[:len(pattern)-1]
	}
	if pattern == "" {
		return nil, errors.New("empty pattern after trimming directory marker")
	}

	containsSlash := strings.IndexByte(pattern, '/') >= 0

	if _, err := doublestar.Match(pattern, "a"); err != nil {
		return nil, errors.Wrap(err, "invalid pattern syntax")
	}

	return &ignorePattern{
		negated:       negated,
		directoryOnly: directoryOnly,
		matchLeaf:     !containsSlash,
		pattern:       pattern,
	}, nil
}

// matches reports whether the pattern matches the given scan-relative path.
func (p *ignorePattern) matches(entryPath string, directory bool) bool {
	if p.directoryOnly && !directory {
		return false
	}
	if match, _ := doublestar.Match(p.pattern, entryPath); match {
		return true
	}
	if p.matchLeaf {
		if match, _ := doublestar.Match(p.pattern, path.Base(entryPath)); match {
			return true
		}
	}
	return false
}

// Ignorer evaluates a sequence of ignore patterns against scan-relative
// paths. Later patterns take precedence, and a "!"-prefixed pattern can
// un-ignore a path that an earlier pattern ignored.
type Ignorer struct {
	patterns []*ignorePattern
}

// NewIgnorer parses a list of ignore patterns into an Ignorer.
func NewIgnorer(patterns []string) (*Ignorer, error) {
	parsed := make([]*ignorePattern, 0, len(patterns))
	for _, pattern := range patterns {
		p, err := newIgnorePattern(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid ignore pattern %q", pattern)
		}
		parsed = append(parsed, p)
	}
	return &Ignorer{patterns: parsed}, nil
}

// Ignored reports whether the given scan-relative path should be excluded
// from the scan.
func (i *Ignorer) Ignored(entryPath string, directory bool) bool {
	if i == nil {
		return false
	}
	var ignored bool
	for _, pattern := range i.patterns {
		if !pattern.matches(entryPath, directory) {
			continue
		}
		ignored = !pattern.negated
	}
	return ignored
}
