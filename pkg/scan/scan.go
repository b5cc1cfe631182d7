package scan

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/treepatch/treepatch/pkg/digest"
	"github.com/treepatch/treepatch/pkg/pathutil"
)

// Scan recursively enumerates the regular files beneath root, returning a
// map from archive-relative path to Entry. Symlinks, sockets, devices, and
// other non-regular entries are skipped. If root does not exist, Scan
// returns an empty map rather than an error — this is what lets the diff
// engine treat a missing source tree as "everything added".
//
// If ignorer is non-nil, any path (file or directory) it reports as ignored
// is excluded from the walk entirely.
func Scan(root string, ignorer *Ignorer) (map[string]Entry, error) {
	entries := make(map[string]Entry)

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, errors.Wrapf(err, "unable to stat %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%s is not a directory", root)
	}

	if err := walk(root, "", ignorer, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// walk recursively visits directory, identified by its path relative to the
// scan root (relativePath), accumulating regular-file entries into entries.
func walk(root, relativePath string, ignorer *Ignorer, entries map[string]Entry) error {
	directory := filepath.Join(root, filepath.FromSlash(relativePath))
	children, err := os.ReadDir(directory)
	if err != nil {
		return errors.Wrapf(err, "unable to read directory %s", directory)
	}

	for _, child := range children {
		childRelative := child.Name()
		if relativePath != "" {
			childRelative = relativePath + "/" + child.Name()
		}

		childInfo, err := child.Info()
		if err != nil {
			return errors.Wrapf(err, "unable to stat %s", childRelative)
		}

		isDirectory := childInfo.IsDir()
		if ignorer.Ignored(childRelative, isDirectory) {
			continue
		}

		switch {
		case isDirectory:
			if err := walk(root, childRelative, ignorer, entries); err != nil {
				return err
			}
		case childInfo.Mode().IsRegular():
			fullPath := filepath.Join(root, filepath.FromSlash(childRelative))
			fileDigest, err := digest.HashFile(fullPath)
			if err != nil {
				return errors.Wrapf(err, "unable to hash %s", childRelative)
			}
			archivePath := pathutil.ToArchive(childRelative)
			entries[archivePath] = Entry{
				Path:   archivePath,
				Digest: fileDigest,
				Size:   childInfo.Size(),
			}
		default:
			// Symlinks, sockets, devices, and other non-regular entries are
			// not synchronizable content and are silently skipped.
		}
	}

	return nil
}
