// Package encoding provides shared helpers for loading and atomically saving
// the TOML documents that make up a patch container (metadata.toml,
// checksums.toml).
package encoding

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/treepatch/treepatch/pkg/logging"
	"github.com/treepatch/treepatch/pkg/must"
)

// LoadAndUnmarshal reads the file at path and invokes unmarshal (usually a
// closure) to decode its contents.
func LoadAndUnmarshal(path string, unmarshal func([]byte) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := unmarshal(data); err != nil {
		return errors.Wrap(err, "unable to unmarshal data")
	}
	return nil
}

// MarshalAndSave invokes marshal (usually a closure) and writes the result
// atomically to path via a temporary file and rename, so that a crash or
// interrupt never leaves a half-written document on disk. The file is
// written with read/write permissions for the owner only.
func MarshalAndSave(path string, logger *logging.Logger, marshal func() ([]byte, error)) error {
	data, err := marshal()
	if err != nil {
		return errors.Wrap(err, "unable to marshal data")
	}

	temporary, err := os.CreateTemp(filepath.Dir(path), ".treepatch-write-")
	if err != nil {
		return errors.Wrap(err, "unable to create temporary file")
	}

	if _, err := temporary.Write(data); err != nil {
		must.Close(temporary, logger)
		must.OSRemove(temporary.Name(), logger)
		return errors.Wrap(err, "unable to write temporary file")
	}
	if err := temporary.Close(); err != nil {
		must.OSRemove(temporary.Name(), logger)
		return errors.Wrap(err, "unable to close temporary file")
	}
	if err := os.Chmod(temporary.Name(), 0600); err != nil {
		must.OSRemove(temporary.Name(), logger)
		return errors.Wrap(err, "unable to set file permissions")
	}
	if err := os.Rename(temporary.Name(), path); err != nil {
		must.OSRemove(temporary.Name(), logger)
		return errors.Wrap(err, "unable to rename temporary file into place")
	}

	return nil
}
