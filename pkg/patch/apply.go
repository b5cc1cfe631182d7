package patch

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/treepatch/treepatch/pkg/digest"
	"github.com/treepatch/treepatch/pkg/logging"
	"github.com/treepatch/treepatch/pkg/must"
	"github.com/treepatch/treepatch/pkg/pathutil"
)

var applyLogger = logging.RootLogger.Sublogger("patch.apply")

// Apply unpacks the patch archive at patchPath and mutates targetDir in
// place. Phase order is fixed: deletions, then additions, then
// modifications. A manifest that lists a path in more than one of those sets
// is rejected as InvalidPatch before any phase runs.
//
// A modified file whose current digest does not match the recorded
// precondition is not an error: apply logs a warning and proceeds with the
// copy regardless, per this engine's warn-and-continue policy.
func Apply(targetDir, patchPath string) error {
	if _, err := os.Stat(patchPath); os.IsNotExist(err) {
		return ErrMissingInput(patchPath)
	}
	if _, err := os.Stat(targetDir); os.IsNotExist(err) {
		return ErrMissingInput(targetDir)
	}

	applyLogger.Infof("unpacking patch %s", patchPath)
	stagingDir, err := readContainer(patchPath, applyLogger)
	if err != nil {
		return err
	}
	defer removeStagingDirectory(stagingDir, applyLogger)

	checksums, err := loadChecksums(stagingDir)
	if err != nil {
		return err
	}
	applyLogger.Infof("applying to %s: %s", targetDir, checksums.Summary())

	for _, relative := range checksums.Deleted {
		applyDeletion(targetDir, relative)
	}

	if err := copyTree(filepath.Join(stagingDir, addedDirName), targetDir); err != nil {
		return errors.Wrap(err, "unable to apply additions")
	}

	if err := applyModifications(stagingDir, targetDir, checksums.Modified); err != nil {
		return errors.Wrap(err, "unable to apply modifications")
	}

	return nil
}

// applyDeletion removes targetDir/relative if present, then best-effort
// removes its now-possibly-empty parent directory. Absence of the file is
// silently tolerated.
func applyDeletion(targetDir, relative string) {
	path := filepath.Join(targetDir, pathutil.FromArchive(relative))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		applyLogger.Warnf("unable to remove %s: %v", relative, err)
		return
	}
	// Best-effort: os.Remove on a non-empty directory fails silently here,
	// which is the desired behavior.
	_ = os.Remove(filepath.Dir(path))
}

// applyModifications copies each modified file from staging into the
// target, warning (not failing) when the target's current content does not
// match the recorded precondition.
func applyModifications(stagingDir, targetDir string, modified map[string]ModifiedChecksum) error {
	for relative, chain := range modified {
		targetPath := filepath.Join(targetDir, pathutil.FromArchive(relative))

		current := digest.Zero
		if _, statErr := os.Stat(targetPath); statErr == nil {
			hashed, err := digest.HashFile(targetPath)
			if err != nil {
				return errors.Wrapf(err, "unable to hash current content of %s", relative)
			}
			current = hashed
		} else if !os.IsNotExist(statErr) {
			return errors.Wrapf(statErr, "unable to stat %s", relative)
		}
		if !current.Equal(chain.Original) {
			applyLogger.Warnf("precondition mismatch for %s: expected %s, found %s", relative, chain.Original, current)
		}

		stagedPath := filepath.Join(stagingDir, modifiedDirName, pathutil.FromArchive(relative))
		if err := copyFile(stagedPath, targetPath); err != nil {
			return errors.Wrapf(err, "unable to apply modification for %s", relative)
		}
	}
	return nil
}

// copyTree recursively copies every regular file under srcRoot into the
// same relative location under dstRoot, creating parent directories as
// needed. A non-existent srcRoot is treated as empty.
func copyTree(srcRoot, dstRoot string) error {
	if _, err := os.Stat(srcRoot); os.IsNotExist(err) {
		return nil
	}

	return filepath.Walk(srcRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		relative, err := filepath.Rel(srcRoot, path)
		if err != nil {
			return err
		}
		return copyFile(path, filepath.Join(dstRoot, relative))
	})
}

// copyFile copies src to dst, creating dst's parent directories and
// overwriting any existing content.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return errors.Wrapf(err, "unable to create parent directory for %s", dst)
	}

	source, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", src)
	}
	defer must.Close(source, applyLogger)

	target, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", dst)
	}
	defer must.Close(target, applyLogger)

	if _, err := io.Copy(target, source); err != nil {
		return errors.Wrapf(err, "unable to copy %s to %s", src, dst)
	}
	return nil
}
