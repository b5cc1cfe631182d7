package patch

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/treepatch/treepatch/pkg/diff"
	"github.com/treepatch/treepatch/pkg/digest"
	"github.com/treepatch/treepatch/pkg/logging"
	"github.com/treepatch/treepatch/pkg/must"
	"github.com/treepatch/treepatch/pkg/pathutil"
	"github.com/treepatch/treepatch/pkg/scan"
)

// CreateOptions configures patch creation.
type CreateOptions struct {
	// SourceVersion and TargetVersion are optional free-form labels recorded
	// in the patch's metadata.
	SourceVersion string
	TargetVersion string
	// Description is an optional free-form label recorded in the patch's
	// metadata. If empty, a default is generated.
	Description string
	// Ignore is a list of Mutagen-style ignore patterns excluded from both
	// the source and target scans.
	Ignore []string
}

var createLogger = logging.RootLogger.Sublogger("patch.create")

// Create computes the difference between sourceDir and targetDir and writes
// it as a patch archive to outputPath. It returns ErrEmptyDiff, writing no
// archive, if the two trees are identical.
func Create(sourceDir, targetDir, outputPath string, options CreateOptions) error {
	ignorer, err := scan.NewIgnorer(options.Ignore)
	if err != nil {
		return errors.Wrap(err, "unable to build ignore patterns")
	}

	createLogger.Infof("scanning %s", sourceDir)
	sourceEntries, err := scan.Scan(sourceDir, ignorer)
	if err != nil {
		return errors.Wrapf(err, "unable to scan source %s", sourceDir)
	}
	createLogger.Infof("scanning %s", targetDir)
	targetEntries, err := scan.Scan(targetDir, ignorer)
	if err != nil {
		return errors.Wrapf(err, "unable to scan target %s", targetDir)
	}

	actions := diff.Diff(sourceEntries, targetEntries)
	if len(actions) == 0 {
		return ErrEmptyDiff
	}
	createLogger.Infof("diff produced %d actions", len(actions))

	stagingDir, err := newStagingDirectory("diff")
	if err != nil {
		return err
	}
	defer removeStagingDirectory(stagingDir, createLogger)

	checksums := NewChecksums()
	for _, action := range actions {
		switch action.Kind {
		case diff.Added:
			entry := targetEntries[action.Path]
			checksums.Added[action.Path] = entry.Digest
			if err := copyIntoStaging(stagingDir, addedDirName, action.Path, targetDir, action.Path); err != nil {
				return err
			}
			if err := verifyBody(filepath.Join(stagingDir, addedDirName, pathutil.FromArchive(action.Path)), entry.Digest); err != nil {
				return err
			}
		case diff.Modified:
			sourceEntry := sourceEntries[action.Path]
			targetEntry := targetEntries[action.Path]
			checksums.Modified[action.Path] = ModifiedChecksum{
				Original: sourceEntry.Digest,
				Modified: targetEntry.Digest,
			}
			if err := copyIntoStaging(stagingDir, modifiedDirName, action.Path, targetDir, action.Path); err != nil {
				return err
			}
			if err := verifyBody(filepath.Join(stagingDir, modifiedDirName, pathutil.FromArchive(action.Path)), targetEntry.Digest); err != nil {
				return err
			}
		case diff.Deleted:
			checksums.Deleted = append(checksums.Deleted, action.Path)
		}
	}

	if err := saveChecksums(stagingDir, checksums, createLogger); err != nil {
		return errors.Wrap(err, "unable to write checksums")
	}

	metadata := NewMetadata(time.Now())
	metadata.SourceVersion = options.SourceVersion
	metadata.TargetVersion = options.TargetVersion
	metadata.Description = options.Description
	if metadata.Description == "" {
		metadata.Description = "diff patch"
	}
	if err := saveMetadata(stagingDir, metadata, createLogger); err != nil {
		return errors.Wrap(err, "unable to write metadata")
	}

	if err := writeContainer(stagingDir, outputPath, createLogger); err != nil {
		return errors.Wrap(err, "unable to write container")
	}
	createLogger.Infof("wrote patch to %s (%s)", outputPath, checksums.Summary())

	return nil
}

// copyIntoStaging copies the file at sourceRoot/sourceRelative into
// stagingDir/category/archiveRelative, creating parent directories as
// needed.
func copyIntoStaging(stagingDir, category, archiveRelative, sourceRoot, sourceRelative string) error {
	destination := filepath.Join(stagingDir, category, pathutil.FromArchive(archiveRelative))
	if err := os.MkdirAll(filepath.Dir(destination), 0700); err != nil {
		return errors.Wrapf(err, "unable to create staging directory for %s", archiveRelative)
	}

	source, err := os.Open(filepath.Join(sourceRoot, pathutil.FromArchive(sourceRelative)))
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", sourceRelative)
	}
	defer must.Close(source, createLogger)

	target, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", destination)
	}
	defer must.Close(target, createLogger)

	if _, err := io.Copy(target, source); err != nil {
		return errors.Wrapf(err, "unable to copy body for %s", archiveRelative)
	}
	return nil
}

// verifyBody recomputes the digest of a staged file and compares it to
// expected, guarding container invariant 1/2 (§3) at write time.
func verifyBody(path string, expected digest.Digest) error {
	actual, err := digest.HashFile(path)
	if err != nil {
		return err
	}
	if !actual.Equal(expected) {
		return errors.Errorf("staged body at %s does not hash to its recorded digest", path)
	}
	return nil
}
