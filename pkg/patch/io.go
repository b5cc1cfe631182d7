package patch

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/treepatch/treepatch/pkg/encoding"
	"github.com/treepatch/treepatch/pkg/logging"
	"github.com/treepatch/treepatch/pkg/pathutil"
)

// loadChecksums reads and validates checksums.toml from a staging directory.
func loadChecksums(stagingDir string) (*Checksums, error) {
	checksums := &Checksums{}
	path := filepath.Join(stagingDir, checksumsFileName)
	if err := encoding.LoadAndUnmarshalTOML(path, checksums); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrInvalidPatch(errors.New("missing checksums.toml"))
		}
		return nil, ErrInvalidPatch(err)
	}
	if err := checksums.EnsureValid(pathutil.Validate); err != nil {
		return nil, ErrInvalidPatch(err)
	}
	return checksums, nil
}

// saveChecksums writes checksums.toml into a staging directory.
func saveChecksums(stagingDir string, checksums *Checksums, logger *logging.Logger) error {
	path := filepath.Join(stagingDir, checksumsFileName)
	return encoding.MarshalAndSaveTOML(path, logger, checksums)
}

// loadMetadata reads metadata.toml from a staging directory, if present. A
// missing metadata.toml is tolerated (returns nil, nil) since inspect allows
// it; diff-generated patches always carry one.
func loadMetadata(stagingDir string) (*Metadata, error) {
	path := filepath.Join(stagingDir, metadataFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	metadata := &Metadata{}
	if err := encoding.LoadAndUnmarshalTOML(path, metadata); err != nil {
		return nil, ErrInvalidPatch(err)
	}
	return metadata, nil
}

// saveMetadata writes metadata.toml into a staging directory.
func saveMetadata(stagingDir string, metadata Metadata, logger *logging.Logger) error {
	path := filepath.Join(stagingDir, metadataFileName)
	return encoding.MarshalAndSaveTOML(path, logger, metadata)
}
