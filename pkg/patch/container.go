package patch

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/treepatch/treepatch/pkg/logging"
	"github.com/treepatch/treepatch/pkg/must"
	"github.com/treepatch/treepatch/pkg/pathutil"
)

const (
	metadataFileName  = "metadata.toml"
	checksumsFileName = "checksums.toml"
	addedDirName      = "added"
	modifiedDirName   = "modified"
)

// writeContainer walks stagingDir and writes its contents as a
// gzip-compressed tar archive to outputPath. stagingDir must already contain
// checksums.toml and, if present, metadata.toml, added/, and modified/.
func writeContainer(stagingDir, outputPath string, logger *logging.Logger) error {
	output, err := os.Create(outputPath)
	if err != nil {
		return errors.Wrapf(err, "unable to create output file %s", outputPath)
	}
	defer must.Close(output, logger)

	gzipWriter := gzip.NewWriter(output)
	defer must.Close(gzipWriter, logger)

	tarWriter := tar.NewWriter(gzipWriter)
	defer must.Close(tarWriter, logger)

	return filepath.Walk(stagingDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == stagingDir {
			return nil
		}

		relative, err := filepath.Rel(stagingDir, path)
		if err != nil {
			return errors.Wrapf(err, "unable to compute relative path for %s", path)
		}
		archiveName := pathutil.ToArchive(relative)

		if info.IsDir() {
			header, err := tar.FileInfoHeader(info, "")
			if err != nil {
				return errors.Wrapf(err, "unable to build header for %s", archiveName)
			}
			header.Name = archiveName + "/"
			return tarWriter.WriteHeader(header)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return errors.Wrapf(err, "unable to build header for %s", archiveName)
		}
		header.Name = archiveName

		if err := tarWriter.WriteHeader(header); err != nil {
			return errors.Wrapf(err, "unable to write header for %s", archiveName)
		}

		file, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "unable to open %s", path)
		}
		defer must.Close(file, logger)

		if _, err := io.Copy(tarWriter, file); err != nil {
			return errors.Wrapf(err, "unable to write body for %s", archiveName)
		}
		return nil
	})
}

// readContainer unpacks the gzip-tar archive at patchPath into a fresh
// staging directory, returning its path. It rejects archives that do not
// decompress, do not parse as a tar stream, or lack checksums.toml, per the
// container's InvalidPatch contract.
func readContainer(patchPath string, logger *logging.Logger) (string, error) {
	input, err := os.Open(patchPath)
	if err != nil {
		return "", errors.Wrapf(err, "unable to open patch %s", patchPath)
	}
	defer must.Close(input, logger)

	gzipReader, err := gzip.NewReader(input)
	if err != nil {
		return "", errors.Wrap(ErrInvalidPatch(err), "unable to decompress patch")
	}
	defer must.Close(gzipReader, logger)

	stagingDir, err := newStagingDirectory("unpack")
	if err != nil {
		return "", err
	}

	tarReader := tar.NewReader(gzipReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			removeStagingDirectory(stagingDir, logger)
			return "", errors.Wrap(ErrInvalidPatch(err), "unable to read archive entry")
		}

		if err := pathutil.Validate(pathutil.ToArchive(header.Name)); err != nil && header.Typeflag != tar.TypeDir {
			removeStagingDirectory(stagingDir, logger)
			return "", errors.Wrap(ErrInvalidPatch(err), "archive contains an unsafe path")
		}

		destination := filepath.Join(stagingDir, pathutil.FromArchive(header.Name))

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(destination, 0700); err != nil {
				removeStagingDirectory(stagingDir, logger)
				return "", errors.Wrapf(err, "unable to create directory %s", destination)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(destination), 0700); err != nil {
				removeStagingDirectory(stagingDir, logger)
				return "", errors.Wrapf(err, "unable to create parent directory for %s", destination)
			}
			if err := extractFile(destination, tarReader, logger); err != nil {
				removeStagingDirectory(stagingDir, logger)
				return "", err
			}
		default:
			// Skip any other entry type (symlinks, devices); the container
			// format only ever emits directories and regular files.
		}
	}

	if _, err := os.Stat(filepath.Join(stagingDir, checksumsFileName)); os.IsNotExist(err) {
		removeStagingDirectory(stagingDir, logger)
		return "", ErrInvalidPatch(errors.New("archive is missing checksums.toml"))
	}

	return stagingDir, nil
}

// extractFile writes the current tar entry's content to destination.
func extractFile(destination string, r io.Reader, logger *logging.Logger) error {
	file, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", destination)
	}
	defer must.Close(file, logger)

	if _, err := io.Copy(file, r); err != nil {
		return errors.Wrapf(err, "unable to write %s", destination)
	}
	return nil
}
