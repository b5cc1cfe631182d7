package patch

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/treepatch/treepatch/pkg/logging"
	"github.com/treepatch/treepatch/pkg/pathutil"
)

var showLogger = logging.RootLogger.Sublogger("patch.show")

// previewLineLimit is the maximum number of lines printed for a modified
// file's text preview.
const previewLineLimit = 20

// textExtensions are the file extensions (without the leading dot)
// recognised as text for preview purposes, independent of the NUL-byte
// sniff.
var textExtensions = map[string]bool{
	"txt": true, "md": true, "json": true, "xml": true, "html": true,
	"css": true, "js": true, "ts": true, "py": true, "rs": true, "go": true,
	"java": true, "c": true, "h": true, "cpp": true, "hpp": true,
	"toml": true, "yaml": true, "yml": true, "ini": true, "cfg": true,
	"conf": true, "sh": true, "bat": true, "ps1": true, "sql": true,
}

// Show unpacks the patch archive at patchPath and writes a human-readable
// summary of its metadata and manifest to w, including a short text preview
// for each modified file that looks like text.
func Show(patchPath string, w io.Writer) error {
	if _, err := os.Stat(patchPath); os.IsNotExist(err) {
		return ErrMissingInput(patchPath)
	}

	stagingDir, err := readContainer(patchPath, showLogger)
	if err != nil {
		return err
	}
	defer removeStagingDirectory(stagingDir, showLogger)

	metadata, err := loadMetadata(stagingDir)
	if err != nil {
		return err
	}
	checksums, err := loadChecksums(stagingDir)
	if err != nil {
		return err
	}

	if metadata != nil {
		fmt.Fprintf(w, "Format version: %s\n", metadata.Version)
		fmt.Fprintf(w, "Created at:     %s\n", metadata.CreatedAt)
		if metadata.SourceVersion != "" {
			fmt.Fprintf(w, "Source version: %s\n", metadata.SourceVersion)
		}
		if metadata.TargetVersion != "" {
			fmt.Fprintf(w, "Target version: %s\n", metadata.TargetVersion)
		}
		if metadata.Description != "" {
			fmt.Fprintf(w, "Description:    %s\n", metadata.Description)
		}
	} else {
		fmt.Fprintln(w, "(no metadata present)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %s\n\n", checksums.Summary())

	for path, d := range checksums.Added {
		info, err := os.Stat(filepath.Join(stagingDir, addedDirName, pathutil.FromArchive(path)))
		size := int64(0)
		if err == nil {
			size = info.Size()
		}
		fmt.Fprintf(w, "+ %s (%s, %s)\n", path, d, humanize.Bytes(uint64(size)))
	}
	for _, path := range checksums.Deleted {
		fmt.Fprintf(w, "- %s\n", path)
	}
	for path, chain := range checksums.Modified {
		stagedPath := filepath.Join(stagingDir, modifiedDirName, pathutil.FromArchive(path))
		info, err := os.Stat(stagedPath)
		size := int64(0)
		if err == nil {
			size = info.Size()
		}
		fmt.Fprintf(w, "* %s (%s -> %s, %s)\n", path, chain.Original, chain.Modified, humanize.Bytes(uint64(size)))

		if isPreviewable(path, stagedPath) {
			if err := printPreview(w, stagedPath); err != nil {
				showLogger.Warnf("unable to preview %s: %v", path, err)
			}
		}
	}

	return nil
}

// isPreviewable reports whether the modified file at stagedPath should get a
// text preview: either its extension is in the recognised text set, or its
// first 512 bytes contain no NUL byte.
func isPreviewable(archivePath, stagedPath string) bool {
	extension := strings.TrimPrefix(filepath.Ext(archivePath), ".")
	if textExtensions[strings.ToLower(extension)] {
		return true
	}

	file, err := os.Open(stagedPath)
	if err != nil {
		return false
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return false
	}
	return !bytes.Contains(buffer[:n], []byte{0})
}

// printPreview writes up to previewLineLimit lines of stagedPath to w,
// indented for readability.
func printPreview(w io.Writer, stagedPath string) error {
	file, err := os.Open(stagedPath)
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", stagedPath)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	count := 0
	for scanner.Scan() && count < previewLineLimit {
		fmt.Fprintf(w, "    %s\n", scanner.Text())
		count++
	}
	return scanner.Err()
}
