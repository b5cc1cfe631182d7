package patch

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/treepatch/treepatch/pkg/digest"
	"github.com/treepatch/treepatch/pkg/logging"
	"github.com/treepatch/treepatch/pkg/pathutil"
)

var mergeLogger = logging.RootLogger.Sublogger("patch.merge")

// pathAction is the per-path action a single patch records for a path,
// including the absence of any record at all.
type pathAction uint8

const (
	actionAbsent pathAction = iota
	actionAdded
	actionModified
	actionDeleted
)

// Merge composes two sequential patches, firstPatchPath (S0→S1) and
// secondPatchPath (S1→S2), into a single equivalent patch (S0→S2) written to
// outputPath. Every cell of the action cross-product is resolved, including
// the degenerate cells a correctly-produced patch pair cannot contain (e.g.
// P2 adding a path P1 already added); those are resolved last-writer-wins,
// per this engine's tolerance policy, and never cause a failure.
func Merge(firstPatchPath, secondPatchPath, outputPath string) error {
	if _, err := os.Stat(firstPatchPath); os.IsNotExist(err) {
		return ErrMissingInput(firstPatchPath)
	}
	if _, err := os.Stat(secondPatchPath); os.IsNotExist(err) {
		return ErrMissingInput(secondPatchPath)
	}

	mergeLogger.Infof("merging %s and %s", firstPatchPath, secondPatchPath)

	stage1, err := readContainer(firstPatchPath, mergeLogger)
	if err != nil {
		return errors.Wrap(err, "unable to unpack first patch")
	}
	defer removeStagingDirectory(stage1, mergeLogger)

	stage2, err := readContainer(secondPatchPath, mergeLogger)
	if err != nil {
		return errors.Wrap(err, "unable to unpack second patch")
	}
	defer removeStagingDirectory(stage2, mergeLogger)

	checksums1, err := loadChecksums(stage1)
	if err != nil {
		return errors.Wrap(err, "unable to load first patch manifest")
	}
	checksums2, err := loadChecksums(stage2)
	if err != nil {
		return errors.Wrap(err, "unable to load second patch manifest")
	}

	outputStaging, err := newStagingDirectory("merge")
	if err != nil {
		return err
	}
	defer removeStagingDirectory(outputStaging, mergeLogger)

	merged := NewChecksums()
	for _, path := range unionPaths(checksums1, checksums2) {
		if err := resolvePath(path, checksums1, checksums2, stage1, stage2, outputStaging, merged); err != nil {
			return errors.Wrapf(err, "unable to resolve %s", path)
		}
	}

	if err := saveChecksums(outputStaging, merged, mergeLogger); err != nil {
		return errors.Wrap(err, "unable to write merged checksums")
	}

	metadata := NewMetadata(time.Now())
	metadata.Description = "merged patch"
	if err := saveMetadata(outputStaging, metadata, mergeLogger); err != nil {
		return errors.Wrap(err, "unable to write merged metadata")
	}

	if err := writeContainer(outputStaging, outputPath, mergeLogger); err != nil {
		return errors.Wrap(err, "unable to write merged container")
	}
	mergeLogger.Infof("wrote merged patch to %s (%s)", outputPath, merged.Summary())

	return nil
}

// unionPaths returns the deduplicated set of every path mentioned by either
// manifest. The order follows map iteration and may differ between runs.
func unionPaths(a, b *Checksums) []string {
	seen := make(map[string]struct{})
	var paths []string
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			paths = append(paths, p)
		}
	}
	for p := range a.Added {
		add(p)
	}
	for p := range a.Modified {
		add(p)
	}
	for _, p := range a.Deleted {
		add(p)
	}
	for p := range b.Added {
		add(p)
	}
	for p := range b.Modified {
		add(p)
	}
	for _, p := range b.Deleted {
		add(p)
	}
	return paths
}

// classify reports which action (if any) a manifest records for path.
func classify(c *Checksums, path string) pathAction {
	if _, ok := c.Added[path]; ok {
		return actionAdded
	}
	if _, ok := c.Modified[path]; ok {
		return actionModified
	}
	for _, p := range c.Deleted {
		if p == path {
			return actionDeleted
		}
	}
	return actionAbsent
}

// resolvePath implements the resolution table of §4.F: given the pair of
// actions P1 and P2 record for path, it determines the composite action and
// stages the composite's body (if any) into outputStaging, recording the
// result in merged.
func resolvePath(path string, checksums1, checksums2 *Checksums, stage1, stage2, outputStaging string, merged *Checksums) error {
	action1 := classify(checksums1, path)
	action2 := classify(checksums2, path)

	switch {
	case action1 == actionAbsent && action2 == actionAbsent:
		return nil // unreachable: path came from one of the manifests

	case action1 == actionAbsent && action2 == actionAdded:
		return resolveAsAdded(path, checksums2.Added[path], stage1, stage2, outputStaging, merged)

	case action1 == actionAbsent && action2 == actionModified:
		merged.Modified[path] = checksums2.Modified[path]
		return stageBody(path, modifiedDirName, stage1, stage2, outputStaging)

	case action1 == actionAbsent && action2 == actionDeleted:
		merged.Deleted = append(merged.Deleted, path)
		return nil

	case action1 == actionAdded && action2 == actionAbsent:
		return resolveAsAdded(path, checksums1.Added[path], stage1, stage2, outputStaging, merged)

	case action1 == actionAdded && action2 == actionAdded:
		// Degenerate: P2 should not add what P1 already added. Last writer
		// wins: keep P2's digest and body.
		mergeLogger.Debugf("degenerate merge cell at %s: both patches add it; keeping the second", path)
		return resolveAsAdded(path, checksums2.Added[path], stage1, stage2, outputStaging, merged)

	case action1 == actionAdded && action2 == actionModified:
		// A fresh addition later edited collapses to a single addition
		// carrying the final content; an addition has no precondition.
		return resolveAsAdded(path, checksums2.Modified[path].Modified, stage1, stage2, outputStaging, merged)

	case action1 == actionAdded && action2 == actionDeleted:
		// Net effect across both hops: nothing. Omit entirely.
		return nil

	case action1 == actionModified && action2 == actionAbsent:
		merged.Modified[path] = checksums1.Modified[path]
		return stageBody(path, modifiedDirName, stage1, stage2, outputStaging)

	case action1 == actionModified && action2 == actionAdded:
		// Degenerate: P2 should not add a path that already exists after
		// P1. Last writer wins: treat the composite as P2's addition.
		mergeLogger.Debugf("degenerate merge cell at %s: second patch adds a path the first modified; treating as an addition", path)
		return resolveAsAdded(path, checksums2.Added[path], stage1, stage2, outputStaging, merged)

	case action1 == actionModified && action2 == actionModified:
		merged.Modified[path] = ModifiedChecksum{
			Original: checksums1.Modified[path].Original,
			Modified: checksums2.Modified[path].Modified,
		}
		return stageBody(path, modifiedDirName, stage1, stage2, outputStaging)

	case action1 == actionModified && action2 == actionDeleted:
		merged.Deleted = append(merged.Deleted, path)
		return nil

	case action1 == actionDeleted && action2 == actionAbsent:
		merged.Deleted = append(merged.Deleted, path)
		return nil

	case action1 == actionDeleted && action2 == actionAdded:
		// Simplified: the original-digest chain from before the deletion is
		// lost; the composite is a plain re-addition of P2's content.
		return resolveAsAdded(path, checksums2.Added[path], stage1, stage2, outputStaging, merged)

	case action1 == actionDeleted && action2 == actionModified:
		// Degenerate: P2 should not modify a path P1 deleted. Last writer
		// wins: treat the composite as P2's modification outright.
		mergeLogger.Debugf("degenerate merge cell at %s: second patch modifies a path the first deleted; treating as a modification", path)
		merged.Modified[path] = checksums2.Modified[path]
		return stageBody(path, modifiedDirName, stage1, stage2, outputStaging)

	case action1 == actionDeleted && action2 == actionDeleted:
		merged.Deleted = append(merged.Deleted, path)
		return nil
	}

	return errors.Errorf("unreachable action pair (%d, %d)", action1, action2)
}

// resolveAsAdded records path as a composite addition carrying digest, and
// stages its body.
func resolveAsAdded(path string, expected digest.Digest, stage1, stage2, outputStaging string, merged *Checksums) error {
	merged.Added[path] = expected
	return stageBody(path, addedDirName, stage1, stage2, outputStaging)
}

// stageBody locates the body for path using the merge engine's body-sourcing
// priority — P2's staged file wins over P1's, and within each patch the
// added/ tree is tried before the modified/ tree (the cross-category
// fallback needed when a P1 addition is later modified by P2) — and copies
// it into outputStaging/category/path.
func stageBody(path, category, stage1, stage2, outputStaging string) error {
	source := locateBody(path, stage1, stage2)
	if source == "" {
		return errors.Errorf("no staged body found for %s in either patch", path)
	}
	destination := filepath.Join(outputStaging, category, pathutil.FromArchive(path))
	return copyFile(source, destination)
}

// locateBody returns the first existing candidate body location for path,
// preferring the second patch's staging over the first, and each patch's
// added/ tree over its modified/ tree.
func locateBody(path, stage1, stage2 string) string {
	candidates := []string{
		filepath.Join(stage2, addedDirName, pathutil.FromArchive(path)),
		filepath.Join(stage2, modifiedDirName, pathutil.FromArchive(path)),
		filepath.Join(stage1, addedDirName, pathutil.FromArchive(path)),
		filepath.Join(stage1, modifiedDirName, pathutil.FromArchive(path)),
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate
		}
	}
	return ""
}
