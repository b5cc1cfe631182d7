package patch

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/treepatch/treepatch/pkg/logging"
	"github.com/treepatch/treepatch/pkg/must"
)

// newStagingDirectory creates a fresh, uniquely-named directory beneath the
// system temporary directory for the given operation ("unpack", "diff",
// "merge"). The name composes the process id with a random UUID so that
// concurrent invocations of this process never collide, unlike a bare
// pid-derived name.
func newStagingDirectory(operation string) (string, error) {
	name := operation + "-" + strconv.Itoa(os.Getpid()) + "-" + uuid.New().String()
	path := filepath.Join(os.TempDir(), name)
	if err := os.MkdirAll(path, 0700); err != nil {
		return "", errors.Wrapf(err, "unable to create staging directory %s", path)
	}
	return path, nil
}

// removeStagingDirectory removes a staging directory created by
// newStagingDirectory, logging (rather than returning) any error, since
// staging cleanup happens on both success and failure paths where the
// caller has nothing further to do with the error.
func removeStagingDirectory(path string, logger *logging.Logger) {
	must.OSRemoveAll(path, logger)
}
