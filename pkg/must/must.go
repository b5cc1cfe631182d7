// Package must wraps operations whose errors can't be acted on at the call
// site (closing a file after it's already been read, removing a temporary
// path during cleanup) so that the error is logged instead of silently
// dropped or forcing every caller to handle an error it has no way to
// recover from.
package must

import (
	"io"
	"os"

	"github.com/treepatch/treepatch/pkg/logging"
)

// Close closes c, logging any resulting error as a warning.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("unable to close: %s", err.Error())
	}
}

// OSRemove removes the file or directory at name, logging any resulting
// error as a warning.
func OSRemove(name string, logger *logging.Logger) {
	if err := os.Remove(name); err != nil {
		logger.Warnf("unable to remove '%s': %s", name, err.Error())
	}
}

// OSRemoveAll recursively removes the path at name, logging any resulting
// error as a warning.
func OSRemoveAll(name string, logger *logging.Logger) {
	if err := os.RemoveAll(name); err != nil {
		logger.Warnf("unable to remove '%s': %s", name, err.Error())
	}
}
