package digest

import (
	"crypto/sha256"
	"io"
	"os"

	"github.com/pkg/errors"
)

// bufferSize is the size of the streaming read buffer used by HashFile. It
// bounds the memory footprint of hashing regardless of file size.
const bufferSize = 8192

// HashFile computes the SHA-256 content digest of the file at path, streaming
// its contents through a bounded buffer rather than loading the whole file
// into memory.
func HashFile(path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, errors.Wrap(err, "unable to open file")
	}
	defer file.Close()
	return HashReader(file)
}

// HashReader computes the SHA-256 digest of an arbitrary reader, using the
// same bounded buffer as HashFile.
func HashReader(r io.Reader) (Digest, error) {
	hasher := sha256.New()
	buffer := make([]byte, bufferSize)
	if _, err := io.CopyBuffer(hasher, r, buffer); err != nil {
		return Digest{}, errors.Wrap(err, "unable to read content")
	}
	var result Digest
	copy(result[:], hasher.Sum(nil))
	return result, nil
}
