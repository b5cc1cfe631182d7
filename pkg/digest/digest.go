// Package digest provides the fixed-width content digest used throughout
// treepatch to identify file bodies and to drive the precondition checks in
// the apply and merge engines.
package digest

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// Size is the length, in bytes, of a Digest.
const Size = 32

// hexLength is the length of a Digest's hex-encoded textual representation.
const hexLength = Size * 2

// Digest is a fixed-width 256-bit content digest. The zero Digest is not a
// valid digest of any content; it is used only to represent "no digest".
type Digest [Size]byte

// Zero is the zero-value Digest, representing an absence of content.
var Zero Digest

// IsZero reports whether the digest is the zero value.
func (d Digest) IsZero() bool {
	return d == Zero
}

// Equal reports whether two digests are byte-wise equal.
func (d Digest) Equal(other Digest) bool {
	return d == other
}

// String returns the lowercase hex encoding of the digest, suitable for
// storage in checksums.toml.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// MarshalText implements encoding.TextMarshaler, allowing a Digest to be
// serialized directly by the TOML encoder as a bare string.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It rejects any input
// that is not exactly a 64-character hex string (either case), surfacing the
// spec's InvalidPatch condition at the type boundary.
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := FromHex(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// FromHex parses a 64-character hex string into a Digest. Any input whose
// length is not exactly 64 characters, or that contains non-hex characters,
// is rejected.
func FromHex(s string) (Digest, error) {
	if len(s) != hexLength {
		return Digest{}, errors.Errorf("invalid digest length: expected %d hex characters, got %d", hexLength, len(s))
	}
	var d Digest
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return Digest{}, errors.Wrap(err, "invalid digest encoding")
	}
	return d, nil
}
