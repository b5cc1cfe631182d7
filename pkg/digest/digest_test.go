package digest

import (
	"strings"
	"testing"
)

// TestFromHexRoundTrip ensures that String and FromHex are inverses.
func TestFromHexRoundTrip(t *testing.T) {
	var d Digest
	for i := range d {
		d[i] = byte(i)
	}
	parsed, err := FromHex(d.String())
	if err != nil {
		t.Fatalf("unable to parse hex: %v", err)
	}
	if !parsed.Equal(d) {
		t.Error("round-tripped digest did not match original")
	}
}

// TestFromHexInvalidLength ensures that any input whose length is not
// exactly 64 characters is rejected.
func TestFromHexInvalidLength(t *testing.T) {
	tests := []string{
		"",
		"abc",
		strings.Repeat("a", 63),
		strings.Repeat("a", 65),
	}
	for _, test := range tests {
		if _, err := FromHex(test); err == nil {
			t.Errorf("expected error for input of length %d", len(test))
		}
	}
}

// TestFromHexInvalidCharacters ensures that non-hex characters are rejected
// even when the length is correct.
func TestFromHexInvalidCharacters(t *testing.T) {
	invalid := strings.Repeat("g", hexLength)
	if _, err := FromHex(invalid); err == nil {
		t.Error("expected error for non-hex input")
	}
}

// TestZero ensures that the zero Digest reports itself as zero.
func TestZero(t *testing.T) {
	var d Digest
	if !d.IsZero() {
		t.Error("zero-value digest did not report as zero")
	}
}
