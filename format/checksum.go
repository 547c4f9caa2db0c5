package format

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/arloliu/xisf/errs"
)

// Checksum carries the declared digest of a data block, as stored in the
// checksum attribute of the owning XML element.
//
// Wire form: "<algorithm>:<hex digest>". The digest is emitted in lowercase
// hex and parsed case-insensitively.
type Checksum struct {
	Algorithm ChecksumType
	Digest    []byte
}

// Attribute serializes the checksum to its attribute wire form.
func (c Checksum) Attribute() string {
	return c.Algorithm.String() + ":" + hex.EncodeToString(c.Digest)
}

// ParseChecksum parses a checksum attribute value.
func ParseChecksum(s string) (Checksum, error) {
	algo, digest, ok := strings.Cut(s, ":")
	if !ok {
		return Checksum{}, fmt.Errorf("%w: checksum attribute %q", errs.ErrUnknownEnumValue, s)
	}

	typ, err := ParseChecksumType(algo)
	if err != nil {
		return Checksum{}, err
	}

	raw, err := hex.DecodeString(strings.ToLower(digest))
	if err != nil {
		return Checksum{}, fmt.Errorf("invalid checksum digest %q: %w", digest, err)
	}

	if len(raw) != typ.DigestSize() {
		return Checksum{}, fmt.Errorf("%w: %s digest must be %d bytes, got %d",
			errs.ErrUnknownEnumValue, typ, typ.DigestSize(), len(raw))
	}

	return Checksum{Algorithm: typ, Digest: raw}, nil
}
