// Package checksum computes and verifies the cryptographic digests carried by
// XISF data blocks.
//
// SHA-1, SHA-256 and SHA-512 are always available. The SHA-3 algorithm
// identifiers are part of the format enumeration and parse correctly, but
// requesting a digest with them fails with errs.ErrUnsupportedAlgorithm;
// they are never silently downgraded to another algorithm.
package checksum

import (
	"bytes"
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"github.com/arloliu/xisf/errs"
	"github.com/arloliu/xisf/format"
)

// chunkSize is the stride of DigestChunked between cancellation polls.
const chunkSize = 800 * 1024

// New returns a fresh hash state for the given algorithm.
func New(algo format.ChecksumType) (hash.Hash, error) {
	switch algo {
	case format.ChecksumSHA1:
		return sha1.New(), nil
	case format.ChecksumSHA256:
		return sha256.New(), nil
	case format.ChecksumSHA512:
		return sha512.New(), nil
	case format.ChecksumSHA3256, format.ChecksumSHA3512:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedAlgorithm, algo)
	default:
		return nil, fmt.Errorf("%w: %d", errs.ErrUnsupportedAlgorithm, uint8(algo))
	}
}

// Digest computes the digest of data with the given algorithm.
func Digest(data []byte, algo format.ChecksumType) ([]byte, error) {
	h, err := New(algo)
	if err != nil {
		return nil, err
	}

	h.Write(data)

	return h.Sum(nil), nil
}

// DigestChunked computes the digest of data, polling the context between
// chunks of roughly 800 KiB so long digests can be cancelled cooperatively.
func DigestChunked(ctx context.Context, data []byte, algo format.ChecksumType) ([]byte, error) {
	h, err := New(algo)
	if err != nil {
		return nil, err
	}

	for len(data) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrCancelled, err)
		}

		n := min(len(data), chunkSize)
		h.Write(data[:n])
		data = data[n:]
	}

	return h.Sum(nil), nil
}

// Verify recomputes the digest of data and compares it against the expected
// checksum. A mismatch fails with errs.ErrChecksumMismatch.
func Verify(data []byte, expected format.Checksum) error {
	actual, err := Digest(data, expected.Algorithm)
	if err != nil {
		return err
	}

	if !bytes.Equal(actual, expected.Digest) {
		return fmt.Errorf("%w: %s expected %x, got %x",
			errs.ErrChecksumMismatch, expected.Algorithm, expected.Digest, actual)
	}

	return nil
}
