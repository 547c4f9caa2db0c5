// Package errs defines the sentinel errors shared across the xisf packages.
//
// Callers match them with errors.Is after any amount of wrapping:
//
//	if errors.Is(err, errs.ErrChecksumMismatch) {
//	    // corrupt block
//	}
package errs

import "errors"

// Framing faults.
var (
	ErrInvalidSignature    = errors.New("invalid file signature")
	ErrUnsupportedVersion  = errors.New("unsupported XISF version")
	ErrDirectXisbRead      = errors.New("data blocks files cannot be read as units")
	ErrInvalidHeaderLength = errors.New("invalid XML header length")
)

// XML codec faults.
var (
	ErrMalformedXML             = errors.New("malformed XML header")
	ErrMissingRequiredAttribute = errors.New("missing required attribute")
	ErrUnknownEnumValue         = errors.New("unknown enumeration value")
	ErrInvalidLocation          = errors.New("invalid data block location")
)

// Pre-write structural faults.
var ErrValidationFailed = errors.New("unit validation failed")

// Data block pipeline faults.
var (
	ErrUnsupportedCodec     = errors.New("unsupported compression codec")
	ErrUnsupportedAlgorithm = errors.New("unsupported checksum algorithm")
	ErrCorruptBlock         = errors.New("corrupt data block")
	ErrChecksumMismatch     = errors.New("block checksum mismatch")
)

// Byte order and substream faults.
var (
	ErrInvalidItemSize = errors.New("invalid item size")
	ErrInvalidRange    = errors.New("invalid byte range")
	ErrReadOnlyStream  = errors.New("stream is read-only")
)

// I/O faults.
var (
	ErrStreamIO    = errors.New("stream I/O failure")
	ErrEndOfStream = errors.New("unexpected end of stream")
)

// ErrCancelled reports cooperative cancellation of an asynchronous operation.
var ErrCancelled = errors.New("operation cancelled")

// Data blocks file faults.
var (
	ErrBlockNotFound     = errors.New("block not found in index")
	ErrDuplicateBlockID  = errors.New("duplicate block unique id")
	ErrInvalidIndexNode  = errors.New("invalid index node")
	ErrLayoutUnstable    = errors.New("attachment layout did not converge")
	ErrMissingPixelData  = errors.New("image has no pixel data block")
	ErrNoExternalStreams = errors.New("no stream provider for external blocks")
)
