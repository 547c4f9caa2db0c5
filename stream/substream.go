// Package stream provides a bounded, read-only view onto a seekable carrier.
//
// A Substream exposes the window [offset, offset+length) of its carrier as a
// standalone io.ReadSeeker. Attached and external data blocks are read
// through such views so block consumers never see bytes outside their range.
package stream

import (
	"fmt"
	"io"

	"github.com/arloliu/xisf/errs"
)

// Substream is a bounded view onto a seekable carrier stream.
//
// Seeks are clamped to [0, length]. Reads honor the window and report EOF at
// its end. Writes are rejected. The carrier is not owned by default; Close
// releases it only after Own.
//
// A Substream repositions the carrier on every read, so the carrier must not
// be used by anything else until the view is fully consumed.
type Substream struct {
	carrier io.ReadSeeker
	closer  io.Closer
	base    int64
	length  int64
	pos     int64
}

var (
	_ io.ReadSeeker = (*Substream)(nil)
	_ io.ReaderAt   = (*Substream)(nil)
	_ io.Writer     = (*Substream)(nil)
)

// NewSubstream creates a view of length bytes starting at offset in the
// carrier. Offset and length must be non-negative.
func NewSubstream(carrier io.ReadSeeker, offset, length int64) (*Substream, error) {
	if offset < 0 || length < 0 {
		return nil, fmt.Errorf("%w: offset %d, length %d", errs.ErrInvalidRange, offset, length)
	}

	return &Substream{carrier: carrier, base: offset, length: length}, nil
}

// Own transfers carrier ownership to the view; Close will close it.
func (s *Substream) Own(c io.Closer) {
	s.closer = c
}

// Size returns the window length in bytes.
func (s *Substream) Size() int64 {
	return s.length
}

// Read reads from the current position within the window. It returns io.EOF
// once the window is exhausted.
func (s *Substream) Read(p []byte) (int, error) {
	if s.pos >= s.length {
		return 0, io.EOF
	}

	remaining := s.length - s.pos
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}

	if _, err := s.carrier.Seek(s.base+s.pos, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}

	n, err := s.carrier.Read(p)
	s.pos += int64(n)

	if err == io.EOF && s.pos < s.length {
		// Carrier ended inside the declared window.
		return n, fmt.Errorf("%w: carrier ended %d bytes into a %d byte window",
			errs.ErrEndOfStream, s.pos, s.length)
	}

	return n, err
}

// ReadAt reads len(p) bytes at offset off within the window without moving
// the view position.
func (s *Substream) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > s.length {
		return 0, fmt.Errorf("%w: offset %d outside window of %d bytes", errs.ErrInvalidRange, off, s.length)
	}

	remaining := s.length - off
	short := false
	if int64(len(p)) > remaining {
		p = p[:remaining]
		short = true
	}

	if _, err := s.carrier.Seek(s.base+off, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}

	n, err := io.ReadFull(s.carrier, p)
	if err != nil {
		return n, fmt.Errorf("%w: %w", errs.ErrEndOfStream, err)
	}

	if short {
		return n, io.EOF
	}

	return n, nil
}

// Seek repositions the view. Positions outside [0, length] are clamped to
// the nearest window edge rather than rejected.
func (s *Substream) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = s.pos + offset
	case io.SeekEnd:
		target = s.length + offset
	default:
		return 0, fmt.Errorf("%w: invalid whence %d", errs.ErrInvalidRange, whence)
	}

	if target < 0 {
		target = 0
	}
	if target > s.length {
		target = s.length
	}

	s.pos = target

	return target, nil
}

// Write always fails: substream views are read-only.
func (s *Substream) Write([]byte) (int, error) {
	return 0, errs.ErrReadOnlyStream
}

// Close releases the carrier if the view owns it, and is a no-op otherwise.
func (s *Substream) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}

	return nil
}
