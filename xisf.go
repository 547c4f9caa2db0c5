// Package xisf reads and writes XISF 1.0 units, the serialization format
// used for astronomical image interchange.
//
// A unit carries one or more multidimensional pixel arrays together with
// rich metadata: typed properties, FITS keywords, color management
// elements, thumbnails and resolution data. Units come in two storage
// shapes: the monolithic single-file form (.xisf) and the distributed form
// (.xish header referencing external .xisb data block files).
//
// # Reading
//
//	u, err := xisf.ReadFile(ctx, "m31.xisf", xisf.WithValidateChecksums())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pixels := u.Header.Images[0].Block.Data
//
// # Writing
//
//	u := xisf.NewUnit("myapp 1.0")
//	u.Header.Images = append(u.Header.Images, img)
//	err := xisf.WriteFile(ctx, "out.xisf", u,
//	    xisf.WithDefaultCompression(format.CodecLZ4Sh),
//	    xisf.WithChecksums(format.ChecksumSHA256),
//	)
//
// Pixel payloads are opaque byte sequences with a known item size and the
// byte order declared on their block; consumers normalize them with
// endian.Convert when needed.
//
// All public read and write operations accept a context and abandon the
// operation when it is cancelled. Component instances are not internally
// synchronized: concurrent operations must not share carriers.
package xisf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arloliu/xisf/block"
	"github.com/arloliu/xisf/errs"
	"github.com/arloliu/xisf/storage"
	"github.com/arloliu/xisf/unit"
)

// NewUnit creates an empty monolithic unit with the mandatory metadata
// filled in.
func NewUnit(creatorApplication string) *unit.Unit {
	return &unit.Unit{
		Storage: unit.Monolithic{},
		Header: &unit.Header{
			Metadata: unit.Metadata{
				CreationTime:       time.Now().UTC().Truncate(time.Millisecond),
				CreatorApplication: creatorApplication,
			},
		},
	}
}

// Read reads a unit from a carrier stream.
//
// On a seekable carrier without a format hint, the first eight bytes decide
// the storage shape: the monolithic signature routes to the monolithic
// engine, the data blocks file signature is refused with ErrDirectXisbRead,
// anything else is parsed as a distributed XML header. A non-seekable
// carrier without a hint is not sniffed and defaults to the monolithic
// form; pass WithFormatHint to read distributed content from one.
func Read(ctx context.Context, r io.Reader, opts ...ReaderOption) (*unit.Unit, error) {
	o := resolveReaderOptions(opts)

	f, rs, err := routeCarrier(r, o.hint)
	if err != nil {
		return nil, err
	}

	if f == FormatMonolithic {
		return storage.ReadMonolithic(ctx, rs, &o.cfg)
	}

	return storage.ReadDistributed(ctx, rs, &o.cfg)
}

// ReadFile reads a unit from a file path. For distributed units the header
// file's directory anchors path(...) block references.
func ReadFile(ctx context.Context, path string, opts ...ReaderOption) (*unit.Unit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}
	defer f.Close()

	opts = append([]ReaderOption{
		WithFileStreamProvider(block.FileProvider{BaseDir: filepath.Dir(path)}),
	}, opts...)

	u, err := Read(ctx, f, opts...)
	if err != nil {
		return nil, err
	}

	if d, ok := u.Storage.(unit.Distributed); ok {
		d.HeaderFile = filepath.Base(path)
		u.Storage = d
	}

	return u, nil
}

// ReadHeader reads only the header of a unit. For monolithic carriers this
// stops after the XML header, skipping attached pixel data and making
// inspection cheap regardless of payload size. Distributed carriers are read
// as by Read: inline and embedded payloads are decoded, and external payloads
// are fetched when WithLoadExternalReferences is set.
func ReadHeader(ctx context.Context, r io.Reader, opts ...ReaderOption) (*unit.Header, error) {
	o := resolveReaderOptions(opts)

	f, rs, err := routeCarrier(r, o.hint)
	if err != nil {
		return nil, err
	}

	if f == FormatMonolithic {
		return storage.ReadMonolithicHeader(ctx, rs, &o.cfg)
	}

	u, err := storage.ReadDistributed(ctx, rs, &o.cfg)
	if err != nil {
		return nil, err
	}

	return u.Header, nil
}

// ReadHeaderFile reads only the header of a unit file.
func ReadHeaderFile(ctx context.Context, path string, opts ...ReaderOption) (*unit.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}
	defer f.Close()

	return ReadHeader(ctx, f, opts...)
}

// Write validates a unit and serializes it to the carrier. The storage
// model of the unit selects the engine; units without one are written
// monolithic.
//
// Validation is fail-fast: nothing reaches the carrier when the unit has
// structural errors.
func Write(ctx context.Context, w io.Writer, u *unit.Unit, opts ...WriterOption) error {
	cfg := resolveWriterOptions(opts)

	if res := unit.Validate(u.Header); !res.OK {
		return fmt.Errorf("%w: %s", errs.ErrValidationFailed, strings.Join(res.Errors, "; "))
	}

	if _, ok := u.Storage.(unit.Distributed); ok {
		return storage.WriteDistributed(ctx, w, u, cfg)
	}

	return storage.WriteMonolithic(ctx, w, u, cfg)
}

// WriteFile validates a unit and writes it to a file path. A .xish
// extension selects the distributed form regardless of the unit's storage
// model.
func WriteFile(ctx context.Context, path string, u *unit.Unit, opts ...WriterOption) error {
	cfg := resolveWriterOptions(opts)

	if res := unit.Validate(u.Header); !res.OK {
		return fmt.Errorf("%w: %s", errs.ErrValidationFailed, strings.Join(res.Errors, "; "))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}

	distributed := strings.EqualFold(filepath.Ext(path), ".xish")
	if _, ok := u.Storage.(unit.Distributed); ok {
		distributed = true
	}

	if distributed {
		err = storage.WriteDistributed(ctx, f, u, cfg)
	} else {
		err = storage.WriteMonolithic(ctx, f, u, cfg)
	}
	if err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}

	return nil
}

// Validate runs the structural validator without writing anything.
func Validate(u *unit.Unit) unit.ValidationResult {
	return unit.Validate(u.Header)
}

// routeCarrier decides the storage shape of a carrier and returns it as a
// seekable stream.
//
// Seekable carriers without a hint are sniffed by signature. Non-seekable
// carriers cannot be sniffed without consuming bytes, so without a hint
// they default to the monolithic form; they are buffered in memory either
// way so attached blocks stay reachable.
func routeCarrier(r io.Reader, hint Format) (Format, io.ReadSeeker, error) {
	rs, canSeek := r.(io.ReadSeeker)
	if !canSeek {
		data, err := io.ReadAll(r)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
		}

		rs = bytes.NewReader(data)

		if hint == FormatAuto {
			hint = FormatMonolithic
		}
	}

	if hint != FormatAuto {
		return hint, rs, nil
	}

	f, err := sniffFormat(rs)
	if err != nil {
		return 0, nil, err
	}

	return f, rs, nil
}

// sniffFormat peeks the first eight bytes of a seekable carrier and
// restores its position to the start.
func sniffFormat(rs io.ReadSeeker) (Format, error) {
	var sig [8]byte
	n, err := io.ReadFull(rs, sig[:])
	if err != nil && n == 0 {
		return 0, fmt.Errorf("%w: %w", errs.ErrEndOfStream, err)
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}

	switch string(sig[:n]) {
	case storage.MonolithicSignature:
		return FormatMonolithic, nil
	case storage.BlocksSignature:
		return 0, errs.ErrDirectXisbRead
	default:
		return FormatDistributed, nil
	}
}
