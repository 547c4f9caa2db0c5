package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/arloliu/xisf/block"
	"github.com/arloliu/xisf/endian"
	"github.com/arloliu/xisf/errs"
	"github.com/arloliu/xisf/header"
	"github.com/arloliu/xisf/unit"
)

// ReadMonolithicHeader reads the file framing and XML header of a
// monolithic unit, without materializing any attached payload. This is the
// fast path for inspection and validation.
func ReadMonolithicHeader(ctx context.Context, r io.Reader, cfg *ReaderConfig) (*unit.Header, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCancelled, err)
	}

	xmlLen, err := readMonolithicFraming(r)
	if err != nil {
		return nil, err
	}

	xml := make([]byte, xmlLen)
	if _, err := io.ReadFull(r, xml); err != nil {
		return nil, fmt.Errorf("%w: XML header of %d bytes: %w", errs.ErrEndOfStream, xmlLen, err)
	}

	cfg.logger().Debug("parsed monolithic framing", "xmlLength", xmlLen)

	return header.Parse(xml)
}

// ReadMonolithic reads a complete monolithic unit: framing, XML header and
// the data blocks of its images and core elements.
func ReadMonolithic(ctx context.Context, r io.ReadSeeker, cfg *ReaderConfig) (*unit.Unit, error) {
	hdr, err := ReadMonolithicHeader(ctx, r, cfg)
	if err != nil {
		return nil, err
	}

	if err := materializeBlocks(ctx, hdr, r, cfg); err != nil {
		return nil, err
	}

	return &unit.Unit{Storage: unit.Monolithic{}, Header: hdr}, nil
}

// materializeBlocks loads the payload of every block the options ask for.
// External blocks are skipped unless LoadExternalReferences is set;
// thumbnail blocks are skipped unless LoadThumbnails is set.
func materializeBlocks(ctx context.Context, hdr *unit.Header, carrier io.ReadSeeker, cfg *ReaderConfig) error {
	proc := cfg.Processor()
	blocks := enumerateBlocks(hdr)

	for _, ob := range blocks {
		if ob.thumbnail && !cfg.LoadThumbnails {
			continue
		}

		if ob.blk.Kind == unit.BlockExternal && !cfg.LoadExternalReferences {
			continue
		}

		if _, err := proc.Read(ctx, ob.blk, carrier); err != nil {
			return err
		}
	}

	cfg.logger().Debug("materialized data blocks", "count", len(blocks))

	return nil
}

// readMonolithicFraming consumes and validates the 16-byte file header,
// returning the XML header length.
func readMonolithicFraming(r io.Reader) (uint32, error) {
	var head [FileHeaderSize]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return 0, fmt.Errorf("%w: file header: %w", errs.ErrEndOfStream, err)
	}

	if string(head[:8]) != MonolithicSignature {
		if string(head[:8]) == BlocksSignature {
			return 0, errs.ErrDirectXisbRead
		}

		return 0, fmt.Errorf("%w: % x", errs.ErrInvalidSignature, head[:8])
	}

	engine := endian.GetLittleEndianEngine()

	xmlLen := engine.Uint32(head[8:12])
	if xmlLen < header.MinLength {
		return 0, fmt.Errorf("%w: %d bytes, minimum is %d", errs.ErrInvalidHeaderLength, xmlLen, header.MinLength)
	}

	return xmlLen, nil
}

// WriteMonolithic serializes a unit to the monolithic file form.
//
// Block payloads are compressed and checksummed first, fixing their stored
// sizes; the attachment layout then runs to its fixed point before a single
// byte reaches the target. Payloads follow the XML header in enumeration
// order.
//
// The caller validates the unit beforehand; no partial output guarantees
// are made if the context is cancelled mid-write.
func WriteMonolithic(ctx context.Context, w io.Writer, u *unit.Unit, cfg *WriterConfig) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrCancelled, err)
	}

	blocks := enumerateBlocks(u.Header)

	proc := &block.Processor{}
	for _, ob := range blocks {
		opts := block.PrepareOptions{
			Codec:             cfg.DefaultCompression,
			ItemSize:          ob.itemSize,
			CalculateChecksum: cfg.CalculateChecksums,
			ChecksumAlgorithm: cfg.checksumAlgorithm(),
		}

		if err := proc.Prepare(ctx, ob.blk, opts); err != nil {
			return err
		}
	}

	attached := attachedBlocks(blocks)

	xml, err := layoutHeader(u.Header, attached, header.EmitOptions{Pretty: cfg.PrettyPrint})
	if err != nil {
		return err
	}

	if len(xml) < header.MinLength {
		return fmt.Errorf("%w: emitted %d bytes, minimum is %d", errs.ErrInvalidHeaderLength, len(xml), header.MinLength)
	}

	cfg.logger().Debug("layout settled", "xmlLength", len(xml), "attachedBlocks", len(attached))

	engine := endian.GetLittleEndianEngine()

	head := make([]byte, 0, FileHeaderSize)
	head = append(head, MonolithicSignature...)
	head = engine.AppendUint32(head, uint32(len(xml)))
	head = engine.AppendUint32(head, 0)

	if _, err := w.Write(head); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}

	if _, err := w.Write(xml); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}

	for _, blk := range attached {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrCancelled, err)
		}

		if _, err := w.Write(blk.StoredBytes()); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
		}
	}

	return nil
}
