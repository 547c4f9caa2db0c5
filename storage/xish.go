package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/arloliu/xisf/block"
	"github.com/arloliu/xisf/errs"
	"github.com/arloliu/xisf/header"
	"github.com/arloliu/xisf/unit"
)

// ReadDistributed reads a distributed unit header (.xish): the whole stream
// is UTF-8 XML without binary framing. External block payloads are fetched
// through the stream providers when LoadExternalReferences is set.
func ReadDistributed(ctx context.Context, r io.Reader, cfg *ReaderConfig) (*unit.Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCancelled, err)
	}

	xml, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}

	hdr, err := header.Parse(xml)
	if err != nil {
		return nil, err
	}

	if err := materializeBlocks(ctx, hdr, nil, cfg); err != nil {
		return nil, err
	}

	storage := unit.Distributed{DataFiles: externalDataFiles(hdr)}

	return &unit.Unit{Storage: storage, Header: hdr}, nil
}

// externalDataFiles collects the distinct external resources the header
// references, in first-use order.
func externalDataFiles(hdr *unit.Header) []string {
	var files []string
	seen := map[string]bool{}

	for _, ob := range enumerateBlocks(hdr) {
		if ob.blk.Kind != unit.BlockExternal || seen[ob.blk.URI] {
			continue
		}

		seen[ob.blk.URI] = true
		files = append(files, ob.blk.URI)
	}

	return files
}

// WriteDistributed serializes a unit header to the .xish XML-only form.
//
// Pixel data must live in inline, embedded or external blocks; attached
// blocks have nowhere to go without monolithic framing. External payloads
// are not written here, only referenced.
func WriteDistributed(ctx context.Context, w io.Writer, u *unit.Unit, cfg *WriterConfig) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrCancelled, err)
	}

	blocks := enumerateBlocks(u.Header)

	proc := &block.Processor{}
	for _, ob := range blocks {
		if ob.blk.Kind == unit.BlockAttached {
			return fmt.Errorf("%w: attached blocks are not representable in a distributed header", errs.ErrInvalidLocation)
		}

		if ob.blk.Kind == unit.BlockExternal {
			// Payload lives elsewhere; the location attribute already
			// carries its description.
			continue
		}

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

	xml := header.Emit(u.Header, header.EmitOptions{Pretty: cfg.PrettyPrint})

	cfg.logger().Debug("emitted distributed header", "xmlLength", len(xml))

	if _, err := w.Write(xml); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrStreamIO, err)
	}

	return nil
}
