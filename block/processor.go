// Package block materializes and persists XISF data block payloads.
//
// The processor orchestrates the checksum, compression, byte order and
// substream packages: raw bytes are acquired per storage shape, verified
// against the declared checksum, decompressed, and handed to the consumer.
// Byte order conversion is deliberately left out of the read pipeline; the
// item size depends on pixel or property semantics the block does not know,
// so consumers call endian.Convert explicitly.
package block

import (
	"context"
	"fmt"
	"io"

	"github.com/arloliu/xisf/checksum"
	"github.com/arloliu/xisf/compress"
	"github.com/arloliu/xisf/errs"
	"github.com/arloliu/xisf/format"
	"github.com/arloliu/xisf/stream"
	"github.com/arloliu/xisf/unit"
)

// Processor reads and prepares data blocks.
//
// A processor is not internally synchronized; every concurrent operation
// must use its own instance and its own carrier stream.
type Processor struct {
	// Files resolves path(...) block references.
	Files StreamProvider
	// URIs resolves url(...) block references.
	URIs StreamProvider
	// ValidateChecksums enables digest verification of declared checksums
	// during Read.
	ValidateChecksums bool
}

// Read materializes the payload of a block.
//
// Attached blocks read from carrier; external blocks go through the stream
// providers. The raw bytes are checksum verified when enabled, then
// decompressed. The returned payload is stored in blk.Data and owned by the
// caller.
func (p *Processor) Read(ctx context.Context, blk *unit.DataBlock, carrier io.ReadSeeker) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCancelled, err)
	}

	raw, err := p.acquire(ctx, blk, carrier)
	if err != nil {
		return nil, err
	}

	if p.ValidateChecksums && blk.Checksum != nil {
		if err := checksum.Verify(raw, *blk.Checksum); err != nil {
			return nil, err
		}
	}

	payload := raw
	if blk.Compression != nil {
		payload, err = compress.Decompress(ctx, raw, *blk.Compression)
		if err != nil {
			return nil, err
		}
	}

	blk.Raw = raw
	blk.Data = payload

	return payload, nil
}

func (p *Processor) acquire(ctx context.Context, blk *unit.DataBlock, carrier io.ReadSeeker) ([]byte, error) {
	switch blk.Kind {
	case unit.BlockInline, unit.BlockEmbedded:
		// Payload was decoded from the XML text at parse time.
		if blk.Raw == nil {
			return nil, fmt.Errorf("%w: %s block has no payload", errs.ErrCorruptBlock, blk.Kind)
		}

		return blk.Raw, nil

	case unit.BlockAttached:
		if carrier == nil {
			return nil, fmt.Errorf("%w: attached block without carrier", errs.ErrStreamIO)
		}

		return readWindow(carrier, blk.Position, blk.Size)

	case unit.BlockExternal:
		return p.readExternal(ctx, blk)

	default:
		return nil, fmt.Errorf("%w: unknown block kind %d", errs.ErrCorruptBlock, blk.Kind)
	}
}

func (p *Processor) readExternal(ctx context.Context, blk *unit.DataBlock) ([]byte, error) {
	provider := p.URIs
	if blk.PathRef {
		provider = p.Files
	}
	if provider == nil {
		return nil, fmt.Errorf("%w: %q", errs.ErrNoExternalStreams, blk.URI)
	}

	src, err := provider.Open(ctx, blk.URI)
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %w", errs.ErrStreamIO, blk.URI, err)
	}
	defer src.Close()

	if blk.Size > 0 {
		return readWindow(src, blk.Position, blk.Size)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %w", errs.ErrStreamIO, blk.URI, err)
	}

	return data, nil
}

// readWindow reads exactly size bytes at position through a substream view,
// so the declared range is enforced and short reads fail.
func readWindow(carrier io.ReadSeeker, position, size uint64) ([]byte, error) {
	view, err := stream.NewSubstream(carrier, int64(position), int64(size))
	if err != nil {
		return nil, err
	}

	out := make([]byte, size)
	if _, err := io.ReadFull(view, out); err != nil {
		return nil, fmt.Errorf("%w: %d bytes at offset %d: %w", errs.ErrEndOfStream, size, position, err)
	}

	return out, nil
}

// PrepareOptions controls Prepare.
type PrepareOptions struct {
	// Codec selects the compression codec, CodecNone for uncompressed.
	Codec format.CodecType
	// ItemSize is the sample width used by shuffled codec variants.
	ItemSize int
	// CalculateChecksum attaches a digest over the stored bytes.
	CalculateChecksum bool
	// ChecksumAlgorithm selects the digest algorithm.
	ChecksumAlgorithm format.ChecksumType
}

// Prepare runs the write pipeline on a block's payload: compression with
// the configured codec, then a checksum over the post-compression bytes.
// The stored bytes land in blk.Raw and blk.Size.
//
// Shuffled codecs degrade to their base codec when the item size is below
// two, since the shuffle permutation is undefined there.
func (p *Processor) Prepare(ctx context.Context, blk *unit.DataBlock, opts PrepareOptions) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrCancelled, err)
	}

	stored := blk.Data

	// Stale pipeline metadata from a previous read would disagree with the
	// bytes produced here.
	blk.Compression = nil
	blk.Checksum = nil

	codec := opts.Codec
	if codec.Shuffled() && opts.ItemSize < 2 {
		codec = codec.Base()
	}

	if codec != format.CodecNone {
		compressed, spec, err := compress.Compress(ctx, blk.Data, codec, opts.ItemSize)
		if err != nil {
			return err
		}

		stored = compressed
		blk.Compression = &spec
	}

	blk.Raw = stored
	blk.Size = uint64(len(stored))

	if opts.CalculateChecksum {
		digest, err := checksum.DigestChunked(ctx, stored, opts.ChecksumAlgorithm)
		if err != nil {
			return err
		}

		blk.Checksum = &format.Checksum{Algorithm: opts.ChecksumAlgorithm, Digest: digest}
	}

	return nil
}
