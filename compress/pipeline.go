package compress

import (
	"context"
	"fmt"

	"github.com/arloliu/xisf/errs"
	"github.com/arloliu/xisf/format"
)

// MaxBlockSize is the largest payload a single compressed block may carry.
// Payloads beyond it are split into sub-blocks recorded in the compression
// attribute.
const MaxBlockSize = 1<<32 - 1

// Compress runs the full encode pipeline for one data block payload:
// shuffle preconditioning for +sh codec variants, then codec encoding,
// splitting into sub-blocks when the payload exceeds MaxBlockSize.
//
// Parameters:
//   - ctx: Cancellation signal, polled between sub-blocks
//   - data: Uncompressed payload
//   - codecType: Target codec, shuffled variants allowed
//   - itemSize: Sample width for the shuffle preconditioner; ignored for
//     unshuffled codecs
//
// Returns:
//   - []byte: Compressed payload (concatenated sub-blocks)
//   - format.Compression: Descriptor for the compression attribute, with
//     UncompressedSize set to the original unshuffled length
//   - error: ErrUnsupportedCodec, ErrInvalidItemSize or codec failures
func Compress(ctx context.Context, data []byte, codecType format.CodecType, itemSize int) ([]byte, format.Compression, error) {
	codec, err := GetCodec(codecType)
	if err != nil {
		return nil, format.Compression{}, err
	}

	spec := format.Compression{
		Codec:            codecType,
		UncompressedSize: uint64(len(data)),
	}

	work := data
	if codecType.Shuffled() {
		work, err = Shuffle(data, itemSize)
		if err != nil {
			return nil, format.Compression{}, err
		}

		spec.ItemSize = itemSize
	}

	if len(work) <= MaxBlockSize {
		if err := checkCancelled(ctx); err != nil {
			return nil, format.Compression{}, err
		}

		out, err := codec.Compress(work)
		if err != nil {
			return nil, format.Compression{}, err
		}

		return out, spec, nil
	}

	var out []byte
	for off := 0; off < len(work); off += MaxBlockSize {
		if err := checkCancelled(ctx); err != nil {
			return nil, format.Compression{}, err
		}

		end := min(off+MaxBlockSize, len(work))

		encoded, err := codec.Compress(work[off:end])
		if err != nil {
			return nil, format.Compression{}, err
		}

		spec.SubBlocks = append(spec.SubBlocks, format.SubBlock{
			CompressedSize:   uint64(len(encoded)),
			UncompressedSize: uint64(end - off),
		})
		out = append(out, encoded...)
	}

	return out, spec, nil
}

// Decompress runs the full decode pipeline for one data block payload:
// codec decoding (per sub-block when the descriptor declares any), followed
// by the shuffle postconditioner for +sh codec variants.
//
// The decoded length must equal the declared uncompressed size; any
// disagreement fails with ErrCorruptBlock.
func Decompress(ctx context.Context, data []byte, spec format.Compression) ([]byte, error) {
	codec, err := GetCodec(spec.Codec)
	if err != nil {
		return nil, err
	}

	var out []byte
	if len(spec.SubBlocks) == 0 {
		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}

		out, err = codec.Decompress(data, int(spec.UncompressedSize))
		if err != nil {
			return nil, err
		}
	} else {
		out = make([]byte, 0, spec.UncompressedSize)
		rest := data

		for _, blk := range spec.SubBlocks {
			if err := checkCancelled(ctx); err != nil {
				return nil, err
			}

			if uint64(len(rest)) < blk.CompressedSize {
				return nil, fmt.Errorf("%w: sub-block extends past payload end", errs.ErrCorruptBlock)
			}

			decoded, err := codec.Decompress(rest[:blk.CompressedSize], int(blk.UncompressedSize))
			if err != nil {
				return nil, err
			}

			out = append(out, decoded...)
			rest = rest[blk.CompressedSize:]
		}

		if uint64(len(out)) != spec.UncompressedSize {
			return nil, fmt.Errorf("%w: sub-blocks decoded to %d bytes, declared %d",
				errs.ErrCorruptBlock, len(out), spec.UncompressedSize)
		}
	}

	if spec.Codec.Shuffled() {
		out, err = Unshuffle(out, spec.ItemSize)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

func checkCancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrCancelled, err)
	}

	return nil
}
