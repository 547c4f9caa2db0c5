//go:build !cgo

package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/arloliu/xisf/errs"
)

// zstdDecoderPool pools zstd decoders for reuse to eliminate allocation
// overhead; the klauspost decoder is designed to be stored and reused.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}
		return decoder
	},
}

// zstdEncoderPool pools zstd encoders for reuse.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}
		return encoder
	},
}

// Compress compresses the input data using Zstandard compression.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	encoder, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	// EncodeAll is stateless and safe with a pooled encoder.
	return encoder.EncodeAll(data, nil), nil
}

// Decompress decompresses a Zstandard frame into exactly size bytes.
func (c ZstdCompressor) Decompress(data []byte, size int) ([]byte, error) {
	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	out, err := decoder.DecodeAll(data, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCorruptBlock, err)
	}

	if len(out) != size {
		return nil, fmt.Errorf("%w: zstd frame decoded to %d bytes, declared %d", errs.ErrCorruptBlock, len(out), size)
	}

	return out, nil
}
