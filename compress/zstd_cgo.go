//go:build cgo

package compress

import (
	"fmt"

	"github.com/valyala/gozstd"

	"github.com/arloliu/xisf/errs"
)

// Compress compresses the input data using Zstandard compression.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

// Decompress decompresses a Zstandard frame into exactly size bytes.
func (c ZstdCompressor) Decompress(data []byte, size int) ([]byte, error) {
	out, err := gozstd.Decompress(nil, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCorruptBlock, err)
	}

	if len(out) != size {
		return nil, fmt.Errorf("%w: zstd frame decoded to %d bytes, declared %d", errs.ErrCorruptBlock, len(out), size)
	}

	return out, nil
}
