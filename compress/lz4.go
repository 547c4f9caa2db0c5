package compress

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/xisf/errs"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// lz4HCCompressorPool pools lz4.CompressorHC instances for reuse.
var lz4HCCompressorPool = sync.Pool{
	New: func() any {
		return &lz4.CompressorHC{Level: lz4.Level9}
	},
}

// LZ4Compressor implements the lz4 codec over raw LZ4 blocks.
//
// XISF stores bare block payloads without frame headers; the decompressed
// size comes from the compression attribute instead.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data as a single LZ4 block.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	return dst[:n], nil
}

// Decompress decompresses a single LZ4 block into exactly size bytes.
func (c LZ4Compressor) Decompress(data []byte, size int) ([]byte, error) {
	return lz4DecompressBlock(data, size)
}

// LZ4HCCompressor implements the lz4hc codec: the same block format as lz4
// with the high compression encoder.
type LZ4HCCompressor struct{}

var _ Codec = (*LZ4HCCompressor)(nil)

// NewLZ4HCCompressor creates a new LZ4 high compression compressor.
func NewLZ4HCCompressor() LZ4HCCompressor {
	return LZ4HCCompressor{}
}

// Compress compresses the input data as a single LZ4 block using the high
// compression match finder.
func (c LZ4HCCompressor) Compress(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4HCCompressorPool.Get().(*lz4.CompressorHC)
	defer lz4HCCompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4hc compression failed: %w", err)
	}

	return dst[:n], nil
}

// Decompress decompresses a single LZ4 block into exactly size bytes.
// The block format is shared with the lz4 codec.
func (c LZ4HCCompressor) Decompress(data []byte, size int) ([]byte, error) {
	return lz4DecompressBlock(data, size)
}

func lz4DecompressBlock(data []byte, size int) ([]byte, error) {
	dst := make([]byte, size)

	n, err := lz4.UncompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCorruptBlock, err)
	}

	if n != size {
		return nil, fmt.Errorf("%w: lz4 block decoded to %d bytes, declared %d", errs.ErrCorruptBlock, n, size)
	}

	return dst, nil
}
