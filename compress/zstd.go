package compress

// ZstdCompressor implements the zstd codec.
//
// Zstandard is not part of the original XISF 1.0 codec set but is widely
// produced by current writers; the identifiers zstd and zstd+sh round-trip
// through the compression attribute like any other codec.
//
// Two implementations exist behind build tags: cgo builds bind the reference
// library through valyala/gozstd, pure Go builds use klauspost/compress/zstd.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstandard compressor.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
