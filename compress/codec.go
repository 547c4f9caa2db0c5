package compress

import (
	"fmt"

	"github.com/arloliu/xisf/errs"
	"github.com/arloliu/xisf/format"
)

// Codec provides compression and decompression for XISF data block payloads.
//
// Implementations handle exactly one base codec; the shuffle preconditioner of
// the +sh codec variants is applied by the pipeline functions in this package,
// not by the codecs themselves.
type Codec interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	//   - Internal buffers may be reused for efficiency
	Compress(data []byte) ([]byte, error)

	// Decompress decompresses the input data into exactly size bytes.
	//
	// The declared uncompressed size comes from the compression attribute of
	// the owning element. A decoded stream that is shorter or longer than
	// size fails with errs.ErrCorruptBlock.
	Decompress(data []byte, size int) ([]byte, error)
}

var builtinCodecs = map[format.CodecType]Codec{
	format.CodecZlib:  NewZlibCompressor(),
	format.CodecLZ4:   NewLZ4Compressor(),
	format.CodecLZ4HC: NewLZ4HCCompressor(),
	format.CodecZstd:  NewZstdCompressor(),
}

// GetCodec retrieves the built-in Codec for a codec type. Shuffled variants
// resolve to their base codec.
func GetCodec(codecType format.CodecType) (Codec, error) {
	if codec, ok := builtinCodecs[codecType.Base()]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCodec, codecType)
}
