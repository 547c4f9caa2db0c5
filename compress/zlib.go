package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"

	"github.com/arloliu/xisf/errs"
	"github.com/arloliu/xisf/internal/pool"
)

// zlibWriterPool pools zlib.Writer instances for reuse. The deflate state is
// large enough that per-call allocation dominates small payload writes.
var zlibWriterPool = sync.Pool{
	New: func() any {
		return zlib.NewWriter(io.Discard)
	},
}

// ZlibCompressor implements the zlib codec over DEFLATE streams with the
// standard zlib framing used by XISF.
type ZlibCompressor struct{}

var _ Codec = (*ZlibCompressor)(nil)

// NewZlibCompressor creates a new zlib compressor.
func NewZlibCompressor() ZlibCompressor {
	return ZlibCompressor{}
}

// Compress compresses the input data into a zlib stream.
func (c ZlibCompressor) Compress(data []byte) ([]byte, error) {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	zw, _ := zlibWriterPool.Get().(*zlib.Writer)
	defer zlibWriterPool.Put(zw)
	zw.Reset(buf)

	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("zlib compression failed: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zlib compression failed: %w", err)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

// Decompress inflates a zlib stream into exactly size bytes.
func (c ZlibCompressor) Decompress(data []byte, size int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCorruptBlock, err)
	}
	defer zr.Close()

	out := make([]byte, size)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("%w: zlib stream shorter than declared size %d: %w", errs.ErrCorruptBlock, size, err)
	}

	// The stream must end exactly at the declared size.
	var extra [1]byte
	if n, _ := zr.Read(extra[:]); n != 0 {
		return nil, fmt.Errorf("%w: zlib stream longer than declared size %d", errs.ErrCorruptBlock, size)
	}

	return out, nil
}
