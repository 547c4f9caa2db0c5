package compress

import (
	"fmt"

	"github.com/arloliu/xisf/errs"
)

// Shuffle applies the byte shuffle preconditioner: the bytes of N whole
// items of itemSize bytes are regrouped so that all first bytes come first,
// then all second bytes, and so on. Trailing bytes that do not fill a whole
// item are copied verbatim to the end of the output.
//
// Grouping like-positioned bytes raises the run lengths the downstream
// entropy coder sees on slowly varying samples.
//
// Parameters:
//   - data: Input payload
//   - itemSize: Item width in bytes, must be >= 2
//
// Returns:
//   - []byte: Newly allocated shuffled payload of the same length
//   - error: ErrInvalidItemSize if itemSize < 2
func Shuffle(data []byte, itemSize int) ([]byte, error) {
	if itemSize < 2 {
		return nil, fmt.Errorf("%w: shuffle requires item size >= 2, got %d", errs.ErrInvalidItemSize, itemSize)
	}

	n := len(data) / itemSize
	out := make([]byte, len(data))

	for i := 0; i < n; i++ {
		for j := 0; j < itemSize; j++ {
			out[j*n+i] = data[i*itemSize+j]
		}
	}

	copy(out[n*itemSize:], data[n*itemSize:])

	return out, nil
}

// Unshuffle inverts Shuffle with the same item size.
func Unshuffle(data []byte, itemSize int) ([]byte, error) {
	if itemSize < 2 {
		return nil, fmt.Errorf("%w: unshuffle requires item size >= 2, got %d", errs.ErrInvalidItemSize, itemSize)
	}

	n := len(data) / itemSize
	out := make([]byte, len(data))

	for i := 0; i < n; i++ {
		for j := 0; j < itemSize; j++ {
			out[i*itemSize+j] = data[j*n+i]
		}
	}

	copy(out[n*itemSize:], data[n*itemSize:])

	return out, nil
}
