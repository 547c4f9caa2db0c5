package stream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/xisf/errs"
)

func carrier() io.ReadSeeker {
	data := make([]byte, 32)
	for i := range data {
		data[i] = byte(i)
	}

	return bytes.NewReader(data)
}

func TestSubstreamWindowedRead(t *testing.T) {
	view, err := NewSubstream(carrier(), 8, 4)
	require.NoError(t, err)
	require.Equal(t, int64(4), view.Size())

	out, err := io.ReadAll(view)
	require.NoError(t, err)
	require.Equal(t, []byte{8, 9, 10, 11}, out)

	// Subsequent reads report EOF.
	n, err := view.Read(make([]byte, 1))
	require.Zero(t, n)
	require.ErrorIs(t, err, io.EOF)
}

func TestSubstreamSeekClamped(t *testing.T) {
	view, err := NewSubstream(carrier(), 8, 4)
	require.NoError(t, err)

	pos, err := view.Seek(-5, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, int64(0), pos)

	pos, err = view.Seek(100, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, int64(4), pos)

	pos, err = view.Seek(-1, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(3), pos)

	out := make([]byte, 1)
	_, err = view.Read(out)
	require.NoError(t, err)
	require.Equal(t, byte(11), out[0])
}

func TestSubstreamReadAt(t *testing.T) {
	view, err := NewSubstream(carrier(), 16, 8)
	require.NoError(t, err)

	out := make([]byte, 4)
	n, err := view.ReadAt(out, 2)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []byte{18, 19, 20, 21}, out)

	_, err = view.ReadAt(out, 100)
	require.ErrorIs(t, err, errs.ErrInvalidRange)
}

func TestSubstreamWriteRejected(t *testing.T) {
	view, err := NewSubstream(carrier(), 0, 4)
	require.NoError(t, err)

	_, err = view.Write([]byte{1})
	require.ErrorIs(t, err, errs.ErrReadOnlyStream)
}

func TestSubstreamNegativeRange(t *testing.T) {
	_, err := NewSubstream(carrier(), -1, 4)
	require.ErrorIs(t, err, errs.ErrInvalidRange)

	_, err = NewSubstream(carrier(), 0, -4)
	require.ErrorIs(t, err, errs.ErrInvalidRange)
}

func TestSubstreamWindowPastCarrierEnd(t *testing.T) {
	view, err := NewSubstream(carrier(), 30, 8)
	require.NoError(t, err)

	_, err = io.ReadAll(view)
	require.ErrorIs(t, err, errs.ErrEndOfStream)
}

func TestSubstreamCloseWithoutOwnership(t *testing.T) {
	view, err := NewSubstream(carrier(), 0, 4)
	require.NoError(t, err)
	require.NoError(t, view.Close())
}
