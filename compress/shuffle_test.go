package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/arloliu/xisf/errs"
)

func TestShuffleKnownVector(t *testing.T) {
	out, err := Shuffle([]byte{1, 2, 3, 4, 5, 6}, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 3, 5, 2, 4, 6}, out)

	back, err := Unshuffle(out, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6}, back)
}

func TestShuffleTailBytes(t *testing.T) {
	// 7 bytes with item size 3: two whole items, one tail byte copied
	// verbatim to the end.
	in := []byte{1, 2, 3, 4, 5, 6, 7}

	out, err := Shuffle(in, 3)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 4, 2, 5, 3, 6, 7}, out)

	back, err := Unshuffle(out, 3)
	require.NoError(t, err)
	require.Equal(t, in, back)
}

func TestShuffleInvalidItemSize(t *testing.T) {
	_, err := Shuffle([]byte{1, 2}, 1)
	require.ErrorIs(t, err, errs.ErrInvalidItemSize)

	_, err = Unshuffle([]byte{1, 2}, 0)
	require.ErrorIs(t, err, errs.ErrInvalidItemSize)
}

func TestShuffleIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		itemSize := rapid.IntRange(2, 16).Draw(t, "itemSize")
		data := rapid.SliceOf(rapid.Byte()).Draw(t, "data")

		shuffled, err := Shuffle(data, itemSize)
		require.NoError(t, err)
		require.Len(t, shuffled, len(data))

		back, err := Unshuffle(shuffled, itemSize)
		require.NoError(t, err)
		require.True(t, bytes.Equal(data, back), "shuffle round trip changed the payload")
	})
}
