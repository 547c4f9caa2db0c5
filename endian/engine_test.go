package endian

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/arloliu/xisf/errs"
	"github.com/arloliu/xisf/format"
)

func TestConvertNoOp(t *testing.T) {
	data := []byte{1, 2, 3, 4}

	out, err := Convert(data, format.LittleEndian, format.LittleEndian, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, out)

	out, err = Convert(data, format.LittleEndian, format.BigEndian, 1)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, out)
}

func TestConvertSwapsItems(t *testing.T) {
	tests := []struct {
		name     string
		itemSize int
		in       []byte
		want     []byte
	}{
		{"uint16", 2, []byte{1, 2, 3, 4}, []byte{2, 1, 4, 3}},
		{"uint32", 4, []byte{1, 2, 3, 4}, []byte{4, 3, 2, 1}},
		{"uint64", 8, []byte{1, 2, 3, 4, 5, 6, 7, 8}, []byte{8, 7, 6, 5, 4, 3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]byte(nil), tt.in...)
			out, err := Convert(in, format.BigEndian, format.LittleEndian, tt.itemSize)
			require.NoError(t, err)
			require.Equal(t, tt.want, out)
		})
	}
}

func TestConvertInvalidItemSize(t *testing.T) {
	_, err := Convert([]byte{1, 2, 3}, format.LittleEndian, format.BigEndian, 3)
	require.ErrorIs(t, err, errs.ErrInvalidItemSize)

	// Ragged length for a valid item size.
	_, err = Convert([]byte{1, 2, 3}, format.LittleEndian, format.BigEndian, 2)
	require.ErrorIs(t, err, errs.ErrInvalidItemSize)
}

func TestConvertInvolution(t *testing.T) {
	sizes := []int{2, 4, 8, 16}

	rapid.Check(t, func(t *rapid.T) {
		itemSize := rapid.SampledFrom(sizes).Draw(t, "itemSize")
		items := rapid.IntRange(0, 64).Draw(t, "items")
		data := rapid.SliceOfN(rapid.Byte(), items*itemSize, items*itemSize).Draw(t, "data")

		original := append([]byte(nil), data...)

		once, err := Convert(data, format.LittleEndian, format.BigEndian, itemSize)
		require.NoError(t, err)

		twice, err := Convert(once, format.BigEndian, format.LittleEndian, itemSize)
		require.NoError(t, err)
		require.True(t, bytes.Equal(original, twice), "double conversion changed the payload")
	})
}

func TestEngineSelection(t *testing.T) {
	require.Equal(t, GetLittleEndianEngine(), Engine(format.LittleEndian))
	require.Equal(t, GetBigEndianEngine(), Engine(format.BigEndian))
}
