package compress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/xisf/errs"
	"github.com/arloliu/xisf/format"
)

func testPayload(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		// Slowly varying 16-bit samples, the shape shuffle preconditioning
		// is meant for.
		data[i] = byte(i / 7)
	}

	return data
}

func TestCompressRoundTripAllCodecs(t *testing.T) {
	codecs := []format.CodecType{
		format.CodecZlib, format.CodecZlibSh,
		format.CodecLZ4, format.CodecLZ4Sh,
		format.CodecLZ4HC, format.CodecLZ4HCSh,
		format.CodecZstd, format.CodecZstdSh,
	}

	payload := testPayload(4096)
	ctx := context.Background()

	for _, codec := range codecs {
		t.Run(codec.String(), func(t *testing.T) {
			compressed, spec, err := Compress(ctx, payload, codec, 2)
			require.NoError(t, err)
			require.Equal(t, codec, spec.Codec)
			require.Equal(t, uint64(len(payload)), spec.UncompressedSize)

			if codec.Shuffled() {
				require.Equal(t, 2, spec.ItemSize)
			} else {
				require.Equal(t, 0, spec.ItemSize)
			}

			out, err := Decompress(ctx, compressed, spec)
			require.NoError(t, err)
			require.Equal(t, payload, out)
		})
	}
}

func TestCompressEmptyPayload(t *testing.T) {
	ctx := context.Background()

	compressed, spec, err := Compress(ctx, []byte{}, format.CodecZlib, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(0), spec.UncompressedSize)

	out, err := Decompress(ctx, compressed, spec)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestDecompressSizeMismatch(t *testing.T) {
	ctx := context.Background()

	compressed, spec, err := Compress(ctx, testPayload(256), format.CodecLZ4, 0)
	require.NoError(t, err)

	spec.UncompressedSize = 255
	_, err = Decompress(ctx, compressed, spec)
	require.ErrorIs(t, err, errs.ErrCorruptBlock)
}

func TestDecompressSubBlocks(t *testing.T) {
	ctx := context.Background()
	codec := NewZlibCompressor()

	first := testPayload(200)
	second := testPayload(300)[:100]

	encodedFirst, err := codec.Compress(first)
	require.NoError(t, err)

	encodedSecond, err := codec.Compress(second)
	require.NoError(t, err)

	spec := format.Compression{
		Codec:            format.CodecZlib,
		UncompressedSize: uint64(len(first) + len(second)),
		SubBlocks: []format.SubBlock{
			{CompressedSize: uint64(len(encodedFirst)), UncompressedSize: uint64(len(first))},
			{CompressedSize: uint64(len(encodedSecond)), UncompressedSize: uint64(len(second))},
		},
	}

	out, err := Decompress(ctx, append(encodedFirst, encodedSecond...), spec)
	require.NoError(t, err)
	require.Equal(t, append(append([]byte(nil), first...), second...), out)
}

func TestDecompressSubBlockTruncated(t *testing.T) {
	ctx := context.Background()

	spec := format.Compression{
		Codec:            format.CodecZlib,
		UncompressedSize: 100,
		SubBlocks:        []format.SubBlock{{CompressedSize: 50, UncompressedSize: 100}},
	}

	_, err := Decompress(ctx, []byte{1, 2, 3}, spec)
	require.ErrorIs(t, err, errs.ErrCorruptBlock)
}

func TestCompressShuffleRequiresItemSize(t *testing.T) {
	_, _, err := Compress(context.Background(), testPayload(64), format.CodecLZ4Sh, 1)
	require.ErrorIs(t, err, errs.ErrInvalidItemSize)
}

func TestCompressCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Compress(ctx, testPayload(64), format.CodecZlib, 0)
	require.ErrorIs(t, err, errs.ErrCancelled)
}

func TestGetCodecUnknown(t *testing.T) {
	_, err := GetCodec(format.CodecType(0xFF))
	require.ErrorIs(t, err, errs.ErrUnsupportedCodec)
}
