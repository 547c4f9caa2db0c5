package format

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/xisf/errs"
)

func TestSampleFormatItemSize(t *testing.T) {
	tests := []struct {
		format SampleFormat
		size   int
	}{
		{SampleUInt8, 1},
		{SampleUInt16, 2},
		{SampleUInt32, 4},
		{SampleUInt64, 8},
		{SampleFloat32, 4},
		{SampleFloat64, 8},
		{SampleComplex32, 8},
		{SampleComplex64, 16},
	}

	for _, tt := range tests {
		require.Equal(t, tt.size, tt.format.ItemSize(), "format %s", tt.format)
	}
}

func TestSampleFormatRoundTrip(t *testing.T) {
	formats := []SampleFormat{
		SampleUInt8, SampleUInt16, SampleUInt32, SampleUInt64,
		SampleFloat32, SampleFloat64, SampleComplex32, SampleComplex64,
	}

	for _, f := range formats {
		parsed, err := ParseSampleFormat(f.String())
		require.NoError(t, err)
		require.Equal(t, f, parsed)
	}

	_, err := ParseSampleFormat("UInt128")
	require.ErrorIs(t, err, errs.ErrUnknownEnumValue)
}

func TestSampleFormatRequiresBounds(t *testing.T) {
	require.False(t, SampleUInt16.RequiresBounds())
	require.True(t, SampleFloat32.RequiresBounds())
	require.True(t, SampleFloat64.RequiresBounds())
	require.True(t, SampleComplex32.RequiresBounds())
}

func TestCodecTypeWireForms(t *testing.T) {
	tests := []struct {
		codec CodecType
		wire  string
	}{
		{CodecZlib, "zlib"},
		{CodecZlibSh, "zlib+sh"},
		{CodecLZ4, "lz4"},
		{CodecLZ4Sh, "lz4+sh"},
		{CodecLZ4HC, "lz4hc"},
		{CodecLZ4HCSh, "lz4hc+sh"},
		{CodecZstd, "zstd"},
		{CodecZstdSh, "zstd+sh"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.wire, tt.codec.String())

		parsed, err := ParseCodecType(tt.wire)
		require.NoError(t, err)
		require.Equal(t, tt.codec, parsed)
	}

	_, err := ParseCodecType("brotli")
	require.ErrorIs(t, err, errs.ErrUnsupportedCodec)
}

func TestCodecTypeShuffleVariants(t *testing.T) {
	require.True(t, CodecLZ4Sh.Shuffled())
	require.False(t, CodecLZ4.Shuffled())
	require.Equal(t, CodecLZ4, CodecLZ4Sh.Base())
	require.Equal(t, CodecZlibSh, CodecZlib.WithShuffle())
	require.Equal(t, CodecZstd, CodecZstdSh.Base())
}

func TestChecksumTypeWireForms(t *testing.T) {
	tests := []struct {
		algo ChecksumType
		wire string
		size int
	}{
		{ChecksumSHA1, "sha-1", 20},
		{ChecksumSHA256, "sha-256", 32},
		{ChecksumSHA512, "sha-512", 64},
		{ChecksumSHA3256, "sha3-256", 32},
		{ChecksumSHA3512, "sha3-512", 64},
	}

	for _, tt := range tests {
		require.Equal(t, tt.wire, tt.algo.String())
		require.Equal(t, tt.size, tt.algo.DigestSize())

		parsed, err := ParseChecksumType(tt.wire)
		require.NoError(t, err)
		require.Equal(t, tt.algo, parsed)
	}
}

func TestParseByteOrder(t *testing.T) {
	order, err := ParseByteOrder("big")
	require.NoError(t, err)
	require.Equal(t, BigEndian, order)

	order, err = ParseByteOrder("little")
	require.NoError(t, err)
	require.Equal(t, LittleEndian, order)

	_, err = ParseByteOrder("middle")
	require.ErrorIs(t, err, errs.ErrUnknownEnumValue)
}
