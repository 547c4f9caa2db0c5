package storage

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/xisf/errs"
	"github.com/arloliu/xisf/format"
	"github.com/arloliu/xisf/unit"
)

func distributedUnit() *unit.Unit {
	return &unit.Unit{
		Storage: unit.Distributed{},
		Header: &unit.Header{
			Metadata: unit.Metadata{
				CreationTime:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
				CreatorApplication: "xish-test",
			},
			Images: []unit.Image{
				{
					Geometry:     unit.Geometry{Dimensions: []uint64{2, 2}, Channels: 1},
					SampleFormat: format.SampleUInt8,
					ColorSpace:   format.ColorSpaceGray,
					PixelStorage: format.StoragePlanar,
					Block:        unit.NewInlineBlock([]byte{1, 2, 3, 4}),
				},
			},
		},
	}
}

func TestDistributedRoundTrip(t *testing.T) {
	u := distributedUnit()

	var buf bytes.Buffer
	err := WriteDistributed(context.Background(), &buf, u, &WriterConfig{PrettyPrint: true})
	require.NoError(t, err)

	// No binary preamble: the stream is XML from the first byte.
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("<?xml")))

	got, err := ReadDistributed(context.Background(), &buf, &ReaderConfig{})
	require.NoError(t, err)

	_, ok := got.Storage.(unit.Distributed)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3, 4}, got.Header.Images[0].Block.Data)
}

func TestDistributedExternalReferences(t *testing.T) {
	u := distributedUnit()
	u.Header.Images[0].Block = &unit.DataBlock{
		Kind:      unit.BlockExternal,
		PathRef:   true,
		URI:       "@header_dir/pixels.xisb",
		ByteOrder: format.LittleEndian,
	}

	var buf bytes.Buffer
	err := WriteDistributed(context.Background(), &buf, u, &WriterConfig{})
	require.NoError(t, err)

	// Without LoadExternalReferences the payload stays unresolved.
	got, err := ReadDistributed(context.Background(), &buf, &ReaderConfig{})
	require.NoError(t, err)
	require.Nil(t, got.Header.Images[0].Block.Data)

	d, ok := got.Storage.(unit.Distributed)
	require.True(t, ok)
	require.Equal(t, []string{"@header_dir/pixels.xisb"}, d.DataFiles)
}

func TestDistributedRejectsAttachedBlocks(t *testing.T) {
	u := distributedUnit()
	u.Header.Images[0].Block = unit.NewAttachedBlock([]byte{1, 2, 3, 4})

	var buf bytes.Buffer
	err := WriteDistributed(context.Background(), &buf, u, &WriterConfig{})
	require.ErrorIs(t, err, errs.ErrInvalidLocation)
}

func TestDistributedCompressedInlineBlock(t *testing.T) {
	u := distributedUnit()
	payload := bytes.Repeat([]byte{1, 2, 3, 4}, 64)
	u.Header.Images[0].Block = unit.NewInlineBlock(payload)
	u.Header.Images[0].Geometry = unit.Geometry{Dimensions: []uint64{16, 16}, Channels: 1}

	var buf bytes.Buffer
	cfg := &WriterConfig{DefaultCompression: format.CodecZlib, CalculateChecksums: true}
	err := WriteDistributed(context.Background(), &buf, u, cfg)
	require.NoError(t, err)

	got, err := ReadDistributed(context.Background(), &buf, &ReaderConfig{ValidateChecksums: true})
	require.NoError(t, err)
	require.Equal(t, payload, got.Header.Images[0].Block.Data)
}
