package block

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/xisf/checksum"
	"github.com/arloliu/xisf/errs"
	"github.com/arloliu/xisf/format"
	"github.com/arloliu/xisf/unit"
)

type fakeProvider struct {
	payloads map[string][]byte
	opened   []string
}

func (p *fakeProvider) Open(_ context.Context, ref string) (io.ReadSeekCloser, error) {
	p.opened = append(p.opened, ref)

	data, ok := p.payloads[ref]
	if !ok {
		return nil, errs.ErrStreamIO
	}

	return nopCloser{bytes.NewReader(data)}, nil
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }

func TestReadInlineBlock(t *testing.T) {
	blk := &unit.DataBlock{Kind: unit.BlockInline, Raw: []byte{1, 2, 3}}

	proc := &Processor{}
	out, err := proc.Read(context.Background(), blk, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, out)
	require.Equal(t, out, blk.Data)
}

func TestReadAttachedBlock(t *testing.T) {
	carrier := bytes.NewReader([]byte("0123456789abcdef"))
	blk := &unit.DataBlock{Kind: unit.BlockAttached, Position: 10, Size: 4}

	proc := &Processor{}
	out, err := proc.Read(context.Background(), blk, carrier)
	require.NoError(t, err)
	require.Equal(t, []byte("abcd"), out)
}

func TestReadAttachedBlockShortCarrier(t *testing.T) {
	carrier := bytes.NewReader([]byte("0123"))
	blk := &unit.DataBlock{Kind: unit.BlockAttached, Position: 2, Size: 10}

	proc := &Processor{}
	_, err := proc.Read(context.Background(), blk, carrier)
	require.ErrorIs(t, err, errs.ErrEndOfStream)
}

func TestReadExternalBlock(t *testing.T) {
	provider := &fakeProvider{payloads: map[string][]byte{
		"https://example.org/pixels": {9, 9, 9, 1, 2, 3},
	}}

	proc := &Processor{URIs: provider}

	// Whole resource.
	blk := &unit.DataBlock{Kind: unit.BlockExternal, URI: "https://example.org/pixels"}
	out, err := proc.Read(context.Background(), blk, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{9, 9, 9, 1, 2, 3}, out)

	// Windowed.
	blk = &unit.DataBlock{Kind: unit.BlockExternal, URI: "https://example.org/pixels", Position: 3, Size: 3}
	out, err = proc.Read(context.Background(), blk, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, out)
}

func TestReadExternalBlockPathProvider(t *testing.T) {
	files := &fakeProvider{payloads: map[string][]byte{"@header_dir/b.xisb": {5}}}
	uris := &fakeProvider{}

	proc := &Processor{Files: files, URIs: uris}

	blk := &unit.DataBlock{Kind: unit.BlockExternal, PathRef: true, URI: "@header_dir/b.xisb"}
	_, err := proc.Read(context.Background(), blk, nil)
	require.NoError(t, err)

	require.Len(t, files.opened, 1)
	require.Empty(t, uris.opened, "path references must not hit the URI provider")
}

func TestReadExternalBlockWithoutProvider(t *testing.T) {
	proc := &Processor{}

	blk := &unit.DataBlock{Kind: unit.BlockExternal, URI: "https://example.org/x"}
	_, err := proc.Read(context.Background(), blk, nil)
	require.ErrorIs(t, err, errs.ErrNoExternalStreams)
}

func TestPrepareReadPipeline(t *testing.T) {
	ctx := context.Background()

	payload := bytes.Repeat([]byte{0, 1, 2, 3}, 64)
	blk := unit.NewAttachedBlock(payload)

	proc := &Processor{ValidateChecksums: true}
	err := proc.Prepare(ctx, blk, PrepareOptions{
		Codec:             format.CodecZlibSh,
		ItemSize:          2,
		CalculateChecksum: true,
		ChecksumAlgorithm: format.ChecksumSHA1,
	})
	require.NoError(t, err)

	require.NotNil(t, blk.Compression)
	require.Equal(t, uint64(len(payload)), blk.Compression.UncompressedSize)
	require.Equal(t, uint64(len(blk.Raw)), blk.Size)
	require.NotNil(t, blk.Checksum)
	require.NoError(t, checksum.Verify(blk.Raw, *blk.Checksum))

	// Round trip through a carrier holding just this block.
	carrier := bytes.NewReader(blk.Raw)
	read := &unit.DataBlock{
		Kind:        unit.BlockAttached,
		Position:    0,
		Size:        blk.Size,
		Compression: blk.Compression,
		Checksum:    blk.Checksum,
	}

	out, err := proc.Read(ctx, read, carrier)
	require.NoError(t, err)
	require.Equal(t, payload, out)
}

func TestPrepareShuffleDegradesForNarrowItems(t *testing.T) {
	blk := unit.NewAttachedBlock([]byte{1, 2, 3, 4})

	proc := &Processor{}
	err := proc.Prepare(context.Background(), blk, PrepareOptions{Codec: format.CodecLZ4Sh, ItemSize: 1})
	require.NoError(t, err)
	require.Equal(t, format.CodecLZ4, blk.Compression.Codec)
}

func TestPrepareClearsStaleMetadata(t *testing.T) {
	blk := unit.NewAttachedBlock([]byte{1, 2, 3, 4})
	blk.Compression = &format.Compression{Codec: format.CodecZlib, UncompressedSize: 99}
	blk.Checksum = &format.Checksum{Algorithm: format.ChecksumSHA1, Digest: make([]byte, 20)}

	proc := &Processor{}
	err := proc.Prepare(context.Background(), blk, PrepareOptions{})
	require.NoError(t, err)
	require.Nil(t, blk.Compression)
	require.Nil(t, blk.Checksum)
	require.Equal(t, blk.Data, blk.Raw)
}

func TestReadChecksumGate(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	digest, err := checksum.Digest(payload, format.ChecksumSHA256)
	require.NoError(t, err)

	blk := &unit.DataBlock{
		Kind:     unit.BlockInline,
		Raw:      payload,
		Checksum: &format.Checksum{Algorithm: format.ChecksumSHA256, Digest: digest},
	}

	proc := &Processor{ValidateChecksums: true}
	_, err = proc.Read(context.Background(), blk, nil)
	require.NoError(t, err)

	blk.Raw = []byte{1, 2, 3, 5}
	_, err = proc.Read(context.Background(), blk, nil)
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)
}
