package header

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/xisf/errs"
	"github.com/arloliu/xisf/format"
	"github.com/arloliu/xisf/unit"
)

const minimalDoc = `<?xml version="1.0" encoding="UTF-8"?>
<xisf version="1.0" xmlns="http://www.pixinsight.com/xisf">
  <Metadata>
    <Property id="XISF:CreationTime" type="TimePoint" value="2025-06-01T12:00:00.000+00:00"/>
    <Property id="XISF:CreatorApplication" type="String">TestApp</Property>
  </Metadata>
  <Image geometry="4:4:1" sampleFormat="UInt16" colorSpace="Gray" location="attachment:100:32"/>
</xisf>`

func TestParseMinimalDocument(t *testing.T) {
	hdr, err := Parse([]byte(minimalDoc))
	require.NoError(t, err)

	require.Equal(t, "TestApp", hdr.Metadata.CreatorApplication)
	require.Equal(t, 2025, hdr.Metadata.CreationTime.Year())

	require.Len(t, hdr.Images, 1)
	img := hdr.Images[0]
	require.Equal(t, "4:4:1", img.Geometry.String())
	require.Equal(t, format.SampleUInt16, img.SampleFormat)
	require.Equal(t, format.ColorSpaceGray, img.ColorSpace)
	require.Equal(t, format.StoragePlanar, img.PixelStorage)

	require.NotNil(t, img.Block)
	require.Equal(t, unit.BlockAttached, img.Block.Kind)
	require.Equal(t, uint64(100), img.Block.Position)
	require.Equal(t, uint64(32), img.Block.Size)
}

func TestParseInitialComment(t *testing.T) {
	doc := strings.Replace(minimalDoc, "<xisf",
		"<!--\nExtensible Image Serialization Format - XISF version 1.0\n-->\n<xisf", 1)

	hdr, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Contains(t, hdr.InitialComment, "Extensible Image Serialization Format")
}

func TestParseUnsupportedVersion(t *testing.T) {
	doc := strings.Replace(minimalDoc, `<xisf version="1.0"`, `<xisf version="2.0"`, 1)

	_, err := Parse([]byte(doc))
	require.ErrorIs(t, err, errs.ErrUnsupportedVersion)
}

func TestParseWrongNamespace(t *testing.T) {
	doc := strings.Replace(minimalDoc, Namespace, "http://example.org/not-xisf", 1)

	_, err := Parse([]byte(doc))
	require.ErrorIs(t, err, errs.ErrMalformedXML)
}

func TestParseWrongRootElement(t *testing.T) {
	_, err := Parse([]byte(`<?xml version="1.0"?><fits version="1.0"/>`))
	require.ErrorIs(t, err, errs.ErrMalformedXML)
}

func TestParseMissingMetadata(t *testing.T) {
	doc := `<?xml version="1.0"?><xisf version="1.0" xmlns="http://www.pixinsight.com/xisf"></xisf>`

	_, err := Parse([]byte(doc))
	require.ErrorIs(t, err, errs.ErrMissingRequiredAttribute)
}

func TestParseImageMissingGeometry(t *testing.T) {
	doc := strings.Replace(minimalDoc, `geometry="4:4:1" `, "", 1)

	_, err := Parse([]byte(doc))
	require.ErrorIs(t, err, errs.ErrMissingRequiredAttribute)
}

func TestParseImageUnknownSampleFormat(t *testing.T) {
	doc := strings.Replace(minimalDoc, `sampleFormat="UInt16"`, `sampleFormat="Int24"`, 1)

	_, err := Parse([]byte(doc))
	require.ErrorIs(t, err, errs.ErrUnknownEnumValue)
}

func TestParseTruncatedDocument(t *testing.T) {
	_, err := Parse([]byte(minimalDoc[:120]))
	require.ErrorIs(t, err, errs.ErrMalformedXML)
}

func TestParseInlineImagePayload(t *testing.T) {
	doc := strings.Replace(minimalDoc,
		`location="attachment:100:32"/>`,
		`location="inline:base64">AAECAwQFBgc=</Image>`, 1)

	hdr, err := Parse([]byte(doc))
	require.NoError(t, err)

	blk := hdr.Images[0].Block
	require.Equal(t, unit.BlockInline, blk.Kind)
	require.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7}, blk.Raw)
}

func TestParseEmbeddedImagePayload(t *testing.T) {
	doc := strings.Replace(minimalDoc,
		`location="attachment:100:32"/>`,
		`location="embedded"><Data encoding="hex">00ff10a0</Data></Image>`, 1)

	hdr, err := Parse([]byte(doc))
	require.NoError(t, err)

	blk := hdr.Images[0].Block
	require.Equal(t, unit.BlockEmbedded, blk.Kind)
	require.Equal(t, format.EncodingHex, blk.Encoding)
	require.Equal(t, []byte{0x00, 0xFF, 0x10, 0xA0}, blk.Raw)
}

func TestParseImageChildren(t *testing.T) {
	doc := strings.Replace(minimalDoc,
		`location="attachment:100:32"/>`,
		`location="attachment:100:32">
      <Property id="Instrument:ExposureTime" type="Float32" value="300"/>
      <FITSKeyword name="EXPTIME" value="300." comment="exposure time"/>
    </Image>`, 1)

	hdr, err := Parse([]byte(doc))
	require.NoError(t, err)

	img := hdr.Images[0]
	require.Len(t, img.Properties, 1)
	require.Equal(t, "Instrument:ExposureTime", img.Properties[0].ID)

	require.Len(t, img.Elements, 1)
	kw, ok := img.Elements[0].(unit.FITSKeyword)
	require.True(t, ok)
	require.Equal(t, "EXPTIME", kw.Name)
	require.Equal(t, "300.", kw.Value)
}

func TestParseCompressedBlockAttributes(t *testing.T) {
	doc := strings.Replace(minimalDoc,
		`location="attachment:100:32"`,
		`location="attachment:100:20" compression="zlib:32" checksum="sha-1:a9993e364706816aba3e25717850c26c9cd0d89d" byteOrder="big"`, 1)

	hdr, err := Parse([]byte(doc))
	require.NoError(t, err)

	blk := hdr.Images[0].Block
	require.Equal(t, format.BigEndian, blk.ByteOrder)

	require.NotNil(t, blk.Compression)
	require.Equal(t, format.CodecZlib, blk.Compression.Codec)
	require.Equal(t, uint64(32), blk.Compression.UncompressedSize)

	require.NotNil(t, blk.Checksum)
	require.Equal(t, format.ChecksumSHA1, blk.Checksum.Algorithm)
}
