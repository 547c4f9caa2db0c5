package unit

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/xisf/format"
)

func validHeader() *Header {
	return &Header{
		Metadata: Metadata{
			CreationTime:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			CreatorApplication: "xisf-test",
		},
		Images: []Image{
			{
				Geometry:     Geometry{Dimensions: []uint64{4, 4}, Channels: 1},
				SampleFormat: format.SampleUInt16,
				ColorSpace:   format.ColorSpaceGray,
				PixelStorage: format.StoragePlanar,
				Block:        NewAttachedBlock(make([]byte, 32)),
			},
		},
	}
}

func TestValidateAcceptsMinimalHeader(t *testing.T) {
	res := Validate(validHeader())
	require.True(t, res.OK)
	require.Empty(t, res.Errors)
}

func TestValidateMissingMetadata(t *testing.T) {
	h := validHeader()
	h.Metadata.CreationTime = time.Time{}
	h.Metadata.CreatorApplication = ""

	res := Validate(h)
	require.False(t, res.OK)
	require.Len(t, res.Errors, 2)
}

func TestValidateFloatImageRequiresBounds(t *testing.T) {
	h := validHeader()
	h.Images[0].SampleFormat = format.SampleFloat32

	res := Validate(h)
	require.False(t, res.OK)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0], "bounds")

	h.Images[0].Bounds = &Bounds{Lower: 0, Upper: 1}
	res = Validate(h)
	require.True(t, res.OK)
}

func TestValidateInvertedBounds(t *testing.T) {
	h := validHeader()
	h.Images[0].SampleFormat = format.SampleFloat64
	h.Images[0].Bounds = &Bounds{Lower: 1, Upper: 0}

	res := Validate(h)
	require.False(t, res.OK)
}

func TestValidatePropertyIDs(t *testing.T) {
	tests := []struct {
		id string
		ok bool
	}{
		{"Observation:Time:Start", true},
		{"_private", true},
		{"Namespace::Legacy", true},
		{"9starts_with_digit", false},
		{"has space", false},
		{"Trailing:", false},
		{"", false},
	}

	for _, tt := range tests {
		h := validHeader()
		h.Properties = []Property{{ID: tt.id, Type: PropString, Raw: "x"}}

		res := Validate(h)
		require.Equal(t, tt.ok, res.OK, "id %q", tt.id)
	}
}

func TestValidateUIDUniqueness(t *testing.T) {
	h := validHeader()
	h.Elements = []CoreElement{
		FITSKeyword{UID: "kw", Name: "EXPTIME", Value: "300"},
		Resolution{UID: "kw", Horizontal: 72, Vertical: 72, Unit: "inch"},
	}

	res := Validate(h)
	require.False(t, res.OK)
	require.True(t, strings.Contains(strings.Join(res.Errors, " "), "already used"))

	h.Elements[1] = Resolution{UID: "res", Horizontal: 72, Vertical: 72, Unit: "inch"}
	res = Validate(h)
	require.True(t, res.OK)
}

func TestValidateUIDGrammar(t *testing.T) {
	h := validHeader()
	h.Elements = []CoreElement{FITSKeyword{UID: "bad uid", Name: "OBJECT"}}

	res := Validate(h)
	require.False(t, res.OK)
}

func TestValidateReferences(t *testing.T) {
	h := validHeader()
	h.Elements = []CoreElement{Reference{Ref: "nowhere"}}

	res := Validate(h)
	require.False(t, res.OK)

	h.Elements = []CoreElement{
		ICCProfile{UID: "srgb", Block: NewInlineBlock([]byte{1, 2, 3})},
		Reference{Ref: "srgb"},
	}
	res = Validate(h)
	require.True(t, res.OK)
}

func TestValidateCFAPattern(t *testing.T) {
	h := validHeader()
	h.Images[0].Elements = []CoreElement{
		ColorFilterArray{Pattern: "RGGB", Width: 2, Height: 2},
	}

	res := Validate(h)
	require.True(t, res.OK)

	h.Images[0].Elements = []CoreElement{
		ColorFilterArray{Pattern: "RGG", Width: 2, Height: 2},
	}
	res = Validate(h)
	require.False(t, res.OK)
}

func TestValidateNegativeOffset(t *testing.T) {
	h := validHeader()
	h.Images[0].Offset = -1

	res := Validate(h)
	require.False(t, res.OK)
}

func TestValidateThumbnailWarning(t *testing.T) {
	h := validHeader()
	h.Images[0].Elements = []CoreElement{
		Thumbnail{
			Geometry:     Geometry{Dimensions: []uint64{2, 2}, Channels: 1},
			SampleFormat: format.SampleFloat32,
			ColorSpace:   format.ColorSpaceGray,
			Block:        NewInlineBlock([]byte{0}),
		},
	}

	res := Validate(h)
	require.True(t, res.OK, "warnings must not block")
	require.NotEmpty(t, res.Warnings)
}
