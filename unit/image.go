package unit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/xisf/format"
)

// Image is one multidimensional pixel array of a unit together with its
// per-image metadata.
type Image struct {
	Geometry     Geometry
	SampleFormat format.SampleFormat
	ColorSpace   format.ColorSpace
	PixelStorage format.PixelStorage

	// Bounds declares the representable sample range. Required for floating
	// point and complex sample formats.
	Bounds *Bounds

	// ImageType classifies the frame (Light, Dark, Flat, Bias, ...).
	// Free-form, empty when undeclared.
	ImageType string

	// Offset is the additive pedestal applied to all samples. Never
	// negative.
	Offset float64

	// Orientation describes the display transformation relative to pixel
	// storage order, e.g. "flip" or "90;flip". Empty when undeclared.
	Orientation string

	ID   string
	UUID string

	// Block carries the pixel data.
	Block *DataBlock

	Properties []Property
	Elements   []CoreElement
}

// PixelDataSize returns the expected uncompressed pixel payload size in
// bytes.
func (img *Image) PixelDataSize() uint64 {
	return img.Geometry.SampleCount() * uint64(img.SampleFormat.ItemSize())
}

// Bounds is the representable sample range of an image, lower < upper.
type Bounds struct {
	Lower float64
	Upper float64
}

// String serializes the bounds to the attribute wire form "lo:hi".
func (b Bounds) String() string {
	return strconv.FormatFloat(b.Lower, 'g', 17, 64) + ":" + strconv.FormatFloat(b.Upper, 'g', 17, 64)
}

// ParseBounds parses a bounds attribute value.
func ParseBounds(s string) (Bounds, error) {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return Bounds{}, fmt.Errorf("bounds %q must be two colon-separated numbers", s)
	}

	lower, err := strconv.ParseFloat(lo, 64)
	if err != nil {
		return Bounds{}, fmt.Errorf("bounds lower %q: %w", lo, err)
	}

	upper, err := strconv.ParseFloat(hi, 64)
	if err != nil {
		return Bounds{}, fmt.Errorf("bounds upper %q: %w", hi, err)
	}

	return Bounds{Lower: lower, Upper: upper}, nil
}
