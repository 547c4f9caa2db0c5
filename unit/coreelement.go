package unit

import "github.com/arloliu/xisf/format"

// CoreElement is a top-level XML element other than Image, Property and
// Metadata. Every variant may carry a unique id, referenced by Reference
// elements within the same header.
type CoreElement interface {
	// ElementName returns the XML local name of the element.
	ElementName() string
	// ElementUID returns the unique id, or "" when the element has none.
	ElementUID() string
}

// Reference points at another core element by unique id, avoiding
// duplication of shared elements such as ICC profiles.
type Reference struct {
	UID string
	Ref string
}

func (Reference) ElementName() string  { return "Reference" }
func (r Reference) ElementUID() string { return r.UID }

// Resolution declares the physical resolution of an image in pixels per
// unit, unit being "inch" or "cm".
type Resolution struct {
	UID        string
	Horizontal float64
	Vertical   float64
	Unit       string
}

func (Resolution) ElementName() string  { return "Resolution" }
func (r Resolution) ElementUID() string { return r.UID }

// FITSKeyword preserves one FITS header card for interchange with FITS
// based tooling.
type FITSKeyword struct {
	UID     string
	Name    string
	Value   string
	Comment string
}

func (FITSKeyword) ElementName() string  { return "FITSKeyword" }
func (k FITSKeyword) ElementUID() string { return k.UID }

// ColorFilterArray describes the mosaic pattern of a raw sensor frame.
// The pattern string lists filter letters row by row, width times height
// characters in total.
type ColorFilterArray struct {
	UID     string
	Pattern string
	Width   int
	Height  int
	Name    string
}

func (ColorFilterArray) ElementName() string  { return "ColorFilterArray" }
func (c ColorFilterArray) ElementUID() string { return c.UID }

// ICCProfile carries an ICC color profile as a data block.
type ICCProfile struct {
	UID   string
	Block *DataBlock
}

func (ICCProfile) ElementName() string  { return "ICCProfile" }
func (p ICCProfile) ElementUID() string { return p.UID }

// RGBWorkingSpace defines the RGB working space of an image: gamma plus the
// xy chromaticity coordinates and relative luminances of the three primaries.
type RGBWorkingSpace struct {
	UID           string
	Gamma         float64
	ChromaticityX [3]float64
	ChromaticityY [3]float64
	Luminance     [3]float64
	Name          string
}

func (RGBWorkingSpace) ElementName() string  { return "RGBWorkingSpace" }
func (w RGBWorkingSpace) ElementUID() string { return w.UID }

// DisplayFunction defines the screen transfer function applied when
// rendering an image: midtones balance, shadows and highlights clipping and
// dynamic range expansion, one value per channel plus a combined one.
type DisplayFunction struct {
	UID        string
	Midtones   [4]float64
	Shadows    [4]float64
	Highlights [4]float64
	Expansion  [4]float64
	Name       string
}

func (DisplayFunction) ElementName() string  { return "DisplayFunction" }
func (d DisplayFunction) ElementUID() string { return d.UID }

// Thumbnail is a reduced preview image. Its pixel block goes through the
// same data block pipeline as full images.
type Thumbnail struct {
	UID          string
	Geometry     Geometry
	SampleFormat format.SampleFormat
	ColorSpace   format.ColorSpace
	PixelStorage format.PixelStorage
	Block        *DataBlock
}

func (Thumbnail) ElementName() string  { return "Thumbnail" }
func (t Thumbnail) ElementUID() string { return t.UID }
