// Package header implements the XISF XML header codec: parsing the header
// grammar into the unit model and emitting it back deterministically.
//
// Emission is byte-stable for a given header value. The monolithic layout
// pass relies on that: it re-emits the header with trial block positions
// until the length reaches a fixed point.
package header

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arloliu/xisf/errs"
	"github.com/arloliu/xisf/format"
	"github.com/arloliu/xisf/unit"
)

// Namespace is the XISF XML namespace of the root element.
const Namespace = "http://www.pixinsight.com/xisf"

// SchemaLocation is the advisory schema location emitted on the root element.
const SchemaLocation = "http://www.pixinsight.com/xisf http://pixinsight.com/xisf/xisf-1.0.xsd"

// Version is the only supported grammar version.
const Version = "1.0"

// MinLength is the smallest well-formed XML header in bytes.
const MinLength = 65

// Parse decodes an XML header into the unit model.
//
// The root element must be xisf in the XISF namespace with version 1.0.
// After that validation, child elements are matched by local name only.
// An XML comment preceding the root element is preserved.
func Parse(data []byte) (*unit.Header, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	hdr := &unit.Header{}

	root, err := findRoot(dec, hdr)
	if err != nil {
		return nil, err
	}

	if root.Name.Space != Namespace {
		return nil, fmt.Errorf("%w: root namespace %q", errs.ErrMalformedXML, root.Name.Space)
	}

	version, ok := attr(root, "version")
	if !ok {
		return nil, fmt.Errorf("%w: xisf version", errs.ErrMissingRequiredAttribute)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedVersion, version)
	}

	sawMetadata := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "Metadata":
				if err := parseMetadata(dec, t, &hdr.Metadata); err != nil {
					return nil, err
				}
				sawMetadata = true

			case "Image":
				img, err := parseImage(dec, t)
				if err != nil {
					return nil, err
				}
				hdr.Images = append(hdr.Images, *img)

			case "Property":
				prop, err := parseProperty(dec, t)
				if err != nil {
					return nil, err
				}
				hdr.Properties = append(hdr.Properties, prop)

			default:
				el, known, err := parseCoreElement(dec, t)
				if err != nil {
					return nil, err
				}
				if known {
					hdr.Elements = append(hdr.Elements, el)
				}
			}

		case xml.EndElement:
			if t.Name.Local == "xisf" {
				if !sawMetadata {
					return nil, fmt.Errorf("%w: Metadata element", errs.ErrMissingRequiredAttribute)
				}

				return hdr, nil
			}
		}
	}
}

// findRoot scans to the root start element, capturing a leading comment.
func findRoot(dec *xml.Decoder, hdr *unit.Header) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("%w: %w", errs.ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.Comment:
			if hdr.InitialComment == "" {
				hdr.InitialComment = string(t)
			}
		case xml.StartElement:
			if t.Name.Local != "xisf" {
				return xml.StartElement{}, fmt.Errorf("%w: root element %q", errs.ErrMalformedXML, t.Name.Local)
			}

			return t, nil
		}
	}
}

func attr(se xml.StartElement, name string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}

	return "", false
}

// elementText consumes the element's content up to its end tag, returning
// the concatenated character data. Nested elements are skipped.
func elementText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 0

	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("%w: %w", errs.ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.CharData:
			if depth == 0 {
				sb.Write(t)
			}
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				return sb.String(), nil
			}
			depth--
		}
	}
}

func parseProperty(dec *xml.Decoder, se xml.StartElement) (unit.Property, error) {
	var prop unit.Property

	id, ok := attr(se, "id")
	if !ok {
		return prop, fmt.Errorf("%w: Property id", errs.ErrMissingRequiredAttribute)
	}

	typ, ok := attr(se, "type")
	if !ok {
		return prop, fmt.Errorf("%w: Property type (id %q)", errs.ErrMissingRequiredAttribute, id)
	}

	prop.ID = id
	prop.Type = unit.PropertyType(typ)
	prop.Comment, _ = attr(se, "comment")
	prop.Format, _ = attr(se, "format")

	if !prop.Type.Known() {
		return prop, fmt.Errorf("%w: property type %q (id %q)", errs.ErrUnknownEnumValue, typ, id)
	}

	text, err := elementText(dec)
	if err != nil {
		return prop, err
	}

	if prop.Type.IsScalar() {
		raw, ok := attr(se, "value")
		if !ok {
			// Text content is the fallback value carrier for any type.
			raw = strings.TrimSpace(text)
		}

		prop.Raw = raw
		prop.Value, err = unit.ParseValue(prop.Type, raw)
		if err != nil {
			return prop, fmt.Errorf("property %q: %w", id, err)
		}

		return prop, nil
	}

	prop.Raw = text

	return prop, nil
}

func parseImage(dec *xml.Decoder, se xml.StartElement) (*unit.Image, error) {
	img := &unit.Image{PixelStorage: format.StoragePlanar}

	geometry, ok := attr(se, "geometry")
	if !ok {
		return nil, fmt.Errorf("%w: Image geometry", errs.ErrMissingRequiredAttribute)
	}

	var err error
	img.Geometry, err = unit.ParseGeometry(geometry)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrMalformedXML, err)
	}

	sampleFormat, ok := attr(se, "sampleFormat")
	if !ok {
		return nil, fmt.Errorf("%w: Image sampleFormat", errs.ErrMissingRequiredAttribute)
	}
	if img.SampleFormat, err = format.ParseSampleFormat(sampleFormat); err != nil {
		return nil, err
	}

	colorSpace, ok := attr(se, "colorSpace")
	if !ok {
		return nil, fmt.Errorf("%w: Image colorSpace", errs.ErrMissingRequiredAttribute)
	}
	if img.ColorSpace, err = format.ParseColorSpace(colorSpace); err != nil {
		return nil, err
	}

	if v, ok := attr(se, "pixelStorage"); ok {
		if img.PixelStorage, err = format.ParsePixelStorage(v); err != nil {
			return nil, err
		}
	}

	if v, ok := attr(se, "bounds"); ok {
		bounds, err := unit.ParseBounds(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrMalformedXML, err)
		}
		img.Bounds = &bounds
	}

	if v, ok := attr(se, "offset"); ok {
		if img.Offset, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("%w: offset %q", errs.ErrMalformedXML, v)
		}
	}

	img.ImageType, _ = attr(se, "imageType")
	img.Orientation, _ = attr(se, "orientation")
	img.ID, _ = attr(se, "id")
	img.UUID, _ = attr(se, "uuid")

	battrs, err := parseBlockAttrs(se)
	if err != nil {
		return nil, err
	}

	var (
		inlineText string
		dataText   string
		dataEnc    = format.EncodingBase64
		sawData    bool
	)

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.CharData:
			inlineText += string(t)

		case xml.StartElement:
			switch t.Name.Local {
			case "Data":
				if v, ok := attr(t, "encoding"); ok {
					if dataEnc, err = format.ParseBlockEncoding(v); err != nil {
						return nil, err
					}
				}
				if dataText, err = elementText(dec); err != nil {
					return nil, err
				}
				sawData = true

			case "Property":
				prop, err := parseProperty(dec, t)
				if err != nil {
					return nil, err
				}
				img.Properties = append(img.Properties, prop)

			default:
				el, known, err := parseCoreElement(dec, t)
				if err != nil {
					return nil, err
				}
				if known {
					img.Elements = append(img.Elements, el)
				}
			}

		case xml.EndElement:
			img.Block, err = assembleBlock(battrs, inlineText, dataText, dataEnc, sawData)
			if err != nil {
				return nil, fmt.Errorf("image %q: %w", img.ID, err)
			}
			if img.Block == nil {
				return nil, fmt.Errorf("%w: image %q", errs.ErrMissingPixelData, img.ID)
			}

			return img, nil
		}
	}
}

// blockAttrs carries the data block attributes shared by every element that
// can own a block.
type blockAttrs struct {
	location    string
	hasLocation bool
	byteOrder   format.ByteOrder
	compression *format.Compression
	checksum    *format.Checksum
}

func parseBlockAttrs(se xml.StartElement) (blockAttrs, error) {
	attrs := blockAttrs{byteOrder: format.LittleEndian}

	attrs.location, attrs.hasLocation = attr(se, "location")

	if v, ok := attr(se, "byteOrder"); ok {
		order, err := format.ParseByteOrder(v)
		if err != nil {
			return attrs, err
		}
		attrs.byteOrder = order
	}

	if v, ok := attr(se, "compression"); ok {
		comp, err := format.ParseCompression(v)
		if err != nil {
			return attrs, err
		}
		attrs.compression = &comp
	}

	if v, ok := attr(se, "checksum"); ok {
		sum, err := format.ParseChecksum(v)
		if err != nil {
			return attrs, err
		}
		attrs.checksum = &sum
	}

	return attrs, nil
}

// assembleBlock builds the data block from the location attribute and any
// inline or embedded payload text. Returns nil when the element declares no
// block at all.
func assembleBlock(attrs blockAttrs, inlineText, dataText string, dataEnc format.BlockEncoding, sawData bool) (*unit.DataBlock, error) {
	var blk *unit.DataBlock

	if attrs.hasLocation {
		var err error
		blk, err = unit.ParseLocation(attrs.location)
		if err != nil {
			return nil, err
		}
	} else if sawData {
		blk = &unit.DataBlock{Kind: unit.BlockEmbedded, Encoding: dataEnc, ByteOrder: format.LittleEndian}
	} else {
		return nil, nil
	}

	blk.ByteOrder = attrs.byteOrder
	blk.Compression = attrs.compression
	blk.Checksum = attrs.checksum

	switch blk.Kind {
	case unit.BlockInline:
		raw, err := unit.DecodeText(inlineText, blk.Encoding)
		if err != nil {
			return nil, err
		}
		blk.Raw = raw

	case unit.BlockEmbedded:
		if !sawData {
			return nil, fmt.Errorf("%w: embedded block without Data child", errs.ErrInvalidLocation)
		}

		blk.Encoding = dataEnc
		raw, err := unit.DecodeText(dataText, dataEnc)
		if err != nil {
			return nil, err
		}
		blk.Raw = raw
	}

	return blk, nil
}

func parseFloatList(s string, n int) ([]float64, error) {
	fields := strings.Split(s, ":")
	if len(fields) != n {
		return nil, fmt.Errorf("expected %d colon-separated values, got %q", n, s)
	}

	out := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", f, err)
		}
		out[i] = v
	}

	return out, nil
}

// skip consumes the remainder of the current element.
func skip(dec *xml.Decoder) error {
	if err := dec.Skip(); err != nil && err != io.EOF {
		return fmt.Errorf("%w: %w", errs.ErrMalformedXML, err)
	}

	return nil
}
