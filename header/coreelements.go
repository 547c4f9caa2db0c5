package header

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/arloliu/xisf/errs"
	"github.com/arloliu/xisf/format"
	"github.com/arloliu/xisf/unit"
)

// parseMetadata decodes the Metadata element: a bag of Property children
// whose well-known ids map onto the Metadata record.
func parseMetadata(dec *xml.Decoder, _ xml.StartElement, meta *unit.Metadata) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %w", errs.ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "Property" {
				if err := skip(dec); err != nil {
					return err
				}
				continue
			}

			prop, err := parseProperty(dec, t)
			if err != nil {
				return err
			}

			switch prop.ID {
			case unit.MetaCreationTime:
				if ts, ok := prop.Time(); ok {
					meta.CreationTime = ts
				}
			case unit.MetaCreatorApplication:
				meta.CreatorApplication = prop.Raw
			case unit.MetaCreatorModule:
				meta.CreatorModule = prop.Raw
			case unit.MetaCreatorOS:
				meta.CreatorOS = prop.Raw
			case unit.MetaAuthors:
				meta.Authors = prop.Raw
			case unit.MetaTitle:
				meta.Title = prop.Raw
			case unit.MetaDescription:
				meta.Description = prop.Raw
			case unit.MetaCopyright:
				meta.Copyright = prop.Raw
			default:
				meta.Extra = append(meta.Extra, prop)
			}

		case xml.EndElement:
			return nil
		}
	}
}

// parseCoreElement decodes one core element by local name. The boolean
// result is false for unrecognized elements, which are skipped.
func parseCoreElement(dec *xml.Decoder, se xml.StartElement) (unit.CoreElement, bool, error) {
	uid, _ := attr(se, "uid")

	switch se.Name.Local {
	case "Reference":
		ref, ok := attr(se, "ref")
		if !ok {
			return nil, false, fmt.Errorf("%w: Reference ref", errs.ErrMissingRequiredAttribute)
		}
		if err := skip(dec); err != nil {
			return nil, false, err
		}

		return unit.Reference{UID: uid, Ref: ref}, true, nil

	case "Resolution":
		el := unit.Resolution{UID: uid, Unit: "inch"}
		var err error
		if v, ok := attr(se, "horizontal"); ok {
			if el.Horizontal, err = strconv.ParseFloat(v, 64); err != nil {
				return nil, false, fmt.Errorf("%w: Resolution horizontal %q", errs.ErrMalformedXML, v)
			}
		}
		if v, ok := attr(se, "vertical"); ok {
			if el.Vertical, err = strconv.ParseFloat(v, 64); err != nil {
				return nil, false, fmt.Errorf("%w: Resolution vertical %q", errs.ErrMalformedXML, v)
			}
		}
		if v, ok := attr(se, "unit"); ok {
			el.Unit = v
		}
		if err := skip(dec); err != nil {
			return nil, false, err
		}

		return el, true, nil

	case "FITSKeyword":
		name, ok := attr(se, "name")
		if !ok {
			return nil, false, fmt.Errorf("%w: FITSKeyword name", errs.ErrMissingRequiredAttribute)
		}
		value, _ := attr(se, "value")
		comment, _ := attr(se, "comment")
		if err := skip(dec); err != nil {
			return nil, false, err
		}

		return unit.FITSKeyword{UID: uid, Name: name, Value: value, Comment: comment}, true, nil

	case "ColorFilterArray":
		el := unit.ColorFilterArray{UID: uid}
		pattern, ok := attr(se, "pattern")
		if !ok {
			return nil, false, fmt.Errorf("%w: ColorFilterArray pattern", errs.ErrMissingRequiredAttribute)
		}
		el.Pattern = pattern

		var err error
		if v, ok := attr(se, "width"); ok {
			if el.Width, err = strconv.Atoi(v); err != nil {
				return nil, false, fmt.Errorf("%w: ColorFilterArray width %q", errs.ErrMalformedXML, v)
			}
		}
		if v, ok := attr(se, "height"); ok {
			if el.Height, err = strconv.Atoi(v); err != nil {
				return nil, false, fmt.Errorf("%w: ColorFilterArray height %q", errs.ErrMalformedXML, v)
			}
		}
		el.Name, _ = attr(se, "name")
		if err := skip(dec); err != nil {
			return nil, false, err
		}

		return el, true, nil

	case "ICCProfile":
		return parseICCProfile(dec, se, uid)

	case "RGBWorkingSpace":
		el := unit.RGBWorkingSpace{UID: uid}
		var err error
		if v, ok := attr(se, "gamma"); ok {
			if el.Gamma, err = strconv.ParseFloat(v, 64); err != nil {
				return nil, false, fmt.Errorf("%w: RGBWorkingSpace gamma %q", errs.ErrMalformedXML, v)
			}
		}

		for _, f := range []struct {
			attr string
			dst  *[3]float64
		}{
			{"x", &el.ChromaticityX},
			{"y", &el.ChromaticityY},
			{"Y", &el.Luminance},
		} {
			if v, ok := attr(se, f.attr); ok {
				vals, err := parseFloatList(v, 3)
				if err != nil {
					return nil, false, fmt.Errorf("%w: RGBWorkingSpace %s: %w", errs.ErrMalformedXML, f.attr, err)
				}
				copy(f.dst[:], vals)
			}
		}

		el.Name, _ = attr(se, "name")
		if err := skip(dec); err != nil {
			return nil, false, err
		}

		return el, true, nil

	case "DisplayFunction":
		el := unit.DisplayFunction{UID: uid}
		for _, f := range []struct {
			attr string
			dst  *[4]float64
		}{
			{"m", &el.Midtones},
			{"s", &el.Shadows},
			{"h", &el.Highlights},
			{"r", &el.Expansion},
		} {
			if v, ok := attr(se, f.attr); ok {
				vals, err := parseFloatList(v, 4)
				if err != nil {
					return nil, false, fmt.Errorf("%w: DisplayFunction %s: %w", errs.ErrMalformedXML, f.attr, err)
				}
				copy(f.dst[:], vals)
			}
		}

		el.Name, _ = attr(se, "name")
		if err := skip(dec); err != nil {
			return nil, false, err
		}

		return el, true, nil

	case "Thumbnail":
		return parseThumbnail(dec, se, uid)

	default:
		if err := skip(dec); err != nil {
			return nil, false, err
		}

		return nil, false, nil
	}
}

func parseICCProfile(dec *xml.Decoder, se xml.StartElement, uid string) (unit.CoreElement, bool, error) {
	attrs, err := parseBlockAttrs(se)
	if err != nil {
		return nil, false, err
	}

	inlineText, dataText, dataEnc, sawData, err := collectBlockContent(dec)
	if err != nil {
		return nil, false, err
	}

	blk, err := assembleBlock(attrs, inlineText, dataText, dataEnc, sawData)
	if err != nil {
		return nil, false, fmt.Errorf("ICCProfile: %w", err)
	}
	if blk == nil {
		return nil, false, fmt.Errorf("%w: ICCProfile location", errs.ErrMissingRequiredAttribute)
	}

	return unit.ICCProfile{UID: uid, Block: blk}, true, nil
}

func parseThumbnail(dec *xml.Decoder, se xml.StartElement, uid string) (unit.CoreElement, bool, error) {
	el := unit.Thumbnail{UID: uid, PixelStorage: format.StoragePlanar}

	geometry, ok := attr(se, "geometry")
	if !ok {
		return nil, false, fmt.Errorf("%w: Thumbnail geometry", errs.ErrMissingRequiredAttribute)
	}

	var err error
	if el.Geometry, err = unit.ParseGeometry(geometry); err != nil {
		return nil, false, fmt.Errorf("%w: %w", errs.ErrMalformedXML, err)
	}

	sampleFormat, ok := attr(se, "sampleFormat")
	if !ok {
		return nil, false, fmt.Errorf("%w: Thumbnail sampleFormat", errs.ErrMissingRequiredAttribute)
	}
	if el.SampleFormat, err = format.ParseSampleFormat(sampleFormat); err != nil {
		return nil, false, err
	}

	colorSpace, ok := attr(se, "colorSpace")
	if !ok {
		return nil, false, fmt.Errorf("%w: Thumbnail colorSpace", errs.ErrMissingRequiredAttribute)
	}
	if el.ColorSpace, err = format.ParseColorSpace(colorSpace); err != nil {
		return nil, false, err
	}

	if v, ok := attr(se, "pixelStorage"); ok {
		if el.PixelStorage, err = format.ParsePixelStorage(v); err != nil {
			return nil, false, err
		}
	}

	attrs, err := parseBlockAttrs(se)
	if err != nil {
		return nil, false, err
	}

	inlineText, dataText, dataEnc, sawData, err := collectBlockContent(dec)
	if err != nil {
		return nil, false, err
	}

	if el.Block, err = assembleBlock(attrs, inlineText, dataText, dataEnc, sawData); err != nil {
		return nil, false, fmt.Errorf("Thumbnail: %w", err)
	}
	if el.Block == nil {
		return nil, false, fmt.Errorf("%w: Thumbnail", errs.ErrMissingPixelData)
	}

	return el, true, nil
}

// collectBlockContent gathers inline text and an optional Data child from a
// block-bearing element, consuming it up to its end tag.
func collectBlockContent(dec *xml.Decoder) (inlineText, dataText string, dataEnc format.BlockEncoding, sawData bool, err error) {
	dataEnc = format.EncodingBase64

	for {
		tok, err := dec.Token()
		if err != nil {
			return "", "", dataEnc, false, fmt.Errorf("%w: %w", errs.ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.CharData:
			inlineText += string(t)

		case xml.StartElement:
			if t.Name.Local != "Data" {
				if err := skip(dec); err != nil {
					return "", "", dataEnc, false, err
				}
				continue
			}

			if v, ok := attr(t, "encoding"); ok {
				if dataEnc, err = format.ParseBlockEncoding(v); err != nil {
					return "", "", dataEnc, false, err
				}
			}
			if dataText, err = elementText(dec); err != nil {
				return "", "", dataEnc, false, err
			}
			sawData = true

		case xml.EndElement:
			return inlineText, dataText, dataEnc, sawData, nil
		}
	}
}
