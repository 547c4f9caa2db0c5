package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/xisf/errs"
)

// SubBlock describes one compressed sub-block of a split payload.
// Large payloads may be split so that each sub-block stays under the
// codec's single-block size limit.
type SubBlock struct {
	CompressedSize   uint64
	UncompressedSize uint64
}

// Compression describes the compression applied to a data block, as carried
// by the compression attribute of the owning XML element.
//
// Wire form: "<codec>:<uncompressed_size>[:<item_size>][:<csize,usize>...]".
// Sub-block fields carry a comma, which distinguishes them from the item
// size field.
type Compression struct {
	Codec            CodecType
	UncompressedSize uint64
	// ItemSize is the byte width used by the shuffle preconditioner.
	// Mandatory (and >= 2) for the +sh codec variants, zero otherwise.
	ItemSize int
	// SubBlocks is empty for single-block payloads.
	SubBlocks []SubBlock
}

// Attribute serializes the compression descriptor to its attribute wire form.
func (c Compression) Attribute() string {
	var sb strings.Builder
	sb.WriteString(c.Codec.String())
	sb.WriteByte(':')
	sb.WriteString(strconv.FormatUint(c.UncompressedSize, 10))

	if c.Codec.Shuffled() {
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(c.ItemSize))
	}

	for _, blk := range c.SubBlocks {
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatUint(blk.CompressedSize, 10))
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatUint(blk.UncompressedSize, 10))
	}

	return sb.String()
}

// ParseCompression parses a compression attribute value.
//
// Returns:
//   - Compression: Parsed descriptor
//   - error: ErrUnsupportedCodec for unknown codec identifiers, or a wrapped
//     syntax error for malformed fields
func ParseCompression(s string) (Compression, error) {
	fields := strings.Split(s, ":")
	if len(fields) < 2 {
		return Compression{}, fmt.Errorf("%w: compression attribute %q", errs.ErrUnknownEnumValue, s)
	}

	codec, err := ParseCodecType(fields[0])
	if err != nil {
		return Compression{}, err
	}

	size, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return Compression{}, fmt.Errorf("invalid uncompressed size %q: %w", fields[1], err)
	}

	comp := Compression{Codec: codec, UncompressedSize: size}

	rest := fields[2:]
	if codec.Shuffled() {
		if len(rest) == 0 {
			return Compression{}, fmt.Errorf("%w: codec %s requires an item size", errs.ErrInvalidItemSize, codec)
		}

		itemSize, err := strconv.Atoi(rest[0])
		if err != nil || itemSize < 2 {
			return Compression{}, fmt.Errorf("%w: %q", errs.ErrInvalidItemSize, rest[0])
		}

		comp.ItemSize = itemSize
		rest = rest[1:]
	}

	for _, field := range rest {
		csize, usize, ok := strings.Cut(field, ",")
		if !ok {
			return Compression{}, fmt.Errorf("invalid sub-block field %q in compression attribute %q", field, s)
		}

		cval, err := strconv.ParseUint(csize, 10, 64)
		if err != nil {
			return Compression{}, fmt.Errorf("invalid sub-block size %q: %w", csize, err)
		}

		uval, err := strconv.ParseUint(usize, 10, 64)
		if err != nil {
			return Compression{}, fmt.Errorf("invalid sub-block size %q: %w", usize, err)
		}

		comp.SubBlocks = append(comp.SubBlocks, SubBlock{CompressedSize: cval, UncompressedSize: uval})
	}

	return comp, nil
}
