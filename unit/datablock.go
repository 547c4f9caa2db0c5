package unit

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/xisf/errs"
	"github.com/arloliu/xisf/format"
)

// BlockKind discriminates the four data block storage shapes.
type BlockKind uint8

const (
	// BlockInline stores the encoded payload in the text content of the
	// owning element, with the encoding named in the location attribute.
	BlockInline BlockKind = 0x1
	// BlockEmbedded stores the encoded payload in a Data child element.
	BlockEmbedded BlockKind = 0x2
	// BlockAttached stores the payload inside the monolithic file at a
	// declared absolute offset.
	BlockAttached BlockKind = 0x3
	// BlockExternal stores the payload in an external resource named by a
	// URI or header-relative path.
	BlockExternal BlockKind = 0x4
)

func (k BlockKind) String() string {
	switch k {
	case BlockInline:
		return "inline"
	case BlockEmbedded:
		return "embedded"
	case BlockAttached:
		return "attachment"
	case BlockExternal:
		return "external"
	default:
		return "Unknown"
	}
}

// DataBlock is the binary payload of an image, thumbnail or ICC profile, in
// one of four storage shapes. Property values do not use data blocks.
//
// Raw holds the bytes exactly as stored (after any compression), Data holds
// the materialized uncompressed payload. Inline and embedded blocks have Raw
// populated at parse time; attached and external blocks are materialized on
// demand by the block processor.
type DataBlock struct {
	Kind     BlockKind
	Encoding format.BlockEncoding // inline and embedded text encoding

	// Position and Size locate attached payloads in the monolithic file and,
	// optionally, windowed external payloads.
	Position uint64
	Size     uint64

	// URI names the external resource. PathRef marks the header-relative
	// path form, resolved against the header file's directory.
	URI     string
	PathRef bool

	// IndexID is the unique id of the payload in a data blocks file.
	// Zero means not indexed.
	IndexID uint64

	ByteOrder   format.ByteOrder
	Compression *format.Compression
	Checksum    *format.Checksum

	Raw  []byte
	Data []byte
}

// NewInlineBlock creates an inline block holding the given payload.
func NewInlineBlock(payload []byte) *DataBlock {
	return &DataBlock{
		Kind:      BlockInline,
		Encoding:  format.EncodingBase64,
		ByteOrder: format.LittleEndian,
		Data:      payload,
	}
}

// NewAttachedBlock creates an attached block holding the given payload.
// Its position is assigned by the layout pass on write.
func NewAttachedBlock(payload []byte) *DataBlock {
	return &DataBlock{
		Kind:      BlockAttached,
		ByteOrder: format.LittleEndian,
		Data:      payload,
	}
}

// StoredBytes returns the on-wire bytes of the block: Raw when it is set
// (by parsing or by the write pipeline), Data otherwise.
func (b *DataBlock) StoredBytes() []byte {
	if b.Raw != nil {
		return b.Raw
	}

	return b.Data
}

// LocationAttribute serializes the block's location attribute value.
func (b *DataBlock) LocationAttribute() string {
	switch b.Kind {
	case BlockInline:
		return "inline:" + b.Encoding.String()
	case BlockEmbedded:
		return "embedded"
	case BlockAttached:
		return "attachment:" + strconv.FormatUint(b.Position, 10) + ":" + strconv.FormatUint(b.Size, 10)
	case BlockExternal:
		wrapper := "url"
		if b.PathRef {
			wrapper = "path"
		}
		s := wrapper + "(" + b.URI + ")"
		if b.Size > 0 {
			s += ":" + strconv.FormatUint(b.Position, 10) + ":" + strconv.FormatUint(b.Size, 10)
		}

		return s
	default:
		return ""
	}
}

// ParseLocation parses a location attribute value into a block skeleton.
// The caller fills byte order, compression, checksum and payload fields.
func ParseLocation(s string) (*DataBlock, error) {
	blk := &DataBlock{ByteOrder: format.LittleEndian, Encoding: format.EncodingBase64}

	switch {
	case strings.HasPrefix(s, "inline:"):
		enc, err := format.ParseBlockEncoding(strings.TrimPrefix(s, "inline:"))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrInvalidLocation, err)
		}

		blk.Kind = BlockInline
		blk.Encoding = enc

	case s == "embedded":
		blk.Kind = BlockEmbedded

	case strings.HasPrefix(s, "attachment:"):
		fields := strings.Split(s, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: %q", errs.ErrInvalidLocation, s)
		}

		pos, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: attachment position %q", errs.ErrInvalidLocation, fields[1])
		}

		size, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: attachment size %q", errs.ErrInvalidLocation, fields[2])
		}

		blk.Kind = BlockAttached
		blk.Position = pos
		blk.Size = size

	case strings.HasPrefix(s, "url(") || strings.HasPrefix(s, "path("):
		if err := parseExternalLocation(blk, s); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: %q", errs.ErrInvalidLocation, s)
	}

	return blk, nil
}

func parseExternalLocation(blk *DataBlock, s string) error {
	blk.Kind = BlockExternal
	blk.PathRef = strings.HasPrefix(s, "path(")

	open := strings.IndexByte(s, '(')
	end := strings.LastIndexByte(s, ')')
	if end < open {
		return fmt.Errorf("%w: %q", errs.ErrInvalidLocation, s)
	}

	blk.URI = s[open+1 : end]

	rest := s[end+1:]
	if rest == "" {
		return nil
	}

	fields := strings.Split(strings.TrimPrefix(rest, ":"), ":")
	if len(fields) != 2 {
		return fmt.Errorf("%w: external window %q", errs.ErrInvalidLocation, rest)
	}

	pos, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: external position %q", errs.ErrInvalidLocation, fields[0])
	}

	size, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: external size %q", errs.ErrInvalidLocation, fields[1])
	}

	blk.Position = pos
	blk.Size = size

	return nil
}

// EncodeText serializes payload bytes to the block's text encoding.
// Hex output is lowercase.
func EncodeText(data []byte, enc format.BlockEncoding) string {
	if enc == format.EncodingHex {
		return hex.EncodeToString(data)
	}

	return base64.StdEncoding.EncodeToString(data)
}

// DecodeText parses inline or embedded text content. Whitespace is ignored
// for base64 input; hex digits are accepted in either case.
func DecodeText(text string, enc format.BlockEncoding) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, text)

	var (
		out []byte
		err error
	)
	if enc == format.EncodingHex {
		out, err = hex.DecodeString(strings.ToLower(clean))
	} else {
		out, err = base64.StdEncoding.DecodeString(clean)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s payload: %w", errs.ErrCorruptBlock, enc, err)
	}

	return out, nil
}
