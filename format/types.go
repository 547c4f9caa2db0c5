package format

import (
	"fmt"

	"github.com/arloliu/xisf/errs"
)

type (
	SampleFormat  uint8
	ColorSpace    uint8
	PixelStorage  uint8
	ByteOrder     uint8
	CodecType     uint8
	ChecksumType  uint8
	BlockEncoding uint8
)

const (
	SampleUInt8     SampleFormat = 0x1 // 8-bit unsigned integer samples
	SampleUInt16    SampleFormat = 0x2 // 16-bit unsigned integer samples
	SampleUInt32    SampleFormat = 0x3 // 32-bit unsigned integer samples
	SampleUInt64    SampleFormat = 0x4 // 64-bit unsigned integer samples
	SampleFloat32   SampleFormat = 0x5 // IEEE 754 single precision samples
	SampleFloat64   SampleFormat = 0x6 // IEEE 754 double precision samples
	SampleComplex32 SampleFormat = 0x7 // complex of two Float32 components
	SampleComplex64 SampleFormat = 0x8 // complex of two Float64 components

	ColorSpaceGray   ColorSpace = 0x1
	ColorSpaceRGB    ColorSpace = 0x2
	ColorSpaceCIELab ColorSpace = 0x3

	StoragePlanar PixelStorage = 0x1 // channel planes stored sequentially (default)
	StorageNormal PixelStorage = 0x2 // channel samples interleaved per pixel

	LittleEndian ByteOrder = 0x1 // default byte order
	BigEndian    ByteOrder = 0x2

	CodecNone    CodecType = 0x0 // no compression attribute
	CodecZlib    CodecType = 0x1
	CodecZlibSh  CodecType = 0x2
	CodecLZ4     CodecType = 0x3
	CodecLZ4Sh   CodecType = 0x4
	CodecLZ4HC   CodecType = 0x5
	CodecLZ4HCSh CodecType = 0x6
	CodecZstd    CodecType = 0x7
	CodecZstdSh  CodecType = 0x8

	ChecksumSHA1    ChecksumType = 0x1
	ChecksumSHA256  ChecksumType = 0x2
	ChecksumSHA512  ChecksumType = 0x3
	ChecksumSHA3256 ChecksumType = 0x4 // recognized, no built-in provider
	ChecksumSHA3512 ChecksumType = 0x5 // recognized, no built-in provider

	EncodingBase64 BlockEncoding = 0x1 // default text encoding
	EncodingHex    BlockEncoding = 0x2
)

// ItemSize returns the byte width of one sample of the format.
func (f SampleFormat) ItemSize() int {
	switch f {
	case SampleUInt8:
		return 1
	case SampleUInt16:
		return 2
	case SampleUInt32, SampleFloat32:
		return 4
	case SampleUInt64, SampleFloat64, SampleComplex32:
		return 8
	case SampleComplex64:
		return 16
	default:
		return 0
	}
}

// RequiresBounds reports whether images of this format must declare sample bounds.
// Floating point and complex formats have no implicit representable range.
func (f SampleFormat) RequiresBounds() bool {
	switch f {
	case SampleFloat32, SampleFloat64, SampleComplex32, SampleComplex64:
		return true
	default:
		return false
	}
}

func (f SampleFormat) String() string {
	switch f {
	case SampleUInt8:
		return "UInt8"
	case SampleUInt16:
		return "UInt16"
	case SampleUInt32:
		return "UInt32"
	case SampleUInt64:
		return "UInt64"
	case SampleFloat32:
		return "Float32"
	case SampleFloat64:
		return "Float64"
	case SampleComplex32:
		return "Complex32"
	case SampleComplex64:
		return "Complex64"
	default:
		return "Unknown"
	}
}

// ParseSampleFormat parses the sampleFormat attribute value.
func ParseSampleFormat(s string) (SampleFormat, error) {
	switch s {
	case "UInt8":
		return SampleUInt8, nil
	case "UInt16":
		return SampleUInt16, nil
	case "UInt32":
		return SampleUInt32, nil
	case "UInt64":
		return SampleUInt64, nil
	case "Float32":
		return SampleFloat32, nil
	case "Float64":
		return SampleFloat64, nil
	case "Complex32":
		return SampleComplex32, nil
	case "Complex64":
		return SampleComplex64, nil
	default:
		return 0, fmt.Errorf("%w: sampleFormat %q", errs.ErrUnknownEnumValue, s)
	}
}

func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceGray:
		return "Gray"
	case ColorSpaceRGB:
		return "RGB"
	case ColorSpaceCIELab:
		return "CIELab"
	default:
		return "Unknown"
	}
}

// ParseColorSpace parses the colorSpace attribute value.
func ParseColorSpace(s string) (ColorSpace, error) {
	switch s {
	case "Gray":
		return ColorSpaceGray, nil
	case "RGB":
		return ColorSpaceRGB, nil
	case "CIELab":
		return ColorSpaceCIELab, nil
	default:
		return 0, fmt.Errorf("%w: colorSpace %q", errs.ErrUnknownEnumValue, s)
	}
}

func (p PixelStorage) String() string {
	switch p {
	case StoragePlanar:
		return "Planar"
	case StorageNormal:
		return "Normal"
	default:
		return "Unknown"
	}
}

// ParsePixelStorage parses the pixelStorage attribute value.
func ParsePixelStorage(s string) (PixelStorage, error) {
	switch s {
	case "Planar":
		return StoragePlanar, nil
	case "Normal":
		return StorageNormal, nil
	default:
		return 0, fmt.Errorf("%w: pixelStorage %q", errs.ErrUnknownEnumValue, s)
	}
}

func (b ByteOrder) String() string {
	switch b {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	default:
		return "Unknown"
	}
}

// ParseByteOrder parses the byteOrder attribute value.
func ParseByteOrder(s string) (ByteOrder, error) {
	switch s {
	case "little":
		return LittleEndian, nil
	case "big":
		return BigEndian, nil
	default:
		return 0, fmt.Errorf("%w: byteOrder %q", errs.ErrUnknownEnumValue, s)
	}
}

// Shuffled reports whether the codec applies the byte shuffle preconditioner.
func (c CodecType) Shuffled() bool {
	switch c {
	case CodecZlibSh, CodecLZ4Sh, CodecLZ4HCSh, CodecZstdSh:
		return true
	default:
		return false
	}
}

// Base returns the codec without its shuffle variant.
func (c CodecType) Base() CodecType {
	switch c {
	case CodecZlibSh:
		return CodecZlib
	case CodecLZ4Sh:
		return CodecLZ4
	case CodecLZ4HCSh:
		return CodecLZ4HC
	case CodecZstdSh:
		return CodecZstd
	default:
		return c
	}
}

// WithShuffle returns the shuffled variant of the codec.
func (c CodecType) WithShuffle() CodecType {
	switch c {
	case CodecZlib:
		return CodecZlibSh
	case CodecLZ4:
		return CodecLZ4Sh
	case CodecLZ4HC:
		return CodecLZ4HCSh
	case CodecZstd:
		return CodecZstdSh
	default:
		return c
	}
}

func (c CodecType) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecZlib:
		return "zlib"
	case CodecZlibSh:
		return "zlib+sh"
	case CodecLZ4:
		return "lz4"
	case CodecLZ4Sh:
		return "lz4+sh"
	case CodecLZ4HC:
		return "lz4hc"
	case CodecLZ4HCSh:
		return "lz4hc+sh"
	case CodecZstd:
		return "zstd"
	case CodecZstdSh:
		return "zstd+sh"
	default:
		return "Unknown"
	}
}

// ParseCodecType parses a codec identifier from the compression attribute.
func ParseCodecType(s string) (CodecType, error) {
	switch s {
	case "zlib":
		return CodecZlib, nil
	case "zlib+sh":
		return CodecZlibSh, nil
	case "lz4":
		return CodecLZ4, nil
	case "lz4+sh":
		return CodecLZ4Sh, nil
	case "lz4hc":
		return CodecLZ4HC, nil
	case "lz4hc+sh":
		return CodecLZ4HCSh, nil
	case "zstd":
		return CodecZstd, nil
	case "zstd+sh":
		return CodecZstdSh, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrUnsupportedCodec, s)
	}
}

// DigestSize returns the digest length in bytes, or 0 for unknown algorithms.
func (c ChecksumType) DigestSize() int {
	switch c {
	case ChecksumSHA1:
		return 20
	case ChecksumSHA256, ChecksumSHA3256:
		return 32
	case ChecksumSHA512, ChecksumSHA3512:
		return 64
	default:
		return 0
	}
}

func (c ChecksumType) String() string {
	switch c {
	case ChecksumSHA1:
		return "sha-1"
	case ChecksumSHA256:
		return "sha-256"
	case ChecksumSHA512:
		return "sha-512"
	case ChecksumSHA3256:
		return "sha3-256"
	case ChecksumSHA3512:
		return "sha3-512"
	default:
		return "Unknown"
	}
}

// ParseChecksumType parses an algorithm identifier from the checksum attribute.
func ParseChecksumType(s string) (ChecksumType, error) {
	switch s {
	case "sha-1":
		return ChecksumSHA1, nil
	case "sha-256":
		return ChecksumSHA256, nil
	case "sha-512":
		return ChecksumSHA512, nil
	case "sha3-256":
		return ChecksumSHA3256, nil
	case "sha3-512":
		return ChecksumSHA3512, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrUnsupportedAlgorithm, s)
	}
}

func (e BlockEncoding) String() string {
	switch e {
	case EncodingBase64:
		return "base64"
	case EncodingHex:
		return "hex"
	default:
		return "Unknown"
	}
}

// ParseBlockEncoding parses an inline or embedded text encoding identifier.
func ParseBlockEncoding(s string) (BlockEncoding, error) {
	switch s {
	case "base64":
		return EncodingBase64, nil
	case "hex":
		return EncodingHex, nil
	default:
		return 0, fmt.Errorf("%w: encoding %q", errs.ErrUnknownEnumValue, s)
	}
}
