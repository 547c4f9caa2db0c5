// Package endian provides byte order utilities for binary encoding and decoding.
//
// It combines the ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a unified EndianEngine interface, and adds Convert, the item-wise byte
// swap used to normalize pixel and property payloads between the declared
// byte order of a data block and the order a consumer wants.
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/xisf/errs"
	"github.com/arloliu/xisf/format"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from
// encoding/binary into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
// Little endian is the default byte order of XISF data blocks and the
// mandated order for all file framing integers.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// Engine returns the engine matching a declared block byte order.
func Engine(order format.ByteOrder) EndianEngine {
	if order == format.BigEndian {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// Convert normalizes data between two byte orders by swapping the bytes of
// each fixed-size item in place, and returns the same slice.
//
// If from == to or itemSize == 1 the input is returned untouched. Otherwise
// itemSize must be one of 2, 4, 8 or 16 and len(data) must be a whole number
// of items.
//
// Returns:
//   - []byte: The input slice, swapped in place when a conversion applied
//   - error: ErrInvalidItemSize for unsupported item sizes or ragged lengths
func Convert(data []byte, from, to format.ByteOrder, itemSize int) ([]byte, error) {
	if from == to || itemSize == 1 {
		return data, nil
	}

	switch itemSize {
	case 2, 4, 8, 16:
	default:
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidItemSize, itemSize)
	}

	if len(data)%itemSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of %d-byte items",
			errs.ErrInvalidItemSize, len(data), itemSize)
	}

	for base := 0; base < len(data); base += itemSize {
		for i, j := base, base+itemSize-1; i < j; i, j = i+1, j-1 {
			data[i], data[j] = data[j], data[i]
		}
	}

	return data, nil
}
