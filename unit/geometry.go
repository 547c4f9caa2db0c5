package unit

import (
	"fmt"
	"strconv"
	"strings"
)

// Geometry is the dimensional shape of a pixel array: an ordered sequence of
// positive dimensions (width first) plus a positive channel count.
//
// Wire form: colon-separated positive integers where the last field is the
// channel count, e.g. "1024:1024:3".
type Geometry struct {
	Dimensions []uint64
	Channels   uint64
}

// SampleCount returns the total number of samples across all channels.
func (g Geometry) SampleCount() uint64 {
	count := g.Channels
	for _, d := range g.Dimensions {
		count *= d
	}

	return count
}

// String serializes the geometry to its attribute wire form.
func (g Geometry) String() string {
	fields := make([]string, 0, len(g.Dimensions)+1)
	for _, d := range g.Dimensions {
		fields = append(fields, strconv.FormatUint(d, 10))
	}
	fields = append(fields, strconv.FormatUint(g.Channels, 10))

	return strings.Join(fields, ":")
}

// ParseGeometry parses a geometry attribute value. At least two fields are
// required and every field must be a positive integer.
func ParseGeometry(s string) (Geometry, error) {
	fields := strings.Split(s, ":")
	if len(fields) < 2 {
		return Geometry{}, fmt.Errorf("geometry %q needs at least one dimension and a channel count", s)
	}

	values := make([]uint64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil || v == 0 {
			return Geometry{}, fmt.Errorf("geometry %q: field %q is not a positive integer", s, f)
		}
		values[i] = v
	}

	return Geometry{Dimensions: values[:len(values)-1], Channels: values[len(values)-1]}, nil
}
