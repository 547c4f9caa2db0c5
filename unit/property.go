package unit

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PropertyType is the declared type of a property, in attribute wire form.
type PropertyType string

// Scalar and special property types. Vector and matrix types are open-ended
// ("F64Vector", "I32Matrix", ...) and are matched by suffix.
const (
	PropBoolean   PropertyType = "Boolean"
	PropInt8      PropertyType = "Int8"
	PropInt16     PropertyType = "Int16"
	PropInt32     PropertyType = "Int32"
	PropInt64     PropertyType = "Int64"
	PropUInt8     PropertyType = "UInt8"
	PropUInt16    PropertyType = "UInt16"
	PropUInt32    PropertyType = "UInt32"
	PropUInt64    PropertyType = "UInt64"
	PropFloat32   PropertyType = "Float32"
	PropFloat64   PropertyType = "Float64"
	PropComplex32 PropertyType = "Complex32"
	PropComplex64 PropertyType = "Complex64"
	PropString    PropertyType = "String"
	PropTimePoint PropertyType = "TimePoint"
	PropTable     PropertyType = "Table"
)

// timePointLayout is the TimePoint emit format.
const timePointLayout = "2006-01-02T15:04:05.000-07:00"

// timePointParseLayouts are tried in order on parse; writers differ in
// fraction and offset detail.
var timePointParseLayouts = []string{
	timePointLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05.000Z07:00",
}

// IsVector reports whether the type is a vector type.
func (t PropertyType) IsVector() bool {
	return strings.HasSuffix(string(t), "Vector")
}

// IsMatrix reports whether the type is a matrix type.
func (t PropertyType) IsMatrix() bool {
	return strings.HasSuffix(string(t), "Matrix")
}

// IsScalar reports whether the type carries its value in the value attribute.
func (t PropertyType) IsScalar() bool {
	switch t {
	case PropBoolean,
		PropInt8, PropInt16, PropInt32, PropInt64,
		PropUInt8, PropUInt16, PropUInt32, PropUInt64,
		PropFloat32, PropFloat64,
		PropComplex32, PropComplex64,
		PropTimePoint:
		return true
	default:
		return false
	}
}

// Known reports whether the type is part of the property type grammar.
func (t PropertyType) Known() bool {
	return t.IsScalar() || t == PropString || t == PropTable || t.IsVector() || t.IsMatrix()
}

// Property is a typed named value attached to the unit, an image or the
// metadata element.
//
// Scalar, complex and time point values are parsed into Value; String values
// and the open-ended vector, matrix and table shapes are carried verbatim in
// Raw.
type Property struct {
	ID      string
	Type    PropertyType
	Comment string
	Format  string

	// Value holds the parsed scalar: bool, int64, uint64, float64,
	// complex128 or time.Time. Nil for non-scalar types.
	Value any
	// Raw holds the wire text of the value: the value attribute for scalar
	// types, the element text content otherwise.
	Raw string
}

// Bool returns the boolean value.
func (p Property) Bool() (bool, bool) {
	v, ok := p.Value.(bool)
	return v, ok
}

// Int returns the signed integer value.
func (p Property) Int() (int64, bool) {
	v, ok := p.Value.(int64)
	return v, ok
}

// UInt returns the unsigned integer value.
func (p Property) UInt() (uint64, bool) {
	v, ok := p.Value.(uint64)
	return v, ok
}

// Float returns the floating point value.
func (p Property) Float() (float64, bool) {
	v, ok := p.Value.(float64)
	return v, ok
}

// Complex returns the complex value.
func (p Property) Complex() (complex128, bool) {
	v, ok := p.Value.(complex128)
	return v, ok
}

// Time returns the time point value.
func (p Property) Time() (time.Time, bool) {
	v, ok := p.Value.(time.Time)
	return v, ok
}

// String returns the string value of a String property.
func (p Property) String() string {
	return p.Raw
}

// ParseValue parses the wire text of a scalar property value. Parsing is
// locale invariant: the decimal separator is always a dot.
func ParseValue(typ PropertyType, text string) (any, error) {
	switch typ {
	case PropBoolean:
		switch text {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		default:
			return nil, fmt.Errorf("invalid Boolean value %q", text)
		}

	case PropInt8, PropInt16, PropInt32, PropInt64:
		v, err := strconv.ParseInt(text, 10, intBits(typ))
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", typ, text, err)
		}

		return v, nil

	case PropUInt8, PropUInt16, PropUInt32, PropUInt64:
		v, err := strconv.ParseUint(text, 10, intBits(typ))
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", typ, text, err)
		}

		return v, nil

	case PropFloat32, PropFloat64:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", typ, text, err)
		}

		return v, nil

	case PropComplex32, PropComplex64:
		return parseComplex(text)

	case PropTimePoint:
		return ParseTimePoint(text)

	default:
		return nil, nil
	}
}

// FormatValue serializes a parsed scalar value back to wire text.
// Float32 values are emitted with 9 significant digits, Float64 with 17.
func FormatValue(typ PropertyType, value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return formatFloat(v, typ == PropFloat32)
	case complex128:
		narrow := typ == PropComplex32
		return "(" + formatFloat(real(v), narrow) + "," + formatFloat(imag(v), narrow) + ")"
	case time.Time:
		return FormatTimePoint(v)
	default:
		return ""
	}
}

// ParseTimePoint parses an ISO 8601 instant with offset.
func ParseTimePoint(text string) (time.Time, error) {
	for _, layout := range timePointParseLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid TimePoint value %q", text)
}

// FormatTimePoint serializes an instant to the TimePoint wire form with
// millisecond precision and a numeric offset.
func FormatTimePoint(t time.Time) string {
	return t.Format(timePointLayout)
}

func formatFloat(v float64, narrow bool) string {
	if narrow {
		return strconv.FormatFloat(v, 'g', 9, 32)
	}

	return strconv.FormatFloat(v, 'g', 17, 64)
}

func parseComplex(text string) (complex128, error) {
	s := strings.TrimSpace(text)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return 0, fmt.Errorf("invalid complex value %q", text)
	}

	re, im, ok := strings.Cut(s[1:len(s)-1], ",")
	if !ok {
		return 0, fmt.Errorf("invalid complex value %q", text)
	}

	rv, err := strconv.ParseFloat(strings.TrimSpace(re), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid complex value %q: %w", text, err)
	}

	iv, err := strconv.ParseFloat(strings.TrimSpace(im), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid complex value %q: %w", text, err)
	}

	return complex(rv, iv), nil
}

func intBits(typ PropertyType) int {
	switch typ {
	case PropInt8, PropUInt8:
		return 8
	case PropInt16, PropUInt16:
		return 16
	case PropInt32, PropUInt32:
		return 32
	default:
		return 64
	}
}
