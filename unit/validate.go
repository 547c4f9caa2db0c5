package unit

import (
	"fmt"
	"regexp"

	"github.com/arloliu/xisf/format"
)

// Property identifiers are namespaced words separated by colons. The
// canonical grammar uses single-colon separators; the double-colon form some
// writers emit is accepted too.
var propertyIDRegexp = regexp.MustCompile(`^[_A-Za-z][_A-Za-z0-9]*(::?[_A-Za-z][_A-Za-z0-9]*)*$`)

// Unique ids are single unqualified words.
var uidRegexp = regexp.MustCompile(`^[_A-Za-z][_A-Za-z0-9]*$`)

// ValidationResult aggregates the structural findings for a header.
// Errors block publication; warnings never do.
type ValidationResult struct {
	OK       bool
	Errors   []string
	Warnings []string
}

func (r *ValidationResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate runs the structural checks on a header: mandatory metadata,
// identifier grammar, unique id uniqueness, reference resolution, geometry
// positivity and the bounds requirement of floating point and complex
// images. It performs no I/O.
func Validate(h *Header) ValidationResult {
	var res ValidationResult

	validateMetadata(h, &res)

	uids := map[string]string{}
	for _, el := range h.Elements {
		validateCoreElement(el, "header", uids, &res)
	}

	for _, p := range h.Properties {
		validatePropertyID(p, "global", &res)
	}

	for i := range h.Images {
		validateImage(&h.Images[i], i, uids, &res)
	}

	validateReferences(h, uids, &res)

	res.OK = len(res.Errors) == 0

	return res
}

func validateMetadata(h *Header, res *ValidationResult) {
	if h.Metadata.CreationTime.IsZero() {
		res.errorf("metadata: %s is required", MetaCreationTime)
	}

	if h.Metadata.CreatorApplication == "" {
		res.errorf("metadata: %s is required and must be non-empty", MetaCreatorApplication)
	}

	for _, p := range h.Metadata.Extra {
		validatePropertyID(p, "metadata", res)
	}
}

func validateImage(img *Image, index int, uids map[string]string, res *ValidationResult) {
	where := fmt.Sprintf("image %d", index)
	if img.ID != "" {
		where = fmt.Sprintf("image %q", img.ID)
	}

	if len(img.Geometry.Dimensions) == 0 {
		res.errorf("%s: geometry needs at least one dimension", where)
	}
	for _, d := range img.Geometry.Dimensions {
		if d == 0 {
			res.errorf("%s: geometry dimensions must be positive", where)
			break
		}
	}
	if img.Geometry.Channels == 0 {
		res.errorf("%s: geometry needs at least one channel", where)
	}

	if img.SampleFormat.ItemSize() == 0 {
		res.errorf("%s: unknown sample format", where)
	}

	if img.SampleFormat.RequiresBounds() {
		switch {
		case img.Bounds == nil:
			res.errorf("%s: %s images require the bounds attribute", where, img.SampleFormat)
		case img.Bounds.Lower >= img.Bounds.Upper:
			res.errorf("%s: bounds lower %g must be below upper %g", where, img.Bounds.Lower, img.Bounds.Upper)
		}
	}

	if img.Offset < 0 {
		res.errorf("%s: offset %g must be non-negative", where, img.Offset)
	}

	if img.ID != "" && !uidRegexp.MatchString(img.ID) {
		res.errorf("%s: invalid image id %q", where, img.ID)
	}

	if img.Block == nil {
		res.errorf("%s: missing pixel data block", where)
	}

	for _, p := range img.Properties {
		validatePropertyID(p, where, res)
	}

	for _, el := range img.Elements {
		validateCoreElement(el, where, uids, res)
	}
}

func validatePropertyID(p Property, where string, res *ValidationResult) {
	if !propertyIDRegexp.MatchString(p.ID) {
		res.errorf("%s: invalid property id %q", where, p.ID)
	}

	if !p.Type.Known() {
		res.errorf("%s: property %q has unknown type %q", where, p.ID, p.Type)
	}
}

func validateCoreElement(el CoreElement, where string, uids map[string]string, res *ValidationResult) {
	uid := el.ElementUID()
	if uid != "" {
		if !uidRegexp.MatchString(uid) {
			res.errorf("%s: invalid uid %q on %s element", where, uid, el.ElementName())
		}

		if prev, dup := uids[uid]; dup {
			res.errorf("%s: uid %q already used by %s", where, uid, prev)
		} else {
			uids[uid] = el.ElementName()
		}
	}

	switch e := el.(type) {
	case ColorFilterArray:
		if e.Width <= 0 || e.Height <= 0 {
			res.errorf("%s: CFA dimensions %dx%d must be positive", where, e.Width, e.Height)
		}
		if len(e.Pattern) != e.Width*e.Height {
			res.errorf("%s: CFA pattern %q does not cover %dx%d elements", where, e.Pattern, e.Width, e.Height)
		}
	case Resolution:
		if e.Horizontal <= 0 || e.Vertical <= 0 {
			res.errorf("%s: resolution %gx%g must be positive", where, e.Horizontal, e.Vertical)
		}
	case FITSKeyword:
		if e.Name == "" {
			res.errorf("%s: FITS keyword with empty name", where)
		}
	case Thumbnail:
		if e.Block == nil {
			res.errorf("%s: thumbnail without pixel data block", where)
		}
		if e.SampleFormat != format.SampleUInt8 && e.SampleFormat != format.SampleUInt16 {
			res.warnf("%s: thumbnail sample format %s is unusual", where, e.SampleFormat)
		}
	case ICCProfile:
		if e.Block == nil {
			res.errorf("%s: ICC profile without data block", where)
		}
	}
}

func validateReferences(h *Header, uids map[string]string, res *ValidationResult) {
	check := func(el CoreElement, where string) {
		ref, ok := el.(Reference)
		if !ok {
			return
		}

		if ref.Ref == "" {
			res.errorf("%s: Reference without ref attribute", where)
			return
		}

		if _, found := uids[ref.Ref]; !found {
			res.errorf("%s: Reference target %q does not exist", where, ref.Ref)
		}
	}

	for _, el := range h.Elements {
		check(el, "header")
	}

	for i := range h.Images {
		for _, el := range h.Images[i].Elements {
			check(el, fmt.Sprintf("image %d", i))
		}
	}
}
