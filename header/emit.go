package header

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/arloliu/xisf/format"
	"github.com/arloliu/xisf/internal/pool"
	"github.com/arloliu/xisf/unit"
)

// EmitOptions controls header emission.
type EmitOptions struct {
	// Pretty enables two-space indentation. Off, the whole header, XML
	// declaration included, is a single line.
	Pretty bool
}

// Emit serializes a header to UTF-8 XML without BOM.
//
// The output is a pure function of the header value: emitting the same
// header twice yields identical bytes. The monolithic layout pass depends on
// this to find its length fixed point.
func Emit(h *unit.Header, opts EmitOptions) []byte {
	w := &xmlWriter{pretty: opts.Pretty}

	w.raw(`<?xml version="1.0" encoding="UTF-8"?>`)
	w.newline()

	if h.InitialComment != "" {
		w.raw("<!--" + h.InitialComment + "-->")
		w.newline()
	}

	w.open("xisf",
		a{"version", Version},
		a{"xmlns", Namespace},
		a{"xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance"},
		a{"xsi:schemaLocation", SchemaLocation},
	)

	emitMetadata(w, &h.Metadata)

	for i := range h.Images {
		emitImage(w, &h.Images[i])
	}

	for _, p := range h.Properties {
		emitProperty(w, p)
	}

	for _, el := range h.Elements {
		emitCoreElement(w, el)
	}

	w.end("xisf")

	return w.bytes()
}

// a is one attribute; zero-valued attributes are skipped by the writer.
type a struct {
	key   string
	value string
}

type xmlWriter struct {
	buf    bytes.Buffer
	pretty bool
	depth  int
}

func (w *xmlWriter) bytes() []byte {
	out := make([]byte, w.buf.Len())
	copy(out, w.buf.Bytes())

	return out
}

func (w *xmlWriter) raw(s string) {
	w.buf.WriteString(s)
}

func (w *xmlWriter) newline() {
	if w.pretty {
		w.buf.WriteByte('\n')
	}
}

func (w *xmlWriter) indent() {
	if w.pretty {
		for i := 0; i < w.depth; i++ {
			w.buf.WriteString("  ")
		}
	}
}

func (w *xmlWriter) startTag(name string, attrs []a, selfClose bool) {
	w.indent()
	w.buf.WriteByte('<')
	w.buf.WriteString(name)

	for _, at := range attrs {
		if at.value == "" {
			continue
		}

		w.buf.WriteByte(' ')
		w.buf.WriteString(at.key)
		w.buf.WriteString(`="`)
		w.buf.WriteString(escapeAttr(at.value))
		w.buf.WriteByte('"')
	}

	if selfClose {
		w.buf.WriteString("/>")
		w.newline()
		return
	}

	w.buf.WriteByte('>')
}

// open writes a start tag with children to follow.
func (w *xmlWriter) open(name string, attrs ...a) {
	w.startTag(name, attrs, false)
	w.newline()
	w.depth++
}

// empty writes a self-closing element.
func (w *xmlWriter) empty(name string, attrs ...a) {
	w.startTag(name, attrs, true)
}

// textElement writes an element whose entire content is character data.
// The text is not surrounded by indentation so it round-trips exactly.
func (w *xmlWriter) textElement(name string, text string, attrs ...a) {
	w.startTag(name, attrs, false)
	w.buf.WriteString(escapeText(text))
	w.buf.WriteString("</")
	w.buf.WriteString(name)
	w.buf.WriteByte('>')
	w.newline()
}

// end closes an element opened with open.
func (w *xmlWriter) end(name string) {
	w.depth--
	w.indent()
	w.buf.WriteString("</")
	w.buf.WriteString(name)
	w.buf.WriteByte('>')
	w.newline()
}

func escapeAttr(s string) string {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

func escapeText(s string) string {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

func emitMetadata(w *xmlWriter, meta *unit.Metadata) {
	w.open("Metadata")

	if !meta.CreationTime.IsZero() {
		w.empty("Property",
			a{"id", unit.MetaCreationTime},
			a{"type", string(unit.PropTimePoint)},
			a{"value", unit.FormatTimePoint(meta.CreationTime)},
		)
	}

	emitMetaString(w, unit.MetaCreatorApplication, meta.CreatorApplication)
	emitMetaString(w, unit.MetaCreatorModule, meta.CreatorModule)
	emitMetaString(w, unit.MetaCreatorOS, meta.CreatorOS)
	emitMetaString(w, unit.MetaAuthors, meta.Authors)
	emitMetaString(w, unit.MetaTitle, meta.Title)
	emitMetaString(w, unit.MetaDescription, meta.Description)
	emitMetaString(w, unit.MetaCopyright, meta.Copyright)

	for _, p := range meta.Extra {
		emitProperty(w, p)
	}

	w.end("Metadata")
}

func emitMetaString(w *xmlWriter, id, value string) {
	if value == "" {
		return
	}

	w.textElement("Property", value,
		a{"id", id},
		a{"type", string(unit.PropString)},
	)
}

func emitProperty(w *xmlWriter, p unit.Property) {
	attrs := []a{
		{"id", p.ID},
		{"type", string(p.Type)},
		{"comment", p.Comment},
		{"format", p.Format},
	}

	if p.Type.IsScalar() {
		value := p.Raw
		if p.Value != nil {
			value = unit.FormatValue(p.Type, p.Value)
		}
		attrs = append(attrs, a{"value", value})
		w.empty("Property", attrs...)

		return
	}

	if p.Raw == "" {
		w.empty("Property", attrs...)
		return
	}

	w.textElement("Property", p.Raw, attrs...)
}

// blockAttrList returns the shared data block attributes in emission order.
func blockAttrList(blk *unit.DataBlock) []a {
	attrs := make([]a, 0, 4)

	if blk.ByteOrder == format.BigEndian {
		attrs = append(attrs, a{"byteOrder", blk.ByteOrder.String()})
	}

	attrs = append(attrs, a{"location", blk.LocationAttribute()})

	if blk.Compression != nil {
		attrs = append(attrs, a{"compression", blk.Compression.Attribute()})
	}

	if blk.Checksum != nil {
		attrs = append(attrs, a{"checksum", blk.Checksum.Attribute()})
	}

	return attrs
}

// emitBlockBody writes the payload carrier of an inline or embedded block
// and closes the element. hasChildren reports whether the element already
// wrote child elements.
func emitBlockBody(w *xmlWriter, name string, blk *unit.DataBlock, hasChildren bool) {
	switch blk.Kind {
	case unit.BlockInline:
		text := unit.EncodeText(blk.StoredBytes(), blk.Encoding)
		if hasChildren {
			w.indent()
			w.raw(escapeText(text))
			w.newline()
			w.end(name)
		} else {
			// Re-open as a text element: undo the open indentation bump.
			w.depth--
			w.buf.WriteString(escapeText(text))
			w.buf.WriteString("</" + name + ">")
			w.newline()
		}

	case unit.BlockEmbedded:
		w.textElement("Data", unit.EncodeText(blk.StoredBytes(), blk.Encoding),
			a{"encoding", blk.Encoding.String()})
		w.end(name)

	default:
		w.end(name)
	}
}

func emitImage(w *xmlWriter, img *unit.Image) {
	attrs := []a{
		{"geometry", img.Geometry.String()},
		{"sampleFormat", img.SampleFormat.String()},
	}

	if img.Bounds != nil {
		attrs = append(attrs, a{"bounds", img.Bounds.String()})
	}

	attrs = append(attrs, a{"colorSpace", img.ColorSpace.String()})

	if img.PixelStorage != format.StoragePlanar {
		attrs = append(attrs, a{"pixelStorage", img.PixelStorage.String()})
	}

	attrs = append(attrs,
		a{"imageType", img.ImageType},
		a{"orientation", img.Orientation},
		a{"id", img.ID},
		a{"uuid", img.UUID},
	)

	if img.Offset != 0 {
		attrs = append(attrs, a{"offset", strconv.FormatFloat(img.Offset, 'g', 17, 64)})
	}

	if img.Block == nil {
		w.empty("Image", attrs...)
		return
	}

	attrs = append(attrs, blockAttrList(img.Block)...)

	simple := img.Block.Kind == unit.BlockAttached || img.Block.Kind == unit.BlockExternal
	if simple && len(img.Properties) == 0 && len(img.Elements) == 0 {
		w.empty("Image", attrs...)
		return
	}

	w.open("Image", attrs...)

	for _, p := range img.Properties {
		emitProperty(w, p)
	}

	for _, el := range img.Elements {
		emitCoreElement(w, el)
	}

	hasChildren := len(img.Properties) > 0 || len(img.Elements) > 0
	emitBlockBody(w, "Image", img.Block, hasChildren)
}

func emitCoreElement(w *xmlWriter, el unit.CoreElement) {
	switch e := el.(type) {
	case unit.Reference:
		w.empty("Reference", a{"uid", e.UID}, a{"ref", e.Ref})

	case unit.Resolution:
		w.empty("Resolution",
			a{"uid", e.UID},
			a{"horizontal", formatReal(e.Horizontal)},
			a{"vertical", formatReal(e.Vertical)},
			a{"unit", e.Unit},
		)

	case unit.FITSKeyword:
		w.empty("FITSKeyword",
			a{"uid", e.UID},
			a{"name", e.Name},
			a{"value", e.Value},
			a{"comment", e.Comment},
		)

	case unit.ColorFilterArray:
		w.empty("ColorFilterArray",
			a{"uid", e.UID},
			a{"pattern", e.Pattern},
			a{"width", strconv.Itoa(e.Width)},
			a{"height", strconv.Itoa(e.Height)},
			a{"name", e.Name},
		)

	case unit.ICCProfile:
		attrs := append([]a{{"uid", e.UID}}, blockAttrList(e.Block)...)
		if e.Block.Kind == unit.BlockInline || e.Block.Kind == unit.BlockEmbedded {
			w.open("ICCProfile", attrs...)
			emitBlockBody(w, "ICCProfile", e.Block, false)
		} else {
			w.empty("ICCProfile", attrs...)
		}

	case unit.RGBWorkingSpace:
		w.empty("RGBWorkingSpace",
			a{"uid", e.UID},
			a{"gamma", formatReal(e.Gamma)},
			a{"x", formatRealList(e.ChromaticityX[:])},
			a{"y", formatRealList(e.ChromaticityY[:])},
			a{"Y", formatRealList(e.Luminance[:])},
			a{"name", e.Name},
		)

	case unit.DisplayFunction:
		w.empty("DisplayFunction",
			a{"uid", e.UID},
			a{"m", formatRealList(e.Midtones[:])},
			a{"s", formatRealList(e.Shadows[:])},
			a{"h", formatRealList(e.Highlights[:])},
			a{"r", formatRealList(e.Expansion[:])},
			a{"name", e.Name},
		)

	case unit.Thumbnail:
		attrs := []a{
			{"uid", e.UID},
			{"geometry", e.Geometry.String()},
			{"sampleFormat", e.SampleFormat.String()},
			{"colorSpace", e.ColorSpace.String()},
		}
		if e.PixelStorage != format.StoragePlanar {
			attrs = append(attrs, a{"pixelStorage", e.PixelStorage.String()})
		}
		attrs = append(attrs, blockAttrList(e.Block)...)

		if e.Block.Kind == unit.BlockInline || e.Block.Kind == unit.BlockEmbedded {
			w.open("Thumbnail", attrs...)
			emitBlockBody(w, "Thumbnail", e.Block, false)
		} else {
			w.empty("Thumbnail", attrs...)
		}
	}
}

func formatReal(v float64) string {
	return strconv.FormatFloat(v, 'g', 17, 64)
}

func formatRealList(vals []float64) string {
	fields := make([]string, len(vals))
	for i, v := range vals {
		fields[i] = formatReal(v)
	}

	return strings.Join(fields, ":")
}
