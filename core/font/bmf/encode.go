package bmf

import (
	"encoding/binary"
	"io"
	"sort"

	"github.com/npillmayer/bmtext/core"
)

// Encode writes f in the binary bitmap font format.
// f is expected to be valid, i.e. as returned from Parse or Builder.Build.
func Encode(w io.Writer, f *Font) error {
	if len(f.TextureName) > maxTextureName {
		return errFontFormat("texture name too long (%d bytes)", len(f.TextureName))
	}
	h := f.Header
	h.MetricCount = int16(len(f.Metrics))
	for _, part := range []interface{}{h, f.Index, f.Metrics} {
		if err := binary.Write(w, binary.LittleEndian, part); err != nil {
			return core.WrapError(err, core.EINTERNAL, "cannot write bitmap font")
		}
	}
	var l [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(l[:], uint64(len(f.TextureName)))
	if _, err := w.Write(l[:n]); err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot write bitmap font")
	}
	if _, err := io.WriteString(w, f.TextureName); err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot write bitmap font")
	}
	return nil
}

// --- Builder ---------------------------------------------------------------

// Builder packs glyph metrics into a Font. It does not rasterize anything;
// clients supply metrics and sheet positions they already know.
type Builder struct {
	header  Header
	texture string
	glyphs  map[uint16]Metric
}

// NewBuilder starts a new font table for a given em size, ascent and sheet
// dimensions.
func NewBuilder(fontSize, ascent, sheetWidth, sheetHeight int16, textureName string) *Builder {
	return &Builder{
		header: Header{
			FontSize:    fontSize,
			FontAscent:  ascent,
			SheetWidth:  sheetWidth,
			SheetHeight: sheetHeight,
		},
		texture: textureName,
		glyphs:  make(map[uint16]Metric),
	}
}

// Add puts a glyph for code point r into the table. First, Second, PrevNum
// and NextNum of m are ignored and recomputed.
// Code points beyond the 16-bit range cannot be represented and are dropped.
func (b *Builder) Add(r rune, m Metric) *Builder {
	if r < 0 || r > 0xffff {
		tracer().Errorf("bitmap font cannot hold code point %U", r)
		return b
	}
	m.First, m.Second = uint8(r>>8), uint8(r)
	b.glyphs[uint16(r)] = m
	return b
}

// Build sorts the glyphs, sets up group bounds and the coarse index and returns
// a valid font table.
//
// For every First byte F with glyphs, the index holds start(F) − Second(start(F)),
// so that index + Second points directly to a glyph in densely populated groups.
func (b *Builder) Build() (*Font, error) {
	if len(b.glyphs) > 0x7fff {
		return nil, errFontFormat("too many glyphs: %d", len(b.glyphs))
	}
	f := &Font{Header: b.header, TextureName: b.texture}
	f.Metrics = make([]Metric, 0, len(b.glyphs))
	for _, m := range b.glyphs {
		f.Metrics = append(f.Metrics, m)
	}
	sort.Slice(f.Metrics, func(i, j int) bool {
		return f.Metrics[i].Code() < f.Metrics[j].Code()
	})
	f.MetricCount = int16(len(f.Metrics))
	for i := range f.Index {
		f.Index[i] = absentGroup
	}
	for start := 0; start < len(f.Metrics); {
		first := f.Metrics[start].First
		end := start
		for end+1 < len(f.Metrics) && f.Metrics[end+1].First == first {
			end++
		}
		if end-start > 0xff {
			return nil, errFontFormat("group %02X has %d glyphs, at most 256 allowed", first, end-start+1)
		}
		for i := start; i <= end; i++ {
			f.Metrics[i].PrevNum = uint8(i - start)
			f.Metrics[i].NextNum = uint8(end - i)
		}
		f.Index[first] = int16(start - int(f.Metrics[start].Second))
		start = end + 1
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}
