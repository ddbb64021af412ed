package bmf

import "fmt"

// Header is the fixed-size head of a bitmap font table.
// Sizes are given in design units, sheet dimensions in pixels.
type Header struct {
	FontSize    int16 // nominal em size
	FontAscent  int16 // baseline offset from the top of a line
	MetricCount int16 // number of metric records
	SheetWidth  int16 // width of the texture atlas
	SheetHeight int16 // height of the texture atlas
}

// Metric describes a single drawable glyph.
type Metric struct {
	U, V               int16 // pixel origin on the sheet (top-left)
	BearingX, BearingY int8  // offset of the glyph box from the pen position
	Width, Height      uint8 // size of the glyph box
	Advance            uint8 // horizontal pen advance
	First, Second      uint8 // high and low byte of the 16-bit character code
	PrevNum, NextNum   uint8 // number of neighbours sharing the same First byte
}

// Code returns the 16-bit character code of a glyph.
func (m Metric) Code() uint16 {
	return uint16(m.First)<<8 | uint16(m.Second)
}

func (m Metric) String() string {
	return fmt.Sprintf("(U+%04X uv=%d,%d box=%dx%d bearing=%d,%d adv=%d)",
		m.Code(), m.U, m.V, m.Width, m.Height, m.BearingX, m.BearingY, m.Advance)
}

// Font is an in-memory bitmap font table.
//
// A Font is immutable once decoded or built and may be shared between any
// number of clients and goroutines.
type Font struct {
	Header
	Index       [256]int16 // coarse start offsets, one per First byte
	Metrics     []Metric   // sorted by First, then Second
	TextureName string     // file name of the sheet, relative to the font data file
}

// absentGroup is the index value for First bytes without any glyphs.
// Adding any Second byte to it stays negative.
const absentGroup int16 = -256

// Len returns the number of glyphs in the table.
func (f *Font) Len() int {
	return len(f.Metrics)
}

// Group returns the glyphs sharing a First byte. The slice is a view into
// the font's table and must not be modified.
func (f *Font) Group(first uint8) []Metric {
	for i := range f.Metrics {
		if f.Metrics[i].First == first {
			m := f.Metrics[i]
			return f.Metrics[i : i+int(m.NextNum)+1]
		}
		if f.Metrics[i].First > first {
			break
		}
	}
	return nil
}

// Validate checks the structural invariants lookup relies on: ordering of the
// metrics and consistency of the group bounds of every record.
func (f *Font) Validate() error {
	h := f.Header
	if h.FontSize <= 0 {
		return errFontFormat("font size must be positive, is %d", h.FontSize)
	}
	if h.SheetWidth <= 0 || h.SheetHeight <= 0 {
		return errFontFormat("illegal sheet dimensions %dx%d", h.SheetWidth, h.SheetHeight)
	}
	if int(h.MetricCount) != len(f.Metrics) {
		return errFontFormat("header announces %d metrics, table has %d", h.MetricCount, len(f.Metrics))
	}
	n := len(f.Metrics)
	for i := 0; i < n; i++ {
		m := f.Metrics[i]
		if i > 0 && f.Metrics[i-1].Code() >= m.Code() {
			return errFontFormat("metrics not sorted at %d (U+%04X)", i, m.Code())
		}
		left, right := i-int(m.PrevNum), i+int(m.NextNum)
		if left < 0 || right >= n {
			return errFontFormat("group bounds [%d,%d] of metric %d out of range", left, right, i)
		}
		if f.Metrics[left].First != m.First || f.Metrics[right].First != m.First {
			return errFontFormat("group bounds of metric %d (U+%04X) inconsistent", i, m.Code())
		}
		if left > 0 && f.Metrics[left-1].First == m.First ||
			right < n-1 && f.Metrics[right+1].First == m.First {
			return errFontFormat("group of metric %d (U+%04X) exceeds its bounds", i, m.Code())
		}
	}
	return nil
}
