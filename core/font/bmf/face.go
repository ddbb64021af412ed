package bmf

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Face is a font.Face over a bitmap font table and its sheet.
// It works in design units, which are sheet pixels at the nominal font size;
// there is no scaling.
type Face struct {
	font  *Font
	atlas image.Image
}

var _ font.Face = (*Face)(nil)

// NewFace creates a face from a font table and its texture sheet. atlas may be
// nil, in which case glyphs are drawn as opaque boxes.
func NewFace(f *Font, atlas image.Image) *Face {
	if atlas == nil {
		atlas = image.Opaque
	}
	return &Face{font: f, atlas: atlas}
}

// Close is a no-op; the sheet is owned by the caller.
func (face *Face) Close() error {
	return nil
}

// Glyph returns the sheet region for r, positioned at dot.
func (face *Face) Glyph(dot fixed.Point26_6, r rune) (
	dr image.Rectangle, mask image.Image, maskp image.Point, advance fixed.Int26_6, ok bool) {
	//
	m, ok := face.font.LookupRune(r)
	if !ok {
		return
	}
	x := dot.X.Round() + int(m.BearingX)
	y := dot.Y.Round() - int(m.BearingY)
	dr = image.Rect(x, y, x+int(m.Width), y+int(m.Height))
	maskp = image.Pt(int(m.U), int(m.V))
	if face.atlas == image.Opaque {
		maskp = image.Point{}
	}
	return dr, face.atlas, maskp, fixed.I(int(m.Advance)), true
}

// GlyphBounds returns the glyph box of r relative to the pen position, with
// y pointing down.
func (face *Face) GlyphBounds(r rune) (bounds fixed.Rectangle26_6, advance fixed.Int26_6, ok bool) {
	m, ok := face.font.LookupRune(r)
	if !ok {
		return
	}
	bounds.Min = fixed.P(int(m.BearingX), -int(m.BearingY))
	bounds.Max = fixed.P(int(m.BearingX)+int(m.Width), -int(m.BearingY)+int(m.Height))
	return bounds, fixed.I(int(m.Advance)), true
}

// GlyphAdvance returns the pen advance of r.
func (face *Face) GlyphAdvance(r rune) (advance fixed.Int26_6, ok bool) {
	m, ok := face.font.LookupRune(r)
	if !ok {
		return 0, false
	}
	return fixed.I(int(m.Advance)), true
}

// Kern always returns 0. Bitmap font tables carry no kerning pairs.
func (face *Face) Kern(r0, r1 rune) fixed.Int26_6 {
	return 0
}

// Metrics returns the line metrics of the font.
func (face *Face) Metrics() font.Metrics {
	h := face.font.Header
	return font.Metrics{
		Height:  fixed.I(int(h.FontSize)),
		Ascent:  fixed.I(int(h.FontAscent)),
		Descent: fixed.I(int(h.FontSize - h.FontAscent)),
	}
}
