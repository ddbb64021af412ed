package textmesh

import (
	"image/color"

	"github.com/npillmayer/bmtext/core/font/bmf"
	"golang.org/x/image/math/f32"
)

// Code points with special layout treatment.
const (
	newline          = '\n'
	space            = ' '
	tab              = '\t'
	ideographicSpace = '\u3000'
)

// glyphSlot holds the geometry of one character, in design units.
type glyphSlot struct {
	used           bool
	x0, y0, x1, y1 float32
	u0, v0, u1, v1 float32
	color          color.RGBA
}

func isASCIILetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// layout places text into r.slots and builds the mesh from them.
// len(colors) == len(text) is checked by the caller.
func (r *Renderer) layout(text []rune, colors []color.RGBA) {
	f := r.font
	p := r.params
	fontSize := float32(f.FontSize)
	scale := r.scale()
	boxWidth := p.Width / scale
	lineAdvance := fontSize * p.LineSpacing
	spaceAdvance := float32(r.asciiRef.Advance) + p.LetterSpacing
	wideSpaceAdvance := float32(r.wideRef.Advance) + fontSize*p.LetterSpacing
	//
	if cap(r.slots) >= len(text) {
		r.slots = r.slots[:len(text)]
		for i := range r.slots {
			r.slots[i] = glyphSlot{}
		}
	} else {
		r.slots = make([]glyphSlot, len(text))
	}
	x, y := p.LeftMargin, -float32(f.FontAscent)
	anchor := -1   // start of the current run of ASCII letters
	lineStart := 0 // first character of the current line
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case newline:
			x, y = p.LeftMargin, y-lineAdvance
			anchor, lineStart = -1, i+1
			continue
		case space:
			x += spaceAdvance
			anchor = -1
			continue
		case tab:
			x += spaceAdvance * p.TabSpacing
			anchor = -1
			continue
		case ideographicSpace:
			x += wideSpaceAdvance
			anchor = -1
			continue
		}
		if isASCIILetter(c) {
			if anchor < 0 {
				anchor = i
			}
		} else {
			anchor = -1
		}
		m, ok := f.LookupRune(c)
		if !ok {
			tracer().Debugf("no glyph for %#U, skipped", c)
			continue
		}
		advance := float32(m.Advance) + fontSize*p.LetterSpacing
		if p.Width != 0 && x > p.LeftMargin && x+advance >= boxWidth-p.RightMargin {
			x, y = p.LeftMargin, y-lineAdvance
			if anchor > lineStart && isASCIILetter(c) {
				tracer().Debugf("wrap: moving word at %d to next line", anchor)
				for j := anchor; j < i; j++ {
					r.slots[j].used = false
				}
				i, lineStart, anchor = anchor-1, anchor, -1
				continue
			}
			tracer().Debugf("wrap: breaking line before %#U", c)
			lineStart = i
			if anchor >= 0 {
				anchor = i
			}
		}
		r.slots[i] = r.glyphGeometry(m, x, y, colors[i])
		x += advance
	}
	r.pen = f32.Vec2{x * scale, y * scale}
	r.buildMesh(scale)
}

// glyphGeometry places a glyph with its pen at (x,y).
func (r *Renderer) glyphGeometry(m bmf.Metric, x, y float32, c color.RGBA) glyphSlot {
	sw, sh := float32(r.font.SheetWidth), float32(r.font.SheetHeight)
	w, h := float32(m.Width), float32(m.Height)
	var dw, dh float32
	if m.Width > 0 {
		dw = 1 / (2 * w)
	}
	if m.Height > 0 {
		dh = 1 / (2 * h)
	}
	u, v := float32(m.U), float32(m.V)
	s := glyphSlot{used: true, color: c}
	s.x0 = x + float32(m.BearingX)
	s.x1 = s.x0 + w
	s.y0 = y + float32(m.BearingY)
	s.y1 = s.y0 - h
	s.u0 = (u + dw) / sw
	s.u1 = (u + w - dw) / sw
	s.v0 = (sh - (v + dh)) / sh
	s.v1 = (sh - (v + h - dh)) / sh
	return s
}

// buildMesh emits the used slots as quads, aligns them and finalizes the mesh.
// The alignment offset is computed from the unscaled box width and the ink
// width in design units, then scaled like the vertices.
func (r *Renderer) buildMesh(scale float32) {
	r.mesh.Clear()
	left, right, found := r.inkExtent()
	r.inkLeft, r.inkRight = left, right
	for _, s := range r.slots {
		if !s.used {
			continue
		}
		r.mesh.addQuad(s.x0*scale, s.y0*scale, s.x1*scale, s.y1*scale, s.u0, s.v0, s.u1, s.v1, s.color)
	}
	if found {
		p := r.params
		tw := right - left
		var offset float32
		switch p.Align {
		case AlignCenter:
			offset = (p.Width - p.LeftMargin - p.RightMargin - tw) / 2
		case AlignRight:
			offset = p.Width - p.RightMargin - tw
		}
		r.offset = offset * scale
		r.mesh.shiftX(r.offset)
	} else {
		r.offset = 0
	}
	r.mesh.RecalculateNormals()
	r.mesh.RecalculateBounds()
}

// inkExtent returns the horizontal extent of all placed glyph boxes.
func (r *Renderer) inkExtent() (left, right float32, found bool) {
	for _, s := range r.slots {
		if !s.used {
			continue
		}
		if !found {
			left, right, found = s.x0, s.x1, true
			continue
		}
		if s.x0 < left {
			left = s.x0
		}
		if s.x1 > right {
			right = s.x1
		}
	}
	return
}
