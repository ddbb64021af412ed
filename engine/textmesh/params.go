package textmesh

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/bmtext/core"
	"github.com/npillmayer/schuko"
)

// Align is the horizontal alignment of a text block within its box.
type Align int

// Alignments
const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	case AlignCenter:
		return "center"
	}
	return fmt.Sprintf("Align(%d)", int(a))
}

// ParseAlign reads an alignment from its name. Case is ignored.
func ParseAlign(s string) (Align, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return AlignLeft, nil
	case "right":
		return AlignRight, nil
	case "center", "centre":
		return AlignCenter, nil
	}
	return AlignLeft, core.Error(core.EINVALID, "unknown alignment %q", s)
}

// Params collects the layout parameters of a Renderer.
type Params struct {
	Size          float32 // rendered em size; 0 means the font's nominal size
	Width         float32 // box width; 0 disables auto-wrap
	Height        float32 // box height, informational
	Align         Align
	LineSpacing   float32 // multiple of the font size
	LetterSpacing float32 // extra advance; multiple of the font size for glyphs
	TabSpacing    float32 // tab width in spaces
	LeftMargin    float32 // in design units
	RightMargin   float32 // in design units
}

// DefaultParams returns left aligned, unbounded parameters at nominal size.
func DefaultParams() Params {
	return Params{
		LineSpacing: 1,
		TabSpacing:  4,
	}
}

// ParamsFromConfig reads layout parameters from keys below prefix, e.g.
// "bmtext.size" or "bmtext.align" for prefix "bmtext". Keys which are not
// set keep their default value.
func ParamsFromConfig(conf schuko.Configuration, prefix string) (Params, error) {
	p := DefaultParams()
	if conf == nil {
		return p, nil
	}
	key := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}
	numbers := []struct {
		name string
		val  *float32
	}{
		{"size", &p.Size},
		{"width", &p.Width},
		{"height", &p.Height},
		{"linespacing", &p.LineSpacing},
		{"letterspacing", &p.LetterSpacing},
		{"tabspacing", &p.TabSpacing},
		{"leftmargin", &p.LeftMargin},
		{"rightmargin", &p.RightMargin},
	}
	for _, n := range numbers {
		s := strings.TrimSpace(conf.GetString(key(n.name)))
		if s == "" {
			continue
		}
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return p, core.WrapError(err, core.EINVALID, "configuration key %s: not a number: %q", key(n.name), s)
		}
		*n.val = float32(f)
	}
	if s := conf.GetString(key("align")); strings.TrimSpace(s) != "" {
		a, err := ParseAlign(s)
		if err != nil {
			return p, core.WrapError(err, core.EINVALID, "configuration key %s", key("align"))
		}
		p.Align = a
	}
	if p.Size < 0 || p.Width < 0 {
		return p, core.Error(core.EINVALID, "size and width must not be negative")
	}
	tracer().Debugf("layout parameters from configuration: %+v", p)
	return p, nil
}
