package textmesh

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path"
	"unicode/utf8"

	"github.com/npillmayer/bmtext/core"
	"github.com/npillmayer/bmtext/core/font/bmf"
	"github.com/npillmayer/bmtext/core/font/fontregistry"
	"golang.org/x/image/math/f32"
	"golang.org/x/text/width"
)

// ErrColorCount is returned by SetTextColors if the number of colors does not
// match the number of characters.
var ErrColorCount = errors.New("number of colors does not match number of characters")

// ErrClosed is returned when a Renderer is used after Close.
var ErrClosed = core.Error(core.ERELEASED, "text renderer has been closed")

// ResourceCache hands out reference counted font data and textures.
// *fontregistry.Registry implements it.
type ResourceCache interface {
	LoadData(name string) (*bmf.Font, error)
	LoadTexture(path string) (*fontregistry.Texture, error)
	UnloadData(name string)
	UnloadTexture(path string)
}

var _ ResourceCache = (*fontregistry.Registry)(nil)

// Drawer submits a mesh to a graphics backend.
type Drawer interface {
	DrawMesh(mesh *Mesh, transform f32.Mat4, material *fontregistry.Texture, viewport image.Rectangle)
}

// Renderer lays out text with a bitmap font and holds the resulting mesh.
// Create it with New and release it with Close.
type Renderer struct {
	cache       ResourceCache
	drawer      Drawer
	fontName    string
	texturePath string
	font        *bmf.Font
	material    *fontregistry.Texture
	params      Params
	asciiRef    bmf.Metric // advance of spaces and tabs
	wideRef     bmf.Metric // advance of ideographic spaces
	mesh        Mesh
	slots       []glyphSlot
	runes       []rune
	colors      []color.RGBA
	pen         f32.Vec2
	inkLeft     float32
	inkRight    float32
	offset      float32
	empty       bool
	closed      bool
}

// New creates a Renderer for the font fontName. The font's texture sheet is
// expected next to the font data. If cache is nil, the global font registry
// is used. drawer may be nil, making Render a no-op.
//
// The Renderer holds a reference to the font data and the texture until
// Close is called.
func New(cache ResourceCache, drawer Drawer, fontName string, p Params) (*Renderer, error) {
	if cache == nil {
		cache = fontregistry.GlobalRegistry()
	}
	if p.Size < 0 || p.Width < 0 {
		return nil, core.Error(core.EINVALID, "size and width must not be negative")
	}
	f, err := cache.LoadData(fontName)
	if err != nil {
		return nil, err
	}
	texturePath := path.Join(path.Dir(fontName), f.TextureName)
	tex, err := cache.LoadTexture(texturePath)
	if err != nil {
		cache.UnloadData(fontName)
		return nil, err
	}
	r := &Renderer{
		cache:       cache,
		drawer:      drawer,
		fontName:    fontName,
		texturePath: texturePath,
		font:        f,
		material:    tex,
		params:      p,
		empty:       true,
	}
	r.asciiRef, r.wideRef = referenceGlyphs(f)
	tracer().Debugf("text renderer for %s, texture %s", fontName, texturePath)
	return r, nil
}

// referenceGlyphs selects the glyphs whose advances are used for spaces
// and for ideographic spaces.
func referenceGlyphs(f *bmf.Font) (ascii, wide bmf.Metric) {
	var ok bool
	if ascii, ok = f.LookupRune('M'); !ok {
		tracer().Errorf("font has no glyph for 'M', spaces will have zero width")
		ascii = bmf.Metric{}
	}
	if wide, ok = f.LookupRune('国'); ok {
		return
	}
	for _, m := range f.Metrics {
		switch width.LookupRune(rune(m.Code())).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			return ascii, m
		}
	}
	return ascii, ascii
}

// Close releases the texture and the font data. Subsequent calls do nothing.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.cache.UnloadTexture(r.texturePath)
	r.cache.UnloadData(r.fontName)
	r.mesh.Clear()
	r.empty = true
	tracer().Debugf("text renderer for %s closed", r.fontName)
	return nil
}

// SetText lays out text in a single color.
func (r *Renderer) SetText(text string, c color.RGBA) error {
	if r.closed {
		return ErrClosed
	}
	n := utf8.RuneCountInString(text)
	r.colors = r.colors[:0]
	for i := 0; i < n; i++ {
		r.colors = append(r.colors, c)
	}
	return r.setText(text, r.colors)
}

// SetTextColors lays out text with one color per character (rune).
// If len(colors) does not match, ErrColorCount is returned and the mesh is
// left unchanged.
func (r *Renderer) SetTextColors(text string, colors []color.RGBA) error {
	if r.closed {
		return ErrClosed
	}
	if n := utf8.RuneCountInString(text); text != "" && n != len(colors) {
		return fmt.Errorf("%w: %d colors for %d characters", ErrColorCount, len(colors), n)
	}
	return r.setText(text, colors)
}

func (r *Renderer) setText(text string, colors []color.RGBA) error {
	if text == "" {
		r.mesh.Clear()
		r.slots = r.slots[:0]
		r.pen, r.inkLeft, r.inkRight, r.offset = f32.Vec2{}, 0, 0, 0
		r.empty = true
		return nil
	}
	r.runes = r.runes[:0]
	for _, c := range text {
		r.runes = append(r.runes, c)
	}
	r.layout(r.runes, colors)
	r.empty = r.mesh.QuadCount() == 0
	tracer().Debugf("layout of %d characters produced %d quads", len(r.runes), r.mesh.QuadCount())
	return nil
}

// Render submits the mesh to the drawer. It does nothing if there is no
// geometry or no drawer.
func (r *Renderer) Render(transform f32.Mat4, viewport image.Rectangle) {
	if r.empty || r.closed || r.drawer == nil {
		return
	}
	r.drawer.DrawMesh(&r.mesh, transform, r.material, viewport)
}

// Mesh returns the current mesh. It is rebuilt by every call to SetText.
func (r *Renderer) Mesh() *Mesh {
	return &r.mesh
}

// Material returns the texture sheet of the font.
func (r *Renderer) Material() *fontregistry.Texture {
	return r.material
}

// Font returns the font data.
func (r *Renderer) Font() *bmf.Font {
	return r.font
}

// Params returns the layout parameters.
func (r *Renderer) Params() Params {
	return r.params
}

// Empty is true if the last layout produced no geometry.
func (r *Renderer) Empty() bool {
	return r.empty
}

// Pen returns the pen position after the last layout, in world units and
// before alignment.
func (r *Renderer) Pen() f32.Vec2 {
	return r.pen
}

// InkWidth returns the width of the laid out text's glyph boxes in world units.
func (r *Renderer) InkWidth() float32 {
	return (r.inkRight - r.inkLeft) * r.scale()
}

// AlignOffset returns the horizontal offset applied by alignment, in world units.
func (r *Renderer) AlignOffset() float32 {
	return r.offset
}

func (r *Renderer) scale() float32 {
	if r.params.Size == 0 {
		return 1
	}
	return r.params.Size / float32(r.font.FontSize)
}
