package textmesh

import (
	"errors"
	"image/color"
	"testing"

	"github.com/npillmayer/bmtext/core/font/bmf"
	"github.com/npillmayer/bmtext/core/font/fontregistry"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
	"golang.org/x/image/math/f32"
)

const delta = 1e-4

var (
	white = color.RGBA{255, 255, 255, 255}
	red   = color.RGBA{255, 0, 0, 255}
	green = color.RGBA{0, 255, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
)

// --- Test Suite Preparation ------------------------------------------------

type LayoutTestEnviron struct {
	suite.Suite
	font *bmf.Font
}

// listen for 'go test' command --> run test methods
func TestLayoutFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bmtext.text")
	defer teardown()
	suite.Run(t, new(LayoutTestEnviron))
}

// run once, before test suite methods
func (env *LayoutTestEnviron) SetupSuite() {
	env.font = buildTestFont(env.T())
}

func (env *LayoutTestEnviron) renderer(p Params) *Renderer {
	r, err := New(&fakeCache{font: env.font}, nil, "fonts/test.bmf", p)
	env.Require().NoError(err)
	return r
}

// topLeft returns the top-left vertex of quad q.
func topLeft(m *Mesh, q int) f32.Vec3 {
	return m.Vertices[4*q+2]
}

// --- Tests -----------------------------------------------------------------

func (env *LayoutTestEnviron) TestSingleGlyph() {
	r := env.renderer(DefaultParams())
	env.Require().NoError(r.SetText("M", white))
	m := r.Mesh()
	env.False(r.Empty())
	env.Len(m.Vertices, 4)
	env.Equal([]uint32{0, 1, 2, 2, 1, 3}, m.Triangles)
	env.InDelta(20, r.Pen()[0], delta, "pen advance")
	for _, c := range m.Colors {
		env.Equal(white, c)
	}
	// top-right, bottom-right, top-left, bottom-left
	env.Equal(f32.Vec3{19, -10, 0}, m.Vertices[0])
	env.Equal(f32.Vec3{19, -30, 0}, m.Vertices[1])
	env.Equal(f32.Vec3{1, -10, 0}, m.Vertices[2])
	env.Equal(f32.Vec3{1, -30, 0}, m.Vertices[3])
	u0, u1 := (1.0/36)/512, (18-1.0/36)/512
	v0, v1 := (256-1.0/40)/256, (256-(20-1.0/40))/256
	env.InDelta(u1, m.UV[0][0], delta)
	env.InDelta(v0, m.UV[0][1], delta)
	env.InDelta(v1, m.UV[1][1], delta)
	env.InDelta(u0, m.UV[2][0], delta)
	for _, n := range m.Normals {
		env.Equal(f32.Vec3{0, 0, -1}, n)
	}
	env.Equal(Bounds{Min: f32.Vec3{1, -30, 0}, Max: f32.Vec3{19, -10, 0}}, m.Bounds)
}

func (env *LayoutTestEnviron) TestNewline() {
	for _, spacing := range []float32{1, 1.5} {
		p := DefaultParams()
		p.LineSpacing = spacing
		r := env.renderer(p)
		env.Require().NoError(r.SetText("A\nB", white))
		m := r.Mesh()
		env.Require().Equal(2, m.QuadCount())
		env.InDelta(32*spacing, topLeft(m, 0)[1]-topLeft(m, 1)[1], delta)
		env.Equal(topLeft(m, 0)[0], topLeft(m, 1)[0], "both lines start at the left margin")
	}
}

func (env *LayoutTestEnviron) TestEmptyText() {
	r := env.renderer(DefaultParams())
	env.True(r.Empty(), "new renderer has nothing to render")
	env.Require().NoError(r.SetText("AB", white))
	env.False(r.Empty())
	env.Require().NoError(r.SetTextColors("", nil))
	env.True(r.Empty())
	env.Empty(r.Mesh().Vertices)
	env.Empty(r.Mesh().Triangles)
	env.Require().NoError(r.SetText("   \t", white))
	env.True(r.Empty(), "spaces produce no geometry")
}

func (env *LayoutTestEnviron) TestIdempotence() {
	p := DefaultParams()
	p.Width = 120
	p.Align = AlignCenter
	r := env.renderer(p)
	text := "Hello, World\nあ国 again"
	colors := make([]color.RGBA, len([]rune(text)))
	for i := range colors {
		colors[i] = color.RGBA{uint8(i * 10), 0, 0, 255}
	}
	env.Require().NoError(r.SetTextColors(text, colors))
	first := cloneMesh(r.Mesh())
	env.Require().NoError(r.SetTextColors(text, colors))
	env.Equal(first, *r.Mesh())
}

func (env *LayoutTestEnviron) TestWordWrap() {
	p := DefaultParams()
	p.Width = 80
	r := env.renderer(p)
	env.Require().NoError(r.SetText("AB CD", white))
	m := r.Mesh()
	env.Require().Equal(4, m.QuadCount())
	env.InDelta(-10, topLeft(m, 0)[1], delta)
	env.InDelta(-10, topLeft(m, 1)[1], delta)
	env.InDelta(1, topLeft(m, 2)[0], delta, "word moved to start of next line")
	env.InDelta(-42, topLeft(m, 2)[1], delta)
	env.InDelta(17, topLeft(m, 3)[0], delta)
	env.InDelta(-42, topLeft(m, 3)[1], delta)
}

func (env *LayoutTestEnviron) TestWideCharacterWrap() {
	p := DefaultParams()
	p.Width = 80
	r := env.renderer(p)
	env.Require().NoError(r.SetText("AB国国", white))
	m := r.Mesh()
	env.Require().Equal(4, m.QuadCount())
	env.InDelta(33, topLeft(m, 2)[0], delta, "first wide glyph stays on the line")
	env.InDelta(-2, topLeft(m, 2)[1], delta)
	env.InDelta(1, topLeft(m, 3)[0], delta, "second wide glyph wraps alone")
	env.InDelta(-34, topLeft(m, 3)[1], delta)
	env.InDelta(1, topLeft(m, 0)[0], delta)
	env.InDelta(-10, topLeft(m, 0)[1], delta)
	//
	p.Width = 40
	r = env.renderer(p)
	env.Require().NoError(r.SetText("国AB", white))
	m = r.Mesh()
	env.Require().Equal(3, m.QuadCount())
	env.InDelta(-2, topLeft(m, 0)[1], delta)
	env.InDelta(1, topLeft(m, 1)[0], delta)
	env.InDelta(-42, topLeft(m, 1)[1], delta)
	env.InDelta(17, topLeft(m, 2)[0], delta)
	env.InDelta(-42, topLeft(m, 2)[1], delta)
}

func (env *LayoutTestEnviron) TestLongWordBreaks() {
	p := DefaultParams()
	p.Width = 40
	r := env.renderer(p)
	env.Require().NoError(r.SetText("ABCDEFGH", white))
	m := r.Mesh()
	env.Require().Equal(8, m.QuadCount())
	for q := 0; q < 8; q++ {
		line := float32(q / 2)
		env.InDelta(-10-32*line, topLeft(m, q)[1], delta, "quad %d", q)
		env.InDelta(1+16*float32(q%2), topLeft(m, q)[0], delta, "quad %d", q)
	}
}

func (env *LayoutTestEnviron) TestNoWrapWithoutWidth() {
	r := env.renderer(DefaultParams())
	env.Require().NoError(r.SetText("ABCDEFGHIJKLMNOPQRSTUVWXYZ", white))
	m := r.Mesh()
	env.Equal(float32(-30), m.Bounds.Min[1], "single line")
	env.Equal(float32(-10), m.Bounds.Max[1], "single line")
}

func (env *LayoutTestEnviron) TestAlignment() {
	cases := []struct {
		align       Align
		left, right float32
		size        float32
		expected    float32 // top-left x of first quad
	}{
		{AlignLeft, 0, 0, 0, 1},
		{AlignCenter, 0, 0, 0, 86},
		{AlignRight, 0, 0, 0, 171},
		{AlignLeft, 10, 20, 0, 11},
		{AlignCenter, 10, 20, 0, 81},
		{AlignRight, 10, 20, 0, 161},
		{AlignCenter, 0, 0, 64, 372},
		{AlignRight, 0, 0, 64, 742},
		{AlignCenter, 0, 0, 16, 18},
	}
	for _, c := range cases {
		p := DefaultParams()
		p.Align, p.LeftMargin, p.RightMargin, p.Size = c.align, c.left, c.right, c.size
		p.Width = 200
		if c.size != 0 {
			p.Width = 200 * c.size / 32
		}
		r := env.renderer(p)
		env.Require().NoError(r.SetText("AB", white))
		env.InDelta(c.expected, topLeft(r.Mesh(), 0)[0], delta, "%s alignment, margins %v/%v", c.align, c.left, c.right)
		scale := float32(1)
		if c.size != 0 {
			scale = c.size / 32
		}
		env.InDelta(30*scale, r.InkWidth(), delta)
	}
}

func (env *LayoutTestEnviron) TestAlignmentAfterWrap() {
	p := DefaultParams()
	p.Width = 80
	p.Align = AlignRight
	r := env.renderer(p)
	env.Require().NoError(r.SetText("AB CD", white))
	m := r.Mesh()
	env.Require().Equal(4, m.QuadCount())
	env.InDelta(30, r.InkWidth(), delta, "moved word must not widen the first line")
	env.InDelta(50, r.AlignOffset(), delta)
	env.InDelta(51, topLeft(m, 0)[0], delta)
	env.InDelta(51, topLeft(m, 2)[0], delta)
}

func (env *LayoutTestEnviron) TestScaling() {
	p := DefaultParams()
	p.Size = 16
	r := env.renderer(p)
	env.Require().NoError(r.SetText("M", white))
	m := r.Mesh()
	env.Equal(f32.Vec3{9.5, -5, 0}, m.Vertices[0])
	env.Equal(f32.Vec3{0.5, -15, 0}, m.Vertices[3])
	env.InDelta(10, r.Pen()[0], delta)
}

func (env *LayoutTestEnviron) TestMissingGlyphSkipped() {
	r := env.renderer(DefaultParams())
	env.Require().NoError(r.SetTextColors("A~B", []color.RGBA{red, green, blue}))
	m := r.Mesh()
	env.Require().Equal(2, m.QuadCount())
	env.Len(m.Triangles, 12)
	env.Equal([]uint32{4, 5, 6, 6, 5, 7}, m.Triangles[6:])
	env.InDelta(17, topLeft(m, 1)[0], delta, "missing glyph does not advance the pen")
	env.Equal(red, m.Colors[0])
	env.Equal(blue, m.Colors[4])
}

func (env *LayoutTestEnviron) TestColors() {
	r := env.renderer(DefaultParams())
	env.Require().NoError(r.SetTextColors("A国", []color.RGBA{red, blue}))
	m := r.Mesh()
	for i := 0; i < 4; i++ {
		env.Equal(red, m.Colors[i])
		env.Equal(blue, m.Colors[4+i])
	}
	before := cloneMesh(m)
	err := r.SetTextColors("AB国", []color.RGBA{red})
	env.True(errors.Is(err, ErrColorCount), "expected color count error, got %v", err)
	env.Equal(before, *r.Mesh(), "failed call must not touch the mesh")
}

func (env *LayoutTestEnviron) TestSpaces() {
	cases := []struct {
		text     string
		spacing  float32
		expected float32 // top-left x of second quad
	}{
		{"A B", 0, 37},
		{"A\tB", 0, 97},
		{"A　B", 0, 49},
		{"A B", 0.5, 53.5},
		{"A　B", 0.5, 32 + 48 + 1},
	}
	for _, c := range cases {
		p := DefaultParams()
		p.LetterSpacing = c.spacing
		r := env.renderer(p)
		env.Require().NoError(r.SetText(c.text, white))
		env.Require().Equal(2, r.Mesh().QuadCount())
		env.InDelta(c.expected, topLeft(r.Mesh(), 1)[0], delta, "text %q", c.text)
	}
}

func (env *LayoutTestEnviron) TestZeroWidthGlyph() {
	r := env.renderer(DefaultParams())
	env.Require().NoError(r.SetText("'", white))
	m := r.Mesh()
	env.Require().Equal(1, m.QuadCount())
	env.Equal(m.UV[0], m.UV[3], "zero sized glyph maps to a single texel position")
	env.InDelta(100.0/512, m.UV[0][0], delta)
	env.InDelta((256-40.0)/256, m.UV[0][1], delta)
}

// --- Helpers ---------------------------------------------------------------

func buildTestFont(t *testing.T) *bmf.Font {
	b := bmf.NewBuilder(32, 28, 512, 256, "test.png")
	b.Add('M', bmf.Metric{U: 0, V: 0, BearingX: 1, BearingY: 18, Width: 18, Height: 20, Advance: 20})
	u := int16(20)
	for _, r := range "ABCDEFGHIJKLNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz" {
		b.Add(r, bmf.Metric{U: u % 500, V: 0, BearingX: 1, BearingY: 18, Width: 14, Height: 20, Advance: 16})
		u += 16
	}
	for _, r := range ",.!?-" {
		b.Add(r, bmf.Metric{U: u % 500, V: 20, BearingX: 1, BearingY: 4, Width: 6, Height: 6, Advance: 8})
		u += 8
	}
	b.Add('\'', bmf.Metric{U: 100, V: 40, Advance: 4})
	for i, r := range []rune{'あ', '国'} {
		b.Add(r, bmf.Metric{U: int16(i * 32), V: 64, BearingX: 1, BearingY: 26, Width: 30, Height: 30, Advance: 32})
	}
	f, err := b.Build()
	if err != nil {
		t.Fatalf("cannot build test font: %v", err)
	}
	return f
}

func cloneMesh(m *Mesh) Mesh {
	return Mesh{
		Vertices:  append([]f32.Vec3(nil), m.Vertices...),
		UV:        append([]f32.Vec2(nil), m.UV...),
		Colors:    append([]color.RGBA(nil), m.Colors...),
		Triangles: append([]uint32(nil), m.Triangles...),
		Normals:   append([]f32.Vec3(nil), m.Normals...),
		Bounds:    m.Bounds,
	}
}

// fakeCache hands out a single font and records acquisitions and releases.
type fakeCache struct {
	font       *bmf.Font
	textureErr error
	dataRefs   int
	texRefs    int
	log        []string
}

func (c *fakeCache) LoadData(name string) (*bmf.Font, error) {
	c.dataRefs++
	c.log = append(c.log, "load data "+name)
	return c.font, nil
}

func (c *fakeCache) LoadTexture(p string) (*fontregistry.Texture, error) {
	if c.textureErr != nil {
		return nil, c.textureErr
	}
	c.texRefs++
	c.log = append(c.log, "load texture "+p)
	return &fontregistry.Texture{
		Name:   p,
		Width:  int(c.font.SheetWidth),
		Height: int(c.font.SheetHeight),
	}, nil
}

func (c *fakeCache) UnloadData(name string) {
	c.dataRefs--
	c.log = append(c.log, "unload data "+name)
}

func (c *fakeCache) UnloadTexture(p string) {
	c.texRefs--
	c.log = append(c.log, "unload texture "+p)
}
