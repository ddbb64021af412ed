package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/bmtext/core"
	"github.com/npillmayer/bmtext/core/font/bmf"
	"github.com/npillmayer/bmtext/core/font/fontregistry"
	"github.com/npillmayer/bmtext/core/locate/resources"
	"github.com/npillmayer/bmtext/engine/textmesh"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// tracer traces with key 'bmtext.font'
func tracer() tracing.Trace {
	return tracing.Select("bmtext.font")
}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "demo.bmf", "Bitmap font to load")
	size := flag.Float64("size", 0, "Rendered text size, 0 for nominal size")
	width := flag.Float64("width", 0, "Box width for auto-wrap, 0 for no wrap")
	align := flag.String("align", "left", "Alignment [left|center|right]")
	flag.Parse()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":        "go",
		"trace.bmtext.font":      *tlevel,
		"trace.bmtext.resources": *tlevel,
		"trace.bmtext.text":      *tlevel,
		"font-path":              ".",
		"image-path":             ".",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	pterm.Info.Println("Welcome to the bitmap font CLI") // colored welcome message
	tracer().Infof("Trace level is %s", *tlevel)
	//
	params := textmesh.DefaultParams()
	params.Size, params.Width = float32(*size), float32(*width)
	a, err := textmesh.ParseAlign(*align)
	if err != nil {
		core.UserError(err)
		os.Exit(2)
	}
	params.Align = a
	//
	// set up REPL
	repl, err := readline.New("bmf > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer repl.Close()
	intp := &Intp{
		repl:     repl,
		registry: fontregistry.NewRegistry(resources.NewLoader(conf)),
	}
	//
	// load font to use
	if err := intp.loadFont(*fontname, params); err != nil { // font name provided by flag
		core.UserError(err)
		os.Exit(4)
	}
	defer intp.renderer.Close()
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.REPL()                             // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	repl     *readline.Instance
	registry *fontregistry.Registry
	font     *bmf.Font
	texture  *fontregistry.Texture
	renderer *textmesh.Renderer
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd := parseCommand(line)
		quit, err := intp.execute(cmd)
		if err != nil {
			tracer().Debugf("command failed: %v", err)
			pterm.Error.Println(userMessage(err))
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// Op is a single interpreter command with its argument.
type Op struct {
	code int
	arg  string
}

// Interpreter op-codes
const (
	QUIT int = iota
	HELP
	INFO
	GLYPH
	LIST
	LAYOUT
	MEASURE
	DRAW
)

// parseCommand splits a line at the first colon, e.g. "glyph:Ab" or
// "layout:Hello World". Everything after the colon is the argument.
func parseCommand(line string) Op {
	name, arg := line, ""
	if i := strings.IndexByte(line, ':'); i >= 0 {
		name, arg = line[:i], line[i+1:]
	}
	op := Op{arg: arg}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "quit", "exit":
		op.code = QUIT
	case "info":
		op.code = INFO
	case "glyph", "glyphs":
		op.code = GLYPH
	case "list":
		op.code = LIST
	case "layout":
		op.code = LAYOUT
	case "measure":
		op.code = MEASURE
	case "draw":
		op.code = DRAW
	default:
		op.code = HELP
	}
	tracer().Debugf("parse command = %v", op)
	return op
}

func (intp *Intp) execute(op Op) (bool, error) {
	switch op.code {
	case QUIT:
		return true, nil
	case HELP:
		help()
	case INFO:
		intp.info()
	case GLYPH:
		return false, intp.glyphs(op.arg)
	case LIST:
		return false, intp.list(op.arg)
	case LAYOUT:
		return false, intp.layout(op.arg)
	case MEASURE:
		intp.measure(op.arg)
	case DRAW:
		return false, intp.draw(op.arg)
	}
	return false, nil
}

func (intp *Intp) loadFont(fontname string, params textmesh.Params) (err error) {
	intp.renderer, err = textmesh.New(intp.registry, nil, fontname, params)
	if err != nil {
		return err
	}
	intp.font = intp.renderer.Font()
	intp.texture = intp.renderer.Material()
	tracer().Infof("loaded bitmap font %s with %d glyphs", fontname, intp.font.Len())
	intp.registry.LogCacheList()
	return nil
}

func (intp *Intp) info() {
	f := intp.font
	groups := 0
	for first := 0; first < 256; first++ {
		if len(f.Group(uint8(first))) > 0 {
			groups++
		}
	}
	pterm.Printfln("font size   = %d", f.FontSize)
	pterm.Printfln("ascent      = %d", f.FontAscent)
	pterm.Printfln("glyphs      = %d in %d groups", f.Len(), groups)
	pterm.Printfln("sheet       = %d x %d", f.SheetWidth, f.SheetHeight)
	pterm.Printfln("texture     = %s (%d x %d)", f.TextureName, intp.texture.Width, intp.texture.Height)
	pterm.Printfln("layout      = %+v", intp.renderer.Params())
}

func (intp *Intp) glyphs(chars string) error {
	if chars == "" {
		return fmt.Errorf("usage: glyph:<characters>")
	}
	data := pterm.TableData{metricHeader()}
	for _, r := range chars {
		m, ok := intp.font.LookupRune(r)
		if !ok {
			pterm.Error.Printfln("no glyph for %#U", r)
			continue
		}
		data = append(data, metricRow(m))
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func (intp *Intp) list(arg string) error {
	if arg == "" {
		data := pterm.TableData{{"group", "index", "glyphs", "first", "last"}}
		for first := 0; first < 256; first++ {
			g := intp.font.Group(uint8(first))
			if len(g) == 0 {
				continue
			}
			data = append(data, []string{
				fmt.Sprintf("%02X", first),
				strconv.Itoa(int(intp.font.Index[first])),
				strconv.Itoa(len(g)),
				fmt.Sprintf("%#U", rune(g[0].Code())),
				fmt.Sprintf("%#U", rune(g[len(g)-1].Code())),
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}
	first, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(arg), "0x"), 16, 8)
	if err != nil {
		return fmt.Errorf("group must be a hex byte, e.g. list:30, got %q", arg)
	}
	g := intp.font.Group(uint8(first))
	if len(g) == 0 {
		pterm.Printfln("group %02X is empty", first)
		return nil
	}
	data := pterm.TableData{metricHeader()}
	for _, m := range g {
		data = append(data, metricRow(m))
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func (intp *Intp) layout(text string) error {
	text = strings.ReplaceAll(text, `\n`, "\n")
	if err := intp.renderer.SetText(text, color.RGBA{255, 255, 255, 255}); err != nil {
		return err
	}
	mesh := intp.renderer.Mesh()
	data := pterm.TableData{{"quad", "x0", "y0", "x1", "y1", "u0", "v0", "u1", "v1"}}
	for q := 0; q < mesh.QuadCount(); q++ {
		tr, bl := mesh.Vertices[4*q], mesh.Vertices[4*q+3]
		uvtr, uvbl := mesh.UV[4*q], mesh.UV[4*q+3]
		data = append(data, []string{
			strconv.Itoa(q),
			ftoa(bl[0]), ftoa(tr[1]), ftoa(tr[0]), ftoa(bl[1]),
			ftoa(uvbl[0]), ftoa(uvtr[1]), ftoa(uvtr[0]), ftoa(uvbl[1]),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}
	pen := intp.renderer.Pen()
	pterm.Printfln("%d quads, %d triangles", mesh.QuadCount(), len(mesh.Triangles)/3)
	pterm.Printfln("ink width = %s, align offset = %s, pen = (%s, %s)",
		ftoa(intp.renderer.InkWidth()), ftoa(intp.renderer.AlignOffset()), ftoa(pen[0]), ftoa(pen[1]))
	pterm.Printfln("bounds = %v", mesh.Bounds)
	return nil
}

func (intp *Intp) measure(text string) {
	face := bmf.NewFace(intp.font, intp.texture.Image)
	advance := font.MeasureString(face, text)
	bounds, _ := font.BoundString(face, text)
	pterm.Printfln("advance = %d design units", advance.Round())
	pterm.Printfln("ink box = (%d,%d)-(%d,%d)",
		bounds.Min.X.Round(), bounds.Min.Y.Round(), bounds.Max.X.Round(), bounds.Max.Y.Round())
}

// draw renders text into a PNG image, using the texture sheet as glyph masks.
func (intp *Intp) draw(arg string) error {
	text, out := arg, "bmfcli.png"
	if i := strings.LastIndexByte(arg, ':'); i >= 0 && strings.HasSuffix(strings.ToLower(arg), ".png") {
		text, out = arg[:i], arg[i+1:]
	}
	face := bmf.NewFace(intp.font, intp.texture.Image)
	w := font.MeasureString(face, text).Ceil() + 2
	h := int(intp.font.FontSize) + 2
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)
	d := font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(1, 1+int(intp.font.FontAscent)),
	}
	d.DrawString(text)
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return err
	}
	pterm.Printfln("wrote %s (%d x %d)", out, w, h)
	return nil
}

// userMessage prefers the message of an application error over the error
// text. Plain errors carry no user message and are printed as they are.
func userMessage(err error) string {
	if core.Code(err) == core.EINTERNAL {
		return err.Error()
	}
	if msg := core.UserMessage(err); msg != "" {
		return msg
	}
	return err.Error()
}

func metricHeader() []string {
	return []string{"code", "u", "v", "bx", "by", "w", "h", "adv", "prev", "next"}
}

func metricRow(m bmf.Metric) []string {
	return []string{
		fmt.Sprintf("%#U", rune(m.Code())),
		strconv.Itoa(int(m.U)), strconv.Itoa(int(m.V)),
		strconv.Itoa(int(m.BearingX)), strconv.Itoa(int(m.BearingY)),
		strconv.Itoa(int(m.Width)), strconv.Itoa(int(m.Height)),
		strconv.Itoa(int(m.Advance)),
		strconv.Itoa(int(m.PrevNum)), strconv.Itoa(int(m.NextNum)),
	}
}

func ftoa(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', 3, 32)
}

func help() {
	pterm.Info.Println("Commands")
	pterm.Println(`
	info              font header, glyph count and texture
	glyph:<chars>     metrics of the glyphs for some characters
	list              glyph groups (by high byte of the code point)
	list:<hex>        metrics of all glyphs of a group, e.g. list:30
	layout:<text>     lay out text and print the quads ('\n' starts a new line)
	measure:<text>    advance and ink box of text in design units
	draw:<text>[:<file.png>]  render text into a PNG image
	quit              leave the CLI
	`)
}
