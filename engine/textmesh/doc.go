/*
Package textmesh lays out text with a bitmap font and builds a quad mesh for it.

A Renderer owns a mesh of textured quads, one per visible character. Positions
are computed in font design units, starting at the left margin on the font's
ascent line and moving down (negative y) from line to line, then scaled to the
requested size. Every call to SetText rebuilds the mesh from scratch.

Layout rules

Newlines start a new line. Spaces, tabs and ideographic spaces move the pen
without producing geometry. Characters without a glyph in the font are
skipped and do not move the pen.

If a box width is set, a character that would cross the right margin moves to
the next line. For runs of ASCII letters the whole run moves, so words are not
split, unless the word already starts the line.

After layout, the text block is aligned within the box width.

A Renderer is not safe for concurrent use. Readers must not access the mesh
while SetText is in progress.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package textmesh

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'bmtext.text'
func tracer() tracing.Trace {
	return tracing.Select("bmtext.text")
}
