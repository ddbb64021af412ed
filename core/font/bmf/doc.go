/*
Package bmf reads and queries bitmap font metric tables.

A bitmap font consists of a texture atlas ("sheet") and a compact binary table
describing where each glyph lives on the sheet and how it is placed relative to
the pen position. The table is laid out for a small memory footprint: a flat
array of 13-byte metric records sorted by character code, plus a coarse index
of 256 entries, one for each possible high byte of a 16-bit character code.

Binary Layout

All integers are little-endian.

	Header     fontSize, fontAscent, metricCount, sheetWidth, sheetHeight   5 × int16
	Index      256 × int16
	Metrics    metricCount × { int16 u, int16 v, int8 bearingX, int8 bearingY,
	                           uint8 width, uint8 height, uint8 advance,
	                           uint8 first, uint8 second, uint8 prevNum, uint8 nextNum }
	Texture    uvarint length, followed by the UTF-8 encoded file name of the sheet

A character code is split into First (high byte) and Second (low byte).
PrevNum and NextNum count the entries before and after a record which share its
First byte, so every record knows the bounds of its group.

Lookup

Lookup does not use a hash map. It guesses a position from the coarse index,
falls back to a binary search over the First bytes if the guess missed the group,
and finally does a binary search on the Second bytes inside the group.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package bmf

import (
	"github.com/npillmayer/bmtext/core"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'bmtext.font'
func tracer() tracing.Trace {
	return tracing.Select("bmtext.font")
}

func errFontFormat(format string, v ...interface{}) error {
	return core.Error(core.EINVALID, "bitmap font format: "+format, v...)
}
