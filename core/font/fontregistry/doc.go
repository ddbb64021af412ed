/*
Package fontregistry manages a reference-counted cache for bitmap font data and
texture sheets.

Every successful LoadData or LoadTexture increments a reference count and has to
be balanced by exactly one UnloadData or UnloadTexture. Entries are evicted as
soon as their count drops to zero.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package fontregistry

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'bmtext.font'
func tracer() tracing.Trace {
	return tracing.Select("bmtext.font")
}
