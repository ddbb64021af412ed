/*
Package resources resolves font data files and texture sheets for an application.

As resource loading may be a time-consuming task, functions in this
package work in an async/await fashion by returning a promise.
Functions named

   Resolve…(…)

will return a resource-specific promise type, which the client will call later
to receive the loaded resource. The call to the promise-function will then block
until loading has completed.

Resources are searched for

▪︎ at the path given, if it denotes a file,

▪︎ in the directories listed in configuration key `font-path` (for font data)
or `image-path` (for sheets), separated by the OS list separator,

▪︎ in the user's cache directory, below the application key taken from
configuration key `app-key` (see StoreInCache),

▪︎ among the resources packaged with this module (a demo font),

▪︎ in the system's font directories (font data only).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'bmtext.resources'.
func tracer() tracing.Trace {
	return tracing.Select("bmtext.resources")
}
