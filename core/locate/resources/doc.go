/*
Package resources locates typeface definitions.

A Source loads a typeface definition given a font name. Sources may read
typeface-JSON files from a directory or from an HTTP service, convert
OpenType fonts installed on the system or fetched from the Google Fonts
service, or return the built-in fallback font. Sources are combined with
Chain and configured from an application configuration with
SourceFromConfig.

As resource loading may be a time-consuming task, loading may happen in an
async/await fashion. Functions named

   Resolve…(…)

will return a resource-specific promise type, which the client will call later
to receive the loaded resource. The call to the promise-function will then block
until loading has completed.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2025 Norbert Pillmayer <norbert@pillmayer.com>

*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'facetype.resources'.
func tracer() tracing.Trace {
	return tracing.Select("facetype.resources")
}
