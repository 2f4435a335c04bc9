/*
Package fontregistry manages a registry for loaded fonts.

A registry loads fonts from a resources.Source, at most once per font name,
and hands out typecases for (font name, scale) pairs. Requests for the same
pair will return the same typecase, which in turn caches the glyphs it has
vectorized.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2025 Norbert Pillmayer <norbert@pillmayer.com>

*/
package fontregistry

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'facetype.fonts'
func tracer() tracing.Trace {
	return tracing.Select("facetype.fonts")
}
