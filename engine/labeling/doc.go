/*
Package labeling places glyphs along lines to form map labels.

A Placer walks along a label line, which is given in some spatial reference
system (e.g., WGS84 longitude/latitude). Glyphs live in a rendering system
(e.g., web mercator), where they are set upright and unscaled. For every
glyph the placer finds the line's position and heading in the rendering
system, then rotates and moves the glyph there. Advances along the line are
corrected for the distortion between the line's unit of measure and the
rendering system.

When all glyphs have been accepted, Label projects the resulting geometry
back into the reference system of the label line.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2025 Norbert Pillmayer <norbert@pillmayer.com>

*/
package labeling

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'facetype.labels'
func tracer() tracing.Trace {
	return tracing.Select("facetype.labels")
}
