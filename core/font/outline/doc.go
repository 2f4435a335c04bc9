/*
Package outline converts glyph outlines of typeface definitions into polygons.

An outline is a string of path commands (see package typeface). Vectorizing
an outline happens in three steps:

1. Parsing: the command string is split into sub-paths, each consisting of
lines, quadratic and cubic Bézier segments.

2. Flattening: every sub-path is sampled at equal arc length distances. The
number of samples depends on the length of the sub-path and on the font scale,
keeping the absolute segment length proportional to the scale and thus the
visual fidelity constant.

3. Classification: each flattened ring is either an outer boundary, starting
a new polygon, or a hole, which is attached to the most recently started
polygon. Clockwise rings are outer boundaries.

The result is simplified by a Simplifier before it is handed to clients.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2025 Norbert Pillmayer <norbert@pillmayer.com>

*/
package outline

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'facetype.fonts'
func tracer() tracing.Trace {
	return tracing.Select("facetype.fonts")
}
