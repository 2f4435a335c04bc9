/*
Package typeface models font definitions in typeface-JSON format.

Typeface-JSON is the format written by outline exporters like facetype.js
(and read by three.js' FontLoader). A font definition carries a few global
metrics plus a table of glyphs, keyed by character. Every glyph has a
horizontal advance ("ha") and an outline ("o"), which is a string of
whitespace separated path commands in font units with the Y axis pointing
upwards:

	m x y                   move to
	l x y                   line to
	q x y cx cy             quadratic curve to x,y with control point cx,cy
	b x y c1x c1y c2x c2y   cubic curve to x,y with control points c1 and c2
	z                       close path

Package typeface does not interpret outlines; see package outline for that.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2025 Norbert Pillmayer <norbert@pillmayer.com>

*/
package typeface

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/npillmayer/facetype/core"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'facetype.fonts'
func tracer() tracing.Trace {
	return tracing.Select("facetype.fonts")
}

// FallbackChar is the character substituted for characters missing from a
// font's glyph table.
const FallbackChar = "?"

// ErrNoGeometry is returned when decoding input which is valid JSON, but
// not a typeface definition.
var ErrNoGeometry = errors.New("not a typeface definition")

// Typeface is a font definition as written by typeface-JSON exporters.
type Typeface struct {
	FamilyName         string           `json:"familyName"`
	Ascender           float64          `json:"ascender"`
	Descender          float64          `json:"descender"`
	UnderlinePosition  float64          `json:"underlinePosition,omitempty"`
	UnderlineThickness float64          `json:"underlineThickness,omitempty"`
	Resolution         float64          `json:"resolution,omitempty"`
	BoundingBox        *BoundingBox     `json:"boundingBox,omitempty"`
	CSSFontWeight      string           `json:"cssFontWeight,omitempty"`
	CSSFontStyle       string           `json:"cssFontStyle,omitempty"`
	Glyphs             map[string]Glyph `json:"glyphs"`
}

// BoundingBox is the union of all glyph bounding boxes, in font units.
type BoundingBox struct {
	XMin float64 `json:"xMin"`
	YMin float64 `json:"yMin"`
	XMax float64 `json:"xMax"`
	YMax float64 `json:"yMax"`
}

// Glyph is a single glyph entry of a typeface.
type Glyph struct {
	HorizontalAdvance float64 `json:"ha"`
	XMin              float64 `json:"x_min"`
	XMax              float64 `json:"x_max"`
	Outline           string  `json:"o"`
}

// Resolution tells how a character has been resolved to a glyph.
type Resolution int8

// Results of resolving a character.
const (
	Missing  Resolution = iota // neither the character nor the fallback is present
	Found                      // the character itself is present
	Fallback                   // the fallback glyph has been substituted
)

func (r Resolution) String() string {
	switch r {
	case Found:
		return "found"
	case Fallback:
		return "fallback"
	}
	return "missing"
}

// Resolve looks up the glyph for a character. If the character is not
// contained in the glyph table, the glyph for FallbackChar is returned,
// together with a resolution of Fallback. If both are absent, Resolve
// returns an empty glyph and Missing.
func (tf *Typeface) Resolve(char string) (Glyph, Resolution) {
	if g, ok := tf.Glyphs[char]; ok {
		return g, Found
	}
	if g, ok := tf.Glyphs[FallbackChar]; ok {
		tracer().Debugf("typeface %s has no glyph for %q, substituting %q",
			tf.FamilyName, char, FallbackChar)
		return g, Fallback
	}
	return Glyph{}, Missing
}

// Decode reads a typeface definition from r.
//
// Input which is not JSON or does not carry a glyph table is rejected with
// an error of code EINVALID.
func Decode(r io.Reader) (*Typeface, error) {
	tf := &Typeface{}
	if err := json.NewDecoder(r).Decode(tf); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot decode typeface definition")
	}
	if err := tf.Validate(); err != nil {
		return nil, err
	}
	tracer().Debugf("decoded typeface %s with %d glyphs", tf.FamilyName, len(tf.Glyphs))
	return tf, nil
}

// Encode writes a typeface definition to w.
func Encode(w io.Writer, tf *Typeface) error {
	enc := json.NewEncoder(w)
	return enc.Encode(tf)
}

// Validate checks that a typeface carries geometry.
func (tf *Typeface) Validate() error {
	if tf == nil || tf.Glyphs == nil {
		return core.WrapError(ErrNoGeometry, core.EINVALID, "typeface definition has no glyph table")
	}
	for c, g := range tf.Glyphs {
		if g.HorizontalAdvance < 0 {
			return core.WrapError(ErrNoGeometry, core.EINVALID,
				"glyph %q has negative advance %g", c, g.HorizontalAdvance)
		}
	}
	return nil
}

func (tf *Typeface) String() string {
	return fmt.Sprintf("typeface[%s|%d glyphs]", tf.FamilyName, len(tf.Glyphs))
}
