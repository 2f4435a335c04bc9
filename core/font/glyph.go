package font

import (
	"errors"

	"github.com/npillmayer/facetype/core/font/typeface"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrMissingGlyph is returned for characters which neither the font nor
// the font's fallback glyph can represent.
var ErrMissingGlyph = errors.New("missing glyph")

// Glyph is the vectorized outline of a character at a typecase's scale.
// Glyphs are shared between clients and must not be modified.
type Glyph struct {
	Char       string              // character this glyph has been requested for
	Geometry   orb.MultiPolygon    // outline, scaled, in glyph space
	Advance    float64             // horizontal advance, scaled
	MidY       float64             // vertical middle, scaled
	Scale      float64             // scale of the typecase
	Resolution typeface.Resolution // Found or Fallback
}

// Feature returns the glyph as a GeoJSON feature. The geometry is a copy.
// Properties are
//
//	char    the character
//	hadv    horizontal advance
//	midY    vertical middle
//	scale   scale of the typecase
func (g *Glyph) Feature() *geojson.Feature {
	f := geojson.NewFeature(orb.Clone(g.Geometry))
	f.Properties["char"] = g.Char
	f.Properties["hadv"] = g.Advance
	f.Properties["midY"] = g.MidY
	f.Properties["scale"] = g.Scale
	return f
}

// GlyphFromFeature is the inverse of Glyph.Feature. Features without a
// multi-polygon geometry result in an empty glyph geometry.
func GlyphFromFeature(f *geojson.Feature) *Glyph {
	g := &Glyph{
		Char:    f.Properties.MustString("char", ""),
		Advance: f.Properties.MustFloat64("hadv", 0),
		MidY:    f.Properties.MustFloat64("midY", 0),
		Scale:   f.Properties.MustFloat64("scale", 1),
	}
	g.Geometry, _ = f.Geometry.(orb.MultiPolygon)
	if g.Geometry == nil {
		g.Geometry = orb.MultiPolygon{}
	}
	return g
}
