package font

import (
	"sync"

	"github.com/npillmayer/uax/grapheme"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/text/unicode/norm"
)

// GlyphSetter places glyphs, one after the other, to form a label.
//
// Calls to AcceptGlyph must happen in text order. A GlyphSetter is not
// safe for concurrent use.
type GlyphSetter interface {
	AcceptGlyph(g *Glyph) error        // place the next glyph
	CalculateAdvance(g *Glyph) float64 // advance of g, without placing it
	Label() (*geojson.Feature, error)  // finish the label
}

var setupGraphemes sync.Once

// Characters splits a text into user-perceived characters (grapheme
// clusters), after normalizing it to NFC.
func Characters(text string) []string {
	if text == "" {
		return []string{}
	}
	setupGraphemes.Do(func() { grapheme.SetupGraphemeClasses() })
	text = norm.NFC.String(text)
	gstr := grapheme.StringFromString(text)
	l := gstr.Len()
	chars := make([]string, 0, l)
	for i := 0; i < l; i++ {
		chars = append(chars, gstr.Nth(i))
	}
	return chars
}

// LabelGeometry places the glyphs for text with setter and returns the
// resulting geometry. Setter is finished by this call.
func (tc *TypeCase) LabelGeometry(text string, setter GlyphSetter) (orb.MultiPolygon, error) {
	for _, char := range Characters(text) {
		g, err := tc.Glyph(char)
		if err != nil {
			return nil, err
		}
		if err = setter.AcceptGlyph(g); err != nil {
			return nil, err
		}
	}
	f, err := setter.Label()
	if err != nil {
		return nil, err
	}
	mp, _ := f.Geometry.(orb.MultiPolygon)
	return mp, nil
}

// LabelLength predicts the length of a label for text, as set by setter.
// Setter is not modified.
func (tc *TypeCase) LabelLength(text string, setter GlyphSetter) (float64, error) {
	length := 0.0
	for _, char := range Characters(text) {
		g, err := tc.Glyph(char)
		if err != nil {
			return 0, err
		}
		length += setter.CalculateAdvance(g)
	}
	return length, nil
}
