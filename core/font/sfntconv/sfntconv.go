/*
Package sfntconv converts OpenType and TrueType fonts to typeface definitions.

Glyph outlines are read with golang.org/x/image/font/sfnt at a size of one
em per font unit, thus coordinates are identical to the font's design units.
The outlines are written with the Y axis pointing upwards and with the
operand order of typeface-JSON exporters, where curve commands carry their
end point first.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2025 Norbert Pillmayer <norbert@pillmayer.com>

*/
package sfntconv

import (
	"errors"
	"strconv"
	"strings"

	"github.com/npillmayer/facetype/core"
	"github.com/npillmayer/facetype/core/font/typeface"
	"github.com/npillmayer/schuko/tracing"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// tracer writes to trace with key 'facetype.fonts'
func tracer() tracing.Trace {
	return tracing.Select("facetype.fonts")
}

// DefaultCharset is the set of characters converted if clients do not
// specify one: printable ASCII and Latin-1.
var DefaultCharset = func() string {
	var sb strings.Builder
	for r := rune(0x20); r < 0x7f; r++ {
		sb.WriteRune(r)
	}
	for r := rune(0xa0); r <= 0xff; r++ {
		sb.WriteRune(r)
	}
	return sb.String()
}()

// ConvertBytes parses a binary font and converts it. See Convert.
func ConvertBytes(src []byte, charset string) (*typeface.Typeface, error) {
	f, err := sfnt.Parse(src)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot parse font")
	}
	return Convert(f, charset)
}

// Convert creates a typeface definition for all characters of charset which
// are covered by font f. If charset is empty, DefaultCharset is used.
// Characters not covered by f are silently skipped.
func Convert(f *sfnt.Font, charset string) (*typeface.Typeface, error) {
	if charset == "" {
		charset = DefaultCharset
	}
	var buf sfnt.Buffer
	upem := f.UnitsPerEm()
	ppem := fixed.I(int(upem)) // 1 unit per pixel
	metrics, err := f.Metrics(&buf, ppem, xfont.HintingNone)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot read font metrics")
	}
	tf := &typeface.Typeface{
		Ascender:   units(metrics.Ascent),
		Descender:  -units(metrics.Descent),
		Resolution: float64(upem),
		Glyphs:     make(map[string]typeface.Glyph),
	}
	tf.FamilyName, _ = f.Name(&buf, sfnt.NameIDFamily)
	subfamily, _ := f.Name(&buf, sfnt.NameIDSubfamily)
	tf.CSSFontStyle, tf.CSSFontWeight = "normal", "normal"
	if strings.Contains(strings.ToLower(subfamily), "bold") {
		tf.CSSFontWeight = "bold"
	}
	if post := f.PostTable(); post != nil {
		tf.UnderlinePosition = float64(post.UnderlinePosition)
		tf.UnderlineThickness = float64(post.UnderlineThickness)
		if post.ItalicAngle != 0 {
			tf.CSSFontStyle = "italic"
		}
	}
	if b, err := f.Bounds(&buf, ppem, xfont.HintingNone); err == nil {
		tf.BoundingBox = &typeface.BoundingBox{
			XMin: units(b.Min.X), YMin: units(-b.Max.Y),
			XMax: units(b.Max.X), YMax: units(-b.Min.Y),
		}
	}
	skipped := 0
	for _, r := range charset {
		gi, err := f.GlyphIndex(&buf, r)
		if err != nil || gi == 0 {
			skipped++
			continue
		}
		g, err := convertGlyph(f, &buf, gi, ppem)
		if err != nil {
			if errors.Is(err, sfnt.ErrColoredGlyph) {
				skipped++
				continue
			}
			return nil, core.WrapError(err, core.EINVALID, "cannot convert glyph for %q", r)
		}
		tf.Glyphs[string(r)] = g
	}
	tracer().Infof("converted font %s: %d glyphs, %d characters skipped",
		tf.FamilyName, len(tf.Glyphs), skipped)
	return tf, tf.Validate()
}

func convertGlyph(f *sfnt.Font, buf *sfnt.Buffer, gi sfnt.GlyphIndex, ppem fixed.Int26_6) (typeface.Glyph, error) {
	g := typeface.Glyph{}
	bounds, adv, err := f.GlyphBounds(buf, gi, ppem, xfont.HintingNone)
	if err != nil {
		return g, err
	}
	g.HorizontalAdvance = units(adv)
	g.XMin, g.XMax = units(bounds.Min.X), units(bounds.Max.X)
	segs, err := f.LoadGlyph(buf, gi, ppem, nil)
	if err != nil {
		return g, err
	}
	g.Outline = outlineString(segs)
	return g, nil
}

// outlineString writes segments as an outline command string. Every
// contour is closed explicitly.
func outlineString(segs sfnt.Segments) string {
	var sb strings.Builder
	open := false
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				sb.WriteString("z ")
			}
			open = true
			sb.WriteString("m ")
			point(&sb, seg.Args[0])
		case sfnt.SegmentOpLineTo:
			sb.WriteString("l ")
			point(&sb, seg.Args[0])
		case sfnt.SegmentOpQuadTo:
			sb.WriteString("q ")
			point(&sb, seg.Args[1])
			point(&sb, seg.Args[0])
		case sfnt.SegmentOpCubeTo:
			sb.WriteString("b ")
			point(&sb, seg.Args[2])
			point(&sb, seg.Args[0])
			point(&sb, seg.Args[1])
		}
	}
	if open {
		sb.WriteString("z")
	}
	return strings.TrimSpace(sb.String())
}

// point writes a coordinate pair, flipping the Y axis.
func point(sb *strings.Builder, p fixed.Point26_6) {
	sb.WriteString(strconv.FormatFloat(units(p.X), 'f', -1, 64))
	sb.WriteByte(' ')
	sb.WriteString(strconv.FormatFloat(units(-p.Y), 'f', -1, 64))
	sb.WriteByte(' ')
}

func units(x fixed.Int26_6) float64 {
	return float64(x) / 64
}
