/*
Package font is for vector fonts and their glyph geometry.

We will stick to the following definitions:

* A "scalable font" is a typeface definition in font units, as loaded
from a typeface-JSON file or converted from an OpenType font. An example
is "Noto Serif bold".

* A "typecase" is a scaled font, i.e. a font at a fixed linear scale,
producing polygon geometry for glyphs. The name is reminiscent of the
wooden boxes of typesetters in the era of metal type.

Typecases vectorize glyphs lazily and hold on to the geometry for their
lifetime. Typecases are immutable apart from their glyph cache and may
be shared between goroutines.

Placing glyphs along lines is delegated to a GlyphSetter; package labeling
provides one.

----------------------------------------------------------------------

BSD License

Copyright (c) 2017-25, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software nor the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE. */
package font

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"

	"github.com/npillmayer/facetype/core"
	"github.com/npillmayer/facetype/core/font/outline"
	"github.com/npillmayer/facetype/core/font/sfntconv"
	"github.com/npillmayer/facetype/core/font/typeface"
	"github.com/npillmayer/schuko/tracing"
	"github.com/paulmach/orb"
	"golang.org/x/image/font/gofont/goregular"
)

// tracer writes to trace with key 'facetype.fonts'
func tracer() tracing.Trace {
	return tracing.Select("facetype.fonts")
}

// ScalableFont is a typeface definition together with information about
// its origin.
type ScalableFont struct {
	Fontname string
	Filepath string // file path or URL, if any
	Typeface *typeface.Typeface
}

// LoadTypefaceFont reads a typeface-JSON file.
func LoadTypefaceFont(fontfile string) (*ScalableFont, error) {
	f, err := os.Open(fontfile)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot open font file %s", fontfile)
	}
	defer f.Close()
	tf, err := typeface.Decode(f)
	if err != nil {
		return nil, err
	}
	return &ScalableFont{Fontname: tf.FamilyName, Filepath: fontfile, Typeface: tf}, nil
}

// LoadOpenTypeFont reads an OpenType or TrueType font file and converts
// the characters of charset (see package sfntconv).
func LoadOpenTypeFont(fontfile string, charset string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font file %s", fontfile)
	}
	tf, err := sfntconv.ConvertBytes(bytez, charset)
	if err != nil {
		return nil, err
	}
	return &ScalableFont{Fontname: tf.FamilyName, Filepath: fontfile, Typeface: tf}, nil
}

// PrepareCase creates a typecase for a scale factor. opts may be nil, in
// which case outline.DefaultOptions are used.
func (sf *ScalableFont) PrepareCase(scale float64, opts *outline.Options) (*TypeCase, error) {
	if sf == nil || sf.Typeface == nil {
		return nil, core.Error(core.EINVALID, "cannot prepare typecase from empty font")
	}
	if scale <= 0 {
		return nil, core.Error(core.EINVALID, "font scale must be positive, is %g", scale)
	}
	if opts == nil {
		opts = outline.DefaultOptions()
	}
	tc := &TypeCase{
		id:                 fmt.Sprintf("%016x", rand.Uint64()),
		scalableFontParent: sf,
		scale:              scale,
		opts:               opts,
		vectorize:          outline.Vectorize,
	}
	tf := sf.Typeface
	tc.midY = tf.Ascender*scale*0.5 + tf.Descender*scale
	return tc, nil
}

// TypeCase is a font at a fixed scale. It creates and caches glyphs.
type TypeCase struct {
	id                 string
	scalableFontParent *ScalableFont
	scale              float64
	midY               float64
	opts               *outline.Options
	glyphs             sync.Map // string -> *glyphEntry
	vectorize          func(string, float64, *outline.Options) (orb.MultiPolygon, error)
}

type glyphEntry struct {
	once  sync.Once
	glyph *Glyph
	err   error
}

// ID is an identifier unique to every typecase created.
func (tc *TypeCase) ID() string {
	return tc.id
}

// Name is the family name of the underlying font.
func (tc *TypeCase) Name() string {
	return tc.scalableFontParent.Fontname
}

// Scale is the factor from font units to output units.
func (tc *TypeCase) Scale() float64 {
	return tc.scale
}

// MidY is the offset of the vertical middle of lowercase letters from the
// baseline, in output units.
func (tc *TypeCase) MidY() float64 {
	return tc.midY
}

func (tc *TypeCase) ScalableFontParent() *ScalableFont {
	return tc.scalableFontParent
}

func (tc *TypeCase) String() string {
	return fmt.Sprintf("typecase[%s|%s@%g]", tc.id, tc.Name(), tc.scale)
}

// Glyph returns the glyph for a character, which may be a single code
// point or a grapheme cluster. Glyphs are created on first request and
// cached afterwards; concurrent requests for the same character will
// vectorize its outline only once.
//
// Characters missing from the font are substituted by the fallback glyph
// (see typeface.FallbackChar). If the font does not contain a fallback glyph
// either, ErrMissingGlyph is returned.
func (tc *TypeCase) Glyph(char string) (*Glyph, error) {
	e, _ := tc.glyphs.LoadOrStore(char, &glyphEntry{})
	entry := e.(*glyphEntry)
	entry.once.Do(func() {
		entry.glyph, entry.err = tc.makeGlyph(char)
	})
	return entry.glyph, entry.err
}

func (tc *TypeCase) makeGlyph(char string) (*Glyph, error) {
	tg, res := tc.scalableFontParent.Typeface.Resolve(char)
	if res == typeface.Missing {
		return nil, core.WrapError(ErrMissingGlyph, core.EMISSING,
			"font %s has neither a glyph for %q nor a fallback glyph", tc.Name(), char)
	}
	mp, err := tc.vectorize(tg.Outline, tc.scale, tc.opts)
	if err != nil {
		return nil, core.WrapError(err, core.Code(err), "cannot vectorize glyph for %q in font %s",
			char, tc.Name())
	}
	tracer().Debugf("%s: vectorized glyph %q (%s) into %d polygon(s)", tc, char, res, len(mp))
	return &Glyph{
		Char:       char,
		Geometry:   mp,
		Advance:    tg.HorizontalAdvance * tc.scale,
		MidY:       tc.midY,
		Scale:      tc.scale,
		Resolution: res,
	}, nil
}

// --- Fallback font ---------------------------------------------------------

// FallbackFont returns a font to be used if everything else failes. It is
// always present. Currently we use Go Sans, restricted to Latin-1.
func FallbackFont() *ScalableFont {
	fallbackFontLoading.Do(func() {
		fallbackFont = loadFallbackFont()
	})
	return fallbackFont
}

var fallbackFontLoading sync.Once

// fallbackFont is a font that is used if everything else failes.
var fallbackFont *ScalableFont

func loadFallbackFont() *ScalableFont {
	tf, err := sfntconv.ConvertBytes(goregular.TTF, "")
	if err != nil {
		panic("cannot load default font") // this cannot happen
	}
	tf.FamilyName = "Go Sans"
	return &ScalableFont{
		Fontname: "Go Sans",
		Filepath: "internal",
		Typeface: tf,
	}
}

// --- Names -----------------------------------------------------------------

// NormalizeFontname creates a canonical key for a font name: lowercase,
// without file extension and with blanks replaced by underscores.
func NormalizeFontname(fname string) string {
	fname = strings.TrimSpace(fname)
	fname = strings.ReplaceAll(fname, " ", "_")
	if dot := strings.LastIndex(fname, "."); dot > 0 {
		fname = fname[:dot]
	}
	fname = strings.ToLower(fname)
	return fname
}

// NormalizeTypeCaseName creates a canonical key for a font at a scale.
func NormalizeTypeCaseName(fname string, scale float64) string {
	fname = NormalizeFontname(fname)
	fname = fmt.Sprintf("%s-%g", fname, scale)
	return fname
}
