package labeling

import (
	"errors"
	"fmt"
	"math"

	"github.com/npillmayer/facetype/core"
	"github.com/npillmayer/facetype/core/font"
	"github.com/npillmayer/facetype/core/measure"
	"github.com/npillmayer/facetype/core/projection"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// ErrFinalized is returned when glyphs are added to a finished label.
var ErrFinalized = errors.New("label is finalized")

// DefaultExtent is the length in meters of the line synthesized by
// FromPosition, if no positive extent is given.
const DefaultExtent = 100000.0

// LabelLine is a line to set a label along, in a spatial reference system.
type LabelLine struct {
	Coords orb.LineString
	SRS    projection.SRS
}

// Validate checks that a label line has at least two distinct points.
func (line LabelLine) Validate() error {
	if len(line.Coords) < 2 {
		return core.Error(core.EINVALID, "label line needs at least 2 points, has %d", len(line.Coords))
	}
	first := line.Coords[0]
	for _, p := range line.Coords[1:] {
		if !p.Equal(first) {
			return nil
		}
	}
	return core.Error(core.EINVALID, "label line has zero length")
}

// State is the life-cycle state of a placer.
type State int8

// A placer is Empty until it accepts the first glyph, and Finalized after
// Label has been called.
const (
	Empty State = iota
	Accumulating
	Finalized
)

func (s State) String() string {
	switch s {
	case Accumulating:
		return "accumulating"
	case Finalized:
		return "finalized"
	}
	return "empty"
}

// Placer sets glyphs along a label line. It implements font.GlyphSetter.
// A Placer is not safe for concurrent use.
type Placer struct {
	line     LabelLine
	target   projection.SRS // rendering system glyphs are placed in
	svc      projection.Service
	sampler  measure.Sampler
	length   float64 // length of the label line, in units of sampler
	adv      float64 // advance multiplier
	distance float64 // distance along the line, in units of sampler
	state    State
	output   orb.MultiPolygon
	label    *geojson.Feature
}

// AlongLine creates a placer for a label line. Glyphs are assumed to be
// given in units of target. adv is a multiplier for glyph advances, where
// 1 is the natural advance of a font. If svc is nil, projection.Default
// is used.
func AlongLine(line LabelLine, target projection.SRS, adv float64, svc projection.Service) (*Placer, error) {
	if err := line.Validate(); err != nil {
		return nil, err
	}
	if adv <= 0 || math.IsNaN(adv) || math.IsInf(adv, 0) {
		return nil, core.Error(core.EINVALID, "advance multiplier must be positive, is %g", adv)
	}
	if svc == nil {
		svc = projection.Default()
	}
	unit, _, err := svc.UnitAndScale(line.SRS)
	if err != nil {
		return nil, err
	}
	if _, err = svc.Project(line.Coords[0], line.SRS, target); err != nil {
		return nil, err
	}
	p := &Placer{
		line:    line,
		target:  target,
		svc:     svc,
		sampler: measure.For(unit),
		adv:     adv,
		output:  orb.MultiPolygon{},
	}
	p.length = p.sampler.Length(line.Coords)
	tracer().Debugf("label line of length %g %s in %s, rendering in %s",
		p.length, unit, line.SRS, target)
	return p, nil
}

// FromPosition creates a placer for a horizontal label line starting at
// position pos. The line extends for extent meters to the east. For
// geographic systems the line follows the parallel of pos.
func FromPosition(pos orb.Point, srs projection.SRS, extent float64, target projection.SRS,
	adv float64, svc projection.Service) (*Placer, error) {
	//
	if svc == nil {
		svc = projection.Default()
	}
	if extent <= 0 {
		extent = DefaultExtent
	}
	unit, scale, err := svc.UnitAndScale(srs)
	if err != nil {
		return nil, err
	}
	var coords orb.LineString
	if unit.Spherical() {
		const steps = 100
		cos := math.Cos(pos[1] * math.Pi / 180)
		if cos < 1e-9 {
			return nil, core.Error(core.EINVALID, "cannot extend label line from pole %v", pos)
		}
		dlon := extent / (scale * cos)
		coords = make(orb.LineString, 0, steps+1)
		for i := 0; i <= steps; i++ {
			coords = append(coords, orb.Point{pos[0] + dlon*float64(i)/steps, pos[1]})
		}
	} else {
		coords = orb.LineString{pos, {pos[0] + extent/scale, pos[1]}}
	}
	return AlongLine(LabelLine{Coords: coords, SRS: srs}, target, adv, svc)
}

// State returns the life-cycle state of the placer.
func (p *Placer) State() State {
	return p.state
}

// Distance is the distance along the label line consumed so far, in the
// line's unit of measure.
func (p *Placer) Distance() float64 {
	return p.distance
}

// Length is the length of the label line, in the line's unit of measure.
func (p *Placer) Length() float64 {
	return p.length
}

// Unit is the unit of measure of the label line.
func (p *Placer) Unit() measure.Unit {
	return p.sampler.Unit()
}

// CalculateAdvance returns the advance of a glyph, without placing it.
func (p *Placer) CalculateAdvance(g *font.Glyph) float64 {
	return g.Advance * p.adv
}

// AcceptGlyph places the next glyph at the current position on the label
// line, oriented along the line.
//
// Distances beyond the end of the line are clamped, i.e. glyphs overflowing
// the line will pile up at its end point, oriented like the last segment.
func (p *Placer) AcceptGlyph(g *font.Glyph) error {
	if p.state == Finalized {
		return core.WrapError(ErrFinalized, core.EUSAGE, "cannot add glyph %q to a finalized label", g.Char)
	}
	a, err := p.pointAt(p.distance)
	if err != nil {
		return err
	}
	distance := p.distance
	var heading float64
	if g.Advance <= 0 {
		if heading, err = p.headingAt(distance); err != nil {
			return err
		}
	} else {
		b, err := p.pointAt(distance + g.Advance)
		if err != nil {
			return err
		}
		ratio := 1.0
		if dist := planar.Distance(a, b); dist > 0 {
			ratio = g.Advance / dist
		}
		distance += g.Advance * ratio * p.adv
		if b, err = p.pointAt(distance); err != nil {
			return err
		}
		if a.Equal(b) {
			heading, err = p.headingAt(distance)
			if err != nil {
				return err
			}
		} else {
			heading = math.Atan2(b[1]-a[1], b[0]-a[0])
		}
	}
	// commit only after every projection succeeded
	m := concat(translation(a[0], a[1]), concat(rotation(heading), translation(0, -g.MidY)))
	p.output = transform(m, g.Geometry, p.output)
	p.distance = distance
	p.state = Accumulating
	tracer().Debugf("placed glyph %q at %v, heading %.2f°, distance now %g",
		g.Char, a, heading*180/math.Pi, p.distance)
	return nil
}

// Label finishes the label and returns it as a GeoJSON feature, in the
// reference system of the label line. Properties are
//
//	srs     reference system of the geometry
//	unit    unit of measure of the label line
//	length  distance consumed along the label line
//
// After a call to Label no more glyphs may be added. Repeated calls return
// copies of the same label.
func (p *Placer) Label() (*geojson.Feature, error) {
	if p.label == nil {
		g, err := p.svc.Project(p.output, p.target, p.line.SRS)
		if err != nil {
			return nil, err
		}
		p.label = geojson.NewFeature(g)
		p.label.Properties["srs"] = string(p.line.SRS)
		p.label.Properties["unit"] = p.sampler.Unit().String()
		p.label.Properties["length"] = math.Min(p.distance, p.length)
		p.state = Finalized
	}
	f := geojson.NewFeature(orb.Clone(p.label.Geometry))
	f.Properties = p.label.Properties.Clone()
	return f, nil
}

// pointAt returns the point at distance d along the label line, in the
// rendering system.
func (p *Placer) pointAt(d float64) (orb.Point, error) {
	pt, err := p.sampler.Along(p.line.Coords, d)
	if err != nil {
		return pt, err
	}
	g, err := p.svc.Project(pt, p.line.SRS, p.target)
	if err != nil {
		return pt, err
	}
	return g.(orb.Point), nil
}

// headingAt returns the direction of the label line around distance d,
// in the rendering system. It samples a small stretch of the line around d.
func (p *Placer) headingAt(d float64) (float64, error) {
	delta := p.length * 1e-3
	lo, hi := math.Max(0, d-delta), math.Min(p.length, d+delta)
	if lo >= hi {
		lo = math.Max(0, hi-delta)
	}
	a, err := p.pointAt(lo)
	if err != nil {
		return 0, err
	}
	b, err := p.pointAt(hi)
	if err != nil {
		return 0, err
	}
	return math.Atan2(b[1]-a[1], b[0]-a[0]), nil
}

func (p *Placer) String() string {
	return fmt.Sprintf("placer[%s|%d polygons|%g/%g %s]", p.state, len(p.output),
		p.distance, p.length, p.sampler.Unit())
}

var _ font.GlyphSetter = &Placer{}
