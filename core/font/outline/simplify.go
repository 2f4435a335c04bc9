package outline

import (
	"strings"

	"github.com/npillmayer/facetype/core"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// Simplifier reduces the number of vertices of a glyph's geometry.
//
// Implementations may modify mp in place. They must neither change the
// orientation of a ring nor let a ring degenerate to less than 4 points.
type Simplifier interface {
	Simplify(mp orb.MultiPolygon, tolerance float64) orb.MultiPolygon
}

// Names of simplification methods, for configuration.
const (
	DouglasPeucker = "douglas-peucker"
	Visvalingam    = "visvalingam"
	Radial         = "radial"
	NoSimplify     = "none"
)

// NewSimplifier creates a topology preserving simplifier for a named
// method. An empty name selects DouglasPeucker.
func NewSimplifier(method string) (Simplifier, error) {
	switch strings.ToLower(method) {
	case "", DouglasPeucker:
		return ringwise(func(tol float64) orb.Simplifier {
			return simplify.DouglasPeucker(tol)
		}), nil
	case Visvalingam: // tolerance is a distance, Visvalingam expects an area
		return ringwise(func(tol float64) orb.Simplifier {
			return simplify.VisvalingamThreshold(tol * tol)
		}), nil
	case Radial:
		return ringwise(func(tol float64) orb.Simplifier {
			return simplify.Radial(planar.Distance, tol)
		}), nil
	case NoSimplify:
		return noSimplifier{}, nil
	}
	return nil, core.Error(core.EINVALID, "unknown simplification method %q", method)
}

// ringwise applies an orb simplifier to each ring separately, keeping
// the unsimplified ring whenever simplification would break it.
type ringwise func(tolerance float64) orb.Simplifier

func (rw ringwise) Simplify(mp orb.MultiPolygon, tolerance float64) orb.MultiPolygon {
	if tolerance <= 0 {
		return mp
	}
	s := rw(tolerance)
	for _, poly := range mp {
		for i, r := range poly {
			simple := s.Ring(r.Clone())
			if len(simple) < 4 || simple.Orientation() != r.Orientation() {
				continue
			}
			poly[i] = simple
		}
	}
	return mp
}

type noSimplifier struct{}

func (noSimplifier) Simplify(mp orb.MultiPolygon, tolerance float64) orb.MultiPolygon {
	return mp
}
