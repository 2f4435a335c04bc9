package outline

import (
	"strconv"

	"github.com/npillmayer/facetype/core"
	"github.com/npillmayer/schuko"
	"github.com/paulmach/orb"
)

// SegmentLengthFactor is the maximum length of a flattened segment, in
// font units. Multiplied by the font scale it yields the absolute
// segment length, thus keeping visual fidelity constant across scales.
const SegmentLengthFactor = 25.0

// SimplifyToleranceFactor is the simplification tolerance in font units.
// Multiplied by the font scale it yields the absolute tolerance.
const SimplifyToleranceFactor = 2.0

// Options control vectorization of outlines.
type Options struct {
	SegmentLength     float64    // max. segment length in font units
	SimplifyTolerance float64    // simplification tolerance in font units
	Simplifier        Simplifier // may be nil to skip simplification
}

// DefaultOptions returns options with SegmentLengthFactor, SimplifyToleranceFactor
// and a Douglas-Peucker simplifier.
func DefaultOptions() *Options {
	s, _ := NewSimplifier(DouglasPeucker)
	return &Options{
		SegmentLength:     SegmentLengthFactor,
		SimplifyTolerance: SimplifyToleranceFactor,
		Simplifier:        s,
	}
}

// OptionsFromConfig reads vectorization options from a configuration.
// Keys are
//
//	facetype.segment-length      max. segment length in font units
//	facetype.simplify-tolerance  simplification tolerance in font units
//	facetype.simplifier          one of "douglas-peucker", "visvalingam", "radial", "none"
//
// Unset keys fall back to DefaultOptions.
func OptionsFromConfig(conf schuko.Configuration) (*Options, error) {
	opts := DefaultOptions()
	if conf == nil {
		return opts, nil
	}
	var err error
	if conf.IsSet("facetype.segment-length") {
		if opts.SegmentLength, err = positive(conf, "facetype.segment-length"); err != nil {
			return nil, err
		}
	}
	if conf.IsSet("facetype.simplify-tolerance") {
		if opts.SimplifyTolerance, err = positive(conf, "facetype.simplify-tolerance"); err != nil {
			return nil, err
		}
	}
	if conf.IsSet("facetype.simplifier") {
		if opts.Simplifier, err = NewSimplifier(conf.GetString("facetype.simplifier")); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

func positive(conf schuko.Configuration, key string) (float64, error) {
	f, err := strconv.ParseFloat(conf.GetString(key), 64)
	if err != nil || f <= 0 {
		return 0, core.Error(core.EINVALID, "configuration value %s=%q is not a positive number",
			key, conf.GetString(key))
	}
	return f, nil
}

// Vectorize converts an outline into polygons, with every coordinate
// multiplied by scale. Curves are flattened with segments no longer than
// opts.SegmentLength·scale. If opts is nil, DefaultOptions are used.
//
// The first ring of every polygon is oriented clockwise, all other rings
// of a polygon are holes oriented counter-clockwise. An empty outline
// results in an empty multi-polygon.
//
// Outlines containing invalid commands are rejected with ErrInvalidCommand.
func Vectorize(o string, scale float64, opts *Options) (orb.MultiPolygon, error) {
	if scale <= 0 {
		return nil, core.Error(core.EINVALID, "scale must be positive, is %g", scale)
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	paths, err := parse(o, scale)
	if err != nil {
		return nil, err
	}
	cl := &classifier{}
	for _, sp := range paths {
		cl.add(flatten(sp, opts.SegmentLength*scale))
	}
	if cl.dropped > 0 {
		tracer().Debugf("outline: dropped %d degenerate ring(s)", cl.dropped)
	}
	mp := cl.result()
	if opts.Simplifier != nil {
		mp = opts.Simplifier.Simplify(mp, opts.SimplifyTolerance*scale)
	}
	return mp, nil
}
