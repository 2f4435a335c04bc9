package outline

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// arcSteps is the number of chords used to measure the arc length of a
// single curve segment.
const arcSteps = 32

// segment is a single drawing operation of a sub-path.
type segment interface {
	Eval(t float64) orb.Point
	Start() orb.Point
	End() orb.Point
}

type line struct {
	P0, P1 orb.Point
}

func (l line) Eval(t float64) orb.Point {
	return lerp(l.P0, l.P1, t)
}

func (l line) Start() orb.Point { return l.P0 }
func (l line) End() orb.Point   { return l.P1 }

type quadBez struct {
	P0, P1, P2 orb.Point
}

// Eval evaluates B(t) = (1-t)²P0 + 2(1-t)tP1 + t²P2.
func (q quadBez) Eval(t float64) orb.Point {
	mt := 1 - t
	a, b, c := mt*mt, 2*mt*t, t*t
	return orb.Point{
		a*q.P0[0] + b*q.P1[0] + c*q.P2[0],
		a*q.P0[1] + b*q.P1[1] + c*q.P2[1],
	}
}

func (q quadBez) Start() orb.Point { return q.P0 }
func (q quadBez) End() orb.Point   { return q.P2 }

type cubicBez struct {
	P0, P1, P2, P3 orb.Point
}

// Eval evaluates B(t) = (1-t)³P0 + 3(1-t)²tP1 + 3(1-t)t²P2 + t³P3.
func (c cubicBez) Eval(t float64) orb.Point {
	mt := 1 - t
	a, b, d, e := mt*mt*mt, 3*mt*mt*t, 3*mt*t*t, t*t*t
	return orb.Point{
		a*c.P0[0] + b*c.P1[0] + d*c.P2[0] + e*c.P3[0],
		a*c.P0[1] + b*c.P1[1] + d*c.P2[1] + e*c.P3[1],
	}
}

func (c cubicBez) Start() orb.Point { return c.P0 }
func (c cubicBez) End() orb.Point   { return c.P3 }

// subpath is a connected sequence of segments, starting at a move-to.
type subpath struct {
	start    orb.Point
	segments []segment
}

func (sp *subpath) current() orb.Point {
	if len(sp.segments) == 0 {
		return sp.start
	}
	return sp.segments[len(sp.segments)-1].End()
}

// arcTable maps cumulative arc length to positions on a sub-path.
// Lines contribute a single chord, curves contribute arcSteps chords.
type arcTable struct {
	points []orb.Point
	cumul  []float64 // cumul[i] is the arc length from points[0] to points[i]
}

func measure(sp *subpath) *arcTable {
	tab := &arcTable{
		points: []orb.Point{sp.start},
		cumul:  []float64{0},
	}
	for _, seg := range sp.segments {
		steps := arcSteps
		if _, ok := seg.(line); ok {
			steps = 1
		}
		for i := 1; i <= steps; i++ {
			tab.add(seg.Eval(float64(i) / float64(steps)))
		}
	}
	return tab
}

func (tab *arcTable) add(p orb.Point) {
	last := tab.points[len(tab.points)-1]
	d := math.Hypot(p[0]-last[0], p[1]-last[1])
	tab.points = append(tab.points, p)
	tab.cumul = append(tab.cumul, tab.cumul[len(tab.cumul)-1]+d)
}

// Length is the total arc length of the sub-path.
func (tab *arcTable) Length() float64 {
	return tab.cumul[len(tab.cumul)-1]
}

// PointAt returns the position at arc length s. s is clamped to
// [0, Length()].
func (tab *arcTable) PointAt(s float64) orb.Point {
	if s <= 0 {
		return tab.points[0]
	}
	n := len(tab.cumul)
	if s >= tab.cumul[n-1] {
		return tab.points[n-1]
	}
	i := sort.SearchFloat64s(tab.cumul, s) // cumul[i-1] < s <= cumul[i]
	d := tab.cumul[i] - tab.cumul[i-1]
	if d == 0 {
		return tab.points[i]
	}
	return lerp(tab.points[i-1], tab.points[i], (s-tab.cumul[i-1])/d)
}

func lerp(p, q orb.Point, t float64) orb.Point {
	return orb.Point{p[0] + (q[0]-p[0])*t, p[1] + (q[1]-p[1])*t}
}

// flatten samples a sub-path at equal arc length distances. segLen is the
// maximum length of a sampled segment. At least two points are returned,
// even for sub-paths without extent.
func flatten(sp *subpath, segLen float64) orb.Ring {
	tab := measure(sp)
	length := tab.Length()
	n := 1
	if length > 0 && segLen > 0 {
		n = int(math.Ceil(length / segLen))
	}
	step := length / float64(n)
	ring := make(orb.Ring, 0, n+2)
	for i := 0; i <= n; i++ {
		ring = append(ring, tab.PointAt(float64(i)*step))
	}
	return ring
}
