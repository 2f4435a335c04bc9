package outline

import "github.com/paulmach/orb"

// classifier assembles rings into polygons, one ring at a time.
//
// Clockwise rings open a new polygon, counter-clockwise rings are holes of
// the most recently opened one. A hole encountered before any outer ring is
// reversed and promoted to an outer ring. Rings with less than 4 points or
// without area are dropped.
type classifier struct {
	polygons orb.MultiPolygon
	dropped  int
}

func (cl *classifier) add(r orb.Ring) {
	if len(r) < 4 || r.Orientation() == 0 {
		cl.dropped++
		return
	}
	if r.Orientation() == orb.CW {
		cl.polygons = append(cl.polygons, orb.Polygon{r})
		return
	}
	if len(cl.polygons) == 0 {
		tracer().Debugf("outline starts with a hole, promoting it to an outer ring")
		r.Reverse()
		cl.polygons = append(cl.polygons, orb.Polygon{r})
		return
	}
	last := len(cl.polygons) - 1
	cl.polygons[last] = append(cl.polygons[last], r)
}

func (cl *classifier) result() orb.MultiPolygon {
	if cl.polygons == nil {
		return orb.MultiPolygon{}
	}
	return cl.polygons
}
