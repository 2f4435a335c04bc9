/*
Package measure samples lines by arc length.

Lines are measured either in the plane or on the sphere. Spherical
measurement expects coordinates in degrees longitude/latitude and uses the
haversine distance; planar measurement uses Euclidean distance in the
coordinates' own unit.

Distances beyond a line's length are clamped to its end point, negative
distances to its start point.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2025 Norbert Pillmayer <norbert@pillmayer.com>

*/
package measure

import (
	"fmt"
	"math"
	"strings"

	"github.com/npillmayer/facetype/core"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// Unit is a unit of length along lines.
type Unit int8

// Units of length. Meters, Kilometers and Degrees measure on the sphere,
// with Degrees being degrees of arc.
const (
	Planar Unit = iota
	Meters
	Kilometers
	Degrees
)

func (u Unit) String() string {
	switch u {
	case Meters:
		return "meters"
	case Kilometers:
		return "kilometers"
	case Degrees:
		return "degrees"
	}
	return "planar"
}

// ParseUnit is the inverse of Unit.String. Abbreviations "m" and "km"
// are understood as well.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "planar", "":
		return Planar, nil
	case "meters", "m":
		return Meters, nil
	case "kilometers", "km":
		return Kilometers, nil
	case "degrees", "deg":
		return Degrees, nil
	}
	return Planar, core.Error(core.EINVALID, "unknown unit of length %q", s)
}

// Spherical is true for units measured on the sphere.
func (u Unit) Spherical() bool {
	return u != Planar
}

// metersPer is the number of meters per unit, for spherical units.
func (u Unit) metersPer() float64 {
	switch u {
	case Kilometers:
		return 1000
	case Degrees:
		return orb.EarthRadius * math.Pi / 180
	}
	return 1
}

// Sampler answers length and point-at-distance queries for lines.
type Sampler struct {
	unit Unit
}

// For creates a sampler measuring in unit u.
func For(u Unit) Sampler {
	return Sampler{unit: u}
}

// Unit is the unit of length the sampler measures in.
func (s Sampler) Unit() Unit {
	return s.unit
}

// Length is the total length of a line.
func (s Sampler) Length(ls orb.LineString) float64 {
	if s.unit == Planar {
		return planar.Length(ls)
	}
	return geo.LengthHaversine(ls) / s.unit.metersPer()
}

// Along returns the point at distance d from the start of a line. The line
// must not be empty.
func (s Sampler) Along(ls orb.LineString, d float64) (orb.Point, error) {
	if len(ls) == 0 {
		return orb.Point{}, core.Error(core.EINVALID, "cannot sample empty line")
	}
	if s.unit == Planar {
		return alongPlanar(ls, d), nil
	}
	p, _ := geo.PointAtDistanceAlongLine(ls, d*s.unit.metersPer())
	return p, nil
}

func alongPlanar(ls orb.LineString, d float64) orb.Point {
	if d <= 0 || len(ls) == 1 {
		return ls[0]
	}
	travelled := 0.0
	for i := 1; i < len(ls); i++ {
		from, to := ls[i-1], ls[i]
		seglen := planar.Distance(from, to)
		if d-travelled < seglen {
			t := (d - travelled) / seglen
			return orb.Point{from[0] + (to[0]-from[0])*t, from[1] + (to[1]-from[1])*t}
		}
		travelled += seglen
	}
	return ls[len(ls)-1]
}

func (s Sampler) String() string {
	return fmt.Sprintf("sampler[%s]", s.unit)
}
