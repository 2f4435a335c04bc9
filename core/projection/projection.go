/*
Package projection projects geometry between spatial reference systems.

Supported out of the box are geographic coordinates (EPSG:4326), spherical
web mercator (EPSG:3857) and a planar identity system. Further projections
may be registered with a Service.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2025 Norbert Pillmayer <norbert@pillmayer.com>

*/
package projection

import (
	"errors"
	"math"
	"strings"
	"sync"

	"github.com/npillmayer/facetype/core"
	"github.com/npillmayer/facetype/core/measure"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// SRS identifies a spatial reference system.
type SRS string

// Well-known reference systems.
const (
	WGS84       SRS = "EPSG:4326"
	WebMercator SRS = "EPSG:3857"
	Plane       SRS = "planar"
)

// ParseSRS accepts EPSG codes with or without prefix, and a few aliases.
func ParseSRS(s string) (SRS, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EPSG:4326", "4326", "WGS84":
		return WGS84, nil
	case "EPSG:3857", "3857", "MERCATOR", "EPSG:900913":
		return WebMercator, nil
	case "PLANAR", "PLANE", "":
		return Plane, nil
	}
	return "", core.WrapError(ErrUnsupported, core.EINVALID, "unknown reference system %q", s)
}

// ErrUnsupported is returned for reference systems or pairs thereof the
// service has no projection for.
var ErrUnsupported = errors.New("unsupported reference system")

// Service projects geometry between reference systems.
//
// Project returns a projected copy of g; g itself is left untouched.
// UnitAndScale returns the unit lines in srs are measured in, and the
// number of meters per coordinate unit.
type Service interface {
	Project(g orb.Geometry, from, to SRS) (orb.Geometry, error)
	UnitAndScale(srs SRS) (measure.Unit, float64, error)
}

type pair struct {
	from, to SRS
}

type system struct {
	unit  measure.Unit
	scale float64
}

// Projections is the default Service. It is safe for concurrent use.
type Projections struct {
	sync.RWMutex
	systems     map[SRS]system
	projections map[pair]orb.Projection
}

var identity orb.Projection = func(p orb.Point) orb.Point { return p }

// NewProjections creates a service knowing WGS84, WebMercator and Plane.
// There are no projections between Plane and the other two systems.
func NewProjections() *Projections {
	svc := &Projections{
		systems:     make(map[SRS]system),
		projections: make(map[pair]orb.Projection),
	}
	svc.systems[WGS84] = system{measure.Meters, orb.EarthRadius * math.Pi / 180}
	svc.systems[WebMercator] = system{measure.Planar, 1}
	svc.systems[Plane] = system{measure.Planar, 1}
	svc.projections[pair{WGS84, WebMercator}] = project.WGS84.ToMercator
	svc.projections[pair{WebMercator, WGS84}] = project.Mercator.ToWGS84
	return svc
}

var defaultProjections *Projections
var defaultCreation sync.Once

// Default is a process-wide Service with the standard systems.
func Default() *Projections {
	defaultCreation.Do(func() {
		defaultProjections = NewProjections()
	})
	return defaultProjections
}

// Register adds a reference system with its unit for line measurement
// and its meters per coordinate unit.
func (svc *Projections) Register(srs SRS, unit measure.Unit, scale float64) {
	svc.Lock()
	defer svc.Unlock()
	svc.systems[srs] = system{unit, scale}
}

// RegisterProjection adds a pair of projections between two registered
// systems. inverse must be the inverse of forward.
func (svc *Projections) RegisterProjection(from, to SRS, forward, inverse orb.Projection) {
	svc.Lock()
	defer svc.Unlock()
	svc.projections[pair{from, to}] = forward
	svc.projections[pair{to, from}] = inverse
}

// Project projects a copy of g from one system to another.
func (svc *Projections) Project(g orb.Geometry, from, to SRS) (orb.Geometry, error) {
	proj, err := svc.projection(from, to)
	if err != nil {
		return nil, err
	}
	return project.Geometry(orb.Clone(g), proj), nil
}

// ProjectPoint is a shortcut for projecting a single point.
func (svc *Projections) ProjectPoint(p orb.Point, from, to SRS) (orb.Point, error) {
	proj, err := svc.projection(from, to)
	if err != nil {
		return p, err
	}
	return proj(p), nil
}

func (svc *Projections) projection(from, to SRS) (orb.Projection, error) {
	svc.RLock()
	defer svc.RUnlock()
	if _, ok := svc.systems[from]; !ok {
		return nil, core.WrapError(ErrUnsupported, core.EINVALID, "unknown reference system %s", from)
	}
	if from == to {
		return identity, nil
	}
	proj, ok := svc.projections[pair{from, to}]
	if !ok {
		return nil, core.WrapError(ErrUnsupported, core.EINVALID,
			"no projection from %s to %s", from, to)
	}
	return proj, nil
}

// UnitAndScale returns the unit lines in srs are measured in, and the
// number of meters per coordinate unit (at the equator, for geographic
// systems).
func (svc *Projections) UnitAndScale(srs SRS) (measure.Unit, float64, error) {
	svc.RLock()
	defer svc.RUnlock()
	s, ok := svc.systems[srs]
	if !ok {
		return measure.Planar, 0, core.WrapError(ErrUnsupported, core.EINVALID,
			"unknown reference system %s", srs)
	}
	return s.unit, s.scale, nil
}

// MetersPerUnit returns the number of meters per coordinate unit of srs,
// at location p (given in srs). Different from UnitAndScale, it accounts
// for the distortion of web mercator and for the convergence of meridians.
func (svc *Projections) MetersPerUnit(srs SRS, p orb.Point) (float64, error) {
	_, scale, err := svc.UnitAndScale(srs)
	if err != nil {
		return 0, err
	}
	switch srs {
	case WebMercator:
		geo, _ := svc.ProjectPoint(p, WebMercator, WGS84)
		return scale / project.MercatorScaleFactor(geo), nil
	case WGS84:
		if p[1] < -90 || p[1] > 90 {
			return 0, core.Error(core.EINVALID, "latitude out of range: %g", p[1])
		}
		return scale * math.Cos(p[1]*math.Pi/180), nil
	}
	return scale, nil
}

var _ Service = &Projections{}
