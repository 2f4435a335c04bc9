package labeling

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/facetype/core"
	"github.com/npillmayer/facetype/core/font"
	"github.com/npillmayer/facetype/core/measure"
	"github.com/npillmayer/facetype/core/projection"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// approx compares points with a tolerance. orb.Point, orb.Ring, orb.Polygon
// and orb.MultiPolygon have Equal methods, which cmp would otherwise use for
// exact comparison, so comparers are registered for each of them.
var (
	approxPoint = cmp.Comparer(func(a, b orb.Point) bool {
		return math.Abs(a[0]-b[0]) <= 1e-9 && math.Abs(a[1]-b[1]) <= 1e-9
	})
	approxRing = cmp.Comparer(func(a, b orb.Ring) bool {
		return cmp.Equal([]orb.Point(a), []orb.Point(b), approxPoint)
	})
	approxPolygon = cmp.Comparer(func(a, b orb.Polygon) bool {
		return cmp.Equal([]orb.Ring(a), []orb.Ring(b), approxRing)
	})
	approxMultiPolygon = cmp.Comparer(func(a, b orb.MultiPolygon) bool {
		return cmp.Equal([]orb.Polygon(a), []orb.Polygon(b), approxPolygon)
	})
	approx = cmp.Options{approxPoint, approxRing, approxPolygon, approxMultiPolygon}
)

// box returns a glyph with a rectangular outline of width w and height h,
// advancing by ha.
func box(char string, w, h, ha, midY float64) *font.Glyph {
	return &font.Glyph{
		Char: char,
		Geometry: orb.MultiPolygon{{{
			{0, 0}, {0, h}, {w, h}, {w, 0}, {0, 0},
		}}},
		Advance: ha,
		MidY:    midY,
		Scale:   1,
	}
}

func straightLine() LabelLine {
	return LabelLine{Coords: orb.LineString{{0, 0}, {100, 0}}, SRS: projection.Plane}
}

func TestAffine(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.labels")
	defer teardown()
	//
	m := concat(translation(10, 0), concat(rotation(math.Pi/2), translation(0, -3)))
	p := transformPoint(m, orb.Point{1, 3})
	if !cmp.Equal(orb.Point{10, 1}, p, approx) {
		t.Errorf("expected (10,1), have %v", p)
	}
	if concat(identity, m) != m || concat(m, identity) != m {
		t.Errorf("identity is not neutral")
	}
}

func TestStraightLine(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.labels")
	defer teardown()
	//
	placer, err := AlongLine(straightLine(), projection.Plane, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, Empty, placer.State())
	assert.Equal(t, 100.0, placer.Length())
	for _, c := range []string{"A", "B"} {
		require.NoError(t, placer.AcceptGlyph(box(c, 4, 6, 5, 3)))
	}
	assert.Equal(t, Accumulating, placer.State())
	assert.InDelta(t, 10.0, placer.Distance(), 1e-9)
	f, err := placer.Label()
	require.NoError(t, err)
	assert.Equal(t, Finalized, placer.State())
	mp := f.Geometry.(orb.MultiPolygon)
	want := orb.MultiPolygon{
		{{{0, -3}, {0, 3}, {4, 3}, {4, -3}, {0, -3}}},
		{{{5, -3}, {5, 3}, {9, 3}, {9, -3}, {5, -3}}},
	}
	if !cmp.Equal(want, mp, approx) {
		t.Errorf("unexpected label geometry: %s", cmp.Diff(want, mp, approx))
	}
	assert.Equal(t, "planar", f.Properties.MustString("srs"))
	assert.Equal(t, "planar", f.Properties.MustString("unit"))
	assert.InDelta(t, 10.0, f.Properties.MustFloat64("length"), 1e-9)
	assert.Equal(t, mp[0][0].Orientation(), orb.CW, "placement must keep ring orientation")
}

func TestAdvanceMultiplier(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.labels")
	defer teardown()
	//
	placer, err := AlongLine(straightLine(), projection.Plane, 1.5, nil)
	require.NoError(t, err)
	g := box("x", 4, 6, 5, 3)
	assert.Equal(t, 7.5, placer.CalculateAdvance(g))
	assert.Equal(t, 0.0, placer.Distance(), "CalculateAdvance must not change state")
	require.NoError(t, placer.AcceptGlyph(g))
	assert.InDelta(t, 7.5, placer.Distance(), 1e-9)
	_, err = AlongLine(straightLine(), projection.Plane, 0, nil)
	assert.Error(t, err)
}

func TestMonotonicAdvance(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.labels")
	defer teardown()
	//
	line := LabelLine{Coords: orb.LineString{{0, 0}, {30, 40}, {30, 400}, {-100, 500}}, SRS: projection.Plane}
	placer, err := AlongLine(line, projection.Plane, 1, nil)
	require.NoError(t, err)
	last := placer.Distance()
	for i, ha := range []float64{3, 7, 1, 12, 0.5, 9, 4, 4, 4, 20} {
		require.NoError(t, placer.AcceptGlyph(box("x", ha, 5, ha, 2)))
		assert.Greater(t, placer.Distance(), last, "glyph #%d did not advance", i)
		last = placer.Distance()
	}
}

func TestZeroAdvanceGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.labels")
	defer teardown()
	//
	line := LabelLine{Coords: orb.LineString{{0, 0}, {0, 100}}, SRS: projection.Plane}
	placer, err := AlongLine(line, projection.Plane, 1, nil)
	require.NoError(t, err)
	require.NoError(t, placer.AcceptGlyph(box("a", 4, 6, 5, 3)))
	require.NoError(t, placer.AcceptGlyph(box("\u0301", 1, 1, 0, 0)))
	assert.InDelta(t, 5.0, placer.Distance(), 1e-9)
	f, err := placer.Label()
	require.NoError(t, err)
	mp := f.Geometry.(orb.MultiPolygon)
	require.Len(t, mp, 2)
	// rotated by 90°: glyph x axis points up, glyph y axis points left
	want := orb.Ring{{0, 5}, {-1, 5}, {-1, 6}, {0, 6}, {0, 5}}
	if !cmp.Equal(want, mp[1][0], approx) {
		t.Errorf("unexpected mark geometry: %s", cmp.Diff(want, mp[1][0], approx))
	}
}

func TestCurvedLine(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.labels")
	defer teardown()
	//
	line := LabelLine{Coords: orb.LineString{{0, 0}, {10, 0}, {10, 100}}, SRS: projection.Plane}
	placer, err := AlongLine(line, projection.Plane, 1, nil)
	require.NoError(t, err)
	for _, c := range []string{"a", "b", "c"} {
		require.NoError(t, placer.AcceptGlyph(box(c, 1, 6, 5, 3)))
	}
	f, err := placer.Label()
	require.NoError(t, err)
	mp := f.Geometry.(orb.MultiPolygon)
	require.Len(t, mp, 3)
	want := orb.Ring{{13, 0}, {7, 0}, {7, 1}, {13, 1}, {13, 0}}
	if !cmp.Equal(want, mp[2][0], approx) {
		t.Errorf("unexpected geometry after corner: %s", cmp.Diff(want, mp[2][0], approx))
	}
}

func TestOverflowClampsToEnd(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.labels")
	defer teardown()
	//
	line := LabelLine{Coords: orb.LineString{{0, 0}, {10, 0}}, SRS: projection.Plane}
	placer, err := AlongLine(line, projection.Plane, 1, nil)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, placer.AcceptGlyph(box("x", 4, 6, 5, 3)))
	}
	f, err := placer.Label()
	require.NoError(t, err)
	mp := f.Geometry.(orb.MultiPolygon)
	require.Len(t, mp, 4)
	want := orb.Ring{{10, -3}, {10, 3}, {14, 3}, {14, -3}, {10, -3}}
	if !cmp.Equal(want, mp[3][0], approx) {
		t.Errorf("expected overflowing glyph at end of line: %s", cmp.Diff(want, mp[3][0], approx))
	}
	assert.Equal(t, 10.0, f.Properties.MustFloat64("length"))
}

func TestFinalizeThenAccept(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.labels")
	defer teardown()
	//
	placer, err := AlongLine(straightLine(), projection.Plane, 1, nil)
	require.NoError(t, err)
	f1, err := placer.Label()
	require.NoError(t, err)
	assert.Empty(t, f1.Geometry.(orb.MultiPolygon))
	err = placer.AcceptGlyph(box("x", 4, 6, 5, 3))
	assert.True(t, errors.Is(err, ErrFinalized))
	assert.Equal(t, core.EUSAGE, core.Code(err))
	f2, err := placer.Label()
	require.NoError(t, err)
	assert.Equal(t, f1.Geometry, f2.Geometry)
}

// failingService projects the first n geometries and fails afterwards.
type failingService struct {
	projection.Service
	n int
}

func (fs *failingService) Project(g orb.Geometry, from, to projection.SRS) (orb.Geometry, error) {
	if fs.n <= 0 {
		return nil, core.Error(core.EINTERNAL, "projection unavailable")
	}
	fs.n--
	return fs.Service.Project(g, from, to)
}

func TestFailingGlyphLeavesPlacerUnchanged(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.labels")
	defer teardown()
	//
	svc := &failingService{Service: projection.Default(), n: 1} // line check in AlongLine
	placer, err := AlongLine(straightLine(), projection.Plane, 1, svc)
	require.NoError(t, err)
	err = placer.AcceptGlyph(box("x", 4, 6, 5, 3))
	require.Error(t, err)
	assert.Equal(t, Empty, placer.State())
	assert.Equal(t, 0.0, placer.Distance())
	//
	svc.n = 2 // start point and advance lookup succeed, end point fails
	err = placer.AcceptGlyph(box("x", 4, 6, 5, 3))
	require.Error(t, err)
	assert.Equal(t, Empty, placer.State())
	assert.Equal(t, 0.0, placer.Distance())
	//
	svc.n = 3
	require.NoError(t, placer.AcceptGlyph(box("x", 4, 6, 5, 3)))
	assert.Equal(t, Accumulating, placer.State())
	assert.InDelta(t, 5.0, placer.Distance(), 1e-9)
}

func TestInvalidLines(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.labels")
	defer teardown()
	//
	for _, coords := range []orb.LineString{nil, {{1, 1}}, {{1, 1}, {1, 1}, {1, 1}}} {
		_, err := AlongLine(LabelLine{Coords: coords, SRS: projection.Plane}, projection.Plane, 1, nil)
		assert.Error(t, err)
		assert.Equal(t, core.EINVALID, core.Code(err))
	}
	_, err := AlongLine(straightLine(), projection.WebMercator, 1, nil)
	assert.True(t, errors.Is(err, projection.ErrUnsupported))
}

func TestGeographicLine(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.labels")
	defer teardown()
	//
	line := LabelLine{Coords: orb.LineString{{0, 0}, {1, 0}}, SRS: projection.WGS84}
	placer, err := AlongLine(line, projection.WebMercator, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, measure.Meters, placer.Unit())
	for _, c := range []string{"a", "b"} {
		require.NoError(t, placer.AcceptGlyph(box(c, 800, 600, 1000, 300)))
	}
	assert.InDelta(t, 2000, placer.Distance(), 1e-3)
	f, err := placer.Label()
	require.NoError(t, err)
	assert.Equal(t, "EPSG:4326", f.Properties.MustString("srs"))
	bound := f.Geometry.Bound()
	deg := 180 / (math.Pi * orb.EarthRadius) // degrees per meter at the equator
	assert.InDelta(t, 0, bound.Min[0], 1e-9)
	assert.InDelta(t, 1800*deg, bound.Max[0], 1e-7)
	assert.InDelta(t, -300*deg, bound.Min[1], 1e-7)
	assert.InDelta(t, 300*deg, bound.Max[1], 1e-7)
}

func TestFromPosition(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.labels")
	defer teardown()
	//
	placer, err := FromPosition(orb.Point{16, 60}, projection.WGS84, 5000, projection.WebMercator, 1, nil)
	require.NoError(t, err)
	assert.InDelta(t, 5000, placer.Length(), 1)
	placer, err = FromPosition(orb.Point{3, 4}, projection.Plane, 0, projection.Plane, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultExtent, placer.Length())
	require.NoError(t, placer.AcceptGlyph(box("x", 1, 1, 2, 0)))
	f, err := placer.Label()
	require.NoError(t, err)
	want := orb.Ring{{3, 4}, {3, 5}, {4, 5}, {4, 4}, {3, 4}}
	if !cmp.Equal(want, f.Geometry.(orb.MultiPolygon)[0][0], approx) {
		t.Errorf("unexpected placement from position")
	}
	_, err = FromPosition(orb.Point{0, 90}, projection.WGS84, 1000, projection.WebMercator, 1, nil)
	assert.Error(t, err)
}

func TestLabelWithFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.labels")
	defer teardown()
	//
	tc, err := font.FallbackFont().PrepareCase(0.01, nil)
	require.NoError(t, err)
	placer, err := AlongLine(straightLine(), projection.Plane, 1, nil)
	require.NoError(t, err)
	length, err := tc.LabelLength("Hello", placer)
	require.NoError(t, err)
	assert.Greater(t, length, 0.0)
	mp, err := tc.LabelGeometry("Hello", placer)
	require.NoError(t, err)
	assert.NotEmpty(t, mp)
	assert.InDelta(t, length, placer.Distance(), 1e-9)
	for _, poly := range mp {
		assert.Equal(t, orb.CW, poly[0].Orientation())
	}
	_, err = tc.LabelGeometry("more", placer)
	assert.True(t, errors.Is(err, ErrFinalized))
}
