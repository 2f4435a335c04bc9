package outline

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/facetype/core"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/paulmach/orb"
)

const (
	square = "m 0 0 l 0 100 l 100 100 l 100 0 z"
	hole   = "m 25 25 l 75 25 l 75 75 l 25 75 z"
)

func raw() *Options {
	return &Options{SegmentLength: SegmentLengthFactor}
}

func TestFlattenSquare(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	paths, err := parse(square, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 sub-path, have %d", len(paths))
	}
	r := flatten(paths[0], SegmentLengthFactor)
	if len(r) != 17 { // 400 / 25 segments
		t.Errorf("expected square to be flattened to 17 points, have %d", len(r))
	}
	if !r.Closed() {
		t.Errorf("expected flattened ring to be closed")
	}
	if r[4] != (orb.Point{0, 100}) {
		t.Errorf("expected 5th point to hit corner (0,100), is %v", r[4])
	}
}

func TestFlattenEmptySubpath(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	r := flatten(&subpath{start: orb.Point{3, 4}}, SegmentLengthFactor)
	if len(r) != 2 {
		t.Errorf("expected sub-path without extent to yield 2 points, has %d", len(r))
	}
}

func TestVectorizeSquare(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	mp, err := Vectorize(square, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(mp) != 1 || len(mp[0]) != 1 {
		t.Fatalf("expected a single polygon with a single ring, have %v", mp)
	}
	expected := orb.Ring{{0, 0}, {0, 100}, {100, 100}, {100, 0}, {0, 0}}
	if diff := cmp.Diff(expected, mp[0][0]); diff != "" {
		t.Errorf("simplified square differs (-want +got):\n%s", diff)
	}
}

func TestVectorizeScale(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	mp, err := Vectorize(square, 0.5, nil)
	if err != nil {
		t.Fatal(err)
	}
	b := mp.Bound()
	if b.Max != (orb.Point{50, 50}) || b.Min != (orb.Point{0, 0}) {
		t.Errorf("expected scaled square to span (0,0)-(50,50), is %v", b)
	}
	if _, err = Vectorize(square, 0, nil); core.Code(err) != core.EINVALID {
		t.Errorf("expected zero scale to be rejected, got %v", err)
	}
}

func TestRingClassification(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	other := "m 200 0 l 200 100 l 300 100 l 300 0 z"
	mp, err := Vectorize(square+" "+hole+" "+other, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(mp) != 2 {
		t.Fatalf("expected 2 polygons, have %d", len(mp))
	}
	if len(mp[0]) != 2 || len(mp[1]) != 1 {
		t.Errorf("expected hole to be attached to first polygon, have %d and %d rings",
			len(mp[0]), len(mp[1]))
	}
	for i, poly := range mp {
		for j, r := range poly {
			want := orb.CCW
			if j == 0 {
				want = orb.CW
			}
			if r.Orientation() != want {
				t.Errorf("ring %d of polygon %d has wrong orientation", j, i)
			}
		}
	}
}

func TestRingWithoutClose(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	mp, err := Vectorize("m 0 0 l 0 100 l 100 100 l 100 0 "+hole[:len(hole)-2], 1, raw())
	if err != nil {
		t.Fatal(err)
	}
	if len(mp) != 1 || len(mp[0]) != 2 {
		t.Fatalf("expected outer ring flushed at move-to and hole flushed at end, have %v", mp)
	}
	for _, r := range mp[0] {
		if !r.Closed() {
			t.Errorf("expected ring to be closed: %v", r)
		}
	}
}

func TestOrphanHole(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	mp, err := Vectorize(hole, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(mp) != 1 || mp[0][0].Orientation() != orb.CW {
		t.Errorf("expected leading hole to be promoted to an outer ring, have %v", mp)
	}
}

func TestDegenerateRing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	mp, err := Vectorize("m 0 0 l 100 0 z", 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(mp) != 0 {
		t.Errorf("expected ring without area to be dropped, have %v", mp)
	}
}

func TestEmptyOutline(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	mp, err := Vectorize("", 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if mp == nil || len(mp) != 0 {
		t.Errorf("expected empty multi-polygon, have %v", mp)
	}
}

func TestInvalidCommands(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	for _, o := range []string{
		"m 0 0 x 5 5",       // unknown command
		"l 5 5",             // no current point
		"m 0 a",             // not a number
		"m 0 0 l 10 10 q 5", // too few operands
	} {
		_, err := Vectorize(o, 1, nil)
		if !errors.Is(err, ErrInvalidCommand) {
			t.Errorf("expected %q to be rejected with ErrInvalidCommand, got %v", o, err)
		}
		if core.Code(err) != core.EINVALID {
			t.Errorf("expected error code EINVALID for %q, got %d", o, core.Code(err))
		}
	}
}

func TestDrawAfterClose(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	paths, err := parse("m 10 10 l 10 20 l 20 20 z l 20 0 l 0 0 z", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 sub-paths, have %d", len(paths))
	}
	if paths[1].start != (orb.Point{10, 10}) {
		t.Errorf("expected second sub-path to start at (10,10), starts at %v", paths[1].start)
	}
}

func TestQuadraticCurve(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	// end point (100,0) first, then control point (50,50); peak is at (50,25)
	mp, err := Vectorize("m 0 0 q 100 0 50 50 z", 1, raw())
	if err != nil {
		t.Fatal(err)
	}
	if len(mp) != 1 {
		t.Fatalf("expected arc to form an outer ring, have %v", mp)
	}
	maxY := mp.Bound().Max[1]
	if maxY <= 23 || maxY > 25+1e-9 {
		t.Errorf("expected arc to peak just below y=25, peaks at %g", maxY)
	}
}

func TestCubicCurve(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	// end point (100,0), control points (0,50) and (100,50); peak is at (50,37.5)
	mp, err := Vectorize("m 0 0 b 100 0 0 50 100 50 z", 1, raw())
	if err != nil {
		t.Fatal(err)
	}
	if len(mp) != 1 {
		t.Fatalf("expected arc to form an outer ring, have %v", mp)
	}
	maxY := mp.Bound().Max[1]
	if maxY <= 33 || maxY > 37.5+1e-9 {
		t.Errorf("expected arc to peak just below y=37.5, peaks at %g", maxY)
	}
}

func TestArcLength(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	// quarter circle approximation, radius 100
	k := 0.5522847498 * 100
	sp := &subpath{start: orb.Point{100, 0}}
	sp.segments = append(sp.segments, cubicBez{
		P0: orb.Point{100, 0}, P1: orb.Point{100, k}, P2: orb.Point{k, 100}, P3: orb.Point{0, 100},
	})
	l := measure(sp).Length()
	if math.Abs(l-math.Pi*50) > 0.1 {
		t.Errorf("expected arc length of quarter circle to be ~%.2f, is %.2f", math.Pi*50, l)
	}
}

func TestSimplifiers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	for _, method := range []string{DouglasPeucker, Visvalingam, Radial, NoSimplify} {
		s, err := NewSimplifier(method)
		if err != nil {
			t.Fatal(err)
		}
		mp, err := Vectorize(square, 1, &Options{
			SegmentLength:     SegmentLengthFactor,
			SimplifyTolerance: SimplifyToleranceFactor,
			Simplifier:        s,
		})
		if err != nil {
			t.Fatal(err)
		}
		r := mp[0][0]
		if len(r) < 4 || len(r) > 17 || r.Orientation() != orb.CW {
			t.Errorf("simplifier %s broke ring: %v", method, r)
		}
	}
	if _, err := NewSimplifier("bogus"); core.Code(err) != core.EINVALID {
		t.Errorf("expected unknown simplification method to be rejected")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	conf := testconfig.Conf{
		"facetype.segment-length": "10",
		"facetype.simplifier":     "none",
	}
	opts, err := OptionsFromConfig(conf)
	if err != nil {
		t.Fatal(err)
	}
	if opts.SegmentLength != 10 || opts.SimplifyTolerance != SimplifyToleranceFactor {
		t.Errorf("unexpected options %+v", opts)
	}
	mp, _ := Vectorize(square, 1, opts)
	if len(mp[0][0]) != 41 {
		t.Errorf("expected 41 points without simplification, have %d", len(mp[0][0]))
	}
	conf["facetype.segment-length"] = "-1"
	if _, err = OptionsFromConfig(conf); core.Code(err) != core.EINVALID {
		t.Errorf("expected negative segment length to be rejected")
	}
}
