package geometry

import (
	"math"
	"testing"

	"github.com/cebdan/woodwop-post-processor/internal/model"
)

func arcContour(start, end model.Vec3, i, j float64, dir model.ArcDirection) []model.Contour {
	return []model.Contour{{
		ID:    1,
		Start: start,
		Elements: []model.Element{{
			Kind:      model.ElementArc,
			Start:     start,
			End:       end,
			I:         i,
			J:         j,
			Direction: dir,
		}},
	}}
}

func TestResolve_ArcCenterIsStartPlusOffsets(t *testing.T) {
	// Center = start + (i, j) exactly: no sign inversion, no absolute
	// interpretation.
	contours := arcContour(model.Vec3{X: 10, Y: 10}, model.Vec3{X: 15, Y: 15}, 5, 0, model.ArcCCW)
	_, warnings := Resolve(contours, nil)

	center := contours[0].Elements[0].Center
	if center.X != 15 || center.Y != 10 {
		t.Errorf("center = (%v, %v), want (15, 10)", center.X, center.Y)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none for a consistent arc", warnings)
	}
	if r := contours[0].Elements[0].Radius; r != 5 {
		t.Errorf("radius = %v, want 5", r)
	}
}

func TestResolve_ArcEndpointMismatchWarns(t *testing.T) {
	// The supplied endpoint is authoritative; a disagreement beyond
	// tolerance is a data-quality warning, not a failure.
	contours := arcContour(model.Vec3{X: 0, Y: 0}, model.Vec3{X: 11, Y: 0}, 5, 0, model.ArcCW)
	_, warnings := Resolve(contours, nil)

	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
	if warnings[0].Code != model.WarnArcMismatch {
		t.Errorf("warning code = %q, want %q", warnings[0].Code, model.WarnArcMismatch)
	}
	// Endpoint kept as supplied.
	if contours[0].Elements[0].End.X != 11 {
		t.Error("endpoint must never be re-derived from the center")
	}
}

func TestResolve_BBoxIncludesArcExtrema(t *testing.T) {
	// A CW half circle from (0,0) to (10,0) over center (5,0) bulges to
	// y=5; the chord alone would cap the box at y=0.
	contours := arcContour(model.Vec3{}, model.Vec3{X: 10}, 5, 0, model.ArcCW)
	bbox, _ := Resolve(contours, nil)

	if math.Abs(bbox.Max.Y-5) > 1e-9 {
		t.Errorf("bbox max Y = %v, want 5 (arc extremum beyond the chord)", bbox.Max.Y)
	}
	if bbox.Min.Y < -1e-9 {
		t.Errorf("bbox min Y = %v, want 0 (no bulge below the chord)", bbox.Min.Y)
	}
	if bbox.Min.X != 0 || bbox.Max.X != 10 {
		t.Errorf("bbox X = %v..%v, want 0..10", bbox.Min.X, bbox.Max.X)
	}
}

func TestResolve_BBoxIncludesDrillDepth(t *testing.T) {
	operations := []model.Operation{{
		Type:     model.OpDrill,
		Position: model.Vec3{X: 30, Y: 40},
		Depth:    12,
	}}
	bbox, _ := Resolve(nil, operations)
	if bbox.Min.Z != -12 {
		t.Errorf("bbox min Z = %v, want -12 (drill depth)", bbox.Min.Z)
	}
}

func TestOffsetContours_TranslatesXYOnly(t *testing.T) {
	contours := arcContour(model.Vec3{X: 10, Y: 10, Z: -1}, model.Vec3{X: 15, Y: 15, Z: -1}, 5, 0, model.ArcCCW)
	Resolve(contours, nil)

	shifted := OffsetContours(contours, 2, 3)
	elem := shifted[0].Elements[0]
	orig := contours[0].Elements[0]

	if elem.Start.X != orig.Start.X+2 || elem.Start.Y != orig.Start.Y+3 {
		t.Errorf("start = %v, want raw start translated by (2,3)", elem.Start)
	}
	if elem.Center.X != orig.Center.X+2 || elem.Center.Y != orig.Center.Y+3 {
		t.Errorf("center = %v, want raw center translated by (2,3)", elem.Center)
	}
	if elem.Start.Z != orig.Start.Z {
		t.Error("Z must not be touched by the fixture offset")
	}
	// The raw view is untouched: the offset view is a copy.
	if contours[0].Elements[0].Start.X != 10 {
		t.Error("offset view must not mutate the raw geometry")
	}
}

func TestOffsetContours_ZeroOffsetIsIdentity(t *testing.T) {
	contours := arcContour(model.Vec3{X: 10, Y: 10}, model.Vec3{X: 15, Y: 15}, 5, 0, model.ArcCW)
	Resolve(contours, nil)

	same := OffsetContours(contours, 0, 0)
	for i := range contours[0].Elements {
		if same[0].Elements[i] != contours[0].Elements[i] {
			t.Fatal("with a zero offset the two views must be coordinate-identical")
		}
	}
}

func TestOffsetOperations_DrillPositions(t *testing.T) {
	operations := []model.Operation{
		{Type: model.OpDrill, Position: model.Vec3{X: 1, Y: 2}},
		{Type: model.OpContourMill, ContourID: 1},
	}
	shifted := OffsetOperations(operations, 5, 5)
	if shifted[0].Position.X != 6 || shifted[0].Position.Y != 7 {
		t.Errorf("drill position = %v, want (6,7)", shifted[0].Position)
	}
	if shifted[1] != operations[1] {
		t.Error("contour-bound operations pass through unchanged")
	}
}

func TestSweepAngle_HalfTurn(t *testing.T) {
	contours := arcContour(model.Vec3{}, model.Vec3{X: 10}, 5, 0, model.ArcCCW)
	Resolve(contours, nil)
	if sweep := SweepAngle(contours[0].Elements[0]); math.Abs(sweep-math.Pi) > 1e-9 {
		t.Errorf("sweep = %v, want pi", sweep)
	}
}
