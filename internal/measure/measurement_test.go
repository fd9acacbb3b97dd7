package measure

import (
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"

	"dicom-measure/pkg/geometry"
)

// testFactory returns a factory with a fixed clock so creation
// timestamps are deterministic.
func testFactory() Factory {
	base := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	return Factory{Clock: func() time.Time { return base }}
}

func TestFactoryClock(t *testing.T) {
	f := testFactory()
	m := f.Distance("d1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(1, 1))

	want := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	if !m.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", m.CreatedAt, want)
	}
}

func TestDistanceCompute(t *testing.T) {
	f := testFactory()
	m := f.Distance("d1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(10, 0))

	res := m.Compute(Calibration{})
	if res.PixelValue != 10.0 {
		t.Errorf("PixelValue = %v, want 10.0", res.PixelValue)
	}
	if res.RealWorldValue != nil {
		t.Errorf("uncalibrated RealWorldValue should be nil, got %v", *res.RealWorldValue)
	}
	if res.DisplayText != "10.00 px" {
		t.Errorf("DisplayText = %q, want %q", res.DisplayText, "10.00 px")
	}
}

func TestDistanceComputeCalibrated(t *testing.T) {
	f := testFactory()
	m := f.Distance("d1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(10, 0))

	res := m.Compute(Calibration{PixelSpacing: []float64{0.5}, Units: "mm"})
	if res.RealWorldValue == nil {
		t.Fatal("calibrated RealWorldValue should be set")
	}
	if *res.RealWorldValue != 5.0 {
		t.Errorf("RealWorldValue = %v, want 5.0", *res.RealWorldValue)
	}
	if res.DisplayText != "5.00 mm" {
		t.Errorf("DisplayText = %q, want %q", res.DisplayText, "5.00 mm")
	}
}

func TestAngleCompute(t *testing.T) {
	f := testFactory()
	m := f.Angle("a1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(1, 0), geometry.NewPoint2D(0, 1))

	res := m.Compute(Calibration{})
	if !scalar.EqualWithinAbs(res.PixelValue, 90.0, 0.1) {
		t.Errorf("PixelValue = %v, want 90.0", res.PixelValue)
	}
	if res.DisplayText != "90.0°" {
		t.Errorf("DisplayText = %q, want %q", res.DisplayText, "90.0°")
	}
}

func TestAngleCalibrationInvariant(t *testing.T) {
	f := testFactory()
	m := f.Angle("a1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(1, 0), geometry.NewPoint2D(0, 1))

	res := m.Compute(Calibration{PixelSpacing: []float64{0.5, 0.5}, Units: "mm"})
	if !scalar.EqualWithinAbs(res.PixelValue, 90.0, 0.1) {
		t.Errorf("PixelValue = %v, want 90.0", res.PixelValue)
	}
	if res.RealWorldValue != nil {
		t.Error("angle must never be scaled by calibration")
	}
	if res.DisplayText != "90.0°" {
		t.Errorf("DisplayText = %q, want %q", res.DisplayText, "90.0°")
	}
}

func TestAngleDegenerate(t *testing.T) {
	f := testFactory()
	vertex := geometry.NewPoint2D(5, 5)
	// arm1 coincides with the vertex: zero-length vector.
	m := f.Angle("a1", vertex, vertex, geometry.NewPoint2D(10, 5))

	res := m.Compute(Calibration{})
	if res.PixelValue != 0 {
		t.Errorf("degenerate angle PixelValue = %v, want 0", res.PixelValue)
	}
	if res.DisplayText != "0.0°" {
		t.Errorf("DisplayText = %q, want %q", res.DisplayText, "0.0°")
	}
}

func TestCircleCompute(t *testing.T) {
	f := testFactory()
	m := f.Circle("c1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(5, 0))

	res := m.Compute(Calibration{})
	if res.PixelValue != 5.0 {
		t.Errorf("radius = %v, want 5.0", res.PixelValue)
	}
	if !scalar.EqualWithinAbs(res.Extra["area"], 78.54, 0.01) {
		t.Errorf("area = %v, want 78.54", res.Extra["area"])
	}
}

func TestCircleComputeCalibrated(t *testing.T) {
	f := testFactory()
	m := f.Circle("c1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(5, 0))

	res := m.Compute(Calibration{PixelSpacing: []float64{0.5, 0.5}, Units: "mm"})
	if res.RealWorldValue == nil || *res.RealWorldValue != 2.5 {
		t.Errorf("calibrated radius should be 2.5, got %v", res.RealWorldValue)
	}
	// Pixel area scaled by 0.5 * 0.5.
	if !scalar.EqualWithinAbs(res.Extra["area"], 78.54*0.25, 0.01) {
		t.Errorf("calibrated area = %v, want %v", res.Extra["area"], 78.54*0.25)
	}
}

func TestAreaCompute(t *testing.T) {
	f := testFactory()
	m := f.Area("ar1", []geometry.Point2D{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	})

	res := m.Compute(Calibration{})
	if res.PixelValue != 100 {
		t.Errorf("area = %v, want 100", res.PixelValue)
	}
	if res.DisplayText != "100.00 px²" {
		t.Errorf("DisplayText = %q, want %q", res.DisplayText, "100.00 px²")
	}

	calibrated := m.Compute(Calibration{PixelSpacing: []float64{0.5, 0.2}, Units: "mm"})
	if calibrated.RealWorldValue == nil || !scalar.EqualWithinAbs(*calibrated.RealWorldValue, 10, 1e-9) {
		t.Errorf("calibrated area should be 10, got %v", calibrated.RealWorldValue)
	}
	if calibrated.DisplayText != "10.00 mm²" {
		t.Errorf("DisplayText = %q, want %q", calibrated.DisplayText, "10.00 mm²")
	}
}

func TestAreaFactoryPanicsBelowMinimum(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for area with 2 points")
		}
	}()
	testFactory().Area("ar1", []geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 1}})
}

func TestComputePanicsOnArityViolation(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for distance with 1 point")
		}
	}()
	m := Measurement{ID: "bad", Kind: KindDistance, Points: []geometry.Point2D{{X: 0, Y: 0}}}
	m.Compute(Calibration{})
}

func TestHitPoint(t *testing.T) {
	f := testFactory()
	m := f.Distance("d1", geometry.NewPoint2D(10, 10), geometry.NewPoint2D(50, 50))

	tests := []struct {
		name    string
		pos     geometry.Point2D
		radius  float64
		wantIdx int
		wantHit bool
	}{
		{"exact first point", geometry.NewPoint2D(10, 10), 5, 0, true},
		{"near second point", geometry.NewPoint2D(52, 51), 5, 1, true},
		{"on radius boundary", geometry.NewPoint2D(15, 10), 5, 0, true},
		{"beyond every point", geometry.NewPoint2D(100, 100), 5, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := m.HitPoint(tt.pos, tt.radius)
			if ok != tt.wantHit {
				t.Fatalf("hit = %v, want %v", ok, tt.wantHit)
			}
			if ok && idx != tt.wantIdx {
				t.Errorf("index = %d, want %d", idx, tt.wantIdx)
			}
		})
	}
}

func TestUpdatePoint(t *testing.T) {
	f := testFactory()
	orig := f.Distance("d1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(10, 0))

	moved := orig.UpdatePoint(1, geometry.NewPoint2D(20, 0))

	if moved.Points[1] != geometry.NewPoint2D(20, 0) {
		t.Errorf("point not updated: %v", moved.Points[1])
	}
	if orig.Points[1] != geometry.NewPoint2D(10, 0) {
		t.Error("original measurement was mutated")
	}
	if moved.ID != orig.ID || moved.Kind != orig.Kind || !moved.CreatedAt.Equal(orig.CreatedAt) {
		t.Error("unrelated fields changed")
	}
}

func TestUpdatePointOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range index")
		}
	}()
	f := testFactory()
	m := f.Distance("d1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(10, 0))
	m.UpdatePoint(2, geometry.NewPoint2D(1, 1))
}

func TestSelectionCopies(t *testing.T) {
	f := testFactory()
	m := f.Circle("c1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(5, 0))

	idx := 1
	selected := m.WithSelected(true).WithSelectedPoint(&idx)
	if !selected.Selected || selected.SelectedPoint == nil || *selected.SelectedPoint != 1 {
		t.Errorf("selection not applied: %+v", selected)
	}
	if m.Selected || m.SelectedPoint != nil {
		t.Error("original measurement was mutated")
	}

	deselected := selected.WithSelected(false)
	if deselected.Selected || deselected.SelectedPoint != nil {
		t.Error("deselect should clear the point index too")
	}
}

func TestAreaContains(t *testing.T) {
	f := testFactory()
	m := f.Area("ar1", []geometry.Point2D{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	})

	if !m.Contains(geometry.NewPoint2D(5, 5)) {
		t.Error("interior point should be contained")
	}
	if m.Contains(geometry.NewPoint2D(20, 20)) {
		t.Error("exterior point should not be contained")
	}

	d := f.Distance("d1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(10, 0))
	if d.Contains(geometry.NewPoint2D(5, 0)) {
		t.Error("non-area kinds have no interior")
	}
}

func TestKindNames(t *testing.T) {
	tests := []struct {
		kind Kind
		name string
		min  int
	}{
		{KindDistance, "distance", 2},
		{KindAngle, "angle", 3},
		{KindCircle, "circle", 2},
		{KindArea, "area", 3},
	}
	for _, tt := range tests {
		if tt.kind.String() != tt.name {
			t.Errorf("String() = %q, want %q", tt.kind.String(), tt.name)
		}
		if tt.kind.MinPoints() != tt.min {
			t.Errorf("%s MinPoints = %d, want %d", tt.name, tt.kind.MinPoints(), tt.min)
		}
	}
}
