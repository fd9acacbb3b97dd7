package measure

import (
	"encoding/json"
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"dicom-measure/pkg/geometry"
)

func testManager() (*Manager, Factory) {
	mgr := NewManager(Calibration{PixelSpacing: []float64{0.5, 0.5}, Units: "mm"})
	return mgr, testFactory()
}

func TestManagerAddAndLen(t *testing.T) {
	mgr, f := testManager()

	mgr.Add(f.Distance("d1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(10, 0)))
	mgr.Add(f.Circle("c1", geometry.NewPoint2D(5, 5), geometry.NewPoint2D(8, 5)))

	if mgr.Len() != 2 {
		t.Errorf("Len = %d, want 2", mgr.Len())
	}
}

func TestManagerAddReplacesInPlace(t *testing.T) {
	mgr, f := testManager()

	mgr.Add(f.Distance("d1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(10, 0)))
	mgr.Add(f.Distance("d2", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(20, 0)))

	// Re-adding d1 replaces it but keeps its first position.
	mgr.Add(f.Distance("d1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(30, 0)))

	if mgr.Len() != 2 {
		t.Fatalf("Len = %d, want 2", mgr.Len())
	}
	all := mgr.Measurements()
	if all[0].ID != "d1" || all[1].ID != "d2" {
		t.Errorf("order = [%s %s], want [d1 d2]", all[0].ID, all[1].ID)
	}
	if all[0].Points[1].X != 30 {
		t.Errorf("replacement did not take effect: %v", all[0].Points[1])
	}
}

func TestManagerRemove(t *testing.T) {
	mgr, f := testManager()
	mgr.Add(f.Distance("d1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(10, 0)))

	if !mgr.Remove("d1") {
		t.Error("Remove existing id should return true")
	}
	if mgr.Len() != 0 {
		t.Errorf("Len = %d after remove, want 0", mgr.Len())
	}
	if mgr.Remove("d1") {
		t.Error("Remove missing id should return false")
	}
	if mgr.Len() != 0 {
		t.Errorf("Len changed by no-op remove: %d", mgr.Len())
	}
}

func TestManagerGet(t *testing.T) {
	mgr, f := testManager()
	mgr.Add(f.Circle("c1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(5, 0)))

	if m, ok := mgr.Get("c1"); !ok || m.Kind != KindCircle {
		t.Errorf("Get(c1) = %+v, %v", m, ok)
	}
	if _, ok := mgr.Get("nope"); ok {
		t.Error("Get on missing id should report not found")
	}
}

func TestManagerUpdate(t *testing.T) {
	mgr, f := testManager()
	orig := f.Distance("d1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(10, 0))
	mgr.Add(orig)
	mgr.Add(f.Distance("d2", geometry.NewPoint2D(1, 1), geometry.NewPoint2D(2, 2)))

	mgr.Update(orig.UpdatePoint(1, geometry.NewPoint2D(40, 0)))

	got, _ := mgr.Get("d1")
	if got.Points[1].X != 40 {
		t.Errorf("Update did not replace: %v", got.Points[1])
	}
	all := mgr.Measurements()
	if all[0].ID != "d1" {
		t.Error("Update must preserve iteration order")
	}

	// Unknown id: silent no-op.
	mgr.Update(f.Distance("ghost", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(1, 0)))
	if mgr.Len() != 2 {
		t.Errorf("Update of unknown id must not insert, Len = %d", mgr.Len())
	}
}

func TestManagerByKind(t *testing.T) {
	mgr, f := testManager()
	mgr.Add(f.Distance("d1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(10, 0)))
	mgr.Add(f.Circle("c1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(5, 0)))
	mgr.Add(f.Distance("d2", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(20, 0)))

	var ids []string
	for m := range mgr.ByKind(KindDistance) {
		ids = append(ids, m.ID)
	}
	if len(ids) != 2 || ids[0] != "d1" || ids[1] != "d2" {
		t.Errorf("ByKind(distance) = %v, want [d1 d2]", ids)
	}

	// The sequence is restartable.
	count := 0
	for range mgr.ByKind(KindDistance) {
		count++
	}
	if count != 2 {
		t.Errorf("second iteration yielded %d, want 2", count)
	}

	for range mgr.ByKind(KindAngle) {
		t.Error("no angle measurements expected")
	}
}

func TestManagerClearIdempotent(t *testing.T) {
	mgr, f := testManager()
	mgr.Add(f.Distance("d1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(10, 0)))

	mgr.Clear()
	if mgr.Len() != 0 {
		t.Errorf("Len = %d after Clear, want 0", mgr.Len())
	}
	// Clearing an empty manager is a no-op.
	mgr.Clear()
	if mgr.Len() != 0 {
		t.Errorf("Len = %d after second Clear, want 0", mgr.Len())
	}
}

func TestManagerResults(t *testing.T) {
	mgr, f := testManager()
	mgr.Add(f.Distance("d1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(10, 0)))
	mgr.Add(f.Angle("a1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(1, 0), geometry.NewPoint2D(0, 1)))

	results := mgr.Results()
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	// Computed with the manager's own 0.5 mm spacing.
	if results[0].RealWorldValue == nil || *results[0].RealWorldValue != 5.0 {
		t.Errorf("distance result = %+v, want 5.0 mm", results[0])
	}
	if !scalar.EqualWithinAbs(results[1].PixelValue, 90, 0.1) {
		t.Errorf("angle result = %v, want 90", results[1].PixelValue)
	}
}

func TestManagerHitTest(t *testing.T) {
	mgr, f := testManager()
	// Both measurements share a point at (10, 10); first-inserted wins.
	mgr.Add(f.Distance("d1", geometry.NewPoint2D(10, 10), geometry.NewPoint2D(50, 50)))
	mgr.Add(f.Circle("c1", geometry.NewPoint2D(10, 10), geometry.NewPoint2D(15, 10)))

	m, idx, ok := mgr.HitTest(geometry.NewPoint2D(11, 11), 5)
	if !ok || m.ID != "d1" || idx != 0 {
		t.Errorf("HitTest = %s/%d/%v, want d1/0/true", m.ID, idx, ok)
	}

	if _, _, ok := mgr.HitTest(geometry.NewPoint2D(500, 500), 5); ok {
		t.Error("HitTest far from every point should miss")
	}
}

func TestManagerJSONRoundTrip(t *testing.T) {
	mgr, f := testManager()
	sel := 1
	mgr.Add(f.Distance("d1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(10, 0)).
		WithLabel("femur").WithSelected(true).WithSelectedPoint(&sel))
	mgr.Add(f.Angle("a1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(1, 0), geometry.NewPoint2D(0, 1)))
	mgr.Add(f.Area("ar1", []geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}))

	data, err := json.Marshal(mgr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	restored := NewManager(Calibration{})
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	cal := restored.Calibration()
	if len(cal.PixelSpacing) != 2 || cal.PixelSpacing[0] != 0.5 || cal.Units != "mm" {
		t.Errorf("calibration not restored: %+v", cal)
	}
	if restored.Len() != mgr.Len() {
		t.Fatalf("Len = %d, want %d", restored.Len(), mgr.Len())
	}

	orig := mgr.Measurements()
	back := restored.Measurements()
	for i := range orig {
		if back[i].ID != orig[i].ID || back[i].Kind != orig[i].Kind ||
			back[i].Label != orig[i].Label || back[i].Selected != orig[i].Selected {
			t.Errorf("measurement %d mismatch: %+v vs %+v", i, back[i], orig[i])
		}
		if !back[i].CreatedAt.Equal(orig[i].CreatedAt) {
			t.Errorf("measurement %d CreatedAt mismatch", i)
		}
		if len(back[i].Points) != len(orig[i].Points) {
			t.Fatalf("measurement %d point count mismatch", i)
		}
		for j := range orig[i].Points {
			if back[i].Points[j] != orig[i].Points[j] {
				t.Errorf("measurement %d point %d mismatch", i, j)
			}
		}
	}

	if back[0].SelectedPoint == nil || *back[0].SelectedPoint != 1 {
		t.Error("selectedPointIndex not restored")
	}

	origResults := mgr.Results()
	backResults := restored.Results()
	for i := range origResults {
		if !scalar.EqualWithinAbs(origResults[i].PixelValue, backResults[i].PixelValue, 1e-9) {
			t.Errorf("result %d pixel value drifted: %v vs %v",
				i, origResults[i].PixelValue, backResults[i].PixelValue)
		}
	}
}

func TestManagerUnmarshalMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"units": `},
		{"missing id", `{"units":"mm","measurements":[{"kind":"distance","points":[[0,0],[1,1]],"createdAt":"2024-03-15T10:30:00Z"}]}`},
		{"bad kind", `{"units":"mm","measurements":[{"id":"x","kind":"volume","points":[[0,0],[1,1]],"createdAt":"2024-03-15T10:30:00Z"}]}`},
		{"wrong arity", `{"units":"mm","measurements":[{"id":"x","kind":"angle","points":[[0,0],[1,1]],"createdAt":"2024-03-15T10:30:00Z"}]}`},
		{"duplicate id", `{"units":"mm","measurements":[` +
			`{"id":"x","kind":"distance","points":[[0,0],[1,1]],"createdAt":"2024-03-15T10:30:00Z"},` +
			`{"id":"x","kind":"distance","points":[[0,0],[2,2]],"createdAt":"2024-03-15T10:30:00Z"}]}`},
		{"selected point out of range", `{"units":"mm","measurements":[{"id":"x","kind":"distance","points":[[0,0],[1,1]],"createdAt":"2024-03-15T10:30:00Z","selectedPointIndex":5}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, f := testManager()
			mgr.Add(f.Distance("keep", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(1, 0)))

			err := mgr.UnmarshalJSON([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("error %v should wrap ErrMalformed", err)
			}
			// Atomic failure: previous state intact.
			if mgr.Len() != 1 {
				t.Errorf("manager state changed on failed unmarshal, Len = %d", mgr.Len())
			}
			if _, ok := mgr.Get("keep"); !ok {
				t.Error("existing measurement lost on failed unmarshal")
			}
		})
	}
}

func TestCalibrationScales(t *testing.T) {
	tests := []struct {
		name       string
		spacing    []float64
		wantLinear float64
		wantArea   float64
		calibrated bool
	}{
		{"isotropic single", []float64{0.5}, 0.5, 0.25, true},
		{"isotropic pair", []float64{0.5, 0.5}, 0.5, 0.25, true},
		{"anisotropic mean", []float64{0.4, 0.6}, 0.5, 0.24, true},
		{"uncalibrated", nil, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := Calibration{PixelSpacing: tt.spacing}
			linear, ok := cal.LinearScale()
			if ok != tt.calibrated {
				t.Fatalf("LinearScale ok = %v, want %v", ok, tt.calibrated)
			}
			if ok && !scalar.EqualWithinAbs(linear, tt.wantLinear, 1e-12) {
				t.Errorf("LinearScale = %v, want %v", linear, tt.wantLinear)
			}
			area, ok := cal.AreaScale()
			if ok && !scalar.EqualWithinAbs(area, tt.wantArea, 1e-12) {
				t.Errorf("AreaScale = %v, want %v", area, tt.wantArea)
			}
		})
	}
}
