package annotation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dicom-measure/internal/measure"
	"dicom-measure/pkg/geometry"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	mgr := measure.NewManager(measure.Calibration{PixelSpacing: []float64{0.5, 0.5}, Units: "mm"})
	f := measure.Factory{}
	mgr.Add(f.Distance("d1", geometry.NewPoint2D(0, 0), geometry.NewPoint2D(10, 0)))
	mgr.Add(f.Circle("c1", geometry.NewPoint2D(20, 20), geometry.NewPoint2D(25, 20)))

	doc := New(mgr)
	doc.ImagePath = "slice_042.png"

	path := filepath.Join(t.TempDir(), "slice_042.annot.json")
	if err := doc.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", loaded.Version, CurrentVersion)
	}
	if loaded.ImagePath != "slice_042.png" {
		t.Errorf("ImagePath = %q", loaded.ImagePath)
	}
	if loaded.State.Len() != 2 {
		t.Errorf("restored %d measurements, want 2", loaded.State.Len())
	}

	cal := loaded.State.Calibration()
	if len(cal.PixelSpacing) != 2 || cal.PixelSpacing[0] != 0.5 {
		t.Errorf("calibration not restored: %+v", cal)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.annot.json")
	if err := os.WriteFile(path, []byte(`{"version": 1, "state": {"measurements": [{"id":"x","kind":"distance","points":[[0,0]]}]}}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); !errors.Is(err, measure.ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestLoadMissingState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.annot.json")
	if err := os.WriteFile(path, []byte(`{"version": 1}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); !errors.Is(err, measure.ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
