package measure

import (
	"fmt"
	"time"

	"dicom-measure/pkg/geometry"
)

// Measurement is a single measurement annotation over image-pixel
// coordinates. Point order is semantically fixed per kind: Distance is
// (start, end), Circle is (center, edge), Angle is (vertex, arm1, arm2)
// and Area is an ordered polygon vertex list.
//
// Measurements are values: editing operations return a new Measurement
// and never mutate in place.
type Measurement struct {
	ID        string
	Kind      Kind
	Points    []geometry.Point2D
	Label     string
	CreatedAt time.Time

	// Interaction state, carried as plain fields so editing stays
	// testable by value comparison.
	Selected      bool
	SelectedPoint *int
}

// Factory creates measurements. The Clock field injects the timestamp
// source; the zero value uses the wall clock.
type Factory struct {
	Clock func() time.Time
}

func (f Factory) now() time.Time {
	if f.Clock != nil {
		return f.Clock()
	}
	return time.Now()
}

// Distance creates a distance measurement from start to end.
func (f Factory) Distance(id string, start, end geometry.Point2D) Measurement {
	return Measurement{
		ID:        id,
		Kind:      KindDistance,
		Points:    []geometry.Point2D{start, end},
		CreatedAt: f.now(),
	}
}

// Angle creates an angle measurement at vertex between the two arms.
func (f Factory) Angle(id string, vertex, arm1, arm2 geometry.Point2D) Measurement {
	return Measurement{
		ID:        id,
		Kind:      KindAngle,
		Points:    []geometry.Point2D{vertex, arm1, arm2},
		CreatedAt: f.now(),
	}
}

// Circle creates a circle measurement with the given center and a point
// on the circle's edge.
func (f Factory) Circle(id string, center, edge geometry.Point2D) Measurement {
	return Measurement{
		ID:        id,
		Kind:      KindCircle,
		Points:    []geometry.Point2D{center, edge},
		CreatedAt: f.now(),
	}
}

// Area creates a polygon area measurement over the ordered vertex list.
// Panics if fewer than 3 vertices are supplied; construction with an
// unsatisfied arity is a programmer error.
func (f Factory) Area(id string, points []geometry.Point2D) Measurement {
	if len(points) < KindArea.MinPoints() {
		panic(fmt.Sprintf("measure: area measurement needs at least %d points, got %d",
			KindArea.MinPoints(), len(points)))
	}
	pts := make([]geometry.Point2D, len(points))
	copy(pts, points)
	return Measurement{
		ID:        id,
		Kind:      KindArea,
		Points:    pts,
		CreatedAt: f.now(),
	}
}

// validate checks the arity invariant. Used on deserialized input, where
// a violation is a data error rather than a programmer error.
func (m Measurement) validate() error {
	if _, ok := kindNames[m.Kind]; !ok {
		return fmt.Errorf("measurement %q: unknown kind %d", m.ID, int(m.Kind))
	}
	if !m.Kind.validArity(len(m.Points)) {
		return fmt.Errorf("measurement %q: %s requires %d points, got %d",
			m.ID, m.Kind, m.Kind.MinPoints(), len(m.Points))
	}
	if m.SelectedPoint != nil && (*m.SelectedPoint < 0 || *m.SelectedPoint >= len(m.Points)) {
		return fmt.Errorf("measurement %q: selected point index %d out of range",
			m.ID, *m.SelectedPoint)
	}
	return nil
}

// mustValidate panics on an arity violation. Computation paths use this:
// a malformed measurement past construction is a logic defect.
func (m Measurement) mustValidate() {
	if !m.Kind.validArity(len(m.Points)) {
		panic(fmt.Sprintf("measure: %s measurement %q has %d points",
			m.Kind, m.ID, len(m.Points)))
	}
}

// HitPoint returns the index of the first point (in definition order)
// within hitRadius of pos, and whether any point qualified.
func (m Measurement) HitPoint(pos geometry.Point2D, hitRadius float64) (int, bool) {
	for i, p := range m.Points {
		if p.Distance(pos) <= hitRadius {
			return i, true
		}
	}
	return 0, false
}

// Contains reports whether pos falls inside the measurement's body.
// Only Area measurements have an interior; all other kinds return false.
func (m Measurement) Contains(pos geometry.Point2D) bool {
	if m.Kind != KindArea {
		return false
	}
	return geometry.PointInPolygon(pos, m.Points)
}

// UpdatePoint returns a copy of the measurement with the point at index
// replaced. Panics if index is out of range.
func (m Measurement) UpdatePoint(index int, p geometry.Point2D) Measurement {
	if index < 0 || index >= len(m.Points) {
		panic(fmt.Sprintf("measure: point index %d out of range for %s measurement %q",
			index, m.Kind, m.ID))
	}
	pts := make([]geometry.Point2D, len(m.Points))
	copy(pts, m.Points)
	pts[index] = p

	out := m
	out.Points = pts
	return out
}

// WithSelected returns a copy with the selection flag set. Deselecting
// also clears the selected point index.
func (m Measurement) WithSelected(selected bool) Measurement {
	out := m
	out.Selected = selected
	if !selected {
		out.SelectedPoint = nil
	}
	return out
}

// WithSelectedPoint returns a copy with the selected point index set.
// A nil index clears point selection.
func (m Measurement) WithSelectedPoint(index *int) Measurement {
	out := m
	if index == nil {
		out.SelectedPoint = nil
		return out
	}
	if *index < 0 || *index >= len(m.Points) {
		panic(fmt.Sprintf("measure: selected point index %d out of range for measurement %q",
			*index, m.ID))
	}
	idx := *index
	out.SelectedPoint = &idx
	return out
}

// WithLabel returns a copy with the label replaced.
func (m Measurement) WithLabel(label string) Measurement {
	out := m
	out.Label = label
	return out
}
