package measure

import (
	"iter"

	"dicom-measure/pkg/geometry"
)

// Manager owns the measurement collection for one image/slice viewing
// context, together with its calibration. Iteration order is insertion
// order; ids are unique, and re-adding an existing id replaces the
// measurement in its original position.
//
// Calibration is fixed at construction. Changing calibration means
// constructing a new manager and re-adding the measurements; geometry is
// preserved and results are recomputed under the new calibration.
//
// The manager performs no internal locking; concurrent mutation must be
// serialized by the owning caller.
type Manager struct {
	cal Calibration

	order []string
	byID  map[string]Measurement
}

// NewManager creates an empty manager with the given calibration. An
// empty unit label defaults to DefaultUnits.
func NewManager(cal Calibration) *Manager {
	cal.Units = cal.UnitsOrDefault()
	return &Manager{
		cal:  cal,
		byID: make(map[string]Measurement),
	}
}

// Calibration returns the manager's calibration.
func (mgr *Manager) Calibration() Calibration {
	return mgr.cal
}

// Len returns the number of measurements.
func (mgr *Manager) Len() int {
	return len(mgr.order)
}

// Add inserts the measurement, or replaces an existing measurement with
// the same id in its original position.
func (mgr *Manager) Add(m Measurement) {
	if _, exists := mgr.byID[m.ID]; !exists {
		mgr.order = append(mgr.order, m.ID)
	}
	mgr.byID[m.ID] = m
}

// Remove deletes the measurement with the given id. Returns false, as a
// no-op, if the id is unknown.
func (mgr *Manager) Remove(id string) bool {
	if _, exists := mgr.byID[id]; !exists {
		return false
	}
	delete(mgr.byID, id)
	for i, existing := range mgr.order {
		if existing == id {
			mgr.order = append(mgr.order[:i], mgr.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the measurement with the given id.
func (mgr *Manager) Get(id string) (Measurement, bool) {
	m, ok := mgr.byID[id]
	return m, ok
}

// Update replaces the measurement with the same id, preserving its
// position. Unknown ids are a no-op.
func (mgr *Manager) Update(m Measurement) {
	if _, exists := mgr.byID[m.ID]; !exists {
		return
	}
	mgr.byID[m.ID] = m
}

// Measurements returns the measurements in insertion order.
func (mgr *Manager) Measurements() []Measurement {
	out := make([]Measurement, 0, len(mgr.order))
	for _, id := range mgr.order {
		out = append(out, mgr.byID[id])
	}
	return out
}

// ByKind returns a restartable sequence over the measurements of the
// given kind, in manager order.
func (mgr *Manager) ByKind(kind Kind) iter.Seq[Measurement] {
	return func(yield func(Measurement) bool) {
		for _, id := range mgr.order {
			m := mgr.byID[id]
			if m.Kind != kind {
				continue
			}
			if !yield(m) {
				return
			}
		}
	}
}

// Clear removes all measurements. Idempotent.
func (mgr *Manager) Clear() {
	mgr.order = mgr.order[:0]
	clear(mgr.byID)
}

// Results computes one result per measurement, in manager order, under
// the manager's calibration.
func (mgr *Manager) Results() []Result {
	out := make([]Result, 0, len(mgr.order))
	for _, id := range mgr.order {
		out = append(out, mgr.byID[id].Compute(mgr.cal))
	}
	return out
}

// HitTest finds the first measurement (in insertion order) with a point
// within hitRadius of pos, returning the measurement and the point
// index. First-inserted-wins is the tie-break between overlapping
// measurements.
func (mgr *Manager) HitTest(pos geometry.Point2D, hitRadius float64) (Measurement, int, bool) {
	for _, id := range mgr.order {
		m := mgr.byID[id]
		if idx, ok := m.HitPoint(pos, hitRadius); ok {
			return m, idx, true
		}
	}
	return Measurement{}, 0, false
}
