package measure

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dicom-measure/pkg/geometry"
)

// ErrMalformed is wrapped by all deserialization failures. A failed
// unmarshal leaves the manager untouched; no partial state is ever
// reconstructed.
var ErrMalformed = errors.New("malformed measurement state")

// managerState is the serialized whole-state shape:
//
//	{pixelSpacing, units, measurements: [{id, kind, points:[[x,y],...],
//	 label, createdAt, isSelected, selectedPointIndex}, ...]}
type managerState struct {
	PixelSpacing []float64          `json:"pixelSpacing,omitempty"`
	Units        string             `json:"units"`
	Measurements []measurementState `json:"measurements"`
}

type measurementState struct {
	ID            string       `json:"id"`
	Kind          Kind         `json:"kind"`
	Points        [][2]float64 `json:"points"`
	Label         string       `json:"label,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	Selected      bool         `json:"isSelected"`
	SelectedPoint *int         `json:"selectedPointIndex,omitempty"`
}

// MarshalJSON serializes the full manager state, preserving measurement
// order and all fields.
func (mgr *Manager) MarshalJSON() ([]byte, error) {
	state := managerState{
		PixelSpacing: mgr.cal.PixelSpacing,
		Units:        mgr.cal.Units,
		Measurements: make([]measurementState, 0, len(mgr.order)),
	}

	for _, id := range mgr.order {
		m := mgr.byID[id]
		points := make([][2]float64, len(m.Points))
		for i, p := range m.Points {
			points[i] = [2]float64{p.X, p.Y}
		}
		state.Measurements = append(state.Measurements, measurementState{
			ID:            m.ID,
			Kind:          m.Kind,
			Points:        points,
			Label:         m.Label,
			CreatedAt:     m.CreatedAt,
			Selected:      m.Selected,
			SelectedPoint: m.SelectedPoint,
		})
	}

	return json.Marshal(state)
}

// UnmarshalJSON restores the full manager state. On malformed input the
// operation fails atomically and the manager keeps its previous state.
func (mgr *Manager) UnmarshalJSON(data []byte) error {
	var state managerState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	order := make([]string, 0, len(state.Measurements))
	byID := make(map[string]Measurement, len(state.Measurements))

	for _, ms := range state.Measurements {
		if ms.ID == "" {
			return fmt.Errorf("%w: measurement without id", ErrMalformed)
		}
		if _, dup := byID[ms.ID]; dup {
			return fmt.Errorf("%w: duplicate measurement id %q", ErrMalformed, ms.ID)
		}

		points := make([]geometry.Point2D, len(ms.Points))
		for i, xy := range ms.Points {
			points[i] = geometry.Point2D{X: xy[0], Y: xy[1]}
		}

		m := Measurement{
			ID:            ms.ID,
			Kind:          ms.Kind,
			Points:        points,
			Label:         ms.Label,
			CreatedAt:     ms.CreatedAt,
			Selected:      ms.Selected,
			SelectedPoint: ms.SelectedPoint,
		}
		if err := m.validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		order = append(order, m.ID)
		byID[m.ID] = m
	}

	cal := Calibration{PixelSpacing: state.PixelSpacing, Units: state.Units}
	cal.Units = cal.UnitsOrDefault()

	mgr.cal = cal
	mgr.order = order
	mgr.byID = byID
	return nil
}
