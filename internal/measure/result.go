package measure

import (
	"fmt"
	"math"

	"dicom-measure/pkg/geometry"
)

// Result is the computed output of a measurement. Results are ephemeral:
// they are recomputed on demand and never persisted.
type Result struct {
	// PixelValue is the raw pixel-space value. Its meaning depends on
	// the kind: length for Distance, degrees for Angle, radius for
	// Circle, unit-less polygon area for Area.
	PixelValue float64

	// RealWorldValue is the calibrated value; nil when no pixel spacing
	// is available or the kind is calibration-invariant (Angle).
	RealWorldValue *float64

	// DisplayText is formatted for direct display.
	DisplayText string

	// Extra holds named auxiliary values, e.g. "area" for circles.
	Extra map[string]float64
}

// Compute calculates the measurement's result under the given
// calibration. Panics if the point count violates the kind's arity;
// construction should have made that impossible.
func (m Measurement) Compute(cal Calibration) Result {
	m.mustValidate()

	switch m.Kind {
	case KindDistance:
		return m.computeDistance(cal)
	case KindAngle:
		return m.computeAngle()
	case KindCircle:
		return m.computeCircle(cal)
	case KindArea:
		return m.computeArea(cal)
	default:
		panic(fmt.Sprintf("measure: unknown kind %d", int(m.Kind)))
	}
}

func (m Measurement) computeDistance(cal Calibration) Result {
	px := m.Points[0].Distance(m.Points[1])
	return lengthResult(px, cal)
}

// computeAngle returns the angle in degrees between the two arms.
// A zero-length arm yields the documented 0 sentinel rather than NaN.
// Angles are calibration-invariant.
func (m Measurement) computeAngle() Result {
	deg := geometry.AngleDeg(m.Points[0], m.Points[1], m.Points[2])
	return Result{
		PixelValue:  deg,
		DisplayText: fmt.Sprintf("%.1f°", deg),
	}
}

func (m Measurement) computeCircle(cal Calibration) Result {
	radius := m.Points[0].Distance(m.Points[1])
	res := lengthResult(radius, cal)

	area := math.Pi * radius * radius
	if scale, ok := cal.AreaScale(); ok {
		area *= scale
	}
	res.Extra = map[string]float64{"area": area}
	return res
}

func (m Measurement) computeArea(cal Calibration) Result {
	px := geometry.PolygonArea(m.Points)

	res := Result{PixelValue: px}
	if scale, ok := cal.AreaScale(); ok {
		rw := px * scale
		res.RealWorldValue = &rw
		res.DisplayText = fmt.Sprintf("%.2f %s²", rw, cal.UnitsOrDefault())
	} else {
		res.DisplayText = fmt.Sprintf("%.2f px²", px)
	}
	return res
}

// lengthResult builds the result for a linear pixel value (distance or
// circle radius), scaled by the calibration when present.
func lengthResult(px float64, cal Calibration) Result {
	res := Result{PixelValue: px}
	if scale, ok := cal.LinearScale(); ok {
		rw := px * scale
		res.RealWorldValue = &rw
		res.DisplayText = fmt.Sprintf("%.2f %s", rw, cal.UnitsOrDefault())
	} else {
		res.DisplayText = fmt.Sprintf("%.2f px", px)
	}
	return res
}
