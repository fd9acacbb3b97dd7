package measure

import (
	"gonum.org/v1/gonum/stat"
)

// DefaultUnits is the unit label assumed when none is supplied. DICOM
// PixelSpacing is specified in millimetres.
const DefaultUnits = "mm"

// Calibration converts pixel-space measurement values to physical units.
// PixelSpacing holds the physical distance per pixel step, one entry per
// image axis (row spacing, column spacing); nil means uncalibrated.
// Units is an opaque label; no unit-system validation is performed.
type Calibration struct {
	PixelSpacing []float64
	Units        string
}

// Calibrated reports whether a usable pixel spacing is present.
func (c Calibration) Calibrated() bool {
	return len(c.PixelSpacing) > 0
}

// UnitsOrDefault returns the unit label, falling back to DefaultUnits.
func (c Calibration) UnitsOrDefault() string {
	if c.Units == "" {
		return DefaultUnits
	}
	return c.Units
}

// LinearScale returns the factor converting a pixel-space length to a
// physical length. With anisotropic spacing the axes are averaged, since
// a measured segment has no fixed axis alignment.
func (c Calibration) LinearScale() (float64, bool) {
	if !c.Calibrated() {
		return 0, false
	}
	return stat.Mean(c.PixelSpacing, nil), true
}

// AreaScale returns the factor converting a pixel-space area to a
// physical area: the product of the two principal-axis spacings, or the
// square of a single isotropic value.
func (c Calibration) AreaScale() (float64, bool) {
	if !c.Calibrated() {
		return 0, false
	}
	if len(c.PixelSpacing) >= 2 {
		return c.PixelSpacing[0] * c.PixelSpacing[1], true
	}
	return c.PixelSpacing[0] * c.PixelSpacing[0], true
}
