// Package measure provides the measurement annotation engine: geometric
// measurement primitives over 2D image-pixel coordinates, hit-testing,
// point-level editing, pixel-to-physical calibration and lossless
// serialization of the full annotation state.
package measure

import "fmt"

// Kind identifies the geometric measurement type. The set is closed:
// computation code switches exhaustively over these values.
type Kind int

const (
	// KindDistance is a straight-line length between two points.
	KindDistance Kind = iota
	// KindAngle is the angle at a vertex between two arms.
	KindAngle
	// KindCircle is a circle given by center and an edge point.
	KindCircle
	// KindArea is a closed polygon over ordered vertices.
	KindArea
)

var kindNames = map[Kind]string{
	KindDistance: "distance",
	KindAngle:    "angle",
	KindCircle:   "circle",
	KindArea:     "area",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MinPoints returns the minimum number of points a measurement of this
// kind requires. Distance and Circle take exactly 2, Angle exactly 3;
// Area takes at least 3 with no upper bound.
func (k Kind) MinPoints() int {
	switch k {
	case KindDistance, KindCircle:
		return 2
	case KindAngle, KindArea:
		return 3
	default:
		return 0
	}
}

// validArity reports whether a point count satisfies the kind's arity.
// Only Area is open-ended above its minimum.
func (k Kind) validArity(n int) bool {
	if k == KindArea {
		return n >= k.MinPoints()
	}
	return n == k.MinPoints()
}

// MarshalText implements encoding.TextMarshaler so kinds serialize as
// stable names rather than integers.
func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown measurement kind %d", int(k))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown measurement kind %q", string(text))
}
