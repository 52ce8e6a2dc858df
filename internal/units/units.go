// Package units provides shared constants and validation for the length
// units used by flatfile depth columns.
package units

import "fmt"

// Unit constants
const (
	M  = "m"
	KM = "km"
)

// ValidDepthUnits contains all valid depth unit values
var ValidDepthUnits = []string{M, KM}

// IsValidDepthUnit checks if the given unit is in the list of valid units
func IsValidDepthUnit(unit string) bool {
	for _, validUnit := range ValidDepthUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidDepthUnitsString returns a comma-separated string of valid units for error messages
func GetValidDepthUnitsString() string {
	return "m, km"
}

// DepthToKM converts a depth expressed in unit to kilometres.
// Negative values (flatfile "unknown" sentinels such as -999) are passed
// through unscaled so downstream checks still see them as negative.
func DepthToKM(depth float64, unit string) (float64, error) {
	switch unit {
	case KM:
		return depth, nil
	case M:
		if depth < 0 {
			return depth, nil
		}
		return depth / 1000, nil
	default:
		return 0, fmt.Errorf("unknown depth unit %q (valid: %s)", unit, GetValidDepthUnitsString())
	}
}
