// Package utils contains small helpers shared across the urdfkit packages.
package utils

import (
	"math"
	"strconv"
	"strings"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// Clamp returns value limited to the range [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Float64AlmostEqual returns whether a and b differ by less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// SpaceDelimitedStringToFloatSlice splits up space-delimited fields such as
// the xyz or rpy attributes found in URDF and COLLADA documents. Fields that
// fail to parse become NaN rather than aborting the conversion.
func SpaceDelimitedStringToFloatSlice(s string) []float64 {
	var converted []float64
	for _, field := range strings.Fields(s) {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			value = math.NaN()
		}
		converted = append(converted, value)
	}
	return converted
}

// SpaceDelimitedStringToIntSlice is the integer companion of
// SpaceDelimitedStringToFloatSlice, used for COLLADA index streams.
func SpaceDelimitedStringToIntSlice(s string) []int {
	var converted []int
	for _, field := range strings.Fields(s) {
		value, err := strconv.Atoi(field)
		if err != nil {
			value = 0
		}
		converted = append(converted, value)
	}
	return converted
}
