package model

// RecordUnit is the fixed-point scale applied to prices and amounts
// stored in tape records.
const RecordUnit int64 = 100_000_000

const epsilon = 1e-5

// IsZero reports whether a is zero within the simulation epsilon.
func IsZero(a float64) bool {
	return -epsilon < a && a < epsilon
}

// Near reports whether a and b are equal within the simulation epsilon.
func Near(a, b float64) bool {
	return IsZero(a - b)
}

// FromRecord converts a scaled tape integer to its decimal value.
func FromRecord(v int64) float64 {
	return float64(v) / float64(RecordUnit)
}

// ToRecord converts a decimal value to its scaled tape integer.
func ToRecord(v float64) int64 {
	if v < 0 {
		return int64(v*float64(RecordUnit) - 0.5)
	}
	return int64(v*float64(RecordUnit) + 0.5)
}
