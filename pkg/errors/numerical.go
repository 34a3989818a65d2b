package errors

import (
	"math"
)

// CheckFinite checks if an attribute array contains NaN or Inf
// and returns an InvalidAttributeValueError naming the first offending value.
func CheckFinite(owner, attribute string, values []float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewInvalidAttributeValueError(owner, attribute, v)
		}
	}
	return nil
}

// CheckScalar checks a single scalar attribute value.
func CheckScalar(owner, attribute string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewInvalidAttributeValueError(owner, attribute, value)
	}
	return nil
}

// Matrix is the read side of a gonum matrix.
type Matrix interface {
	Dims() (r, c int)
	At(i, j int) float64
}

// CheckMatrix checks all values in a matrix, such as a coefficient matrix.
func CheckMatrix(owner, attribute string, matrix Matrix) error {
	rows, cols := matrix.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := matrix.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return NewInvalidAttributeValueError(owner, attribute, v)
			}
		}
	}
	return nil
}
