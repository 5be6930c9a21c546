package common

// Coalesce returns the first of values that differs from the zero value of T.
// An empty string, a zero number or a nil pointer falls through to the next candidate.
//
// Parameters:
//   - values: the candidates, highest priority first
//
// Returns:
//   - T: the first non-zero candidate, or the zero value when every candidate is zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
