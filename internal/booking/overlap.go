package booking

import "time"

// Overlaps reports whether the half-open stays [existingStart, existingEnd)
// and [candidateStart, candidateEnd) share a night. A checkout on the same
// day as another stay's check-in is not an overlap.
func Overlaps(existingStart, existingEnd, candidateStart, candidateEnd time.Time) bool {
	return candidateStart.Before(existingEnd) && candidateEnd.After(existingStart)
}
