package iitii

import "math"

// Pos is the set of position types an index can be built over. Positions
// only need to be totally ordered and support basic arithmetic; the
// maximum representable value of the chosen type is reserved as an
// invalid-position sentinel and must not appear in indexed intervals.
type Pos interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// isFloat reports whether P is a floating-point type.
func isFloat[P Pos]() bool {
	return P(1)/P(2) != 0
}

// maxPos returns the largest value of P (+Inf for floats), reserved as
// the invalid-position sentinel.
func maxPos[P Pos]() P {
	if isFloat[P]() {
		return P(math.Inf(1))
	}
	var zero P
	if zero-1 > zero { // unsigned: wraparound yields all one bits
		return zero - 1
	}
	// signed: climb by doubling until the top bit; minInt-1 wraps to maxInt
	m := P(1)
	for m*2 > m {
		m *= 2
	}
	return m*2 - 1
}

// minPos returns the smallest value of P (-Inf for floats), used as the
// "no such node" sentinel for outside max-end values.
func minPos[P Pos]() P {
	if isFloat[P]() {
		return P(math.Inf(-1))
	}
	var zero P
	if zero-1 > zero {
		return zero
	}
	return maxPos[P]() + 1
}
