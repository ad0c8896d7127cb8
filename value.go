// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package recwatch

import (
	"math"
	"reflect"
)

// sameFloat compares two floating-point values with SameValue semantics:
// NaN is equal to itself, while positive and negative zero are distinct.
func sameFloat(x, y float64) bool {
	if math.IsNaN(x) {
		return math.IsNaN(y)
	}

	return x == y && math.Signbit(x) == math.Signbit(y)
}

// sameValue determines whether two property values are the same for the
// purposes of change detection. This is the SameValue comparison, not
// ordinary equality: NaN is the same as NaN, and positive zero is NOT
// the same as negative zero.
//
// Records are compared by identity. Any other value that is not comparable
// is never the same as anything, including itself, and so is always
// reported as a change.
func sameValue(x, y any) bool {
	switch fx := x.(type) {
	case float64:
		fy, ok := y.(float64)
		return ok && sameFloat(fx, fy)

	case float32:
		fy, ok := y.(float32)
		return ok && sameFloat(float64(fx), float64(fy))

	case *Record:
		fy, ok := y.(*Record)
		return ok && fx == fy
	}

	if x == nil || y == nil {
		return x == y
	}

	if !reflect.TypeOf(x).Comparable() || !reflect.TypeOf(y).Comparable() {
		return false
	}

	return x == y
}
