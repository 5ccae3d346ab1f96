package util

import (
	"math"
)

// AddUint64 adds a list of uint64s together, returning false as the second
// value when the sum overflows uint64.
func AddUint64(ns ...uint64) (sum uint64, ok bool) {
	for _, n := range ns {
		if n > math.MaxUint64-sum {
			return 0, false
		}
		sum += n
	}
	return sum, true
}

// SafeAdd returns a+b and checks for overflow
func SafeAdd(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// SafeSub returns a-b and checks for underflow
func SafeSub(a, b uint64) (uint64, bool) {
	if a < b {
		return 0, false
	}
	return a - b, true
}

// SafeMul returns a*b and checks for overflow
func SafeMul(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxUint64/b {
		return 0, false
	}
	return a * b, true
}
