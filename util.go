package kheap

import (
	"math"

	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint
}

func CheckPow2[T Number](number T, name string) error {
	if number == 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp returns the smallest value >= value that is a multiple of alignment.
// alignment must be a power of two.
func AlignUp(value int, alignment uint) int {
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

// AlignDown returns the largest value <= value that is a multiple of alignment.
// alignment must be a power of two.
func AlignDown(value int, alignment uint) int {
	return value & int(^(alignment - 1))
}

// CheckedAdd adds two non-negative addresses or sizes and reports whether the
// sum stayed in range. Allocators use it to compute an allocation's end address
// without wrapping past the top of the address space.
func CheckedAdd(a, b int) (int, bool) {
	if b > math.MaxInt-a {
		return 0, false
	}
	return a + b, true
}
