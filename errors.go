package kheap

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

// OutOfMemoryError is the error returned from allocation methods when no region of the heap
// can satisfy the requested size and alignment. Arithmetic overflow while computing an
// allocation's end address reports the same error rather than wrapping.
var OutOfMemoryError error = errors.New("out of memory")
