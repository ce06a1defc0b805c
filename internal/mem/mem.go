// Package mem provides byte-slice helpers shared by the deck engine and the
// schemes built on it.
package mem

import (
	"crypto/subtle"
	"slices"
)

// XOR XORs a and b into dst. All three slices must have the same length; dst
// may alias a or b exactly.
func XOR(dst, a, b []byte) {
	subtle.XORBytes(dst, a, b)
}

// SliceForAppend extends in by n bytes and returns the extended slice along
// with a second slice aliasing the n new bytes. No allocation is performed if
// in already has sufficient capacity.
func SliceForAppend(in []byte, n int) (head, tail []byte) {
	head = slices.Grow(in, n)
	head = head[:len(in)+n]
	tail = head[len(in):]
	return head, tail
}
