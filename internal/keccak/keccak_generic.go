package keccak

import (
	"encoding/binary"
	"math/bits"
)

// roundConstants holds the iota-step constants for all 24 rounds of
// Keccak-f[1600]. Reduced-round variants use the tail of this table, so
// Keccak-p[1600, n] matches the final n rounds of the full permutation.
var roundConstants = [24]uint64{ //nolint:gochecknoglobals // these are constants
	0x0000000000000001, 0x0000000000008082,
	0x800000000000808a, 0x8000000080008000,
	0x000000000000808b, 0x0000000080000001,
	0x8000000080008081, 0x8000000000008009,
	0x000000000000008a, 0x0000000000000088,
	0x0000000080008009, 0x000000008000000a,
	0x000000008000808b, 0x800000000000008b,
	0x8000000000008089, 0x8000000000008003,
	0x8000000000008002, 0x8000000000000080,
	0x000000000000800a, 0x800000008000000a,
	0x8000000080008081, 0x8000000000008080,
	0x0000000080000001, 0x8000000080008008,
}

// rotations holds the rho-step offsets, indexed by lane position 5*y+x.
var rotations = [25]int{ //nolint:gochecknoglobals // these are constants
	0, 1, 62, 28, 27,
	36, 44, 6, 55, 20,
	3, 10, 43, 25, 39,
	41, 45, 15, 21, 8,
	18, 2, 61, 56, 14,
}

func permute(state *[200]byte, rounds int) {
	var a [25]uint64
	for i := range 25 {
		a[i] = binary.LittleEndian.Uint64(state[i*8 : i*8+8])
	}

	for _, rc := range roundConstants[24-rounds:] {
		// Theta
		var c, d [5]uint64
		for x := range 5 {
			c[x] = a[x] ^ a[x+5] ^ a[x+10] ^ a[x+15] ^ a[x+20]
		}
		for x := range 5 {
			d[x] = c[(x+4)%5] ^ bits.RotateLeft64(c[(x+1)%5], 1)
		}
		for i := range a {
			a[i] ^= d[i%5]
		}

		// Rho and pi
		var b [25]uint64
		for y := range 5 {
			for x := range 5 {
				b[5*((2*x+3*y)%5)+y] = bits.RotateLeft64(a[5*y+x], rotations[5*y+x])
			}
		}

		// Chi
		for y := range 5 {
			for x := range 5 {
				a[5*y+x] = b[5*y+x] ^ (^b[5*y+(x+1)%5] & b[5*y+(x+2)%5])
			}
		}

		// Iota
		a[0] ^= rc
	}

	for i := range 25 {
		binary.LittleEndian.PutUint64(state[i*8:i*8+8], a[i])
	}
}
