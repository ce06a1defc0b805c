// Package xoodoo implements the Xoodoo permutation on a 48-byte state of
// twelve 32-bit little-endian lanes.
package xoodoo

// Permute applies the full 12-round Xoodoo permutation to state.
func Permute(state *[48]byte) {
	permute(state, 12)
}

// PermuteN applies the last rounds rounds of the Xoodoo permutation to state.
// It panics if rounds is not in [0, 12].
func PermuteN(state *[48]byte, rounds int) {
	if rounds < 0 || rounds > 12 {
		panic("xoodoo: invalid round count")
	}
	permute(state, rounds)
}
