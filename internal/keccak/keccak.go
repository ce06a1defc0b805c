// Package keccak implements the Keccak-p[1600, n] family of permutations:
// the last n rounds of Keccak-f[1600].
package keccak

// F1600 applies the full 24-round Keccak-f[1600] permutation to the state.
func F1600(state *[200]byte) {
	permute(state, 24)
}

// P1600 applies the Keccak-p[1600, rounds] permutation to the state: the last
// rounds rounds of Keccak-f[1600]. P1600 panics if rounds is not in [0, 24].
func P1600(state *[200]byte, rounds int) {
	if rounds < 0 || rounds > 24 {
		panic("keccak: invalid round count")
	}
	permute(state, rounds)
}
