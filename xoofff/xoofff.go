// Package xoofff implements the Xoofff deck function: the Farfalle construction instantiated with
// Xoodoo[6], the last six rounds of the Xoodoo permutation, on a 48-byte state.
package xoofff

import (
	"encoding/binary"
	"math/bits"

	farfalle "github.com/niluxv/permutation-based-crypto"
	"github.com/niluxv/permutation-based-crypto/internal/xoodoo"
)

const (
	// Width is the permutation state size in bytes.
	Width = 48

	// MaxKeySize is the largest supported key size in bytes.
	MaxKeySize = Width - 1

	rounds = 6
)

// New creates a Xoofff deck keyed with the given key. The key must be between 1 and MaxKeySize bytes
// long.
func New(key []byte) (*farfalle.Deck, error) {
	return farfalle.New(config{}, key)
}

type config struct{}

func (config) Width() int { return Width }

func (config) Permute(state []byte) {
	xoodoo.PermuteN((*[Width]byte)(state), rounds)
}

// RollCompress rotates the state one plane down with the new top plane (x1, x2, x3, x0') where
// x0' = x0 ^ (x0 << 13) ^ rol32(x4, 3). The shift is a plain shift, not a rotation.
func (config) RollCompress(state []byte) {
	x0 := binary.LittleEndian.Uint32(state[0:])
	x4 := binary.LittleEndian.Uint32(state[16:])
	rollPlanes(state, x0^(x0<<13)^bits.RotateLeft32(x4, 3))
}

// RollExpand rotates the state one plane down with the new top plane (x1, x2, x3, x0') where
// x0' = (x4 & x8) ^ rol32(x0, 5) ^ rol32(x4, 13) ^ 0x7.
func (config) RollExpand(state []byte) {
	x0 := binary.LittleEndian.Uint32(state[0:])
	x4 := binary.LittleEndian.Uint32(state[16:])
	x8 := binary.LittleEndian.Uint32(state[32:])
	rollPlanes(state, (x4&x8)^bits.RotateLeft32(x0, 5)^bits.RotateLeft32(x4, 13)^0x7)
}

// rollPlanes moves lanes 4..11 down to 0..7 and fills lanes 8..11 with the old lanes 1..3 followed by
// the replacement lane x0.
func rollPlanes(state []byte, x0 uint32) {
	var q [12]byte
	copy(q[:], state[4:16])
	copy(state, state[16:])
	copy(state[32:], q[:])
	binary.LittleEndian.PutUint32(state[44:], x0)
}

var _ farfalle.Config = config{}
