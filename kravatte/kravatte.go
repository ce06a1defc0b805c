// Package kravatte implements the Kravatte deck function: the Farfalle construction instantiated with
// Keccak-p[1600, 6], the last six rounds of Keccak-f[1600], on a 200-byte state.
package kravatte

import (
	"encoding/binary"
	"math/bits"

	farfalle "github.com/niluxv/permutation-based-crypto"
	"github.com/niluxv/permutation-based-crypto/internal/keccak"
)

const (
	// Width is the permutation state size in bytes.
	Width = 200

	// MaxKeySize is the largest supported key size in bytes.
	MaxKeySize = Width - 1

	rounds = 6
)

// New creates a Kravatte deck keyed with the given key. The key must be between 1 and MaxKeySize bytes
// long.
func New(key []byte) (*farfalle.Deck, error) {
	return farfalle.New(config{}, key)
}

type config struct{}

func (config) Width() int { return Width }

func (config) Permute(state []byte) {
	keccak.P1600((*[Width]byte)(state), rounds)
}

// RollCompress rolls the top plane, lanes 20..24: the plane shifts down one lane and the new top lane
// is rol64(x0, 7) ^ x1 ^ (x1 >> 3) over the old plane.
func (config) RollCompress(state []byte) {
	plane := state[160:Width]
	x0 := binary.LittleEndian.Uint64(plane[0:])
	x1 := binary.LittleEndian.Uint64(plane[8:])
	next := bits.RotateLeft64(x0, 7) ^ x1 ^ (x1 >> 3)

	copy(plane, plane[8:])
	binary.LittleEndian.PutUint64(plane[32:], next)
}

// RollExpand rolls the top two planes, lanes 15..24: the planes shift down one lane and the new top
// lane is rol64(x0, 7) ^ rol64(x1, 18) ^ (x2 & (x1 >> 1)) over the old planes.
func (config) RollExpand(state []byte) {
	planes := state[120:Width]
	x0 := binary.LittleEndian.Uint64(planes[0:])
	x1 := binary.LittleEndian.Uint64(planes[8:])
	x2 := binary.LittleEndian.Uint64(planes[16:])
	next := bits.RotateLeft64(x0, 7) ^ bits.RotateLeft64(x1, 18) ^ (x2 & (x1 >> 1))

	copy(planes, planes[8:])
	binary.LittleEndian.PutUint64(planes[72:], next)
}

var _ farfalle.Config = config{}
