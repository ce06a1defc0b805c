// Package digest provides a hash.Hash over a deck function.
package digest

import (
	"hash"
	"io"

	farfalle "github.com/niluxv/permutation-based-crypto"
)

// Size is the size, in bytes, of the hash's digest.
const Size = 32

// New returns a hash.Hash over the given deck. The digest is the deck's output after absorbing the
// written data as one fragment, so a hash over a keyed deck is a MAC.
//
// The deck is cloned; the caller's instance is unaffected.
func New(d *farfalle.Deck) hash.Hash {
	h := &digest{base: d.Clone()} //nolint:exhaustruct // initialized via Reset
	h.Reset()
	return h
}

type digest struct {
	base *farfalle.Deck
	w    *farfalle.AbsorbWriter
}

func (d *digest) Write(p []byte) (n int, err error) {
	return d.w.Write(p)
}

func (d *digest) Sum(b []byte) []byte {
	out, _ := d.w.Snapshot().AppendDigest(b, Size) // never fails, Size >= 0
	return out
}

func (d *digest) Reset() {
	d.w = d.base.Clone().AbsorbWriter(io.Discard)
}

func (d *digest) Size() int {
	return Size
}

func (d *digest) BlockSize() int {
	return d.base.Width()
}

var _ hash.Hash = (*digest)(nil)
