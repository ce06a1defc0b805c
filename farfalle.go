// Package farfalle implements the [Farfalle] construction for building deck functions: doubly-extendable
// cryptographic keyed functions mapping a key and a sequence of input strings to a pseudorandom output
// stream of arbitrary length.
//
// A deck function is extendable in both directions. Absorbing a fragment never commits the instance:
// output can be read at any point, and further fragments can be absorbed afterwards. Output is
// prefix-stable: for a given key and fragment sequence, the first n bytes of the stream do not depend on
// how much of it is read. One keyed primitive therefore serves as a MAC, a stream cipher, a key
// derivation function, and the core of the encryption schemes in this module's subpackages.
//
// The engine is parameterized by a Config carrying the permutation and the two rolling functions of a
// concrete construction. The kravatte and xoofff packages provide the two supported instances,
// [Kravatte] over Keccak-p[1600, 6] and [Xoofff] over Xoodoo[6].
//
// [Farfalle]: https://eprint.iacr.org/2016/1188.pdf
// [Kravatte]: https://keccak.team/kravatte.html
// [Xoofff]: https://eprint.iacr.org/2018/767.pdf
package farfalle

import (
	"encoding"
	"errors"
	"slices"
	"strconv"

	"github.com/niluxv/permutation-based-crypto/internal/mem"
)

// A KeySizeError is returned by New when the key length is not supported by the construction.
type KeySizeError int

func (k KeySizeError) Error() string {
	return "farfalle: invalid key size " + strconv.Itoa(int(k))
}

// ErrNegativeOutput is returned when a negative output length is requested.
var ErrNegativeOutput = errors.New("farfalle: negative output length")

// A Config supplies the permutation and rolling functions of a concrete deck function. All state slices
// passed to its methods are exactly Width bytes long and are modified in place.
type Config interface {
	// Width returns the permutation's state size in bytes.
	Width() int
	// Permute applies the permutation to the state.
	Permute(state []byte)
	// RollCompress advances the rolling key that whitens input blocks.
	RollCompress(state []byte)
	// RollExpand advances the rolling state that generates output blocks.
	RollExpand(state []byte)
}

// A Deck is a keyed deck function instance. It absorbs a sequence of input fragments and produces the
// output stream determined by the key and the exact fragment sequence: fragment order and boundaries
// matter, and an empty fragment is distinct from no fragment.
//
// Reading output does not change the deck. Digests of different lengths agree on their common prefix,
// and more fragments may be absorbed after output has been read.
//
// Deck instances are not concurrent-safe.
type Deck struct {
	cfg       Config
	mask      []byte // the expanded key mask
	roll      []byte // the rolling input mask, advanced per block and per fragment
	acc       []byte // the compression accumulator
	streaming bool
}

// New creates a Deck from the given configuration and key.
//
// The key is padded and permuted into a width-sized mask; the key itself is not retained. New returns a
// KeySizeError if the key is empty or longer than Width-1 bytes.
func New(cfg Config, key []byte) (*Deck, error) {
	width := cfg.Width()
	if len(key) == 0 || len(key) >= width {
		return nil, KeySizeError(len(key))
	}

	mask := make([]byte, width)
	copy(mask, key)
	mask[len(key)] = 0x01
	cfg.Permute(mask)

	return &Deck{
		cfg:  cfg,
		mask: mask,
		roll: slices.Clone(mask),
		acc:  make([]byte, width),
	}, nil
}

// Width returns the state width of the deck's configuration in bytes.
func (d *Deck) Width() int {
	return len(d.mask)
}

// Absorb mixes part into the deck's state as a single fragment.
func (d *Deck) Absorb(part []byte) {
	d.checkStreaming()

	width := len(d.roll)
	x := make([]byte, width)
	for len(part) >= width {
		copy(x, part)
		d.compressBlock(x)
		part = part[width:]
	}

	// Pad the fragment remainder with 10* into the final block.
	clear(x)
	copy(x, part)
	x[len(part)] = 0x01
	d.compressBlock(x)

	// Advance the rolling key once more to separate this fragment from the next.
	d.cfg.RollCompress(d.roll)
}

// Digest returns the first n bytes of the deck's output stream for the fragments absorbed so far.
//
// Digest does not consume the deck: calling it again returns the same bytes, and fragments may still be
// absorbed afterwards. It returns ErrNegativeOutput if n is negative.
func (d *Deck) Digest(n int) ([]byte, error) {
	return d.AppendDigest(nil, n)
}

// AppendDigest appends the first n bytes of the deck's output stream to dst and returns the resulting
// slice. See Digest.
func (d *Deck) AppendDigest(dst []byte, n int) ([]byte, error) {
	d.checkStreaming()
	if n < 0 {
		return nil, ErrNegativeOutput
	}

	ret, out := mem.SliceForAppend(dst, n)
	_, _ = d.Reader().Read(out) // never fails
	return ret, nil
}

// Reader returns a reader over the deck's output stream for the fragments absorbed so far.
//
// The stream is infinite and prefix-stable: readers created from the same state produce the same bytes
// regardless of read granularity, and Digest(n) equals the first n bytes of any reader. The reader is a
// snapshot; it is unaffected by later operations on the deck.
func (d *Deck) Reader() *Reader {
	d.checkStreaming()

	y := slices.Clone(d.acc)
	d.cfg.Permute(y)

	return &Reader{
		cfg:  d.cfg,
		mask: slices.Clone(d.roll),
		next: y,
		buf:  make([]byte, len(y)),
		idx:  len(y),
	}
}

// Clone returns an independent copy of the deck.
func (d *Deck) Clone() *Deck {
	d.checkStreaming()

	return &Deck{
		cfg:  d.cfg,
		mask: slices.Clone(d.mask),
		roll: slices.Clone(d.roll),
		acc:  slices.Clone(d.acc),
	}
}

// AppendBinary appends the binary representation of the deck's state (key mask, rolling key, and
// accumulator) to the given slice. It implements encoding.BinaryAppender.
func (d *Deck) AppendBinary(b []byte) ([]byte, error) {
	d.checkStreaming()

	b = append(b, d.mask...)
	b = append(b, d.roll...)
	b = append(b, d.acc...)
	return b, nil
}

// MarshalBinary returns the binary representation of the deck's state. It implements
// encoding.BinaryMarshaler.
func (d *Deck) MarshalBinary() (data []byte, err error) {
	return d.AppendBinary(make([]byte, 0, 3*len(d.mask)))
}

// UnmarshalBinary restores the deck's state from the given binary representation. The deck must already
// be configured with the construction that produced the state. It implements
// encoding.BinaryUnmarshaler.
func (d *Deck) UnmarshalBinary(data []byte) error {
	d.checkStreaming()
	if d.cfg == nil {
		return errors.New("farfalle: cannot unmarshal into an unconfigured deck")
	}

	width := d.cfg.Width()
	if len(data) != 3*width {
		return errors.New("farfalle: invalid state length")
	}

	copy(d.mask, data[:width])
	copy(d.roll, data[width:2*width])
	copy(d.acc, data[2*width:])
	return nil
}

// compressBlock absorbs one width-sized block, clobbering x.
func (d *Deck) compressBlock(x []byte) {
	mem.XOR(x, x, d.roll)
	d.cfg.Permute(x)
	mem.XOR(d.acc, d.acc, x)
	d.cfg.RollCompress(d.roll)
}

func (d *Deck) checkStreaming() {
	if d.streaming {
		panic("farfalle: deck has an open streaming operation")
	}
}

var (
	_ encoding.BinaryAppender    = (*Deck)(nil)
	_ encoding.BinaryMarshaler   = (*Deck)(nil)
	_ encoding.BinaryUnmarshaler = (*Deck)(nil)
)
