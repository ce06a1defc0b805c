// Package siv implements a Synthetic Initialization Vector (SIV) AEAD scheme over the Kravatte deck
// function.
//
// This provides nonce-misuse resistant authenticated encryption (mrAE) and deterministic encryption
// (DAE) with a two-pass algorithm: one deck pass authenticates the inputs into a synthetic tag, a
// second keyed by that tag generates the keystream.
package siv

import (
	"crypto/cipher"
	"crypto/subtle"
	"errors"

	farfalle "github.com/niluxv/permutation-based-crypto"
	"github.com/niluxv/permutation-based-crypto/internal/mem"
	"github.com/niluxv/permutation-based-crypto/kravatte"
)

// TagSize is the number of bytes added to the plaintext by the Seal operation.
const TagSize = 16

// ErrInvalidCiphertext is returned when the ciphertext is invalid or has been decrypted with the wrong
// key.
var ErrInvalidCiphertext = errors.New("siv: invalid ciphertext")

// New returns a cipher.AEAD using the given key. The nonce size must be at least 16 bytes; the key
// must be a valid Kravatte key.
func New(key []byte, nonceSize int) (cipher.AEAD, error) {
	if nonceSize < 16 {
		return nil, errors.New("siv: nonce size must be at least 16 bytes")
	}

	d, err := kravatte.New(key)
	if err != nil {
		return nil, err
	}
	return &aead{d: d, nonceSize: nonceSize}, nil
}

type aead struct {
	d         *farfalle.Deck
	nonceSize int
}

func (a *aead) NonceSize() int {
	return a.nonceSize
}

func (a *aead) Overhead() int {
	return TagSize
}

func (a *aead) Seal(dst, nonce, plaintext, additionalData []byte) []byte {
	if len(nonce) != a.NonceSize() {
		panic("siv: invalid nonce size")
	}

	base := a.d.Clone()
	base.Absorb(additionalData)
	base.Absorb(nonce)

	auth := base.Clone()
	auth.Absorb(plaintext)
	tag, _ := auth.Digest(TagSize) // never fails

	conf := base
	conf.Absorb(tag)

	ret, out := mem.SliceForAppend(dst, len(plaintext)+TagSize)
	ciphertext := out[:len(plaintext)]

	keystream := make([]byte, len(plaintext))
	_, _ = conf.Reader().Read(keystream)
	mem.XOR(ciphertext, plaintext, keystream)
	copy(out[len(plaintext):], tag)
	return ret
}

// Open decrypts and authenticates ciphertext.
//
// WARNING: Open decrypts the ciphertext in-place before verifying the authentication tag. If the tag
// is invalid, the decrypted plaintext (which is now in dst) is zeroed out, but the original ciphertext
// is lost. If you need to preserve the ciphertext in case of error, do not use in-place decryption
// (i.e., do not use ciphertext[:0] as dst).
func (a *aead) Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	if len(nonce) != a.NonceSize() {
		panic("siv: invalid nonce size")
	}
	if len(ciphertext) < TagSize {
		return nil, ErrInvalidCiphertext
	}

	ciphertext, receivedTag := ciphertext[:len(ciphertext)-TagSize], ciphertext[len(ciphertext)-TagSize:]

	base := a.d.Clone()
	base.Absorb(additionalData)
	base.Absorb(nonce)

	auth := base.Clone()

	conf := base
	conf.Absorb(receivedTag)

	ret, plaintext := mem.SliceForAppend(dst, len(ciphertext))
	keystream := make([]byte, len(ciphertext))
	_, _ = conf.Reader().Read(keystream)
	mem.XOR(plaintext, ciphertext, keystream)

	auth.Absorb(plaintext)
	expectedTag, _ := auth.Digest(TagSize) // never fails
	if subtle.ConstantTimeCompare(expectedTag, receivedTag) == 0 {
		clear(plaintext)
		return nil, ErrInvalidCiphertext
	}

	return ret, nil
}

var _ cipher.AEAD = (*aead)(nil)
