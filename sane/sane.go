// Package sane implements session authenticated encryption over the Kravatte deck function.
//
// A session carries an ordered sequence of messages under one key and nonce. The session deck absorbs
// the nonce and then every associated data and ciphertext in order, so each message's tag
// authenticates the entire history before it: messages cannot be reordered, replayed, or dropped
// without detection. Sender and receiver must process the same sequence.
package sane

import (
	"crypto/subtle"
	"errors"

	farfalle "github.com/niluxv/permutation-based-crypto"
	"github.com/niluxv/permutation-based-crypto/internal/mem"
	"github.com/niluxv/permutation-based-crypto/kravatte"
)

// TagSize is the number of bytes added to each plaintext by the Wrap operation.
const TagSize = 16

// ErrInvalidCiphertext is returned when a ciphertext is invalid, out of sequence, or has been
// decrypted with the wrong key or nonce.
var ErrInvalidCiphertext = errors.New("sane: invalid ciphertext")

// A Session is one direction of an authenticated message sequence. The sender wraps messages and the
// receiver unwraps them in the same order.
//
// Session instances are not concurrent-safe.
type Session struct {
	d         *farfalle.Deck
	streaming bool
}

// NewSession creates a session keyed with key and bound to nonce. The key must be a valid Kravatte
// key; the nonce may be any length and must be unique per key.
func NewSession(key, nonce []byte) (*Session, error) {
	d, err := kravatte.New(key)
	if err != nil {
		return nil, err
	}
	d.Absorb(nonce)

	return &Session{d: d, streaming: false}, nil
}

// Wrap encrypts and authenticates plaintext with the given associated data, appending the ciphertext
// and a TagSize-byte tag to dst and returning the resulting slice.
//
// To reuse plaintext's storage for the encrypted output, use plaintext[:0] as dst. Otherwise, the
// remaining capacity of dst must not overlap plaintext.
func (s *Session) Wrap(dst, ad, plaintext []byte) []byte {
	s.checkStreaming()
	return s.wrap(dst, ad, plaintext)
}

// Unwrap authenticates and decrypts a message produced by the sending session's matching Wrap call,
// appending the plaintext to dst and returning the resulting slice. If the message is invalid or out
// of sequence, ErrInvalidCiphertext is returned and the session state is unchanged, so a corrupted or
// injected message does not desynchronize the parties.
//
// To reuse ciphertext's storage for the decrypted output, use ciphertext[:0] as dst. Otherwise, the
// remaining capacity of dst must not overlap ciphertext.
func (s *Session) Unwrap(dst, ad, ciphertextAndTag []byte) ([]byte, error) {
	s.checkStreaming()
	return s.unwrap(dst, ad, ciphertextAndTag)
}

func (s *Session) wrap(dst, ad, plaintext []byte) []byte {
	s.d.Absorb(ad)

	ret, out := mem.SliceForAppend(dst, len(plaintext)+TagSize)
	ciphertext, tag := out[:len(plaintext)], out[len(plaintext):]

	keystream := make([]byte, len(plaintext))
	_, _ = s.d.Reader().Read(keystream)
	mem.XOR(ciphertext, plaintext, keystream)

	s.d.Absorb(ciphertext)
	_, _ = s.d.Reader().Read(tag)
	return ret
}

func (s *Session) unwrap(dst, ad, ciphertextAndTag []byte) ([]byte, error) {
	if len(ciphertextAndTag) < TagSize {
		return nil, ErrInvalidCiphertext
	}
	ciphertext := ciphertextAndTag[:len(ciphertextAndTag)-TagSize]
	receivedTag := ciphertextAndTag[len(ciphertext):]

	// Advance a copy of the session; commit only if the tag verifies.
	d := s.d.Clone()
	d.Absorb(ad)

	keystream := make([]byte, len(ciphertext))
	_, _ = d.Reader().Read(keystream)

	d.Absorb(ciphertext)

	expectedTag := make([]byte, TagSize)
	_, _ = d.Reader().Read(expectedTag)
	if subtle.ConstantTimeCompare(expectedTag, receivedTag) == 0 {
		return nil, ErrInvalidCiphertext
	}

	ret, plaintext := mem.SliceForAppend(dst, len(ciphertext))
	mem.XOR(plaintext, ciphertext, keystream)

	s.d = d
	return ret, nil
}

func (s *Session) checkStreaming() {
	if s.streaming {
		panic("sane: session has an open streaming operation")
	}
}
