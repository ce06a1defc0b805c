// Package hpke implements a hybrid public key encryption (HPKE) scheme.
//
// Messages are encrypted with a deterministic authenticated cipher keyed from static-ephemeral and
// static-static Diffie-Hellman shared secrets over Ristretto255. The ephemeral scalar is hedged: it
// is derived from the sender's private key, the receiver's public key, caller-provided random data,
// and the message itself, so a broken random source degrades encryption of repeated messages to
// deterministic encryption instead of leaking keys.
//
// In the signcryption model (which is suitable for analyzing confidentiality and authenticity in the
// public key model), this scheme is outsider-secure for both confidentiality and authenticity. No
// attacker only in possession of public keys can read plaintexts or forge ciphertexts. It is also
// insider-secure for confidentiality: an attacker who has the sender's private key but not the
// receiver's private key cannot read plaintexts. It is not, however, insider-secure for authenticity.
// An attacker in possession of the receiver's private key can forge messages from any sender whose
// public key they possess (aka Key Compromise Impersonation).
package hpke

import (
	"crypto/cipher"

	"github.com/gtank/ristretto255"
	"github.com/niluxv/permutation-based-crypto/kravatte"
	"github.com/niluxv/permutation-based-crypto/siv"
)

// Overhead is the size, in bytes, of the additional data added to a message by Seal.
const Overhead = 32 + siv.TagSize

// Seal encrypts the given plaintext for the owner of the given public key, using the given sender's
// private key and user-provided random data.
func Seal(domain string, qR *ristretto255.Element, dS *ristretto255.Scalar, rand, plaintext []byte) []byte {
	qS := ristretto255.NewIdentityElement().ScalarBaseMult(dS)

	// Derive a hedged ephemeral scalar from the sender's private key, the receiver, the provided
	// randomness, and the message.
	hedge, _ := kravatte.New(dS.Bytes())
	hedge.Absorb([]byte(domain))
	hedge.Absorb(qR.Bytes())
	hedge.Absorb(rand)
	hedge.Absorb(plaintext)
	seed, _ := hedge.Digest(64) // never fails
	dE, _ := ristretto255.NewScalar().SetUniformBytes(seed)
	qE := ristretto255.NewIdentityElement().ScalarBaseMult(dE)

	ssE := ristretto255.NewIdentityElement().ScalarMult(dE, qR)
	ssS := ristretto255.NewIdentityElement().ScalarMult(dS, qR)

	aead := dem(domain, ssE, ssS, qS, qR, qE)
	return aead.Seal(qE.Bytes(), qE.Bytes(), plaintext, nil)
}

// Open decrypts the ciphertext produced by Seal. If the ciphertext was not produced for the given
// keys or has been modified, a siv.ErrInvalidCiphertext is returned.
func Open(domain string, dR *ristretto255.Scalar, qS *ristretto255.Element, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < Overhead {
		return nil, siv.ErrInvalidCiphertext
	}

	qE, _ := ristretto255.NewIdentityElement().SetCanonicalBytes(ciphertext[:32])
	if qE == nil {
		return nil, siv.ErrInvalidCiphertext
	}

	qR := ristretto255.NewIdentityElement().ScalarBaseMult(dR)
	ssE := ristretto255.NewIdentityElement().ScalarMult(dR, qE)
	ssS := ristretto255.NewIdentityElement().ScalarMult(dR, qS)

	aead := dem(domain, ssE, ssS, qS, qR, qE)
	return aead.Open(nil, qE.Bytes(), ciphertext[32:], nil)
}

// dem derives the data encapsulation mechanism from the shared secrets and the transcript of public
// keys.
func dem(domain string, ssE, ssS, qS, qR, qE *ristretto255.Element) cipher.AEAD {
	kdf, _ := kravatte.New(ssE.Bytes())
	kdf.Absorb([]byte(domain))
	kdf.Absorb(ssS.Bytes())
	kdf.Absorb(qS.Bytes())
	kdf.Absorb(qR.Bytes())
	kdf.Absorb(qE.Bytes())

	demKey, _ := kdf.Digest(32) // never fails
	aead, _ := siv.New(demKey, 32)
	return aead
}
