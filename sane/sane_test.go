package sane_test

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"testing"

	farfalle "github.com/niluxv/permutation-based-crypto"
	"github.com/niluxv/permutation-based-crypto/sane"
)

func newPair(t *testing.T) (send, recv *sane.Session) {
	t.Helper()

	send, err := sane.NewSession([]byte("my-secret-key"), []byte("0123456789abcdef"))
	if err != nil {
		t.Fatal(err)
	}
	recv, err = sane.NewSession([]byte("my-secret-key"), []byte("0123456789abcdef"))
	if err != nil {
		t.Fatal(err)
	}
	return send, recv
}

func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestKnownAnswers(t *testing.T) {
	s, err := sane.NewSession([]byte("my-secret-key"), []byte("0123456789abcdef"))
	if err != nil {
		t.Fatal(err)
	}

	// The messages form one session; each vector depends on the ones before it.
	messages := []struct {
		ad, plaintext, want string
	}{
		{"header", "hello world", "9f9b23d4e6d4f16f5900cf80e95a367987a8ec77b0553166ef48ad"},
		{"", "second message", "a6ed488246b80e1418d64e52d8865d72c87ccfb411ad5fa826b14d42372b"},
		{"", "", "6cb78eef4f1b58a130fa6c4d42f8c76b"},
	}
	for i, m := range messages {
		got := s.Wrap(nil, []byte(m.ad), []byte(m.plaintext))
		if want := m.want; hex.EncodeToString(got) != want {
			t.Errorf("message %d: Wrap(%q, %q) = %x, want = %s", i, m.ad, m.plaintext, got, want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	send, recv := newPair(t)

	messages := []struct {
		ad, plaintext []byte
	}{
		{[]byte("header"), []byte("hello world")},
		{nil, []byte("no associated data this time")},
		{[]byte("only associated data"), nil},
		{nil, nil},
		{[]byte("ad"), pattern(1000)},
	}
	for i, m := range messages {
		wrapped := send.Wrap(nil, m.ad, m.plaintext)
		if got, want := len(wrapped), len(m.plaintext)+sane.TagSize; got != want {
			t.Fatalf("message %d: len(Wrap()) = %d, want = %d", i, got, want)
		}

		plaintext, err := recv.Unwrap(nil, m.ad, wrapped)
		if err != nil {
			t.Fatalf("message %d: Unwrap() = %v", i, err)
		}
		if got, want := plaintext, m.plaintext; !bytes.Equal(got, want) {
			t.Errorf("message %d: Unwrap(Wrap(%x)) = %x, want = %x", i, want, got, want)
		}
	}
}

func TestInPlace(t *testing.T) {
	send, recv := newPair(t)
	ad := []byte("additional data")
	plaintext := []byte("hello world")

	buf := append(make([]byte, 0, len(plaintext)+sane.TagSize), plaintext...)
	wrapped := send.Wrap(buf[:0], ad, buf)
	if got, want := &wrapped[0], &buf[:1][0]; got != want {
		t.Error("Wrap() did not reuse the plaintext's storage")
	}

	unwrapped, err := recv.Unwrap(wrapped[:0], ad, wrapped)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := unwrapped, plaintext; !bytes.Equal(got, want) {
		t.Errorf("Unwrap(Wrap(%x)) = %x, want = %x", want, got, want)
	}
}

func TestOutOfOrder(t *testing.T) {
	send, recv := newPair(t)
	m1 := send.Wrap(nil, []byte("a"), []byte("first"))
	m2 := send.Wrap(nil, []byte("b"), []byte("second"))

	// Messages must arrive in the order they were wrapped.
	if _, err := recv.Unwrap(nil, []byte("b"), m2); !errors.Is(err, sane.ErrInvalidCiphertext) {
		t.Errorf("Unwrap() = %v, want = %v", err, sane.ErrInvalidCiphertext)
	}

	// A rejected message does not desynchronize the session.
	if _, err := recv.Unwrap(nil, []byte("a"), m1); err != nil {
		t.Fatalf("Unwrap() = %v", err)
	}
	if _, err := recv.Unwrap(nil, []byte("b"), m2); err != nil {
		t.Fatalf("Unwrap() = %v", err)
	}
}

func TestReplay(t *testing.T) {
	send, recv := newPair(t)
	m1 := send.Wrap(nil, nil, []byte("first"))
	m2 := send.Wrap(nil, nil, []byte("second"))

	if _, err := recv.Unwrap(nil, nil, m1); err != nil {
		t.Fatalf("Unwrap() = %v", err)
	}
	if _, err := recv.Unwrap(nil, nil, m1); !errors.Is(err, sane.ErrInvalidCiphertext) {
		t.Errorf("Unwrap() accepted a replayed message")
	}
	if _, err := recv.Unwrap(nil, nil, m2); err != nil {
		t.Fatalf("Unwrap() = %v", err)
	}
}

func TestTampering(t *testing.T) {
	send, recv := newPair(t)
	ad := []byte("ad")
	wrapped := send.Wrap(nil, ad, []byte("hello world"))

	for i := range wrapped {
		tampered := bytes.Clone(wrapped)
		tampered[i] ^= 1
		if _, err := recv.Unwrap(nil, ad, tampered); !errors.Is(err, sane.ErrInvalidCiphertext) {
			t.Errorf("Unwrap() accepted a message with byte %d modified", i)
		}
	}
	if _, err := recv.Unwrap(nil, []byte("bad"), wrapped); !errors.Is(err, sane.ErrInvalidCiphertext) {
		t.Error("Unwrap() accepted a message with the wrong associated data")
	}
	if _, err := recv.Unwrap(nil, ad, wrapped[:len(wrapped)-1]); !errors.Is(err, sane.ErrInvalidCiphertext) {
		t.Error("Unwrap() accepted a truncated message")
	}

	// The rejections above must not have consumed the message slot.
	if _, err := recv.Unwrap(nil, ad, wrapped); err != nil {
		t.Fatalf("Unwrap() = %v", err)
	}
}

func TestShortCiphertext(t *testing.T) {
	_, recv := newPair(t)
	if _, err := recv.Unwrap(nil, nil, make([]byte, sane.TagSize-1)); !errors.Is(err, sane.ErrInvalidCiphertext) {
		t.Errorf("Unwrap() = %v, want = %v", err, sane.ErrInvalidCiphertext)
	}
}

func TestWrongNonce(t *testing.T) {
	send, _ := newPair(t)
	wrapped := send.Wrap(nil, nil, []byte("hello world"))

	recv, err := sane.NewSession([]byte("my-secret-key"), []byte("fedcba9876543210"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := recv.Unwrap(nil, nil, wrapped); !errors.Is(err, sane.ErrInvalidCiphertext) {
		t.Errorf("Unwrap() = %v, want = %v", err, sane.ErrInvalidCiphertext)
	}
}

func TestInvalidKey(t *testing.T) {
	var keyErr farfalle.KeySizeError
	if _, err := sane.NewSession(nil, []byte("nonce")); !errors.As(err, &keyErr) {
		t.Errorf("NewSession() = %v, want a KeySizeError", err)
	}
}

//nolint:gocognit // nested tests
func TestStreams(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		for _, blockSize := range []int{1, 7, 64, 1024, sane.MaxBlockSize} {
			t.Run(fmt.Sprintf("%d", blockSize), func(t *testing.T) {
				send, recv := newPair(t)
				message := pattern(10_000)

				buf := bytes.NewBuffer(nil)
				w := send.SealWriter(buf, blockSize)
				if _, err := io.CopyBuffer(w, bytes.NewReader(message), make([]byte, 100)); err != nil {
					t.Fatal(err)
				}
				if err := w.Close(); err != nil {
					t.Fatal(err)
				}

				r := recv.OpenReader(bytes.NewReader(buf.Bytes()), sane.MaxBlockSize)
				b, err := io.ReadAll(r)
				if err != nil {
					t.Fatal(err)
				}
				if err := r.Close(); err != nil {
					t.Fatal(err)
				}

				if got, want := b, message; !bytes.Equal(got, want) {
					t.Errorf("OpenReader(SealWriter()) returned %d bytes, want %d", len(got), len(want))
				}
			})
		}
	})

	t.Run("empty stream", func(t *testing.T) {
		send, recv := newPair(t)

		buf := bytes.NewBuffer(nil)
		w := send.SealWriter(buf, sane.MaxBlockSize)
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}

		r := recv.OpenReader(bytes.NewReader(buf.Bytes()), sane.MaxBlockSize)
		b, err := io.ReadAll(r)
		if err != nil {
			t.Fatal(err)
		}
		if len(b) != 0 {
			t.Errorf("OpenReader(SealWriter()) = %x, want no data", b)
		}
	})

	t.Run("message after stream", func(t *testing.T) {
		send, recv := newPair(t)

		buf := bytes.NewBuffer(nil)
		w := send.SealWriter(buf, 64)
		if _, err := w.Write([]byte("streamed data")); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}

		r := recv.OpenReader(bytes.NewReader(buf.Bytes()), 64)
		if _, err := io.ReadAll(r); err != nil {
			t.Fatal(err)
		}
		if err := r.Close(); err != nil {
			t.Fatal(err)
		}

		// The stream is part of the session history; both sides continue in sync.
		wrapped := send.Wrap(nil, []byte("ad"), []byte("one more message"))
		plaintext, err := recv.Unwrap(nil, []byte("ad"), wrapped)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := plaintext, []byte("one more message"); !bytes.Equal(got, want) {
			t.Errorf("Unwrap(Wrap(%x)) = %x, want = %x", want, got, want)
		}
	})

	t.Run("truncation", func(t *testing.T) {
		send, recv := newPair(t)

		buf := bytes.NewBuffer(nil)
		w := send.SealWriter(buf, sane.MaxBlockSize)
		if _, err := w.Write([]byte("message")); err != nil {
			t.Fatal(err)
		}
		// Do not close w, so no terminal block is written.

		r := recv.OpenReader(bytes.NewReader(buf.Bytes()), sane.MaxBlockSize)
		if _, err := io.ReadAll(r); !errors.Is(err, sane.ErrInvalidCiphertext) {
			t.Errorf("ReadAll() = %v, want = %v", err, sane.ErrInvalidCiphertext)
		}
	})

	t.Run("tampering", func(t *testing.T) {
		send, _ := newPair(t)

		buf := bytes.NewBuffer(nil)
		w := send.SealWriter(buf, sane.MaxBlockSize)
		if _, err := w.Write([]byte("message")); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}

		data := buf.Bytes()
		for _, i := range []int{0, headerLen(), headerLen() + 3, len(data) - 1} {
			tampered := bytes.Clone(data)
			tampered[i] ^= 1

			_, recv := newPair(t)
			r := recv.OpenReader(bytes.NewReader(tampered), sane.MaxBlockSize)
			if _, err := io.ReadAll(r); !errors.Is(err, sane.ErrInvalidCiphertext) {
				t.Errorf("ReadAll() with byte %d modified = %v, want = %v", i, err, sane.ErrInvalidCiphertext)
			}
		}
	})

	t.Run("large block", func(t *testing.T) {
		send, recv := newPair(t)

		buf := bytes.NewBuffer(nil)
		w := send.SealWriter(buf, sane.MaxBlockSize)
		if _, err := w.Write([]byte("message")); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}

		// Set max block size smaller than "message" length (7 bytes).
		r := recv.OpenReader(bytes.NewReader(buf.Bytes()), 6)
		if _, err := io.ReadAll(r); !errors.Is(err, sane.ErrBlockTooLarge) {
			t.Errorf("ReadAll() = %v, want = %v", err, sane.ErrBlockTooLarge)
		}
	})

	t.Run("invalid block size", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("The code did not panic")
			}
		}()

		send, _ := newPair(t)
		send.SealWriter(io.Discard, 0)
	})
}

func TestStreamingGuards(t *testing.T) {
	t.Run("writer", func(t *testing.T) {
		send, _ := newPair(t)
		w := send.SealWriter(io.Discard, 64)

		func() {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("The code did not panic")
				}
			}()
			send.Wrap(nil, nil, []byte("nope"))
		}()

		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
		send.Wrap(nil, nil, []byte("fine now"))
	})

	t.Run("reader", func(t *testing.T) {
		_, recv := newPair(t)
		r := recv.OpenReader(bytes.NewReader(nil), 64)

		func() {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("The code did not panic")
				}
			}()
			_, _ = recv.Unwrap(nil, nil, make([]byte, sane.TagSize))
		}()

		if err := r.Close(); err != nil {
			t.Fatal(err)
		}
		if _, err := r.Read(make([]byte, 1)); !errors.Is(err, io.ErrClosedPipe) {
			t.Errorf("Read() = %v, want = %v", err, io.ErrClosedPipe)
		}
	})
}

// headerLen is the length of a wrapped block header on the wire.
func headerLen() int {
	return 3 + sane.TagSize
}
