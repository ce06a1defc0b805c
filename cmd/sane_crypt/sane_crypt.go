// Command sane_crypt encrypts or decrypts standard input to standard output as a sane session
// stream.
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"io"
	"log/slog"
	"os"

	"github.com/niluxv/permutation-based-crypto/sane"
)

func main() {
	var (
		decrypt   = flag.Bool("d", false, "decrypt instead of encrypt")
		keyHex    = flag.String("key", "", "the key, hex-encoded")
		nonceHex  = flag.String("nonce", "", "the nonce, hex-encoded")
		blockSize = flag.Int("block", 64*1024, "the stream block size in bytes")
	)
	flag.Parse()

	log := slog.New(slog.Default().Handler())

	key, err := hex.DecodeString(*keyHex)
	if err != nil {
		log.Error("invalid key", "err", err)
		os.Exit(1)
	}
	nonce, err := hex.DecodeString(*nonceHex)
	if err != nil {
		log.Error("invalid nonce", "err", err)
		os.Exit(1)
	}

	s, err := sane.NewSession(key, nonce)
	if err != nil {
		log.Error("failed to create session", "err", err)
		os.Exit(1)
	}

	in := bufio.NewReader(os.Stdin)
	out := bufio.NewWriter(os.Stdout)

	if *decrypt {
		r := s.OpenReader(in, *blockSize)
		if _, err := io.Copy(out, r); err != nil {
			log.Error("failed to decrypt", "err", err)
			os.Exit(1)
		}
		_ = r.Close()
	} else {
		w := s.SealWriter(out, *blockSize)
		if _, err := io.Copy(w, in); err != nil {
			log.Error("failed to encrypt", "err", err)
			os.Exit(1)
		}
		if err := w.Close(); err != nil {
			log.Error("failed to encrypt", "err", err)
			os.Exit(1)
		}
	}

	if err := out.Flush(); err != nil {
		log.Error("failed to write output", "err", err)
		os.Exit(1)
	}
}
