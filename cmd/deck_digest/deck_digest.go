// Command deck_digest computes a keyed deck function digest of standard input.
//
// The input is absorbed as a single fragment and the digest is printed as hex.
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	farfalle "github.com/niluxv/permutation-based-crypto"
	"github.com/niluxv/permutation-based-crypto/kravatte"
	"github.com/niluxv/permutation-based-crypto/xoofff"
)

func main() {
	var (
		algorithm = flag.String("algorithm", "kravatte", "the deck function to use (kravatte or xoofff)")
		keyHex    = flag.String("key", "", "the key, hex-encoded")
		size      = flag.Int("n", 32, "the digest size in bytes")
	)
	flag.Parse()

	log := slog.New(slog.Default().Handler())

	key, err := hex.DecodeString(*keyHex)
	if err != nil {
		log.Error("invalid key", "err", err)
		os.Exit(1)
	}

	var d *farfalle.Deck
	switch *algorithm {
	case "kravatte":
		d, err = kravatte.New(key)
	case "xoofff":
		d, err = xoofff.New(key)
	default:
		log.Error("unknown algorithm", "algorithm", *algorithm)
		os.Exit(1)
	}
	if err != nil {
		log.Error("invalid key", "err", err)
		os.Exit(1)
	}

	w := d.AbsorbWriter(io.Discard)
	if _, err := io.Copy(w, bufio.NewReader(os.Stdin)); err != nil {
		log.Error("failed to read input", "err", err)
		os.Exit(1)
	}
	if err := w.Close(); err != nil {
		log.Error("failed to absorb input", "err", err)
		os.Exit(1)
	}

	digest, err := d.Digest(*size)
	if err != nil {
		log.Error("invalid digest size", "n", *size, "err", err)
		os.Exit(1)
	}
	fmt.Println(hex.EncodeToString(digest))
}
