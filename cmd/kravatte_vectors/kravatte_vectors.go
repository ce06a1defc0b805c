// Command kravatte_vectors prints human-readable test vectors for the Kravatte deck function.
//
// Each test case keys Kravatte with "kravatte test key", absorbs a fixed sequence of message
// fragments, and prints the digest as a bracketed list of per-byte hex literals:
//
//	Testcase 1:
//	-----------
//	[0x4, 0x54, 0x69, ...]
//	-----------
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/niluxv/permutation-based-crypto/kravatte"
)

const key = "kravatte test key"

//nolint:gochecknoglobals // fixed test inputs
var testcases = []struct {
	fragments []string
	size      int
}{
	{[]string{"hello world"}, 32},
	{[]string{"hello", "world"}, 32},
	{[]string{"hello world"}, 128},
}

func main() {
	var (
		testcase = flag.Int("case", 0, "print only the given test case")
		size     = flag.Int("n", 0, "override the digest size in bytes")
	)
	flag.Parse()

	log := slog.New(slog.Default().Handler())

	for i, tc := range testcases {
		if *testcase != 0 && *testcase != i+1 {
			continue
		}

		n := tc.size
		if *size > 0 {
			n = *size
		}

		digest, err := generate([]byte(key), tc.fragments, n)
		if err != nil {
			log.Error("failed to generate test case", "case", i+1, "err", err)
			os.Exit(1)
		}

		fmt.Printf("Testcase %d:\n", i+1)
		fmt.Println("-----------")
		fmt.Println(hexList(digest))
		fmt.Println("-----------")
		fmt.Println()
	}
}

func generate(key []byte, fragments []string, n int) ([]byte, error) {
	d, err := kravatte.New(key)
	if err != nil {
		return nil, err
	}
	for _, fragment := range fragments {
		d.Absorb([]byte(fragment))
	}
	return d.Digest(n)
}

// hexList renders digest bytes as unpadded hex literals, e.g. [0x1a, 0x0, 0xff, ].
func hexList(digest []byte) string {
	var b strings.Builder
	b.WriteByte('[')
	for _, v := range digest {
		fmt.Fprintf(&b, "%#x, ", v)
	}
	b.WriteByte(']')
	return b.String()
}
