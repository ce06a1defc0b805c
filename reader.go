package farfalle

import (
	"io"

	"github.com/niluxv/permutation-based-crypto/internal/mem"
)

// A Reader produces a deck's pseudorandom output stream. The stream is infinite, so Read always fills p
// completely and never returns an error.
//
// Reader instances are not concurrent-safe.
type Reader struct {
	cfg  Config
	mask []byte // the output mask, frozen at creation
	next []byte // the rolling expansion state for the next block
	buf  []byte // the current output block
	idx  int    // bytes of buf already returned
}

// Read fills p with the next len(p) bytes of the output stream.
func (r *Reader) Read(p []byte) (n int, err error) {
	n = len(p)
	for len(p) > 0 {
		if r.idx == len(r.buf) {
			copy(r.buf, r.next)
			r.cfg.Permute(r.buf)
			mem.XOR(r.buf, r.buf, r.mask)
			r.cfg.RollExpand(r.next)
			r.idx = 0
		}

		remain := min(len(p), len(r.buf)-r.idx)
		copy(p[:remain], r.buf[r.idx:r.idx+remain])
		r.idx += remain
		p = p[remain:]
	}
	return n, nil
}

var _ io.Reader = (*Reader)(nil)
