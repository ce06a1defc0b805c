package farfalle

import (
	"io"
	"slices"
)

// AbsorbWriter returns a writer that absorbs everything written to it as a single fragment, forwarding
// the data to w. Writing a fragment through an AbsorbWriter is equivalent to one Absorb call with the
// concatenation of the writes, regardless of how the writes are chunked.
//
// N.B.: The returned AbsorbWriter must be closed for the fragment to be absorbed; Close is idempotent.
// While the writer is open, any other operation on the Deck will panic.
func (d *Deck) AbsorbWriter(w io.Writer) *AbsorbWriter {
	d.checkStreaming()
	d.streaming = true
	return &AbsorbWriter{d: d, w: w, buf: make([]byte, len(d.roll)), idx: 0, closed: false}
}

// An AbsorbWriter streams one fragment into a Deck. It implements io.WriteCloser.
type AbsorbWriter struct {
	d      *Deck
	w      io.Writer
	buf    []byte
	idx    int
	closed bool
}

// Write absorbs p into the pending fragment after forwarding it to the wrapped writer.
func (a *AbsorbWriter) Write(p []byte) (n int, err error) {
	n, err = a.w.Write(p)
	for b := p[:n]; len(b) > 0; {
		remain := min(len(b), len(a.buf)-a.idx)
		copy(a.buf[a.idx:], b[:remain])
		a.idx += remain
		if a.idx == len(a.buf) {
			a.d.compressBlock(a.buf)
			a.idx = 0
		}
		b = b[remain:]
	}
	return n, err
}

// Close completes the fragment and returns the deck to normal operation. It is idempotent.
func (a *AbsorbWriter) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true

	// Pad the fragment remainder with 10* and advance the rolling key past the fragment boundary.
	clear(a.buf[a.idx:])
	a.buf[a.idx] = 0x01
	a.d.compressBlock(a.buf)
	a.d.cfg.RollCompress(a.d.roll)

	a.d.streaming = false
	return nil
}

// Snapshot returns an independent Deck equal to the writer's deck after completing the fragment
// written so far. The writer stays open: later writes still extend the same fragment.
func (a *AbsorbWriter) Snapshot() *Deck {
	d := &Deck{
		cfg:  a.d.cfg,
		mask: slices.Clone(a.d.mask),
		roll: slices.Clone(a.d.roll),
		acc:  slices.Clone(a.d.acc),
	}

	x := make([]byte, len(a.buf))
	copy(x, a.buf[:a.idx])
	x[a.idx] = 0x01
	d.compressBlock(x)
	d.cfg.RollCompress(d.roll)
	return d
}

var _ io.WriteCloser = (*AbsorbWriter)(nil)
