package sane

import (
	"errors"
	"io"
	"slices"
)

// MaxBlockSize is the maximum size of a stream block, in bytes. Writes larger than this are broken up
// into blocks of this size.
const MaxBlockSize = 1<<24 - 1

// ErrBlockTooLarge is returned when reading a block which is larger than the specified maximum block
// size.
var ErrBlockTooLarge = errors.New("sane: block size > max block size")

// SealWriter wraps the session and the given io.Writer with a streaming encryption writer.
//
// The writer encodes each block's length as a 3-byte big endian integer, wraps that header as its own
// message, wraps the block, and writes both to the wrapped writer. An empty block is used to mark the
// end of the stream when the writer is closed. A block may be at most 2^24-1 bytes long (16,777,216
// bytes).
//
// The reader reads the wrapped header, unwraps it, decodes it into a block length, reads an encrypted
// block of that length and its authentication tag, then unwraps the block. When it encounters the
// empty block, it returns EOF. If the stream terminates before that, an invalid ciphertext error is
// returned.
//
// For maximum throughput and transmission efficiency, the use of bufio.Reader and bufio.Writer
// wrappers is strongly recommended.
//
// The returned io.WriteCloser MUST be closed for the encrypted stream to be valid and for the session
// to return to non-streaming mode.
//
// SealWriter panics if maxBlockSize is less than 1 or greater than MaxBlockSize.
func (s *Session) SealWriter(w io.Writer, maxBlockSize int) io.WriteCloser {
	s.checkStreaming()
	if maxBlockSize < 1 || maxBlockSize > MaxBlockSize {
		panic("sane: invalid max block size")
	}
	s.streaming = true
	return &sealWriter{
		s:            s,
		w:            w,
		buf:          make([]byte, 0, 1024),
		closed:       false,
		maxBlockSize: maxBlockSize,
	}
}

// OpenReader wraps the session and the given io.Reader with a streaming decryption reader. See the
// SealWriter documentation for the stream format.
//
// The maxBlockSize parameter limits the size of the blocks that will be read. If a block is
// encountered that is larger than this limit, a sane.ErrBlockTooLarge is returned.
//
// If the stream has been modified or truncated, a sane.ErrInvalidCiphertext is returned.
//
// WARNING: The reader allocates a buffer of size equal to the block length specified in the stream
// header (up to maxBlockSize) before authenticating the block. This creates a potential
// denial-of-service vector where a malicious stream can cause the reader to allocate large amounts of
// memory. To mitigate this, set maxBlockSize to a reasonable limit for your application (e.g., 64KiB
// or 1MiB) rather than the default MaxBlockSize (16MiB).
//
// The returned io.ReadCloser MUST be closed for the session to return to non-streaming mode.
func (s *Session) OpenReader(r io.Reader, maxBlockSize int) io.ReadCloser {
	s.checkStreaming()
	s.streaming = true
	return &openReader{
		s:            s,
		r:            r,
		buf:          make([]byte, 0, 1024),
		blockBuf:     nil,
		eos:          false,
		closed:       false,
		maxBlockSize: maxBlockSize,
	}
}

type sealWriter struct {
	s            *Session
	w            io.Writer
	buf          []byte
	closed       bool
	maxBlockSize int
}

func (s *sealWriter) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}

	total := len(p)
	for len(p) > 0 {
		blockLen := min(len(p), s.maxBlockSize)
		err = s.sealAndWrite(p[:blockLen])
		if err != nil {
			return total - len(p), err
		}
		p = p[blockLen:]
	}

	return total, nil
}

func (s *sealWriter) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	// Encode and wrap a header for a zero-length block.
	if err := s.sealAndWrite(nil); err != nil {
		return err
	}
	s.s.streaming = false
	return nil
}

func (s *sealWriter) sealAndWrite(p []byte) error {
	// Encode a header with a 3-byte big endian block length and wrap it.
	s.buf = slices.Grow(s.buf[:0], headerSize+TagSize+len(p)+TagSize)
	header := s.buf[:headerSize]
	putUint24(header, uint32(len(p))) //nolint:gosec // len(p) <= MaxBlockSize
	wrappedHeader := s.s.wrap(header[:0], nil, header)

	// Wrap the block, append it to the header, and send it.
	block := s.s.wrap(wrappedHeader, nil, p)
	if _, err := s.w.Write(block); err != nil {
		return err
	}
	return nil
}

type openReader struct {
	s             *Session
	r             io.Reader
	buf, blockBuf []byte
	eos           bool
	closed        bool
	maxBlockSize  int
}

func (o *openReader) Read(p []byte) (n int, err error) {
	if o.closed {
		return 0, io.ErrClosedPipe
	}

	if len(p) == 0 {
		return 0, nil
	}

	for {
		// If a block is buffered, satisfy the read with that.
		if len(o.blockBuf) > 0 {
			n = min(len(o.blockBuf), len(p))
			copy(p, o.blockBuf[:n])
			o.blockBuf = o.blockBuf[n:]
			return n, nil
		}

		// If the stream is closed, return EOF.
		if o.eos {
			return 0, io.EOF
		}

		// Read and unwrap the header and decode the block length.
		header, err := o.readAndOpen(headerSize)
		if err != nil {
			return 0, err
		}
		blockLen := int(uint24(header))
		if blockLen > o.maxBlockSize {
			return 0, ErrBlockTooLarge
		}

		// Read and unwrap the block.
		block, err := o.readAndOpen(blockLen)
		if err != nil {
			return 0, err
		}
		o.eos = len(block) == 0
		o.blockBuf = block
	}
}

func (o *openReader) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true
	o.s.streaming = false
	return nil
}

func (o *openReader) readAndOpen(n int) ([]byte, error) {
	o.buf = slices.Grow(o.buf[:0], n+TagSize)
	data := o.buf[:n+TagSize]
	_, err := io.ReadFull(o.r, data)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrInvalidCiphertext
		}
		return nil, err
	}
	data, err = o.s.unwrap(data[:0], nil, data)
	if err != nil {
		return nil, err
	}
	return data, nil
}

const headerSize = 3

func uint24(b []byte) uint32 {
	_ = b[2] // bounds check hint to compiler; see golang.org/issue/14808
	return uint32(b[2]) | uint32(b[1])<<8 | uint32(b[0])<<16
}

func putUint24(b []byte, v uint32) {
	_ = b[2] // early bounds check to guarantee the safety of writes below
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

var (
	_ io.WriteCloser = (*sealWriter)(nil)
	_ io.ReadCloser  = (*openReader)(nil)
)
