// Package bitstream packs and unpacks the bit vectors behind gnubg's
// position and match identifiers.
//
// Both identifiers use the same convention: bits are produced in a single
// ordered stream and packed 8 per byte, least-significant bit first. The
// first bit written becomes bit 0 of byte 0, the ninth becomes bit 0 of
// byte 1, and so on. Multi-bit fields are written little-endian, so the
// field's bit 0 is emitted first.
package bitstream

import "errors"

// ErrOverflow is reported when a write does not fit the writer's capacity.
var ErrOverflow = errors.New("bitstream: capacity exceeded")

// ErrExhausted is reported when a read runs past the end of the stream.
var ErrExhausted = errors.New("bitstream: no bits left")

// Writer appends bits to a fixed-capacity buffer.
// Errors are sticky: after the first overflow every write is a no-op and
// Err returns ErrOverflow.
type Writer struct {
	buf []byte
	cap int // capacity in bits
	pos int // bits written
	err error
}

// NewWriter returns a writer holding at most nbits bits. The backing buffer
// is ceil(nbits/8) bytes and starts zeroed, so unwritten bits read as 0.
func NewWriter(nbits int) *Writer {
	return &Writer{
		buf: make([]byte, (nbits+7)/8),
		cap: nbits,
	}
}

// WriteBit appends a single bit.
func (w *Writer) WriteBit(bit bool) {
	if w.err != nil {
		return
	}
	if w.pos >= w.cap {
		w.err = ErrOverflow
		return
	}
	if bit {
		w.buf[w.pos>>3] |= 1 << uint(w.pos&7)
	}
	w.pos++
}

// WriteUnary appends n one-bits followed by a terminating zero.
func (w *Writer) WriteUnary(n int) {
	for i := 0; i < n; i++ {
		w.WriteBit(true)
	}
	w.WriteBit(false)
}

// WriteUint appends the low width bits of v, least significant first.
func (w *Writer) WriteUint(v uint64, width int) {
	for i := 0; i < width; i++ {
		w.WriteBit(v>>uint(i)&1 == 1)
	}
}

// Len returns the number of bits written so far.
func (w *Writer) Len() int { return w.pos }

// Err returns the first error encountered, if any.
func (w *Writer) Err() error { return w.err }

// Bytes returns the packed buffer. Bits past Len are zero padding.
func (w *Writer) Bytes() []byte {
	out := make([]byte, len(w.buf))
	copy(out, w.buf)
	return out
}

// Reader consumes bits from a packed buffer in the order a Writer produced them.
type Reader struct {
	buf []byte
	end int // bits available
	pos int
}

// NewReader reads at most nbits bits from data. If data is shorter than
// nbits the reader is limited to len(data)*8 bits.
func NewReader(data []byte, nbits int) *Reader {
	if max := len(data) * 8; nbits > max {
		nbits = max
	}
	return &Reader{buf: data, end: nbits}
}

// ReadBit returns the next bit.
func (r *Reader) ReadBit() (bool, error) {
	if r.pos >= r.end {
		return false, ErrExhausted
	}
	bit := r.buf[r.pos>>3]>>uint(r.pos&7)&1 == 1
	r.pos++
	return bit, nil
}

// ReadUnary counts one-bits up to and including the next zero. A run that
// reaches the end of the stream without a terminator is returned as is,
// which matches how gnubg treats the padded tail of a position key.
func (r *Reader) ReadUnary() int {
	n := 0
	for r.pos < r.end {
		bit, _ := r.ReadBit()
		if !bit {
			break
		}
		n++
	}
	return n
}

// ReadUint reads a width-bit little-endian field.
func (r *Reader) ReadUint(width int) (uint64, error) {
	var v uint64
	for i := 0; i < width; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		if bit {
			v |= 1 << uint(i)
		}
	}
	return v, nil
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int { return r.end - r.pos }
