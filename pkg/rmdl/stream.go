package rmdl

import (
	"encoding/binary"
	"math"
)

// Align rounds x up to the next multiple of a. a must be a power of two.
func Align(x, a int) int {
	return (x + a - 1) &^ (a - 1)
}

func isPow2(a int) bool {
	return a > 0 && a&(a-1) == 0
}

// Writer appends fixed-width fields to a growable buffer in one byte order.
type Writer struct {
	buf     []byte
	order   binary.ByteOrder
	scratch [4]byte
}

// NewWriter creates a Writer with room for sizeHint bytes.
func NewWriter(order binary.ByteOrder, sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint), order: order}
}

// Pos returns the absolute position of the next byte to be written.
func (w *Writer) Pos() int { return len(w.buf) }

// Bytes returns the written buffer.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) U32(v uint32) {
	w.order.PutUint32(w.scratch[:], v)
	w.buf = append(w.buf, w.scratch[:4]...)
}

func (w *Writer) I32(v int32) { w.U32(uint32(v)) }

func (w *Writer) U16(v uint16) {
	w.order.PutUint16(w.scratch[:], v)
	w.buf = append(w.buf, w.scratch[:2]...)
}

func (w *Writer) F32(v float32) { w.U32(math.Float32bits(v)) }

// F32s writes a float tuple.
func (w *Writer) F32s(vs ...float32) {
	for _, v := range vs {
		w.F32(v)
	}
}

// Raw appends an opaque byte range.
func (w *Writer) Raw(p []byte) { w.buf = append(w.buf, p...) }

// Zeros appends n zero bytes.
func (w *Writer) Zeros(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

// Offset writes the self-relative offset from the field being written to target.
func (w *Writer) Offset(target int) {
	w.U32(RelOffset(w.Pos(), target))
}

// PadTo appends zero bytes until Pos is a multiple of align.
func (w *Writer) PadTo(align int) error {
	if !isPow2(align) {
		return &LayoutError{Got: align, Err: ErrBadAlignment}
	}
	w.Zeros(Align(w.Pos(), align) - w.Pos())
	return nil
}

// Reader is a cursor over a fixed byte slice. The first failed read is
// sticky: later reads return zero values and Err reports the failure.
type Reader struct {
	data  []byte
	pos   int
	order binary.ByteOrder
	err   error
}

// NewReader creates a Reader positioned at pos.
func NewReader(data []byte, order binary.ByteOrder, pos int) *Reader {
	return &Reader{data: data, pos: pos, order: order}
}

// At returns a new Reader over the same data positioned at pos.
func (r *Reader) At(pos int) *Reader {
	return NewReader(r.data, r.order, pos)
}

func (r *Reader) Pos() int   { return r.pos }
func (r *Reader) Err() error { return r.err }

// Len returns the number of bytes after the cursor.
func (r *Reader) Len() int {
	if r.pos < 0 || r.pos > len(r.data) {
		return 0
	}
	return len(r.data) - r.pos
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos < 0 || r.pos > len(r.data) || n < 0 || n > len(r.data)-r.pos {
		r.err = ErrTruncated
		return nil
	}
	p := r.data[r.pos : r.pos+n]
	r.pos += n
	return p
}

func (r *Reader) U32() uint32 {
	p := r.take(4)
	if p == nil {
		return 0
	}
	return r.order.Uint32(p)
}

func (r *Reader) I32() int32 { return int32(r.U32()) }

func (r *Reader) U16() uint16 {
	p := r.take(2)
	if p == nil {
		return 0
	}
	return r.order.Uint16(p)
}

func (r *Reader) F32() float32 { return math.Float32frombits(r.U32()) }

// F32s fills dst with consecutive floats.
func (r *Reader) F32s(dst []float32) {
	for i := range dst {
		dst[i] = r.F32()
	}
}

// Raw returns the next n bytes without copying.
func (r *Reader) Raw(n int) []byte { return r.take(n) }

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) { r.take(n) }

// Offset reads a self-relative offset and resolves it against the position
// of the field itself.
func (r *Reader) Offset() int {
	field := r.pos
	return ResolveOffset(field, r.U32())
}

// PadTo advances the cursor until Pos is a multiple of align. The skipped
// bytes are not checked.
func (r *Reader) PadTo(align int) error {
	if !isPow2(align) {
		return &LayoutError{Got: align, Err: ErrBadAlignment}
	}
	r.take(Align(r.pos, align) - r.pos)
	return r.err
}
