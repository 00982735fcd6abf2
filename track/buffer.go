package track

import "hawkdrive/geometry"

// Buffer holds one fully encoded track in host memory, one bit per cell.
// A single cursor tracks the current read/write position; all cursor
// motion wraps modulo the raw track length. None of the primitives
// bounds-check against sector or field boundaries: the controller is
// responsible for sequencing calls relative to gap/sync/field layout.
type Buffer struct {
	bits   []byte // one bit per entry, values 0 or 1
	cursor int    // current position in [0, RawTrackBits)
}

// NewBuffer creates an empty (all zero bits) track buffer.
func NewBuffer() *Buffer {
	return &Buffer{bits: make([]byte, geometry.RawTrackBits)}
}

// Cursor returns the current bit position.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// SetCursor moves the cursor to an absolute bit position, wrapped
// modulo the track length.
func (b *Buffer) SetCursor(pos int) {
	pos %= len(b.bits)
	if pos < 0 {
		pos += len(b.bits)
	}
	b.cursor = pos
}

// Rewind moves the cursor backward by count bits, wrapping at the
// start of the track.
func (b *Buffer) Rewind(count int) {
	b.SetCursor(b.cursor - count)
}

func (b *Buffer) step() {
	b.cursor++
	if b.cursor == len(b.bits) {
		b.cursor = 0
	}
}

// WriteBits serializes count bits from data into the track at the
// cursor, most significant bit first per source byte, and advances the
// cursor by count.
func (b *Buffer) WriteBits(count int, data []byte) {
	for i := 0; i < count; i++ {
		b.bits[b.cursor] = (data[i/8] >> (7 - i%8)) & 1
		b.step()
	}
}

// SetBits writes a run of count identical bits at the cursor and
// advances the cursor by count.
func (b *Buffer) SetBits(count int, val byte) {
	val &= 1
	for i := 0; i < count; i++ {
		b.bits[b.cursor] = val
		b.step()
	}
}

// ReadBits extracts count bits from the track at the cursor into dest,
// most significant bit first per destination byte, and advances the
// cursor by count. A trailing partial byte is left-aligned.
func (b *Buffer) ReadBits(count int, dest []byte) {
	for i := 0; i < count; i++ {
		if i%8 == 0 {
			dest[i/8] = 0
		}
		dest[i/8] |= b.bits[b.cursor] << (7 - i%8)
		b.step()
	}
}
