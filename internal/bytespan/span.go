// Package bytespan provides a borrowed, bounds-checked cursor over a byte
// range for decoding big-endian binary formats (font tables, CFF data).
//
// A Span never allocates or copies; it holds a sub-slice of a buffer that
// outlives it (the font file's mmap-ed or read bytes) and advances as
// primitives are consumed, mirroring the cursor discipline in
// syntax.Scanner but over raw bytes instead of runes.
package bytespan

import "fmt"

// ErrUnderflow is returned when a read would advance past the end of the span.
var ErrUnderflow = fmt.Errorf("bytespan: unexpected end of data")

// Span is a borrowed (pointer, length) byte range with a read cursor.
type Span struct {
	data   []byte
	cursor int
}

// New creates a span over data, starting at offset 0.
func New(data []byte) *Span {
	return &Span{data: data}
}

// Len returns the number of unread bytes remaining.
func (s *Span) Len() int { return len(s.data) - s.cursor }

// Cursor returns the current read offset.
func (s *Span) Cursor() int { return s.cursor }

// Bytes returns the full underlying byte range (not just the remainder).
func (s *Span) Bytes() []byte { return s.data }

// Remaining returns the unread tail of the span without consuming it.
func (s *Span) Remaining() []byte { return s.data[s.cursor:] }

// Clone returns a copy of the span sharing the same backing array.
func (s *Span) Clone() *Span {
	return &Span{data: s.data, cursor: s.cursor}
}

// Jump moves the cursor to an absolute offset.
func (s *Span) Jump(offset int) error {
	if offset < 0 || offset > len(s.data) {
		return ErrUnderflow
	}
	s.cursor = offset
	return nil
}

// Drop advances the cursor by n bytes without returning them.
func (s *Span) Drop(n int) error {
	if n < 0 || s.cursor+n > len(s.data) {
		return ErrUnderflow
	}
	s.cursor += n
	return nil
}

// Take returns the next n bytes and advances the cursor past them.
func (s *Span) Take(n int) ([]byte, error) {
	if n < 0 || s.cursor+n > len(s.data) {
		return nil, ErrUnderflow
	}
	b := s.data[s.cursor : s.cursor+n]
	s.cursor += n
	return b, nil
}

// TakeLast returns the last n bytes of the whole span (not relative to the
// cursor) without moving the cursor; used by INDEX footers that are read
// from the end of a data blob.
func (s *Span) TakeLast(n int) ([]byte, error) {
	if n < 0 || n > len(s.data) {
		return nil, ErrUnderflow
	}
	return s.data[len(s.data)-n:], nil
}

// RemovePrefix drops n bytes from the front of the underlying data and
// resets the cursor to 0, used when a sub-table needs its own span rooted
// at a fresh origin.
func (s *Span) RemovePrefix(n int) error {
	if n < 0 || n > len(s.data) {
		return ErrUnderflow
	}
	s.data = s.data[n:]
	s.cursor = 0
	return nil
}

// Sub returns a new independent span over [offset, offset+length) of the
// original (non-cursor-relative) data.
func (s *Span) Sub(offset, length int) (*Span, error) {
	if offset < 0 || length < 0 || offset+length > len(s.data) {
		return nil, ErrUnderflow
	}
	return &Span{data: s.data[offset : offset+length]}, nil
}

// U8 reads an unsigned 8-bit integer and advances the cursor.
func (s *Span) U8() (uint8, error) {
	b, err := s.Take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// I8 reads a signed 8-bit integer and advances the cursor.
func (s *Span) I8() (int8, error) {
	v, err := s.U8()
	return int8(v), err
}

// U16 reads a big-endian unsigned 16-bit integer and advances the cursor.
func (s *Span) U16() (uint16, error) {
	b, err := s.Take(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// I16 reads a big-endian signed 16-bit integer and advances the cursor.
func (s *Span) I16() (int16, error) {
	v, err := s.U16()
	return int16(v), err
}

// U24 reads a big-endian unsigned 24-bit integer and advances the cursor.
func (s *Span) U24() (uint32, error) {
	b, err := s.Take(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// U32 reads a big-endian unsigned 32-bit integer and advances the cursor.
func (s *Span) U32() (uint32, error) {
	b, err := s.Take(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// I32 reads a big-endian signed 32-bit integer and advances the cursor.
func (s *Span) I32() (int32, error) {
	v, err := s.U32()
	return int32(v), err
}

// U64 reads a big-endian unsigned 64-bit integer and advances the cursor.
func (s *Span) U64() (uint64, error) {
	b, err := s.Take(8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v, nil
}

// Peek reports the byte at the cursor without consuming it.
func (s *Span) Peek() (byte, error) {
	if s.cursor >= len(s.data) {
		return 0, ErrUnderflow
	}
	return s.data[s.cursor], nil
}

// PeekAt reports the byte at an absolute offset without moving the cursor.
func (s *Span) PeekAt(offset int) (byte, error) {
	if offset < 0 || offset >= len(s.data) {
		return 0, ErrUnderflow
	}
	return s.data[offset], nil
}

// Tag reads a 4-byte table tag and advances the cursor.
func (s *Span) Tag() (string, error) {
	b, err := s.Take(4)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Fixed reads a 16.16 fixed-point number (as used by CharString numbers and
// several sfnt table fields) and advances the cursor.
func (s *Span) Fixed() (float64, error) {
	v, err := s.I32()
	if err != nil {
		return 0, err
	}
	return float64(v) / 65536.0, nil
}

// At reports whether the span has at least n unread bytes.
func (s *Span) At(n int) bool {
	return s.cursor+n <= len(s.data)
}
