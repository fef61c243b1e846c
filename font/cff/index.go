// Package cff decodes the Compact Font Format: the Name, Top DICT, String
// and Global/Local Subrs INDEXes, the charset and FDSelect, per spec.md
// §4.3, and encodes DICTs and INDEXes. Type-2 CharStrings and subroutines
// are kept as raw bytes; the package has no CharString interpreter.
package cff

import (
	"fmt"

	"github.com/zhiayang/sap/internal/bytespan"
)

// Index is a CFF INDEX structure: a length-prefixed offset array followed
// by contiguous data (spec.md GLOSSARY "INDEX (CFF)").
type Index struct {
	entries [][]byte
}

// Len returns the number of entries.
func (idx *Index) Len() int { return len(idx.entries) }

// Get returns entry i (0-based, unlike CFF's 1-based internal numbering).
func (idx *Index) Get(i int) []byte {
	if i < 0 || i >= len(idx.entries) {
		return nil
	}
	return idx.entries[i]
}

// All returns every entry.
func (idx *Index) All() [][]byte { return idx.entries }

// ReadIndex decodes one INDEX structure from s, leaving the cursor just
// past it. An empty INDEX (count == 0) has no offset-size byte.
func ReadIndex(s *bytespan.Span) (*Index, error) {
	count, err := s.U16()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return &Index{}, nil
	}
	offSize, err := s.U8()
	if err != nil {
		return nil, err
	}
	if offSize < 1 || offSize > 4 {
		return nil, fmt.Errorf("cff: invalid INDEX offSize %d", offSize)
	}
	offsets := make([]uint32, count+1)
	for i := range offsets {
		v, err := readOffset(s, int(offSize))
		if err != nil {
			return nil, err
		}
		offsets[i] = v
	}
	dataStart := s.Cursor()
	dataLen := int(offsets[count]) - 1
	if dataLen < 0 {
		return nil, fmt.Errorf("cff: INDEX has negative data length")
	}
	data, err := s.Take(dataLen)
	if err != nil {
		return nil, err
	}
	_ = dataStart

	entries := make([][]byte, count)
	for i := 0; i < int(count); i++ {
		start := offsets[i] - 1
		end := offsets[i+1] - 1
		if end < start || int(end) > len(data) {
			return nil, fmt.Errorf("cff: INDEX entry %d out of range", i)
		}
		entries[i] = data[start:end]
	}
	return &Index{entries: entries}, nil
}

func readOffset(s *bytespan.Span, size int) (uint32, error) {
	var v uint32
	for i := 0; i < size; i++ {
		b, err := s.U8()
		if err != nil {
			return 0, err
		}
		v = v<<8 | uint32(b)
	}
	return v, nil
}

// WriteIndex re-serializes entries into an INDEX byte sequence. The
// offset size is chosen as the smallest that fits, per spec.md §4.3's
// requirement that the *subsetted* Top DICT forces 5-byte offsets for
// specific keys -- this function is the general INDEX writer used
// everywhere else (String INDEX, Global/Local Subrs, CharStrings).
func WriteIndex(entries [][]byte) []byte {
	if len(entries) == 0 {
		return []byte{0, 0} // count = 0, no offSize byte
	}
	total := 1
	for _, e := range entries {
		total += len(e)
	}
	offSize := offsetSizeFor(uint32(total))

	out := make([]byte, 0, total+16)
	out = append(out, byte(len(entries)>>8), byte(len(entries)))
	out = append(out, byte(offSize))

	offset := uint32(1)
	out = appendOffset(out, offset, offSize)
	for _, e := range entries {
		offset += uint32(len(e))
		out = appendOffset(out, offset, offSize)
	}
	for _, e := range entries {
		out = append(out, e...)
	}
	return out
}

func offsetSizeFor(maxOffset uint32) int {
	switch {
	case maxOffset <= 0xFF:
		return 1
	case maxOffset <= 0xFFFF:
		return 2
	case maxOffset <= 0xFFFFFF:
		return 3
	default:
		return 4
	}
}

func appendOffset(out []byte, v uint32, size int) []byte {
	for i := size - 1; i >= 0; i-- {
		out = append(out, byte(v>>(8*uint(i))))
	}
	return out
}
