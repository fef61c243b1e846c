package cff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zhiayang/sap/internal/bytespan"
)

// Dict is a decoded CFF DICT: operator -> operand list. Operands are
// float64 regardless of source encoding (integer or real); string-ID
// operands (SIDs) are plain integers, same as any other operand, and are
// resolved against the String INDEX by the caller.
type Dict map[int][]float64

// Two-byte operators are encoded here as 1200+opcode so single-byte and
// two-byte operators share one int key space.
const twoByteBase = 1200

// Well-known Top DICT / Private DICT operator keys used by this package.
const (
	opCharset       = 15
	opEncoding      = 16
	opCharStrings   = 17
	opPrivate       = 18
	opSubrs         = 19
	opCharstringType = twoByteBase + 6
	opFontMatrix    = twoByteBase + 7
	opROS           = twoByteBase + 30
	opCIDCount      = twoByteBase + 34
	opFDArray       = twoByteBase + 36
	opFDSelect      = twoByteBase + 37
	opFontBBox      = 5
)

// ParseDict decodes a DICT structure, per spec.md §4.3's operand
// encodings (1/2/3/5-byte integers, BCD-nibble reals).
func ParseDict(data []byte) (Dict, error) {
	s := bytespan.New(data)
	d := make(Dict)
	var operands []float64

	for s.Len() > 0 {
		b0, err := s.Peek()
		if err != nil {
			break
		}
		switch {
		case b0 <= 21:
			op, err := readOperator(s)
			if err != nil {
				return nil, err
			}
			d[op] = operands
			operands = nil
		case b0 == 28, b0 == 29, b0 == 30, (b0 >= 32 && b0 <= 254):
			v, err := readOperand(s)
			if err != nil {
				return nil, err
			}
			operands = append(operands, v)
		default:
			return nil, fmt.Errorf("cff: invalid DICT byte 0x%02x", b0)
		}
	}
	return d, nil
}

func readOperator(s *bytespan.Span) (int, error) {
	b0, err := s.U8()
	if err != nil {
		return 0, err
	}
	if b0 != 12 {
		return int(b0), nil
	}
	b1, err := s.U8()
	if err != nil {
		return 0, err
	}
	return twoByteBase + int(b1), nil
}

func readOperand(s *bytespan.Span) (float64, error) {
	b0, err := s.U8()
	if err != nil {
		return 0, err
	}
	switch {
	case b0 == 28:
		v, err := s.I16()
		return float64(v), err
	case b0 == 29:
		v, err := s.I32()
		return float64(v), err
	case b0 == 30:
		return readRealOperand(s)
	case b0 >= 32 && b0 <= 246:
		return float64(int(b0) - 139), nil
	case b0 >= 247 && b0 <= 250:
		b1, err := s.U8()
		if err != nil {
			return 0, err
		}
		return float64((int(b0)-247)*256 + int(b1) + 108), nil
	case b0 >= 251 && b0 <= 254:
		b1, err := s.U8()
		if err != nil {
			return 0, err
		}
		return float64(-(int(b0)-251)*256 - int(b1) - 108), nil
	default:
		return 0, fmt.Errorf("cff: invalid DICT operand lead byte 0x%02x", b0)
	}
}

var realNibbles = [16]string{
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", ".", "E", "E-", "", "-", "",
}

func readRealOperand(s *bytespan.Span) (float64, error) {
	var sb strings.Builder
loop:
	for {
		b, err := s.U8()
		if err != nil {
			return 0, err
		}
		for _, nibble := range [2]int{int(b >> 4), int(b & 0xF)} {
			if nibble == 0xF {
				break loop
			}
			sb.WriteString(realNibbles[nibble])
		}
	}
	v, err := strconv.ParseFloat(sb.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("cff: malformed DICT real operand %q: %w", sb.String(), err)
	}
	return v, nil
}

// Encode re-serializes a Dict back into DICT bytes. Integral operands are
// written with the shortest applicable integer encoding; non-integral
// operands use the BCD real encoding. Keys are emitted in ascending order
// for determinism (CFF does not require any particular order).
func (d Dict) Encode() []byte {
	keys := make([]int, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sortInts(keys)

	var out []byte
	for _, op := range keys {
		for _, v := range d[op] {
			out = append(out, encodeOperand(v)...)
		}
		out = append(out, encodeOperator(op)...)
	}
	return out
}

// EncodeForced is like Encode but forces the operands of the given
// operator to the 5-byte integer encoding, used by the subsetter (spec.md
// §4.3) so offsets can be patched in place after the final layout is
// known.
func (d Dict) EncodeForced(forced map[int]bool) []byte {
	keys := make([]int, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sortInts(keys)

	var out []byte
	for _, op := range keys {
		for _, v := range d[op] {
			if forced[op] {
				out = append(out, encode5ByteInt(int32(v))...)
			} else {
				out = append(out, encodeOperand(v)...)
			}
		}
		out = append(out, encodeOperator(op)...)
	}
	return out
}

func encodeOperator(op int) []byte {
	if op >= twoByteBase {
		return []byte{12, byte(op - twoByteBase)}
	}
	return []byte{byte(op)}
}

func encodeOperand(v float64) []byte {
	if v == float64(int32(v)) {
		return encodeIntOperand(int32(v))
	}
	return encodeRealOperand(v)
}

func encodeIntOperand(v int32) []byte {
	switch {
	case v >= -107 && v <= 107:
		return []byte{byte(v + 139)}
	case v >= 108 && v <= 1131:
		v -= 108
		return []byte{byte(v/256 + 247), byte(v % 256)}
	case v >= -1131 && v <= -108:
		v = -v - 108
		return []byte{byte(v/256 + 251), byte(v % 256)}
	case v >= -32768 && v <= 32767:
		return []byte{28, byte(v >> 8), byte(v)}
	default:
		return encode5ByteInt(v)
	}
}

func encode5ByteInt(v int32) []byte {
	return []byte{29, byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func encodeRealOperand(v float64) []byte {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	s = strings.Replace(s, "e+", "E", 1)
	s = strings.Replace(s, "e-", "E-", 1)

	var nibbles []byte
	i := 0
	for i < len(s) {
		switch s[i] {
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			nibbles = append(nibbles, s[i]-'0')
		case '.':
			nibbles = append(nibbles, 0xA)
		case 'E':
			if i+1 < len(s) && s[i+1] == '-' {
				nibbles = append(nibbles, 0xC)
				i++
			} else {
				nibbles = append(nibbles, 0xB)
			}
		case '-':
			nibbles = append(nibbles, 0xE)
		}
		i++
	}
	nibbles = append(nibbles, 0xF)
	if len(nibbles)%2 != 0 {
		nibbles = append(nibbles, 0xF)
	}

	out := []byte{30}
	for i := 0; i < len(nibbles); i += 2 {
		out = append(out, nibbles[i]<<4|nibbles[i+1])
	}
	return out
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
