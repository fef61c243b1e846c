package cff

import (
	"fmt"

	"github.com/zhiayang/sap/internal/bytespan"
)

// Subroutine is one entry of a global or local Subrs INDEX. Used marks a
// subroutine as reachable from a kept glyph; nothing in this package sets
// it, so it stays false after Parse.
type Subroutine struct {
	Data []byte
	Used bool
}

// FontDictEntry pairs one FDArray entry's Private DICT with its decoded
// local Subrs INDEX (CID-keyed fonts only; non-CID fonts have a single
// implicit FontDictEntry at index 0).
type FontDictEntry struct {
	Private    Dict
	LocalSubrs []Subroutine
}

// Glyph is one CharStrings INDEX entry plus the identity it carries
// through subsetting: CID for CID-keyed fonts, SID-derived name
// otherwise (spec.md §3 "CFF in-memory form").
type Glyph struct {
	GID        uint16
	CID        uint16
	Name       string
	Charstring []byte
	FDIndex    int
}

// Font is the parsed in-memory form of a CFF table (spec.md §3).
type Font struct {
	Name        string
	TopDict     Dict
	Strings     *Index
	GlobalSubrs []Subroutine
	Glyphs      []Glyph // index == GID; GID 0 is always .notdef
	IsCID       bool
	FontDicts   []FontDictEntry
	CharstringType int
}

// topDictDefaults fills in the Top DICT keys that have spec-mandated
// defaults when absent (spec.md §4.3).
func topDictDefaults() Dict {
	return Dict{
		opCharset:        {0},
		opEncoding:       {0},
		opCharstringType: {2},
		opFontMatrix:     {0.001, 0, 0, 0.001, 0, 0},
		opFontBBox:       {0, 0, 0, 0},
	}
}

// Parse decodes a CFF table (spec.md §4.3). data is the raw CFF table
// bytes as found inside the OTTO container (or as a bare CFF file).
func Parse(data []byte) (*Font, error) {
	s := bytespan.New(data)

	if _, err := s.U8(); err != nil { // major
		return nil, err
	}
	if _, err := s.U8(); err != nil { // minor
		return nil, err
	}
	hdrSize, err := s.U8()
	if err != nil {
		return nil, err
	}
	if _, err := s.U8(); err != nil { // offSize (unused; offsets are self-describing)
		return nil, err
	}
	if err := s.Jump(int(hdrSize)); err != nil {
		return nil, err
	}

	nameIdx, err := ReadIndex(s)
	if err != nil {
		return nil, fmt.Errorf("cff: Name INDEX: %w", err)
	}
	if nameIdx.Len() != 1 {
		return nil, fmt.Errorf("cff: expected exactly 1 Name INDEX entry, got %d", nameIdx.Len())
	}

	topDictIdx, err := ReadIndex(s)
	if err != nil {
		return nil, fmt.Errorf("cff: Top DICT INDEX: %w", err)
	}
	if topDictIdx.Len() != 1 {
		return nil, fmt.Errorf("cff: expected exactly 1 Top DICT, got %d", topDictIdx.Len())
	}

	stringIdx, err := ReadIndex(s)
	if err != nil {
		return nil, fmt.Errorf("cff: String INDEX: %w", err)
	}

	globalSubrIdx, err := ReadIndex(s)
	if err != nil {
		return nil, fmt.Errorf("cff: Global Subrs INDEX: %w", err)
	}

	top, err := ParseDict(topDictIdx.Get(0))
	if err != nil {
		return nil, fmt.Errorf("cff: Top DICT: %w", err)
	}
	defaults := topDictDefaults()
	for k, v := range defaults {
		if _, ok := top[k]; !ok {
			top[k] = v
		}
	}

	f := &Font{
		Name:    string(nameIdx.Get(0)),
		TopDict: top,
		Strings: stringIdx,
	}
	f.CharstringType = int(top[opCharstringType][0])
	f.GlobalSubrs = wrapSubrs(globalSubrIdx)

	if _, ok := top[opROS]; ok {
		f.IsCID = true
	}

	charStringsOffset, ok := dictInt(top, opCharStrings)
	if !ok {
		return nil, fmt.Errorf("cff: Top DICT missing CharStrings offset")
	}
	csSpan := bytespan.New(data)
	if err := csSpan.Jump(charStringsOffset); err != nil {
		return nil, err
	}
	charStringsIdx, err := ReadIndex(csSpan)
	if err != nil {
		return nil, fmt.Errorf("cff: CharStrings INDEX: %w", err)
	}
	numGlyphs := charStringsIdx.Len()

	charset, err := parseCharset(data, top, numGlyphs)
	if err != nil {
		return nil, fmt.Errorf("cff: charset: %w", err)
	}

	var fdSelect []int
	if f.IsCID {
		fdArrayOffset, ok := dictInt(top, opFDArray)
		if !ok {
			return nil, fmt.Errorf("cff: CID-keyed font missing FDArray")
		}
		fdSpan := bytespan.New(data)
		if err := fdSpan.Jump(fdArrayOffset); err != nil {
			return nil, err
		}
		fdArrayIdx, err := ReadIndex(fdSpan)
		if err != nil {
			return nil, fmt.Errorf("cff: FDArray INDEX: %w", err)
		}
		for i := 0; i < fdArrayIdx.Len(); i++ {
			fdDict, err := ParseDict(fdArrayIdx.Get(i))
			if err != nil {
				return nil, fmt.Errorf("cff: FDArray[%d]: %w", i, err)
			}
			entry, err := parsePrivateAndSubrs(data, fdDict)
			if err != nil {
				return nil, err
			}
			f.FontDicts = append(f.FontDicts, entry)
		}

		fdSelectOffset, ok := dictInt(top, opFDSelect)
		if !ok {
			return nil, fmt.Errorf("cff: CID-keyed font missing FDSelect")
		}
		fdSelect, err = parseFDSelect(data, fdSelectOffset, numGlyphs)
		if err != nil {
			return nil, fmt.Errorf("cff: FDSelect: %w", err)
		}
	} else {
		entry, err := parsePrivateAndSubrs(data, top)
		if err != nil {
			return nil, err
		}
		f.FontDicts = []FontDictEntry{entry}
		fdSelect = make([]int, numGlyphs) // all glyphs use FD 0
	}

	f.Glyphs = make([]Glyph, numGlyphs)
	for gid := 0; gid < numGlyphs; gid++ {
		g := Glyph{
			GID:        uint16(gid),
			Charstring: charStringsIdx.Get(gid),
			FDIndex:    fdSelect[gid],
		}
		if f.IsCID {
			g.CID = charset[gid]
		} else {
			g.Name = f.sidToString(charset[gid])
		}
		f.Glyphs[gid] = g
	}

	return f, nil
}

func wrapSubrs(idx *Index) []Subroutine {
	subrs := make([]Subroutine, idx.Len())
	for i := range subrs {
		subrs[i] = Subroutine{Data: idx.Get(i)}
	}
	return subrs
}

func parsePrivateAndSubrs(data []byte, dict Dict) (FontDictEntry, error) {
	priv, ok := dict[opPrivate]
	if !ok || len(priv) < 2 {
		return FontDictEntry{Private: Dict{}}, nil
	}
	size, offset := int(priv[0]), int(priv[1])
	if offset < 0 || offset+size > len(data) {
		return FontDictEntry{}, fmt.Errorf("cff: Private DICT out of range")
	}
	privDict, err := ParseDict(data[offset : offset+size])
	if err != nil {
		return FontDictEntry{}, fmt.Errorf("cff: Private DICT: %w", err)
	}
	entry := FontDictEntry{Private: privDict}
	if subrsOffset, ok := dictInt(privDict, opSubrs); ok {
		s := bytespan.New(data)
		if err := s.Jump(offset + subrsOffset); err != nil {
			return FontDictEntry{}, err
		}
		idx, err := ReadIndex(s)
		if err != nil {
			return FontDictEntry{}, fmt.Errorf("cff: local Subrs INDEX: %w", err)
		}
		entry.LocalSubrs = wrapSubrs(idx)
	}
	return entry, nil
}

func dictInt(d Dict, key int) (int, bool) {
	v, ok := d[key]
	if !ok || len(v) == 0 {
		return 0, false
	}
	return int(v[0]), true
}

// sidToString resolves a SID against the predefined standard strings and
// the font's own String INDEX (spec.md GLOSSARY "SID").
func (f *Font) sidToString(sid uint16) string {
	if int(sid) < len(standardStrings) {
		return standardStrings[sid]
	}
	idx := int(sid) - len(standardStrings)
	if f.Strings != nil && idx < f.Strings.Len() {
		return string(f.Strings.Get(idx))
	}
	return ""
}

// parseCharset decodes the charset table (formats 0, 1, 2), returning
// GID -> SID (or GID -> CID for CID-keyed fonts, same table format).
func parseCharset(data []byte, top Dict, numGlyphs int) ([]uint16, error) {
	offset, ok := dictInt(top, opCharset)
	if !ok || offset == 0 {
		return isoAdobeCharset(numGlyphs), nil
	}
	if offset == 1 || offset == 2 {
		// Expert / ExpertSubset predefined charsets: not used by any
		// glyph set sap subsets (those are symbol fonts outside scope),
		// fall back to identity mapping.
		return identityCharset(numGlyphs), nil
	}

	s := bytespan.New(data)
	if err := s.Jump(offset); err != nil {
		return nil, err
	}
	format, err := s.U8()
	if err != nil {
		return nil, err
	}

	result := make([]uint16, numGlyphs)
	// GID 0 is always .notdef and is never listed in the charset data.
	gid := 1
	switch format {
	case 0:
		for gid < numGlyphs {
			sid, err := s.U16()
			if err != nil {
				return nil, err
			}
			result[gid] = sid
			gid++
		}
	case 1:
		for gid < numGlyphs {
			first, err := s.U16()
			if err != nil {
				return nil, err
			}
			nLeft, err := s.U8()
			if err != nil {
				return nil, err
			}
			for i := 0; i <= int(nLeft) && gid < numGlyphs; i++ {
				result[gid] = first + uint16(i)
				gid++
			}
		}
	case 2:
		for gid < numGlyphs {
			first, err := s.U16()
			if err != nil {
				return nil, err
			}
			nLeft, err := s.U16()
			if err != nil {
				return nil, err
			}
			for i := 0; i <= int(nLeft) && gid < numGlyphs; i++ {
				result[gid] = first + uint16(i)
				gid++
			}
		}
	default:
		return nil, fmt.Errorf("cff: unsupported charset format %d", format)
	}
	return result, nil
}

func isoAdobeCharset(numGlyphs int) []uint16 {
	out := make([]uint16, numGlyphs)
	for i := range out {
		out[i] = uint16(i)
	}
	return out
}

func identityCharset(numGlyphs int) []uint16 {
	out := make([]uint16, numGlyphs)
	for i := range out {
		out[i] = uint16(i)
	}
	return out
}

// parseFDSelect decodes an FDSelect table (formats 0 and 3) into a
// GID -> FD index slice.
func parseFDSelect(data []byte, offset, numGlyphs int) ([]int, error) {
	s := bytespan.New(data)
	if err := s.Jump(offset); err != nil {
		return nil, err
	}
	format, err := s.U8()
	if err != nil {
		return nil, err
	}
	result := make([]int, numGlyphs)
	switch format {
	case 0:
		for gid := 0; gid < numGlyphs; gid++ {
			fd, err := s.U8()
			if err != nil {
				return nil, err
			}
			result[gid] = int(fd)
		}
	case 3:
		nRanges, err := s.U16()
		if err != nil {
			return nil, err
		}
		type rangeRec struct {
			first uint16
			fd    uint8
		}
		ranges := make([]rangeRec, nRanges)
		for i := range ranges {
			first, err := s.U16()
			if err != nil {
				return nil, err
			}
			fd, err := s.U8()
			if err != nil {
				return nil, err
			}
			ranges[i] = rangeRec{first, fd}
		}
		sentinel, err := s.U16()
		if err != nil {
			return nil, err
		}
		for i, r := range ranges {
			end := sentinel
			if i+1 < len(ranges) {
				end = ranges[i+1].first
			}
			for gid := r.first; gid < end && int(gid) < numGlyphs; gid++ {
				result[gid] = int(r.fd)
			}
		}
	default:
		return nil, fmt.Errorf("cff: unsupported FDSelect format %d", format)
	}
	return result, nil
}
