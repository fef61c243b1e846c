package sfnt

import "github.com/zhiayang/sap/internal/bytespan"

// CmapTable is a decoded character-to-glyph map: a bidirectional bi-map
// between Unicode codepoints and GlyphIds, per spec.md §3 ("Font file ...
// a CharacterMapping (codepoint<->GlyphId bi-map)"). Missing codepoints
// map to .notdef (GID 0).
type CmapTable struct {
	ToGlyph map[rune]uint16
	ToRune  map[uint16]rune
}

// cmapPreference is the subtable selection order from spec.md §4.2:
// (0,6) (0,4) (0,3) (3,10) (3,1) (1,0).
var cmapPreference = [][2]uint16{
	{0, 6}, {0, 4}, {0, 3}, {3, 10}, {3, 1}, {1, 0},
}

type cmapSubtableRecord struct {
	platformID, encodingID uint16
	offset                 uint32
}

func (f *File) readCmap() error {
	s, ok := f.table("cmap")
	if !ok {
		return nil
	}
	raw := s.Bytes()

	if _, err := s.U16(); err != nil { // version
		return err
	}
	numTables, err := s.U16()
	if err != nil {
		return err
	}
	records := make([]cmapSubtableRecord, numTables)
	for i := range records {
		platformID, err := s.U16()
		if err != nil {
			return err
		}
		encodingID, err := s.U16()
		if err != nil {
			return err
		}
		offset, err := s.U32()
		if err != nil {
			return err
		}
		records[i] = cmapSubtableRecord{platformID, encodingID, offset}
	}

	var chosen *cmapSubtableRecord
	for _, pref := range cmapPreference {
		for i := range records {
			if records[i].platformID == pref[0] && records[i].encodingID == pref[1] {
				chosen = &records[i]
				break
			}
		}
		if chosen != nil {
			break
		}
	}
	if chosen == nil && len(records) > 0 {
		chosen = &records[0]
	}
	if chosen == nil {
		f.warn("cmap table has no subtables")
		return nil
	}

	sub := bytespan.New(raw)
	if err := sub.Jump(int(chosen.offset)); err != nil {
		return err
	}
	table, err := parseCmapSubtable(sub)
	if err != nil {
		f.warn("cmap subtable (platform %d, encoding %d) failed to parse: %v; falling back to none", chosen.platformID, chosen.encodingID, err)
		return nil
	}
	f.Cmap = table
	return nil
}

func parseCmapSubtable(s *bytespan.Span) (*CmapTable, error) {
	format, err := s.U16()
	if err != nil {
		return nil, err
	}
	switch format {
	case 0:
		return parseCmap0(s)
	case 4:
		return parseCmap4(s)
	case 6:
		return parseCmap6(s)
	case 10:
		return parseCmap10(s)
	case 12:
		return parseCmap12(s)
	case 13:
		return parseCmap13(s)
	default:
		return nil, errUnsupportedCmapFormat(format)
	}
}

type errUnsupportedCmapFormat uint16

func (e errUnsupportedCmapFormat) Error() string {
	return "unsupported cmap subtable format"
}

func newCmap() *CmapTable {
	return &CmapTable{ToGlyph: make(map[rune]uint16), ToRune: make(map[uint16]rune)}
}

func (c *CmapTable) add(cp rune, gid uint16) {
	if gid == 0 {
		return
	}
	if _, exists := c.ToGlyph[cp]; !exists {
		c.ToGlyph[cp] = gid
	}
	if _, exists := c.ToRune[gid]; !exists {
		c.ToRune[gid] = cp
	}
}

// parseCmap0 decodes format 0: a byte map for codepoints 0..255.
func parseCmap0(s *bytespan.Span) (*CmapTable, error) {
	if _, err := s.U16(); err != nil { // length
		return nil, err
	}
	if _, err := s.U16(); err != nil { // language
		return nil, err
	}
	c := newCmap()
	for cp := 0; cp < 256; cp++ {
		gid, err := s.U8()
		if err != nil {
			return nil, err
		}
		c.add(rune(cp), uint16(gid))
	}
	return c, nil
}

// parseCmap4 decodes format 4: the classic segmented BMP mapping.
func parseCmap4(s *bytespan.Span) (*CmapTable, error) {
	if _, err := s.U16(); err != nil { // length
		return nil, err
	}
	if _, err := s.U16(); err != nil { // language
		return nil, err
	}
	segCountX2, err := s.U16()
	if err != nil {
		return nil, err
	}
	segCount := int(segCountX2 / 2)
	if err := s.Drop(2 + 2 + 2); err != nil { // searchRange, entrySelector, rangeShift
		return nil, err
	}

	endCodes := make([]uint16, segCount)
	for i := range endCodes {
		endCodes[i], err = s.U16()
		if err != nil {
			return nil, err
		}
	}
	if _, err := s.U16(); err != nil { // reservedPad
		return nil, err
	}
	startCodes := make([]uint16, segCount)
	for i := range startCodes {
		startCodes[i], err = s.U16()
		if err != nil {
			return nil, err
		}
	}
	idDeltas := make([]int16, segCount)
	for i := range idDeltas {
		idDeltas[i], err = s.I16()
		if err != nil {
			return nil, err
		}
	}
	idRangeOffsetPos := s.Cursor()
	idRangeOffsets := make([]uint16, segCount)
	for i := range idRangeOffsets {
		idRangeOffsets[i], err = s.U16()
		if err != nil {
			return nil, err
		}
	}

	c := newCmap()
	raw := s.Bytes()
	for seg := 0; seg < segCount; seg++ {
		start := startCodes[seg]
		end := endCodes[seg]
		if start == 0xFFFF && end == 0xFFFF {
			continue
		}
		for cp := uint32(start); cp <= uint32(end); cp++ {
			var gid uint16
			if idRangeOffsets[seg] == 0 {
				gid = uint16(int32(cp) + int32(idDeltas[seg]))
			} else {
				glyphIndexAddr := idRangeOffsetPos + seg*2 + int(idRangeOffsets[seg]) + 2*int(cp-uint32(start))
				if glyphIndexAddr+1 >= len(raw) {
					continue
				}
				raw16 := uint16(raw[glyphIndexAddr])<<8 | uint16(raw[glyphIndexAddr+1])
				if raw16 == 0 {
					continue
				}
				gid = uint16(int32(raw16) + int32(idDeltas[seg]))
			}
			c.add(rune(cp), gid)
			if cp == 0xFFFF {
				break
			}
		}
	}
	return c, nil
}

// parseCmap6 decodes format 6: a dense trimmed table for a contiguous range.
func parseCmap6(s *bytespan.Span) (*CmapTable, error) {
	if _, err := s.U16(); err != nil { // length
		return nil, err
	}
	if _, err := s.U16(); err != nil { // language
		return nil, err
	}
	first, err := s.U16()
	if err != nil {
		return nil, err
	}
	count, err := s.U16()
	if err != nil {
		return nil, err
	}
	c := newCmap()
	for i := 0; i < int(count); i++ {
		gid, err := s.U16()
		if err != nil {
			return nil, err
		}
		c.add(rune(int(first)+i), gid)
	}
	return c, nil
}

// parseCmap10 decodes format 10: a trimmed array over a 32-bit range.
func parseCmap10(s *bytespan.Span) (*CmapTable, error) {
	if _, err := s.U16(); err != nil { // reserved
		return nil, err
	}
	if _, err := s.U32(); err != nil { // length
		return nil, err
	}
	if _, err := s.U32(); err != nil { // language
		return nil, err
	}
	first, err := s.U32()
	if err != nil {
		return nil, err
	}
	count, err := s.U32()
	if err != nil {
		return nil, err
	}
	c := newCmap()
	for i := uint32(0); i < count; i++ {
		gid, err := s.U16()
		if err != nil {
			return nil, err
		}
		c.add(rune(first+i), gid)
	}
	return c, nil
}

// parseCmap12 decodes format 12: segmented groups over the full codepoint
// range, the common format for supplementary-plane fonts.
func parseCmap12(s *bytespan.Span) (*CmapTable, error) {
	if _, err := s.U16(); err != nil { // reserved
		return nil, err
	}
	if _, err := s.U32(); err != nil { // length
		return nil, err
	}
	if _, err := s.U32(); err != nil { // language
		return nil, err
	}
	numGroups, err := s.U32()
	if err != nil {
		return nil, err
	}
	c := newCmap()
	for i := uint32(0); i < numGroups; i++ {
		startChar, err := s.U32()
		if err != nil {
			return nil, err
		}
		endChar, err := s.U32()
		if err != nil {
			return nil, err
		}
		startGID, err := s.U32()
		if err != nil {
			return nil, err
		}
		for cp := startChar; cp <= endChar; cp++ {
			c.add(rune(cp), uint16(startGID+(cp-startChar)))
			if cp == 0xFFFFFFFF {
				break
			}
		}
	}
	return c, nil
}

// parseCmap13 decodes format 13: like format 12 but every codepoint in a
// group maps to the *same* glyph (many-to-one), used for default-ignorable
// ranges.
func parseCmap13(s *bytespan.Span) (*CmapTable, error) {
	if _, err := s.U16(); err != nil { // reserved
		return nil, err
	}
	if _, err := s.U32(); err != nil { // length
		return nil, err
	}
	if _, err := s.U32(); err != nil { // language
		return nil, err
	}
	numGroups, err := s.U32()
	if err != nil {
		return nil, err
	}
	c := newCmap()
	for i := uint32(0); i < numGroups; i++ {
		startChar, err := s.U32()
		if err != nil {
			return nil, err
		}
		endChar, err := s.U32()
		if err != nil {
			return nil, err
		}
		gid, err := s.U32()
		if err != nil {
			return nil, err
		}
		for cp := startChar; cp <= endChar; cp++ {
			c.add(rune(cp), uint16(gid))
			if cp == 0xFFFFFFFF {
				break
			}
		}
	}
	return c, nil
}
