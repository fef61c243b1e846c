// Package sfnt decodes the OpenType/TrueType container format: the table
// directory (including TrueType Collections) and the tables whose fields
// later tables depend on (head, hhea, hmtx, maxp, name, post, OS/2, cmap).
// It does not interpret glyph outlines or layout tables. font/cff parses
// CFF data; this module has no glyf/loca, GSUB/GPOS, kern or morx decoder.
package sfnt

import (
	"fmt"
	"log"

	"github.com/zhiayang/sap/internal/bytespan"
)

// Tag identifies one of the four container kinds recognized at the start
// of a font file.
const (
	tagOTTO uint32 = 0x4F54544F // 'OTTO' - CFF-flavored OpenType
	tagTrue uint32 = 0x74727565 // 'true' - legacy Mac TrueType
	tagTTC  uint32 = 0x74746366 // 'ttcf' - TrueType/OpenType collection
	tag1_0  uint32 = 0x00010000 // sfnt version 1.0 - TrueType
)

// TableRecord is one entry of the sfnt table directory.
type TableRecord struct {
	Tag      string
	Checksum uint32
	Offset   uint32
	Length   uint32
}

// File is a parsed sfnt container: the owned source bytes plus a tag->table
// index and the tables decoded so far. Spans derived from Data never
// outlive the File that owns them (spec.md §3, "Font file").
type File struct {
	Data   []byte
	Tables map[string]TableRecord

	Head    *HeadTable
	Hhea    *HheaTable
	Maxp    *MaxpTable
	Post    *PostTable
	OS2     *OS2Table
	Names   *NameTable
	HMetrics []LongHorMetric
	Cmap    *CmapTable

	// Warnings accumulates recoverable font anomalies (unknown cmap
	// subtable, conflicting Unicode mapping, missing PostScript name)
	// instead of failing the parse; spec.md §4.2/§7.
	Warnings []string
}

func (f *File) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	f.Warnings = append(f.Warnings, msg)
	log.Printf("sfnt: %s", msg)
}

// Parse decodes the table directory and the processing-order tables
// described in spec.md §4.2, for the (single) face found at offset 0,
// or — for a TTC — the face matching wantPostscriptName (or the first
// face if wantPostscriptName is empty).
func Parse(data []byte, wantPostscriptName string) (*File, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("sfnt: file too short")
	}
	s := bytespan.New(data)
	magic, err := s.U32()
	if err != nil {
		return nil, err
	}

	var directoryOffset uint32
	switch magic {
	case tagTTC:
		directoryOffset, err = selectCollectionFace(data, wantPostscriptName)
		if err != nil {
			return nil, err
		}
	case tagOTTO, tagTrue, tag1_0:
		directoryOffset = 0
	default:
		return nil, fmt.Errorf("sfnt: unrecognized container magic %08x", magic)
	}

	f := &File{Data: data}
	if err := f.readDirectory(directoryOffset); err != nil {
		return nil, err
	}
	if err := f.readTables(); err != nil {
		return nil, err
	}
	return f, nil
}

// selectCollectionFace scans a 'ttcf' header for the table-offsets block
// whose 'name' table yields wantPostscriptName, per spec.md §4.2. If
// wantPostscriptName is empty, the first face is selected.
func selectCollectionFace(data []byte, wantPostscriptName string) (uint32, error) {
	s := bytespan.New(data)
	if _, err := s.U32(); err != nil { // 'ttcf'
		return 0, err
	}
	if _, err := s.U32(); err != nil { // version
		return 0, err
	}
	numFonts, err := s.U32()
	if err != nil {
		return 0, err
	}
	offsets := make([]uint32, numFonts)
	for i := range offsets {
		offsets[i], err = s.U32()
		if err != nil {
			return 0, err
		}
	}
	if len(offsets) == 0 {
		return 0, fmt.Errorf("sfnt: empty font collection")
	}
	if wantPostscriptName == "" {
		return offsets[0], nil
	}
	for _, off := range offsets {
		f := &File{Data: data}
		if err := f.readDirectory(off); err != nil {
			continue
		}
		if err := f.readTable("name"); err != nil {
			continue
		}
		if f.Names != nil {
			if ps, ok := f.Names.Records[NamePostScriptName]; ok && ps == wantPostscriptName {
				return off, nil
			}
		}
	}
	return offsets[0], nil
}

func (f *File) readDirectory(offset uint32) error {
	s := bytespan.New(f.Data)
	if err := s.Jump(int(offset)); err != nil {
		return err
	}
	if _, err := s.U32(); err != nil { // sfnt version / magic, already validated
		return err
	}
	numTables, err := s.U16()
	if err != nil {
		return err
	}
	if err := s.Drop(6); err != nil { // searchRange, entrySelector, rangeShift
		return err
	}

	f.Tables = make(map[string]TableRecord, numTables)
	for i := 0; i < int(numTables); i++ {
		tag, err := s.Tag()
		if err != nil {
			return err
		}
		checksum, err := s.U32()
		if err != nil {
			return err
		}
		tOffset, err := s.U32()
		if err != nil {
			return err
		}
		length, err := s.U32()
		if err != nil {
			return err
		}
		f.Tables[tag] = TableRecord{Tag: tag, Checksum: checksum, Offset: tOffset, Length: length}
	}
	return nil
}

// table returns a fresh span over one table's bytes.
func (f *File) table(tag string) (*bytespan.Span, bool) {
	rec, ok := f.Tables[tag]
	if !ok {
		return nil, false
	}
	if int(rec.Offset+rec.Length) > len(f.Data) {
		return nil, false
	}
	return bytespan.New(f.Data[rec.Offset : rec.Offset+rec.Length]), true
}

// readTables decodes every table in the required processing order
// (spec.md §4.2): head, name, hhea, maxp, post, cmap, OS/2, and then
// hmtx, which needs hhea. The glyph-outline tables (CFF/glyf/loca) and
// layout tables (GSUB/GPOS/kern/morx) are not decoded here; their bytes
// stay reachable through f.Tables.
func (f *File) readTables() error {
	order := []string{"head", "name", "hhea", "maxp", "post", "cmap", "OS/2"}
	for _, tag := range order {
		if _, ok := f.Tables[tag]; !ok {
			continue
		}
		if err := f.readTable(tag); err != nil {
			return fmt.Errorf("sfnt: table %q: %w", tag, err)
		}
	}
	if f.Head == nil {
		return fmt.Errorf("sfnt: missing required head table")
	}
	if f.Maxp == nil {
		return fmt.Errorf("sfnt: missing required maxp table")
	}
	// hmtx depends on hhea.NumberOfHMetrics, so it is read explicitly
	// after hhea is available.
	if _, ok := f.Tables["hmtx"]; ok && f.Hhea != nil {
		if err := f.readHmtx(); err != nil {
			return fmt.Errorf("sfnt: table \"hmtx\": %w", err)
		}
	}
	if f.Names != nil {
		if _, ok := f.Names.Records[NamePostScriptName]; !ok {
			f.fabricatePostScriptName()
		}
	}
	return nil
}

func (f *File) readTable(tag string) error {
	switch tag {
	case "head":
		return f.readHead()
	case "name":
		return f.readName()
	case "hhea":
		return f.readHhea()
	case "maxp":
		return f.readMaxp()
	case "post":
		return f.readPost()
	case "cmap":
		return f.readCmap()
	case "OS/2":
		return f.readOS2()
	}
	return nil
}

// fabricatePostScriptName follows spec.md §4.2: "If the PostScript name
// is missing, the engine fabricates one from the unique-name and logs a
// warning."
func (f *File) fabricatePostScriptName() {
	unique, ok := f.Names.Records[NameUniqueID]
	if !ok {
		unique, ok = f.Names.Records[NameFullName]
	}
	if !ok {
		unique = "Unknown"
	}
	fabricated := sanitizePostScriptName(unique)
	f.Names.Records[NamePostScriptName] = fabricated
	f.warn("missing PostScript name, fabricated %q from unique/full name", fabricated)
}

func sanitizePostScriptName(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			out = append(out, r)
		case r == ' ':
			// dropped, per PostScript name conventions
		default:
			// dropped
		}
	}
	if len(out) == 0 {
		return "Unknown"
	}
	return string(out)
}
