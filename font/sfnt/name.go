package sfnt

import (
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Name IDs. All of these except NameVersion (5) are recognized per
// spec.md §4.2 and kept in Records; ID 5 and all other IDs are kept in
// Overflow.
const (
	NameCopyright      = 0
	NameFamily         = 1
	NameSubfamily      = 2
	NameUniqueID       = 3
	NameFullName       = 4
	NameVersion        = 5
	NamePostScriptName = 6
	NameTrademark      = 13
	NameTypographicFamily    = 16
	NameTypographicSubfamily = 17
)

var recognizedNameIDs = map[uint16]bool{
	0: true, 1: true, 2: true, 3: true, 4: true, 6: true, 13: true, 16: true, 17: true,
}

// NameTable holds the decoded 'name' table: recognized IDs in Records,
// everything else in Overflow (spec.md §4.2).
type NameTable struct {
	Records  map[uint16]string
	Overflow map[uint16]string
}

type nameRecord struct {
	platformID uint16
	encodingID uint16
	languageID uint16
	nameID     uint16
	offset     uint16
	length     uint16
}

func (f *File) readName() error {
	s, ok := f.table("name")
	if !ok {
		return nil
	}
	if _, err := s.U16(); err != nil { // format
		return err
	}
	count, err := s.U16()
	if err != nil {
		return err
	}
	stringOffset, err := s.U16()
	if err != nil {
		return err
	}

	records := make([]nameRecord, count)
	for i := range records {
		platformID, err := s.U16()
		if err != nil {
			return err
		}
		encodingID, err := s.U16()
		if err != nil {
			return err
		}
		languageID, err := s.U16()
		if err != nil {
			return err
		}
		nameID, err := s.U16()
		if err != nil {
			return err
		}
		length, err := s.U16()
		if err != nil {
			return err
		}
		offset, err := s.U16()
		if err != nil {
			return err
		}
		records[i] = nameRecord{platformID, encodingID, languageID, nameID, offset, length}
	}

	table := &NameTable{Records: make(map[uint16]string), Overflow: make(map[uint16]string)}
	raw := s.Bytes()
	for _, r := range records {
		start := int(stringOffset) + int(r.offset)
		end := start + int(r.length)
		if start < 0 || end > len(raw) || start > end {
			continue
		}
		decoded := decodeNameString(r.platformID, r.encodingID, raw[start:end])
		if decoded == "" {
			continue
		}
		if recognizedNameIDs[r.nameID] {
			// Prefer the first encountered. Records are normally sorted by
			// platform ID, so a Unicode (0) or Mac (1) record wins over a
			// Windows (3) one.
			if _, exists := table.Records[r.nameID]; !exists {
				table.Records[r.nameID] = decoded
			}
		} else {
			table.Overflow[r.nameID] = decoded
		}
	}
	f.Names = table
	return nil
}

// decodeNameString decodes a 'name' table record per spec.md §4.2:
// UTF-16BE for platform 0 (Unicode) or 3 (Windows), Mac-Roman for
// platform 1 (Macintosh) encoding 0.
func decodeNameString(platformID, encodingID uint16, raw []byte) string {
	switch platformID {
	case 0, 3:
		decoded, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
		if err != nil {
			return ""
		}
		return string(decoded)
	case 1:
		if encodingID == 0 {
			decoded, err := charmap.Macintosh.NewDecoder().Bytes(raw)
			if err != nil {
				return ""
			}
			return string(decoded)
		}
		return string(raw)
	default:
		return string(raw)
	}
}
