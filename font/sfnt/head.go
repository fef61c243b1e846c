package sfnt

// HeadTable is the decoded 'head' table. It sets units-per-em, the font
// bounding box, and (for TrueType fonts) the loca index size, per
// spec.md §4.2.
type HeadTable struct {
	UnitsPerEm        uint16
	XMin, YMin        int16
	XMax, YMax        int16
	MacStyle          uint16
	LowestRecPPEM     uint16
	FontDirectionHint int16
	IndexToLocFormat  int16 // 0 = short (loca/2), 1 = long
}

const (
	fsSelectionItalic          = 1 << 0
	fsSelectionUseTypoMetrics  = 1 << 7
)

func (f *File) readHead() error {
	s, ok := f.table("head")
	if !ok {
		return nil
	}
	if err := s.Drop(4 + 4); err != nil { // version, fontRevision
		return err
	}
	if err := s.Drop(4 + 4); err != nil { // checkSumAdjustment, magicNumber
		return err
	}
	if err := s.Drop(2); err != nil { // flags
		return err
	}
	upm, err := s.U16()
	if err != nil {
		return err
	}
	if err := s.Drop(8 + 8); err != nil { // created, modified (longdatetime x2)
		return err
	}
	xMin, err := s.I16()
	if err != nil {
		return err
	}
	yMin, err := s.I16()
	if err != nil {
		return err
	}
	xMax, err := s.I16()
	if err != nil {
		return err
	}
	yMax, err := s.I16()
	if err != nil {
		return err
	}
	macStyle, err := s.U16()
	if err != nil {
		return err
	}
	lowestRecPPEM, err := s.U16()
	if err != nil {
		return err
	}
	fontDirectionHint, err := s.I16()
	if err != nil {
		return err
	}
	indexToLocFormat, err := s.I16()
	if err != nil {
		return err
	}

	f.Head = &HeadTable{
		UnitsPerEm:        upm,
		XMin:              xMin,
		YMin:              yMin,
		XMax:              xMax,
		YMax:              yMax,
		MacStyle:          macStyle,
		LowestRecPPEM:     lowestRecPPEM,
		FontDirectionHint: fontDirectionHint,
		IndexToLocFormat:  indexToLocFormat,
	}
	return nil
}
