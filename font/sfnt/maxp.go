package sfnt

// MaxpTable is the decoded 'maxp' table. NumGlyphs sets the glyph count
// used throughout subsetting and shaping (spec.md §4.2).
type MaxpTable struct {
	Version   uint32
	NumGlyphs uint16
}

func (f *File) readMaxp() error {
	s, ok := f.table("maxp")
	if !ok {
		return nil
	}
	version, err := s.U32()
	if err != nil {
		return err
	}
	numGlyphs, err := s.U16()
	if err != nil {
		return err
	}
	f.Maxp = &MaxpTable{Version: version, NumGlyphs: numGlyphs}
	return nil
}

// PostTable is the decoded 'post' table header (glyph-name tables beyond
// version 2.0 are not needed by the shaper or subsetter and are skipped).
type PostTable struct {
	Version            uint32
	ItalicAngle        float64
	UnderlinePosition  int16
	UnderlineThickness int16
	IsFixedPitch       uint32
}

func (f *File) readPost() error {
	s, ok := f.table("post")
	if !ok {
		return nil
	}
	version, err := s.U32()
	if err != nil {
		return err
	}
	italicAngle, err := s.Fixed()
	if err != nil {
		return err
	}
	underlinePosition, err := s.I16()
	if err != nil {
		return err
	}
	underlineThickness, err := s.I16()
	if err != nil {
		return err
	}
	isFixedPitch, err := s.U32()
	if err != nil {
		return err
	}
	f.Post = &PostTable{
		Version:            version,
		ItalicAngle:        italicAngle,
		UnderlinePosition:  underlinePosition,
		UnderlineThickness: underlineThickness,
		IsFixedPitch:       isFixedPitch,
	}
	return nil
}

// OS2Table holds the subset of 'OS/2' fields the engine needs: x-height,
// cap-height (version >= 2 only, per spec.md §4.2), and the typographic
// metrics used for default line spacing.
type OS2Table struct {
	Version      uint16
	XHeight      int16 // only valid if Version >= 2
	CapHeight    int16 // only valid if Version >= 2
	TypoAscender int16
	TypoDescender int16
	TypoLineGap  int16
	WinAscent    uint16
	WinDescent   uint16
	FsSelection  uint16
	WeightClass  uint16
	WidthClass   uint16
}

// UsesTypoMetrics reports whether fsSelection bit 7 (USE_TYPO_METRICS) is
// set. DefaultLineSpacing does not consult it.
func (o *OS2Table) UsesTypoMetrics() bool {
	return o.FsSelection&fsSelectionUseTypoMetrics != 0
}

func (f *File) readOS2() error {
	s, ok := f.table("OS/2")
	if !ok {
		return nil
	}
	version, err := s.U16()
	if err != nil {
		return err
	}
	if err := s.Drop(2); err != nil { // xAvgCharWidth
		return err
	}
	weightClass, err := s.U16()
	if err != nil {
		return err
	}
	widthClass, err := s.U16()
	if err != nil {
		return err
	}
	if err := s.Drop(2); err != nil { // fsType
		return err
	}
	if err := s.Drop(2 * 2); err != nil { // ySubscript XSize/YSize
		return err
	}
	if err := s.Drop(2 * 2); err != nil { // ySubscript XOffset/YOffset
		return err
	}
	if err := s.Drop(2 * 2); err != nil { // ySuperscript XSize/YSize
		return err
	}
	if err := s.Drop(2 * 2); err != nil { // ySuperscript XOffset/YOffset
		return err
	}
	if err := s.Drop(2); err != nil { // yStrikeoutSize
		return err
	}
	if err := s.Drop(2); err != nil { // yStrikeoutPosition
		return err
	}
	if err := s.Drop(2); err != nil { // sFamilyClass
		return err
	}
	if err := s.Drop(10); err != nil { // panose
		return err
	}
	if err := s.Drop(4 * 4); err != nil { // ulUnicodeRange 1-4
		return err
	}
	if err := s.Drop(4); err != nil { // achVendID
		return err
	}
	fsSelection, err := s.U16()
	if err != nil {
		return err
	}
	if err := s.Drop(2 * 2); err != nil { // usFirstCharIndex, usLastCharIndex
		return err
	}
	typoAscender, err := s.I16()
	if err != nil {
		return err
	}
	typoDescender, err := s.I16()
	if err != nil {
		return err
	}
	typoLineGap, err := s.I16()
	if err != nil {
		return err
	}
	winAscent, err := s.U16()
	if err != nil {
		return err
	}
	winDescent, err := s.U16()
	if err != nil {
		return err
	}

	o := &OS2Table{
		Version:       version,
		TypoAscender:  typoAscender,
		TypoDescender: typoDescender,
		TypoLineGap:   typoLineGap,
		WinAscent:     winAscent,
		WinDescent:    winDescent,
		FsSelection:   fsSelection,
		WeightClass:   weightClass,
		WidthClass:    widthClass,
	}

	if version >= 2 {
		// ulCodePageRange1/2, sxHeight, sCapHeight, usDefaultChar,
		// usBreakChar, usMaxContext precede in the record; we only need
		// sxHeight/sCapHeight which come after the code page ranges.
		if err := s.Drop(4 * 2); err != nil {
			return err
		}
		xHeight, err := s.I16()
		if err != nil {
			return err
		}
		capHeight, err := s.I16()
		if err != nil {
			return err
		}
		o.XHeight = xHeight
		o.CapHeight = capHeight
	}

	f.OS2 = o
	return nil
}

// DefaultLineSpacing implements spec.md §4.2's formula:
//
//	max(UPM·1.2, typo_ascent − typo_descent + typo_linegap)
func (f *File) DefaultLineSpacing() float64 {
	upm := float64(f.Head.UnitsPerEm)
	fromUPM := upm * 1.2
	if f.OS2 == nil {
		return fromUPM
	}
	fromTypo := float64(f.OS2.TypoAscender-f.OS2.TypoDescender) + float64(f.OS2.TypoLineGap)
	if fromTypo > fromUPM {
		return fromTypo
	}
	return fromUPM
}
