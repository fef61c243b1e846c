package sfnt

// HheaTable is the decoded 'hhea' table. NumberOfHMetrics is consumed by
// the hmtx reader (spec.md §4.2).
type HheaTable struct {
	Ascender             int16
	Descender            int16
	LineGap              int16
	AdvanceWidthMax      uint16
	MinLeftSideBearing   int16
	MinRightSideBearing  int16
	XMaxExtent           int16
	NumberOfHMetrics     uint16
}

func (f *File) readHhea() error {
	s, ok := f.table("hhea")
	if !ok {
		return nil
	}
	if err := s.Drop(4); err != nil { // version
		return err
	}
	ascender, err := s.I16()
	if err != nil {
		return err
	}
	descender, err := s.I16()
	if err != nil {
		return err
	}
	lineGap, err := s.I16()
	if err != nil {
		return err
	}
	advanceWidthMax, err := s.U16()
	if err != nil {
		return err
	}
	minLSB, err := s.I16()
	if err != nil {
		return err
	}
	minRSB, err := s.I16()
	if err != nil {
		return err
	}
	xMaxExtent, err := s.I16()
	if err != nil {
		return err
	}
	// caretSlopeRise, caretSlopeRun, caretOffset, 4 reserved int16, metricDataFormat
	if err := s.Drop(2 + 2 + 2 + 2*4 + 2); err != nil {
		return err
	}
	numberOfHMetrics, err := s.U16()
	if err != nil {
		return err
	}

	f.Hhea = &HheaTable{
		Ascender:            ascender,
		Descender:           descender,
		LineGap:             lineGap,
		AdvanceWidthMax:     advanceWidthMax,
		MinLeftSideBearing:  minLSB,
		MinRightSideBearing: minRSB,
		XMaxExtent:          xMaxExtent,
		NumberOfHMetrics:    numberOfHMetrics,
	}
	return nil
}

// LongHorMetric is one entry of the 'hmtx' table.
type LongHorMetric struct {
	AdvanceWidth    uint16
	LeftSideBearing int16
}

func (f *File) readHmtx() error {
	s, ok := f.table("hmtx")
	if !ok {
		return nil
	}
	numMetrics := int(f.Hhea.NumberOfHMetrics)
	numGlyphs := int(f.Maxp.NumGlyphs)

	metrics := make([]LongHorMetric, 0, numGlyphs)
	var lastAdvance uint16
	for i := 0; i < numMetrics && i < numGlyphs; i++ {
		adv, err := s.U16()
		if err != nil {
			return err
		}
		lsb, err := s.I16()
		if err != nil {
			return err
		}
		lastAdvance = adv
		metrics = append(metrics, LongHorMetric{AdvanceWidth: adv, LeftSideBearing: lsb})
	}
	for i := len(metrics); i < numGlyphs; i++ {
		lsb, err := s.I16()
		if err != nil {
			// Trailing lsb-only entries are optional; stop silently once exhausted.
			break
		}
		metrics = append(metrics, LongHorMetric{AdvanceWidth: lastAdvance, LeftSideBearing: lsb})
	}
	f.HMetrics = metrics
	return nil
}

// AdvanceWidth returns the horizontal advance for gid, per the "last
// metric repeats" hmtx convention.
func (f *File) AdvanceWidth(gid uint16) uint16 {
	if len(f.HMetrics) == 0 {
		return 0
	}
	if int(gid) < len(f.HMetrics) {
		return f.HMetrics[gid].AdvanceWidth
	}
	return f.HMetrics[len(f.HMetrics)-1].AdvanceWidth
}
