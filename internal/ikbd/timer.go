package ikbd

// TCSR bits
const (
	tcsrICF  = 1 << 7
	tcsrOCF  = 1 << 6
	tcsrTOF  = 1 << 5
	tcsrEICI = 1 << 4
	tcsrEOCI = 1 << 3
	tcsrETOI = 1 << 2
	tcsrIEDG = 1 << 1
	tcsrOLVL = 1 << 0

	tcsrWritable = tcsrEICI | tcsrEOCI | tcsrETOI | tcsrIEDG | tcsrOLVL

	// value loaded into the counter by any write to it
	frcPreset = 0xfff8
)

// timer is the 16-bit free running counter with output compare.
type timer struct {
	frc  uint16
	ocr  uint16
	tcsr uint8

	latch uint8 // low byte captured by reading the high byte

	// set by reading TCSR while the flag is up; the flag clears on the
	// matching register access that follows
	ocfArmed bool
	tofArmed bool

	// compare is skipped for the cycle after an OCR write
	inhibit bool
}

func (t *timer) reset() {
	*t = timer{ocr: 0xffff}
}

func (t *timer) tick(cycles int) {
	for ; cycles > 0; cycles-- {
		t.frc++
		if t.frc == 0 {
			t.tcsr |= tcsrTOF
		}
		if t.inhibit {
			t.inhibit = false
			continue
		}
		if t.frc == t.ocr {
			t.tcsr |= tcsrOCF
		}
	}
}

func (t *timer) compareIRQ() bool {
	return t.tcsr&tcsrOCF > 0 && t.tcsr&tcsrEOCI > 0
}

func (t *timer) overflowIRQ() bool {
	return t.tcsr&tcsrTOF > 0 && t.tcsr&tcsrETOI > 0
}

func (t *timer) read(reg uint8) uint8 {
	switch reg {
	case regTCSR:
		t.ocfArmed = t.tcsr&tcsrOCF > 0
		t.tofArmed = t.tcsr&tcsrTOF > 0
		return t.tcsr
	case regFRCH:
		t.latch = uint8(t.frc)
		if t.tofArmed {
			t.tcsr &^= tcsrTOF
			t.tofArmed = false
		}
		return uint8(t.frc >> 8)
	case regFRCL:
		return t.latch
	case regOCRH:
		return uint8(t.ocr >> 8)
	default:
		return uint8(t.ocr)
	}
}

func (t *timer) peek(reg uint8) uint8 {
	switch reg {
	case regTCSR:
		return t.tcsr
	case regFRCH:
		return uint8(t.frc >> 8)
	case regFRCL:
		return t.latch
	case regOCRH:
		return uint8(t.ocr >> 8)
	default:
		return uint8(t.ocr)
	}
}

func (t *timer) write(reg, data uint8) {
	switch reg {
	case regTCSR:
		t.tcsr = t.tcsr&^tcsrWritable | data&tcsrWritable
	case regFRCH:
		// held in the temporary register; the counter only changes on
		// the low byte write
	case regFRCL:
		t.frc = frcPreset
	case regOCRH, regOCRL:
		if reg == regOCRH {
			t.ocr = uint16(data)<<8 | t.ocr&0x00ff
		} else {
			t.ocr = t.ocr&0xff00 | uint16(data)
		}
		if t.ocfArmed {
			t.tcsr &^= tcsrOCF
			t.ocfArmed = false
		}
		t.inhibit = true
	}
}
