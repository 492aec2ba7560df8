package wm

// RegisterID names a register: a non-negative id is a user register or a
// constant (constants are allocated contiguously after user registers, so
// an id alone doesn't distinguish them — AllocConstant returns the id it
// assigned). The two negative values are the special registers spec.md §3
// and §6 define: RegDiscard (write sink) and RegConstOne (always 1).
type RegisterID int

// Register page layout. A register is the tail half of a TSS: the part
// the window page table remaps per real instruction. Page offset 2 is TSS
// offset 56 (ESP) which carries the value; offsets 6-12 are the fixed
// flat-mode segment selectors the register must hold for its entire
// lifetime (spec.md §3 "Invariants").
const (
	regOffESP = 2
	regOffES  = 6
	regOffCS  = 7
	regOffSS  = 8
	regOffDS  = 9
	regOffFS  = 10
	regOffGS  = 11
	regOffLDT = 12
)

// MaxRegisterValue is the largest value a register may safely hold
// (spec.md §9, Open Question (c)): the ESP field is value<<2, and the
// error-code push's 4-byte decrement must never cross into a mapped page
// outside the intended stack slot.
const MaxRegisterValue = 1 << 30

// genReg initialises the register page at p with the given value: ESP =
// value<<2 (so that one push-decrement lowers the observed value by
// exactly 1), and the fixed flat segment selectors for CS/SS/DS/ES/FS/GS.
func genReg(p *Page, value uint32) {
	p.zero()
	p[regOffESP] = value << 2
	p[regOffES] = SelData
	p[regOffCS] = SelCode
	p[regOffSS] = SelData
	p[regOffDS] = SelData
	p[regOffFS] = SelData
	p[regOffGS] = SelData
	p[regOffLDT] = 0
}

// readReg returns the register's current logical value: the ESP field
// right-shifted by 2 (spec.md §3 "Invariants").
func readReg(p *Page) uint32 {
	return p[regOffESP] >> 2
}

// writeReg overwrites just the ESP field, leaving the fixed segment
// selectors untouched — safe only while the cascade is not running
// (spec.md §4.4).
func writeReg(p *Page, value uint32) {
	p[regOffESP] = value << 2
}
