package wm

// generateIdtPage installs the two task gates a real instruction's IDT ever
// needs: vector 14 (#PF, taken when the loaded source was non-zero before
// its decrement) targets destPF, vector 8 (#DF, taken when it was already
// zero) targets destDF. Either may be EXIT.
func (e *Engine) generateIdtPage(pdPage PageIndex, destPF, destDF int) {
	p := e.arena.Page(pdPage + idtOff)
	p.zero()
	writeTaskGate(p, PageFault, instTSSSelector(destPF))
	writeTaskGate(p, DoubleFault, instTSSSelector(destDF))
}

// generateInstPage writes the TSS head this real instruction is entered
// through: CR3 pointing back at its own page directory, EIP at a
// permanently unmapped address (so the very first fetch faults), a fixed
// EFLAGS, and a fresh non-busy descriptor for its own selector sitting
// right where hardware expects to find it reloaded from — spec.md §4.1
// "freshly encoded, non-busy" is what makes the rotating slots reusable
// without ever touching the TSS-busy bit.
func (e *Engine) generateInstPage(pdPage PageIndex, instNr int) {
	p := e.arena.Page(pdPage + instOff)
	p.zero()
	const (
		tssOffCR3    = 1019
		tssOffEIP    = 1020
		tssOffEFLAGS = 1021
		tssOffDescr  = 1022
	)
	p[tssOffCR3] = (uint32(ProgBasePage) + uint32(pdPage)) << 12
	p[tssOffEIP] = 0x0fffefff
	p[tssOffEFLAGS] = 0x00000002 // reserved bit 1 only; no guest code ever runs to observe more
	NewTSSDescriptor(instTSSAddr(instNr)).WriteTo(p, tssOffDescr)
}

// ptIndexFor returns the page-table entry index that the window page
// table's mapping of a selector's TSS address falls at: bits 12-21 of the
// address, i.e. its page number within the 4 MiB instruction-window PDE
// range.
func ptIndexFor(addr uint32) int {
	return int((addr & 0x003ff000) >> 12)
}

// mapDestTSS installs, within this instruction's own window page table,
// the mapping hardware consults for this SAME instruction's own selector:
// the GDT page holding its fresh descriptor, and destPage as the register
// tail that receives the decremented ESP when some later switch leaves
// this instruction. This is the save-phase mapping (spec.md §4.3 "How one
// move happens") — it is read while this instruction's own PD is still
// the active one, right before the CPU leaves it.
func (e *Engine) mapDestTSS(pdPage PageIndex, instNr int, destPage PageIndex) {
	pt := e.arena.Page(pdPage + ptOff)
	addr := instTSSAddr(instNr)
	gdtPageOffset := instTSSSelector(instNr) >> 12
	idx := ptIndexFor(addr)
	pt[idx] = frame(uint32(ProgBasePage+pageGdt0) + uint32(gdtPageOffset))
	pt[idx+1] = frame(uint32(ProgBasePage) + uint32(destPage))
}

// mapSrcTSS installs, within this instruction's own window page table, the
// mapping for a possible successor's selector: the successor's own
// TSS-head page (for the GDT lookup and the load phase of the switch into
// it) and srcPage as the register tail the successor's ESP is loaded from.
// One call per real successor (destPF and/or destDF), skipped for EXIT.
func (e *Engine) mapSrcTSS(pdPage PageIndex, nextInstNr int, srcPage PageIndex) {
	pt := e.arena.Page(pdPage + ptOff)
	addr := instTSSAddr(nextInstNr)
	nextInstPage := e.firstInstPage + PageIndex(nextInstNr)*PagesPerInst + instOff
	idx := ptIndexFor(addr)
	pt[idx] = frame(uint32(ProgBasePage) + uint32(nextInstPage))
	pt[idx+1] = frame(uint32(ProgBasePage) + uint32(srcPage))
}

// genRealInst materialises one complete real-instruction block: its page
// directory, IDT, TSS head, and the window mappings for itself and for
// whichever of destPF/destDF are real successors (not EXIT).
func (e *Engine) genRealInst(instNr, destPF, destDF int, destPage, pfInputPage, dfInputPage PageIndex) {
	pdPage := e.firstInstPage + PageIndex(instNr)*PagesPerInst + pdOff
	e.generatePageTable(pdPage)
	e.generateIdtPage(pdPage, destPF, destDF)
	e.generateInstPage(pdPage, instNr)
	e.mapDestTSS(pdPage, instNr, destPage)
	if destPF != EXIT {
		e.mapSrcTSS(pdPage, destPF, pfInputPage)
	}
	if destDF != EXIT {
		e.mapSrcTSS(pdPage, destDF, dfInputPage)
	}
}

// compileMovdbz expands one abstract instruction into its three real
// instructions (spec.md §4.3 "Compilation rule"):
//
//	NOP0 (index 3i):   entered with the const-one register loaded; its
//	                   decrement is saved into the discard register, and
//	                   both faults lead to REAL, loading Src as REAL's ESP.
//	NOP1 (index 3i+1): same as NOP0; it is the entry point Z branches use.
//	REAL (index 3i+2): decrements Src, saving Src-1 into Dst, and
//	                   branches: NZ's real index is 3*NZ (or EXIT), Z's is
//	                   3*Z+1 (or EXIT); either successor loads const-one.
//
// Because REAL always sits in slot 2 and its successors are NOP0 (slot 0)
// or NOP1 (slot 1) of their targets, REAL's own mapping and both successor
// mappings use three different window indices. Src is only ever loaded,
// never saved to, so it is left unchanged.
func (e *Engine) compileMovdbz(asmInst int, dst, src RegisterID, nz, z int) {
	i := asmInst * 3
	srcPage := e.regPage(src)
	destPage := e.regPage(dst)

	e.genRealInst(i, i+2, i+2, pageDiscard, srcPage, srcPage)
	e.genRealInst(i+1, i+2, i+2, pageDiscard, srcPage, srcPage)

	realNZ, realZ := EXIT, EXIT
	if nz != EXIT {
		realNZ = nz * 3
	}
	if z != EXIT {
		realZ = z*3 + 1
	}
	e.genRealInst(i+2, realNZ, realZ, destPage, pageConstOne, pageConstOne)
}

// generateBootstrap builds the reusable page directory Launch and Resume
// enter through: a page table identical in shape to every real
// instruction's. Its one dynamic mapping — which entry selector it hands
// off to, and from which register the entered instruction loads its ESP —
// is installed separately by Launch/Resume themselves, on every call,
// using the same mapSrcTSS primitive a real instruction uses for its own
// successors (spec.md §4.4 "launch", "resume").
func (e *Engine) generateBootstrap() {
	e.generatePageTable(pageInitPD)
}
