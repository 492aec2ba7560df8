package wm

// This file is the seam a Backend (wm/sim, or any future hardware-backed
// one) uses to actually walk the structures the rest of this package
// writes. None of it is needed by Setup/Emit/Finalise/Launch/Resume
// themselves — it exists only so a cascade can be driven without a real
// ring-0 CPU underneath it.

// SlotOf reports which of the three rotating GDT slots a selector names.
func SlotOf(sel uint16) (int, bool) {
	switch sel {
	case SelSlot0:
		return 0, true
	case SelSlot1:
		return 1, true
	case SelSlot2:
		return 2, true
	default:
		return 0, false
	}
}

// GDTDescriptor reads back the descriptor currently installed for one of
// the three rotating slots. The GDT's four pages are shared, unmapped-per-
// instruction memory (every page directory's PDE[6] points at the same
// physical pages), so this needs no page-directory argument — unlike the
// instruction window, it is not something map_dest_tss/map_src_tss ever
// rewrites per block.
func GDTDescriptor(a *Arena, sel uint16) (Descriptor, bool) {
	slot, ok := SlotOf(sel)
	if !ok {
		return Descriptor{}, false
	}
	const slotOff = 0x3fe
	return DescriptorAt(a.Page(pageGdt0+1+PageIndex(slot)), slotOff), true
}

// IDTTarget reads the task-gate selector a page directory's own IDT holds
// for vector v. pd's IDT page is always pd+idtOff — every block's own
// generateIdtPage wrote it there, and nothing ever remaps that slot.
func IDTTarget(a *Arena, pd PageIndex, v Vector) uint16 {
	return selectorOfTaskGate(a.Page(pd+idtOff), v)
}

// windowIndex returns the window page table index a selector's slot
// resolves to — the same index map_dest_tss uses for the active block's
// own selector, and map_src_tss uses for a successor's.
func windowIndex(sel uint16) (int, bool) {
	slot, ok := SlotOf(sel)
	if !ok {
		return 0, false
	}
	addr := InstAddr + uint32(slot)*0x10000 + 0xffd0
	return ptIndexFor(addr), true
}

// decodeFrame undoes frame()'s encoding, returning the page number a PDE/
// PTE entry points at, relative to ProgBasePage.
func decodeFrame(entry uint32) PageIndex {
	return PageIndex(entry>>12) - ProgBasePage
}

// HeadPageFor reads, from pd's own window page table, the instruction head
// page mapped for selector sel's slot. Meaningful only when sel names a
// successor pd's block pointed at via map_src_tss — map_dest_tss's own
// mapping at the same index holds a GDT page, not a head page, and callers
// must not call this for "my own selector".
func HeadPageFor(a *Arena, pd PageIndex, sel uint16) (PageIndex, bool) {
	idx, ok := windowIndex(sel)
	if !ok {
		return 0, false
	}
	frame := a.Page(pd + ptOff)[idx]
	if frame == 0 {
		return 0, false
	}
	return decodeFrame(frame), true
}

// RegPageFor reads, from pd's own window page table, the register page
// mapped for selector sel's slot. Valid for both map_dest_tss's own-
// selector mapping and map_src_tss's successor mapping: both always put
// the register page at idx+1.
func RegPageFor(a *Arena, pd PageIndex, sel uint16) PageIndex {
	idx, _ := windowIndex(sel)
	return decodeFrame(a.Page(pd + ptOff)[idx+1])
}

// HeadCR3 reads the page directory a head page's TSS will switch to once
// loaded as the active task.
func HeadCR3(p *Page) PageIndex {
	const tssOffCR3 = 1019
	return PageIndex(p[tssOffCR3]>>12) - ProgBasePage
}

// ESPRaw and SetESPRaw read and write a register tail's raw ESP field —
// the value a Backend decrements by 4 per entry-fault, four times the
// logical register value readReg/writeReg expose.
func ESPRaw(p *Page) uint32 {
	return p[regOffESP]
}

func SetESPRaw(p *Page, v uint32) {
	p[regOffESP] = v
}
