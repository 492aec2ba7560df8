package wm

import "testing"

func TestInstTSSSelectorRotation(t *testing.T) {
	want := []uint16{SelSlot0, SelSlot1, SelSlot2, SelSlot0, SelSlot1, SelSlot2}
	for i, w := range want {
		if got := instTSSSelector(i); got != w {
			t.Errorf("instTSSSelector(%d) = %#x, want %#x", i, got, w)
		}
	}
	if got := instTSSSelector(EXIT); got != SelHostTSS {
		t.Errorf("instTSSSelector(EXIT) = %#x, want SelHostTSS", got)
	}
}

func TestInstTSSAddrFormula(t *testing.T) {
	cases := []struct {
		inst int
		addr uint32
	}{
		{0, InstAddr + 0xffd0},
		{1, InstAddr + 0x10000 + 0xffd0},
		{2, InstAddr + 0x20000 + 0xffd0},
		{3, InstAddr + 0xffd0}, // rotates back to slot 0
	}
	for _, c := range cases {
		if got := instTSSAddr(c.inst); got != c.addr {
			t.Errorf("instTSSAddr(%d) = %#x, want %#x", c.inst, got, c.addr)
		}
	}
}

// Every real instruction's window PT index for its own TSS and for each of
// its successors' TSSes must land on a distinct pair of dwords — the
// rotation exists precisely so no instruction ever collides with its own
// successor's slot (spec.md §3 "Rotating TSS slots").
func TestWindowIndicesNeverCollideAcrossRotation(t *testing.T) {
	for i := 0; i < 3; i++ {
		own := ptIndexFor(instTSSAddr(i))
		for _, succ := range []int{i + 1, i + 2} {
			other := ptIndexFor(instTSSAddr(succ))
			if own == other {
				t.Errorf("instruction %d's own window index (%d) collides with successor %d's (%d)", i, own, succ, other)
			}
		}
	}
}

func TestGeneratePageTableSharesGDTAcrossBlocks(t *testing.T) {
	e := NewEngine()
	if err := e.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	pdA := PageIndex(200)
	pdB := PageIndex(300)
	e.generatePageTable(pdA)
	e.generatePageTable(pdB)

	ptGdt := e.arena.Page(pageGdtPT)
	for k := 0; k < 4; k++ {
		want := frame(uint32(ProgBasePage+pageGdt0) + uint32(k))
		if ptGdt[k] != want {
			t.Errorf("shared GDT PT entry %d = %#x, want %#x", k, ptGdt[k], want)
		}
	}
	if e.arena.Page(pdA)[GdtAddr>>22] != e.arena.Page(pdB)[GdtAddr>>22] {
		t.Error("every page directory's GDT-window PDE must point at the same shared page table")
	}
}

func TestGeneratePageTableOwnIdtLinkage(t *testing.T) {
	e := NewEngine()
	if err := e.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	const pd = PageIndex(400)
	e.generatePageTable(pd)

	ptInst := e.arena.Page(pd + ptOff)
	want := frame(uint32(ProgBasePage) + uint32(pd) + idtOff)
	if ptInst[0] != want {
		t.Errorf("window PT entry 0 (own IDT) = %#x, want %#x", ptInst[0], want)
	}
}
