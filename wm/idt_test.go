package wm

import "testing"

func TestTaskGateRoundTrip(t *testing.T) {
	var p Page
	writeTaskGate(&p, PageFault, SelSlot1)
	writeTaskGate(&p, DoubleFault, SelSlot2)

	if got := selectorOfTaskGate(&p, PageFault); got != SelSlot1 {
		t.Errorf("PageFault selector = %#x, want %#x", got, SelSlot1)
	}
	if got := selectorOfTaskGate(&p, DoubleFault); got != SelSlot2 {
		t.Errorf("DoubleFault selector = %#x, want %#x", got, SelSlot2)
	}
	if p[int(PageFault)*2+1] != taskGateFlags {
		t.Errorf("PageFault gate flags = %#x, want %#x", p[int(PageFault)*2+1], taskGateFlags)
	}
}

func TestGenerateIdtPageRoutesBothVectors(t *testing.T) {
	e := NewEngine()
	if err := e.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	const pd = PageIndex(100)
	e.generateIdtPage(pd, 5, EXIT)

	p := e.arena.Page(pd + idtOff)
	if got := selectorOfTaskGate(p, PageFault); got != instTSSSelector(5) {
		t.Errorf("#PF target = %#x, want %#x", got, instTSSSelector(5))
	}
	if got := selectorOfTaskGate(p, DoubleFault); got != SelHostTSS {
		t.Errorf("#DF target (EXIT) = %#x, want SelHostTSS", got)
	}
}
