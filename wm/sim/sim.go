// Package sim is a software CPU backend for the page-fault weird machine
// engine: it walks the same page directories, page tables, IDTs and TSS
// descriptors a real x86 CPU would, performing the decrement-and-branch
// task-switch cascade in Go rather than in ring 0.
//
// @from aghosn-go/sim (the no-hardware-virtualization backend used to
// exercise the rest of that package's VM driver without KVM/VT-x) —
// same role here: let wm.Engine's driver logic be tested without a real
// CPU underneath it.
package sim

import "github.com/sweis/pagefaultclaude/wm"

// maxSteps bounds how many task switches one Run will follow before
// giving up. A real CPU would spin forever on a program with no reachable
// EXIT; this package can't, so it reports that case as unrecoverable
// rather than hanging the test process.
const maxSteps = 1 << 20

// Simulator implements wm.Backend without any privileged hardware access.
type Simulator struct {
	// Trace, if non-nil, receives the selector of every task switched to
	// during Run, in order. Leaving it nil costs nothing extra.
	Trace *Tracer
}

// New returns a ready-to-use Simulator.
func New() *Simulator {
	return &Simulator{}
}

// Run drives one cascade to completion, exactly mirroring spec.md §4.3's
// description of how one move happens: load the entry task via bootPD's
// window mapping, then repeatedly take its entry-fault (page fault if its
// loaded ESP was non-zero, double fault if it was zero), save the
// decremented value into whatever register the active block's own
// selector maps as its destination, and load whichever successor the
// fault's task gate names — until that successor is the host-return
// selector.
func (s *Simulator) Run(a *wm.Arena, bootPD wm.PageIndex, entrySelector uint16) error {
	if entrySelector == wm.SelHostTSS {
		return nil
	}

	headPage, ok := wm.HeadPageFor(a, bootPD, entrySelector)
	if !ok {
		return &wm.UnrecoverableError{Reason: "boot block has no mapping for the entry selector"}
	}
	tailPage := wm.RegPageFor(a, bootPD, entrySelector)

	pd := wm.HeadCR3(a.Page(headPage))
	sel := entrySelector
	espRaw := wm.ESPRaw(a.Page(tailPage))
	if s.Trace != nil {
		s.Trace.take(sel)
	}

	for step := 0; step < maxSteps; step++ {
		vector := wm.PageFault
		newEspRaw := espRaw - 4
		if espRaw == 0 {
			// The push itself is what faults here: ESP never leaves 0, so
			// the decremented value saved is 0, not a wrapped -4.
			vector = wm.DoubleFault
			newEspRaw = 0
		}

		nextSel := wm.IDTTarget(a, pd, vector)

		destPage := wm.RegPageFor(a, pd, sel)
		wm.SetESPRaw(a.Page(destPage), newEspRaw)

		if nextSel == wm.SelHostTSS {
			if s.Trace != nil {
				s.Trace.take(nextSel)
			}
			return nil
		}

		nextHeadPage, ok := wm.HeadPageFor(a, pd, nextSel)
		if !ok {
			return &wm.UnrecoverableError{Reason: "reached a selector with no window mapping"}
		}
		nextTailPage := wm.RegPageFor(a, pd, nextSel)

		pd = wm.HeadCR3(a.Page(nextHeadPage))
		sel = nextSel
		espRaw = wm.ESPRaw(a.Page(nextTailPage))
		if s.Trace != nil {
			s.Trace.take(sel)
		}
	}
	return &wm.UnrecoverableError{Reason: "cascade did not reach EXIT within the step budget"}
}
