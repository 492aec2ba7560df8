package sim

// Tracer records the selector sequence a cascade passes through, a small
// debugging aid for working out why a program's control flow went where
// it did without re-running it under a real debugger.
//
// @from aghosn-go/debug/debug.go (MRTValues/TakeValue/DumpValues) — same
// fixed-capacity sample buffer, repurposed from timestamp sampling to
// cascade-selector sampling. Capacity is bounded rather than growing
// unboundedly because a non-terminating program would otherwise make
// tracing itself the thing that exhausts memory.
type Tracer struct {
	selectors [256]uint16
	n         int
}

// Reset clears a Tracer for reuse across multiple Run calls.
func (t *Tracer) Reset() {
	t.n = 0
}

// take appends sel, silently dropping samples once the buffer is full —
// a long-running or looping cascade still completes, it just stops being
// traced in detail.
func (t *Tracer) take(sel uint16) {
	if t.n < len(t.selectors) {
		t.selectors[t.n] = sel
		t.n++
	}
}

// Selectors returns the recorded sequence, oldest first.
func (t *Tracer) Selectors() []uint16 {
	return t.selectors[:t.n]
}
