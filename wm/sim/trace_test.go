package sim

import "testing"

func TestTracerDropsSamplesPastCapacity(t *testing.T) {
	var tr Tracer
	for i := 0; i < 1000; i++ {
		tr.take(uint16(i))
	}
	if got := len(tr.Selectors()); got != len(tr.selectors) {
		t.Errorf("Selectors() length = %d, want capped at %d", got, len(tr.selectors))
	}
	if tr.Selectors()[0] != 0 {
		t.Error("earliest sample should be retained, not overwritten, once full")
	}
	tr.Reset()
	if got := len(tr.Selectors()); got != 0 {
		t.Errorf("Selectors() length after Reset = %d, want 0", got)
	}
}
