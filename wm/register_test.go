package wm

import "testing"

func TestRegisterValueRoundTrip(t *testing.T) {
	var p Page
	genReg(&p, 42)
	if got := readReg(&p); got != 42 {
		t.Errorf("readReg after genReg(42) = %d, want 42", got)
	}
	if p[regOffESP] != 42<<2 {
		t.Errorf("ESP field = %#x, want %#x", p[regOffESP], 42<<2)
	}
	writeReg(&p, 7)
	if got := readReg(&p); got != 7 {
		t.Errorf("readReg after writeReg(7) = %d, want 7", got)
	}
}

func TestRegisterSelectorsAreFlatAndFixed(t *testing.T) {
	var p Page
	genReg(&p, 1)
	fields := map[string]uint32{
		"ES": p[regOffES], "SS": p[regOffSS], "DS": p[regOffDS],
		"FS": p[regOffFS], "GS": p[regOffGS],
	}
	for name, got := range fields {
		if got != SelData {
			t.Errorf("%s = %#x, want SelData (%#x)", name, got, SelData)
		}
	}
	if p[regOffCS] != SelCode {
		t.Errorf("CS = %#x, want SelCode (%#x)", p[regOffCS], SelCode)
	}
	writeReg(&p, 0)
	if p[regOffES] != SelData || p[regOffCS] != SelCode {
		t.Error("writeReg must not disturb the fixed segment selectors")
	}
}

func TestDecrementByPushMatchesOneLessValue(t *testing.T) {
	var p Page
	genReg(&p, 9)
	// One push-during-fault-delivery subtracts 4 from ESP; the visible
	// register value must drop by exactly 1.
	p[regOffESP] -= 4
	if got := readReg(&p); got != 8 {
		t.Errorf("after a 4-byte push decrement, value = %d, want 8", got)
	}
}
