package wm

import "testing"

func TestDescriptorRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		d    Descriptor
		base uint32
		typ  uint32
		gran uint32
	}{
		{"code", NewCodeDescriptor(0, 0xfffff), 0, DescTypeCode, 1},
		{"data", NewDataDescriptor(0, 0xfffff), 0, DescTypeData, 1},
		{"tss", NewTSSDescriptor(0x0040ffd0), 0x0040ffd0, DescTypeTSS, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.d.Type(); got != c.typ {
				t.Errorf("Type() = %#x, want %#x", got, c.typ)
			}
			if got := c.d.Base(); got != c.base {
				t.Errorf("Base() = %#x, want %#x", got, c.base)
			}
			if got := c.d.Granularity(); got != c.gran {
				t.Errorf("Granularity() = %d, want %d", got, c.gran)
			}
		})
	}
}

func TestTSSDescriptorLimitAndBusy(t *testing.T) {
	d := NewTSSDescriptor(0x00410000)
	if got := d.Limit(); got != 0x67 {
		t.Errorf("Limit() = %#x, want 0x67", got)
	}
	if d.Busy() {
		t.Error("a freshly encoded TSS descriptor must never be busy")
	}
}

func TestDescriptorWriteToReadBack(t *testing.T) {
	var p Page
	p[1021] = 0xdeadbeef
	d := NewTSSDescriptor(0x00420000)
	d.WriteTo(&p, 1022)
	got := DescriptorAt(&p, 1022)
	if got.Base() != d.Base() || got.Type() != d.Type() {
		t.Errorf("DescriptorAt(1022) = %+v, want %+v", got, d)
	}
	if p[1021] != 0xdeadbeef {
		t.Error("WriteTo must not disturb the dword before its offset")
	}
}
