package wm

// Descriptor is a raw 8-byte x86 segment/TSS descriptor, held as the two
// little-endian dwords it occupies in memory (Intel SDM Vol. 3 §3.4.5).
//
// @from aghosn-go/vtx/x86.go (SegmentDescriptor), adapted to the 32-bit
// flat-mode layout this engine exclusively uses: base/limit/type/G are the
// only degrees of freedom, DPL is always 0, and the "long mode" / "user
// code/data" flag bits the original SegmentDescriptor exposes have no
// meaning here and are dropped.
type Descriptor struct {
	low, high uint32
}

// Descriptor type bytes. The engine uses exactly these three plus the null
// descriptor (spec.md §4.1); it never encodes 0x8B (busy TSS) directly —
// the busy bit is cleared only by installing a fresh, non-busy descriptor
// via page-directory remapping (spec.md §4.1, §4.3).
const (
	DescTypeCode = 0x9A
	DescTypeData = 0x92
	DescTypeTSS  = 0x89
	descTypeTSSBusy = 0x8B // for Busy(); never passed to the encoder
)

// descFlagDB forces the default-operand-size bit (bit 22 of the high
// dword). All three non-null descriptor kinds here are always 32-bit flat
// segments, so it is unconditionally set, following weirdmachine.c's
// encode_seg_descr exactly rather than gating it on descriptor type.
const descFlagDB = 1 << 22

// newDescriptor builds a descriptor from its four degrees of freedom, byte
// for byte identical to weirdmachine.c's encode_seg_descr. limit must
// already be expressed in the units G implies: byte units when g==0,
// 4 KiB units when g==1.
func newDescriptor(typ, g, base, limit uint32) Descriptor {
	low := (base&0xffff)<<16 | (limit & 0xffff)
	high := base & 0xff000000
	high |= descFlagDB
	high |= g << 23
	high |= limit & 0x000f0000
	high |= typ << 8
	high |= (base & 0x00ff0000) >> 16
	return Descriptor{low: low, high: high}
}

// NewCodeDescriptor returns a ring-0 flat 32-bit code descriptor.
func NewCodeDescriptor(base, limit uint32) Descriptor {
	return newDescriptor(DescTypeCode, 1, base, limit)
}

// NewDataDescriptor returns a ring-0 flat 32-bit data descriptor.
func NewDataDescriptor(base, limit uint32) Descriptor {
	return newDescriptor(DescTypeData, 1, base, limit)
}

// NewTSSDescriptor returns a fresh (non-busy) available 32-bit TSS
// descriptor. Limit is always 0x67 (104 bytes, the full TSS) with byte
// granularity, per spec.md §4.1.
func NewTSSDescriptor(base uint32) Descriptor {
	return newDescriptor(DescTypeTSS, 0, base, 0x67)
}

// NullDescriptor is the all-zero descriptor at GDT index 0.
var NullDescriptor = Descriptor{}

// WriteTo stores the descriptor at dword offset off within p — off and
// off+1 are overwritten.
func (d Descriptor) WriteTo(p *Page, off int) {
	p[off] = d.low
	p[off+1] = d.high
}

// DescriptorAt reads back the descriptor stored at dword offset off in p.
func DescriptorAt(p *Page, off int) Descriptor {
	return Descriptor{low: p[off], high: p[off+1]}
}

// Type returns the descriptor's access byte (bits [8:15] of the high
// dword) — 0x9A/0x92/0x89/0x8B for the kinds this engine cares about.
func (d Descriptor) Type() uint32 {
	return (d.high >> 8) & 0xff
}

// Granularity returns 1 if limit is in 4 KiB units, 0 if in bytes.
func (d Descriptor) Granularity() uint32 {
	return (d.high >> 23) & 1
}

// Base reconstructs the descriptor's 32-bit linear base address.
func (d Descriptor) Base() uint32 {
	return (d.high & 0xff000000) | ((d.high & 0xff) << 16) | (d.low >> 16)
}

// Limit reconstructs the descriptor's limit in the units it was encoded
// with (bytes for TSS descriptors, 4 KiB pages for code/data).
func (d Descriptor) Limit() uint32 {
	return (d.high & 0x000f0000) | (d.low & 0xffff)
}

// Busy reports whether this is a busy (0x8B) TSS descriptor. The engine
// never writes one — Busy always observes false on anything it generates —
// but the property test suite decodes for it to confirm that invariant.
func (d Descriptor) Busy() bool {
	return d.Type() == descTypeTSSBusy
}
