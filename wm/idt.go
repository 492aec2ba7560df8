package wm

// Vector identifies an x86 exception/interrupt vector.
//
// @from aghosn-go/vtx/kernel.go (Vector, exception vector list) — this
// engine only ever owns two of them.
type Vector uint32

const (
	DoubleFault Vector = 8
	PageFault   Vector = 14
)

// idtEntriesPerPage is how many 8-byte task-gate slots fit in one 4 KiB
// IDT page; only entries 8 and 14 are ever populated (spec.md §4.2).
const idtEntriesPerPage = PageSize / 8

// taskGateFlags is the fixed flags byte for every task gate this engine
// installs: present, DPL=3, type=0x5 (task gate), matching
// weirdmachine.c's literal 0xe500 (flags byte 0xE5 placed at bit 8 of the
// gate's high dword).
const taskGateFlags = 0xe500

// writeTaskGate installs a task gate at vector v in IDT page p, targeting
// selector sel. A task gate descriptor's low dword carries only the
// selector (in its high 16 bits); its high dword carries the flags byte.
func writeTaskGate(p *Page, v Vector, sel uint16) {
	off := int(v) * 2
	p[off] = uint32(sel) << 16
	p[off+1] = taskGateFlags
}

// selectorOfTaskGate reads back the selector installed by writeTaskGate,
// used by property tests and by the simulator's dispatch.
func selectorOfTaskGate(p *Page, v Vector) uint16 {
	off := int(v) * 2
	return uint16(p[off] >> 16)
}
