// Package wm implements a page-fault weird machine: a virtual machine whose
// every state transition is effected by x86 hardware fault-handling and
// task-switch machinery rather than by fetching and executing instructions.
//
// No instruction of the guest program is ever fetched from a code page.
// A one-instruction ISA (movdbz: move-decrement-branch-if-zero) is realised
// purely through page directories, page tables, TSS descriptors and IDT
// task gates, arranged so that the CPU's own #PF/#DF dispatch performs the
// decrement-and-branch.
package wm

// Capacities. Exceeding either is a CapacityError, reported before any
// descriptor is written.
const (
	MaxRegisters  = 64
	MaxAsmInsts   = 256
)

// PageSize is the only page size the engine ever allocates individually;
// 4 MiB pages (PSE) are used only for the two always-identity-mapped
// ranges below.
const PageSize = 0x1000

// Virtual address-space layout. Every per-real-instruction page directory
// maps these ranges identically (spec.md §4.2).
const (
	StackAddr = 0x00000000 // PDE[0]: one present 4 KiB stack page
	InstAddr  = 0x00400000 // PDE[1]: instruction + IDT window
	IdtAddr   = InstAddr   // the IDT is the first page of the window
	KernelAddr = 0x00C00000 // PDE[3]: host kernel code, 4 MiB identity
	GdtAddr    = 0x01800000 // PDE[6]: GDT window, 4 KiB x 4 pages

	// ProgBaseAddr is where the whole program region (registers,
	// constants, instruction blocks, boot pages) is identity-mapped via
	// a single 4 MiB page, in every page directory the engine installs.
	ProgBaseAddr = 0x08000000
	ProgBasePage = ProgBaseAddr >> 12
)

// Selectors. 0x08/0x10/0x18 are the host's; the engine owns the three
// rotating slots for the lifetime of the cascade.
const (
	SelNull    = 0x00
	SelCode    = 0x08
	SelData    = 0x10
	SelHostTSS = 0x18
	SelSlot0   = 0x1FF8
	SelSlot1   = 0x2FF8
	SelSlot2   = 0x3FF8
)

// EXIT and the two special registers (spec.md §3, §6).
const (
	EXIT        = -1
	RegDiscard  = -2
	RegConstOne = -3
)

// HostTSSAddr is the base address encoded into the GDT's selector-0x18
// descriptor. Nothing in this package ever dereferences it: reaching
// SelHostTSS is the terminal EXIT signal a Backend reports directly,
// standing in for the real hardware task switch back to the host kernel
// that owns x86_tss (out of scope here — spec.md §1 Non-goals).
const HostTSSAddr = 0x00020000

// Fixed boot page numbers, relative to ProgBasePage. These are allocated
// once by Setup and never move; user registers, constants and instruction
// blocks are allocated after them in strict order (spec.md §3 "Lifecycle").
const (
	pageStack      = 0  // stack page
	pageStackPT    = 1  // page table mapping pageStack at StackAddr
	pageGdtPT      = 2  // page table mapping the 4 GDT pages at GdtAddr
	pageGdt0       = 3  // GDT page 0 (null, code 0x08, data 0x10, host TSS 0x18)
	pageGdt1       = 4  // GDT page 1 (holds rotating slot 0x1FF8's descriptor)
	pageGdt2       = 5  // GDT page 2 (holds rotating slot 0x2FF8's descriptor)
	pageGdt3       = 6  // GDT page 3 (holds rotating slot 0x3FF8's descriptor)
	pageInitPD     = 7  // bootstrap page directory, used only by Launch and Resume
	pageInitPT     = 8  // bootstrap page table for the instruction window
	pageInitUnused = 9  // reserved for layout parity with weirdmachine.c's
	                     // INIT_INST slot; nothing ever addresses it.
	pageConstOne   = 10 // the const-one register
	pageDiscard    = 11 // the discard register

	firstUserPage = 12 // first page number available to AllocRegister
)

// PagesPerInst is the size of a real-instruction block: page directory,
// window page table, TSS-head page, IDT page (spec.md §4.3).
const PagesPerInst = 4

// Offsets of the four roles within a real-instruction block.
const (
	pdOff   = 0
	ptOff   = 1
	instOff = 2
	idtOff  = 3
)
