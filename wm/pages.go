package wm

// Page is one 4 KiB physical page, viewed as 1024 little-endian dwords.
// Every descriptor, page table and TSS in this engine is a packed struct
// written directly through this array rather than through Go struct
// fields, because the same bytes are simultaneously a Go value and (in a
// real deployment) the operand of hardware table walks and task switches —
// there is no field layout Go can own independently of the wire format.
type Page [PageSize / 4]uint32

// PageIndex is a page number relative to ProgBasePage. The physical (and,
// under every page directory the engine installs, virtual) address of
// page i is ProgBaseAddr + i*PageSize.
type PageIndex uint32

// Addr returns the identity-mapped virtual address of page i.
func (i PageIndex) Addr() uint32 {
	return ProgBaseAddr + uint32(i)*PageSize
}

// Arena is the engine's entire physical memory: a contiguous,
// page-aligned, append-only region. Pages are handed out in strict order
// during assembly (registers, then constants, then instruction blocks;
// spec.md §3 "Lifecycle") and never freed — the whole region is discarded
// when the engine is done with it. The driver computes every page number
// by direct formula from the fixed layout in consts.go rather than by
// bumping a free pointer, so Arena itself owns no allocation cursor — it
// is purely storage, grown on demand by Page.
type Arena struct {
	pages []Page
}

// NewArena reserves the fixed boot pages (stack, GDT, initial PD/PT, the
// two special registers) and returns an Arena ready for register and
// instruction allocation starting at firstUserPage.
func NewArena() *Arena {
	a := &Arena{}
	a.grow(firstUserPage)
	return a
}

func (a *Arena) grow(n PageIndex) {
	if int(n) > len(a.pages) {
		a.pages = append(a.pages, make([]Page, int(n)-len(a.pages))...)
	}
}

// Page returns a pointer to page i, growing the arena if i has not been
// touched yet. Pages are zero until first written, matching the memset32
// the original performs before populating each page.
func (a *Arena) Page(i PageIndex) *Page {
	a.grow(i + 1)
	return &a.pages[i]
}

// zero clears a page in place, mirroring memset32(p, 0, 1024) in the
// original: every page generator starts from a clean slate.
func (p *Page) zero() {
	for i := range p {
		p[i] = 0
	}
}
