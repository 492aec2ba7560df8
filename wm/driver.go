package wm

// state is the driver's position in the lifecycle spec.md §4.4 describes:
// Uninit -> Ready by Setup; Emit/AllocRegister/AllocConstant stay in
// Ready; Launch takes Ready -> Running; a cascade that reaches EXIT takes
// Running -> Exited; Resume takes Exited -> Running again.
type state int

const (
	stateUninit state = iota
	stateReady
	stateRunning
	stateExited
)

// Backend runs one cascade to completion: starting from entrySelector,
// it performs whatever task switches the arena's descriptors, page tables
// and IDTs drive, until it reaches SelHostTSS (a clean EXIT, err == nil)
// or can no longer make progress (UnrecoverableError).
//
// This seam has no equivalent in weirdmachine.c — there, "running the
// cascade" simply means letting real hardware execute a far jump and
// waiting for control to return. A hosted Go process has no ring-0 CPU to
// hand that off to, so the driver delegates to whichever Backend the
// caller has installed; wm/sim provides one that needs no privileged
// hardware at all.
type Backend interface {
	Run(a *Arena, bootPD PageIndex, entrySelector uint16) error
}

// Engine is the page-fault weird machine driver: it owns the Arena, the
// assembled Program, and the host-return TSS descriptor's target, and
// walks the state machine above in response to the calls below
// (spec.md §4.4).
type Engine struct {
	st      state
	arena   *Arena
	prog    *Program
	backend Backend

	numUserRegs    int
	numConstRegs   int
	firstInstPage  PageIndex
	instsAllocated bool
}

// NewEngine returns an Engine in the Uninit state.
func NewEngine() *Engine {
	return &Engine{st: stateUninit}
}

// SetBackend installs the CPU backend Launch and Resume drive the cascade
// through. Must be called before Launch; may be changed at any time
// while the engine is not Running.
func (e *Engine) SetBackend(b Backend) {
	e.backend = b
}

// Setup allocates the arena and writes the static GDT, taking the engine
// from Uninit to Ready.
func (e *Engine) Setup() error {
	if e.st != stateUninit {
		return precondition("Setup", "engine already set up")
	}
	e.arena = NewArena()
	e.prog = newProgram()
	writeGDT(e.arena, pageGdt0)
	genReg(e.arena.Page(pageConstOne), 1)
	genReg(e.arena.Page(pageDiscard), 0)
	e.st = stateReady
	return nil
}

// checkOperand validates a register operand against the engine's current
// allocation, applying the one asymmetry the two special registers carry:
// RegConstOne may never be a destination (spec.md §3 "Invariants").
func (e *Engine) checkOperand(op string, id RegisterID, isDst bool) error {
	switch id {
	case RegDiscard:
		return nil
	case RegConstOne:
		if isDst {
			return precondition(op, "REG_CONST_ONE cannot be a destination")
		}
		return nil
	default:
		if id < 0 || int(id) >= e.numUserRegs+e.numConstRegs {
			return precondition(op, "register id out of range")
		}
		return nil
	}
}

// allocNext is the shared tail of AllocRegister and AllocConstant: both
// assign the next page in the contiguous register/constant id space and
// differ only in which counter they advance.
func (e *Engine) allocNext(op string, value uint32) (RegisterID, error) {
	if e.st != stateReady {
		return 0, precondition(op, "engine not in Ready state")
	}
	if e.instsAllocated {
		return 0, precondition(op, "cannot allocate after emitting an instruction")
	}
	if value >= MaxRegisterValue {
		return 0, precondition(op, "value exceeds the maximum representable register value")
	}
	total := e.numUserRegs + e.numConstRegs
	if total >= MaxRegisters {
		return 0, capacity(op, MaxRegisters, total+1)
	}
	id := RegisterID(total)
	genReg(e.arena.Page(e.regPage(id)), value)
	return id, nil
}

// AllocRegister assigns the next free register page, initialised to
// value, and returns its id (spec.md §4.4 "alloc_register").
func (e *Engine) AllocRegister(value uint32) (RegisterID, error) {
	id, err := e.allocNext("AllocRegister", value)
	if err != nil {
		return 0, err
	}
	e.numUserRegs++
	return id, nil
}

// AllocConstant assigns the next free register page as a constant,
// initialised to value (spec.md §4.4 "alloc_constant"; callers wanting a
// constant that reads back as k in generated arithmetic pass k+1, per
// spec.md §4.3 "Const-one and discard").
func (e *Engine) AllocConstant(value uint32) (RegisterID, error) {
	id, err := e.allocNext("AllocConstant", value)
	if err != nil {
		return 0, err
	}
	e.numConstRegs++
	return id, nil
}

// freezeInstPage computes firstInstPage the first time an instruction
// block is about to be materialised, and never again — once any real
// instruction exists, the register/constant region's size is fixed
// (spec.md §3 "Lifecycle").
func (e *Engine) freezeInstPage() {
	if e.instsAllocated {
		return
	}
	e.firstInstPage = firstUserPage + PageIndex(e.numUserRegs+e.numConstRegs)
	e.instsAllocated = true
}

// Emit compiles abstract instruction index i: dst := decrement(src),
// branch to nz if src was non-zero, to z if it was zero. Either branch
// target may be EXIT. Instructions may be emitted in any order; targets
// are not validated against what has been emitted yet, only against
// MaxAsmInsts, matching weirdmachine.c's forward-reference tolerance
// (spec.md §4.4 "emit").
func (e *Engine) Emit(i int, dst, src RegisterID, nz, z int) error {
	if e.st != stateReady {
		return precondition("Emit", "engine not in Ready state")
	}
	if i < 0 || i >= MaxAsmInsts {
		return capacity("Emit", MaxAsmInsts, i+1)
	}
	if err := e.checkOperand("Emit", dst, true); err != nil {
		return err
	}
	if err := e.checkOperand("Emit", src, false); err != nil {
		return err
	}
	if nz != EXIT && (nz < 0 || nz >= MaxAsmInsts) {
		return precondition("Emit", "nz target out of range")
	}
	if z != EXIT && (z < 0 || z >= MaxAsmInsts) {
		return precondition("Emit", "z target out of range")
	}

	e.freezeInstPage()
	e.prog.set(i, Instruction{Dst: dst, Src: src, NZ: nz, Z: z})
	e.compileMovdbz(i, dst, src, nz, z)
	return nil
}

// Finalise materialises the bootstrap block and marks the program ready
// to launch (spec.md §4.4 "finalise"). Calling it before any instruction
// has been emitted is a precondition violation: there would be nothing
// for Launch to enter.
func (e *Engine) Finalise() error {
	if e.st != stateReady {
		return precondition("Finalise", "engine not in Ready state")
	}
	if e.prog.len() == 0 {
		return precondition("Finalise", "finalise called without any instruction")
	}
	e.freezeInstPage()
	e.generateBootstrap()
	e.prog.ready = true
	return nil
}

// Launch enters the cascade at instruction 0 (spec.md §4.4 "launch"). It
// blocks until the cascade reaches EXIT or the backend reports it cannot
// proceed.
func (e *Engine) Launch() error {
	if e.st != stateReady {
		return precondition("Launch", "launch from invalid state")
	}
	if !e.prog.ready {
		return precondition("Launch", "launch before finalise")
	}
	if e.backend == nil {
		return precondition("Launch", "no CPU backend configured")
	}
	e.st = stateRunning
	e.mapSrcTSS(pageInitPD, 0, pageConstOne)
	if err := e.backend.Run(e.arena, pageInitPD, instTSSSelector(0)); err != nil {
		return err
	}
	e.st = stateExited
	return nil
}

// Resume re-enters the cascade at the start of abstract instruction i,
// i.e. at its first real instruction (3i), regardless of where the
// previous cascade exited from (spec.md §4.4 "resume"). It reuses the
// bootstrap block's single dynamic successor mapping, the same primitive
// every real instruction uses to point at its own successors, repointed
// at 3i instead of at instruction 0.
func (e *Engine) Resume(i int) error {
	if e.st != stateExited {
		return precondition("Resume", "resume from invalid state")
	}
	if i < 0 || i >= e.prog.len() {
		return precondition("Resume", "instruction index out of range")
	}
	if e.backend == nil {
		return precondition("Resume", "no CPU backend configured")
	}
	e.st = stateRunning
	e.mapSrcTSS(pageInitPD, 3*i, pageConstOne)
	if err := e.backend.Run(e.arena, pageInitPD, instTSSSelector(3*i)); err != nil {
		return err
	}
	e.st = stateExited
	return nil
}

// ReadRegister returns a register's current logical value. Undefined
// (but not an error) for RegDiscard, per its write-sink contract.
func (e *Engine) ReadRegister(id RegisterID) (uint32, error) {
	if err := e.checkOperand("ReadRegister", id, false); err != nil {
		return 0, err
	}
	if e.st == stateRunning {
		return 0, precondition("ReadRegister", "cannot read while the cascade is running")
	}
	return readReg(e.arena.Page(e.regPage(id))), nil
}

// WriteRegister overwrites a register's value while the cascade is not
// running. Writing RegConstOne is a precondition violation; writing
// RegDiscard is legal and pointless.
func (e *Engine) WriteRegister(id RegisterID, value uint32) error {
	if err := e.checkOperand("WriteRegister", id, true); err != nil {
		return err
	}
	if e.st == stateRunning {
		return precondition("WriteRegister", "cannot write while the cascade is running")
	}
	if value >= MaxRegisterValue {
		return precondition("WriteRegister", "value exceeds the maximum representable register value")
	}
	writeReg(e.arena.Page(e.regPage(id)), value)
	return nil
}
