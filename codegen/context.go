package codegen

import (
	"fmt"

	"rv32cc/ast"
	"rv32cc/types"
	"rv32cc/util"
)

// frameSize is the fixed stack frame size every function reserves,
// regardless of how many locals or spilled parameters it actually holds.
// spec fixes this at 1024 bytes rather than computing a tight per-function
// size the way the teacher's genFunction did (wordSize * (Nparams +
// Nlocals + 2), 16-byte aligned): a fixed frame keeps prologue/epilogue
// generation identical for every function and turns "too many locals" into
// a clear compile-time diagnostic instead of a silently larger frame.
const frameSize = 1024

// Variable describes one declared name visible in the current scope chain:
// its type, and where its value lives at runtime.
type Variable struct {
	Name         string
	Type         types.Kind
	PointerDepth int
	IsArray      bool
	ArrayLen     int
	IsGlobal     bool
	// Offset is the byte offset from s0 (locals/spilled params, always
	// negative) or unused for globals, which are addressed by label.
	Offset int
	// Init holds the declarator's initializer, carried from the VarDecl
	// node's Children at declareGlobal time through to emitGlobals: one
	// expression for a scalar, one per element (in order) for an array's
	// `= { ... }` list. Locals lower their initializer immediately in
	// genLocalDecl instead of stashing it here.
	Init []*ast.Node
}

func (v *Variable) isPointer() bool { return v.PointerDepth > 0 }

// Function records a declared function's signature for call-site checking
// and return-type driven code generation.
type Function struct {
	Name               string
	ReturnType         types.Kind
	ReturnPointerDepth int
	Params             []Variable
	Defined            bool
	// EndLabel is the unique function-end label minted by genFunctionDef
	// that every return statement jumps to, so the epilogue is emitted
	// exactly once per function.
	EndLabel string
}

// switchFrame tracks the state of a lexically enclosing switch statement:
// the register and type holding its scrutinee (so case labels can compare
// against it) and the switch's end label.
type switchFrame struct {
	scrutineeReg string
	scrutineeTyp types.Kind
	endLabel     string
}

// Context owns all mutable state during code generation for one
// translation unit: the scope chain, the function and enum tables, the
// per-function frame bump allocator, the integer/float register pools,
// the rodata interning pools, the label minter and the assembly sink.
//
// The teacher split this state across backend/riscv's registerFile,
// util.Stack-based scope chains threaded through every gen* call, and
// package-level ir.Global/ir.Strings/ir.Floats tables. Bundling it into one
// struct is a deliberate simplification: spec's single-threaded,
// single-pass generator has exactly one of each of these at a time, so the
// teacher's "thread a stack pointer through every call" style has nothing
// left to guard against and a receiver method set reads more plainly.
type Context struct {
	w       *util.Writer
	labeler *util.Labeler

	scopes      []map[string]*Variable
	globalOrder []*Variable
	funcs       map[string]*Function
	enums       map[string]int

	frameUsed int

	breakLabels    util.Stack[string]
	continueLabels util.Stack[string]
	switches       util.Stack[switchFrame]

	intPool   *regPool
	floatPool *regPool

	strings map[string]string
	// floats/doubles are keyed by the literal's raw bit pattern rather than
	// by the float value itself. A plain map[float64]string would silently
	// fail to dedup two occurrences of NaN, since NaN != NaN even as a map
	// key comparison, so two rodata entries would be emitted for what a
	// byte-for-byte compare would call the same constant.
	floats      map[uint32]string
	doubles     map[uint64]string
	rodataOrder []rodataEntry

	currentFunc *Function

	// argReserveDepth is a reentrant counter, nonzero while genCall is
	// evaluating and placing a call's own arguments. While active,
	// allocInt/allocFloat additionally exclude the ABI argument registers
	// (a0-a7/fa0-fa7) from allocation, so no argument's source value can
	// land in a register that is also another argument's destination
	// slot - this is what makes the unified register pool (see
	// registers.go) safe to draw argument-source temporaries from.
	argReserveDepth int
}

type rodataEntry struct {
	label string
	kind  rodataKind
	sval  string
	fval  float32
	dval  float64
}

type rodataKind int

const (
	rodataString rodataKind = iota
	rodataFloat
	rodataDouble
)

// NewContext returns a Context ready to generate code for one translation
// unit, writing assembly text to w.
func NewContext(w *util.Writer) *Context {
	return &Context{
		w:         w,
		labeler:   util.NewLabeler(),
		scopes:    []map[string]*Variable{make(map[string]*Variable)},
		funcs:     make(map[string]*Function),
		enums:     make(map[string]int),
		intPool:   newRegPool(intTemps),
		floatPool: newRegPool(floatTemps),
		strings:   make(map[string]string),
		floats:    make(map[uint32]string),
		doubles:   make(map[uint64]string),
	}
}

// ------------------
// ----- scopes -----
// ------------------

// pushScope enters a new lexical scope (function body, block, or for-loop
// header).
func (c *Context) pushScope() {
	c.scopes = append(c.scopes, make(map[string]*Variable))
}

// popScope leaves the innermost lexical scope.
func (c *Context) popScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// declareLocal registers name in the innermost scope at the next bumped
// frame offset and returns its Variable. It is an error to redeclare a name
// already visible in the same scope.
func (c *Context) declareLocal(n *ast.Node) (*Variable, error) {
	top := c.scopes[len(c.scopes)-1]
	if _, exists := top[n.Decl.Name]; exists {
		return nil, fmt.Errorf("line %d: redeclaration of %q in the same scope", n.Line, n.Decl.Name)
	}
	size := variableSize(n.Decl.Type, n.Decl.PointerDepth, n.Decl.IsArray, n.Decl.ArrayLen)
	offset, err := c.bumpFrame(size)
	if err != nil {
		return nil, err
	}
	v := &Variable{
		Name: n.Decl.Name, Type: n.Decl.Type, PointerDepth: n.Decl.PointerDepth,
		IsArray: n.Decl.IsArray, ArrayLen: n.Decl.ArrayLen, Offset: offset,
	}
	top[n.Decl.Name] = v
	return v, nil
}

// declareGlobal registers name as a global in scope 0.
func (c *Context) declareGlobal(n *ast.Node) *Variable {
	v := &Variable{
		Name: n.Decl.Name, Type: n.Decl.Type, PointerDepth: n.Decl.PointerDepth,
		IsArray: n.Decl.IsArray, ArrayLen: n.Decl.ArrayLen, IsGlobal: true,
		Init: n.Children,
	}
	c.scopes[0][n.Decl.Name] = v
	c.globalOrder = append(c.globalOrder, v)
	return v
}

// lookup searches the scope chain innermost-first for name.
func (c *Context) lookup(name string) (*Variable, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if v, ok := c.scopes[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// variableSize returns the byte footprint of a declarator: PointerSize for
// pointers, element-size*length for arrays, else the scalar size.
func variableSize(t types.Kind, ptrDepth int, isArray bool, arrayLen int) int {
	if ptrDepth > 0 {
		return types.PointerSize
	}
	if isArray {
		n := arrayLen
		if n < 1 {
			n = 1
		}
		return t.Size() * n
	}
	return t.Size()
}

// -----------------------------
// ----- frame bump alloc -----
// -----------------------------

// bumpFrame reserves size bytes (word-aligned) from the current function's
// fixed frameSize-byte frame and returns the offset of the allocation from
// s0, as a negative number. Exceeding frameSize is a fatal compile error,
// per spec's fixed-frame design: this compiler never grows a frame to fit,
// it rejects functions that don't fit.
func (c *Context) bumpFrame(size int) (int, error) {
	if size < 4 {
		size = 4
	}
	if rem := size % 4; rem != 0 {
		size += 4 - rem
	}
	align := size
	if align > 8 {
		align = 4 // only scalars wider than a double never occur; 4-byte align is always sufficient beyond 8
	}
	if rem := c.frameUsed % align; rem != 0 {
		c.frameUsed += align - rem
	}
	c.frameUsed += size
	if c.frameUsed > frameSize-savedRegsSize {
		return 0, fmt.Errorf("stack frame overflow: function requires more than %d bytes of locals", frameSize-savedRegsSize)
	}
	return -(c.frameUsed + savedRegsSize), nil
}

// savedRegsSize is the space reserved at the top of every frame for the
// saved return address and saved frame pointer.
const savedRegsSize = 8

// ------------------------
// ----- labels -----
// ------------------------

func (c *Context) newLabel(typ int) string {
	return c.labeler.New(typ)
}

// ---------------------------------
// ----- call-site save/restore -----
// ---------------------------------

// savedReg is one register spilled by saveRegisters, and the byte offset
// from sp where it was stashed.
type savedReg struct {
	reg    string
	class  regClass
	offset int
}

// savedRegs is the scratch-area layout produced by saveRegisters, replayed
// by restoreRegisters. A zero value (size 0) means nothing was live, so
// nothing was spilled.
type savedRegs struct {
	entries []savedReg
	size    int
}

// saveRegisters spills every register currently allocated in the int/float
// pools to a freshly reserved, 16-byte-aligned scratch area below sp, so a
// value still live across an upcoming call survives the callee's own reuse
// of the same pools. Grounded on ast_context.hpp's saveRegisters/
// restoreRegisters. Registers that are about to carry this call's own
// argument values are written directly (see genCall) and never marked
// allocated in the pools, so they are never spilled here - they must stay
// live into the call, not be saved and clobbered.
//
// Unlike the original, which sizes a saved float register by the enclosing
// function's return type, this always spills float-class registers as a
// full 8-byte fsd/fld: RV32D's F registers are 64 bits wide regardless of
// whether a 32-bit value is NaN-boxed into one, so a uniform double-wide
// save is both simpler and strictly safe for every live value.
func (c *Context) saveRegisters() savedRegs {
	ints := c.intPool.allocated()
	floats := c.floatPool.allocated()
	if len(ints) == 0 && len(floats) == 0 {
		return savedRegs{}
	}

	var entries []savedReg
	offset := 0
	for _, r := range ints {
		entries = append(entries, savedReg{reg: r, class: regInt, offset: offset})
		offset += 4
	}
	for _, r := range floats {
		entries = append(entries, savedReg{reg: r, class: regFloat, offset: offset})
		offset += 8
	}
	size := offset
	if rem := size % 16; rem != 0 {
		size += 16 - rem
	}

	c.w.Ins2imm("addi", "sp", "sp", -size)
	for _, e := range entries {
		if e.class == regFloat {
			c.w.LoadStore("fsd", e.reg, e.offset, "sp")
		} else {
			c.w.LoadStore("sw", e.reg, e.offset, "sp")
		}
	}
	return savedRegs{entries: entries, size: size}
}

// restoreRegisters reloads every register saveRegisters spilled into s and
// deallocates its scratch area. A zero-size s (nothing was live) is a
// no-op.
func (c *Context) restoreRegisters(s savedRegs) {
	if s.size == 0 {
		return
	}
	for _, e := range s.entries {
		if e.class == regFloat {
			c.w.LoadStore("fld", e.reg, e.offset, "sp")
		} else {
			c.w.LoadStore("lw", e.reg, e.offset, "sp")
		}
	}
	c.w.Ins2imm("addi", "sp", "sp", s.size)
}
