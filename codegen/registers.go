// Package codegen lowers a syntax tree produced by the frontend package
// into RV32IMF/D assembly text, using a single-pass structural traversal:
// no intermediate SSA or three-address form is built, mirroring the
// teacher's backend packages (backend/arm, backend/riscv), which walked the
// syntax tree directly and emitted text through a Writer as they went.
package codegen

// regClass distinguishes integer/pointer registers from floating point
// registers, named after the teacher's backend/regfile.Register.Type and
// backend/riscv.integer/float constants.
type regClass int

const (
	regInt regClass = iota
	regFloat
)

// Register names. Per spec's single combined pool per class
// (ast_context.hpp's int_registers/float_registers), integer temporaries
// are the RV32 caller-saved t-registers followed by the a-registers, and
// float temporaries are the ft-registers followed by the fa-registers -
// one pool spans both general-purpose temporaries and ABI argument slots,
// rather than reserving the argument registers for call marshalling alone.
// genCall excludes the ABI slots from this pool (via argReserveDepth) while
// it is placing a call's own arguments, so a value can still be drawn from
// a0-a7/fa0-fa7 for any other live expression. This compiler never spills a
// live virtual register to the stack mid-expression the way a real
// register allocator would: per spec the pools are sized generously enough
// (15 integer, 16 float registers) that the expression nesting depths this
// C subset produces always fit, and allocation failure is a hard compiler
// error rather than a spill trigger.
var intTemps = []string{
	"t0", "t1", "t2", "t3", "t4", "t5", "t6",
	"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
}
var floatTemps = []string{
	"ft0", "ft1", "ft2", "ft3", "ft4", "ft5", "ft6", "ft7",
	"fa0", "fa1", "fa2", "fa3", "fa4", "fa5", "fa6", "fa7",
}

// argIntRegs and argFloatRegs name the ABI argument-passing registers, per
// the RV32 soft-float calling convention extended with the F/D extension's
// fa0-fa7 for floating arguments. genCall moves values into these by name
// directly (not through the pool) and uses them as the pool's exclusion set
// while marshalling, so a call's own argument registers are always
// disjoint from where its argument values were computed.
var argIntRegs = []string{"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7"}
var argFloatRegs = []string{"fa0", "fa1", "fa2", "fa3", "fa4", "fa5", "fa6", "fa7"}

// regPool is a first-fit allocator over a fixed set of physical registers,
// grounded on the teacher's backend/arm.RegisterFile (CreateRegisterFile,
// GetNextTempI/F, FreeI/FreeF), generalized from aarch64's register names
// to RV32's. Unlike the teacher's LRU-eviction registerFile (riscv.go's
// lruI/lruF), which existed to let a register holding a stale value be
// silently repurposed, this pool never evicts: exhausting it is a
// compile-time error, since spec fixes a single-pass generator with no
// spill mechanism.
type regPool struct {
	names []string
	used  []bool
}

func newRegPool(names []string) *regPool {
	return &regPool{names: names, used: make([]bool, len(names))}
}

// alloc returns the first unused register not named in exclude, or "" if
// the pool is exhausted.
func (p *regPool) alloc(exclude ...string) string {
	for i, name := range p.names {
		if p.used[i] {
			continue
		}
		if contains(exclude, name) {
			continue
		}
		p.used[i] = true
		return name
	}
	return ""
}

// free releases reg back to the pool. Freeing an unallocated or unknown
// register is a no-op.
func (p *regPool) free(reg string) {
	for i, name := range p.names {
		if name == reg {
			p.used[i] = false
			return
		}
	}
}

// available reports how many registers in the pool are currently free.
func (p *regPool) available() int {
	n := 0
	for _, u := range p.used {
		if !u {
			n++
		}
	}
	return n
}

// allocated returns the names of every register currently allocated, in
// pool order. Used by saveRegisters to find what must be spilled around a
// call site.
func (p *regPool) allocated() []string {
	var out []string
	for i, name := range p.names {
		if p.used[i] {
			out = append(out, name)
		}
	}
	return out
}

func contains(xs []string, x string) bool {
	for _, e := range xs {
		if e == x {
			return true
		}
	}
	return false
}
