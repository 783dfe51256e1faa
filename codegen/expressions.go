package codegen

import (
	"fmt"

	"rv32cc/ast"
	"rv32cc/types"
)

// value describes the result of lowering an expression: which register
// holds it, whether that register is from the integer or floating pool,
// and its C type (PointerDepth > 0 means the integer register holds an
// address).
type value struct {
	reg      string
	class    regClass
	typ      types.Kind
	ptrDepth int
}

func (v value) isFloat() bool { return v.class == regFloat }

// freeValue releases v's register back to its pool. Call this once a
// value's last use has been emitted.
func (c *Context) freeValue(v value) {
	if v.class == regFloat {
		c.floatPool.free(v.reg)
	} else {
		c.intPool.free(v.reg)
	}
}

// allocInt allocates an integer-class register, additionally excluding the
// ABI argument registers (a0-a7) whenever a call's argument evaluation is
// in progress (argReserveDepth > 0, set by genCall) - see argReserveDepth's
// doc comment on Context.
func (c *Context) allocInt(exclude ...string) (string, error) {
	if c.argReserveDepth > 0 {
		exclude = append(append([]string{}, exclude...), argIntRegs...)
	}
	r := c.intPool.alloc(exclude...)
	if r == "" {
		return "", fmt.Errorf("compiler error: integer register pool exhausted")
	}
	return r, nil
}

// allocFloat allocates a float-class register, additionally excluding the
// ABI floating argument registers (fa0-fa7) whenever a call's argument
// evaluation is in progress; see allocInt.
func (c *Context) allocFloat(exclude ...string) (string, error) {
	if c.argReserveDepth > 0 {
		exclude = append(append([]string{}, exclude...), argFloatRegs...)
	}
	r := c.floatPool.alloc(exclude...)
	if r == "" {
		return "", fmt.Errorf("compiler error: float register pool exhausted")
	}
	return r, nil
}

// li writes a load-immediate instruction. li has a destination and an
// immediate but no source register, so none of Writer's Ins* helpers fit it.
func (c *Context) li(reg string, imm int) {
	c.w.Write("\tli\t%s, %d\n", reg, imm)
}

// genExpr lowers an expression node and returns the value holding its
// result. The caller is responsible for freeing the returned value's
// register once it's done with it.
func (c *Context) genExpr(n *ast.Node) (value, error) {
	switch n.Kind {
	case ast.IntLit, ast.CharLit:
		r, err := c.allocInt()
		if err != nil {
			return value{}, err
		}
		c.li(r, n.IntValue)
		return value{reg: r, class: regInt, typ: types.Int}, nil

	case ast.FloatLit:
		return c.loadFloatConst(n.FloatValue)

	case ast.DoubleLit:
		return c.loadDoubleConst(n.DoubleValue)

	case ast.StringLit:
		label := c.internString(n.StringValue)
		r, err := c.allocInt()
		if err != nil {
			return value{}, err
		}
		c.w.Write("\tla\t%s, %s\n", r, label)
		return value{reg: r, class: regInt, typ: types.Char, ptrDepth: 1}, nil

	case ast.Ident:
		return c.genIdentLoad(n)

	case ast.Binary:
		return c.genBinary(n)

	case ast.Unary:
		return c.genUnary(n)

	case ast.AddrOf:
		addr, elemTyp, elemPtr, err := c.genLValueAddr(n.Children[0])
		if err != nil {
			return value{}, err
		}
		return value{reg: addr, class: regInt, typ: elemTyp, ptrDepth: elemPtr + 1}, nil

	case ast.Deref:
		return c.genDerefLoad(n)

	case ast.PreIncDec:
		return c.genIncDec(n, true)

	case ast.PostIncDec:
		return c.genIncDec(n, false)

	case ast.Assign:
		return c.genAssign(n)

	case ast.CompoundAssign:
		return c.genCompoundAssign(n)

	case ast.Call:
		return c.genCall(n)

	case ast.Index:
		return c.genIndexLoad(n)

	case ast.Cast:
		return c.genCast(n)

	case ast.Conditional:
		return c.genConditionalExpr(n)

	case ast.Comma:
		lhs, err := c.genExpr(n.Children[0])
		if err != nil {
			return value{}, err
		}
		c.freeValue(lhs)
		return c.genExpr(n.Children[1])

	case ast.SizeofExpr:
		size := c.staticSize(n.Children[0])
		r, err := c.allocInt()
		if err != nil {
			return value{}, err
		}
		c.li(r, size)
		return value{reg: r, class: regInt, typ: types.Int}, nil

	case ast.SizeofType:
		size := variableSize(n.Type, n.PointerDepth, false, 0)
		r, err := c.allocInt()
		if err != nil {
			return value{}, err
		}
		c.li(r, size)
		return value{reg: r, class: regInt, typ: types.Int}, nil

	default:
		return value{}, fmt.Errorf("line %d: unexpected expression kind %s", n.Line, n.Kind)
	}
}

// loadFloatConst materializes a 32-bit float literal into a float
// register via its rodata slot.
func (c *Context) loadFloatConst(f float32) (value, error) {
	label := c.internFloat(f)
	addr, err := c.allocInt()
	if err != nil {
		return value{}, err
	}
	r, err := c.allocFloat()
	if err != nil {
		c.intPool.free(addr)
		return value{}, err
	}
	c.w.Write("\tla\t%s, %s\n", addr, label)
	c.w.LoadStore("flw", r, 0, addr)
	c.intPool.free(addr)
	return value{reg: r, class: regFloat, typ: types.Float}, nil
}

// loadDoubleConst materializes a 64-bit double literal via its rodata
// slot.
func (c *Context) loadDoubleConst(d float64) (value, error) {
	label := c.internDouble(d)
	addr, err := c.allocInt()
	if err != nil {
		return value{}, err
	}
	r, err := c.allocFloat()
	if err != nil {
		c.intPool.free(addr)
		return value{}, err
	}
	c.w.Write("\tla\t%s, %s\n", addr, label)
	c.w.LoadStore("fld", r, 0, addr)
	c.intPool.free(addr)
	return value{reg: r, class: regFloat, typ: types.Double}, nil
}

// genIdentLoad loads the value of an identifier: a plain variable's value,
// or an array's base address (arrays decay to pointers whenever named).
func (c *Context) genIdentLoad(n *ast.Node) (value, error) {
	v, ok := c.lookup(n.Name)
	if !ok {
		if val, ok := c.enums[n.Name]; ok {
			r, err := c.allocInt()
			if err != nil {
				return value{}, err
			}
			c.li(r, val)
			return value{reg: r, class: regInt, typ: types.Int}, nil
		}
		return value{}, fmt.Errorf("line %d: undeclared identifier %q", n.Line, n.Name)
	}
	if v.IsArray {
		r, err := c.allocInt()
		if err != nil {
			return value{}, err
		}
		c.loadAddressOfVariable(r, v)
		return value{reg: r, class: regInt, typ: v.Type, ptrDepth: v.PointerDepth + 1}, nil
	}
	return c.loadVariable(v)
}

// loadAddressOfVariable writes v's address into register r.
func (c *Context) loadAddressOfVariable(r string, v *Variable) {
	if v.IsGlobal {
		c.w.Write("\tla\t%s, %s\n", r, v.Name)
	} else {
		c.w.Ins2imm("addi", r, "s0", v.Offset)
	}
}

// loadVariable loads v's scalar value into a freshly allocated register.
func (c *Context) loadVariable(v *Variable) (value, error) {
	if v.Type.IsFloating() && !v.isPointer() {
		r, err := c.allocFloat()
		if err != nil {
			return value{}, err
		}
		op := "flw"
		if v.Type == types.Double {
			op = "fld"
		}
		if v.IsGlobal {
			addr, err := c.allocInt()
			if err != nil {
				return value{}, err
			}
			c.w.Write("\tla\t%s, %s\n", addr, v.Name)
			c.w.LoadStore(op, r, 0, addr)
			c.intPool.free(addr)
		} else {
			c.w.LoadStore(op, r, v.Offset, "s0")
		}
		return value{reg: r, class: regFloat, typ: v.Type}, nil
	}
	r, err := c.allocInt()
	if err != nil {
		return value{}, err
	}
	if v.IsGlobal {
		c.w.Write("\tla\t%s, %s\n", r, v.Name)
		c.w.LoadStore(loadOpFor(v), r, 0, r)
	} else {
		c.w.LoadStore(loadOpFor(v), r, v.Offset, "s0")
	}
	return value{reg: r, class: regInt, typ: v.Type, ptrDepth: v.PointerDepth}, nil
}

// storeVariable stores val into v's storage.
func (c *Context) storeVariable(v *Variable, val value) {
	if v.Type.IsFloating() && !v.isPointer() {
		op := "fsw"
		if v.Type == types.Double {
			op = "fsd"
		}
		if v.IsGlobal {
			addr, _ := c.allocInt()
			c.w.Write("\tla\t%s, %s\n", addr, v.Name)
			c.w.LoadStore(op, val.reg, 0, addr)
			c.intPool.free(addr)
		} else {
			c.w.LoadStore(op, val.reg, v.Offset, "s0")
		}
		return
	}
	if v.IsGlobal {
		addr, _ := c.allocInt()
		c.w.Write("\tla\t%s, %s\n", addr, v.Name)
		c.w.LoadStore(storeOpFor(v), val.reg, 0, addr)
		c.intPool.free(addr)
	} else {
		c.w.LoadStore(storeOpFor(v), val.reg, v.Offset, "s0")
	}
}

// genLValueAddr computes the address an lvalue expression refers to,
// returning that address in an integer register along with the type and
// pointer depth of the value stored there. Supported lvalue forms are
// identifiers, dereferences and index expressions, matching the C subset's
// assignable expression grammar.
func (c *Context) genLValueAddr(n *ast.Node) (addrReg string, elemTyp types.Kind, elemPtrDepth int, err error) {
	switch n.Kind {
	case ast.Ident:
		v, ok := c.lookup(n.Name)
		if !ok {
			return "", 0, 0, fmt.Errorf("line %d: undeclared identifier %q", n.Line, n.Name)
		}
		r, aerr := c.allocInt()
		if aerr != nil {
			return "", 0, 0, aerr
		}
		c.loadAddressOfVariable(r, v)
		return r, v.Type, v.PointerDepth, nil

	case ast.Deref:
		ptrVal, perr := c.genExpr(n.Children[0])
		if perr != nil {
			return "", 0, 0, perr
		}
		return ptrVal.reg, ptrVal.typ, ptrVal.ptrDepth - 1, nil

	case ast.Index:
		return c.genIndexAddr(n)

	default:
		return "", 0, 0, fmt.Errorf("line %d: expression is not assignable", n.Line)
	}
}

// genIndexAddr computes the address of a[i], handling both array-typed and
// pointer-typed bases.
func (c *Context) genIndexAddr(n *ast.Node) (addrReg string, elemTyp types.Kind, elemPtrDepth int, err error) {
	base, berr := c.genExpr(n.Children[0])
	if berr != nil {
		return "", 0, 0, berr
	}
	idx, ierr := c.genExpr(n.Children[1])
	if ierr != nil {
		c.freeValue(base)
		return "", 0, 0, ierr
	}
	elemTyp = base.typ
	elemPtrDepth = base.ptrDepth - 1
	if elemPtrDepth < 0 {
		elemPtrDepth = 0
	}
	elemSize := variableSize(elemTyp, elemPtrDepth, false, 0)

	scaled, serr := c.allocInt(base.reg, idx.reg)
	if serr != nil {
		c.freeValue(base)
		c.freeValue(idx)
		return "", 0, 0, serr
	}
	c.li(scaled, elemSize)
	c.w.Ins3("mul", scaled, idx.reg, scaled)
	c.w.Ins3("add", scaled, base.reg, scaled)
	c.freeValue(idx)
	c.intPool.free(base.reg)
	return scaled, elemTyp, elemPtrDepth, nil
}

// genIndexLoad lowers a[i] used as an rvalue.
func (c *Context) genIndexLoad(n *ast.Node) (value, error) {
	addr, typ, ptrDepth, err := c.genIndexAddr(n)
	if err != nil {
		return value{}, err
	}
	return c.loadFromAddr(addr, typ, ptrDepth)
}

// genDerefLoad lowers *p used as an rvalue.
func (c *Context) genDerefLoad(n *ast.Node) (value, error) {
	ptrVal, err := c.genExpr(n.Children[0])
	if err != nil {
		return value{}, err
	}
	return c.loadFromAddr(ptrVal.reg, ptrVal.typ, ptrVal.ptrDepth-1)
}

// loadFromAddr loads a value of the given type/pointer depth from the
// address in addr (an integer register), freeing addr in the process
// unless the loaded value reuses it.
func (c *Context) loadFromAddr(addr string, typ types.Kind, ptrDepth int) (value, error) {
	if typ.IsFloating() && ptrDepth == 0 {
		r, err := c.allocFloat()
		if err != nil {
			c.intPool.free(addr)
			return value{}, err
		}
		op := "flw"
		if typ == types.Double {
			op = "fld"
		}
		c.w.LoadStore(op, r, 0, addr)
		c.intPool.free(addr)
		return value{reg: r, class: regFloat, typ: typ}, nil
	}
	loadOp := "lw"
	if ptrDepth == 0 && typ.Size() == 1 {
		loadOp = "lb"
	}
	c.w.LoadStore(loadOp, addr, 0, addr)
	return value{reg: addr, class: regInt, typ: typ, ptrDepth: ptrDepth}, nil
}

// staticSize returns sizeof(n) without evaluating n, resolving identifiers
// to their declared size and literals to their natural type's size. More
// complex expressions (e.g. sizeof of a binary operation's result) fall
// back to the size of int, matching this subset's arithmetic promotion
// rule that non-floating operands promote to int.
func (c *Context) staticSize(n *ast.Node) int {
	switch n.Kind {
	case ast.Ident:
		if v, ok := c.lookup(n.Name); ok {
			return variableSize(v.Type, v.PointerDepth, v.IsArray, v.ArrayLen)
		}
		return types.Int.Size()
	case ast.FloatLit:
		return types.Float.Size()
	case ast.DoubleLit:
		return types.Double.Size()
	case ast.CharLit:
		return types.Char.Size()
	default:
		return types.Int.Size()
	}
}
