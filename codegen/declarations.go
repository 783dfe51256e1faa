package codegen

import (
	"fmt"
	"math"

	"rv32cc/ast"
	"rv32cc/types"
	"rv32cc/util"
)

// Generate lowers a Program node into RV32IMF/D assembly text written to
// w. It runs two passes over the top level, mirroring the teacher's
// ir.GenerateSymTab-then-backend.GenerateAssembler pipeline (src/main.go's
// run function): first every global declaration, function signature and
// enum is registered so forward references resolve regardless of source
// order, then every function definition is lowered to instructions.
func Generate(root *ast.Node, w *util.Writer) error {
	if root.Kind != ast.Program {
		return fmt.Errorf("expected Program root, got %s", root.Kind)
	}
	c := NewContext(w)

	for _, top := range root.Children {
		if err := c.registerTopLevel(top); err != nil {
			return err
		}
	}

	if err := c.emitGlobals(); err != nil {
		return err
	}

	w.WriteString("\t.section\t.text\n")
	w.Directive(".globl main")
	for _, top := range root.Children {
		if top.Kind == ast.FuncDef {
			if err := c.genFunctionDef(top); err != nil {
				return err
			}
		}
	}

	c.emitRodata()
	return nil
}

// registerTopLevel records one top-level declaration's signature without
// generating any code for it, so later declarations (and the bodies
// generated in the second pass) can resolve references regardless of
// declaration order.
func (c *Context) registerTopLevel(n *ast.Node) error {
	switch n.Kind {
	case ast.EnumDecl:
		return c.registerEnum(n)
	case ast.VarDecl:
		c.declareGlobal(n)
		return nil
	case ast.DeclGroup:
		// Multiple comma-separated global declarators share one DeclGroup,
		// as produced by the parser's parseVarDeclRest.
		for _, child := range n.Children {
			c.declareGlobal(child)
		}
		return nil
	case ast.FuncDecl, ast.FuncDef:
		return c.registerFunction(n)
	default:
		return fmt.Errorf("line %d: unexpected top-level declaration kind %s", n.Line, n.Kind)
	}
}

// registerEnum assigns values to an enum's enumerators (explicit value, or
// previous+1 starting at 0) and records each as a global constant.
func (c *Context) registerEnum(n *ast.Node) error {
	next := 0
	for _, enr := range n.Children {
		v := next
		if enr.HasEnumValue {
			v = enr.EnumValue
		}
		if _, exists := c.enums[enr.Name]; exists {
			return fmt.Errorf("line %d: redeclaration of enum constant %q", enr.Line, enr.Name)
		}
		c.enums[enr.Name] = v
		next = v + 1
	}
	return nil
}

// registerFunction records a function's signature. A FuncDef seen after an
// earlier FuncDecl (prototype) is allowed and marks the function defined;
// a second FuncDef is a redefinition error.
func (c *Context) registerFunction(n *ast.Node) error {
	name := n.Decl.Name
	params := make([]Variable, 0, len(n.Children))
	for _, p := range n.Children {
		if p.Kind != ast.Param {
			break // FuncDef's trailing Block body child is not a parameter
		}
		params = append(params, Variable{
			Name: p.Decl.Name, Type: p.Decl.Type, PointerDepth: p.Decl.PointerDepth,
			IsArray: p.Decl.IsArray, ArrayLen: p.Decl.ArrayLen,
		})
	}

	if existing, ok := c.funcs[name]; ok {
		if n.Kind == ast.FuncDef {
			if existing.Defined {
				return fmt.Errorf("line %d: redefinition of function %q", n.Line, name)
			}
			existing.Defined = true
		}
		return nil
	}

	c.funcs[name] = &Function{
		Name: name, ReturnType: n.Decl.Type, ReturnPointerDepth: n.Decl.PointerDepth,
		Params: params, Defined: n.Kind == ast.FuncDef,
	}
	return nil
}

// emitGlobals writes the .data section declaring every global variable, in
// declaration order. Per spec §4.2.1: each variable gets its own
// `.align 2`, `.globl`, and label, followed by a literal bit-pattern
// initializer if the declarator had one, or a `.zero <size>` reservation
// otherwise.
func (c *Context) emitGlobals() error {
	if len(c.globalOrder) == 0 {
		return nil
	}
	c.w.WriteString("\t.section\t.data\n")
	for _, v := range c.globalOrder {
		if err := c.emitGlobalVar(v); err != nil {
			return err
		}
	}
	c.w.WriteString("\n")
	return nil
}

// emitGlobalVar emits one global variable's storage and, if present, its
// initializer.
func (c *Context) emitGlobalVar(v *Variable) error {
	size := variableSize(v.Type, v.PointerDepth, v.IsArray, v.ArrayLen)
	c.w.Directive(".align 2")
	c.w.Directive(".globl\t%s", v.Name)
	c.w.Label(v.Name)

	if v.IsArray {
		return c.emitArrayInit(v, size)
	}
	if len(v.Init) > 0 {
		return c.emitScalarInit(v)
	}
	c.w.Directive(".zero\t%d", size)
	return nil
}

// emitScalarInit emits a non-array global's initializer as a literal
// bit-pattern directive: a double as two little-endian .words, a float
// bit-punned to a single .word, a byte-sized scalar (char) as .byte, and
// everything else as .word.
func (c *Context) emitScalarInit(v *Variable) error {
	n := v.Init[0]
	switch {
	case v.Type == types.Double && !v.isPointer():
		bits, err := foldConstDoubleBits(n)
		if err != nil {
			return err
		}
		c.w.Directive(".word\t%d", uint32(bits))
		c.w.Directive(".word\t%d", uint32(bits>>32))
	case v.Type.IsFloating() && !v.isPointer():
		bits, err := foldConstFloatBits(n)
		if err != nil {
			return err
		}
		c.w.Directive(".word\t%d", bits)
	case v.Type.Size() == 1 && !v.isPointer():
		iv, err := foldConstInt(n)
		if err != nil {
			return err
		}
		c.w.Directive(".byte\t%d", uint8(iv))
	default:
		iv, err := foldConstInt(n)
		if err != nil {
			return err
		}
		c.w.Directive(".word\t%d", uint32(iv))
	}
	return nil
}

// emitArrayInit emits a global array's storage: with an initializer list,
// one .byte (char arrays) or .word (others) per declared element, padding
// any elements past the end of the list with zeros; without one, a single
// .zero reservation covering the whole array.
func (c *Context) emitArrayInit(v *Variable, totalSize int) error {
	if len(v.Init) == 0 {
		c.w.Directive(".zero\t%d", totalSize)
		return nil
	}
	n := v.ArrayLen
	if n < 1 {
		n = 1
	}
	isChar := v.Type == types.Char && !v.isPointer()
	isFloat := v.Type.IsFloating() && !v.isPointer()
	for i := 0; i < n; i++ {
		if i >= len(v.Init) {
			if isChar {
				c.w.Directive(".byte\t0")
			} else {
				c.w.Directive(".word\t0")
			}
			continue
		}
		switch {
		case isChar:
			iv, err := foldConstInt(v.Init[i])
			if err != nil {
				return err
			}
			c.w.Directive(".byte\t%d", uint8(iv))
		case isFloat:
			bits, err := foldConstFloatBits(v.Init[i])
			if err != nil {
				return err
			}
			c.w.Directive(".word\t%d", bits)
		default:
			iv, err := foldConstInt(v.Init[i])
			if err != nil {
				return err
			}
			c.w.Directive(".word\t%d", uint32(iv))
		}
	}
	return nil
}

// foldConstInt evaluates a compile-time-constant integer/char initializer
// expression: literals and a leading unary +/- only, matching this
// subset's restriction to simple literal initializers for globals (.data
// directives are static text, so there is no runtime code to fall back
// on).
func foldConstInt(n *ast.Node) (int64, error) {
	switch n.Kind {
	case ast.IntLit, ast.CharLit:
		return int64(n.IntValue), nil
	case ast.Unary:
		v, err := foldConstInt(n.Children[0])
		if err != nil {
			return 0, err
		}
		if n.Op == "-" {
			return -v, nil
		}
		return v, nil
	default:
		return 0, fmt.Errorf("line %d: global initializer must be a constant expression", n.Line)
	}
}

// foldConstFloat evaluates a compile-time-constant floating initializer
// expression, promoting integer literals the same way an implicit
// conversion would.
func foldConstFloat(n *ast.Node) (float64, error) {
	switch n.Kind {
	case ast.FloatLit:
		return float64(n.FloatValue), nil
	case ast.DoubleLit:
		return n.DoubleValue, nil
	case ast.IntLit, ast.CharLit:
		return float64(n.IntValue), nil
	case ast.Unary:
		v, err := foldConstFloat(n.Children[0])
		if err != nil {
			return 0, err
		}
		if n.Op == "-" {
			return -v, nil
		}
		return v, nil
	default:
		return 0, fmt.Errorf("line %d: global initializer must be a constant expression", n.Line)
	}
}

func foldConstFloatBits(n *ast.Node) (uint32, error) {
	v, err := foldConstFloat(n)
	if err != nil {
		return 0, err
	}
	return math.Float32bits(float32(v)), nil
}

func foldConstDoubleBits(n *ast.Node) (uint64, error) {
	v, err := foldConstFloat(n)
	if err != nil {
		return 0, err
	}
	return math.Float64bits(v), nil
}
