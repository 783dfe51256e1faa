package codegen

import (
	"fmt"

	"rv32cc/ast"
	"rv32cc/types"
	"rv32cc/util"
)

// genStatement lowers one statement node, dispatching by Kind. Grounded on
// the teacher's backend/arm.genStatement switch, adapted from aarch64's
// conditional-branch mnemonics to RV32's.
func (c *Context) genStatement(n *ast.Node) error {
	switch n.Kind {
	case ast.Block:
		return c.genBlock(n)
	case ast.ExprStmt:
		v, err := c.genExpr(n.Children[0])
		if err != nil {
			return err
		}
		c.freeValue(v)
		return nil
	case ast.IfStmt:
		return c.genIf(n)
	case ast.WhileStmt:
		return c.genWhile(n)
	case ast.DoWhileStmt:
		return c.genDoWhile(n)
	case ast.ForStmt:
		return c.genFor(n)
	case ast.ReturnStmt:
		return c.genReturn(n)
	case ast.BreakStmt:
		return c.genBreak(n)
	case ast.ContinueStmt:
		return c.genContinue(n)
	case ast.SwitchStmt:
		return c.genSwitch(n)
	case ast.GotoStmt:
		c.w.Write("\tj\t%s\n", gotoLabel(n.Name))
		return nil
	case ast.LabelStmt:
		c.w.Label(gotoLabel(n.Name))
		return c.genStatement(n.Children[0])
	case ast.NullStmt:
		return nil
	case ast.VarDecl:
		return c.genLocalDecl(n)
	case ast.DeclGroup:
		// Comma-separated declarators share the enclosing scope, not one
		// of their own - see ast.DeclGroup's doc comment - so this simply
		// lowers each VarDecl child in place rather than pushing a scope
		// the way genBlock would.
		for _, child := range n.Children {
			if err := c.genLocalDecl(child); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("line %d: unexpected statement kind %s", n.Line, n.Kind)
	}
}

// gotoLabel namespaces a source-level goto/label identifier so it can't
// collide with a compiler-minted control-flow label.
func gotoLabel(name string) string {
	return "L_user_" + name
}

// genBlock lowers a compound statement, entering a fresh lexical scope so
// its declarations don't leak into the enclosing one.
func (c *Context) genBlock(n *ast.Node) error {
	c.pushScope()
	defer c.popScope()
	for _, stmt := range n.Children {
		if err := c.genStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// genCondBranch evaluates cond and emits a branch to falseLabel when it is
// false (zero), freeing the register holding the condition's truth value.
func (c *Context) genCondBranch(cond *ast.Node, falseLabel string) error {
	v, err := c.genExpr(cond)
	if err != nil {
		return err
	}
	b, err := c.toBool(v)
	if err != nil {
		return err
	}
	c.w.Write("\tbeqz\t%s, %s\n", b, falseLabel)
	c.intPool.free(b)
	return nil
}

// genIf lowers if/else, grounded on the teacher's genIfThen/genIfThenElse
// split, collapsed into one function since RV32's beqz already does the
// job genCompare+branch did on aarch64.
func (c *Context) genIf(n *ast.Node) error {
	hasElse := len(n.Children) > 2
	var falseLabel string
	if hasElse {
		falseLabel = c.newLabel(util.LabelIfElse)
	} else {
		falseLabel = c.newLabel(util.LabelIfEnd)
	}
	if err := c.genCondBranch(n.Children[0], falseLabel); err != nil {
		return err
	}
	if err := c.genStatement(n.Children[1]); err != nil {
		return err
	}
	if hasElse {
		endLabel := c.newLabel(util.LabelIfEnd)
		c.w.Write("\tj\t%s\n", endLabel)
		c.w.Label(falseLabel)
		if err := c.genStatement(n.Children[2]); err != nil {
			return err
		}
		c.w.Label(endLabel)
		return nil
	}
	c.w.Label(falseLabel)
	return nil
}

// genWhile lowers a pre-tested loop.
func (c *Context) genWhile(n *ast.Node) error {
	head := c.newLabel(util.LabelWhileHead)
	end := c.newLabel(util.LabelWhileEnd)

	c.w.Label(head)
	if err := c.genCondBranch(n.Children[0], end); err != nil {
		return err
	}
	c.breakLabels.Push(end)
	c.continueLabels.Push(head)
	err := c.genStatement(n.Children[1])
	c.breakLabels.Pop()
	c.continueLabels.Pop()
	if err != nil {
		return err
	}
	c.w.Write("\tj\t%s\n", head)
	c.w.Label(end)
	return nil
}

// genDoWhile lowers a post-tested loop.
func (c *Context) genDoWhile(n *ast.Node) error {
	head := c.newLabel(util.LabelDoWhileHead)
	end := c.newLabel(util.LabelDoWhileEnd)

	c.w.Label(head)
	c.breakLabels.Push(end)
	c.continueLabels.Push(head)
	err := c.genStatement(n.Children[0])
	c.continueLabels.Pop()
	c.breakLabels.Pop()
	if err != nil {
		return err
	}
	v, err := c.genExpr(n.Children[1])
	if err != nil {
		return err
	}
	b, err := c.toBool(v)
	if err != nil {
		return err
	}
	c.w.Write("\tbnez\t%s, %s\n", b, head)
	c.intPool.free(b)
	c.w.Label(end)
	return nil
}

// genFor lowers a for loop. Any of init/cond/post may be absent, encoded
// as a nil child per ForStmt's doc comment.
func (c *Context) genFor(n *ast.Node) error {
	c.pushScope()
	defer c.popScope()

	if init := n.Children[0]; init != nil {
		if err := c.genStatement(init); err != nil {
			return err
		}
	}

	head := c.newLabel(util.LabelForHead)
	end := c.newLabel(util.LabelForEnd)

	c.w.Label(head)
	if cond := n.Children[1]; cond != nil {
		if err := c.genCondBranch(cond, end); err != nil {
			return err
		}
	}

	c.breakLabels.Push(end)
	c.continueLabels.Push(head)
	err := c.genStatement(n.Children[3])
	c.breakLabels.Pop()
	c.continueLabels.Pop()
	if err != nil {
		return err
	}

	if post := n.Children[2]; post != nil {
		v, err := c.genExpr(post)
		if err != nil {
			return err
		}
		c.freeValue(v)
	}
	c.w.Write("\tj\t%s\n", head)
	c.w.Label(end)
	return nil
}

// genReturn lowers a return statement: move the result into a0/fa0 (when
// present) and jump to the function's single end label, where
// genFunctionDef emits the one shared epilogue. This is what makes "every
// function has exactly one prologue and one epilogue" hold even for a
// function with several return statements, e.g. fib's base case and
// recursive case.
func (c *Context) genReturn(n *ast.Node) error {
	if len(n.Children) > 0 && n.Children[0] != nil {
		v, err := c.genExpr(n.Children[0])
		if err != nil {
			return err
		}
		v, err = c.convert(v, c.currentFunc.ReturnType, c.currentFunc.ReturnPointerDepth)
		if err != nil {
			return err
		}
		if v.isFloat() {
			suffix := "s"
			if v.typ == types.Double {
				suffix = "d"
			}
			c.w.Ins2("fsgnj."+suffix, "fa0", v.reg)
			c.floatPool.free(v.reg)
		} else {
			c.w.Ins2("mv", "a0", v.reg)
			c.intPool.free(v.reg)
		}
	}
	c.w.Write("\tj\t%s\n", c.currentFunc.EndLabel)
	return nil
}

// genLocalDecl declares a local variable's frame storage and, if the
// declarator had an initializer, lowers it immediately: a scalar's single
// expression is converted to the declared type and stored once; an array's
// element list is lowered and stored element by element at
// s0 + offset + i*elemSize, per spec's local-declaration lowering.
func (c *Context) genLocalDecl(n *ast.Node) error {
	v, err := c.declareLocal(n)
	if err != nil {
		return err
	}
	if len(n.Children) == 0 {
		return nil
	}
	if v.IsArray {
		elemSize := variableSize(v.Type, 0, false, 0)
		for i, initExpr := range n.Children {
			val, err := c.genExpr(initExpr)
			if err != nil {
				return err
			}
			val, err = c.convert(val, v.Type, 0)
			if err != nil {
				return err
			}
			addr, err := c.allocInt()
			if err != nil {
				c.freeValue(val)
				return err
			}
			c.w.Ins2imm("addi", addr, "s0", v.Offset+i*elemSize)
			c.storeToAddr(addr, v.Type, 0, val)
			c.freeValue(val)
		}
		return nil
	}
	val, err := c.genExpr(n.Children[0])
	if err != nil {
		return err
	}
	val, err = c.convert(val, v.Type, v.PointerDepth)
	if err != nil {
		return err
	}
	c.storeVariable(v, val)
	c.freeValue(val)
	return nil
}

// genBreak jumps to the innermost enclosing loop/switch's end label.
func (c *Context) genBreak(n *ast.Node) error {
	if c.breakLabels.Empty() {
		return fmt.Errorf("line %d: break statement not within a loop or switch", n.Line)
	}
	label, _ := c.breakLabels.Peek()
	c.w.Write("\tj\t%s\n", label)
	return nil
}

// genContinue jumps to the innermost enclosing loop's test/head label.
func (c *Context) genContinue(n *ast.Node) error {
	if c.continueLabels.Empty() {
		return fmt.Errorf("line %d: continue statement not within a loop", n.Line)
	}
	label, _ := c.continueLabels.Peek()
	c.w.Write("\tj\t%s\n", label)
	return nil
}

// genSwitch lowers a switch statement. The scrutinee is evaluated once and
// held in a register for the body's lifetime; genSwitchBody compares each
// CaseStmt against it and emits the case bodies back to back, so each
// case's statements run straight into the next (true C fallthrough).
func (c *Context) genSwitch(n *ast.Node) error {
	scrutinee, err := c.genExpr(n.Children[0])
	if err != nil {
		return err
	}
	end := c.newLabel(util.LabelSwitchEnd)
	c.switches.Push(switchFrame{scrutineeReg: scrutinee.reg, scrutineeTyp: scrutinee.typ, endLabel: end})
	c.breakLabels.Push(end)

	err = c.genSwitchBody(n.Children[1])

	c.breakLabels.Pop()
	c.switches.Pop()
	c.freeValue(scrutinee)
	if err != nil {
		return err
	}
	c.w.Label(end)
	return nil
}

// genSwitchBody walks a switch's body block in two passes, grounded on the
// standard compare-cascade-then-fallthrough-body shape: first every
// CaseStmt's constant is tested against the scrutinee and, on a match,
// jumps straight to that case's body label (falling through the whole
// cascade to the default body, or to the end of the switch if there is
// none); second every body is emitted in source order with nothing but a
// label between one and the next, so a case without a break runs straight
// into the next case's statements exactly as C's fallthrough requires.
func (c *Context) genSwitchBody(body *ast.Node) error {
	frame, _ := c.switches.Peek()
	bodyLabels := make([]string, len(body.Children))
	defaultIdx := -1
	for i, child := range body.Children {
		bodyLabels[i] = c.newLabel(util.LabelCase)
		if child.Kind == ast.DefaultStmt {
			defaultIdx = i
		}
	}

	for i, child := range body.Children {
		if child.Kind != ast.CaseStmt {
			continue
		}
		caseVal, err := c.genExpr(child.Children[0])
		if err != nil {
			return err
		}
		cmp, err := c.allocInt()
		if err != nil {
			c.freeValue(caseVal)
			return err
		}
		c.w.Ins3("sub", cmp, frame.scrutineeReg, caseVal.reg)
		c.freeValue(caseVal)
		c.w.Write("\tbeqz\t%s, %s\n", cmp, bodyLabels[i])
		c.intPool.free(cmp)
	}
	if defaultIdx >= 0 {
		c.w.Write("\tj\t%s\n", bodyLabels[defaultIdx])
	} else {
		c.w.Write("\tj\t%s\n", frame.endLabel)
	}

	for i, child := range body.Children {
		c.w.Label(bodyLabels[i])
		switch child.Kind {
		case ast.CaseStmt:
			if err := c.genStatement(child.Children[1]); err != nil {
				return err
			}
		case ast.DefaultStmt:
			if err := c.genStatement(child.Children[0]); err != nil {
				return err
			}
		default:
			if err := c.genStatement(child); err != nil {
				return err
			}
		}
	}
	return nil
}
