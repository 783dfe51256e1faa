package ast

import (
	"fmt"
	"os"
)

// String returns a print friendly one-line summary of n, used by Print and
// by error messages that name the offending construct.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case Ident, GotoStmt, LabelStmt, Call:
		return fmt.Sprintf("%s %q", n.Kind, n.Name)
	case IntLit, CharLit:
		return fmt.Sprintf("%s [%d]", n.Kind, n.IntValue)
	case FloatLit:
		return fmt.Sprintf("%s [%g]", n.Kind, n.FloatValue)
	case DoubleLit:
		return fmt.Sprintf("%s [%g]", n.Kind, n.DoubleValue)
	case StringLit:
		return fmt.Sprintf("%s [%q]", n.Kind, n.StringValue)
	case Binary, Unary, PreIncDec, PostIncDec, CompoundAssign:
		return fmt.Sprintf("%s %q", n.Kind, n.Op)
	case VarDecl, Param:
		return fmt.Sprintf("%s %s", n.Kind, n.Decl.Name)
	default:
		return n.Kind.String()
	}
}

// Print recursively prints n and its Children to stderr, indenting one
// level per depth of recursion. Used behind the driver's verbose flag.
func (n *Node) Print(depth int) {
	if n == nil {
		fmt.Fprintf(os.Stderr, "%*c---> NIL\n", depth<<1, ' ')
		return
	}
	fmt.Fprintf(os.Stderr, "%*c%s\n", depth<<1, ' ', n.String())
	for _, c := range n.Children {
		c.Print(depth + 1)
	}
}
