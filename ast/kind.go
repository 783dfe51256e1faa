package ast

import "fmt"

// Kind differentiates the node variants of the syntax tree. It plays the
// role the teacher's ir.NodeType plays: a closed tag switched on by every
// tree-walking consumer, but here every Kind's payload lives in typed
// struct fields rather than an untyped interface{}, so there is nothing to
// downcast.
type Kind int

const (
	// Top level.
	Program Kind = iota
	VarDecl    // global or local variable declaration; see Declarator. Children,
	           // if present, hold the initializer: one expression for a
	           // scalar/pointer declarator, or one expression per element
	           // (in order) for an array's `= { ... }` initializer list.
	FuncDecl   // function prototype, no body
	FuncDef    // function definition; Children are the Param nodes followed by the Block body (last child)
	EnumDecl   // enum type declaration; Children are Enumerator nodes
	Enumerator // one `name` or `name = value` inside an EnumDecl
	Param      // one function parameter; see Declarator
	DeclGroup  // multiple comma-separated declarators sharing one statement
	           // position (`int a, b = 3;`); Children are VarDecl nodes,
	           // declared into the surrounding scope rather than one of
	           // their own.

	// Statements.
	Block        // Children are statements and/or nested VarDecl
	ExprStmt     // Children[0] is the expression, evaluated for effect
	IfStmt       // Children[0] cond, [1] then, optional [2] else
	WhileStmt    // Children[0] cond, [1] body
	DoWhileStmt  // Children[0] body, [1] cond
	ForStmt      // Children[0] init (may be nil), [1] cond (may be nil), [2] post (may be nil), [3] body
	ReturnStmt   // Children[0] optional return expression
	BreakStmt
	ContinueStmt
	SwitchStmt  // Children[0] scrutinee, [1] body (a Block of Case/Default/statements)
	CaseStmt    // Children[0] constant expression, [1] statement
	DefaultStmt // Children[0] statement
	GotoStmt    // Name is the target label
	LabelStmt   // Name is the label; Children[0] is the labelled statement
	NullStmt    // the empty statement `;`

	// Expressions.
	IntLit
	CharLit
	FloatLit
	DoubleLit
	StringLit
	Ident          // Name is the identifier (variable or enum constant)
	Binary         // Op is the operator; Children[0], [1] are operands
	Unary          // Op is the operator; Children[0] is the operand
	AddrOf         // &expr; Children[0] is the operand (must be an lvalue)
	Deref          // *expr; Children[0] is the pointer expression
	PreIncDec      // Op is "++" or "--"; Children[0] is an Ident
	PostIncDec     // Op is "++" or "--"; Children[0] is an Ident
	Assign         // Children[0] lhs, [1] rhs
	CompoundAssign // Op is "+=" etc; Children[0] lhs, [1] rhs
	Call           // Name is the callee; Children are argument expressions
	Index          // Children[0] array/pointer expression, [1] index expression
	Cast           // Type/PointerDepth describe the target type; Children[0] operand
	Conditional    // Children[0] cond, [1] then-expr, [2] else-expr
	Comma          // Children[0] left, [1] right
	SizeofExpr     // Children[0] is the operand expression
	SizeofType     // Type/PointerDepth describe the operand type
)

var kindNames = [...]string{
	"Program",
	"VarDecl",
	"FuncDecl",
	"FuncDef",
	"EnumDecl",
	"Enumerator",
	"Param",
	"DeclGroup",
	"Block",
	"ExprStmt",
	"IfStmt",
	"WhileStmt",
	"DoWhileStmt",
	"ForStmt",
	"ReturnStmt",
	"BreakStmt",
	"ContinueStmt",
	"SwitchStmt",
	"CaseStmt",
	"DefaultStmt",
	"GotoStmt",
	"LabelStmt",
	"NullStmt",
	"IntLit",
	"CharLit",
	"FloatLit",
	"DoubleLit",
	"StringLit",
	"Ident",
	"Binary",
	"Unary",
	"AddrOf",
	"Deref",
	"PreIncDec",
	"PostIncDec",
	"Assign",
	"CompoundAssign",
	"Call",
	"Index",
	"Cast",
	"Conditional",
	"Comma",
	"SizeofExpr",
	"SizeofType",
}

// String returns a print friendly name for k.
func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}
