// Package ast defines the closed syntax tree contract the front end
// (lexer + parser) must produce and the code generator consumes. It fixes
// the node shape described in spec §3/§4/§6 without designing the lexer or
// parser that build it: any front end producing trees of Node with these
// fields satisfies the contract.
package ast

import "rv32cc/types"

// Declarator carries the type information of a declared name: its scalar
// base type, whether and how deeply it's a pointer, and whether it names an
// array and of what length. spec §3 calls out that is_array and is_pointer
// are mutually exclusive for address-taking purposes but that indexing
// works on both; that distinction is enforced by the code generator, not by
// this struct, which simply records what the declarator said.
type Declarator struct {
	Name         string
	Type         types.Kind
	PointerDepth int  // 0 = not a pointer
	IsArray      bool
	ArrayLen     int // element count; meaningful only when IsArray
}

// IsPointer reports whether the declarator names a pointer type.
func (d Declarator) IsPointer() bool {
	return d.PointerDepth > 0
}

// Node is the single tagged node type of the syntax tree. Every node kind's
// payload lives in one of the typed fields below; which fields are
// meaningful for a given Kind is documented on the Kind constant itself.
// Children hold the node's structural sub-trees in the order its Kind's
// doc comment names them.
type Node struct {
	Kind Kind
	Line int
	Col  int

	// Declarator payload: VarDecl, Param, FuncDecl, FuncDef.
	Decl Declarator

	// Enumerator payload: Enumerator. HasEnumValue distinguishes an explicit
	// `= N` from the previous+1 default.
	EnumValue    int
	HasEnumValue bool

	// Literal payloads.
	IntValue    int
	FloatValue  float32
	DoubleValue float64
	StringValue string

	// Identifier / label / callee / goto-target name.
	Name string

	// Operator token, for Binary, Unary, PreIncDec, PostIncDec and
	// CompoundAssign nodes (e.g. "+", "<<=", "!").
	Op string

	// Cast / SizeofType target type.
	Type         types.Kind
	PointerDepth int

	Children []*Node
}

// IsPointer reports whether this node's declared or annotated type is a
// pointer. Meaningful on VarDecl, Param, Cast and SizeofType nodes.
func (n *Node) IsPointer() bool {
	switch n.Kind {
	case VarDecl, Param:
		return n.Decl.IsPointer()
	default:
		return n.PointerDepth > 0
	}
}

// IsArray reports whether this declarator names an array. Meaningful on
// VarDecl and Param nodes.
func (n *Node) IsArray() bool {
	return n.Decl.IsArray
}

// IntLiteral returns the integer value of an IntLit or CharLit node.
func (n *Node) IntLiteral() int {
	return n.IntValue
}

// FloatLiteral returns the value of a FloatLit node.
func (n *Node) FloatLiteral() float32 {
	return n.FloatValue
}

// DoubleLiteral returns the value of a DoubleLit node.
func (n *Node) DoubleLiteral() float64 {
	return n.DoubleValue
}

// StringLiteral returns the raw value of a StringLit node.
func (n *Node) StringLiteral() string {
	return n.StringValue
}

// Operator returns the operator token of a Binary, Unary, PreIncDec,
// PostIncDec or CompoundAssign node.
func (n *Node) Operator() string {
	return n.Op
}

// Child returns the i'th child, or nil if there aren't that many.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}
