// Package types defines the scalar type model shared by the front end and
// the code generator: the fixed set of scalar kinds, their byte sizes under
// the RV32 soft-float ABI, and the pointer descriptor used wherever a
// declarator or expression needs to carry "pointer to T, N levels deep".
package types

import "fmt"

// Kind differentiates the scalar types this compiler understands.
type Kind uint

// ---------------------
// ----- Constants -----
// ---------------------

const (
	Void Kind = iota
	Char
	Int
	Float
	Double
	Enum

	// Unused width variants. Declarators may name these; the code generator
	// treats them identically to Int, since this compiler never emits 64-bit
	// or short arithmetic, but keeping them distinguishable at parse time
	// lets diagnostics report the source type the user actually wrote.
	Short
	Long
)

// kindNames provides print friendly string representations of Kind constants.
var kindNames = [...]string{
	"void",
	"char",
	"int",
	"float",
	"double",
	"enum",
	"short",
	"long",
}

// sizes maps each Kind to its size in bytes. Pointers are not represented
// here: they are always 4 bytes regardless of pointee, per the RV32 ABI,
// and are sized by PointerSize rather than by indexing this table.
var sizes = [...]int{
	0, // Void
	1, // Char
	4, // Int
	4, // Float
	8, // Double
	4, // Enum
	4, // Short (treated as Int width; see Kind doc)
	4, // Long (treated as Int width; see Kind doc)
}

// PointerSize is the size in bytes of any pointer value, independent of the
// type it points to.
const PointerSize = 4

// String returns a print friendly string representation of the Kind.
func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Size returns sizeof(k) in bytes, per the {void->0, char->1, int->4,
// float->4, double->8} table in spec.
func (k Kind) Size() int {
	if int(k) < 0 || int(k) >= len(sizes) {
		return 0
	}
	return sizes[k]
}

// IsFloating reports whether k is a floating-point scalar kind.
func (k Kind) IsFloating() bool {
	return k == Float || k == Double
}

// Pointer describes a pointer type: the scalar type it ultimately points to
// and how many levels of indirection separate the pointer from that base
// type. A plain `int *p` has Base == Int and Depth == 1; `int **pp` has
// Depth == 2. Pointers always occupy PointerSize bytes regardless of Depth
// or Base.
type Pointer struct {
	Base  Kind
	Depth int
}

// Size returns the size in bytes of a value of this pointer type: always
// PointerSize.
func (Pointer) Size() int {
	return PointerSize
}

// String returns a print friendly string representation of the pointer type,
// e.g. "int **".
func (p Pointer) String() string {
	s := p.Base.String()
	for i := 0; i < p.Depth; i++ {
		s += " *"
	}
	return s
}
