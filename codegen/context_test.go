package codegen

import (
	"testing"

	"rv32cc/ast"
	"rv32cc/types"
	"rv32cc/util"
)

func newTestContext() *Context {
	return NewContext(util.NewWriter(nil))
}

func declNode(name string, typ types.Kind) *ast.Node {
	return &ast.Node{Kind: ast.VarDecl, Decl: ast.Declarator{Name: name, Type: typ}}
}

func TestBumpFrameAlignsAndOffsets(t *testing.T) {
	c := newTestContext()
	off1, err := c.bumpFrame(4)
	if err != nil {
		t.Fatalf("bumpFrame: %s", err)
	}
	if off1 != -(4 + savedRegsSize) {
		t.Fatalf("expected offset %d, got %d", -(4 + savedRegsSize), off1)
	}
	off2, err := c.bumpFrame(4)
	if err != nil {
		t.Fatalf("bumpFrame: %s", err)
	}
	if off2 != -(8 + savedRegsSize) {
		t.Fatalf("expected offset %d, got %d", -(8 + savedRegsSize), off2)
	}
}

func TestBumpFrameOverflow(t *testing.T) {
	c := newTestContext()
	_, err := c.bumpFrame(frameSize)
	if err == nil {
		t.Fatal("expected overflow error, got nil")
	}
}

func TestVariableSize(t *testing.T) {
	cases := []struct {
		name     string
		typ      types.Kind
		ptrDepth int
		isArray  bool
		arrayLen int
		want     int
	}{
		{"int", types.Int, 0, false, 0, 4},
		{"char", types.Char, 0, false, 0, 1},
		{"double", types.Double, 0, false, 0, 8},
		{"pointer to char", types.Char, 1, false, 0, types.PointerSize},
		{"int array of 10", types.Int, 0, true, 10, 40},
		{"char array of 3", types.Char, 0, true, 3, 3},
	}
	for _, c := range cases {
		got := variableSize(c.typ, c.ptrDepth, c.isArray, c.arrayLen)
		if got != c.want {
			t.Errorf("%s: variableSize() = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestScopeLookupShadowing(t *testing.T) {
	c := newTestContext()
	outer := c.declareGlobal(declNode("x", types.Int))
	c.pushScope()
	inner, err := c.declareLocal(declNode("x", types.Char))
	if err != nil {
		t.Fatalf("declareLocal: %s", err)
	}
	found, ok := c.lookup("x")
	if !ok || found != inner {
		t.Fatalf("expected lookup to find inner shadowing declaration")
	}
	c.popScope()
	found, ok = c.lookup("x")
	if !ok || found != outer {
		t.Fatalf("expected lookup to find outer declaration after popScope")
	}
}

func TestDeclareLocalRejectsRedeclaration(t *testing.T) {
	c := newTestContext()
	if _, err := c.declareLocal(declNode("x", types.Int)); err != nil {
		t.Fatalf("declareLocal: %s", err)
	}
	if _, err := c.declareLocal(declNode("x", types.Int)); err == nil {
		t.Fatal("expected redeclaration error")
	}
}

func TestInternStringDedup(t *testing.T) {
	c := newTestContext()
	l1 := c.internString("hello")
	l2 := c.internString("hello")
	if l1 != l2 {
		t.Fatalf("expected same label for duplicate string, got %q and %q", l1, l2)
	}
	l3 := c.internString("world")
	if l3 == l1 {
		t.Fatalf("expected distinct label for distinct string")
	}
}

func TestInternFloatDedupsNaN(t *testing.T) {
	c := newTestContext()
	nan := nan32()
	l1 := c.internFloat(nan)
	l2 := c.internFloat(nan)
	if l1 != l2 {
		t.Fatalf("expected NaN to dedup via bit pattern, got %q and %q", l1, l2)
	}
}

func nan32() float32 {
	var zero float32
	return zero / zero
}

func TestEmitRodataEmptyIsNoop(t *testing.T) {
	c := newTestContext()
	c.emitRodata()
	if len(c.rodataOrder) != 0 {
		t.Fatalf("expected no rodata entries")
	}
}
