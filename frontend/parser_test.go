package frontend

import (
	"testing"

	"rv32cc/ast"
)

func TestParseFunctionDefinition(t *testing.T) {
	src := `int add(int a, int b) {
		return a + b;
	}`
	root, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if root.Kind != ast.Program {
		t.Fatalf("expected Program root, got %s", root.Kind)
	}
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 top level declaration, got %d", len(root.Children))
	}
	fn := root.Children[0]
	if fn.Kind != ast.FuncDef {
		t.Fatalf("expected FuncDef, got %s", fn.Kind)
	}
	if fn.Decl.Name != "add" {
		t.Errorf("expected function name %q, got %q", "add", fn.Decl.Name)
	}
	if len(fn.Children) != 3 { // 2 params + body
		t.Fatalf("expected 2 params and a body, got %d children", len(fn.Children))
	}
	if fn.Children[0].Kind != ast.Param || fn.Children[0].Decl.Name != "a" {
		t.Errorf("expected first param named a, got %v", fn.Children[0])
	}
	body := fn.Children[2]
	if body.Kind != ast.Block || len(body.Children) != 1 {
		t.Fatalf("expected single-statement block body, got %v", body)
	}
	ret := body.Children[0]
	if ret.Kind != ast.ReturnStmt {
		t.Fatalf("expected ReturnStmt, got %s", ret.Kind)
	}
	bin := ret.Children[0]
	if bin.Kind != ast.Binary || bin.Op != "+" {
		t.Fatalf("expected a + b, got %v", bin)
	}
}

func TestParseGlobalVarDecl(t *testing.T) {
	root, err := Parse("int counter;\nfloat scale;\n")
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(root.Children))
	}
	if root.Children[0].Kind != ast.VarDecl || root.Children[0].Decl.Name != "counter" {
		t.Errorf("expected VarDecl counter, got %v", root.Children[0])
	}
}

func TestParseIfElseWhileFor(t *testing.T) {
	src := `int f() {
		int i;
		if (i < 10) {
			i = i + 1;
		} else {
			i = 0;
		}
		while (i > 0) {
			i = i - 1;
		}
		for (i = 0; i < 5; i = i + 1) {
			i = i;
		}
		return i;
	}`
	root, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	body := root.Children[0].Children[0]
	if body.Kind != ast.Block {
		t.Fatalf("expected Block, got %s", body.Kind)
	}
	kinds := []ast.Kind{ast.VarDecl, ast.IfStmt, ast.WhileStmt, ast.ForStmt, ast.ReturnStmt}
	if len(body.Children) != len(kinds) {
		t.Fatalf("expected %d statements, got %d", len(kinds), len(body.Children))
	}
	for i, k := range kinds {
		if body.Children[i].Kind != k {
			t.Errorf("statement %d: expected %s, got %s", i, k, body.Children[i].Kind)
		}
	}
	ifStmt := body.Children[1]
	if len(ifStmt.Children) != 3 {
		t.Fatalf("expected if/then/else, got %d children", len(ifStmt.Children))
	}
}

func TestParseSwitchFallthrough(t *testing.T) {
	src := `int f(int x) {
		switch (x) {
		case 1:
		case 2:
			x = x + 1;
			break;
		default:
			x = 0;
		}
		return x;
	}`
	root, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	body := root.Children[0].Children[1]
	sw := body.Children[0]
	if sw.Kind != ast.SwitchStmt {
		t.Fatalf("expected SwitchStmt, got %s", sw.Kind)
	}
	swBody := sw.Children[1]
	if len(swBody.Children) != 3 {
		t.Fatalf("expected 3 labels (case 1, case 2, default), got %d", len(swBody.Children))
	}
	if swBody.Children[0].Kind != ast.CaseStmt || swBody.Children[0].Children[1].Kind != ast.NullStmt {
		t.Errorf("expected empty fallthrough case 1, got %v", swBody.Children[0])
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	root, err := Parse("int f() { return 1 + 2 * 3 == 7 && 1; }")
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	ret := root.Children[0].Children[0].Children[0]
	top := ret.Children[0]
	if top.Kind != ast.Binary || top.Op != "&&" {
		t.Fatalf("expected top-level &&, got %v", top)
	}
	eq := top.Children[0]
	if eq.Kind != ast.Binary || eq.Op != "==" {
		t.Fatalf("expected == under &&, got %v", eq)
	}
	add := eq.Children[0]
	if add.Kind != ast.Binary || add.Op != "+" {
		t.Fatalf("expected + to bind tighter than ==, got %v", add)
	}
	mul := add.Children[1]
	if mul.Kind != ast.Binary || mul.Op != "*" {
		t.Fatalf("expected * to bind tighter than +, got %v", mul)
	}
}

func TestParseCastAndSizeof(t *testing.T) {
	root, err := Parse("int f() { return (int)sizeof(int) + sizeof 1; }")
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	ret := root.Children[0].Children[0].Children[0]
	add := ret.Children[0]
	cast := add.Children[0]
	if cast.Kind != ast.Cast {
		t.Fatalf("expected Cast, got %s", cast.Kind)
	}
	if cast.Children[0].Kind != ast.SizeofType {
		t.Fatalf("expected SizeofType operand, got %s", cast.Children[0].Kind)
	}
	if add.Children[1].Kind != ast.SizeofExpr {
		t.Fatalf("expected SizeofExpr, got %s", add.Children[1].Kind)
	}
}

func TestParseEnumDecl(t *testing.T) {
	root, err := Parse("enum Color { RED, GREEN = 5, BLUE };\n")
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	en := root.Children[0]
	if en.Kind != ast.EnumDecl || len(en.Children) != 3 {
		t.Fatalf("expected EnumDecl with 3 enumerators, got %v", en)
	}
	if en.Children[1].Name != "GREEN" || !en.Children[1].HasEnumValue || en.Children[1].EnumValue != 5 {
		t.Errorf("expected GREEN = 5, got %v", en.Children[1])
	}
}

func TestParseArraysAndPointers(t *testing.T) {
	root, err := Parse("int arr[10];\nint *p;\nint f(int *q, int n) { return q[n]; }\n")
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	arr := root.Children[0]
	if !arr.Decl.IsArray || arr.Decl.ArrayLen != 10 {
		t.Errorf("expected array of length 10, got %v", arr.Decl)
	}
	ptr := root.Children[1]
	if !ptr.Decl.IsPointer() {
		t.Errorf("expected pointer declarator, got %v", ptr.Decl)
	}
	fn := root.Children[2]
	body := fn.Children[2]
	idx := body.Children[0].Children[0]
	if idx.Kind != ast.Index {
		t.Fatalf("expected Index expression, got %s", idx.Kind)
	}
}
