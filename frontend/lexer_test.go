// Tests the lexer by verifying that a small sample of C source is
// tokenized as expected, following the teacher's table-driven style of
// listing the expected tokens and comparing their types against the
// scanner's output in order.
package frontend

import "testing"

func TestLexerBasic(t *testing.T) {
	src := "int add(int a, int b) {\n  return a + b;\n}\n"
	toks, err := lexAll(src)
	if err != nil {
		t.Fatalf("lexAll: %s", err)
	}

	exp := []struct {
		typ tokenType
		val string
	}{
		{tokInt, "int"},
		{tokIdentifier, "add"},
		{tokenType('('), "("},
		{tokInt, "int"},
		{tokIdentifier, "a"},
		{tokenType(','), ","},
		{tokInt, "int"},
		{tokIdentifier, "b"},
		{tokenType(')'), ")"},
		{tokenType('{'), "{"},
		{tokReturn, "return"},
		{tokIdentifier, "a"},
		{tokenType('+'), "+"},
		{tokIdentifier, "b"},
		{tokenType(';'), ";"},
		{tokenType('}'), "}"},
		{tokEOF, ""},
	}

	if len(toks) != len(exp) {
		t.Fatalf("expected %d tokens, got %d: %v", len(exp), len(toks), toks)
	}
	for i, e := range exp {
		if toks[i].typ != e.typ {
			t.Errorf("token %d: expected type %s, got %s (%q)", i, e.typ, toks[i].typ, toks[i].val)
		}
	}
}

func TestLexerOperators(t *testing.T) {
	src := "a += 1; b <<= 2; c == d != e <= f >= g && h || i;"
	toks, err := lexAll(src)
	if err != nil {
		t.Fatalf("lexAll: %s", err)
	}
	wantTypes := []tokenType{
		tokIdentifier, tokAddAssign, tokIntConst, tokenType(';'),
		tokIdentifier, tokLShiftAssign, tokIntConst, tokenType(';'),
		tokIdentifier, tokEQ, tokIdentifier, tokNE, tokIdentifier, tokLE, tokIdentifier, tokGE, tokIdentifier, tokAndAnd, tokIdentifier, tokOrOr, tokIdentifier, tokenType(';'),
		tokEOF,
	}
	if len(toks) != len(wantTypes) {
		t.Fatalf("expected %d tokens, got %d: %v", len(wantTypes), len(toks), toks)
	}
	for i, want := range wantTypes {
		if toks[i].typ != want {
			t.Errorf("token %d: expected %s, got %s", i, want, toks[i].typ)
		}
	}
}

func TestLexerStringAndCharEscapes(t *testing.T) {
	toks, err := lexAll(`"hi\n" 'a' '\n'`)
	if err != nil {
		t.Fatalf("lexAll: %s", err)
	}
	if toks[0].typ != tokStringConst || toks[0].val != "hi\n" {
		t.Errorf("expected string const %q, got %q", "hi\n", toks[0].val)
	}
	if toks[1].typ != tokCharConst || toks[1].val != "a" {
		t.Errorf("expected char const %q, got %q", "a", toks[1].val)
	}
	if toks[2].typ != tokCharConst || toks[2].val != "\n" {
		t.Errorf("expected char const newline, got %q", toks[2].val)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	_, err := lexAll(`"unterminated`)
	if err == nil {
		t.Fatal("expected an error for unterminated string literal")
	}
}

func TestLexerComments(t *testing.T) {
	src := "int x; // trailing comment\n/* block\ncomment */ int y;"
	toks, err := lexAll(src)
	if err != nil {
		t.Fatalf("lexAll: %s", err)
	}
	wantTypes := []tokenType{tokInt, tokIdentifier, tokenType(';'), tokInt, tokIdentifier, tokenType(';'), tokEOF}
	if len(toks) != len(wantTypes) {
		t.Fatalf("expected %d tokens, got %d: %v", len(wantTypes), len(toks), toks)
	}
}
