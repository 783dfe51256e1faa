package codegen

import (
	"os"
	"strings"
	"testing"

	"rv32cc/frontend"
	"rv32cc/util"
)

// compile runs the full frontend+codegen pipeline on src and returns the
// generated assembly text, using a temp file as the Writer's flush target
// since Writer only buffers in memory until Flush.
func compile(t *testing.T, src string) string {
	t.Helper()
	root, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	f, err := os.CreateTemp(t.TempDir(), "out-*.s")
	if err != nil {
		t.Fatalf("CreateTemp: %s", err)
	}
	defer f.Close()

	w := util.NewWriter(f)
	if err := Generate(root, w); err != nil {
		t.Fatalf("Generate: %s", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %s", err)
	}

	b, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("ReadFile: %s", err)
	}
	return string(b)
}

func TestGenerateSimpleFunction(t *testing.T) {
	out := compile(t, `int add(int a, int b) {
		return a + b;
	}`)
	if !strings.Contains(out, "add:") {
		t.Errorf("expected a label for add, got:\n%s", out)
	}
	if !strings.Contains(out, ".globl main") {
		t.Errorf("expected .globl main directive, got:\n%s", out)
	}
	if !strings.Contains(out, "ret") {
		t.Errorf("expected a ret instruction, got:\n%s", out)
	}
}

func TestGenerateUninitializedGlobalEmitsZero(t *testing.T) {
	out := compile(t, `int counter;
	int total(void) {
		return counter;
	}`)
	if !strings.Contains(out, "counter:") || !strings.Contains(out, ".zero\t4") {
		t.Errorf("expected a zero-reserved global for counter, got:\n%s", out)
	}
}

func TestGenerateGlobalScalarInitializer(t *testing.T) {
	out := compile(t, `int counter = 5;
	int total(void) {
		return counter;
	}`)
	if !strings.Contains(out, "counter:") || !strings.Contains(out, ".word\t5") {
		t.Errorf("expected counter initialized to .word 5, got:\n%s", out)
	}
}

func TestGenerateGlobalArrayInitializer(t *testing.T) {
	out := compile(t, `int a[5] = {1,2,3,4,5};
	int f(void) { return a[0]; }`)
	for _, want := range []string{".word\t1", ".word\t2", ".word\t3", ".word\t4", ".word\t5"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected array element directive %q, got:\n%s", want, out)
		}
	}
}

func TestGenerateLocalDeclWithInitializer(t *testing.T) {
	out := compile(t, `int f(void) {
		int a = 5, b = 3;
		return a + b;
	}`)
	if strings.Count(out, "\tli\t") < 2 {
		t.Errorf("expected both initializers lowered via li, got:\n%s", out)
	}
}

func TestGenerateStringLiteralDedup(t *testing.T) {
	out := compile(t, `int f(void) {
		char *a;
		char *b;
		a = "hi";
		b = "hi";
		return 0;
	}`)
	if strings.Count(out, ".asciz") != 1 {
		t.Errorf("expected exactly one interned string constant, got:\n%s", out)
	}
}

func TestGenerateIfElse(t *testing.T) {
	out := compile(t, `int max(int a, int b) {
		if (a > b) {
			return a;
		} else {
			return b;
		}
	}`)
	if !strings.Contains(out, "bnez") && !strings.Contains(out, "beqz") {
		t.Errorf("expected a conditional branch, got:\n%s", out)
	}
}

func TestGenerateWhileLoop(t *testing.T) {
	out := compile(t, `int sum(int n) {
		int total;
		total = 0;
		while (n > 0) {
			total = total + n;
			n = n - 1;
		}
		return total;
	}`)
	if !strings.Contains(out, "LWhileHead") {
		t.Errorf("expected a while-head label, got:\n%s", out)
	}
}

func TestGenerateSwitchFallthrough(t *testing.T) {
	out := compile(t, `int classify(int x) {
		int r;
		switch (x) {
		case 1:
		case 2:
			r = 1;
			break;
		default:
			r = 0;
		}
		return r;
	}`)
	if !strings.Contains(out, "LSwitchEnd") {
		t.Errorf("expected a switch-end label, got:\n%s", out)
	}
	if !strings.Contains(out, "LCase") {
		t.Errorf("expected case body labels, got:\n%s", out)
	}
}

func TestGenerateFibHasExactlyOneEpilogue(t *testing.T) {
	out := compile(t, `int fib(int n) {
		if (n < 2) return n;
		return fib(n-1) + fib(n-2);
	}`)
	if strings.Count(out, "\tret\n") != 1 {
		t.Errorf("expected exactly one ret (one shared epilogue), got:\n%s", out)
	}
	if !strings.Contains(out, "LFuncEnd") {
		t.Errorf("expected a function-end label as the return target, got:\n%s", out)
	}
	if strings.Count(out, "call\tfib") != 2 {
		t.Errorf("expected two recursive calls to fib, got:\n%s", out)
	}
}

func TestGenerateCallSpillsLiveRegisterAcrossNestedCall(t *testing.T) {
	out := compile(t, `int fib(int n) {
		if (n < 2) return n;
		return fib(n-1) + fib(n-2);
	}`)
	// One stack decrement for the prologue, plus one more from
	// saveRegisters spilling fib(n-1)'s still-live result register before
	// the fib(n-2) call reuses the same pool.
	if got := strings.Count(out, "addi\tsp, sp, -"); got < 2 {
		t.Errorf("expected at least 2 stack decrements (prologue + saveRegisters), got %d:\n%s", got, out)
	}
}

func TestGenerateRejectsUndeclaredCall(t *testing.T) {
	root, err := frontend.Parse(`int f(void) {
		return g();
	}`)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	w := util.NewWriter(nil)
	if err := Generate(root, w); err == nil {
		t.Fatal("expected an error calling an undeclared function")
	}
}

func TestGenerateRejectsRedefinition(t *testing.T) {
	root, err := frontend.Parse(`int f(void) { return 0; }
	int f(void) { return 1; }`)
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	w := util.NewWriter(nil)
	if err := Generate(root, w); err == nil {
		t.Fatal("expected a redefinition error")
	}
}

func TestGenerateEnumValues(t *testing.T) {
	out := compile(t, `enum Color { RED, GREEN = 5, BLUE };
	int f(void) {
		return BLUE;
	}`)
	if !strings.Contains(out, "li") {
		t.Errorf("expected li instruction loading enum constant, got:\n%s", out)
	}
}
