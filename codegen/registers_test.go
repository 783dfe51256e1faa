package codegen

import "testing"

func TestRegPoolAllocFirstFit(t *testing.T) {
	p := newRegPool([]string{"t0", "t1", "t2"})
	a := p.alloc()
	if a != "t0" {
		t.Fatalf("expected t0, got %s", a)
	}
	b := p.alloc()
	if b != "t1" {
		t.Fatalf("expected t1, got %s", b)
	}
	p.free(a)
	c := p.alloc()
	if c != "t0" {
		t.Fatalf("expected freed t0 to be reused, got %s", c)
	}
}

func TestRegPoolExhaustion(t *testing.T) {
	p := newRegPool([]string{"t0", "t1"})
	p.alloc()
	p.alloc()
	if r := p.alloc(); r != "" {
		t.Fatalf("expected exhausted pool to return \"\", got %q", r)
	}
}

func TestRegPoolAllocExcludes(t *testing.T) {
	p := newRegPool([]string{"t0", "t1"})
	r := p.alloc("t0")
	if r != "t1" {
		t.Fatalf("expected exclude to skip t0, got %s", r)
	}
}

func TestRegPoolAvailable(t *testing.T) {
	p := newRegPool([]string{"t0", "t1", "t2"})
	if p.available() != 3 {
		t.Fatalf("expected 3 available, got %d", p.available())
	}
	p.alloc()
	if p.available() != 2 {
		t.Fatalf("expected 2 available after one alloc, got %d", p.available())
	}
}

func TestRegPoolFreeUnknownIsNoop(t *testing.T) {
	p := newRegPool([]string{"t0"})
	p.free("t9") // must not panic
	if p.available() != 1 {
		t.Fatalf("expected pool untouched, got %d available", p.available())
	}
}
