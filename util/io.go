package util

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Writer buffers generated assembly text in a strings.Builder. The teacher's
// Writer fanned buffered text out to a listener goroutine over a channel,
// because several backend workers wrote concurrently. This compiler's code
// generator runs on a single goroutine, so Writer simply accumulates text
// and Flush drains it straight to the destination file or stdout.
type Writer struct {
	sb  strings.Builder
	out *bufio.Writer
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewWriter returns a Writer that flushes to f. If f is nil, it flushes to
// stdout.
func NewWriter(f *os.File) *Writer {
	if f != nil {
		return &Writer{out: bufio.NewWriter(f)}
	}
	return &Writer{out: bufio.NewWriter(os.Stdout)}
}

// Write writes a format string to the Writer's buffer.
func (w *Writer) Write(format string, args ...interface{}) {
	fmt.Fprintf(&w.sb, format, args...)
}

// WriteString writes a plain string to the Writer's buffer.
func (w *Writer) WriteString(s string) {
	w.sb.WriteString(s)
}

// Ins1 writes a one-line instruction with a single operand.
func (w *Writer) Ins1(op, rs1 string) {
	fmt.Fprintf(&w.sb, "\t%s\t%s\n", op, rs1)
}

// Ins2 writes a one-line instruction with a destination and single source
// register.
func (w *Writer) Ins2(op, rd, rs1 string) {
	fmt.Fprintf(&w.sb, "\t%s\t%s, %s\n", op, rd, rs1)
}

// Ins2imm writes a one-line instruction with a destination register, a
// single source register and a signed immediate.
func (w *Writer) Ins2imm(op, rd, rs1 string, imm int) {
	fmt.Fprintf(&w.sb, "\t%s\t%s, %s, %d\n", op, rd, rs1, imm)
}

// Ins3 writes a one-line instruction with a destination register and two
// source registers.
func (w *Writer) Ins3(op, rd, rs1, rs2 string) {
	fmt.Fprintf(&w.sb, "\t%s\t%s, %s, %s\n", op, rd, rs1, rs2)
}

// LoadStore writes a load or store instruction of register reg at the given
// offset from pointer (usually sp or s0).
func (w *Writer) LoadStore(op, reg string, offset int, pointer string) {
	fmt.Fprintf(&w.sb, "\t%s\t%s, %d(%s)\n", op, reg, offset, pointer)
}

// Label writes a one-line label with the given name.
func (w *Writer) Label(name string) {
	fmt.Fprintf(&w.sb, "%s:\n", name)
}

// Directive writes a one-line assembler directive, e.g. ".globl main".
func (w *Writer) Directive(format string, args ...interface{}) {
	fmt.Fprintf(&w.sb, "\t%s\n", fmt.Sprintf(format, args...))
}

// Flush writes the buffer's contents to the destination and empties it.
func (w *Writer) Flush() error {
	if _, err := w.out.WriteString(w.sb.String()); err != nil {
		return err
	}
	w.sb.Reset()
	return w.out.Flush()
}

// ReadSource reads source code from the named file.
func ReadSource(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}
