package codegen

import (
	"fmt"
	"math"

	"rv32cc/util"
)

// internString returns the rodata label for s, minting and recording a new
// one the first time s is seen. Grounded on the teacher's ir.Strings string
// table (backend/riscv.go's labelString constant and ir.Strings.St slice),
// generalized from an append-only slice to a map so repeated identical
// literals share one label instead of one entry per occurrence.
func (c *Context) internString(s string) string {
	if label, ok := c.strings[s]; ok {
		return label
	}
	label := c.newLabel(util.LabelString)
	c.strings[s] = label
	c.rodataOrder = append(c.rodataOrder, rodataEntry{label: label, kind: rodataString, sval: s})
	return label
}

// internFloat returns the rodata label for a 32-bit float constant.
func (c *Context) internFloat(f float32) string {
	bits := math.Float32bits(f)
	if label, ok := c.floats[bits]; ok {
		return label
	}
	label := c.newLabel(util.LabelFloat)
	c.floats[bits] = label
	c.rodataOrder = append(c.rodataOrder, rodataEntry{label: label, kind: rodataFloat, fval: f})
	return label
}

// internDouble returns the rodata label for a 64-bit double constant.
func (c *Context) internDouble(d float64) string {
	bits := math.Float64bits(d)
	if label, ok := c.doubles[bits]; ok {
		return label
	}
	label := c.newLabel(util.LabelDouble)
	c.doubles[bits] = label
	c.rodataOrder = append(c.rodataOrder, rodataEntry{label: label, kind: rodataDouble, dval: d})
	return label
}

// emitRodata writes the .rodata section holding every interned string,
// float and double constant, in first-use order.
func (c *Context) emitRodata() {
	if len(c.rodataOrder) == 0 {
		return
	}
	c.w.WriteString("\t.section\t.rodata\n")
	for _, e := range c.rodataOrder {
		switch e.kind {
		case rodataString:
			c.w.Label(e.label)
			c.w.WriteString(fmt.Sprintf("\t.asciz\t%q\n", e.sval))
		case rodataFloat:
			c.w.Label(e.label)
			c.w.Directive(".word\t0x%08x", math.Float32bits(e.fval))
		case rodataDouble:
			c.w.Label(e.label)
			bits := math.Float64bits(e.dval)
			c.w.Directive(".word\t0x%08x", uint32(bits))
			c.w.Directive(".word\t0x%08x", uint32(bits>>32))
		}
	}
	c.w.WriteString("\n")
}
