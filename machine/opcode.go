package machine

import (
	"fmt"
)

// Op is an operation number, the top four bits of an instruction word.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_CMOV    = Op(0)  // cmov
	OP_INDEX   = Op(1)  // index
	OP_AMEND   = Op(2)  // amend
	OP_ADD     = Op(3)  // add
	OP_MUL     = Op(4)  // mul
	OP_DIV     = Op(5)  // div
	OP_NAND    = Op(6)  // nand
	OP_HALT    = Op(7)  // halt
	OP_ALLOC   = Op(8)  // alloc
	OP_ABANDON = Op(9)  // abandon
	OP_OUT     = Op(10) // out
	OP_IN      = Op(11) // in
	OP_LOAD    = Op(12) // load
	OP_ORTHO   = Op(13) // ortho
)

const (
	REGISTERS = 8             // Size of the register file.
	ORTHO_MAX = (1 << 25) - 1 // Largest orthography immediate.
	OP_SHIFT  = 28            // Position of the operation field.
	ORTHO_REG = 25            // Position of the orthography register field.
	REG_MASK  = REGISTERS - 1 // Mask of a register field.
)

// Valid returns true if the operation is defined.
func (op Op) Valid() bool {
	return op >= OP_CMOV && op <= OP_ORTHO
}

// Code is a single instruction word.
type Code uint32

// MakeCode creates a three register instruction.
func MakeCode(op Op, a, b, c int) Code {
	return Code((uint32(op) << OP_SHIFT) |
		((uint32(a) & REG_MASK) << 6) |
		((uint32(b) & REG_MASK) << 3) |
		((uint32(c) & REG_MASK) << 0))
}

// MakeCodeOrtho creates an orthography instruction loading value into
// register a. Bits of value above ORTHO_MAX are discarded.
func MakeCodeOrtho(a int, value uint32) Code {
	return Code((uint32(OP_ORTHO) << OP_SHIFT) |
		((uint32(a) & REG_MASK) << ORTHO_REG) |
		(value & ORTHO_MAX))
}

// Op returns the operation field.
func (code Code) Op() Op {
	return Op(uint32(code) >> OP_SHIFT)
}

// Decode returns the A, B and C register fields.
func (code Code) Decode() (a, b, c int) {
	word := uint32(code)
	a = int((word >> 6) & REG_MASK)
	b = int((word >> 3) & REG_MASK)
	c = int((word >> 0) & REG_MASK)
	return
}

// OrthoDecode returns the register and immediate of an orthography.
func (code Code) OrthoDecode() (a int, value uint32) {
	word := uint32(code)
	a = int((word >> ORTHO_REG) & REG_MASK)
	value = word & ORTHO_MAX
	return
}

// String returns the assembly language representation of this instruction.
func (code Code) String() string {
	op := code.Op()
	a, b, c := code.Decode()

	switch op {
	case OP_CMOV, OP_INDEX, OP_AMEND, OP_ADD, OP_MUL, OP_DIV, OP_NAND:
		return fmt.Sprintf("%v r%d r%d r%d", op, a, b, c)
	case OP_HALT:
		return op.String()
	case OP_ALLOC, OP_LOAD:
		return fmt.Sprintf("%v r%d r%d", op, b, c)
	case OP_ABANDON, OP_OUT, OP_IN:
		return fmt.Sprintf("%v r%d", op, c)
	case OP_ORTHO:
		reg, value := code.OrthoDecode()
		return fmt.Sprintf("%v r%d %#x", op, reg, value)
	}

	return fmt.Sprintf(".word 0x%08x", uint32(code))
}
