package machine

import (
	"iter"
	"strings"
)

// Opcode represents a line of assembled code with its source location and
// generated instructions.
type Opcode struct {
	LineNo    int
	Finger    int
	Words     []string
	Codes     []Code
	LinkLabel string
}

// Program is an assembled program listing.
type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the listing entry that generated the instruction at finger.
func (prog *Program) Debug(finger uint32) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if uint64(finger) >= uint64(op.Finger) && uint64(finger) < uint64(op.Finger+len(op.Codes)) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(finger) - op.Finger,
			}
			break
		}
	}

	return
}

// Binary returns the program image.
func (prog *Program) Binary() (bins []uint32) {
	for _, code := range prog.Codes() {
		bins = append(bins, uint32(code))
	}

	return
}

// Codes iterates over every instruction and its finger.
func (prog *Program) Codes() iter.Seq2[uint32, Code] {
	return func(yield func(finger uint32, code Code) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				if !yield(uint32(op.Finger+n), code) {
					return
				}
			}
		}
	}
}

// Disassemble creates a listing from a program image, one opcode per word.
func Disassemble(image []uint32) (prog *Program) {
	prog = &Program{
		Opcodes: make([]Opcode, 0, len(image)),
	}

	for n, word := range image {
		code := Code(word)
		prog.Opcodes = append(prog.Opcodes, Opcode{
			LineNo: n + 1,
			Finger: n,
			Words:  strings.Fields(code.String()),
			Codes:  []Code{code},
		})
	}

	return
}
