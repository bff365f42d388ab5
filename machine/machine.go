package machine

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/um32/io"
)

// Input is a source of input values.
type Input io.Input

// Output is a sink of output bytes.
type Output io.Output

// Signal is the reason Run returned control to its caller.
type Signal int

//go:generate go tool stringer -linecomment -type=Signal
const (
	SIGNAL_LIMIT      = Signal(0) // limit
	SIGNAL_HALT       = Signal(1) // halt
	SIGNAL_WAIT_INPUT = Signal(2) // wait_input
)

var _machine_defines = map[string]string{
	"REGISTERS":    fmt.Sprintf("%d", REGISTERS),
	"ORTHO_MAX":    fmt.Sprintf("%#x", ORTHO_MAX),
	"END_OF_INPUT": fmt.Sprintf("%#x", io.END_OF_INPUT),
}

// Machine is the simulation context of a single program run.
type Machine struct {
	Verbose bool // Set to enable verbose logging.

	Register [REGISTERS]uint32 // Register file.
	Heap     *Heap             // Array heap, slot 0 is the program.
	Finger   uint32            // Index of the next instruction in slot 0.
	Time     float64           // Pseudo-time consumed so far.
	Ticks    int               // Instructions completed.

	halted bool
	fault  error
}

// NewMachine creates a machine that will run a copy of program.
func NewMachine(program []uint32) (m *Machine) {
	m = &Machine{
		Heap: NewHeap(program),
	}

	return
}

// Defines for the machine.
func (m *Machine) Defines() iter.Seq2[string, string] {
	return maps.All(_machine_defines)
}

// Halted returns true once the program has executed 'halt'.
func (m *Machine) Halted() bool {
	return m.halted
}

// Fault returns the fatal error that stopped the machine, if any.
func (m *Machine) Fault() error {
	return m.fault
}

// String returns the current machine state as a string.
func (m *Machine) String() (text string) {
	text += fmt.Sprintf("% 7s: %04X_%04X\n", "finger", m.Finger>>16, m.Finger&0xffff)
	text += fmt.Sprintf("% 7s: %.2f\n", "time", m.Time)
	for n, val := range m.Register {
		text += fmt.Sprintf("% 7s: %04X_%04X\n", fmt.Sprintf("r%d", n), val>>16, val&0xffff)
	}
	text += fmt.Sprintf("% 7s: %d/%d live, %d free\n", "heap",
		m.Heap.Live(), len(m.Heap.Slot), len(m.Heap.Free.Data))

	return
}

// FetchCode fetches the instruction at the finger.
func (m *Machine) FetchCode() (code Code, err error) {
	program := m.Heap.Program()
	if uint64(m.Finger) >= uint64(len(program)) {
		err = ErrInvalidMemory
		return
	}

	code = Code(program[m.Finger])
	return
}

// Run executes instructions until the pseudo-time reaches budget, the
// program halts, or input is requested and none is ready.
//
// budget is an absolute pseudo-time, so the caller must raise it between
// calls to make progress. Input and budget suspensions are resumable by
// calling Run again. A halted machine returns SIGNAL_HALT without executing
// anything. A fatal error stops the machine permanently, and is returned by
// every later call.
func (m *Machine) Run(budget float64, out Output, in Input) (signal Signal, err error) {
	if m.fault != nil {
		err = m.fault
		return
	}

	if m.halted {
		signal = SIGNAL_HALT
		return
	}

	for m.Time < budget {
		var yield bool
		signal, yield, err = m.Tick(out, in)
		if err != nil || yield {
			return
		}
	}

	signal = SIGNAL_LIMIT
	return
}

// Tick fetches and executes a single instruction. yield is set when the
// machine must return control with signal.
func (m *Machine) Tick(out Output, in Input) (signal Signal, yield bool, err error) {
	if m.fault != nil {
		err = m.fault
		return
	}

	if m.halted {
		signal = SIGNAL_HALT
		yield = true
		return
	}

	defer func() {
		if err != nil {
			m.fault = err
		}
	}()

	code, err := m.FetchCode()
	if err != nil {
		return
	}

	signal, yield, err = m.Execute(code, out, in)
	return
}

// Execute executes a single decoded instruction.
//
// The finger and pseudo-time only move when the instruction completes, so
// an instruction that suspends for input, or fails, leaves them as they
// were before the fetch.
func (m *Machine) Execute(code Code, out Output, in Input) (signal Signal, yield bool, err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()

	if m.Verbose {
		log.Printf("machine: %08x: %v", m.Finger, code)
	}

	heap := m.Heap
	reg := &m.Register

	next_finger := m.Finger + 1
	cost := 1.0

	op := code.Op()
	a, b, c := code.Decode()

	switch op {
	case OP_CMOV:
		if reg[c] != 0 {
			reg[a] = reg[b]
		}
	case OP_INDEX:
		var value uint32
		value, err = heap.Read(reg[b], reg[c])
		if err != nil {
			return
		}
		reg[a] = value
	case OP_AMEND:
		err = heap.Write(reg[a], reg[b], reg[c])
		if err != nil {
			return
		}
	case OP_ADD:
		reg[a] = reg[b] + reg[c]
	case OP_MUL:
		reg[a] = reg[b] * reg[c]
	case OP_DIV:
		if reg[c] == 0 {
			err = ErrDivideByZero
			return
		}
		reg[a] = reg[b] / reg[c]
	case OP_NAND:
		reg[a] = ^(reg[b] & reg[c])
	case OP_HALT:
		m.halted = true
		signal = SIGNAL_HALT
		yield = true
	case OP_ALLOC:
		size := reg[c]
		reg[b] = heap.Allocate(size)
		cost += float64(size) / ALLOC_COST
	case OP_ABANDON:
		err = heap.Reclaim(reg[c])
		if err != nil {
			return
		}
	case OP_OUT:
		if reg[c] > 0xff {
			err = ErrOutputRange
			return
		}
		if out == nil {
			err = ErrOutput
			return
		}
		err = out.Send(uint8(reg[c]))
		if err != nil {
			err = errors.Join(ErrOutput, err)
			return
		}
	case OP_IN:
		var value uint32
		var ok bool
		if in != nil {
			value, ok = in.Receive()
		}
		if !ok {
			// Retry this instruction when the caller resumes.
			signal = SIGNAL_WAIT_INPUT
			yield = true
			return
		}
		reg[c] = value
	case OP_LOAD:
		if reg[b] != 0 {
			var size int
			size, err = heap.ReplaceProgram(reg[b])
			if err != nil {
				return
			}
			cost += float64(size) / LOAD_COST
		}
		next_finger = reg[c]
	case OP_ORTHO:
		reg_a, value := code.OrthoDecode()
		reg[reg_a] = value
	default:
		err = ErrOpcodeDecode
		return
	}

	m.Finger = next_finger
	m.Time += cost
	m.Ticks++

	return
}
