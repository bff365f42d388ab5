package machine

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/um32/io"
)

// assemble builds a program image from assembly lines.
func assemble(t *testing.T, lines ...string) []uint32 {
	t.Helper()

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatal(err)
	}

	return prog.Binary()
}

var halt = uint32(MakeCode(OP_HALT, 0, 0, 0))

func TestMachineAddOutput(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine([]uint32{
		uint32(MakeCodeOrtho(0, 5)),
		uint32(MakeCodeOrtho(1, 7)),
		uint32(MakeCode(OP_ADD, 2, 0, 1)),
		uint32(MakeCode(OP_OUT, 0, 0, 2)),
		halt,
	})

	out := &io.Capture{}
	signal, err := m.Run(1000, out, nil)
	assert.NoError(err)
	assert.Equal(SIGNAL_HALT, signal)
	assert.Equal([]byte{12}, out.Bytes())
	assert.True(m.Halted())
	assert.Equal(5, m.Ticks)

	// A halted machine stays halted, and does not move.
	finger := m.Finger
	signal, err = m.Run(2000, out, nil)
	assert.NoError(err)
	assert.Equal(SIGNAL_HALT, signal)
	assert.Equal(finger, m.Finger)
	assert.Equal(5, m.Ticks)
}

func TestMachineAlu(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		op     Op
		b      uint32
		c      uint32
		before uint32
		result uint32
	}){
		{"add", OP_ADD, 3, 4, 0, 7},
		{"add_wrap", OP_ADD, 0xffff_ffff, 2, 0, 1},
		{"mul", OP_MUL, 6, 7, 0, 42},
		{"mul_wrap", OP_MUL, 0x1_0000, 0x1_0000, 5, 0},
		{"mul_big", OP_MUL, 0xffff_ffff, 0xffff_ffff, 0, 1},
		{"mul_precise", OP_MUL, 0x1234_5679, 0x9876_5431, 0, 0x1234_5679 * 0x9876_5431 & 0xffff_ffff},
		{"div", OP_DIV, 7, 2, 0, 3},
		{"div_big", OP_DIV, 0xffff_ffff, 1, 0, 0xffff_ffff},
		{"nand", OP_NAND, 0xf0f0_f0f0, 0xff00_ff00, 0, 0x0fff_0fff},
		{"not", OP_NAND, 0, 0, 0, 0xffff_ffff},
		{"cmov_set", OP_CMOV, 9, 1, 3, 9},
		{"cmov_clear", OP_CMOV, 9, 0, 3, 3},
	}

	for _, entry := range table {
		m := NewMachine(nil)
		m.Register[1] = entry.b
		m.Register[2] = entry.c
		m.Register[0] = entry.before

		signal, yield, err := m.Execute(MakeCode(entry.op, 0, 1, 2), nil, nil)
		assert.NoError(err, entry.name)
		assert.False(yield, entry.name)
		assert.Equal(SIGNAL_LIMIT, signal, entry.name)
		assert.Equal(entry.result, m.Register[0], entry.name)
		assert.Equal(uint32(1), m.Finger, entry.name)
		assert.Equal(1.0, m.Time, entry.name)
	}
}

func TestMachineOrtho(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine(nil)
	m.Register[6] = 0xffff_ffff

	_, _, err := m.Execute(MakeCodeOrtho(6, 0x123_4567), nil, nil)
	assert.NoError(err)
	assert.Equal(uint32(0x123_4567), m.Register[6])
}

func TestMachineFatal(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []uint32
		err     error
	}){
		{"divide_by_zero", assemble(t, "ortho r1 1", "div r0 r1 r2", "halt"), ErrDivideByZero},
		{"output_range", assemble(t, "ortho r1 256", "out r1", "halt"), ErrOutputRange},
		{"index_empty", assemble(t, "ortho r1 4", "index r0 r1 r2", "halt"), ErrInvalidMemory},
		{"index_range", assemble(t, "ortho r1 4", "alloc r2 r1", "index r0 r2 r1", "halt"), ErrInvalidMemory},
		{"amend_empty", assemble(t, "ortho r1 1", "amend r1 r0 r0", "halt"), ErrInvalidMemory},
		{"abandon_program", assemble(t, "abandon r0", "halt"), ErrInvalidMemory},
		{"abandon_twice", assemble(t, "alloc r1 r0", "abandon r1", "abandon r1", "halt"), ErrInvalidMemory},
		{"load_empty", assemble(t, "ortho r1 3", "load r1 r0", "halt"), ErrInvalidMemory},
		{"decode_14", []uint32{0xe000_0000}, ErrOpcodeDecode},
		{"decode_15", []uint32{0xf000_0000}, ErrOpcodeDecode},
		{"off_the_end", assemble(t, "ortho r0 1"), ErrInvalidMemory},
		{"jump_away", assemble(t, "ortho r1 100", "load r0 r1"), ErrInvalidMemory},
	}

	for _, entry := range table {
		m := NewMachine(entry.program)
		out := &io.Capture{}

		_, err := m.Run(1000, out, nil)
		assert.ErrorIs(err, entry.err, entry.name)
		assert.Equal(err, m.Fault(), entry.name)
		assert.Empty(out.Bytes(), entry.name)

		// A failed machine does not resume.
		finger := m.Finger
		ticks := m.Ticks
		_, again := m.Run(2000, out, nil)
		assert.Equal(err, again, entry.name)
		assert.Equal(finger, m.Finger, entry.name)
		assert.Equal(ticks, m.Ticks, entry.name)
	}
}

func TestMachineFatalOpcode(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine(assemble(t, "div r0 r0 r0"))
	_, err := m.Run(10, nil, nil)

	var eo ErrOpcode
	assert.True(errors.As(err, &eo))
	assert.Equal(MakeCode(OP_DIV, 0, 0, 0), Code(eo))
	assert.Equal(uint32(0), m.Finger)
	assert.Equal(0.0, m.Time)
}

type failOutput struct{}

var errFail = errors.New("sink failed")

func (failOutput) Send(value uint8) error {
	return errFail
}

func TestMachineOutputFailure(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine(assemble(t, "ortho r0 'x'", "out r0", "halt"))
	_, err := m.Run(10, failOutput{}, nil)
	assert.ErrorIs(err, ErrOutput)
	assert.ErrorIs(err, errFail)

	m = NewMachine(assemble(t, "ortho r0 'x'", "out r0", "halt"))
	_, err = m.Run(10, nil, nil)
	assert.ErrorIs(err, ErrOutput)
}

func TestMachineWaitInput(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine(assemble(t,
		"ortho r0 1",
		"in r1",
		"add r2 r1 r0",
		"out r2",
		"halt",
	))

	in := &io.Queue{}
	out := &io.Capture{}

	signal, err := m.Run(1000, out, in)
	assert.NoError(err)
	assert.Equal(SIGNAL_WAIT_INPUT, signal)
	assert.Equal(uint32(1), m.Finger)
	assert.Equal(1.0, m.Time)
	assert.Equal(1, m.Ticks)

	// Still nothing to read.
	signal, err = m.Run(1000, out, in)
	assert.NoError(err)
	assert.Equal(SIGNAL_WAIT_INPUT, signal)
	assert.Equal(uint32(1), m.Finger)
	assert.Equal(1.0, m.Time)

	assert.NoError(in.Push('A'))

	signal, err = m.Run(1000, out, in)
	assert.NoError(err)
	assert.Equal(SIGNAL_HALT, signal)
	assert.Equal([]byte{'B'}, out.Bytes())
	assert.Equal(uint32('A'), m.Register[1])
	assert.Equal(5, m.Ticks)
	assert.Equal(0, in.Len())
}

func TestMachineWaitInputFirst(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine(assemble(t, "in r3", "halt"))

	signal, err := m.Run(1000, nil, &io.Queue{})
	assert.NoError(err)
	assert.Equal(SIGNAL_WAIT_INPUT, signal)
	assert.Equal(uint32(0), m.Finger)
	assert.Equal(0.0, m.Time)

	// No input source at all is the same as no input ready.
	signal, err = m.Run(1000, nil, nil)
	assert.NoError(err)
	assert.Equal(SIGNAL_WAIT_INPUT, signal)
	assert.Equal(uint32(0), m.Finger)
}

func TestMachineEndOfInput(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine(assemble(t, "in r3", "halt"))

	in := &io.Queue{}
	assert.NoError(in.Close())

	signal, err := m.Run(1000, nil, in)
	assert.NoError(err)
	assert.Equal(SIGNAL_HALT, signal)
	assert.Equal(io.END_OF_INPUT, m.Register[3])
}

func TestMachineBudget(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine(assemble(t,
		"ortho r1 1",
		"add r0 r0 r1",
		"add r0 r0 r1",
		"add r0 r0 r1",
		"add r0 r0 r1",
		"add r0 r0 r1",
		"halt",
	))

	signal, err := m.Run(2, nil, nil)
	assert.NoError(err)
	assert.Equal(SIGNAL_LIMIT, signal)
	assert.Equal(uint32(2), m.Finger)
	assert.Equal(uint32(1), m.Register[0])

	// Same budget, no progress.
	signal, err = m.Run(2, nil, nil)
	assert.NoError(err)
	assert.Equal(SIGNAL_LIMIT, signal)
	assert.Equal(uint32(2), m.Finger)
	assert.Equal(uint32(1), m.Register[0])

	signal, err = m.Run(4, nil, nil)
	assert.NoError(err)
	assert.Equal(SIGNAL_LIMIT, signal)
	assert.Equal(uint32(4), m.Finger)
	assert.Equal(uint32(3), m.Register[0])

	signal, err = m.Run(100, nil, nil)
	assert.NoError(err)
	assert.Equal(SIGNAL_HALT, signal)
	assert.Equal(uint32(5), m.Register[0])
	assert.Equal(7, m.Ticks)
}

func TestMachineAllocateCost(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine(assemble(t, "ortho r2 100", "alloc r1 r2", "halt"))

	signal, err := m.Run(1000, nil, nil)
	assert.NoError(err)
	assert.Equal(SIGNAL_HALT, signal)
	assert.InDelta(1+1+100.0/50+1, m.Time, 1e-9)
	assert.Equal(uint32(1), m.Register[1])

	// Fractional costs accumulate.
	m = NewMachine(assemble(t, "ortho r2 25", "alloc r1 r2", "alloc r1 r2", "halt"))
	_, err = m.Run(1000, nil, nil)
	assert.NoError(err)
	assert.InDelta(1+2*(1+0.5)+1, m.Time, 1e-9)
	assert.Equal(uint32(2), m.Register[1])
}

func TestMachineHeapScenario(t *testing.T) {
	assert := assert.New(t)

	program := func(value string) []uint32 {
		return assemble(t,
			"ortho r1 8",
			"alloc r2 r1",
			"ortho r3 3",
			"ortho r4 "+value,
			"amend r2 r3 r4",
			"index r5 r2 r3",
			"out r5",
			"halt",
		)
	}

	m := NewMachine(program("'A'"))
	out := &io.Capture{}
	signal, err := m.Run(1000, out, nil)
	assert.NoError(err)
	assert.Equal(SIGNAL_HALT, signal)
	assert.Equal([]byte{'A'}, out.Bytes())
	assert.NotEqual(uint32(0), m.Register[2])

	m = NewMachine(program("300"))
	out = &io.Capture{}
	_, err = m.Run(1000, out, nil)
	assert.ErrorIs(err, ErrOutputRange)
	assert.Empty(out.Bytes())
}

func TestMachineAllocateReuse(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine(assemble(t,
		"ortho r0 4",
		"alloc r1 r0",
		"alloc r2 r0",
		"abandon r1",
		"alloc r3 r0",
		"alloc r4 r0",
		"halt",
	))

	signal, err := m.Run(1000, nil, nil)
	assert.NoError(err)
	assert.Equal(SIGNAL_HALT, signal)
	assert.Equal(uint32(1), m.Register[1])
	assert.Equal(uint32(2), m.Register[2])
	assert.Equal(uint32(1), m.Register[3])
	assert.Equal(uint32(3), m.Register[4])
}

func TestMachineJump(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine(assemble(t,
		"ortho r2 SKIP",
		"load r0 r2",
		"ortho r1 1",
		"SKIP: ortho r3 9",
		"halt",
	))

	signal, err := m.Run(1000, nil, nil)
	assert.NoError(err)
	assert.Equal(SIGNAL_HALT, signal)
	assert.Equal(uint32(0), m.Register[1])
	assert.Equal(uint32(9), m.Register[3])
	assert.Equal(4.0, m.Time)
}

func TestMachineLoadProgram(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine([]uint32{uint32(MakeCode(OP_LOAD, 0, 1, 2))})

	// Slot 1 holds the new program, which overwrites its own source.
	index := m.Heap.Allocate(3)
	assert.NoError(m.Heap.Write(index, 0, uint32(MakeCode(OP_AMEND, 1, 3, 4))))
	assert.NoError(m.Heap.Write(index, 1, uint32(MakeCodeOrtho(0, 42))))
	assert.NoError(m.Heap.Write(index, 2, halt))

	m.Register[1] = index
	m.Register[2] = 0
	m.Register[3] = 1
	m.Register[4] = halt

	signal, err := m.Run(1000, nil, nil)
	assert.NoError(err)
	assert.Equal(SIGNAL_HALT, signal)

	// The executing copy was not changed by the amendment.
	assert.Equal(uint32(42), m.Register[0])
	assert.Equal(uint32(MakeCodeOrtho(0, 42)), m.Heap.Program()[1])
	value, err := m.Heap.Read(index, 1)
	assert.NoError(err)
	assert.Equal(halt, value)

	// One for each instruction, plus the program copy.
	assert.InDelta(3+1+3.0/25, m.Time, 1e-9)
}

func TestMachineSelfModify(t *testing.T) {
	assert := assert.New(t)

	// Slot 0 is ordinary memory, and may be amended while running.
	m := NewMachine(assemble(t,
		"ortho r1 PATCH",
		"ortho r2 7",
		"mul r2 r2 r3",
		"amend r0 r1 r2",
		"PATCH: ortho r5 1",
		"halt",
	))
	m.Register[3] = 1 << 28

	signal, err := m.Run(1000, nil, nil)
	assert.NoError(err)
	assert.Equal(SIGNAL_HALT, signal)
	assert.Equal(uint32(0), m.Register[5])
}

func TestMachineString(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine([]uint32{halt})
	m.Register[7] = 0x1234_abcd

	text := m.String()
	assert.Contains(text, "r7: 1234_ABCD")
	assert.Contains(text, "finger: 0000_0000")
	assert.Contains(text, "heap: 1/1 live, 0 free")
}

func TestMachineDefines(t *testing.T) {
	assert := assert.New(t)

	defines := map[string]string{}
	for key, value := range NewMachine(nil).Defines() {
		defines[key] = value
	}

	assert.Equal("8", defines["REGISTERS"])
	assert.Equal("0x1ffffff", defines["ORTHO_MAX"])
	assert.Equal("0xffffffff", defines["END_OF_INPUT"])
}
