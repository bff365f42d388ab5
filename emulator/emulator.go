// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	stdio "io"
	"iter"
	"log"
	"maps"
	"time"

	"github.com/ezrec/um32/internal"
	"github.com/ezrec/um32/io"
	"github.com/ezrec/um32/machine"
)

const (
	SLICE_DEFAULT = 10_000_000             // Pseudo-time per Tick.
	POLL_DEFAULT  = 100 * time.Millisecond // Delay before retrying input.
)

var _emulator_defines = map[string]string{
	"SLICE_DEFAULT": fmt.Sprintf("%d", SLICE_DEFAULT),
}

// Emulator state. Machine + program image + I/O.
type Emulator struct {
	Verbose          bool             // If set, enables verbose logging.
	*machine.Machine                  // Reference to the machine simulation.
	Program          *machine.Program // Listing of the running program, if known.
	Rom              *io.Rom          // Program image loaded by Reset.

	Input  io.Input     // Input source for 'in'.
	Output io.Output    // Output sink for 'out'.
	Echo   stdio.Writer // If set, receives every input byte consumed.

	Slice float64       // Pseudo-time budget of a single Tick.
	Poll  time.Duration // Delay before retrying a Tick that waits for input.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Machine: machine.NewMachine(nil),
		Program: &machine.Program{},
		Rom:     &io.Rom{},
		Slice:   SLICE_DEFAULT,
		Poll:    POLL_DEFAULT,
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Machine.Defines(),
	)
}

// Load reads a big-endian program image for the next Reset.
func (emu *Emulator) Load(r stdio.Reader) (err error) {
	rom, err := io.LoadRom(r)
	if err != nil {
		return
	}

	emu.Rom = rom
	emu.Program = &machine.Program{}

	return
}

// Reset starts a fresh machine on the program.
// An assembled Program takes precedence over the Rom, and replaces it.
func (emu *Emulator) Reset() (err error) {
	if len(emu.Program.Opcodes) != 0 {
		emu.Rom = &io.Rom{Data: emu.Program.Binary()}
	}

	emu.Machine = machine.NewMachine(emu.Rom.Data)
	emu.Machine.Verbose = emu.Verbose

	if emu.Verbose {
		log.Printf("emulator: reset, %d words, blake3 %x", len(emu.Rom.Data), emu.Rom.Digest())
	}

	return
}

// LineNo returns the source line number of the next instruction, or 0
// if the listing does not cover it.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Machine.Finger)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick runs the machine for one slice of pseudo-time.
func (emu *Emulator) Tick() (signal machine.Signal, err error) {
	// Set machine verbosity
	emu.Machine.Verbose = emu.Verbose

	var in machine.Input
	if emu.Input != nil {
		in = emu.Input
		if emu.Echo != nil {
			in = &echoInput{Input: emu.Input, echo: emu.Echo}
		}
	}

	budget := emu.Machine.Time + emu.Slice
	signal, err = emu.Machine.Run(budget, emu.Output, in)

	flush_err := emu.flush()
	if err == nil {
		err = flush_err
	}

	if err != nil {
		err = &ErrRuntime{Finger: emu.Machine.Finger, LineNo: emu.LineNo(), Err: err}
		return
	}

	if emu.Verbose {
		log.Printf("emulator: %v at time %.0f", signal, emu.Machine.Time)
	}

	return
}

// Run ticks the machine until it halts, fails, or the context is done.
// While the machine waits for input, it is retried every Poll.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	for {
		var signal machine.Signal
		signal, err = emu.Tick()
		if err != nil {
			return
		}

		switch signal {
		case machine.SIGNAL_HALT:
			return
		case machine.SIGNAL_LIMIT:
			select {
			case <-ctx.Done():
				err = ctx.Err()
				return
			default:
			}
		case machine.SIGNAL_WAIT_INPUT:
			timer := time.NewTimer(emu.Poll)
			select {
			case <-ctx.Done():
				timer.Stop()
				err = ctx.Err()
				return
			case <-timer.C:
			}
		}
	}
}

// flush flushes output sinks that buffer.
func (emu *Emulator) flush() (err error) {
	flusher, ok := emu.Output.(interface{ Flush() error })
	if ok {
		err = flusher.Flush()
	}

	return
}

// echoInput copies every byte received to a writer.
type echoInput struct {
	io.Input
	echo stdio.Writer
}

func (ei *echoInput) Receive() (value uint32, ok bool) {
	value, ok = ei.Input.Receive()
	if ok && value <= 0xff {
		ei.echo.Write([]byte{byte(value)})
	}

	return
}
