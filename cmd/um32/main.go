// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	stdio "io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/ezrec/um32/emulator"
	"github.com/ezrec/um32/io"
	"github.com/ezrec/um32/machine"
	"github.com/ezrec/um32/translate"
)

func main() {
	var compile string
	var image string
	var save bool
	var disassemble bool
	var input string
	var output string
	var echo bool
	var verbose bool
	var slice float64
	var poll = emulator.POLL_DEFAULT
	var lang string

	flag.StringVar(&compile, "c", "", ".uma file to assemble")
	flag.StringVar(&image, "r", "", ".um program image to run")
	flag.BoolVar(&save, "s", false, "Save program image to output, do not execute")
	flag.BoolVar(&disassemble, "d", false, "Disassemble program image to output, do not execute")
	flag.StringVar(&input, "i", "-", "Program input")
	flag.StringVar(&output, "o", "-", "Program output")
	flag.BoolVar(&echo, "e", false, "Echo program input to output")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Float64Var(&slice, "slice", emulator.SLICE_DEFAULT, "Pseudo-time between yields")
	flag.DurationVar(&poll, "poll", poll, "Delay between input polls")
	flag.StringVar(&lang, "lang", "", "Message locale")

	flag.Parse()

	if flag.NArg() == 1 && len(image) == 0 {
		image = flag.Arg(0)
	} else if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(lang) != 0 {
		translate.Use(lang)
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Slice = slice
	emu.Poll = poll

	// Load a program image.
	if len(image) != 0 {
		inf, err := os.Open(image)
		if err != nil {
			log.Fatalf("%v: %v", image, err)
		}
		err = emu.Load(inf)
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", image, err)
		}
	}

	// Compile a new instruction stream.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &machine.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		emu.Program, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	err := emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	var out stdio.Writer = os.Stdout
	if output != "-" {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		out = ouf
	}

	if save {
		_, err = emu.Rom.WriteTo(out)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	if disassemble {
		listing := machine.Disassemble(emu.Rom.Data)
		for _, op := range listing.Opcodes {
			fmt.Fprintf(out, "%08x: %08x  %v\n", op.Finger, uint32(op.Codes[0]), strings.Join(op.Words, " "))
		}
		return
	}

	tape := &io.Tape{Output: out, EndOfTape: true}
	emu.Output = tape

	if input == "-" {
		// Feed stdin from a goroutine, so the machine can yield while
		// waiting for the terminal.
		queue := &io.Queue{}
		go func() {
			stdio.Copy(queue, os.Stdin)
			queue.Close()
		}()
		emu.Input = queue
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		tape.Input = inf
		emu.Input = tape
	}

	if echo {
		emu.Echo = tape
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err = emu.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Printf("%v: interrupted at finger 0x%08x", os.Args[0], emu.Machine.Finger)
		return
	}
	if err != nil {
		if verbose {
			log.Print(emu.Machine.String())
		}
		log.Fatal(err)
	}
}
