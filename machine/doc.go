// Package machine implements the um32 register machine and its assembler.
//
// The machine has eight 32-bit registers, a heap of dynamically allocated
// word arrays addressed by slot number, and a finger (program counter) into
// slot 0, which always holds the executing program. Fourteen operations are
// encoded in 32-bit instruction words.
//
// Execution is cooperative: Run executes instructions until a pseudo-time
// budget is reached, the program halts, or an input request cannot be
// satisfied, and then returns a Signal. The caller resumes by calling Run
// again with a larger budget.
//
// The assembler provides a small assembly language for the instruction set,
// supporting macros, labels, equates, and compile-time expression evaluation.
package machine
