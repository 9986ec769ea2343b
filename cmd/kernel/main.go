package main

import "ripos/kernel/kmain"

// multibootInfoPtr, kernelStartAddr and kernelEndAddr are populated by the
// rt0 assembly trampoline before jumping into main. They are declared as
// package-level variables (rather than passed as literal arguments) so the
// compiler cannot inline this call and strip kmain.Kmain from the
// generated object file.
var (
	multibootInfoPtr uintptr
	kernelStartAddr  uintptr
	kernelEndAddr    uintptr
)

// main is the only Go symbol exported from the rt0 initialization code. It
// is a trampoline for kmain.Kmain, invoked after rt0 has set up the GDT and
// a minimal g0 struct allowing Go code to run on the 4K stack rt0 allocated.
//
// main is not expected to return. If it does, the rt0 code halts the CPU.
func main() {
	kmain.Kmain(multibootInfoPtr, kernelStartAddr, kernelEndAddr)
}
