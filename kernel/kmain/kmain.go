// Package kmain holds the kernel's entry point, kept separate from package
// kernel (which goruntime and nearly every other package import for
// kernel.Error) so that Kmain can freely import goruntime, interrupt,
// keyboard, fs and shell without creating an import cycle back into
// kernel. Mirrors the teacher's own kernel/kmain split from its base
// kernel package.
package kmain

import (
	"ripos/kernel"
	"ripos/kernel/cpu"
	"ripos/kernel/device/keyboard"
	"ripos/kernel/fs"
	"ripos/kernel/goruntime"
	"ripos/kernel/hal/multiboot"
	"ripos/kernel/interrupt"
	"ripos/kernel/kfmt"
	"ripos/kernel/mem/heap"
	"ripos/kernel/mem/pmm/allocator"
	"ripos/kernel/mem/vmm"
	"ripos/kernel/shell"
)

// kernelVMABase is the virtual address the linker script maps the kernel
// image's higher half to; ELF sections below it belong to identity-mapped
// boot code rather than the kernel proper.
const kernelVMABase = uintptr(0xffffffff80000000)

// timerFrequencyHz is the rate the PIT's tick handler advances GlobalOSTime at.
const timerFrequencyHz = 1000

var errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

// Kmain is the only Go symbol visible from the rt0 initialization code. It
// is invoked after rt0 sets up the GDT and a minimal g0 struct, running on
// the small stack rt0 allocated. kernelStart/kernelEnd are the physical
// addresses of the kernel ELF image, supplied by the linker via rt0.
//
// Kmain is not expected to return; if it does, rt0 halts the CPU.
//
//go:noinline
func Kmain(multibootInfoPtr, kernelStart, kernelEnd uintptr) {
	multiboot.SetInfoPtr(multibootInfoPtr)

	bootInfoStart := multiboot.InfoPtr()
	bootInfoEnd := bootInfoStart + uintptr(multiboot.InfoSize())

	allocator.Init(kernelStart, kernelEnd, bootInfoStart, bootInfoEnd)

	frameAlloc := allocator.Default{}

	if err := vmm.Init(kernelVMABase, frameAlloc, bootInfoStart, bootInfoEnd-bootInfoStart); err != nil {
		kfmt.Panic(err)
	}

	const heapPages = 4096 // 16MiB of heap-managed address space
	heapAlloc, err := heap.New(heapPages, frameAlloc)
	if err != nil {
		kfmt.Panic(err)
	}

	goruntime.SetHeap(heapAlloc)
	if err := goruntime.Init(); err != nil {
		kfmt.Panic(err)
	}

	interrupt.Init()
	interrupt.RemapPIC()
	interrupt.InitTimer()

	if !keyboard.Init() {
		kfmt.Panic(&kernel.Error{Module: "kmain", Message: "PS/2 keyboard bring-up failed"})
	}

	interrupt.ProgramPIT(timerFrequencyHz)
	cpu.EnableInterrupts()

	fs.Start()
	shell.Run()

	// Use kfmt.Panic instead of panic to prevent the compiler from treating
	// this call as dead code and eliminating it.
	kfmt.Panic(errKmainReturned)
}
