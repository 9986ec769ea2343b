// Package interrupt installs and services the IDT: the 256-gate table
// covering CPU exceptions (0-31) and user-installable interrupts (32-255),
// and the 8259 PIC / 8254 PIT programming that turns the timer and
// keyboard into usable IRQ sources. It supersedes the teacher's two
// exception-only generations (kernel/gate, kernel/irq).
package interrupt

import (
	"io"
	"ripos/kernel/kfmt"
)

// Registers is a snapshot of every register value available when an
// exception, interrupt or syscall occurs: the general-purpose registers
// pushed by the gate stub, a module-specific Info word (exception error
// code, syscall number, or IRQ number depending on the gate), and the
// CPU-pushed IRETQ frame.
type Registers struct {
	RAX uint64
	RBX uint64
	RCX uint64
	RDX uint64
	RSI uint64
	RDI uint64
	RBP uint64
	R8  uint64
	R9  uint64
	R10 uint64
	R11 uint64
	R12 uint64
	R13 uint64
	R14 uint64
	R15 uint64

	// Info contains the exception code for exceptions, the syscall number
	// for syscall entries, or the IRQ number for hardware interrupts.
	Info uint64

	// The return frame automatically pushed by the CPU and consumed by IRETQ.
	RIP    uint64
	CS     uint64
	RFlags uint64
	RSP    uint64
	SS     uint64
}

// DumpTo outputs the full register snapshot to w.
func (r *Registers) DumpTo(w io.Writer) {
	r.dumpRegsTo(w)
	kfmt.Fprintf(w, "\n")
	r.dumpFrameTo(w)
}

// dumpRegsTo writes only the general-purpose registers, mirroring the
// teacher's irq.Regs.Print split between register and frame dumps.
func (r *Registers) dumpRegsTo(w io.Writer) {
	kfmt.Fprintf(w, "RAX = %16x RBX = %16x\n", r.RAX, r.RBX)
	kfmt.Fprintf(w, "RCX = %16x RDX = %16x\n", r.RCX, r.RDX)
	kfmt.Fprintf(w, "RSI = %16x RDI = %16x\n", r.RSI, r.RDI)
	kfmt.Fprintf(w, "RBP = %16x\n", r.RBP)
	kfmt.Fprintf(w, "R8  = %16x R9  = %16x\n", r.R8, r.R9)
	kfmt.Fprintf(w, "R10 = %16x R11 = %16x\n", r.R10, r.R11)
	kfmt.Fprintf(w, "R12 = %16x R13 = %16x\n", r.R12, r.R13)
	kfmt.Fprintf(w, "R14 = %16x R15 = %16x\n", r.R14, r.R15)
}

// dumpFrameTo writes only the CPU-pushed IRETQ frame, mirroring the
// teacher's irq.Frame.Print.
func (r *Registers) dumpFrameTo(w io.Writer) {
	kfmt.Fprintf(w, "RIP = %16x CS  = %16x\n", r.RIP, r.CS)
	kfmt.Fprintf(w, "RSP = %16x SS  = %16x\n", r.RSP, r.SS)
	kfmt.Fprintf(w, "RFL = %16x\n", r.RFlags)
}

// GateNumber identifies one of the 256 IDT gate slots.
type GateNumber uint8

const (
	DivideByZero               = GateNumber(0)
	NMI                        = GateNumber(2)
	Breakpoint                 = GateNumber(3)
	Overflow                   = GateNumber(4)
	BoundRangeExceeded         = GateNumber(5)
	InvalidOpcode              = GateNumber(6)
	DeviceNotAvailable         = GateNumber(7)
	DoubleFault                = GateNumber(8)
	InvalidTSS                 = GateNumber(10)
	SegmentNotPresent          = GateNumber(11)
	StackSegmentFault          = GateNumber(12)
	GPFException               = GateNumber(13)
	PageFaultException         = GateNumber(14)
	FloatingPointException     = GateNumber(16)
	AlignmentCheck             = GateNumber(17)
	MachineCheck               = GateNumber(18)
	SIMDFloatingPointException = GateNumber(19)

	// irqBaseVector is where the PIC remap lands IRQ0; gates below this
	// number are CPU exceptions, gates at or above it are hardware IRQs.
	irqBaseVector = 0x20

	// TimerGate and KeyboardGate are the user-installable gates the PIC
	// remap (pic.go) routes IRQ0 and IRQ1 to.
	TimerGate    = GateNumber(irqBaseVector + 0)
	KeyboardGate = GateNumber(irqBaseVector + 1)
)

// Init installs the IDT with every exception gate marked present and
// non-present user gates otherwise, then loads it. It must run with
// interrupts disabled; the caller re-enables them once PIC/PIT/PS2 setup
// (pic.go, pit.go, kernel/device/keyboard) has completed.
func Init() {
	installIDT()
}

// HandleInterrupt routes gate to handler. istOffset selects an interrupt
// stack table entry (0 disables IST for this gate).
func HandleInterrupt(gate GateNumber, istOffset uint8, handler func(*Registers))

// installIDT populates the IDT descriptor and loads it via LIDT. Every gate
// starts out not-present; HandleInterrupt marks a gate present when a
// handler is registered for it.
func installIDT()

// dispatchInterrupt is the common entrypoint every gate stub jumps to; it
// fills in a Registers value and calls the handler registered via
// HandleInterrupt.
func dispatchInterrupt()

// interruptGateEntries holds the generated per-gate trampoline code that
// dispatchInterrupt is reached through.
func interruptGateEntries()
