// Package hal defines the hardware-abstraction surface the rest of the
// kernel depends on: a minimal Console contract and the multiboot parser
// (kernel/hal/multiboot). It does not implement any concrete console driver
// (VGA text mode, graphics mode, DAC palette, CRTC) — per the project's
// scope, only the call contract that the Forth formatter and panic renderer
// need is defined here. A concrete Console is installed through SetConsole;
// kernel/kmain installs none, so ActiveConsole returns nil unless a caller
// does.
package hal

import (
	"io"

	"ripos/kernel/kfmt"
)

// Console is the output device the kernel writes formatted text and panic
// dumps to. It is narrower than the teacher's device/video/console.Device
// and device/tty.Device interfaces, keeping only the subset kfmt and the
// Forth REPL actually call.
type Console interface {
	io.Writer
	io.ByteWriter

	// Clear erases the console's visible contents and resets the cursor
	// to the origin.
	Clear()

	// SetCursor moves the write cursor to the given row/column, in
	// character cells.
	SetCursor(row, col uint32)
}

// activeConsole is the Console that kfmt.SetOutputSink has been pointed at,
// if any, as returned by ActiveConsole.
var activeConsole Console

// SetConsole installs cons as the active console and directs kfmt's output
// sink at it.
func SetConsole(cons Console) {
	activeConsole = cons
	kfmt.SetOutputSink(cons)
}

// ActiveConsole returns the console installed via SetConsole, or nil if none
// has been installed yet.
func ActiveConsole() Console {
	return activeConsole
}
