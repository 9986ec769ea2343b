// Package keyboard drives the PS/2 keyboard: controller bring-up, the
// scancode decoder FSM, the Swedish keymap, and the event queue other
// packages poll for input.
package keyboard

import "ripos/kernel/interrupt"

// keyboardIRQLine is the IRQ line the PIC remap routes to interrupt.KeyboardGate.
const keyboardIRQLine = 1

// onKey is the ISR registered on interrupt.KeyboardGate: it reads the
// pending scancode byte, feeds it to the decoder, pushes any resulting
// Event onto the queue, and acknowledges the interrupt.
func onKey(_ *interrupt.Registers) {
	b := readData()
	if ev, ok := globalDecoder.feed(b); ok {
		queue.push(ev)
	}
	interrupt.SendEOI(keyboardIRQLine)
}

// Init installs the keymap, brings up the PS/2 controller and keyboard
// device, and registers the scancode ISR. The caller must have already run
// interrupt.Init and interrupt.RemapPIC, and must re-enable CPU interrupts
// afterward; Init does not unmask or enable interrupts itself.
func Init() bool {
	InstallKeymap()

	if !initPS2() {
		return false
	}

	interrupt.HandleInterrupt(interrupt.KeyboardGate, 0, onKey)
	return true
}
