package interrupt

import "ripos/kernel/cpu"

const (
	pitChannel0Data = 0x40
	pitCommand      = 0x43

	// pitBaseFrequency is the 8254's fixed input clock in Hz.
	pitBaseFrequency = 1193182

	// pitPeriodicCommand selects channel 0, lobyte/hibyte access, mode 3
	// (square wave generator), binary counting: (1<<4)|(1<<5)|(3<<1).
	pitPeriodicCommand = (1 << 4) | (1 << 5) | (3 << 1)
)

// globalOSTime is a monotonic counter incremented once per timer tick.
var globalOSTime uint64

// GlobalOSTime returns the number of timer ticks since PIT programming, a
// millisecond-ish clock at the configured tick frequency.
func GlobalOSTime() uint64 {
	return globalOSTime
}

// ProgramPIT configures PIT channel 0 for periodic mode at frequencyHz.
func ProgramPIT(frequencyHz uint32) {
	divisor := uint16(pitBaseFrequency / frequencyHz)

	cpu.Outb(pitCommand, pitPeriodicCommand)
	cpu.Outb(pitChannel0Data, byte(divisor&0xFF))
	cpu.Outb(pitChannel0Data, byte(divisor>>8))
}

// timerTick is installed on TimerGate; it advances the monotonic clock and
// acknowledges the interrupt. The increment happens before the EOI write so
// that a nested re-entry of the handler (should one somehow occur) always
// observes a clock that is at least as new as the interrupt that triggered it.
func timerTick(_ *Registers) {
	globalOSTime++
	SendEOI(0)
}

// InitTimer installs the tick handler on TimerGate. It does not itself
// program the PIT or unmask the IRQ; callers sequence RemapPIC, HandleInterrupt
// registrations and PIT programming in the boot order kmain.Kmain follows.
func InitTimer() {
	HandleInterrupt(TimerGate, 0, timerTick)
}
