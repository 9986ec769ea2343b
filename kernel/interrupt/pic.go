package interrupt

import "ripos/kernel/cpu"

// 8259 PIC ports: command and data, master and slave.
const (
	picMasterCommand = 0x20
	picMasterData    = 0x21
	picSlaveCommand  = 0xA0
	picSlaveData     = 0xA1

	picEOI = 0x20

	icw1Init     = 0x11 // edge-triggered, cascade mode, ICW4 present
	icw4Mode8086    = 0x01 // 8086/88 mode
	masterVector = irqBaseVector     // 0x20
	slaveVector  = irqBaseVector + 8 // 0x28
)

// RemapPIC remaps the master and slave 8259 PICs so that IRQ0-7 land on
// vectors masterVector-masterVector+7 and IRQ8-15 on slaveVector-slaveVector+7,
// instead of the BIOS default (which collides with CPU exception vectors),
// then masks every line except IRQ0 (timer) and IRQ1 (keyboard).
func RemapPIC() {
	// ICW1: start initialization sequence on both PICs.
	cpu.Outb(picMasterCommand, icw1Init)
	cpu.Outb(picSlaveCommand, icw1Init)

	// ICW2: vector offsets.
	cpu.Outb(picMasterData, masterVector)
	cpu.Outb(picSlaveData, slaveVector)

	// ICW3: tell master PIC the slave sits on IRQ2, tell slave its cascade identity.
	cpu.Outb(picMasterData, 1<<2)
	cpu.Outb(picSlaveData, 2)

	// ICW4: 8086 mode.
	cpu.Outb(picMasterData, icw4Mode8086)
	cpu.Outb(picSlaveData, icw4Mode8086)

	// Mask every line except IRQ0 and IRQ1.
	cpu.Outb(picMasterData, ^byte(0x03))
	cpu.Outb(picSlaveData, 0xFF)
}

// SendEOI acknowledges the interrupt at irqLine (0-15) so the PIC can
// deliver further interrupts on that line. Interrupts from the slave PIC
// (irqLine >= 8) require an EOI to both PICs.
func SendEOI(irqLine uint8) {
	if irqLine >= 8 {
		cpu.Outb(picSlaveCommand, picEOI)
	}
	cpu.Outb(picMasterCommand, picEOI)
}
