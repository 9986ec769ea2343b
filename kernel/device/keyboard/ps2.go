package keyboard

import "ripos/kernel/cpu"

// PS/2 controller ports.
const (
	dataPort          = 0x60
	statusCommandPort = 0x64
)

// Status register bits.
const (
	statusOutputFull = 1 << 0
	statusInputFull  = 1 << 1
)

// Controller commands.
const (
	cmdDisableFirstPort  = 0xAD
	cmdDisableSecondPort = 0xA7
	cmdReadConfig        = 0x20
	cmdWriteConfig       = 0x60
	cmdSelfTest          = 0xAA
	cmdTestFirstPort     = 0xAB
	cmdEnableFirstPort   = 0xAE
)

// Configuration byte bits.
const (
	configFirstPortIRQ    = 1 << 0
	configSecondPortIRQ   = 1 << 1
	configFirstPortTransl = 1 << 6
)

// Device commands sent to the keyboard itself via the data port.
const (
	devResetSelfTest = 0xFF
	ackByte          = 0xFA
	selfTestPassByte = 0xAA
)

const pollTimeout = 10000

// waitForOutputFull spins until the controller has a byte ready to read, or
// the timeout expires.
func waitForOutputFull() bool {
	for i := 0; i < pollTimeout; i++ {
		if cpu.Inb(statusCommandPort)&statusOutputFull != 0 {
			return true
		}
	}
	return false
}

// waitForInputEmpty spins until the controller is ready to accept a command
// or data byte, or the timeout expires.
func waitForInputEmpty() bool {
	for i := 0; i < pollTimeout; i++ {
		if cpu.Inb(statusCommandPort)&statusInputFull == 0 {
			return true
		}
	}
	return false
}

func sendCommand(cmd byte) {
	waitForInputEmpty()
	cpu.Outb(statusCommandPort, cmd)
}

func sendData(b byte) {
	waitForInputEmpty()
	cpu.Outb(dataPort, b)
}

func readData() byte {
	waitForOutputFull()
	return cpu.Inb(dataPort)
}

// flushOutputBuffer discards any stale byte left sitting in the controller.
func flushOutputBuffer() {
	if cpu.Inb(statusCommandPort)&statusOutputFull != 0 {
		cpu.Inb(dataPort)
	}
}

// initPS2 brings up the 8042 PS/2 controller and the first-port keyboard:
// disable both ports, flush stale output, clear both IRQ bits and set the
// first port's translation bit in the config byte, self-test the controller, interface-test the keyboard
// port, then re-enable the keyboard port with IRQs and translation turned
// on and reset-and-self-test the keyboard device itself.
func initPS2() bool {
	sendCommand(cmdDisableFirstPort)
	sendCommand(cmdDisableSecondPort)

	flushOutputBuffer()

	sendCommand(cmdReadConfig)
	config := readData()
	config &^= configFirstPortIRQ | configSecondPortIRQ
	config |= configFirstPortTransl

	sendCommand(cmdWriteConfig)
	sendData(config)

	sendCommand(cmdSelfTest)
	if readData() != 0x55 {
		return false
	}

	// The self-test can reset the configuration byte on some controllers;
	// rewrite it to be safe before proceeding.
	sendCommand(cmdWriteConfig)
	sendData(config)

	sendCommand(cmdTestFirstPort)
	if readData() != 0x00 {
		return false
	}

	sendCommand(cmdEnableFirstPort)
	config |= configFirstPortIRQ
	config |= configFirstPortTransl

	sendData(devResetSelfTest)
	ack := readData()
	result := readData()
	if ack != ackByte || result != selfTestPassByte {
		return false
	}

	// Final configuration write happens after the device reset-and-self-test
	// completes, not before it.
	sendCommand(cmdWriteConfig)
	sendData(config)

	return true
}
