// Package shell implements the boot-time Forth read-evaluate loop: it reads
// characters from the keyboard queue, feeds completed lines to a
// forth.Machine, and installs the "run" word, which launches application
// files from the filesystem. Grounded on spec.md's boot-handoff description
// ("...and then enters the Forth read-evaluate loop") and the original's
// base/src/app.rs LittleManApp dispatch.
package shell

import (
	"ripos/kernel/app"
	"ripos/kernel/device/keyboard"
	"ripos/kernel/forth"
	"ripos/kernel/fs"
	"ripos/kernel/hal"
)

// runPathSuffix is appended to the popped path to search for the
// application file backing the Forth "run" word.
const runPathSuffix = ".run"

// binDir is the fallback search directory for "run" when the active
// directory does not contain a matching application file.
const binDir = fs.Path("/bin")

// Run installs the "run" word and loops forever reading lines from the
// keyboard and feeding them to a fresh Forth machine. It never returns.
func Run() {
	m := forth.New(hal.ActiveConsole())
	m.Install("run", runWord)

	var line []byte
	for {
		c := keyboard.GetCharBlocking()

		switch c {
		case '\n', '\r':
			m.Feed(string(line))
			m.RunToEnd()
			line = line[:0]
		case '\b':
			if len(line) > 0 {
				line = line[:len(line)-1]
			}
		default:
			line = append(line, string(c)...)
		}
	}
}

// runWord implements the shell-installed "run" built-in: pops a string path
// from the stack, resolves "<path>.run" first under the active directory
// and then under /bin, launches the resulting application, and invokes its
// Run method against this same machine. Filesystem and program errors are
// reported to the formatter and do not halt the loop, per spec §7's
// propagation policy.
func runWord(m *forth.Machine) {
	item, ok := m.PopItem()
	if !ok || !item.IsString {
		m.Printf("run: expected a path string on the stack")
		return
	}

	candidate := fs.Path(item.Str + runPathSuffix)

	rh, err := fs.GetFileRelative(candidate)
	if err != nil {
		rh, err = fs.GetFile(binDir.Append(candidate))
	}
	if err != nil {
		m.Printf("run: %s", err.Error())
		return
	}
	defer rh.Close()

	prog, err := rh.LaunchApp()
	if err != nil {
		m.Printf("run: %s", err.Error())
		return
	}

	if err := prog.Run(m); err != nil {
		if progErr, ok := err.(*app.Error); ok {
			m.Printf("run: %s", progErr.Reason)
		} else {
			m.Printf("run: %s", err.Error())
		}
	}
}
