// Package forth implements the Forth-like evaluator: an append-only
// instruction stream with a cursor, a dictionary of built-in and
// user-defined words, and a data stack. Grounded on the original's
// base/src/forth.rs (ForthMachine, ForthInstructions, Stack, StackItem).
package forth

import (
	"io"
	"ripos/kernel/kfmt"
)

// builtin is a native word implementation; it operates directly on the
// machine, mirroring the original's ForthFunction = &dyn Fn(&mut ForthMachine).
type builtin func(m *Machine)

// Machine holds the instruction stream, cursor, data stack, and both the
// built-in and user dictionaries. The zero value is not ready to use; call
// New.
type Machine struct {
	instructions []Instruction
	cursor       int

	stack []StackItem

	builtins map[string]builtin
	words    map[string][]Instruction

	out io.Writer
}

// New returns a Machine with the standard built-in word table installed and
// output directed at out.
func New(out io.Writer) *Machine {
	m := &Machine{
		builtins: make(map[string]builtin),
		words:    make(map[string][]Instruction),
		out:      out,
	}
	installBuiltins(m)
	return m
}

// SetOutput redirects the formatter words ("," and "debug") write to.
func (m *Machine) SetOutput(out io.Writer) {
	m.out = out
}

// Install registers an additional built-in word, consulted ahead of the
// user dictionary. Used by the shell to add the "run" word, which needs
// filesystem access the core evaluator does not depend on.
func (m *Machine) Install(name string, fn func(m *Machine)) {
	m.builtins[name] = fn
}

// Feed parses text and appends the resulting instructions to the end of the
// instruction stream.
func (m *Machine) Feed(text string) {
	m.instructions = Parse(m.instructions, text)
}

// Push places v on top of the data stack. Satisfies app.Machine.
func (m *Machine) Push(v int64) {
	m.stack = append(m.stack, IntItem(v))
}

// Pop removes and returns the top of the data stack as an integer. It
// reports ok=false if the stack is empty or the top item is a string.
// Satisfies app.Machine.
func (m *Machine) Pop() (int64, bool) {
	item, ok := m.popItem()
	if !ok || item.IsString {
		return 0, false
	}
	return item.Int, true
}

// PopItem removes and returns the top StackItem regardless of its kind, for
// callers (such as the shell's "run" word) that need to distinguish
// strings from integers. It is not part of app.Machine.
func (m *Machine) PopItem() (StackItem, bool) {
	return m.popItem()
}

// Printf writes formatted text to the machine's output sink. Satisfies
// app.Machine.
func (m *Machine) Printf(format string, args ...interface{}) {
	kfmt.Fprintf(m.out, format, args...)
}

// popItem pops the raw StackItem, reporting ok=false on an empty stack.
func (m *Machine) popItem() (StackItem, bool) {
	if len(m.stack) == 0 {
		return StackItem{}, false
	}
	item := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return item, true
}

// pushItem pushes a raw StackItem.
func (m *Machine) pushItem(item StackItem) {
	m.stack = append(m.stack, item)
}

// Stack returns a snapshot of the data stack, bottom first, for the "debug"
// word and for tests.
func (m *Machine) Stack() []StackItem {
	out := make([]StackItem, len(m.stack))
	copy(out, m.stack)
	return out
}

// Len reports the total number of instructions fed so far, including those
// the cursor has already run past.
func (m *Machine) Len() int { return len(m.instructions) }

// Run executes the single instruction at the cursor, if any, and advances
// the cursor by one. Mirrors the original's ForthMachine::run.
func (m *Machine) Run() {
	if m.cursor >= len(m.instructions) {
		return
	}

	m.execute(m.instructions[m.cursor])
	m.cursor++
}

// RunToEnd repeatedly calls Run until the cursor reaches the end of the
// instruction stream.
func (m *Machine) RunToEnd() {
	for m.cursor < len(m.instructions) {
		m.Run()
	}
}

// execute dispatches a single instruction: data literals are pushed, words
// are looked up first in the built-in table then the user dictionary.
// Unknown words are silently dropped, per the original's behavior.
func (m *Machine) execute(instr Instruction) {
	if !instr.IsWord {
		m.pushItem(instr.Data)
		return
	}

	if fn, ok := m.builtins[instr.Word]; ok {
		fn(m)
		return
	}
	if body, ok := m.words[instr.Word]; ok {
		m.runLocally(body)
	}
}

// runLocally executes a user-defined word's body to completion in a nested
// scope, without touching the outer instruction cursor. Nested user words
// recurse naturally through execute.
func (m *Machine) runLocally(body []Instruction) {
	for _, instr := range body {
		m.execute(instr)
	}
}

// defineWord registers a user word with the given body.
func (m *Machine) defineWord(name string, body []Instruction) {
	m.words[name] = body
}

// cursor accessors used by the ":" builtin to look ahead in and skip over
// the instruction stream.
func (m *Machine) cursorIndex() int           { return m.cursor }
func (m *Machine) instructionAt(i int) (Instruction, bool) {
	if i < 0 || i >= len(m.instructions) {
		return Instruction{}, false
	}
	return m.instructions[i], true
}
func (m *Machine) setCursor(i int) { m.cursor = i }
