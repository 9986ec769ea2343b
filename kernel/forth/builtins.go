package forth

// installBuiltins populates m's built-in word table. Grounded on base/src/
// forth.rs's ForthFunction table and spec §4.5.2's stack-effect table.
func installBuiltins(m *Machine) {
	m.builtins[","] = builtinPrint
	m.builtins["dup"] = builtinDup
	m.builtins["over"] = builtinOver
	m.builtins["drop"] = builtinDrop
	m.builtins["rot"] = builtinRot
	m.builtins["swap"] = builtinSwap
	m.builtins["debug"] = builtinDebug
	m.builtins["+"] = builtinArith('+')
	m.builtins["-"] = builtinArith('-')
	m.builtins["*"] = builtinArith('*')
	m.builtins["/"] = builtinArith('/')
	m.builtins["%"] = builtinArith('%')
	m.builtins[":"] = builtinColon
}

// builtinPrint implements "," ( x -- ): prints the popped item as text.
func builtinPrint(m *Machine) {
	item, ok := m.popItem()
	if !ok {
		return
	}
	m.Printf("%s", item.String())
}

// builtinDup implements "dup" ( a -- a a ).
func builtinDup(m *Machine) {
	item, ok := m.popItem()
	if !ok {
		return
	}
	m.pushItem(item)
	m.pushItem(item)
}

// builtinOver implements "over" ( a b -- a b a ).
func builtinOver(m *Machine) {
	b, ok := m.popItem()
	if !ok {
		return
	}
	a, ok := m.popItem()
	if !ok {
		m.pushItem(b)
		return
	}
	m.pushItem(a)
	m.pushItem(b)
	m.pushItem(a)
}

// builtinDrop implements "drop" ( a -- ).
func builtinDrop(m *Machine) {
	m.popItem()
}

// builtinRot implements "rot" ( a b c -- b c a ).
func builtinRot(m *Machine) {
	c, ok := m.popItem()
	if !ok {
		return
	}
	b, ok := m.popItem()
	if !ok {
		m.pushItem(c)
		return
	}
	a, ok := m.popItem()
	if !ok {
		m.pushItem(b)
		m.pushItem(c)
		return
	}
	m.pushItem(b)
	m.pushItem(c)
	m.pushItem(a)
}

// builtinSwap implements "swap" ( a b -- b a ).
func builtinSwap(m *Machine) {
	b, ok := m.popItem()
	if !ok {
		return
	}
	a, ok := m.popItem()
	if !ok {
		m.pushItem(b)
		return
	}
	m.pushItem(b)
	m.pushItem(a)
}

// builtinDebug implements "debug" ( -- ): dumps the stack to the formatter.
func builtinDebug(m *Machine) {
	m.Printf("[")
	for i, item := range m.stack {
		if i > 0 {
			m.Printf(" ")
		}
		m.Printf("%s", item.String())
	}
	m.Printf("]")
}

// builtinArith returns a builtin implementing one of + - * / %. Int only;
// on a type mismatch both operands are re-pushed unchanged (best-effort).
// Division and modulo by zero are reported to the formatter with no push.
func builtinArith(op byte) builtin {
	return func(m *Machine) {
		b, ok := m.popItem()
		if !ok {
			return
		}
		a, ok := m.popItem()
		if !ok {
			m.pushItem(b)
			return
		}

		if a.IsString || b.IsString {
			m.pushItem(a)
			m.pushItem(b)
			return
		}

		switch op {
		case '+':
			m.pushItem(IntItem(a.Int + b.Int))
		case '-':
			m.pushItem(IntItem(a.Int - b.Int))
		case '*':
			m.pushItem(IntItem(a.Int * b.Int))
		case '/':
			if b.Int == 0 {
				m.Printf("division by zero")
				return
			}
			m.pushItem(IntItem(a.Int / b.Int))
		case '%':
			if b.Int == 0 {
				m.Printf("division by zero")
				return
			}
			m.pushItem(IntItem(a.Int % b.Int))
		}
	}
}

// builtinColon implements ":": it consumes the instruction immediately
// after itself as the new word's name, collects every instruction up to
// (but not including) the next Word(":") as the body, registers the word,
// and leaves the cursor on the terminating ":" so the outer Run loop's
// unconditional cursor++ lands just past it. A definition with no closing
// ":" runs to the end of the instruction stream.
func builtinColon(m *Machine) {
	nameIdx := m.cursorIndex() + 1
	nameInstr, ok := m.instructionAt(nameIdx)
	if !ok || !nameInstr.IsWord {
		return
	}

	bodyStart := nameIdx + 1
	end := bodyStart
	for {
		instr, ok := m.instructionAt(end)
		if !ok {
			break
		}
		if instr.IsWord && instr.Word == ":" {
			break
		}
		end++
	}

	body := make([]Instruction, end-bodyStart)
	for i := bodyStart; i < end; i++ {
		instr, _ := m.instructionAt(i)
		body[i-bodyStart] = instr
	}

	m.defineWord(nameInstr.Word, body)
	m.setCursor(end)
}
