package forth

// Parse tokenizes text and appends the resulting Instructions to the end of
// instructions, returning the extended slice. Grounded on the original's
// ForthInstructions::add_instructions_to_end:
//   - tokens are split on ASCII space outside string mode
//   - an unescaped '"' toggles string mode; a preceding '\' escapes a
//     literal quote, keeping the toggle from firing
//   - at end of input, a pending non-empty word is flushed
//   - a token that parses as a signed decimal integer becomes Data(Int(n)),
//     otherwise Word(text)
func Parse(instructions []Instruction, text string) []Instruction {
	var word []byte
	stringMode := false

	flush := func() {
		if len(word) == 0 {
			return
		}
		instructions = append(instructions, wordInstruction(string(word)))
		word = word[:0]
	}

	runes := []byte(text)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		var prev byte
		if i > 0 {
			prev = runes[i-1]
		}

		switch {
		case c == ' ' && !stringMode:
			flush()
		case c == '"' && prev != '\\':
			stringMode = !stringMode
			if !stringMode {
				instructions = append(instructions, dataInstruction(StringItem(string(word))))
				word = word[:0]
			}
		case c == '"' && prev == '\\':
			// Replace the escaping backslash already appended to word with
			// the literal quote.
			if len(word) > 0 {
				word = word[:len(word)-1]
			}
			word = append(word, c)
		default:
			word = append(word, c)
		}
	}
	flush()

	return instructions
}
