package forth

import "strconv"

// StackItem is a Forth stack value: either a signed integer or a string,
// mirroring the original's StackItem::{Int,String}.
type StackItem struct {
	IsString bool
	Int      int64
	Str      string
}

// IntItem constructs an integer StackItem.
func IntItem(v int64) StackItem { return StackItem{Int: v} }

// StringItem constructs a string StackItem.
func StringItem(s string) StackItem { return StackItem{IsString: true, Str: s} }

// String renders the item the way the "," word prints it to the formatter.
func (s StackItem) String() string {
	if s.IsString {
		return s.Str
	}
	return strconv.FormatInt(s.Int, 10)
}

// Instruction is one entry in the instruction stream: either a literal Data
// value or a Word naming a built-in or user-defined dictionary entry.
// Mirrors the original's ForthInstruction::{Data,Word}.
type Instruction struct {
	IsWord bool
	Word   string
	Data   StackItem
}

// wordInstruction converts a parsed token into an Instruction: a token that
// parses as a signed decimal integer becomes Data(Int(n)); anything else
// becomes a Word.
func wordInstruction(token string) Instruction {
	if n, err := strconv.ParseInt(token, 10, 64); err == nil {
		return Instruction{Data: IntItem(n)}
	}
	return Instruction{IsWord: true, Word: token}
}

// dataInstruction wraps a literal StackItem (used for parsed string
// literals, which skip the integer-parsing attempt entirely).
func dataInstruction(item StackItem) Instruction {
	return Instruction{Data: item}
}
