// Package kernel contains the types and helpers shared by every other
// package in ripos. It must not import anything beyond the standard library
// since it is loaded before the heap is available.
package kernel

// Error is the error type used throughout the kernel before the heap
// allocator is available. Unlike errors.New, constructing an Error performs
// no allocation when used as a package-level *Error sentinel.
type Error struct {
	Module  string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return "[" + e.Module + "] " + e.Message
}
