package vmm

import "ripos/kernel/mem"

// Page describes a virtual memory page index, analogous to pmm.Frame for
// physical memory.
type Page uintptr

// PageFromAddress returns the Page that contains the given virtual address.
func PageFromAddress(addr uintptr) Page {
	return Page(addr >> mem.PageShift)
}

// Address returns the virtual address for the start of this page.
func (p Page) Address() uintptr {
	return uintptr(p << mem.PageShift)
}

// Offset returns the offset of addr within the page that contains it.
func Offset(addr uintptr) uintptr {
	return addr & (uintptr(mem.PageSize) - 1)
}
