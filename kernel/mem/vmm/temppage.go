package vmm

import (
	"ripos/kernel"
	"ripos/kernel/mem/pmm"
)

// tinyAllocator is a fixed 3-frame pool. TemporaryPage uses it instead of
// the real frame allocator so that mapping the temporary page never itself
// requires a table-building allocation that would recurse back into the
// paging layer.
type tinyAllocator struct {
	frames [3]pmm.Frame
	used   [3]bool
}

func (t *tinyAllocator) fill(backing pmm.FrameAllocator) *kernel.Error {
	for i := range t.frames {
		if t.used[i] {
			continue
		}
		f, err := backing.Allocate()
		if err != nil {
			return err
		}
		t.frames[i] = f
	}
	return nil
}

func (t *tinyAllocator) Allocate() (pmm.Frame, *kernel.Error) {
	for i, used := range t.used {
		if !used {
			t.used[i] = true
			return t.frames[i], nil
		}
	}
	return pmm.InvalidFrame, errTempPageOutOfFrames
}

func (t *tinyAllocator) Deallocate(f pmm.Frame) *kernel.Error {
	for i, frame := range t.frames {
		if frame == f {
			t.used[i] = false
			return nil
		}
	}
	return nil
}

var errTempPageOutOfFrames = &kernel.Error{Module: "vmm", Message: "temporary page reserve pool exhausted"}

// TemporaryPage provides a single virtual page, backed by a 3-frame reserve
// pool, used to map and edit page-table frames that aren't reachable
// through the recursive mapping (most notably an inactive table's L4 frame
// while it is being constructed).
type TemporaryPage struct {
	mapper  Mapper
	reserve tinyAllocator
}

// NewTemporaryPage creates a TemporaryPage whose reserve pool is filled
// from alloc. The pool is topped up eagerly so that later Map calls never
// need to allocate while a page table is already being edited.
func NewTemporaryPage(alloc pmm.FrameAllocator) (*TemporaryPage, *kernel.Error) {
	tp := &TemporaryPage{}
	if err := tp.reserve.fill(alloc); err != nil {
		return nil, err
	}
	return tp, nil
}

// Map installs frame at the temporary page's fixed virtual address and
// returns that page.
func (tp *TemporaryPage) Map(frame pmm.Frame) (Page, *kernel.Error) {
	page := PageFromAddress(tempMappingAddr)
	if err := tp.mapper.MapPage(page, frame, FlagRW, &tp.reserve); err != nil {
		return 0, err
	}
	return page, nil
}

// Unmap tears down the mapping installed by Map.
func (tp *TemporaryPage) Unmap() {
	_ = tp.mapper.Unmap(PageFromAddress(tempMappingAddr), &tp.reserve)
}
