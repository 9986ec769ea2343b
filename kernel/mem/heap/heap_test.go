package heap

import "testing"

// newTestAllocator builds an Allocator directly over an in-memory tree,
// bypassing New (which requires a live recursive page table and is
// exercised only on real hardware / in an emulator).
func newTestAllocator(pageCount uint64) *Allocator {
	nodes := make([]nodeState, treeSize(pageCount))
	return &Allocator{
		base:      0x1000,
		pageCount: pageCount,
		nodes:     nodes,
		tree:      newPageTree(pageCount, nodes),
	}
}

func TestAllocatorRejectsZeroSize(t *testing.T) {
	a := newTestAllocator(4)
	if _, err := a.Allocate(Layout{Size: 0, Align: 1}); err != errZeroSize {
		t.Fatalf("expected errZeroSize; got %v", err)
	}
}

func TestAllocatorRejectsBadAlignment(t *testing.T) {
	a := newTestAllocator(4)
	if _, err := a.Allocate(Layout{Size: 8, Align: 3}); err != errBadAlignment {
		t.Fatalf("expected errBadAlignment; got %v", err)
	}
}

func TestAllocatorAllocateDeallocate(t *testing.T) {
	a := newTestAllocator(8)

	ptr, err := a.Allocate(Layout{Size: 64, Align: 16})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ptr < a.base {
		t.Fatalf("expected returned pointer >= base; got %x", ptr)
	}

	a.Deallocate(ptr, Layout{Size: 64, Align: 16})

	for i := range a.nodes {
		if a.nodes[i].allocations != 0 {
			t.Errorf("node %d: expected 0 allocations after deallocate; got %d", i, a.nodes[i].allocations)
		}
	}
}

func TestAllocatorExhaustion(t *testing.T) {
	a := newTestAllocator(1)

	regionSize := uint64(a.nodes[0].size)
	if _, err := a.Allocate(Layout{Size: uintptr(regionSize) + 1, Align: 1}); err != errOutOfMemory {
		t.Fatalf("expected errOutOfMemory; got %v", err)
	}
}
