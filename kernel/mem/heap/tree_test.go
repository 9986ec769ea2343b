package heap

import (
	"ripos/kernel/mem"
	"testing"
)

func TestTreeIndexLevel(t *testing.T) {
	specs := []struct {
		index treeIndex
		level uint32
	}{
		{index: 0, level: 1},
		{index: 1, level: 2},
		{index: 2, level: 2},
		{index: 3, level: 3},
		{index: 6, level: 3},
	}

	for specIndex, spec := range specs {
		if got := spec.index.level(); got != spec.level {
			t.Errorf("[spec %d] expected level %d; got %d", specIndex, spec.level, got)
		}
	}
}

func TestTreeIndexLeftRight(t *testing.T) {
	root := rootIndex()
	if got := root.left(); got != 1 {
		t.Errorf("expected left child of root to be 1; got %d", got)
	}
	if got := root.right(); got != 2 {
		t.Errorf("expected right child of root to be 2; got %d", got)
	}
	if got := root.left().left(); got != 3 {
		t.Errorf("expected left-left grandchild to be 3; got %d", got)
	}
}

func newTestTree(pageCount uint64) *pageTree {
	nodes := make([]nodeState, treeSize(pageCount))
	return newPageTree(pageCount, nodes)
}

func TestPageTreeAllocateWholeRoot(t *testing.T) {
	tree := newTestTree(4)

	off, ok := tree.tryAllocate(rootIndex(), uint64(tree.nodes[0].size), 1)
	if !ok {
		t.Fatal("expected allocation to succeed")
	}
	if off != 0 {
		t.Errorf("expected offset 0; got %d", off)
	}
	if tree.nodes[0].allocations != 1 {
		t.Errorf("expected root allocation count 1; got %d", tree.nodes[0].allocations)
	}
}

func TestPageTreeAllocateDescendsOnOverflow(t *testing.T) {
	tree := newTestTree(4)

	rootSize := uint64(tree.nodes[0].size)
	childSize := rootSize / 2

	off1, ok := tree.tryAllocate(rootIndex(), childSize, 1)
	if !ok {
		t.Fatal("expected first allocation to succeed")
	}

	off2, ok := tree.tryAllocate(rootIndex(), childSize, 1)
	if !ok {
		t.Fatal("expected second allocation to succeed")
	}

	if off1 == off2 {
		t.Fatalf("expected distinct offsets, both allocations landed at %d", off1)
	}
}

func TestPageTreeAllocateDeallocateRoundTrip(t *testing.T) {
	tree := newTestTree(8)

	size := uint64(tree.nodes[0].size) / 4
	off, ok := tree.tryAllocate(rootIndex(), size, 1)
	if !ok {
		t.Fatal("expected allocation to succeed")
	}

	tree.markDeallocated(rootIndex(), off, off+size)

	for i := range tree.nodes {
		n := &tree.nodes[i]
		if n.allocations != 0 {
			t.Errorf("node %d: expected 0 allocations after full deallocation; got %d", i, n.allocations)
		}
		if n.offset != 0 {
			t.Errorf("node %d: expected offset 0 after full deallocation; got %d", i, n.offset)
		}
	}
}

func TestPageTreeOutOfMemory(t *testing.T) {
	tree := newTestTree(4)

	rootSize := uint64(tree.nodes[0].size)
	if _, ok := tree.tryAllocate(rootIndex(), rootSize+1, 1); ok {
		t.Fatal("expected allocation larger than the whole region to fail")
	}
}

func TestPageTreeTruncatesNonPowerOfTwoPageCount(t *testing.T) {
	const pageCount = 3
	tree := newTestTree(pageCount)

	var leafTotal uint64
	for i := range tree.nodes {
		if treeIndex(i).level() == tree.leafLevel {
			leafTotal += uint64(tree.nodes[i].size)
		}
	}

	if want := uint64(pageCount) * uint64(mem.PageSize); leafTotal != want {
		t.Errorf("expected leaf sizes to sum to %d bytes (page count truncation); got %d", want, leafTotal)
	}
}
