package heap

import "ripos/kernel/mem"

// treeIndex names a node in the size-indexed binary tree by its position in
// a flat array: root is 0, and for index i the left child is 2i+1 and the
// right child is 2i+2.
type treeIndex uint32

func rootIndex() treeIndex { return 0 }

func (i treeIndex) left() treeIndex  { return 2*i + 1 }
func (i treeIndex) right() treeIndex { return 2*i + 2 }

// level returns the 1-based depth of the node within the tree (the root is
// level 1).
func (i treeIndex) level() uint32 {
	return bitLen(uint64(i) + 1)
}

// offsetWithinLevel returns the 0-based position of the node among the
// other nodes at the same level.
func (i treeIndex) offsetWithinLevel() uint64 {
	n := uint64(i) + 1
	return n - (uint64(1) << (bitLen(n) - 1))
}

// bitLen returns the number of bits needed to represent v (0 for v == 0).
func bitLen(v uint64) uint32 {
	var n uint32
	for v != 0 {
		n++
		v >>= 1
	}
	return n
}

// pageTree is the size-indexed binary tree backing a heap region of
// pageCount pages. nodes[0] is the root and covers the entire region (after
// truncation for any non-power-of-two page count); each level below halves
// the covered size until the leaves describe a single page each.
type pageTree struct {
	nodes     []nodeState
	leafLevel uint32
}

// newPageTree builds the tree covering pageCount pages, truncating the size
// of any node whose nominal range extends past the last real page.
func newPageTree(pageCount uint64, storage []nodeState) *pageTree {
	totalSize := pageCount * uint64(mem.PageSize)

	t := &pageTree{nodes: storage}
	t.leafLevel = bitLen(uint64(len(storage)))

	for idx := range t.nodes {
		i := treeIndex(idx)
		size := t.sizeOf(i)
		addr := size * i.offsetWithinLevel()
		if addr >= totalSize {
			size = 0
		} else if addr+size > totalSize {
			size = totalSize - addr
		}
		t.nodes[idx] = nodeState{size: uintptr(size)}
	}

	return t
}

// treeSize returns the number of tree nodes required to address pageCount
// pages: the smallest (2^d - 1) whose 2^(d-1) one-page leaves cover
// pageCount pages.
func treeSize(pageCount uint64) uint64 {
	leaves := uint64(1)
	for leaves < pageCount {
		leaves <<= 1
	}
	return 2*leaves - 1
}

func (t *pageTree) sizeOf(i treeIndex) uint64 {
	shift := t.leafLevel - i.level()
	return (uint64(1) << shift) * uint64(mem.PageSize)
}

func (t *pageTree) addressOf(i treeIndex) uint64 {
	return t.sizeOf(i) * i.offsetWithinLevel()
}

func (t *pageTree) inBounds(i treeIndex) bool {
	return int(i) < len(t.nodes)
}

// tryAllocate attempts to satisfy an allocation of size bytes aligned to
// align bytes, starting the best-fit descent at node i. It returns the
// relative offset (from the start of the region) of the allocation and
// true, or false if no node in this subtree can satisfy the request.
func (t *pageTree) tryAllocate(i treeIndex, size, align uint64) (uint64, bool) {
	if !t.inBounds(i) {
		return 0, false
	}

	node := &t.nodes[i]
	nodeAddr := t.addressOf(i)

	first := alignUp(uint64(node.offset), align)
	last := first + size

	if last <= uint64(node.size) {
		lo, hi := nodeAddr+first, nodeAddr+last
		t.markAllocated(rootIndex(), lo, hi)
		return lo, true
	}

	if off, ok := t.tryAllocate(i.left(), size, align); ok {
		return off, true
	}
	return t.tryAllocate(i.right(), size, align)
}

// markAllocated applies the overlap rule for the freshly committed range
// [lo, hi) to node i and then to both of its children: a node fully inside
// the range is allocated whole, a node partially touched by the range has
// its high-water mark raised, and a node untouched by the range (and not
// containing it) is left alone, along with its whole subtree.
func (t *pageTree) markAllocated(i treeIndex, lo, hi uint64) {
	if !t.inBounds(i) {
		return
	}

	node := &t.nodes[i]
	nodeLo := t.addressOf(i)
	nodeHi := nodeLo + uint64(node.size)

	switch {
	case hi <= nodeLo || lo >= nodeHi || node.size == 0:
		return
	case lo <= nodeLo && hi >= nodeHi:
		node.allocateWhole()
	default:
		node.allocateOnce(uintptr(hi - nodeLo))
	}

	t.markAllocated(i.right(), lo, hi)
	t.markAllocated(i.left(), lo, hi)
}

// markDeallocated reverses a prior markAllocated over the same range,
// applying deallocateWhole/deallocateOnce symmetrically.
func (t *pageTree) markDeallocated(i treeIndex, lo, hi uint64) {
	if !t.inBounds(i) {
		return
	}

	node := &t.nodes[i]
	nodeLo := t.addressOf(i)
	nodeHi := nodeLo + uint64(node.size)

	switch {
	case hi <= nodeLo || lo >= nodeHi || node.size == 0:
		return
	case lo <= nodeLo && hi >= nodeHi:
		node.deallocateWhole()
	default:
		node.deallocateOnce()
	}

	t.markDeallocated(i.right(), lo, hi)
	t.markDeallocated(i.left(), lo, hi)
}

func alignUp(v, align uint64) uint64 {
	if align == 0 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}
