package heap

// nodeState tracks the allocation state of a single tree node: the byte
// size of the range it covers, the high-water mark of the last partial
// allocation made against it, and how many live allocations currently
// intersect its range.
type nodeState struct {
	size        uintptr
	offset      uintptr
	allocations uint32
}

// allocateOnce records a partial allocation that only touches part of this
// node's range. offset is the new high-water mark; it only ever grows,
// mirroring the fact that once bytes within a node are claimed they are
// never handed back to a different, unrelated allocation.
func (n *nodeState) allocateOnce(offset uintptr) {
	n.allocations++
	if offset > n.size {
		offset = n.size
	}
	if offset > n.offset {
		n.offset = offset
	}
}

// deallocateOnce reverses one allocateOnce call. Once the last partial
// allocation intersecting this node is gone, the high-water mark resets so
// the node's capacity can be reused from the start again.
func (n *nodeState) deallocateOnce() {
	n.allocations--
	if n.allocations == 0 {
		n.offset = 0
	}
}

// allocateWhole marks the entire node as claimed by a single allocation that
// fully contains its range. It panics if the node was already allocated, in
// or out of whole-node mode: markAllocated never calls this on a
// node with existing allocations.
func (n *nodeState) allocateWhole() {
	if n.allocations != 0 {
		panic("heap: allocateWhole on a node with existing allocations")
	}
	n.offset = n.size
	n.allocations = 1
}

// deallocateWhole reverses an allocateWhole call. It panics if the node's
// allocation count isn't exactly one, which would mean the node was never
// whole-allocated in the first place.
func (n *nodeState) deallocateWhole() {
	if n.allocations != 1 {
		panic("heap: deallocateWhole on a node without a matching whole allocation")
	}
	n.offset = 0
	n.allocations = 0
}
