package fs

import "sync"

// directory is an interior filesystem node: a name-to-node map guarded by
// its own RWMutex, grounded on the original's Directory(HashMap<String,
// RwLock<KaggFile>>) — the map itself and each child's contents are locked
// independently, so a reader walking into a subdirectory only ever holds
// the locks on the path it actually traverses.
type directory struct {
	mu       sync.RWMutex
	children map[string]node
}

func (*directory) fileType() FileType { return TypeDirectory }

func newDirectory() *directory {
	return &directory{children: make(map[string]node)}
}

// tryFetch looks up name in d's child map. It performs no locking of its
// own: every call site (acquireChain's traversal loop) invokes tryFetch on a
// directory it is already holding locked — the initial root.mu.TryRLock(), or
// the previous iteration's childDir.mu.TryRLock() before descending into
// it — so d.mu is already guarding the map. Taking a second d.mu.RLock()
// here would be a recursive read-lock on the same goroutine, which
// sync.RWMutex's writer-preference semantics can deadlock against a
// concurrent d.mu.Lock() (addChild/removeChild) arriving between the two
// acquisitions. Grounded on the original's Directory::fetch, a bare
// self.0.get(file) relying on the caller's already-held RwLock guard rather
// than taking a second one.
func (d *directory) tryFetch(name string) (node, bool) {
	n, ok := d.children[name]
	return n, ok
}

// addChild inserts n under name. It reports ErrNameAlreadyExists if the name
// is already taken, mirroring the original's add_file (which silently
// overwrote); the spec requires rejecting collisions instead. Like
// tryFetch, it takes no lock of its own: its sole caller,
// WriteHandle.addChild, only ever calls it on a handle's own target, which
// newWriteHandle has already write-locked — a second d.mu.Lock() here would
// deadlock unconditionally against the lock this same goroutine already
// holds, since sync.Mutex/RWMutex is never re-entrant.
func (d *directory) addChild(name string, n node) error {
	if _, exists := d.children[name]; exists {
		return ErrNameAlreadyExists
	}

	d.children[name] = n
	return nil
}

// removeChild deletes name from d, if present. Go's garbage collector
// reclaims the orphaned node once every handle referencing it is released;
// no tombstone value is needed (see DESIGN.md). Takes no lock of its own,
// for the same reason as addChild: any future caller is expected to invoke
// it through a WriteHandle that already holds d's write lock.
func (d *directory) removeChild(name string) {
	delete(d.children, name)
}

// listAll returns metadata for every child currently in the directory.
// Like tryFetch, it performs no locking of its own: its sole caller,
// ReadHandle.ReadDir, only ever calls it on a handle's own target, which is
// already read-locked by newReadHandle before ReadDir can be invoked.
func (d *directory) listAll() []Metadata {
	out := make([]Metadata, 0, len(d.children))
	for name, n := range d.children {
		out = append(out, Metadata{Name: name, Type: n.fileType()})
	}
	return out
}
