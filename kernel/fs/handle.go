package fs

import "ripos/kernel/app"

// unlocker is a deferred release of one acquired lock, pushed in acquisition
// order and run in reverse on Close — the same nested-lock release
// discipline the original's FileHandleLocks enum encodes as a fixed set of
// guard fields.
type unlocker func()

// ReadHandle holds a chain of read-locks from the root down to the target
// node, acquired via non-blocking TryRLock calls so that a handle attempt
// that would have to wait instead fails fast with ErrBusy.
type ReadHandle struct {
	path    Path
	target  node
	parent  *directory
	name    string
	unlocks []unlocker
}

// WriteHandle is a ReadHandle's write-locking counterpart: every ancestor
// directory is read-locked (a sibling may still be read concurrently) and
// only the leaf itself is write-locked, mirroring the original's
// FileHandleLocks::Writing (read locks down to the parent, one write lock on
// the target).
type WriteHandle struct {
	path    Path
	target  node
	parent  *directory
	name    string
	unlocks []unlocker
}

// acquireChain walks from root to the named path, acquiring a read-lock on
// every directory traversed along the way. It returns the parent directory,
// the final path component's name, the child node found there (nil if the
// path names the root itself), and the unlock chain built up so far. The
// caller is responsible for adding the leaf's own lock (or, for the root
// case, using parent directly) and for releasing the whole chain on error.
func acquireChain(root *directory, segments []string) (parent *directory, name string, leaf node, unlocks []unlocker, err error) {
	cur := root
	if !cur.mu.TryRLock() {
		return nil, "", nil, nil, ErrBusy
	}
	unlocks = append(unlocks, cur.mu.RUnlock)

	if len(segments) == 0 {
		return cur, "", nil, unlocks, nil
	}

	for _, seg := range segments[:len(segments)-1] {
		child, ok := cur.tryFetch(seg)
		if !ok {
			releaseAll(unlocks)
			return nil, "", nil, nil, ErrFileNotFound
		}
		childDir, ok := child.(*directory)
		if !ok {
			releaseAll(unlocks)
			return nil, "", nil, nil, ErrInvalidParentDir
		}
		if !childDir.mu.TryRLock() {
			releaseAll(unlocks)
			return nil, "", nil, nil, ErrBusy
		}
		unlocks = append(unlocks, childDir.mu.RUnlock)
		cur = childDir
	}

	name = segments[len(segments)-1]
	child, ok := cur.tryFetch(name)
	if !ok {
		releaseAll(unlocks)
		return nil, "", nil, nil, ErrFileNotFound
	}

	return cur, name, child, unlocks, nil
}

func releaseAll(unlocks []unlocker) {
	for i := len(unlocks) - 1; i >= 0; i-- {
		unlocks[i]()
	}
}

// newReadHandle resolves path to a ReadHandle, acquiring a read-lock chain
// down to (and including) the target node itself.
func newReadHandle(root *directory, path Path) (*ReadHandle, error) {
	clean := path.Clean()
	segments := clean.Components()

	parent, name, leaf, unlocks, err := acquireChain(root, segments)
	if err != nil {
		return nil, err
	}

	if leaf == nil {
		// The path names the root itself; parent.mu is already read-locked.
		return &ReadHandle{path: clean, target: parent, unlocks: unlocks}, nil
	}

	if !tryRLockNode(leaf) {
		releaseAll(unlocks)
		return nil, ErrBusy
	}
	unlocks = append(unlocks, runlockNodeFn(leaf))

	return &ReadHandle{path: clean, target: leaf, parent: parent, name: name, unlocks: unlocks}, nil
}

// newWriteHandle resolves path to a WriteHandle: ancestors are read-locked,
// the target itself is write-locked.
func newWriteHandle(root *directory, path Path) (*WriteHandle, error) {
	clean := path.Clean()
	segments := clean.Components()

	parent, name, leaf, unlocks, err := acquireChain(root, segments)
	if err != nil {
		return nil, err
	}

	if leaf == nil {
		// sync.RWMutex has no lock-upgrade operation, so the root's
		// read-lock from acquireChain is released and a write-lock
		// re-acquired in its place — matching the original's WritingRoot
		// special case, which always takes the write lock directly rather
		// than upgrading.
		releaseAll(unlocks)
		if !root.mu.TryLock() {
			return nil, ErrBusy
		}
		return &WriteHandle{path: clean, target: root, unlocks: []unlocker{root.mu.Unlock}}, nil
	}

	if !tryLockNode(leaf) {
		releaseAll(unlocks)
		return nil, ErrBusy
	}
	unlocks = append(unlocks, unlockNodeFn(leaf))

	return &WriteHandle{path: clean, target: leaf, parent: parent, name: name, unlocks: unlocks}, nil
}

func tryRLockNode(n node) bool {
	switch v := n.(type) {
	case *directory:
		return v.mu.TryRLock()
	case *dataFile:
		return v.mu.TryRLock()
	case *appFile:
		return v.mu.TryRLock()
	default:
		return false
	}
}

func runlockNodeFn(n node) unlocker {
	switch v := n.(type) {
	case *directory:
		return v.mu.RUnlock
	case *dataFile:
		return v.mu.RUnlock
	case *appFile:
		return v.mu.RUnlock
	default:
		return func() {}
	}
}

func tryLockNode(n node) bool {
	switch v := n.(type) {
	case *directory:
		return v.mu.TryLock()
	case *dataFile:
		return v.mu.TryLock()
	case *appFile:
		return v.mu.TryLock()
	default:
		return false
	}
}

func unlockNodeFn(n node) unlocker {
	switch v := n.(type) {
	case *directory:
		return v.mu.Unlock
	case *dataFile:
		return v.mu.Unlock
	case *appFile:
		return v.mu.Unlock
	default:
		return func() {}
	}
}

// Close releases every lock this handle is holding, in reverse acquisition
// order. A handle must not be used after Close.
func (h *ReadHandle) Close() { releaseAll(h.unlocks) }

// Close releases every lock this handle is holding, in reverse acquisition
// order. A handle must not be used after Close.
func (h *WriteHandle) Close() { releaseAll(h.unlocks) }

// Path returns the cleaned path this handle was opened against.
func (h *ReadHandle) Path() Path { return h.path }
func (h *WriteHandle) Path() Path { return h.path }

// IsDirectory reports whether the handle's target is a directory.
func (h *ReadHandle) IsDirectory() bool {
	_, ok := h.target.(*directory)
	return ok
}

// ReadDir lists the target directory's children. It returns
// ErrIncorrectFileType if the target isn't a directory.
func (h *ReadHandle) ReadDir() ([]Metadata, error) {
	dir, ok := h.target.(*directory)
	if !ok {
		return nil, ErrIncorrectFileType
	}
	return dir.listAll(), nil
}

// ReadFile returns a copy of the target data file's contents. It returns
// ErrIncorrectFileType if the target isn't a data file.
func (h *ReadHandle) ReadFile() ([]byte, error) {
	df, ok := h.target.(*dataFile)
	if !ok {
		return nil, ErrIncorrectFileType
	}
	out := make([]byte, len(df.data))
	copy(out, df.data)
	return out, nil
}

// LaunchApp instantiates the target app file's program. It returns
// ErrIncorrectFileType if the target isn't an app file.
func (h *ReadHandle) LaunchApp() (app.Program, error) {
	af, ok := h.target.(*appFile)
	if !ok {
		return nil, ErrIncorrectFileType
	}
	return af.constructor(), nil
}

// WriteFile replaces the target data file's contents. It returns
// ErrIncorrectFileType if the target isn't a data file.
func (h *WriteHandle) WriteFile(data []byte) error {
	df, ok := h.target.(*dataFile)
	if !ok {
		return ErrIncorrectFileType
	}
	df.data = append([]byte(nil), data...)
	return nil
}

// addChild inserts a new node named name under the target, which must be a
// directory. It returns ErrIncorrectFileType otherwise, or
// ErrNameAlreadyExists if name is already taken. Unexported: only fs.go's
// top-level Create* helpers construct node values, since node's concrete
// types are all unexported.
func (h *WriteHandle) addChild(name string, n node) error {
	dir, ok := h.target.(*directory)
	if !ok {
		return ErrIncorrectFileType
	}
	return dir.addChild(name, n)
}
