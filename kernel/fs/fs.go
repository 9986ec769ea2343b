// Package fs implements an in-memory filesystem tree of directories, data
// files and installed app files, guarded by a per-node RWMutex lock
// discipline: a handle acquires exactly the locks on the path it traverses,
// never the whole tree, so concurrent access to unrelated subtrees never
// contends. Grounded on the original's fs crate (lib.rs, directory.rs,
// handle.rs, path.rs).
package fs

import "ripos/kernel/app"

var (
	root            *directory
	activeDirectory Path
)

// Start initializes the filesystem with an empty root directory. It must be
// called once, after the heap is available, before any other function in
// this package.
func Start() {
	root = newDirectory()
	activeDirectory = ""
}

// ActiveDirectory returns the shell's current working directory.
func ActiveDirectory() Path {
	return activeDirectory
}

// SetActiveDirectory updates the shell's current working directory.
func SetActiveDirectory(p Path) {
	activeDirectory = p.Clean()
}

// GetFile opens path for reading.
func GetFile(path Path) (*ReadHandle, error) {
	return newReadHandle(root, path)
}

// GetFileWrite opens path for writing.
func GetFileWrite(path Path) (*WriteHandle, error) {
	return newWriteHandle(root, path)
}

// GetFileRelative opens path for reading, resolved against ActiveDirectory.
func GetFileRelative(path Path) (*ReadHandle, error) {
	return GetFile(activeDirectory.Append(path))
}

// ReadDir lists path's children, failing with ErrIncorrectFileType if path
// doesn't name a directory.
func ReadDir(path Path) ([]Metadata, error) {
	h, err := GetFile(path)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	return h.ReadDir()
}

// createFile opens path's parent for writing and inserts n under its final
// component, then returns a fresh write handle to the newly created node.
// Grounded on the original's create_file, which separately locks the parent
// (to add the child) and then the freshly created child (to hand back to
// the caller), rather than holding one lock across both steps.
func createFile(path Path, n node) (*WriteHandle, error) {
	clean := path.Clean()
	name := clean.FileName()
	if name == "" {
		return nil, ErrEmptyPath
	}

	parentHandle, err := GetFileWrite(clean.Parent())
	if err != nil {
		return nil, ErrBusy
	}
	addErr := parentHandle.addChild(name, n)
	parentHandle.Close()
	if addErr != nil {
		return nil, addErr
	}

	return GetFileWrite(clean)
}

// CreateDataFile creates a data file at path holding a copy of data and
// returns a write handle to it.
func CreateDataFile(path Path, data []byte) (*WriteHandle, error) {
	return createFile(path, &dataFile{data: append([]byte(nil), data...)})
}

// CreateDir creates an empty directory at path and returns a write handle
// to it.
func CreateDir(path Path) (*WriteHandle, error) {
	return createFile(path, newDirectory())
}

// InstallApp installs ctor as a runnable app file at path.
func InstallApp(path Path, ctor app.Constructor) (*WriteHandle, error) {
	return createFile(path, &appFile{constructor: ctor})
}
