package fs

import (
	"errors"
	"ripos/kernel/app"
	"sync"
)

// Sentinel errors, grounded on the original's FileSystemError variants.
// Post-boot filesystem errors use ordinary Go errors (the heap is live by
// the time the filesystem starts), unlike the kernel.Error sentinels used
// for pre-heap boot failures.
var (
	ErrNotInitialized     = errors.New("fs: filesystem not initialized")
	ErrIncorrectFileType  = errors.New("fs: incorrect file type")
	ErrFileNotFound       = errors.New("fs: file not found")
	ErrDirectoryNotFound  = errors.New("fs: directory not found")
	ErrInvalidParentDir   = errors.New("fs: invalid parent directory")
	ErrBusy               = errors.New("fs: busy")
	ErrEmptyPath          = errors.New("fs: empty path")
	ErrNameAlreadyExists  = errors.New("fs: name already exists")
)

// FileType identifies the concrete kind behind a node.
type FileType uint8

const (
	TypeDirectory FileType = iota
	TypeData
	TypeApp
)

// node is implemented by every kind of filesystem entry: *directory (an
// interior node), *dataFile (a leaf holding raw bytes) and *appFile (a leaf
// holding an installed app.Constructor). Each carries its own RWMutex so
// that handle acquisition can lock exactly the nodes on a path, exactly the
// original's per-KaggFile spin::RwLock discipline.
type node interface {
	fileType() FileType
}

// dataFile is a leaf node holding an in-memory byte blob.
type dataFile struct {
	mu   sync.RWMutex
	data []byte
}

func (*dataFile) fileType() FileType { return TypeData }

// appFile is a leaf node holding an installed program constructor.
type appFile struct {
	mu          sync.RWMutex
	constructor app.Constructor
}

func (*appFile) fileType() FileType { return TypeApp }

// Metadata describes one entry returned by a directory listing.
type Metadata struct {
	Name string
	Type FileType
}
