package copier

import (
	"errors"
	"io/fs"
	"syscall"
)

// Kind classifies a copy failure.
type Kind int

const (
	// KindOther covers OS failures that fit none of the other kinds (e.g. EIO).
	KindOther Kind = iota
	// KindInput means the source is missing, not a directory, or the
	// destination cannot be derived from it.
	KindInput
	// KindPermission means read or write access was denied somewhere.
	KindPermission
	// KindResource means the system ran out of something: disk, quota, descriptors.
	KindResource
	// KindConflict means a destination entry has a type that overwriting cannot reconcile.
	KindConflict
)

// String returns the lowercase kind name used in logs and metric labels.
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindPermission:
		return "permission"
	case KindResource:
		return "resource"
	case KindConflict:
		return "conflict"
	default:
		return "other"
	}
}

var (
	ErrNotDirectory   = errors.New("not a directory")
	ErrTypeConflict   = errors.New("destination entry has a different type")
	ErrExists         = errors.New("destination already exists")
	ErrInsideSource   = errors.New("destination is inside the source directory")
	ErrOverlapsSource = errors.New("destination path falls inside the source tree")
	ErrBrokenLink     = errors.New("destination is a dangling symbolic link")
	ErrSymlinkLoop    = errors.New("symbolic link cycles back to a directory being copied")
)

// Error describes the first failure of a copy.
type Error struct {
	Kind Kind
	Op   string // what was being done, e.g. "create directory"
	Path string // the path the operation failed on
	Err  error
}

func (e *Error) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain, or KindOther.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindOther
}

// newError wraps an OS error. The path is taken from the arguments, so a
// *fs.PathError is unwrapped to keep it from appearing twice in the message.
func newError(op, path string, err error) *Error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	return &Error{Kind: classify(err), Op: op, Path: path, Err: err}
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, ErrTypeConflict), errors.Is(err, ErrExists), errors.Is(err, ErrOverlapsSource):
		return KindConflict
	case errors.Is(err, ErrInsideSource), errors.Is(err, ErrNotDirectory):
		return KindInput
	case errors.Is(err, fs.ErrPermission):
		return KindPermission
	case errors.Is(err, fs.ErrNotExist):
		return KindInput
	case errors.Is(err, syscall.ENOSPC), errors.Is(err, syscall.EDQUOT),
		errors.Is(err, syscall.EMFILE), errors.Is(err, syscall.ENFILE),
		errors.Is(err, syscall.EFBIG):
		return KindResource
	case errors.Is(err, syscall.ENOTDIR), errors.Is(err, syscall.EISDIR), errors.Is(err, fs.ErrExist):
		return KindConflict
	default:
		return KindOther
	}
}
