package copier

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/copybridge/internal/platform"
)

// DefaultBufferSize is the copy buffer used when Options.BufferSize is unset.
const DefaultBufferSize = 64000

// Options controls how a tree is copied.
type Options struct {
	// ContentsOnly merges the children of source directly into destination
	// instead of creating destination/<base(source)>.
	ContentsOnly bool
	// Overwrite replaces existing files at colliding paths.
	Overwrite bool
	// SkipExisting leaves existing files alone when Overwrite is false.
	SkipExisting bool
	// BufferSize is the read/write buffer in bytes.
	BufferSize int
	// Depth limits recursion to that many levels below source. Zero means unlimited.
	Depth int
}

// DefaultOptions returns the conventional copy options: overwrite on,
// skip off, nest the source directory, unlimited depth.
func DefaultOptions() Options {
	return Options{
		Overwrite:  true,
		BufferSize: DefaultBufferSize,
	}
}

// Stats summarizes a finished (or aborted) copy.
type Stats struct {
	Dirs    int   // directories created or merged below the target root
	Files   int   // regular files written
	Skipped int   // entries left alone (existing files, special files, depth limit)
	Bytes   int64 // file bytes written
}

// Copier copies directory trees with a fixed set of options. It holds no
// per-copy state and is safe for concurrent use.
type Copier struct {
	opts Options
}

// New returns a Copier using opts.
func New(opts Options) *Copier {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	return &Copier{opts: opts}
}

// Options returns the options the Copier was built with.
func (c *Copier) Options() Options { return c.opts }

// CopyDirectory copies the contents of source into destination, creating
// destination if needed and overwriting colliding files.
func CopyDirectory(source, destination string) error {
	opts := DefaultOptions()
	opts.ContentsOnly = true
	_, err := New(opts).Copy(source, destination)
	return err
}

// Copy copies the tree at source onto destination. On failure the returned
// Stats reflect what was written before the first error; nothing is rolled back.
func (c *Copier) Copy(source, destination string) (Stats, error) {
	srcInfo, err := os.Stat(source)
	if err != nil {
		return Stats{}, newError("read source", source, err)
	}
	if !srcInfo.IsDir() {
		return Stats{}, &Error{Kind: KindInput, Op: "read source", Path: source, Err: ErrNotDirectory}
	}

	srcRoot, err := resolvePath(source)
	if err != nil {
		return Stats{}, newError("resolve source", source, err)
	}

	target := destination
	if !c.opts.ContentsOnly {
		abs, err := filepath.Abs(source)
		if err != nil {
			return Stats{}, newError("resolve source", source, err)
		}
		target = filepath.Join(destination, filepath.Base(abs))
	}

	targetRoot, err := resolvePath(target)
	if err != nil {
		return Stats{}, newError("resolve destination", target, err)
	}
	if within(srcRoot, targetRoot) {
		return Stats{}, &Error{Kind: KindInput, Op: "copy", Path: target, Err: ErrInsideSource}
	}

	w := &walker{
		opts:    c.opts,
		srcRoot: srcRoot,
		active:  map[string]bool{srcRoot: true},
		buf:     make([]byte, c.opts.BufferSize),
	}
	if err := w.ensureDir(target, srcInfo); err != nil {
		return w.stats, err
	}
	err = w.copyTree(source, target, targetRoot, 1)
	return w.stats, err
}

type walker struct {
	opts    Options
	srcRoot string          // source with symlinks resolved
	active  map[string]bool // resolved source directories on the current walk path
	buf     []byte
	stats   Stats
}

// copyTree copies the children of srcDir into dstDir. realDst is dstDir with
// every symlink resolved, so checks see where writes actually land.
func (w *walker) copyTree(srcDir, dstDir, realDst string, level int) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return newError("read directory", srcDir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		srcPath := filepath.Join(srcDir, name)
		dstPath := filepath.Join(dstDir, name)

		if w.opts.Depth > 0 && level > w.opts.Depth {
			w.stats.Skipped++
			continue
		}

		realPath, err := w.resolveDest(filepath.Join(realDst, name), dstPath)
		if err != nil {
			return err
		}

		// Stat follows symlinks, the same as a plain cp -r of the entry would.
		info, err := os.Stat(srcPath)
		if err != nil {
			return newError("stat source", srcPath, err)
		}

		switch {
		case info.IsDir():
			realSrc, err := filepath.EvalSymlinks(srcPath)
			if err != nil {
				return newError("resolve source", srcPath, err)
			}
			if w.active[realSrc] {
				return &Error{Kind: KindInput, Op: "read directory", Path: srcPath, Err: ErrSymlinkLoop}
			}
			if err := w.ensureDir(dstPath, info); err != nil {
				return err
			}
			w.stats.Dirs++
			w.active[realSrc] = true
			err = w.copyTree(srcPath, dstPath, realPath, level+1)
			delete(w.active, realSrc)
			if err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := w.copyFile(srcPath, dstPath, info); err != nil {
				return err
			}
		default:
			// Devices, sockets and pipes have no content to copy.
			w.stats.Skipped++
		}
	}

	return nil
}

// resolveDest returns where a write to dst lands once symlinks already in the
// destination are followed. real is dst below an already resolved parent.
// Landing inside the source, or on a dangling link, is an error.
func (w *walker) resolveDest(real, dst string) (string, error) {
	info, err := os.Lstat(real)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return "", newError("stat destination", dst, err)
	case info.Mode()&fs.ModeSymlink != 0:
		resolved, err := filepath.EvalSymlinks(real)
		if errors.Is(err, fs.ErrNotExist) {
			return "", &Error{Kind: KindConflict, Op: "copy", Path: dst, Err: ErrBrokenLink}
		}
		if err != nil {
			return "", newError("resolve destination", dst, err)
		}
		real = resolved
	}

	if within(w.srcRoot, real) {
		return "", &Error{Kind: KindConflict, Op: "copy", Path: dst, Err: ErrOverlapsSource}
	}
	return real, nil
}

// ensureDir makes sure dst is a directory, creating it (and parents) with the
// permission bits of src. Owner rwx is always added so the copy can fill it.
func (w *walker) ensureDir(dst string, src fs.FileInfo) error {
	existing, err := os.Stat(dst)
	switch {
	case err == nil:
		if !existing.IsDir() {
			return &Error{Kind: KindConflict, Op: "create directory", Path: dst, Err: ErrTypeConflict}
		}
		return nil
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dst, src.Mode().Perm()|0700); err != nil {
			return newError("create directory", dst, err)
		}
		return nil
	default:
		return newError("stat destination", dst, err)
	}
}

func (w *walker) copyFile(src, dst string, info fs.FileInfo) error {
	existing, err := os.Stat(dst)
	switch {
	case err == nil:
		if existing.IsDir() {
			return &Error{Kind: KindConflict, Op: "copy file", Path: dst, Err: ErrTypeConflict}
		}
		if !w.opts.Overwrite {
			if w.opts.SkipExisting {
				w.stats.Skipped++
				return nil
			}
			return &Error{Kind: KindConflict, Op: "copy file", Path: dst, Err: ErrExists}
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return newError("stat destination", dst, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return newError("open source", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return newError("create file", dst, err)
	}

	n, err := io.CopyBuffer(out, in, w.buf)
	if err != nil {
		out.Close()
		return newError("write file", dst, err)
	}
	if err := out.Close(); err != nil {
		return newError("write file", dst, err)
	}

	// OpenFile only applies the mode on create; an overwritten file keeps its old bits otherwise.
	if err := platform.CopyMode(dst, info); err != nil {
		return newError("set permissions", dst, err)
	}

	w.stats.Files++
	w.stats.Bytes += n
	return nil
}

// resolvePath returns the absolute form of p with symlinks evaluated on its
// deepest existing ancestor. Missing trailing components are joined back verbatim.
func resolvePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}

	cur := abs
	var rest []string
	for {
		_, err := os.Lstat(cur)
		if err == nil {
			real, err := filepath.EvalSymlinks(cur)
			if err != nil {
				return "", err
			}
			return filepath.Join(append([]string{real}, rest...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		rest = append([]string{filepath.Base(cur)}, rest...)
		cur = parent
	}
}

// within reports whether p is root or lies below it. Both must be clean absolute paths.
func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
