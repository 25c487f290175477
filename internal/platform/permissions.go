package platform

import (
	"io/fs"
	"os"
	"runtime"
)

// Chmod sets file permissions. On Windows this is a no-op because Windows
// does not support Unix-style permission bits.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// CopyMode applies the permission bits of src to the entry at dst.
// Type bits, setuid/setgid and sticky are not carried over.
func CopyMode(dst string, src fs.FileInfo) error {
	return Chmod(dst, src.Mode().Perm())
}
