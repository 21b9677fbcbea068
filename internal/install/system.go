package install

import (
	"os"

	"github.com/google/renameio"
)

// System abstracts filesystem operations needed by the installer.
type System interface {
	Lstat(name string) (os.FileInfo, error)
	Stat(name string) (os.FileInfo, error)
	Readlink(name string) (string, error)
	// WriteFileAtomic replaces filename, including a symlink at that name.
	WriteFileAtomic(filename string, data []byte, perm os.FileMode) error
	// SymlinkAtomic replaces newname with a symlink to oldname.
	SymlinkAtomic(oldname string, newname string) error
}

// RealSystem implements System using the OS filesystem.
type RealSystem struct{}

// Lstat returns a FileInfo describing the named file without following symlinks.
func (RealSystem) Lstat(name string) (os.FileInfo, error) {
	return os.Lstat(name)
}

// Stat returns a FileInfo describing the named file.
func (RealSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// Readlink returns the destination of a symbolic link.
func (RealSystem) Readlink(name string) (string, error) {
	return os.Readlink(name)
}

// WriteFileAtomic writes data to a temp file and renames it over filename.
func (RealSystem) WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(filename, data, perm)
}

// SymlinkAtomic creates a temporary symlink and renames it over newname.
func (RealSystem) SymlinkAtomic(oldname string, newname string) error {
	return renameio.Symlink(oldname, newname)
}
