package atomicfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// Some references:
// - https://www.slideshare.net/nan1nan1/eat-my-data
// - https://lwn.net/Articles/457667/

var (
	// ErrCancelled is returned by calls subsequent to RemoveIfNotClosed()
	ErrCancelled = errors.New("cancelled")

	// ensure we implement desired interface
	_ io.WriteCloser = &File{}
)

// File allows writing to a file atomically
// i.e. if the whole file is not written successfully, the destination
// is left untouched and the temporary file is removed
type File struct {
	dstPath string
	dir     string
	perm    os.FileMode
	tmpFile *os.File
	err     error

	tmpPath string // for debugging
}

// New creates new File. Destination gets 0644 permissions.
func New(path string) (*File, error) {
	return NewWithPerm(path, 0644)
}

// NewWithPerm is like New but the destination file gets perm
func NewWithPerm(path string, perm os.FileMode) (*File, error) {
	dir, fName := filepath.Split(path)
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if fName == "" {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}

	// temp file in the same directory so that rename doesn't cross devices
	tmpFile, err := os.CreateTemp(dir, "."+fName+".tmp-*")
	if err != nil {
		return nil, err
	}

	return &File{
		dstPath: path,
		dir:     dir,
		perm:    perm,
		tmpFile: tmpFile,
		tmpPath: tmpFile.Name(),
	}, nil
}

// WriteFile is like os.WriteFile but atomic: a reader of path
// sees either the old or the new content, never a partial write
func WriteFile(path string, data []byte, perm os.FileMode) error {
	f, err := NewWithPerm(path, perm)
	if err != nil {
		return err
	}
	// calling Close() twice is a no-op
	defer f.Close()

	if _, err = f.Write(data); err != nil {
		return err
	}
	return f.Close()
}

func (f *File) handleError(err error) error {
	if err == nil {
		return nil
	}
	// remember the first error
	if f.err == nil {
		f.err = err
	}
	// cleanup i.e. delete temporary file
	_ = f.Close()
	return err
}

// Write writes data to a file
func (f *File) Write(d []byte) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n, err := f.tmpFile.Write(d)
	return n, f.handleError(err)
}

func (f *File) WriteString(s string) (n int, err error) {
	return f.Write([]byte(s))
}

func (f *File) alreadyClosed() bool {
	return f.tmpFile == nil
}

// RemoveIfNotClosed removes the temp file if we didn't Close
// the file yet. Destination file will not be created.
// Use it with defer to ensure cleanup in case of a panic on the
// same goroutine that happens before Close.
// RemoveIfNotClosed after Close is a no-op.
func (f *File) RemoveIfNotClosed() {
	if f == nil || f.alreadyClosed() {
		return
	}
	f.err = ErrCancelled
	_ = f.Close()
}

// Close closes the file and renames it to the destination.
// Can be called multiple times to make it easier to use via defer
func (f *File) Close() error {
	if f.alreadyClosed() {
		// return the first error we encountered
		return f.err
	}
	tmpFile := f.tmpFile
	f.tmpFile = nil

	// https://www.joeshaw.org/dont-defer-close-on-writable-files/
	errChmod := tmpFile.Chmod(f.perm)
	errSync := tmpFile.Sync()
	errClose := tmpFile.Close()

	didRename := false
	defer func() {
		if !didRename {
			// ignoring error on this one
			_ = os.Remove(f.tmpPath)
		}
	}()

	if f.err != nil {
		return f.err
	}

	err := errors.Join(errChmod, errSync, errClose)
	if err == nil {
		// this will over-write dstPath (if it exists)
		err = os.Rename(f.tmpPath, f.dstPath)
		didRename = (err == nil)
		// sync directory after rename so that the rename survives a crash
		fdir, _ := os.Open(f.dir)
		if fdir != nil {
			// nice to have, not must have
			_ = fdir.Sync()
			_ = fdir.Close()
		}
	}

	if f.err == nil {
		f.err = err
	}
	return f.err
}
