// Package flatfile provides whole-file read/overwrite primitives for single-document stores.
package flatfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned by TryLock when another process holds the file.
var ErrLocked = errors.New("file is locked by another process")

// File is a document stored in one file, rewritten in full on every write.
// The lock is taken on the document itself, so no extra file is left on disk.
type File struct {
	path   string
	atomic bool
	lock   *flock.Flock

	// created is set when TryLock had to create an empty document that
	// nothing has written yet; Unlock removes it again.
	created bool
}

// New creates a File for path. With atomic set, writes go through a temp
// file + rename instead of truncating the target in place.
func New(path string, atomic bool) *File {
	return &File{
		path:   path,
		atomic: atomic,
		lock:   newLock(path),
	}
}

func newLock(path string) *flock.Flock {
	return flock.New(path, flock.SetPermissions(0o644))
}

// Path returns the document path.
func (f *File) Path() string { return f.path }

// TryLock takes the exclusive cross-process lock without blocking.
func (f *File) TryLock() error {
	if err := f.ensureDir(); err != nil {
		return err
	}
	_, statErr := os.Stat(f.path)

	ok, err := f.lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", f.path, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", f.path, ErrLocked)
	}
	f.created = errors.Is(statErr, fs.ErrNotExist)
	return nil
}

// Unlock releases the lock taken by TryLock.
func (f *File) Unlock() error {
	if f.created {
		f.created = false
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			_ = f.lock.Unlock()
			return fmt.Errorf("remove empty %s: %w", f.path, err)
		}
	}
	return f.lock.Unlock()
}

// Read returns the file content. Returns nil, nil if the file doesn't exist.
func (f *File) Read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return data, nil
}

// Write replaces the whole file content.
func (f *File) Write(data []byte) error {
	if err := f.ensureDir(); err != nil {
		return err
	}
	if !f.atomic {
		if err := os.WriteFile(f.path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.path, err)
		}
		f.created = false
		return nil
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s tmp: %w", f.path, err)
	}

	// The rename swaps the inode under the path. Lock the replacement first
	// so the document is never visible unlocked.
	var next *flock.Flock
	if f.lock.Locked() {
		next = newLock(tmp)
		ok, err := next.TryLock()
		if err != nil || !ok {
			_ = os.Remove(tmp)
			if err == nil {
				err = ErrLocked
			}
			return fmt.Errorf("lock %s tmp: %w", f.path, err)
		}
	}

	if err := os.Rename(tmp, f.path); err != nil {
		if next != nil {
			_ = next.Unlock()
		}
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", f.path, err)
	}

	if next != nil {
		prev := f.lock
		f.lock = next
		_ = prev.Unlock()
	}
	f.created = false
	return nil
}

func (f *File) ensureDir() error {
	dir := filepath.Dir(f.path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	return nil
}
