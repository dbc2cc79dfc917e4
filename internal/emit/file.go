package emit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrOutputLocked is returned when another process holds the output file.
var ErrOutputLocked = errors.New("output file is locked by another process")

// File is an output file held under an exclusive lock.
type File struct {
	*os.File
	lock *flock.Flock
}

// OpenFile creates or truncates path after taking the lock file path+".lock".
func OpenFile(path string) (*File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, path)
	}
	f, err := os.Create(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return &File{File: f, lock: lock}, nil
}

// Close closes the file and releases the lock.
func (f *File) Close() error {
	closeErr := f.File.Close()
	unlockErr := f.lock.Unlock()
	return errors.Join(closeErr, unlockErr)
}
