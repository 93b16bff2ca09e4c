package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Filesystem stores artifacts as files in a local directory.
type Filesystem struct {
	dir string
}

// NewFilesystem creates a filesystem store rooted at dir. The directory must
// already exist; ErrTargetNotFound is returned otherwise.
func NewFilesystem(dir string) (*Filesystem, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, dir)
		}
		return nil, fmt.Errorf("error checking save directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrTargetNotFound, dir)
	}

	return &Filesystem{dir: dir}, nil
}

func (f *Filesystem) Write(name string, data []byte) error {
	path := filepath.Join(f.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing %s: %w", name, err)
	}
	return nil
}
