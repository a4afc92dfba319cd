package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// indexLock serializes rebuilds of one vault's index across processes.
type indexLock struct {
	file *os.File
}

func acquireIndexLock(dbDir string) (*indexLock, error) {
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dbDir, "index.lock"), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open index lock: %w", err)
	}

	ok, err := tryLock(f)
	if !ok {
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire index lock: %w", err)
		}
		return nil, ErrIndexLocked
	}
	return &indexLock{file: f}, nil
}

func (l *indexLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	return errors.Join(unlock(l.file), l.file.Close())
}
