package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RotatingFile is an io.Writer that appends to a log file and rotates it
// by size. Rotated files are named <file>.1 (newest) to <file>.N (oldest).
type RotatingFile struct {
	path     string
	maxBytes int64
	backups  int

	mu      sync.Mutex
	f       *os.File
	curSize int64
}

// NewRotatingFile creates a writer for path. The file is opened lazily.
func NewRotatingFile(path string, maxBytes int64, backups int) *RotatingFile {
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	if backups < 0 {
		backups = 0
	}
	return &RotatingFile{path: path, maxBytes: maxBytes, backups: backups}
}

// Path returns the active log file path.
func (w *RotatingFile) Path() string {
	return w.path
}

// Write appends p, rotating first if p would push the file past maxBytes.
func (w *RotatingFile) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureOpen(); err != nil {
		return 0, err
	}
	if w.curSize > 0 && w.curSize+int64(len(p)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := w.f.Write(p)
	w.curSize += int64(n)
	return n, err
}

// Close closes the current file handle.
func (w *RotatingFile) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}

func (w *RotatingFile) ensureOpen() error {
	if w.f != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	w.f = f
	if st, err := f.Stat(); err == nil {
		w.curSize = st.Size()
	} else {
		w.curSize = 0
	}
	return nil
}

func (w *RotatingFile) rotate() error {
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	w.f = nil

	if w.backups == 0 {
		if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("truncate log file: %w", err)
		}
		return w.ensureOpen()
	}

	// Shift <file>.N-1 -> <file>.N, dropping the oldest.
	_ = os.Remove(w.backupName(w.backups))
	for i := w.backups - 1; i >= 1; i-- {
		src := w.backupName(i)
		if _, err := os.Stat(src); err == nil {
			if err := os.Rename(src, w.backupName(i+1)); err != nil {
				return fmt.Errorf("rename rotated file: %w", err)
			}
		}
	}
	if err := os.Rename(w.path, w.backupName(1)); err != nil {
		return fmt.Errorf("rename rotated file: %w", err)
	}
	return w.ensureOpen()
}

func (w *RotatingFile) backupName(i int) string {
	return fmt.Sprintf("%s.%d", w.path, i)
}
