package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const (
	maxLogSize = 2 * 1024 * 1024
	logBackups = 3
)

// RotatingWriter appends to a log file and shifts it to .1, .2, ... once it
// grows past maxSize. Only the newest backups are kept.
type RotatingWriter struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	size    int64
	maxSize int64
	backups int
}

// Setup tees the standard logger into logPath so a failed run can be read
// back after the terminal is gone.
func Setup(logPath string) (*RotatingWriter, error) {
	rw, err := NewRotatingWriter(logPath, maxLogSize, logBackups)
	if err != nil {
		return nil, err
	}

	log.SetOutput(io.MultiWriter(os.Stdout, rw))
	return rw, nil
}

func NewRotatingWriter(logPath string, maxSize int64, backups int) (*RotatingWriter, error) {
	if dir := filepath.Dir(logPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	if backups < 1 {
		backups = 1
	}

	w := &RotatingWriter{path: logPath, maxSize: maxSize, backups: backups}

	// A previous run that ended past the limit is rotated rather than lost.
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxSize {
		if err := w.shift(); err != nil {
			return nil, err
		}
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	w.file = f
	w.size = info.Size()
	return nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	if err != nil {
		return n, err
	}

	if w.size > w.maxSize {
		if rerr := w.rotate(); rerr != nil {
			return n, fmt.Errorf("rotate %s: %w", w.path, rerr)
		}
	}
	return n, nil
}

func (w *RotatingWriter) rotate() error {
	w.file.Close()
	w.file = nil
	if err := w.shift(); err != nil {
		return err
	}
	return w.open()
}

// shift renames path.N-1 to path.N down to path to path.1, dropping the oldest.
func (w *RotatingWriter) shift() error {
	os.Remove(w.backup(w.backups))
	for i := w.backups - 1; i >= 1; i-- {
		if err := os.Rename(w.backup(i), w.backup(i+1)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	if err := os.Rename(w.path, w.backup(1)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (w *RotatingWriter) backup(i int) string {
	return fmt.Sprintf("%s.%d", w.path, i)
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
