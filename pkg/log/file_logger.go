package log

import (
	"fmt"
	"os"
	"sync"
)

// FileLoggerConfig configures a FileLogger.
type FileLoggerConfig struct {
	// Path of the capture file. Events are appended to an existing file.
	Path string

	// MaxSize rotates the file once it would grow past MaxSize bytes: the
	// current file is renamed to Path+".1", replacing an older rotation,
	// and a new file is started. Zero disables rotation.
	MaxSize int64
}

// FileLogger appends events to a capture file.
// It is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	cfg FileLoggerConfig

	mu      sync.Mutex
	file    *os.File
	size    int64
	dropped uint64
	closed  bool
}

// NewFileLogger opens path for appending without rotation.
func NewFileLogger(path string) (*FileLogger, error) {
	return OpenFileLogger(FileLoggerConfig{Path: path})
}

// OpenFileLogger opens a capture file as configured.
func OpenFileLogger(cfg FileLoggerConfig) (*FileLogger, error) {
	if cfg.MaxSize < 0 {
		return nil, fmt.Errorf("capture %s: negative max size", cfg.Path)
	}
	l := &FileLogger{cfg: cfg}
	if err := l.openLocked(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *FileLogger) openLocked() error {
	f, err := os.OpenFile(l.cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	l.file = f
	l.size = st.Size()
	return nil
}

func (l *FileLogger) rotateLocked() error {
	if err := l.file.Close(); err != nil {
		return err
	}
	if err := os.Rename(l.cfg.Path, l.cfg.Path+".1"); err != nil {
		return err
	}
	return l.openLocked()
}

// Log appends an event. Events that cannot be encoded or written are
// counted in Dropped instead of failing the caller.
func (l *FileLogger) Log(event Event) {
	data, err := EncodeEvent(event)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if err != nil {
		l.dropped++
		return
	}

	if l.cfg.MaxSize > 0 && l.size > 0 && l.size+int64(len(data)) > l.cfg.MaxSize {
		if err := l.rotateLocked(); err != nil {
			// without a file nothing more can be logged
			l.closed = true
			l.dropped++
			return
		}
	}

	n, err := l.file.Write(data)
	l.size += int64(n)
	if err != nil {
		l.dropped++
	}
}

// Dropped returns the number of events that were not written.
func (l *FileLogger) Dropped() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Close closes the capture file. Further events are ignored; closing
// twice is harmless.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)
