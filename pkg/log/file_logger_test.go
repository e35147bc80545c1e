package log

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerWritesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.clog")

	first, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	first.Log(Event{Timestamp: time.Now(), ConnectionID: "a"})
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	second.Log(Event{Timestamp: time.Now(), ConnectionID: "b"})
	second.Close()

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	var ids []string
	for {
		ev, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		ids = append(ids, ev.ConnectionID)
	}
	if fmt.Sprint(ids) != "[a b]" {
		t.Errorf("got %v, want [a b]", ids)
	}
}

func TestFileLoggerCloseIsIdempotent(t *testing.T) {
	l, err := NewFileLogger(filepath.Join(t.TempDir(), "c.clog"))
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	// Logging after close is ignored.
	l.Log(Event{})
}

func TestFileLoggerThreadSafe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.clog")
	l, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				l.Log(Event{Timestamp: time.Now(), ConnectionID: fmt.Sprintf("c%d", n)})
			}
		}(i)
	}
	wg.Wait()
	l.Close()

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	count := 0
	for {
		if _, err := r.Next(); err != nil {
			if err != io.EOF {
				t.Fatalf("Next failed: %v", err)
			}
			break
		}
		count++
	}
	if count != 200 {
		t.Errorf("read %d events, want 200", count)
	}
}

func TestFileLoggerRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rot.clog")
	ev := Event{Timestamp: time.Now(), ConnectionID: "rotating-connection"}
	one, err := EncodeEvent(ev)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	// room for two events per file
	l, err := OpenFileLogger(FileLoggerConfig{Path: path, MaxSize: int64(2*len(one) + 1)})
	if err != nil {
		t.Fatalf("OpenFileLogger failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		l.Log(ev)
	}
	l.Close()

	count := func(p string) int {
		r, err := NewReader(p)
		if err != nil {
			t.Fatalf("NewReader(%s) failed: %v", p, err)
		}
		return len(readAll(t, r))
	}
	if got := count(path); got != 1 {
		t.Errorf("current file has %d events, want 1", got)
	}
	if got := count(path + ".1"); got != 2 {
		t.Errorf("rotated file has %d events, want 2", got)
	}
	if l.Dropped() != 0 {
		t.Errorf("dropped %d events", l.Dropped())
	}
}

func TestOpenFileLoggerRejectsNegativeSize(t *testing.T) {
	if _, err := OpenFileLogger(FileLoggerConfig{Path: filepath.Join(t.TempDir(), "x.clog"), MaxSize: -1}); err == nil {
		t.Error("expected error for negative MaxSize")
	}
}
