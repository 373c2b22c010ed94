package console

import (
	"io"
	"sync"
)

// syncWriter serialises writes from concurrent workers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// Synchronized returns a writer that is safe for concurrent use.
func Synchronized(w io.Writer) io.Writer {
	if sw, ok := w.(*syncWriter); ok {
		return sw
	}

	return &syncWriter{w: w}
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.w.Write(p)
}
