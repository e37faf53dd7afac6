package driver

import (
	"io"
	"sync"
)

// MemIO keeps the whole log in a byte slice, used for the ":memory:" target
type MemIO struct {
	mu     sync.RWMutex
	buf    []byte
	closed bool
}

func NewMemIO() *MemIO {
	return &MemIO{buf: make([]byte, 0, 4096)}
}

func (m *MemIO) Read(bytes []byte, offset int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if offset < 0 {
		return 0, io.EOF
	}
	if offset >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(bytes, m.buf[offset:])
	if n < len(bytes) {
		return n, io.EOF
	}
	return n, nil
}

func (m *MemIO) Write(bytes []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, io.ErrClosedPipe
	}
	m.buf = append(m.buf, bytes...)
	return len(bytes), nil
}

func (m *MemIO) Sync() error {
	return nil
}

func (m *MemIO) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *MemIO) Size() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.buf)), nil
}

func (m *MemIO) Truncate(size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if size < int64(len(m.buf)) {
		m.buf = m.buf[:size]
	}
	return nil
}

// Swap replaces the content of the stream, compaction of memory targets relies on it
func (m *MemIO) Swap(content []byte) {
	m.mu.Lock()
	m.buf = content
	m.mu.Unlock()
}
