package capture

import (
	"context"
	"sync"
)

// Mock implements Source for testing.
type Mock struct {
	// CaptureFunc is called when Capture is invoked.
	CaptureFunc func(ctx context.Context) ([]byte, error)

	// CloseFunc is called when Close is invoked.
	CloseFunc func() error

	mu       sync.Mutex
	captures int
	closed   bool
}

// NewMock creates a mock source that returns the given frame.
func NewMock(frame []byte) *Mock {
	return &Mock{
		CaptureFunc: func(ctx context.Context) ([]byte, error) {
			return frame, nil
		},
	}
}

// Capture calls CaptureFunc and counts the call.
func (m *Mock) Capture(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	m.captures++
	m.mu.Unlock()

	if m.CaptureFunc != nil {
		return m.CaptureFunc(ctx)
	}
	return nil, &CaptureError{Err: context.Canceled}
}

// Close records the close and calls CloseFunc.
func (m *Mock) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Captures returns the number of Capture calls.
func (m *Mock) Captures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.captures
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Source at compile time.
var _ Source = (*Mock)(nil)
