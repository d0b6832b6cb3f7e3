// Package capture provides image sources for the wakeguard client.
//
// A Source produces one encoded frame per call. The device-camera variant
// owns a gocv capture handle exclusively; the file variant reads a path.
// Which variant is used is decided once, at construction time.
package capture

import (
	"context"
	"errors"
	"fmt"
)

// Source is a polymorphic image source. Exactly one caller owns a Source;
// Capture is not safe for concurrent use.
type Source interface {
	// Capture produces one encoded image (JPEG for the camera variant).
	Capture(ctx context.Context) ([]byte, error)

	// Close releases the underlying device or handle.
	Close() error
}

// DeviceDescriptor identifies one enumerated camera device.
type DeviceDescriptor struct {
	// Index is the platform device index (e.g. /dev/video0 -> 0).
	Index int

	// Label is the human-readable device name when the platform exposes
	// one, otherwise a synthetic "camera-N" label.
	Label string
}

func (d DeviceDescriptor) String() string {
	return fmt.Sprintf("%s (index %d)", d.Label, d.Index)
}

// ErrNoCamera is returned when device enumeration finds nothing and the
// selection policy requires a specific device. This is fatal at startup.
var ErrNoCamera = errors.New("capture: no camera devices found")

// InitError is a recoverable device-open failure; the caller may retry.
type InitError struct {
	Index int
	Err   error
}

// Error implements the error interface.
func (e *InitError) Error() string {
	return fmt.Sprintf("capture: open device %d: %v", e.Index, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}

// CaptureError is a recoverable frame-grab failure.
type CaptureError struct {
	Err error
}

// Error implements the error interface.
func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture: grab frame: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *CaptureError) Unwrap() error {
	return e.Err
}
