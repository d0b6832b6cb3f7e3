package capture

import (
	"context"
	"fmt"
	"os"
)

// FileSource reads an image file per capture. This is the file-picker
// variant of Source, and what test rigs use when no camera is attached.
type FileSource struct {
	path string
}

// NewFileSource creates a source backed by an image file. The file is read
// on every Capture so it can be swapped out between triggers.
func NewFileSource(path string) (*FileSource, error) {
	if path == "" {
		return nil, &InitError{Err: fmt.Errorf("empty file path")}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, &InitError{Err: err}
	}
	return &FileSource{path: path}, nil
}

// Capture reads the backing file.
func (f *FileSource) Capture(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &CaptureError{Err: err}
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, &CaptureError{Err: err}
	}
	if len(data) == 0 {
		return nil, &CaptureError{Err: fmt.Errorf("empty image file %s", f.path)}
	}
	return data, nil
}

// Close is a no-op for file sources.
func (f *FileSource) Close() error {
	return nil
}

// Verify FileSource implements Source at compile time.
var _ Source = (*FileSource)(nil)
