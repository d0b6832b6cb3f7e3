package capture

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"gocv.io/x/gocv"

	"github.com/wakeguard/go-wakeguard/internal/log"
)

// DeviceCamera captures JPEG frames from a local video device via gocv.
// The capture handle is owned exclusively by this struct and released on
// Close.
type DeviceCamera struct {
	config Config
	device DeviceDescriptor

	mu     sync.Mutex
	handle *gocv.VideoCapture
}

// ListDevices enumerates camera devices by probing indices 0..maxProbe-1.
// A device appears in the result only if it can be opened.
func ListDevices(maxProbe int) []DeviceDescriptor {
	var devices []DeviceDescriptor
	for i := 0; i < maxProbe; i++ {
		vc, err := gocv.OpenVideoCapture(i)
		if err != nil {
			continue
		}
		opened := vc.IsOpened()
		vc.Close()
		if !opened {
			continue
		}
		devices = append(devices, DeviceDescriptor{
			Index: i,
			Label: deviceLabel(i),
		})
	}
	return devices
}

// deviceLabel reads the kernel-reported device name where available
// (Linux v4l2), falling back to a synthetic label.
func deviceLabel(index int) string {
	name, err := os.ReadFile(fmt.Sprintf("/sys/class/video4linux/video%d/name", index))
	if err == nil {
		if label := strings.TrimSpace(string(name)); label != "" {
			return label
		}
	}
	return fmt.Sprintf("camera-%d", index)
}

// NewDeviceCamera enumerates devices, selects one per the configured policy,
// and opens it.
//
// Policy semantics:
//   - SelectFirstAvailable: first enumerated device; an empty enumeration
//     is a recoverable InitError.
//   - SelectFrontFacing: device whose label contains FrontHint, falling back
//     to PreferredIndex; an empty enumeration is fatal ErrNoCamera.
func NewDeviceCamera(cfg Config) (*DeviceCamera, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("capture: invalid config: %v", errs)
	}

	devices := ListDevices(cfg.MaxProbe)
	device, err := selectDevice(cfg, devices)
	if err != nil {
		return nil, err
	}

	handle, err := gocv.OpenVideoCapture(device.Index)
	if err != nil {
		return nil, &InitError{Index: device.Index, Err: err}
	}
	if !handle.IsOpened() {
		handle.Close()
		return nil, &InitError{Index: device.Index, Err: fmt.Errorf("device did not open")}
	}

	if cfg.Width > 0 {
		handle.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	}
	if cfg.Height > 0 {
		handle.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	}

	log.Info("camera opened",
		"device", device.String(),
		"policy", cfg.Policy.String(),
	)

	return &DeviceCamera{
		config: cfg,
		device: device,
		handle: handle,
	}, nil
}

// selectDevice applies the selection policy to the enumeration result.
func selectDevice(cfg Config, devices []DeviceDescriptor) (DeviceDescriptor, error) {
	switch cfg.Policy {
	case SelectFrontFacing:
		if len(devices) == 0 {
			return DeviceDescriptor{}, ErrNoCamera
		}
		hint := strings.ToLower(cfg.FrontHint)
		if hint != "" {
			for _, d := range devices {
				if strings.Contains(strings.ToLower(d.Label), hint) {
					return d, nil
				}
			}
		}
		for _, d := range devices {
			if d.Index == cfg.PreferredIndex {
				return d, nil
			}
		}
		return devices[0], nil

	default: // SelectFirstAvailable
		if len(devices) == 0 {
			return DeviceDescriptor{}, &InitError{Index: 0, Err: fmt.Errorf("no devices enumerated")}
		}
		return devices[0], nil
	}
}

// Device returns the descriptor of the opened device.
func (c *DeviceCamera) Device() DeviceDescriptor {
	return c.device
}

// Capture grabs one frame and encodes it as JPEG.
func (c *DeviceCamera) Capture(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &CaptureError{Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle == nil {
		return nil, &CaptureError{Err: fmt.Errorf("camera closed")}
	}

	img := gocv.NewMat()
	defer img.Close()

	if ok := c.handle.Read(&img); !ok {
		return nil, &CaptureError{Err: fmt.Errorf("read from device %d failed", c.device.Index)}
	}
	if img.Empty() {
		return nil, &CaptureError{Err: fmt.Errorf("empty frame from device %d", c.device.Index)}
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img,
		[]int{gocv.IMWriteJpegQuality, c.config.Quality})
	if err != nil {
		return nil, &CaptureError{Err: fmt.Errorf("encode jpeg: %w", err)}
	}
	defer buf.Close()

	// Copy out - the native buffer is freed on Close
	jpeg := make([]byte, buf.Len())
	copy(jpeg, buf.GetBytes())

	return jpeg, nil
}

// Close releases the camera handle. Safe to call more than once.
func (c *DeviceCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle == nil {
		return nil
	}
	err := c.handle.Close()
	c.handle = nil
	return err
}

// Verify DeviceCamera implements Source at compile time.
var _ Source = (*DeviceCamera)(nil)
