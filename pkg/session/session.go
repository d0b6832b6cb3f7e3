// Package session implements the capture-submit controller: the single
// stateful component that owns the camera lifecycle and mediates one
// detection request at a time.
//
// The controller is the sole mutator of session state. Presentation layers
// subscribe to snapshots and render them; they never hold authoritative
// state themselves.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wakeguard/go-wakeguard/pkg/capture"
	"github.com/wakeguard/go-wakeguard/pkg/detect"
)

// Sentinel errors returned by Trigger.
var (
	// ErrBusy is returned when a trigger arrives while a request is in
	// flight. The trigger is rejected, not queued.
	ErrBusy = errors.New("session: request in flight")

	// ErrNotReady is returned when no image source has been acquired.
	ErrNotReady = errors.New("session: not initialized")
)

// SourceFactory acquires an image source. The session calls it during Init
// so a failed camera can be re-acquired without rebuilding the session.
type SourceFactory func() (capture.Source, error)

// Snapshot is an immutable view of session state published to subscribers.
type Snapshot struct {
	Status     string      `json:"status"`
	StatusText string      `json:"status_text"`
	LastError  string      `json:"last_error,omitempty"`
	Result     *ResultView `json:"result,omitempty"`
}

// ResultView is the presentation shape of the latest detection result.
type ResultView struct {
	DrowsyDetected    bool   `json:"drowsy_detected"`
	Confidence        string `json:"confidence"`
	HasAnnotatedImage bool   `json:"has_annotated_image"`
	LatencyMs         int64  `json:"latency_ms"`
}

// Subscriber receives a snapshot on every state transition.
// Called synchronously from the triggering goroutine; keep it fast.
type Subscriber func(Snapshot)

// Session is the capture-submit controller. One instance per app run.
// The image source is owned exclusively by the session.
type Session struct {
	factory  SourceFactory
	detector detect.Detector
	logger   *slog.Logger

	mu         sync.Mutex
	source     capture.Source
	status     Status
	statusText string
	lastError  string
	result     *detect.Result

	subscribers []Subscriber
}

// New creates an uninitialized session. Call Init to acquire the camera.
func New(factory SourceFactory, detector detect.Detector, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		factory:    factory,
		detector:   detector,
		logger:     logger.With("component", "session"),
		status:     StatusUninitialized,
		statusText: "initializing",
	}
}

// Subscribe registers a subscriber for state transitions.
func (s *Session) Subscribe(fn Subscriber) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// Init acquires the image source. On failure the session lands in Failed
// with a diagnostic; calling Init again retries.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	if s.status.Busy() {
		s.mu.Unlock()
		return ErrBusy
	}
	// Release a previously acquired source before re-acquiring
	if s.source != nil {
		s.source.Close()
		s.source = nil
	}
	s.mu.Unlock()

	source, err := s.factory()
	if err != nil {
		s.transition(StatusFailed, fmt.Sprintf("camera error: %v", err), err.Error())
		s.logger.Error("camera acquisition failed", "error", err)
		return err
	}

	s.mu.Lock()
	s.source = source
	s.mu.Unlock()

	s.transition(StatusReady, "ready", "")
	s.logger.Info("session ready")
	return nil
}

// Trigger runs one capture-submit cycle: grab a frame, submit it, publish
// the outcome. At most one cycle runs at a time; a trigger while one is in
// flight returns ErrBusy and leaves state unchanged except for a busy
// status message.
func (s *Session) Trigger(ctx context.Context) error {
	s.mu.Lock()
	if s.status.Busy() {
		// State stays untouched - only the message is surfaced.
		snap := s.snapshotLocked()
		snap.StatusText = "busy: request in flight"
		subs := append([]Subscriber(nil), s.subscribers...)
		s.mu.Unlock()
		s.publish(subs, snap)
		s.logger.Debug("trigger rejected, request in flight")
		return ErrBusy
	}
	if s.source == nil {
		s.mu.Unlock()
		return ErrNotReady
	}
	source := s.source
	// Acquire the guard before releasing the lock: the Capturing and
	// Submitting states are the in-flight guard.
	s.status = StatusCapturing
	s.statusText = "capturing"
	s.lastError = ""
	snap := s.snapshotLocked()
	subs := append([]Subscriber(nil), s.subscribers...)
	s.mu.Unlock()
	s.publish(subs, snap)

	// Finally-equivalent: whatever happens below, the session leaves the
	// busy states and becomes eligible for the next trigger.
	defer func() {
		s.mu.Lock()
		if s.status.Busy() || s.status == StatusSucceeded || s.status == StatusFailed {
			s.status = StatusReady
		}
		s.mu.Unlock()
	}()

	frame, err := source.Capture(ctx)
	if err != nil {
		s.setResult(nil)
		s.transition(StatusFailed, fmt.Sprintf("capture error: %v", err), err.Error())
		s.logger.Warn("frame capture failed", "error", err)
		return err
	}

	s.transition(StatusSubmitting, "submitting", "")

	result, err := s.detector.Detect(ctx, frame)
	if err != nil {
		s.setResult(nil)
		s.transition(StatusFailed, errorText(err), err.Error())
		s.logger.Warn("detection failed", "error", err)
		return err
	}

	s.setResult(result)
	s.transition(StatusSucceeded, result.Summary(), "")
	s.logger.Info("detection complete",
		"drowsy", result.DrowsyDetected,
		"confidence", result.Confidence,
		"latency_ms", result.LatencyMs,
	)
	return nil
}

// errorText maps detector failures to presentable status text.
func errorText(err error) string {
	var apiErr *detect.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("API error: status %d", apiErr.StatusCode)
	}
	var transportErr *detect.TransportError
	if errors.As(err, &transportErr) {
		return fmt.Sprintf("connection error: %v", transportErr.Err)
	}
	return fmt.Sprintf("error: %v", err)
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Status returns the current lifecycle status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// StatusText returns the current human-readable status line.
func (s *Session) StatusText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusText
}

// Health checks connectivity to the detection endpoint.
func (s *Session) Health(ctx context.Context) error {
	return s.detector.Health(ctx)
}

// Result returns the latest detection result, or nil. The result is
// replaced wholesale by the next successful request.
func (s *Session) Result() *detect.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Close releases the image source.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return nil
	}
	err := s.source.Close()
	s.source = nil
	s.status = StatusUninitialized
	s.statusText = "closed"
	return err
}

// transition updates state and publishes a snapshot to subscribers.
func (s *Session) transition(status Status, text, lastError string) {
	s.mu.Lock()
	s.status = status
	s.statusText = text
	s.lastError = lastError
	snap := s.snapshotLocked()
	subs := append([]Subscriber(nil), s.subscribers...)
	s.mu.Unlock()

	s.publish(subs, snap)
}

func (s *Session) setResult(r *detect.Result) {
	s.mu.Lock()
	s.result = r
	s.mu.Unlock()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Status:     s.status.String(),
		StatusText: s.statusText,
		LastError:  s.lastError,
	}
	if s.result != nil {
		snap.Result = &ResultView{
			DrowsyDetected:    s.result.DrowsyDetected,
			Confidence:        fmt.Sprintf("%.2f%%", s.result.Confidence*100),
			HasAnnotatedImage: s.result.HasAnnotatedImage(),
			LatencyMs:         s.result.LatencyMs,
		}
	}
	return snap
}

func (s *Session) publish(subs []Subscriber, snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
