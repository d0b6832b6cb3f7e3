package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wakeguard/go-wakeguard/pkg/capture"
	"github.com/wakeguard/go-wakeguard/pkg/detect"
)

func mockFactory(src capture.Source) SourceFactory {
	return func() (capture.Source, error) { return src, nil }
}

func newReadySession(t *testing.T, src capture.Source, det detect.Detector) *Session {
	t.Helper()
	s := New(mockFactory(src), det, nil)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if s.Status() != StatusReady {
		t.Fatalf("Expected ready after init, got %v", s.Status())
	}
	return s
}

func TestTriggerSuccess(t *testing.T) {
	src := capture.NewMock([]byte("frame"))
	det := detect.NewMock()
	det.DetectFunc = func(ctx context.Context, image []byte) (*detect.Result, error) {
		if string(image) != "frame" {
			t.Errorf("Detector got wrong frame: %q", image)
		}
		return &detect.Result{DrowsyDetected: true, Confidence: 0.87}, nil
	}

	s := newReadySession(t, src, det)
	defer s.Close()

	if err := s.Trigger(context.Background()); err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	if s.Status() != StatusReady {
		t.Errorf("Expected ready after trigger, got %v", s.Status())
	}
	if got := s.StatusText(); !strings.Contains(got, "87.00%") || !strings.Contains(got, "DROWSY") {
		t.Errorf("Status text %q missing drowsy indication or 87.00%%", got)
	}
	if r := s.Result(); r == nil || !r.DrowsyDetected {
		t.Errorf("Expected drowsy result, got %+v", r)
	}
}

func TestTriggerBusyRejected(t *testing.T) {
	src := capture.NewMock([]byte("frame"))

	release := make(chan struct{})
	started := make(chan struct{})
	det := detect.NewMock()
	det.DetectFunc = func(ctx context.Context, image []byte) (*detect.Result, error) {
		close(started)
		<-release
		return &detect.Result{Confidence: 0.5}, nil
	}

	s := newReadySession(t, src, det)
	defer s.Close()

	var busySnap *Snapshot
	var snapMu sync.Mutex
	s.Subscribe(func(snap Snapshot) {
		snapMu.Lock()
		defer snapMu.Unlock()
		if strings.Contains(snap.StatusText, "busy") {
			busySnap = &snap
		}
	})

	done := make(chan error, 1)
	go func() { done <- s.Trigger(context.Background()) }()
	<-started

	// Second trigger while the first is submitting: rejected, not queued.
	if err := s.Trigger(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy, got %v", err)
	}
	if s.Status() != StatusSubmitting {
		t.Errorf("Busy trigger changed state to %v", s.Status())
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("First trigger failed: %v", err)
	}

	snapMu.Lock()
	defer snapMu.Unlock()
	if busySnap == nil {
		t.Fatal("Expected a busy snapshot to be published")
	}
	if busySnap.Status != "submitting" {
		t.Errorf("Busy snapshot should keep in-flight status, got %q", busySnap.Status)
	}

	// Exactly one detection despite two triggers
	if n := det.CallCount("Detect"); n != 1 {
		t.Errorf("Expected 1 detect call, got %d", n)
	}
}

func TestGuardReleasedOnEveryOutcome(t *testing.T) {
	tests := []struct {
		name    string
		capture func(ctx context.Context) ([]byte, error)
		detect  func(ctx context.Context, image []byte) (*detect.Result, error)
		wantErr bool
	}{
		{
			name:    "success",
			capture: func(ctx context.Context) ([]byte, error) { return []byte("f"), nil },
			detect: func(ctx context.Context, image []byte) (*detect.Result, error) {
				return &detect.Result{Confidence: 0.4}, nil
			},
		},
		{
			name: "capture failure",
			capture: func(ctx context.Context) ([]byte, error) {
				return nil, &capture.CaptureError{Err: fmt.Errorf("sensor fault")}
			},
			wantErr: true,
		},
		{
			name:    "api error",
			capture: func(ctx context.Context) ([]byte, error) { return []byte("f"), nil },
			detect: func(ctx context.Context, image []byte) (*detect.Result, error) {
				return nil, &detect.APIError{StatusCode: 500}
			},
			wantErr: true,
		},
		{
			name:    "transport error",
			capture: func(ctx context.Context) ([]byte, error) { return []byte("f"), nil },
			detect: func(ctx context.Context, image []byte) (*detect.Result, error) {
				return nil, &detect.TransportError{Err: fmt.Errorf("connection refused")}
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := capture.NewMock(nil)
			src.CaptureFunc = tc.capture
			det := detect.NewMock()
			det.DetectFunc = tc.detect

			s := newReadySession(t, src, det)
			defer s.Close()

			err := s.Trigger(context.Background())
			if tc.wantErr && err == nil {
				t.Fatal("Expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Trigger: %v", err)
			}

			// Guard must be clear and the session eligible again.
			if s.Status().Busy() {
				t.Errorf("Guard still held after trigger: %v", s.Status())
			}
			if err := s.Trigger(context.Background()); errors.Is(err, ErrBusy) {
				t.Error("Session stuck busy after previous trigger completed")
			}
		})
	}
}

func TestFailedTriggerRecoversToReady(t *testing.T) {
	src := capture.NewMock([]byte("frame"))
	det := detect.NewMock()

	failures := 0
	det.DetectFunc = func(ctx context.Context, image []byte) (*detect.Result, error) {
		if failures == 0 {
			failures++
			return nil, &detect.TransportError{Err: fmt.Errorf("malformed response")}
		}
		return &detect.Result{Confidence: 0.7}, nil
	}

	s := newReadySession(t, src, det)
	defer s.Close()

	if err := s.Trigger(context.Background()); err == nil {
		t.Fatal("Expected first trigger to fail")
	}
	if s.Status() != StatusReady {
		t.Fatalf("Expected ready after failure, got %v", s.Status())
	}
	if got := s.StatusText(); !strings.Contains(got, "connection error") {
		t.Errorf("Status text %q should surface the transport failure", got)
	}

	// Next trigger proceeds normally from Ready.
	if err := s.Trigger(context.Background()); err != nil {
		t.Fatalf("Second trigger: %v", err)
	}
	if got := s.StatusText(); !strings.Contains(got, "70.00%") {
		t.Errorf("Status text %q missing result of second trigger", got)
	}
}

func TestCaptureFailureClearsStaleResult(t *testing.T) {
	src := capture.NewMock([]byte("frame"))
	det := detect.NewMock()
	det.DetectFunc = func(ctx context.Context, image []byte) (*detect.Result, error) {
		return &detect.Result{DrowsyDetected: true, Confidence: 0.87}, nil
	}

	s := newReadySession(t, src, det)
	defer s.Close()

	if err := s.Trigger(context.Background()); err != nil {
		t.Fatalf("First trigger: %v", err)
	}
	if s.Result() == nil {
		t.Fatal("Expected a result after the first trigger")
	}

	src.CaptureFunc = func(ctx context.Context) ([]byte, error) {
		return nil, &capture.CaptureError{Err: fmt.Errorf("sensor fault")}
	}

	if err := s.Trigger(context.Background()); err == nil {
		t.Fatal("Expected capture failure")
	}
	if s.Result() != nil {
		t.Error("Capture failure must not leave the previous result in place")
	}
	if snap := s.Snapshot(); snap.Result != nil {
		t.Errorf("Failed snapshot carries stale result: %+v", snap.Result)
	}
}

func TestHealthDelegatesToDetector(t *testing.T) {
	det := detect.NewMock()
	det.HealthFunc = func(ctx context.Context) error {
		return &detect.TransportError{Err: fmt.Errorf("connection refused")}
	}

	s := newReadySession(t, capture.NewMock(nil), det)
	defer s.Close()

	if err := s.Health(context.Background()); err == nil {
		t.Error("Expected detector health failure to surface")
	}
	if n := det.CallCount("Health"); n != 1 {
		t.Errorf("Expected 1 health call, got %d", n)
	}
}

func TestAPIErrorStatusText(t *testing.T) {
	src := capture.NewMock([]byte("frame"))
	det := detect.NewMock()
	det.DetectFunc = func(ctx context.Context, image []byte) (*detect.Result, error) {
		return nil, &detect.APIError{StatusCode: 500}
	}

	s := newReadySession(t, src, det)
	defer s.Close()

	s.Trigger(context.Background())
	if got := s.StatusText(); !strings.Contains(got, "500") {
		t.Errorf("Status text %q should carry the HTTP status code", got)
	}
}

func TestTriggerBeforeInit(t *testing.T) {
	s := New(mockFactory(capture.NewMock(nil)), detect.NewMock(), nil)
	if err := s.Trigger(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Errorf("Expected ErrNotReady, got %v", err)
	}
}

func TestInitFailureThenRetry(t *testing.T) {
	calls := 0
	factory := func() (capture.Source, error) {
		calls++
		if calls == 1 {
			return nil, &capture.InitError{Index: 0, Err: fmt.Errorf("device busy")}
		}
		return capture.NewMock([]byte("f")), nil
	}

	s := New(factory, detect.NewMock(), nil)
	defer s.Close()

	if err := s.Init(context.Background()); err == nil {
		t.Fatal("Expected init failure")
	}
	if s.Status() != StatusFailed {
		t.Errorf("Expected failed after init error, got %v", s.Status())
	}

	// Explicit re-initialization recovers.
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Retry init: %v", err)
	}
	if s.Status() != StatusReady {
		t.Errorf("Expected ready after retry, got %v", s.Status())
	}
}

func TestCloseReleasesSource(t *testing.T) {
	src := capture.NewMock([]byte("f"))
	s := newReadySession(t, src, detect.NewMock())

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !src.Closed() {
		t.Error("Source not released on Close")
	}
	if s.Status() != StatusUninitialized {
		t.Errorf("Expected uninitialized after close, got %v", s.Status())
	}
}

func TestSubscribersSeeTransitions(t *testing.T) {
	src := capture.NewMock([]byte("frame"))
	det := detect.NewMock()
	det.DetectFunc = func(ctx context.Context, image []byte) (*detect.Result, error) {
		return &detect.Result{DrowsyDetected: true, Confidence: 0.87}, nil
	}

	s := newReadySession(t, src, det)
	defer s.Close()

	var mu sync.Mutex
	var seen []string
	s.Subscribe(func(snap Snapshot) {
		mu.Lock()
		seen = append(seen, snap.Status)
		mu.Unlock()
	})

	if err := s.Trigger(context.Background()); err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"capturing", "submitting", "succeeded"}
	if len(seen) != len(want) {
		t.Fatalf("Expected transitions %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("Transition %d: expected %s, got %s", i, want[i], seen[i])
		}
	}
}

func TestConcurrentTriggersOneInFlight(t *testing.T) {
	src := capture.NewMock([]byte("frame"))
	det := detect.NewMock()

	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0
	det.DetectFunc = func(ctx context.Context, image []byte) (*detect.Result, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return &detect.Result{Confidence: 0.5}, nil
	}

	s := newReadySession(t, src, det)
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Trigger(context.Background())
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if maxInFlight > 1 {
		t.Errorf("Expected at most one request in flight, saw %d", maxInFlight)
	}
}
