package session

// Status is the lifecycle state of a capture session.
type Status int

const (
	// StatusUninitialized means no camera has been acquired yet.
	StatusUninitialized Status = iota

	// StatusReady means the session is idle and eligible for a capture.
	StatusReady

	// StatusCapturing means a frame grab is in progress.
	StatusCapturing

	// StatusSubmitting means a detection request is in flight.
	StatusSubmitting

	// StatusSucceeded means the last request produced a result.
	StatusSucceeded

	// StatusFailed means the last operation failed. Non-terminal unless
	// camera acquisition itself failed; the next trigger retries.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusReady:
		return "ready"
	case StatusCapturing:
		return "capturing"
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Busy reports whether the status holds the in-flight guard.
func (s Status) Busy() bool {
	return s == StatusCapturing || s == StatusSubmitting
}
