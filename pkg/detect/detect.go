// Package detect provides a client for a remote drowsiness-inference API.
//
// The wire contract is a single JSON POST: the request carries a base64
// encoded image, the response carries a drowsy flag, a confidence fraction,
// and optionally a base64 annotated image with detection overlays.
package detect

import (
	"context"
	"fmt"
)

// Detector is the behavior the rest of the application depends on.
// Client is the production implementation; Mock serves tests.
type Detector interface {
	// Detect submits one image and returns the parsed verdict.
	Detect(ctx context.Context, image []byte) (*Result, error)

	// Health checks endpoint connectivity.
	Health(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Result is one immutable detection verdict. It is replaced wholesale by the
// next request; callers must not mutate it.
type Result struct {
	// DrowsyDetected reports whether the server flagged drowsiness.
	DrowsyDetected bool

	// Confidence is the server's confidence as a fraction in [0, 1].
	Confidence float64

	// AnnotatedImage is the server-rendered overlay image, decoded from
	// base64. Nil when the server returned none.
	AnnotatedImage []byte

	// RequestID is the client-generated ID sent with the request.
	RequestID string

	// LatencyMs is the round-trip time of the exchange.
	LatencyMs int64
}

// Summary renders the verdict as a human-readable status line.
// Confidence is shown as a percentage with two decimals.
func (r *Result) Summary() string {
	state := "alert"
	if r.DrowsyDetected {
		state = "DROWSY"
	}
	return fmt.Sprintf("%s (%.2f%% confidence)", state, r.Confidence*100)
}

// HasAnnotatedImage reports whether the server returned an overlay image.
func (r *Result) HasAnnotatedImage() bool {
	return len(r.AnnotatedImage) > 0
}
