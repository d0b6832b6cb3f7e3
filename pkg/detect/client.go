package detect

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/wakeguard/go-wakeguard/internal/httpc"
)

// Client is the HTTP-based detector. It speaks the fixed JSON contract:
//
//	POST <endpoint>  {"image": "<base64>"}
//	200              {"drowsy_detected": bool, "confidence": float, "processed_image": "<base64, optional>"}
//
// Any non-200 status is an API error whose body is never parsed.
type Client struct {
	endpoint string
	config   *Config
	http     *http.Client
	logger   *slog.Logger
}

// detectRequest is the wire request payload.
type detectRequest struct {
	Image string `json:"image"`
}

// detectResponse is the wire response payload.
type detectResponse struct {
	DrowsyDetected bool    `json:"drowsy_detected"`
	Confidence     float64 `json:"confidence"`
	ProcessedImage string  `json:"processed_image"`
}

// NewClient creates a new detection client.
func NewClient(opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.Endpoint == "" {
		return nil, ErrNoEndpoint
	}

	return &Client{
		endpoint: cfg.Endpoint,
		config:   cfg,
		http:     httpc.NewClient(cfg.Timeout),
		logger:   cfg.Logger.With("component", "detect.client"),
	}, nil
}

// Detect submits one image and returns the parsed verdict.
func (c *Client) Detect(ctx context.Context, image []byte) (*Result, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	start := time.Now()
	requestID := uuid.NewString()

	body, err := json.Marshal(detectRequest{
		Image: base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return nil, wrapTransport(fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, wrapTransport(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, wrapTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain without parsing so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		c.logger.Warn("inference API error",
			"status", resp.StatusCode,
			"request_id", requestID,
		)
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	var wire detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, wrapTransport(fmt.Errorf("decode response: %w", err))
	}

	result := &Result{
		DrowsyDetected: wire.DrowsyDetected,
		Confidence:     wire.Confidence,
		RequestID:      requestID,
		LatencyMs:      time.Since(start).Milliseconds(),
	}

	// An empty processed_image means no annotated image is available;
	// decoding it would produce a bogus zero-byte image.
	if wire.ProcessedImage != "" {
		annotated, err := base64.StdEncoding.DecodeString(wire.ProcessedImage)
		if err != nil {
			return nil, wrapTransport(fmt.Errorf("decode annotated image: %w", err))
		}
		result.AnnotatedImage = annotated
	}

	c.logger.Debug("detection complete",
		"drowsy", result.DrowsyDetected,
		"confidence", result.Confidence,
		"latency_ms", result.LatencyMs,
		"request_id", requestID,
	)

	return result, nil
}

// Health checks endpoint connectivity with a HEAD request.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.endpoint, nil)
	if err != nil {
		return wrapTransport(fmt.Errorf("create request: %w", err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapTransport(err)
	}
	resp.Body.Close()

	// Inference endpoints commonly reject HEAD/GET with 405; that still
	// proves the server is reachable.
	if resp.StatusCode >= 500 {
		return &APIError{StatusCode: resp.StatusCode}
	}
	return nil
}

// Close releases resources.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Verify Client implements Detector at compile time.
var _ Detector = (*Client)(nil)
