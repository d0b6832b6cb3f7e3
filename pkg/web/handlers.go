package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/wakeguard/go-wakeguard/pkg/hub"
	"github.com/wakeguard/go-wakeguard/pkg/session"
)

// handleHealth reports liveness plus detection-endpoint reachability
func (s *Server) handleHealth(c *fiber.Ctx) error {
	endpoint := "ok"
	if err := s.session.Health(c.Context()); err != nil {
		endpoint = "unreachable"
	}
	return c.JSON(fiber.Map{
		"status":   "ok",
		"session":  s.session.Status().String(),
		"endpoint": endpoint,
	})
}

// handleStatus returns the current session snapshot
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.session.Snapshot())
}

// handleCapture runs one capture-submit cycle. The call is synchronous:
// the response carries the outcome snapshot. A cycle already in flight is
// rejected with 409 rather than queued.
func (s *Server) handleCapture(c *fiber.Ctx) error {
	err := s.session.Trigger(c.Context())

	// A missing camera is recoverable: re-acquire the source and run the
	// cycle once more before rejecting.
	if errors.Is(err, session.ErrNotReady) {
		if initErr := s.session.Init(c.Context()); initErr == nil {
			err = s.session.Trigger(c.Context())
		}
	}

	switch {
	case errors.Is(err, session.ErrBusy):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":    "request in flight",
			"snapshot": s.session.Snapshot(),
		})
	case errors.Is(err, session.ErrNotReady):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "camera not initialized",
		})
	case err != nil:
		s.AddLog("error", s.session.StatusText())
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":    err.Error(),
			"snapshot": s.session.Snapshot(),
		})
	}

	s.AddLog("capture", s.session.StatusText())
	return c.JSON(s.session.Snapshot())
}

// handleResultImage serves the latest annotated image
func (s *Server) handleResultImage(c *fiber.Ctx) error {
	result := s.session.Result()
	if result == nil || !result.HasAnnotatedImage() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no annotated image available",
		})
	}

	c.Set("Content-Type", "image/jpeg")
	return c.Send(result.AnnotatedImage)
}

// handleGetLogs returns recent log entries
func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	return c.JSON(s.logs)
}

// handleStatusWS streams session snapshots to a dashboard client
func (s *Server) handleStatusWS(c *websocket.Conn) {
	client := hub.NewClient(s.statusHub, c)
	client.Run()
}

// handleFramesWS streams annotated frames to a dashboard client
func (s *Server) handleFramesWS(c *websocket.Conn) {
	client := hub.NewClient(s.frameHub, c)
	client.Run()
}
