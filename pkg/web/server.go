// Package web provides the dashboard and capture API for wakeguard.
//
// The server is a pure presentation adapter: it subscribes to session
// snapshots and renders them, and forwards capture intent to the session.
// It never holds authoritative session state.
package web

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/wakeguard/go-wakeguard/internal/log"
	"github.com/wakeguard/go-wakeguard/pkg/hub"
	"github.com/wakeguard/go-wakeguard/pkg/session"
)

// LogEntry represents a log line for the dashboard
type LogEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // info, capture, error
	Message string `json:"message"`
}

// Server is the dashboard server
type Server struct {
	app     *fiber.App
	port    string
	session *session.Session

	// Log buffer (last 500 entries)
	logs   []LogEntry
	logsMu sync.RWMutex

	// Hubs for websocket broadcast
	statusHub *hub.Hub
	frameHub  *hub.Hub
}

// NewServer creates a new dashboard server wired to the given session.
func NewServer(port string, sess *session.Session) *Server {
	s := &Server{
		port:      port,
		session:   sess,
		logs:      make([]LogEntry, 0, 500),
		statusHub: hub.New("status"),
		frameHub:  hub.New("frames"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "wakeguard",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/health", s.handleHealth)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/capture", s.handleCapture)
	api.Get("/result/image", s.handleResultImage)
	api.Get("/logs", s.handleGetLogs)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))

	s.app = app

	// Push every session transition to dashboard clients
	sess.Subscribe(func(snap session.Snapshot) {
		s.statusHub.BroadcastJSON(snap)
		if snap.Status == session.StatusSucceeded.String() {
			if r := sess.Result(); r != nil && r.HasAnnotatedImage() {
				s.frameHub.BroadcastBinary(r.AnnotatedImage)
			}
		}
	})

	return s
}

// Start starts the server. Blocks until Shutdown.
func (s *Server) Start() error {
	go s.statusHub.Run()
	go s.frameHub.Run()

	log.Info("dashboard listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("dashboard server error", "error", err)
		}
	}()
}

// AddLog adds a log entry and broadcasts it to clients.
func (s *Server) AddLog(logType, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Type:    logType,
		Message: message,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > 500 {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
