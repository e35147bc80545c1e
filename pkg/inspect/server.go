package inspect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/camkit-project/camkit-go/pkg/metadata"
	"github.com/camkit-project/camkit-go/pkg/remote"
	"github.com/camkit-project/camkit-go/pkg/simulator"
	"github.com/camkit-project/camkit-go/pkg/wire"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// Source is the camera service being inspected.
// This is implemented by simulator.Service.
type Source interface {
	Cameras() []simulator.CameraState
	Plug(p simulator.Profile) error
	Unplug(id string) error
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string

	// Version is reported by the health endpoint.
	Version string

	// Logger for request logging (optional).
	Logger *slog.Logger
}

// Server serves the inspection API:
//
//	GET    /api/v1/health
//	GET    /api/v1/devices
//	POST   /api/v1/devices              plug a camera (JSON profile)
//	GET    /api/v1/devices/:id
//	DELETE /api/v1/devices/:id          unplug a camera
//	GET    /api/v1/devices/:id/:tag
type Server struct {
	config ServerConfig
	src    Source
	logger *slog.Logger
	engine *gin.Engine
	server *http.Server
	ln     net.Listener
}

// DeviceSummary is the list view of a camera.
type DeviceSummary struct {
	ID         string `json:"id"`
	Position   string `json:"position"`
	Type       string `json:"type"`
	Connection string `json:"connection"`
	InUse      bool   `json:"inUse"`
	Opened     bool   `json:"opened"`
}

// DeviceDetail is the full view of a camera.
type DeviceDetail struct {
	DeviceSummary
	Capabilities map[string]any `json:"capabilities"`
	Settings     map[string]any `json:"settings,omitempty"`
}

// NewServer creates a new server for src.
func NewServer(src Source, cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	s := &Server{
		config: cfg,
		src:    src,
		logger: logger,
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.logRequests())
	s.registerRoutes()
	return s
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/api/v1")
	v1.GET("/health", s.handleHealth)
	v1.GET("/devices", s.handleDevices)
	v1.POST("/devices", s.handlePlug)
	v1.GET("/devices/:id", s.handleDevice)
	v1.DELETE("/devices/:id", s.handleUnplug)
	v1.GET("/devices/:id/:tag", s.handleEntry)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("inspect listen: %w", err)
	}
	s.ln = ln
	s.server = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("inspection API listening", slog.String("address", ln.Addr().String()))

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("inspection API stopped", slog.Any("error", err))
		}
	}()
	return nil
}

// Addr returns the listen address once started.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("inspect request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("took", time.Since(start)))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": s.config.Version,
		"cameras": len(s.src.Cameras()),
	})
}

func (s *Server) handleDevices(c *gin.Context) {
	cams := s.src.Cameras()
	out := make([]DeviceSummary, 0, len(cams))
	for _, cam := range cams {
		out = append(out, summarize(cam))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleDevice(c *gin.Context) {
	cam, ok := s.find(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
		return
	}
	caps, err := cam.Profile.Capabilities()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	detail := DeviceDetail{
		DeviceSummary: summarize(cam),
		Capabilities:  StoreMap(caps),
	}
	if cam.Settings != nil && cam.Settings.Len() > 0 {
		detail.Settings = StoreMap(cam.Settings)
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) handleEntry(c *gin.Context) {
	path, err := ParsePath(c.Param("id") + "/" + c.Param("tag"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cam, ok := s.find(path.DeviceID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
		return
	}

	it, ok := lookupEntry(cam, path.Tag)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no entry " + path.String()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tag":   TagDisplayName(it.Tag),
		"type":  it.Type.String(),
		"value": ItemValue(it),
	})
}

func (s *Server) handlePlug(c *gin.Context) {
	var p simulator.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.src.Plug(p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cam, _ := s.find(p.ID)
	c.JSON(http.StatusCreated, summarize(cam))
}

func (s *Server) handleUnplug(c *gin.Context) {
	err := s.src.Unplug(c.Param("id"))
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case remote.IsStatus(err, wire.StatusNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) find(id string) (simulator.CameraState, bool) {
	for _, cam := range s.src.Cameras() {
		if cam.ID == id {
			return cam, true
		}
	}
	return simulator.CameraState{}, false
}

// lookupEntry finds a tag in the current settings, falling back to the
// capabilities.
func lookupEntry(cam simulator.CameraState, tag uint32) (metadata.Item, bool) {
	if cam.Settings != nil {
		if it, ok := cam.Settings.Get(tag); ok {
			return it, true
		}
	}
	caps, err := cam.Profile.Capabilities()
	if err != nil {
		return metadata.Item{}, false
	}
	return caps.Get(tag)
}

func summarize(cam simulator.CameraState) DeviceSummary {
	return DeviceSummary{
		ID:         cam.ID,
		Position:   cam.Profile.Position,
		Type:       cam.Profile.Type,
		Connection: cam.Profile.Connection,
		InUse:      cam.InUse,
		Opened:     cam.Opened,
	}
}
