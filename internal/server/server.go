// Package server exposes editing sessions over HTTP and serves the browser page.
package server

import (
	"context"
	"crypto/tls"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mhpenta/imageedit"
	"github.com/mhpenta/imageedit/internal/preview"
	"github.com/mhpenta/imageedit/internal/session"
	"github.com/rs/zerolog"
)

//go:embed web
var webFS embed.FS

// Options configures the HTTP layer.
type Options struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// MaxUploadBytes caps an uploaded image. Defaults to imageedit.MaxImageSize.
	MaxUploadBytes int64

	// WriteTimeout must outlast the slowest edit.
	WriteTimeout time.Duration

	// GinMode is one of gin's modes: debug, release or test.
	GinMode string

	Logger zerolog.Logger
}

// Server owns the gin engine and the underlying http.Server.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	sessions   *session.Store
	previews   *preview.Registry
	maxUpload  int64
	logger     zerolog.Logger
}

// New builds the routes over the given session store and preview registry.
func New(sessions *session.Store, previews *preview.Registry, opts Options) *Server {
	if opts.GinMode != "" {
		gin.SetMode(opts.GinMode)
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = imageedit.MaxImageSize
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 3 * time.Minute
	}

	s := &Server{
		engine:    gin.New(),
		sessions:  sessions,
		previews:  previews,
		maxUpload: opts.MaxUploadBytes,
		logger:    opts.Logger,
	}
	s.routes()

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.engine,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	r := s.engine
	r.Use(gin.Recovery(), requestLogger(s.logger), securityHeaders(), localCORS())

	static, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	r.GET("/", s.handleIndex)
	r.StaticFS("/static", http.FS(static))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"sessions": s.sessions.Count(),
		})
	})

	api := r.Group("/api/sessions")
	api.POST("", s.handleCreateSession)

	one := api.Group("/:id", s.requireSession)
	one.GET("", s.handleGetSession)
	one.DELETE("", s.handleDeleteSession)
	one.POST("/image", s.handleUpload)
	one.PUT("/prompt", s.handleSetPrompt)
	one.POST("/edit", s.handleEdit)
	one.GET("/preview", s.handlePreview)
	one.GET("/download", s.handleDownload)
}

// Run listens until Shutdown is called.
func (s *Server) Run() error {
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
