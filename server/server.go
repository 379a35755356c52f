// Package server exposes validation and namelist generation over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/compozy/wrfconf/engine/gate"
	"github.com/compozy/wrfconf/engine/generate"
	"github.com/compozy/wrfconf/engine/schema"
	"github.com/compozy/wrfconf/engine/validate"
	"github.com/compozy/wrfconf/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

// Config holds the listener settings.
type Config struct {
	Host        string
	Port        int
	CORSEnabled bool
	// OutputRoot confines the output_dir of generate requests. Empty means
	// requests may not write files at all.
	OutputRoot string
}

// FullAddress returns host:port.
func (c *Config) FullAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Server serves the generation API.
type Server struct {
	config    *Config
	registry  *schema.Registry
	validator *validate.Validator
	gate      *gate.Gate
	service   *generate.Service
	artifacts *artifactStore
	version   string
}

func NewServer(config *Config, reg *schema.Registry, generator generate.Generator, version string) *Server {
	if config == nil {
		config = &Config{Host: "127.0.0.1", Port: 5001}
	}
	v := validate.New(reg)
	g := gate.New(reg, v)
	return &Server{
		config:    config,
		registry:  reg,
		validator: v,
		gate:      g,
		service:   generate.NewService(g, generator),
		artifacts: newArtifactStore(0),
		version:   version,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router(log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	if s.config.CORSEnabled {
		router.Use(CORSMiddleware())
	}
	api := router.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/options", s.handleOptions)
	api.POST("/validate", s.handleValidate)
	api.POST("/generate", s.handleGenerate)
	api.GET("/download/:id/:file", s.handleDownload)
	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	addr := s.config.FullAddress()
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(log),
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting HTTP server", "address", fmt.Sprintf("http://%s", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Debug("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server shutdown completed successfully")
	return nil
}
