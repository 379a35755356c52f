package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/compozy/wrfconf/engine/generate"
	"github.com/compozy/wrfconf/engine/schema"
	"github.com/compozy/wrfconf/pkg/logger"
)

const maxBodyBytes = 1 << 20

// ErrOutputDir marks a generate request whose output_dir the server refuses.
var ErrOutputDir = errors.New("output_dir rejected")

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": s.version})
}

func (s *Server) handleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"enumerations": schema.Enumerations(),
		"sections":     s.registry.Describe(),
	})
}

func (s *Server) readRequest(c *gin.Context) (generate.Request, []string, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, generate.Response{Error: "failed to read request body"})
		return generate.Request{}, nil, false
	}
	req, warnings, err := generate.ParseRequest(s.registry, body)
	if err != nil {
		c.JSON(http.StatusBadRequest, generate.Response{Error: err.Error(), Messages: warnings})
		return generate.Request{}, nil, false
	}
	return req, warnings, true
}

func (s *Server) handleValidate(c *gin.Context) {
	req, warnings, ok := s.readRequest(c)
	if !ok {
		return
	}
	report := s.validator.All(req.Document)
	c.JSON(http.StatusOK, gin.H{
		"valid":        report.Valid(),
		"can_generate": s.gate.CanGenerate(req.Document),
		"errors":       report,
		"messages":     warnings,
	})
}

func (s *Server) handleGenerate(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	req, warnings, ok := s.readRequest(c)
	if !ok {
		return
	}
	outputDir, err := resolveOutputDir(s.config.OutputRoot, req.OutputDir)
	if err != nil {
		c.JSON(http.StatusBadRequest, generate.Response{Error: err.Error()})
		return
	}
	resp, err := s.service.Run(ctx, req.Document, outputDir)
	var notReady *generate.NotReadyError
	switch {
	case errors.As(err, &notReady):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   notReady.Error(),
			"errors":  notReady.Blockers,
		})
		return
	case err != nil:
		log.Warn("Generation request failed", "error", err)
		c.JSON(http.StatusBadGateway, generate.Response{Error: err.Error()})
		return
	}
	if len(resp.FileContents) > 0 {
		id := s.artifacts.put(resp.FileContents)
		resp.DownloadLinks = make(map[string]string, len(resp.FileContents))
		for name := range resp.FileContents {
			resp.DownloadLinks[name] = fmt.Sprintf("/api/download/%s/%s", id, name)
		}
	}
	resp.Messages = append(warnings, resp.Messages...)
	c.JSON(http.StatusOK, resp)
}

// resolveOutputDir maps a client supplied directory onto the server output
// root. Absolute paths and paths leaving the root are refused.
func resolveOutputDir(root, requested string) (string, error) {
	if requested == "" {
		return "", nil
	}
	if root == "" {
		return "", fmt.Errorf("%w: no output root configured", ErrOutputDir)
	}
	if filepath.IsAbs(requested) || filepath.VolumeName(requested) != "" {
		return "", fmt.Errorf("%w: %q must be relative to the output root", ErrOutputDir, requested)
	}
	root = filepath.Clean(root)
	dir := filepath.Join(root, requested)
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q leaves the output root", ErrOutputDir, requested)
	}
	return dir, nil
}

func (s *Server) handleDownload(c *gin.Context) {
	text, ok := s.artifacts.get(c.Param("id"), c.Param("file"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", c.Param("file")))
	data := []byte(text)
	c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}
