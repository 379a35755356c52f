// Package generate turns a finished configuration document into namelist files,
// either locally or through a remote generation service.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/compozy/wrfconf/engine/document"
	"github.com/compozy/wrfconf/engine/schema"
	"github.com/compozy/wrfconf/engine/validate"
)

// File keys used in responses.
const (
	FileWPS   = "namelist.wps"
	FileInput = "namelist.input"
)

// Request carries the document in canonical units to a generator.
type Request struct {
	Document  document.Document
	OutputDir string
}

// MarshalJSON writes the sections at the top level next to output_dir.
func (r Request) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(schema.SectionNames())+1)
	for name, sec := range r.Document.Sections() {
		out[string(name)] = sec
	}
	if r.OutputDir != "" {
		out["output_dir"] = r.OutputDir
	}
	return json.Marshal(out)
}

// ParseRequest decodes a request body, migrating legacy document shapes.
func ParseRequest(reg *schema.Registry, data []byte) (Request, []string, error) {
	var head struct {
		OutputDir string `json:"output_dir"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Request{}, nil, fmt.Errorf("parse request: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return Request{}, nil, fmt.Errorf("parse request: %w", err)
	}
	delete(raw, "output_dir")
	body, err := json.Marshal(raw)
	if err != nil {
		return Request{}, nil, fmt.Errorf("parse request: %w", err)
	}
	doc, warnings, err := document.Decode(reg, body)
	if err != nil {
		return Request{}, warnings, err
	}
	return Request{Document: doc, OutputDir: head.OutputDir}, warnings, nil
}

// Response is the outcome reported by a generator.
type Response struct {
	Success       bool              `json:"success"`
	OutputDir     string            `json:"output_dir,omitempty"`
	Messages      []string          `json:"messages,omitempty"`
	DownloadLinks map[string]string `json:"download_links,omitempty"`
	FileContents  map[string]string `json:"file_contents,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// Generator produces namelist files for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// ErrRequest matches every *RequestError.
var ErrRequest = errors.New("generation request failed")

// RequestError reports a failed generation. Message is what the backend said.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	switch {
	case e.Message != "" && e.Status != 0:
		return fmt.Sprintf("generation failed (status %d): %s", e.Status, e.Message)
	case e.Message != "":
		return "generation failed: " + e.Message
	case e.Err != nil:
		return "generation failed: " + e.Err.Error()
	}
	return "generation failed"
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequest
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// NotReadyError is returned when the document cannot be generated yet.
type NotReadyError struct {
	Blockers validate.Report
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("configuration is not ready: %d field(s) need attention", e.Blockers.Count())
}
