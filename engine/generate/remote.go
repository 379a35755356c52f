package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/compozy/wrfconf/pkg/logger"
)

// RemoteOptions configure the HTTP client of a RemoteGenerator.
type RemoteOptions struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	Debug      bool
}

// RemoteGenerator posts requests to a generation service.
type RemoteGenerator struct {
	client *resty.Client
}

func NewRemoteGenerator(opts RemoteOptions) (*RemoteGenerator, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("generator url is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetDebug(opts.Debug)
	client.AddRetryCondition(retryCondition)
	return &RemoteGenerator{client: client}, nil
}

// retryCondition retries network failures and transient server statuses
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == 429 || code == 408
}

func (g *RemoteGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	log := logger.FromContext(ctx)
	var result Response
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&result).
		Post("/api/generate")
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	log.Debug("Generation service responded", "status", resp.StatusCode(), "success", result.Success)
	if resp.IsError() || !result.Success {
		msg := result.Error
		if msg == "" && resp.IsError() {
			msg = strings.TrimSpace(resp.String())
		}
		if msg == "" {
			msg = "service reported failure"
		}
		status := 0
		if resp.IsError() {
			status = resp.StatusCode()
		}
		return nil, &RequestError{Status: status, Message: msg}
	}
	return &result, nil
}
