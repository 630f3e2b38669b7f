// Package genai implements ports.Analyzer against a generative-AI text
// and image service over HTTP. It owns prompt construction and response
// parsing; the orchestrator never sees prompts or transport details.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/halden-bio/catalyst/internal/logging"
	"github.com/halden-bio/catalyst/pkg/domain"
	"github.com/halden-bio/catalyst/pkg/ports"
)

// Config holds connection settings for the analysis service.
type Config struct {
	// BaseURL is the service root, e.g. "https://api.example.com".
	BaseURL string
	// APIKey is sent as a bearer token when non-empty.
	APIKey string
	// Model selects the generative model.
	Model string
	// Timeout bounds a single request. Zero means no client timeout;
	// callers can still cancel via context.
	Timeout time.Duration
}

// Client calls the generative-AI service. Implements ports.Analyzer.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

var _ ports.Analyzer = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient injects a custom HTTP client (tests, instrumentation).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the given service configuration.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wire types. The service exposes a single generate endpoint; the
// response carries text and, for image-producing steps, base64 image data.
type generateRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type generateResponse struct {
	Text        string `json:"text"`
	ImageData   string `json:"image_data,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze performs the analysis for one step: build the step's prompt,
// issue a single request (no retries), and parse the response into a
// StepResult of the step's expected kind.
func (c *Client) Analyze(ctx context.Context, req ports.AnalysisRequest) (*domain.StepResult, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, err
	}

	kind := stepKind(req.Step)

	body, err := json.Marshal(generateRequest{
		Model:          c.cfg.Model,
		Prompt:         prompt,
		ResponseFormat: responseFormat(kind),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.BaseURL, "/")+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis response: %w", err)
	}

	c.logger.Debug("analysis response",
		"step", req.Step,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, errors.New(apiErr.Error.Message)
		}
		return nil, fmt.Errorf("analysis service returned status %d", resp.StatusCode)
	}

	var gen generateResponse
	if err := json.Unmarshal(data, &gen); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}

	return parseResult(req.Step, kind, &gen)
}

func responseFormat(kind domain.ResultKind) string {
	switch kind {
	case domain.KindStructured:
		return "json"
	case domain.KindImageText:
		return "image"
	default:
		return ""
	}
}
