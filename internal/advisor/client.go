package advisor

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
)

// ErrAPIKeyMissing is returned before any network I/O when the client was
// constructed without an API key.
var ErrAPIKeyMissing = errors.New("gemini api key not configured")

// UpstreamErrorKind classifies how a generateContent call failed: the
// request never reached the API, the API answered with a non-2xx status,
// or the API answered 2xx with a body we could not use.
type UpstreamErrorKind string

const (
	KindTransport UpstreamErrorKind = "transport"
	KindStatus    UpstreamErrorKind = "status"
	KindMalformed UpstreamErrorKind = "malformed"
)

type UpstreamError struct {
	Kind       UpstreamErrorKind
	StatusCode int
	Message    string
	Cause      error
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// GenerateOptions controls a single generateContent call.
type GenerateOptions struct {
	SystemInstruction string
	JSONOutput        bool
	EnableSearch      bool
}

type Config struct {
	APIURL  string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client talks to the Gemini generateContent REST endpoint.
type Client struct {
	apiURL     string
	apiKey     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ---- wire types ----

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type googleSearch struct{}

type tool struct {
	GoogleSearch *googleSearch `json:"google_search,omitempty"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	Tools             []tool            `json:"tools,omitempty"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

const maxErrorBodyPreview = 100

// Generate sends a single prompt to the model and returns the generated
// text of the first candidate. Failures are normalized into *UpstreamError
// so callers can map them onto the API error envelope.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if c.apiKey == "" {
		return "", ErrAPIKeyMissing
	}

	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}

	// The API rejects grounding tools combined with JSON response mode,
	// so search is only attached for free-text generation.
	if opts.EnableSearch && !opts.JSONOutput {
		payload.Tools = []tool{{GoogleSearch: &googleSearch{}}}
	}

	if opts.SystemInstruction != "" {
		payload.SystemInstruction = &content{Parts: []part{{Text: opts.SystemInstruction}}}
	}

	if opts.JSONOutput {
		payload.GenerationConfig = &generationConfig{ResponseMimeType: "application/json"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.apiURL, c.model, c.apiKey)

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("calling generative api",
		"model", c.model,
		"json_output", opts.JSONOutput,
		"search_enabled", len(payload.Tools) > 0)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("generative api unreachable", "error", err)
		return "", &UpstreamError{
			Kind:    KindTransport,
			Message: "generative API unreachable",
			Cause:   err,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", &UpstreamError{
			Kind:    KindTransport,
			Message: "failed to read generative API response",
			Cause:   err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", c.statusError(resp.StatusCode, raw)
	}

	var genResp generateResponse
	if err := json.Unmarshal(raw, &genResp); err != nil {
		c.logger.Error("failed to decode generative api response", "error", err)
		return "", &UpstreamError{
			Kind:    KindMalformed,
			Message: "generative API returned an undecodable response",
			Cause:   err,
		}
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", &UpstreamError{
			Kind:    KindMalformed,
			Message: "generative API returned no candidates",
		}
	}

	text := genResp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", &UpstreamError{
			Kind:    KindMalformed,
			Message: "generative API returned an empty candidate",
		}
	}

	return text, nil
}

// statusError extracts the detailed message from Google's error body when
// present; a non-JSON body is truncated into the message instead.
func (c *Client) statusError(statusCode int, raw []byte) *UpstreamError {
	message := fmt.Sprintf("generative API call failed with status %d", statusCode)

	var errBody apiErrorBody
	if err := json.Unmarshal(raw, &errBody); err == nil && errBody.Error.Message != "" {
		message = errBody.Error.Message

		if statusCode == http.StatusForbidden || strings.Contains(errBody.Error.Message, "API_KEY_INVALID") {
			message = "invalid API key or API not enabled; check GEMINI_API_KEY and Google Cloud status"
		}
	} else {
		preview := string(raw)
		if len(preview) > maxErrorBodyPreview {
			preview = preview[:maxErrorBodyPreview] + "..."
		}
		if preview != "" {
			message = fmt.Sprintf("non-JSON error response from generative API: %s", preview)
		}
	}

	c.logger.Error("generative api error response",
		"status_code", statusCode,
		"message", message)

	return &UpstreamError{
		Kind:       KindStatus,
		StatusCode: statusCode,
		Message:    message,
	}
}
