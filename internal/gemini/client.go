package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"codeclinic/internal/errors"
)

// Client talks to the Gemini generateContent endpoint. One request per
// analysis, bounded by a fixed timeout, no retries.
type Client struct {
	apiKey       string
	model        string
	baseEndpoint string
	httpClient   *http.Client
}

// geminiRequest is the generateContent request body
type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature *float32 `json:"temperature,omitempty"`
	TopP        *float32 `json:"topP,omitempty"`
	TopK        *int32   `json:"topK,omitempty"`
}

// geminiResponse is the subset of the generateContent response we consume
type geminiResponse struct {
	Candidates []struct {
		Content *geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient creates a Gemini client. The timeout bounds the whole request,
// including connection setup and body read.
func NewClient(apiKey, endpoint, model string, timeout time.Duration) *Client {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		apiKey:       apiKey,
		model:        model,
		baseEndpoint: strings.TrimSuffix(endpoint, "/"),
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// endpoint constructs the full generateContent URL. The API key travels as a
// query parameter, not a header.
func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseEndpoint, c.model, c.apiKey)
}

// Complete sends one prompt and returns the first candidate's text verbatim.
// Failures are classified as *errors.UpstreamError: Timeout when the bound
// elapses, UpstreamHTTP for non-2xx statuses, MalformedResponse when a 2xx
// body carries no completion text. No trimming, no section parsing.
func (c *Client) Complete(ctx context.Context, promptText string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: promptText}},
			},
		},
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", errors.NewUpstreamTimeout(err)
		}
		return "", &errors.UpstreamError{Kind: errors.UpstreamHTTP, Detail: err.Error(), Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return "", errors.NewUpstreamTimeout(err)
		}
		return "", errors.NewUpstreamMalformed(fmt.Sprintf("failed to read response body: %v", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := string(body)
		var errResp geminiErrorResponse
		if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && errResp.Error.Message != "" {
			detail = errResp.Error.Message
		}
		return "", errors.NewUpstreamHTTP(resp.StatusCode, detail)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", errors.NewUpstreamMalformed(fmt.Sprintf("failed to decode response: %v", err))
	}

	if len(parsed.Candidates) == 0 {
		return "", errors.NewUpstreamMalformed("no candidates in response")
	}

	candidate := parsed.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.NewUpstreamMalformed("candidate has no content parts")
	}

	return candidate.Content.Parts[0].Text, nil
}

// isTimeout reports whether err represents an elapsed deadline, either from
// the http.Client timeout or the request context.
func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
