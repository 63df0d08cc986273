package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/junction-boxers/fleetgate/llm"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
)

// Config holds the adapter configuration.
type Config struct {
	// APIKey for authentication
	APIKey string

	// BaseURL for the API (optional override)
	BaseURL string

	// Model identifier (e.g. "gemini-1.5-flash")
	Model string

	// Timeout for requests
	Timeout time.Duration
}

// Adapter implements llm.Client for the Gemini generateContent API.
type Adapter struct {
	config     Config
	httpClient *http.Client
}

// NewAdapter creates a new Gemini adapter
func NewAdapter(config Config) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Adapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name returns the provider name
func (a *Adapter) Name() string {
	return "gemini"
}

// generateRequest mirrors the generateContent wire format
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateResponse holds the subset of the response we consume
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends a single-turn prompt and returns the first candidate's
// text. A single attempt is made; the underlying transport reconnects
// stale connections on its own.
func (a *Adapter) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", llm.NewClientError(a.Name(), "MARSHAL_ERROR", "failed to marshal request", 0, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", a.config.BaseURL, a.config.Model, a.config.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(reqBody)))
	if err != nil {
		return "", llm.NewClientError(a.Name(), "REQUEST_ERROR", "failed to create request", 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", llm.NewClientError(a.Name(), "HTTP_ERROR", "HTTP request failed", 0, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", llm.NewClientError(a.Name(), "READ_ERROR", "failed to read response", httpResp.StatusCode, err)
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", llm.NewClientError(a.Name(), "UNMARSHAL_ERROR", "failed to unmarshal response", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("generateContent returned status %d", httpResp.StatusCode)
		if genResp.Error != nil && genResp.Error.Message != "" {
			msg = genResp.Error.Message
		}
		return "", llm.NewClientError(a.Name(), "API_ERROR", msg, httpResp.StatusCode, nil)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", llm.NewClientError(a.Name(), "EMPTY_RESPONSE", "no candidates in response", httpResp.StatusCode, nil)
	}

	var sb strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}

	return sb.String(), nil
}
