// Package genai is a thin REST client for the Generative Language API. It
// covers the two endpoints the application uses, generateContent for
// multimodal calls and predict for text-to-image batches, and reports API
// failures as typed errors so callers can classify them.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"storycanvas/internal/domain"
	"storycanvas/internal/infra"
)

// Options controls how the client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client issues requests against the Generative Language REST API. Model
// identifiers are passed per call rather than fixed at construction so a
// single client serves the image, batch, and rewrite models.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewClient constructs a client with sane defaults. Callers may provide a
// nil HTTP client; a reusable one with a generous timeout will be created.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	logger := opts.Logger
	if logger == nil {
		discard := infra.Logger(zerolog.New(io.Discard))
		logger = &discard
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: client,
		logger:     logger,
	}
}

// InlineData carries base64-encoded binary content inside a part.
type InlineData struct {
	MIMEType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

// Part is one element of a multimodal request or response. Exactly one
// field is set.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// TextPart and ImagePart build request parts.
func TextPart(text string) Part { return Part{Text: text} }

func ImagePart(img domain.ReferenceImage) Part {
	return Part{InlineData: &InlineData{
		MIMEType: img.MIMEType,
		Data:     encodeBase64(img.Data),
	}}
}

func encodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// GenerateConfig maps to the request's generationConfig object. Zero-value
// fields are omitted from the wire payload; ThinkingBudget uses a pointer
// so an explicit zero still serializes.
type GenerateConfig struct {
	ResponseModalities []string
	Temperature        float64
	TopP               float64
	TopK               int
	ThinkingBudget     *int
}

type generateContentRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

// Content is one conversational turn.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string        `json:"responseModalities,omitempty"`
	Temperature        float64         `json:"temperature,omitempty"`
	TopP               float64         `json:"topP,omitempty"`
	TopK               int             `json:"topK,omitempty"`
	ThinkingConfig     *thinkingConfig `json:"thinkingConfig,omitempty"`
}

type thinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

// Candidate is one model completion.
type Candidate struct {
	Content       Content `json:"content"`
	FinishReason  string  `json:"finishReason,omitempty"`
	FinishMessage string  `json:"finishMessage,omitempty"`
}

// PromptFeedback reports why a request was rejected before generation.
type PromptFeedback struct {
	BlockReason        string `json:"blockReason,omitempty"`
	BlockReasonMessage string `json:"blockReasonMessage,omitempty"`
}

// ContentResponse is the decoded generateContent response body.
type ContentResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
}

// Parts returns the parts of the first candidate, or nil.
func (r *ContentResponse) Parts() []Part {
	if len(r.Candidates) == 0 {
		return nil
	}
	return r.Candidates[0].Content.Parts
}

// Text concatenates the text parts of the first candidate.
func (r *ContentResponse) Text() string {
	var b strings.Builder
	for _, p := range r.Parts() {
		b.WriteString(p.Text)
	}
	return b.String()
}

// PredictConfig maps to the predict request's parameters object.
type PredictConfig struct {
	SampleCount    int
	AspectRatio    string
	OutputMIMEType string
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount    int    `json:"sampleCount"`
	AspectRatio    string `json:"aspectRatio,omitempty"`
	OutputMIMEType string `json:"outputMimeType,omitempty"`
}

// Prediction is one generated image in a predict response.
type Prediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MIMEType           string `json:"mimeType,omitempty"`
}

// PredictResponse is the decoded predict response body.
type PredictResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// APIError is a non-2xx response from the API, carrying the decoded error
// envelope so callers can classify it by status and message text.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("genai: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("genai: status %d", e.StatusCode)
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

// GenerateContent calls models/{model}:generateContent with the given
// parts as a single user turn.
func (c *Client) GenerateContent(ctx context.Context, model string, parts []Part, cfg *GenerateConfig) (*ContentResponse, error) {
	payload := generateContentRequest{
		Contents: []Content{{Role: "user", Parts: parts}},
	}
	if cfg != nil {
		gc := &generationConfig{
			ResponseModalities: cfg.ResponseModalities,
			Temperature:        cfg.Temperature,
			TopP:               cfg.TopP,
			TopK:               cfg.TopK,
		}
		if cfg.ThinkingBudget != nil {
			gc.ThinkingConfig = &thinkingConfig{ThinkingBudget: *cfg.ThinkingBudget}
		}
		payload.GenerationConfig = gc
	}

	var response ContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(model))
	if err := c.invoke(ctx, path, payload, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// PredictImages calls models/{model}:predict with a single prompt instance.
func (c *Client) PredictImages(ctx context.Context, model, prompt string, cfg PredictConfig) (*PredictResponse, error) {
	if cfg.SampleCount <= 0 {
		cfg.SampleCount = 1
	}
	payload := predictRequest{
		Instances: []predictInstance{{Prompt: prompt}},
		Parameters: predictParameters{
			SampleCount:    cfg.SampleCount,
			AspectRatio:    cfg.AspectRatio,
			OutputMIMEType: cfg.OutputMIMEType,
		},
	}

	var response PredictResponse
	path := fmt.Sprintf("/models/%s:predict", url.PathEscape(model))
	if err := c.invoke(ctx, path, payload, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *Client) invoke(ctx context.Context, path string, payload any, out any) error {
	if c.apiKey == "" {
		return domain.ErrMissingAPIKey
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke genai: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("genai: api call")

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		data, _ := io.ReadAll(resp.Body)
		var envelope errorEnvelope
		if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Message != "" {
			apiErr.Status = envelope.Error.Status
			apiErr.Message = envelope.Error.Message
		} else if len(data) > 0 {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode genai response: %w", err)
	}
	return nil
}
