package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	defaultTextModel  = "gemini-2.5-flash"
	defaultImageModel = "gemini-2.5-flash-image"
	defaultVideoModel = "veo-3.0-generate-001"
)

type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	HTTPClient *http.Client
	Logger     *slog.Logger
	Poll       PollPolicy
}

// Client is the single gateway to the generation provider. It is constructed
// explicitly and injected wherever generation is needed; there is no
// package-level instance.
type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string
	httpClient *http.Client
	logger     *slog.Logger
	poll       PollPolicy
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "v1beta"
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		apiVersion: apiVersion,
		httpClient: opts.HTTPClient,
		logger:     logger,
		poll:       opts.Poll.withDefaults(),
	}
}

type TextRequest struct {
	Prompt    string
	Model     string
	MaxTokens int
	System    string
}

func (c *Client) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", errors.New("prompt is empty")
	}

	model := req.Model
	if model == "" {
		model = defaultTextModel
	}

	payload := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.System != "" {
		payload.SystemInstruction = &content{Role: "user", Parts: []part{{Text: req.System}}}
	}

	resp, err := c.generateContent(ctx, model, payload)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", &ProviderError{Message: "response contains no text"}
	}
	return text, nil
}

type ImageOptions struct {
	Width          int
	Height         int
	Steps          int
	NegativePrompt string
	UseCase        UseCase
}

func (c *Client) GenerateImage(ctx context.Context, prompt string, opts ImageOptions) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt is empty")
	}

	return c.generateImage(ctx, buildImagePrompt(prompt, opts), nil, opts)
}

func (c *Client) GenerateImageToImage(ctx context.Context, source []byte, mimeType, prompt string, opts ImageOptions) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt is empty")
	}
	if len(source) == 0 {
		return "", errors.New("source image is empty")
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	inline := &blob{
		Data:     base64.StdEncoding.EncodeToString(source),
		MimeType: mimeType,
	}
	return c.generateImage(ctx, buildImagePrompt(prompt, opts), inline, opts)
}

func buildImagePrompt(prompt string, opts ImageOptions) string {
	enhanced := enhancePrompt(opts.UseCase, prompt)
	if negative := negativeFor(opts.UseCase, opts.NegativePrompt); negative != "" {
		enhanced += "\nAvoid: " + negative + "."
	}
	return enhanced
}

func (c *Client) generateImage(ctx context.Context, prompt string, source *blob, opts ImageOptions) (string, error) {
	parts := []part{{Text: prompt}}
	if source != nil {
		parts = append(parts, part{InlineData: source})
	}

	preset := SnapAspect(opts.Width, opts.Height)
	payload := generateContentRequest{
		Contents: []content{{Role: "user", Parts: parts}},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig: &imageConfig{
				AspectRatio: preset.Name,
				Steps:       opts.Steps,
			},
		},
	}

	model := defaultImageModel
	resp, err := c.generateContent(ctx, model, payload)
	if err != nil && payload.GenerationConfig.ImageConfig.Steps != 0 && isUnknownFieldError(err, "steps") {
		// Not every provider build accepts a step count; drop it and retry once.
		payload.GenerationConfig.ImageConfig.Steps = 0
		resp, err = c.generateContent(ctx, model, payload)
	}
	if err != nil {
		return "", err
	}

	if len(resp.Images) == 0 {
		return "", &ProviderError{Message: "response contains no image bytes"}
	}
	return resp.Images[0], nil
}

type Response struct {
	Text   string
	Images []string
}

func (c *Client) generateContent(ctx context.Context, model string, payload generateContentRequest) (Response, error) {
	raw, err := c.post(ctx, fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, model), payload)
	if err != nil {
		return Response{}, err
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}

	return extractParts(decoded), nil
}

func (c *Client) post(ctx context.Context, url string, payload any) ([]byte, error) {
	if c.httpClient == nil {
		return nil, errors.New("http client is nil")
	}
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, &ProviderError{Message: "API key is missing"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return nil, newProviderError(httpResp.StatusCode, rawBody)
	}
	return rawBody, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if c.httpClient == nil {
		return nil, errors.New("http client is nil")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return nil, newProviderError(httpResp.StatusCode, rawBody)
	}
	return rawBody, nil
}

func extractParts(resp generateContentResponse) Response {
	if len(resp.Candidates) == 0 {
		return Response{}
	}

	var textBuilder strings.Builder
	var images []string

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			textBuilder.WriteString(p.Text)
		}
		if p.InlineData != nil && p.InlineData.Data != "" {
			images = append(images, p.InlineData.Data)
		}
	}

	return Response{Text: textBuilder.String(), Images: images}
}

type generateContentRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	Temperature        float64      `json:"temperature,omitempty"`
	MaxOutputTokens    int          `json:"maxOutputTokens,omitempty"`
	ResponseModalities []string     `json:"responseModalities,omitempty"`
	ImageConfig        *imageConfig `json:"imageConfig,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	Steps       int    `json:"steps,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string `json:"text,omitempty"`
	InlineData *blob  `json:"inlineData,omitempty"`
}

type blob struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

func isUnknownFieldError(err error, field string) bool {
	message := err.Error()
	return strings.Contains(message, "Unknown name") && strings.Contains(message, field)
}
