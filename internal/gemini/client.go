package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
)

const (
	modelImage = "gemini-2.5-flash-image"
	modelText  = "gemini-2.5-flash"
)

type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string
	httpClient *http.Client
	logger     *slog.Logger
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
	}
}

// GenerateVisualization sends the bathroom photo (and optionally an
// inspiration photo) with the generated prompt and returns the edited image
// as a data URL. A response without an image is retried once with an
// explicit image-only nudge before giving up.
func (c *Client) GenerateVisualization(ctx context.Context, systemPrompt, prompt string, bathroom ImageInput, inspiration *ImageInput) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt is empty")
	}

	req := generateContentRequest{
		Contents: buildVisualizationContents(prompt, bathroom, inspiration),
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}
	if systemPrompt = strings.TrimSpace(systemPrompt); systemPrompt != "" {
		req.SystemInstruction = &content{Role: "user", Parts: []part{{Text: systemPrompt}}}
	}

	resp, err := c.generateContent(ctx, modelImage, req)
	if err != nil {
		return "", err
	}

	if len(resp.Images) == 0 {
		retryPrompt := prompt + "\n\nReturn the result only as the edited image (inlineData). Do not reply with text, JSON, or code."
		req.Contents = buildVisualizationContents(retryPrompt, bathroom, inspiration)
		retryResp, retryErr := c.generateContent(ctx, modelImage, req)
		if retryErr != nil {
			return "", retryErr
		}
		resp = retryResp
	}

	if len(resp.Images) == 0 {
		c.logger.Warn("gemini returned no image", "text", clipForLog(resp.Text))
		return "", errors.New("no image in response")
	}
	return resp.Images[0], nil
}

// ValidateImage asks the text model whether the photo shows a bathroom and
// which shower layout it has. Unparseable model output degrades to an
// invalid verdict with the standard shape, never an error.
func (c *Client) ValidateImage(ctx context.Context, validationPrompt string, img ImageInput) (ValidationResult, error) {
	req := generateContentRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: validationPrompt},
				{InlineData: &blob{
					Data:     stripDataURLPrefix(img.DataBase64),
					MimeType: img.MimeType,
				}},
			},
		}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
		},
	}

	resp, err := c.generateContent(ctx, modelText, req)
	if err != nil && isUnknownFieldError(err, "responseMimeType") {
		req.GenerationConfig.ResponseMIMEType = ""
		resp, err = c.generateContent(ctx, modelText, req)
	}
	if err != nil {
		return ValidationResult{}, err
	}

	return parseValidationResponse(resp.Text), nil
}

func parseValidationResponse(text string) ValidationResult {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var decoded struct {
		IsValid *bool  `json:"isValid"`
		Valid   *bool  `json:"valid"`
		Reason  string `json:"reason"`
		Shape   string `json:"shape"`
	}
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return ValidationResult{
			Valid:  false,
			Reason: "Unable to verify image content. Please try again.",
			Shape:  "standard",
		}
	}

	valid := false
	if decoded.IsValid != nil {
		valid = *decoded.IsValid
	} else if decoded.Valid != nil {
		valid = *decoded.Valid
	}

	shape := decoded.Shape
	switch shape {
	case "standard", "neo_angle", "tub":
	default:
		shape = "standard"
	}

	result := ValidationResult{Valid: valid, Shape: shape}
	if !valid {
		result.Reason = decoded.Reason
		if result.Reason == "" {
			result.Reason = "The uploaded image does not appear to be a bathroom or shower."
		}
	}
	return result
}

func buildVisualizationContents(prompt string, bathroom ImageInput, inspiration *ImageInput) []content {
	if inspiration == nil {
		return []content{{
			Role: "user",
			Parts: []part{
				{Text: prompt},
				{InlineData: &blob{
					Data:     stripDataURLPrefix(bathroom.DataBase64),
					MimeType: bathroom.MimeType,
				}},
			},
		}}
	}

	// Two-image request: the inspiration photo supplies the style, the
	// bathroom photo is the edit target.
	return []content{{
		Role: "user",
		Parts: []part{
			{Text: prompt + "\n\nImage order:\n1) inspiration/style reference\n2) target bathroom to edit"},
			{Text: "Image #1 (inspiration/style):"},
			{InlineData: &blob{
				Data:     stripDataURLPrefix(inspiration.DataBase64),
				MimeType: inspiration.MimeType,
			}},
			{Text: "Image #2 (target bathroom):"},
			{InlineData: &blob{
				Data:     stripDataURLPrefix(bathroom.DataBase64),
				MimeType: bathroom.MimeType,
			}},
		},
	}}
}

type response struct {
	Text   string
	Images []string
}

func (c *Client) generateContent(ctx context.Context, model string, payload generateContentRequest) (response, error) {
	if c.httpClient == nil {
		return response{}, errors.New("http client is nil")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return response{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return response{}, fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return response{}, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return response{}, fmt.Errorf("gemini API %s: %s", httpResp.Status, strings.TrimSpace(string(rawBody)))
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return response{}, fmt.Errorf("decode response: %w", err)
	}

	text, images := extractParts(decoded)
	return response{Text: text, Images: images}, nil
}

func extractParts(resp generateContentResponse) (string, []string) {
	if len(resp.Candidates) == 0 {
		return "", nil
	}

	var textBuilder strings.Builder
	var images []string

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			textBuilder.WriteString(p.Text)
		}
		if p.InlineData != nil && p.InlineData.Data != "" && p.InlineData.MimeType != "" {
			images = append(images, fmt.Sprintf("data:%s;base64,%s", p.InlineData.MimeType, p.InlineData.Data))
		}
	}

	return textBuilder.String(), images
}

type generateContentRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	Temperature        float64  `json:"temperature,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
	ResponseMIMEType   string   `json:"responseMimeType,omitempty"`
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

var dataURLRegex = regexp.MustCompile(`^data:([^;]+);base64,`)

// MimeFromDataURL extracts the mime type of a data URL, falling back when
// the prefix is absent.
func MimeFromDataURL(dataURL, fallback string) string {
	if matches := dataURLRegex.FindStringSubmatch(strings.TrimSpace(dataURL)); len(matches) == 2 {
		return matches[1]
	}
	return fallback
}

func stripDataURLPrefix(value string) string {
	if idx := strings.IndexByte(value, ','); idx >= 0 {
		return value[idx+1:]
	}
	return value
}

func isUnknownFieldError(err error, field string) bool {
	message := err.Error()
	return strings.Contains(message, "Unknown name") && strings.Contains(message, field)
}

func clipForLog(text string) string {
	text = strings.TrimSpace(text)
	if len(text) > 200 {
		return text[:200] + "..."
	}
	return text
}
