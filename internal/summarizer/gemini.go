package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-2.5-flash"

	summaryTemperature     = 0.7
	summaryMaxOutputTokens = 1024
	summaryTopP            = 0.9
	summaryTopK            = 40

	validationPrompt          = "Say 'API key is valid' in exactly 4 words."
	validationMaxOutputTokens = 20

	safetyThreshold = "BLOCK_ONLY_HIGH"

	networkErrorCode       = "NETWORK_ERROR"
	unknownErrorCode       = "UNKNOWN_ERROR"
	unknownErrorMessage    = "Unknown error occurred"
	malformedResponseError = "Invalid response from Gemini API"
)

var safetyCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64  `json:"temperature"`
	MaxOutputTokens int      `json:"maxOutputTokens"`
	TopP            *float64 `json:"topP,omitempty"`
	TopK            *int     `json:"topK,omitempty"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// GeminiSummarizer calls the Gemini generateContent REST endpoint.
type GeminiSummarizer struct {
	client  *http.Client
	baseURL string
	model   string
}

// NewGeminiSummarizer builds a summarizer. The client gets no timeout of its
// own; callers bound calls through the context.
func NewGeminiSummarizer(client *http.Client, baseURL string, model string) *GeminiSummarizer {
	if client == nil {
		client = &http.Client{}
	}

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}

	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultGeminiModel
	}

	return &GeminiSummarizer{
		client:  client,
		baseURL: baseURL,
		model:   model,
	}
}

func (s *GeminiSummarizer) Summarize(ctx context.Context, input Input) (string, error) {
	if strings.TrimSpace(input.Text) == "" {
		return "", errors.New("input is empty")
	}

	topP := summaryTopP
	topK := summaryTopK

	req := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: BuildPrompt(input.Text, input.Format, input.PageTitle)}}}},
		GenerationConfig: generationConfig{
			Temperature:     summaryTemperature,
			MaxOutputTokens: summaryMaxOutputTokens,
			TopP:            &topP,
			TopK:            &topK,
		},
		SafetySettings: defaultSafetySettings(),
	}

	statusCode, body, err := s.generateContent(ctx, input.APIKey, req)
	if err != nil {
		return "", err
	}

	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return "", apiError(statusCode, body)
	}

	text := gjson.GetBytes(body, "candidates.0.content.parts.0.text")
	if text.Type != gjson.String || text.Str == "" {
		return "", &Error{
			Kind:       KindMalformedResponse,
			StatusCode: statusCode,
			Message:    malformedResponseError,
		}
	}

	return strings.TrimSpace(text.Str), nil
}

func (s *GeminiSummarizer) ValidateCredential(ctx context.Context, apiKey string) CredentialCheck {
	req := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: validationPrompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0,
			MaxOutputTokens: validationMaxOutputTokens,
		},
	}

	statusCode, body, err := s.generateContent(ctx, apiKey, req)
	if err != nil {
		return CredentialCheck{
			ErrorCode:    networkErrorCode,
			ErrorMessage: err.Error(),
		}
	}

	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		code := gjson.GetBytes(body, "error.status").String()
		if code == "" {
			code = unknownErrorCode
		}

		message := gjson.GetBytes(body, "error.message").String()
		if message == "" {
			message = unknownErrorMessage
		}

		return CredentialCheck{
			ErrorCode:    code,
			ErrorMessage: message,
		}
	}

	return CredentialCheck{Valid: true}
}

// generateContent returns a transport failure as a KindNetwork *Error and
// leaves status handling to the caller.
func (s *GeminiSummarizer) generateContent(
	ctx context.Context,
	apiKey string,
	payload generateContentRequest,
) (int, []byte, error) {
	endpoint, err := s.endpoint(apiKey)
	if err != nil {
		return 0, nil, fmt.Errorf("build endpoint: %w", err)
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		cause := err
		// *url.Error would echo the URL, and with it the API key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			cause = urlErr.Err
		}

		return 0, nil, &Error{
			Kind:    KindNetwork,
			Message: "Network error: " + cause.Error(),
			Err:     cause,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &Error{
			Kind:       KindNetwork,
			StatusCode: resp.StatusCode,
			Message:    "Network error: " + err.Error(),
			Err:        err,
		}
	}

	return resp.StatusCode, body, nil
}

func (s *GeminiSummarizer) endpoint(apiKey string) (string, error) {
	u, err := url.Parse(fmt.Sprintf("%s/v1beta/models/%s:generateContent", s.baseURL, url.PathEscape(s.model)))
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("key", strings.TrimSpace(apiKey))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func apiError(statusCode int, body []byte) *Error {
	status := gjson.GetBytes(body, "error.status").String()

	message := gjson.GetBytes(body, "error.message").String()
	if message == "" {
		message = fmt.Sprintf("API request failed with status %d", statusCode)
	}

	markers := []string{status, message}
	for _, reason := range gjson.GetBytes(body, "error.details.#.reason").Array() {
		markers = append(markers, reason.String())
	}

	return &Error{
		Kind:       classifyStatus(statusCode, markers...),
		StatusCode: statusCode,
		Code:       status,
		Message:    message,
	}
}

func defaultSafetySettings() []safetySetting {
	settings := make([]safetySetting, 0, len(safetyCategories))
	for _, category := range safetyCategories {
		settings = append(settings, safetySetting{
			Category:  category,
			Threshold: safetyThreshold,
		})
	}

	return settings
}
