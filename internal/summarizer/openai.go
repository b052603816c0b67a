package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const DefaultOpenAIModel = openai.ChatModelGPT4oMini

// OpenAISummarizer calls OpenAI's Responses API to produce summaries.
type OpenAISummarizer struct {
	client openai.Client
	model  openai.ChatModel
}

// NewOpenAISummarizer builds a new summarizer instance. The API key travels
// with each request, so the client itself is built without one.
func NewOpenAISummarizer(model string, opts ...option.RequestOption) *OpenAISummarizer {
	chatModel := openai.ChatModel(strings.TrimSpace(model))
	if chatModel == "" {
		chatModel = DefaultOpenAIModel
	}

	opts = append([]option.RequestOption{option.WithMaxRetries(0)}, opts...)

	return &OpenAISummarizer{
		client: openai.NewClient(opts...),
		model:  chatModel,
	}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, input Input) (string, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return "", errors.New("input is empty")
	}

	resp, err := s.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           s.model,
		MaxOutputTokens: openai.Int(summaryMaxOutputTokens),
		Temperature:     openai.Float(summaryTemperature),
		TopP:            openai.Float(summaryTopP),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(BuildPrompt(input.Text, input.Format, input.PageTitle)),
		},
	}, option.WithAPIKey(strings.TrimSpace(input.APIKey)))
	if err != nil {
		return "", openAIError(err)
	}

	if resp.Status == "incomplete" {
		return "", &Error{
			Kind:    KindMalformedResponse,
			Message: fmt.Sprintf("response is incomplete (reason = %s)", resp.IncompleteDetails.Reason),
		}
	}

	summary := strings.TrimSpace(resp.OutputText())
	if summary == "" {
		return "", &Error{
			Kind:    KindMalformedResponse,
			Message: fmt.Sprintf("output text is missing (status = %s)", resp.Status),
		}
	}

	return summary, nil
}

func (s *OpenAISummarizer) ValidateCredential(ctx context.Context, apiKey string) CredentialCheck {
	_, err := s.client.Models.List(ctx, option.WithAPIKey(strings.TrimSpace(apiKey)))
	if err == nil {
		return CredentialCheck{Valid: true}
	}

	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return CredentialCheck{
			ErrorCode:    networkErrorCode,
			ErrorMessage: err.Error(),
		}
	}

	code := apiErr.Code
	if code == "" {
		code = unknownErrorCode
	}

	message := apiErr.Message
	if message == "" {
		message = unknownErrorMessage
	}

	return CredentialCheck{
		ErrorCode:    code,
		ErrorMessage: message,
	}
}

func openAIError(err error) *Error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return &Error{
			Kind:    KindNetwork,
			Message: "Network error: " + err.Error(),
			Err:     err,
		}
	}

	message := apiErr.Message
	if message == "" {
		message = fmt.Sprintf("API request failed with status %d", apiErr.StatusCode)
	}

	return &Error{
		Kind:       classifyStatus(apiErr.StatusCode),
		StatusCode: apiErr.StatusCode,
		Code:       apiErr.Code,
		Message:    message,
		Err:        err,
	}
}
