package summarizer_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"quickread/internal/domain"
	"quickread/internal/summarizer"
	"testing"

	"github.com/openai/openai-go/v3/option"
)

const responseJSON = `{
  "id": "resp_1",
  "object": "response",
  "created_at": 1700000000,
  "status": "completed",
  "model": "gpt-4o-mini",
  "output": [{
    "type": "message",
    "id": "msg_1",
    "role": "assistant",
    "status": "completed",
    "content": [{"type": "output_text", "text": "  A summary.  ", "annotations": []}]
  }]
}`

func newOpenAIServer(t *testing.T, status int, body string) (*httptest.Server, *string) {
	t.Helper()

	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv, &auth
}

func TestOpenAISummarize(t *testing.T) {
	srv, auth := newOpenAIServer(t, http.StatusOK, responseJSON)
	s := summarizer.NewOpenAISummarizer("", option.WithBaseURL(srv.URL), option.WithHTTPClient(srv.Client()))

	got, err := s.Summarize(context.Background(), summarizer.Input{
		Text:   "Some page text",
		Format: domain.FormatDetailed,
		APIKey: testAPIKey,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "A summary." {
		t.Fatalf("unexpected summary: %q", got)
	}

	if *auth != "Bearer "+testAPIKey {
		t.Fatalf("expected per-request key, got %q", *auth)
	}
}

func TestOpenAISummarizeInvalidKey(t *testing.T) {
	srv, _ := newOpenAIServer(t, http.StatusUnauthorized,
		`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
	s := summarizer.NewOpenAISummarizer("", option.WithBaseURL(srv.URL), option.WithHTTPClient(srv.Client()))

	_, err := s.Summarize(context.Background(), summarizer.Input{Text: "text", APIKey: testAPIKey})

	if kind, ok := summarizer.KindOf(err); !ok || kind != summarizer.KindInvalidCredential {
		t.Fatalf("expected invalid credential, got %v", err)
	}
}

func TestOpenAISummarizeQuota(t *testing.T) {
	srv, _ := newOpenAIServer(t, http.StatusTooManyRequests,
		`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`)
	s := summarizer.NewOpenAISummarizer("", option.WithBaseURL(srv.URL), option.WithHTTPClient(srv.Client()))

	_, err := s.Summarize(context.Background(), summarizer.Input{Text: "text", APIKey: testAPIKey})

	if kind, ok := summarizer.KindOf(err); !ok || kind != summarizer.KindQuotaExceeded {
		t.Fatalf("expected quota exceeded, got %v", err)
	}
}

func TestOpenAIValidateCredential(t *testing.T) {
	srv, auth := newOpenAIServer(t, http.StatusOK, `{"object":"list","data":[]}`)
	s := summarizer.NewOpenAISummarizer("", option.WithBaseURL(srv.URL), option.WithHTTPClient(srv.Client()))

	check := s.ValidateCredential(context.Background(), testAPIKey)
	if !check.Valid {
		t.Fatalf("expected valid credential, got %+v", check)
	}

	if *auth != "Bearer "+testAPIKey {
		t.Fatalf("expected per-request key, got %q", *auth)
	}
}

func TestOpenAIValidateCredentialFailure(t *testing.T) {
	srv, _ := newOpenAIServer(t, http.StatusUnauthorized, `{"error":{"message":"bad key"}}`)
	s := summarizer.NewOpenAISummarizer("", option.WithBaseURL(srv.URL), option.WithHTTPClient(srv.Client()))

	check := s.ValidateCredential(context.Background(), testAPIKey)
	if check.Valid || check.ErrorCode == "" || check.ErrorMessage == "" {
		t.Fatalf("unexpected check: %+v", check)
	}
}
