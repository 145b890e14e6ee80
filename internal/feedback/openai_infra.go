package feedback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Vovarama1992/speech_coach/internal/ports"
	openai "github.com/sashabaranov/go-openai"
)

const DefaultModel = openai.GPT4oMini

var (
	ErrEmptyInput = errors.New("empty text provided for analysis")
	errNoChoices  = errors.New("response has no choices")
)

// AnalysisError is a non-success response from the analysis endpoint.
type AnalysisError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed: %d - %s", e.StatusCode, e.Body)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

type OpenAIClient struct {
	apiKey     ports.CredentialSource
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey ports.CredentialSource, baseURL, model string, timeout time.Duration) *OpenAIClient {
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenAIClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Analyze returns the raw model reply for transcript; decoding is left to Parse.
func (c *OpenAIClient) Analyze(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrEmptyInput
	}

	key := c.apiKey()
	if key == "" {
		return "", &ports.ConfigurationError{Setting: "OPENAI_API_KEY"}
	}

	cfg := openai.DefaultConfig(key)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	rec := &responseRecorder{base: c.httpClient.Transport}
	cfg.HTTPClient = &http.Client{Timeout: c.httpClient.Timeout, Transport: rec}
	client := openai.NewClientWithConfig(cfg)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: transcript},
		},
	})
	if err != nil {
		return "", classifyError(err, rec)
	}
	if len(resp.Choices) == 0 {
		return "", &AnalysisError{StatusCode: rec.status, Body: string(rec.body), Err: errNoChoices}
	}

	return resp.Choices[0].Message.Content, nil
}

// responseRecorder keeps the status and raw body of the last response so
// errors can carry what the endpoint actually sent.
type responseRecorder struct {
	base   http.RoundTripper
	status int
	body   []byte
}

func (r *responseRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	base := r.base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	r.status = resp.StatusCode
	r.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

// classifyError maps go-openai errors onto the pipeline taxonomy: a failure
// after a response arrived is an AnalysisError with the raw body, anything
// else never got a response.
func classifyError(err error, rec *responseRecorder) error {
	if rec.status == 0 {
		return &ports.NetworkError{Op: "analyze", Err: err}
	}

	status := rec.status
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0:
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0:
		status = reqErr.HTTPStatusCode
	}

	return &AnalysisError{StatusCode: status, Body: string(rec.body), Err: err}
}
