package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/Vovarama1992/speech_coach/internal/ports"
	"github.com/goccy/go-json"
)

const (
	DefaultBaseURL            = "https://api.openai.com/v1"
	DefaultTranscriptionModel = "whisper-1"

	transcriptionsPath = "/audio/transcriptions"
)

var errNilPayload = errors.New("transcribe: nil payload")

// TranscriptionError is a non-success response from the transcription
// endpoint. Body keeps the raw response for diagnostics.
type TranscriptionError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TranscriptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transcription failed: unreadable response (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transcription failed: %d - %s", e.StatusCode, e.Body)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

type WhisperClient struct {
	apiKey  ports.CredentialSource
	baseURL string
	model   string
	client  *http.Client
}

func NewWhisperClient(apiKey ports.CredentialSource, baseURL, model string, timeout time.Duration) *WhisperClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultTranscriptionModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &WhisperClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Transcribe sends the payload to the transcription endpoint. An empty
// string is a valid result: the recording held no speech.
func (c *WhisperClient) Transcribe(ctx context.Context, payload *ports.AudioPayload) (string, error) {
	key := c.apiKey()
	if key == "" {
		return "", &ports.ConfigurationError{Setting: "OPENAI_API_KEY"}
	}
	if payload == nil {
		return "", errNilPayload
	}

	body, contentType, err := c.buildForm(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+transcriptionsPath, body)
	if err != nil {
		return "", fmt.Errorf("transcribe: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &ports.NetworkError{Op: "transcribe", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ports.NetworkError{Op: "transcribe", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &TranscriptionError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &TranscriptionError{StatusCode: resp.StatusCode, Body: string(raw), Err: err}
	}

	return parsed.Text, nil
}

func (c *WhisperClient) buildForm(payload *ports.AudioPayload) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, FileName(payload.MIMEType())))
	h.Set("Content-Type", payload.MIMEType())

	fw, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("transcribe: create form file: %w", err)
	}
	if _, err := io.Copy(fw, payload.Reader()); err != nil {
		return nil, "", fmt.Errorf("transcribe: write audio: %w", err)
	}
	if err := mw.WriteField("model", c.model); err != nil {
		return nil, "", fmt.Errorf("transcribe: write model: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("transcribe: close form: %w", err)
	}

	return &buf, mw.FormDataContentType(), nil
}

var extensions = map[string]string{
	"audio/wav":  "wav",
	"audio/mpeg": "mp3",
	"audio/mp4":  "m4a",
	"audio/webm": "webm",
	"video/webm": "webm",
	"audio/ogg":  "ogg",
	"audio/flac": "flac",
}

// FileName — имя файла для формы: эндпоинт определяет формат по расширению.
func FileName(mimeType string) string {
	if ext, ok := extensions[mimeType]; ok {
		return "recording." + ext
	}
	return "recording.wav"
}
