package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Vovarama1992/speech_coach/internal/ports"
	"github.com/goccy/go-json"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1"
	defaultVoiceID    = "EXAVITQu4vr4xnSDxMaL" // Rachel
)

// ElevenLabsClient reads the overall feedback aloud. Audio stays in memory.
type ElevenLabsClient struct {
	apiKey  ports.CredentialSource
	voiceID string
	baseURL string
	httpCli *http.Client
}

func NewElevenLabsClient(apiKey ports.CredentialSource, voiceID, baseURL string) *ElevenLabsClient {
	if voiceID == "" {
		voiceID = defaultVoiceID
	}
	if baseURL == "" {
		baseURL = elevenLabsBaseURL
	}

	return &ElevenLabsClient{
		apiKey:  apiKey,
		voiceID: voiceID,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCli: &http.Client{Timeout: 60 * time.Second},
	}
}

// TEXT → SPEECH
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	key := c.apiKey()
	if key == "" {
		return nil, &ports.ConfigurationError{Setting: "ELEVENLABS_API_KEY"}
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, &ports.NetworkError{Op: "synthesize", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tts failed: %d - %s", resp.StatusCode, string(b))
	}

	return io.ReadAll(resp.Body)
}
