package speech

import (
	"context"

	"github.com/Vovarama1992/speech_coach/internal/ports"
)

// === Единый сервис (и для стт и для ттс) ===

type Service struct {
	stt STTClient
	tts TTSClient
}

func NewService(stt STTClient, tts TTSClient) *Service {
	return &Service{
		stt: stt,
		tts: tts,
	}
}

func (s *Service) Transcribe(ctx context.Context, payload *ports.AudioPayload) (string, error) {
	return s.stt.Transcribe(ctx, payload)
}

func (s *Service) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if s.tts == nil {
		return nil, &ports.ConfigurationError{Setting: "ELEVENLABS_API_KEY"}
	}
	return s.tts.Synthesize(ctx, text)
}
