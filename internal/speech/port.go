package speech

import (
	"context"

	"github.com/Vovarama1992/speech_coach/internal/ports"
)

type STTClient interface {
	Transcribe(ctx context.Context, payload *ports.AudioPayload) (string, error) // голос → текст
}

type TTSClient interface {
	Synthesize(ctx context.Context, text string) ([]byte, error) // текст → голос (mp3 в памяти)
}
