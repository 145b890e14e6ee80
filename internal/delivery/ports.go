package delivery

import (
	"context"
	"io"

	"github.com/Vovarama1992/speech_coach/internal/pipeline"
	"github.com/Vovarama1992/speech_coach/internal/ports"
)

type Pipeline interface {
	StartRecording(ctx context.Context) error
	AppendChunk(chunk []byte) error
	StopRecording(ctx context.Context) (pipeline.Snapshot, error)
	LoadFromFile(ctx context.Context, name string, r io.Reader) (pipeline.Snapshot, error)
	Snapshot() pipeline.Snapshot
	Audio(id string) (*ports.AudioPayload, bool)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
