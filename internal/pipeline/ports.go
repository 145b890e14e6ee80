package pipeline

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/Vovarama1992/speech_coach/internal/ports"
)

// ErrBusy — идёт обработка, новый запуск отклонён.
var ErrBusy = errors.New("processing in progress, please wait")

type Recorder interface {
	StartRecording(ctx context.Context) error
	AppendChunk(chunk []byte) error
	StopRecording() (*ports.AudioPayload, error)
	LoadFromFile(name string, r io.Reader) (*ports.AudioPayload, error)
	Close() error
}

type Transcriber interface {
	Transcribe(ctx context.Context, payload *ports.AudioPayload) (string, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, transcript string) (string, error)
}

type Notifier interface {
	Notify(ctx context.Context, err error, details string) error
}

type Observer interface {
	ObserveStage(stage string, d time.Duration, err error)
	ObserveRun(source, outcome string, size int)
	ObserveRejected()
	ObserveUnknownRatings(sections []string)
}

type nopObserver struct{}

func (nopObserver) ObserveStage(string, time.Duration, error) {}
func (nopObserver) ObserveRun(string, string, int)            {}
func (nopObserver) ObserveRejected()                          {}
func (nopObserver) ObserveUnknownRatings([]string)            {}
