package telegram

import (
	"context"
	"io"

	"github.com/Vovarama1992/speech_coach/internal/pipeline"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPI is the subset of *tgbotapi.BotAPI the app uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Pipeline interface {
	LoadFromFile(ctx context.Context, name string, r io.Reader) (pipeline.Snapshot, error)
	Snapshot() pipeline.Snapshot
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
