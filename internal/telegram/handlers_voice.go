package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/Vovarama1992/speech_coach/internal/pipeline"
	"github.com/Vovarama1992/speech_coach/internal/ports"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type attachment struct {
	FileID   string
	FileName string
	FileSize int
}

// audioAttachment picks the voice note, audio file or audio document of msg.
func audioAttachment(msg *tgbotapi.Message) (attachment, bool) {
	switch {
	case msg.Voice != nil:
		return attachment{FileID: msg.Voice.FileID, FileName: "voice.ogg", FileSize: msg.Voice.FileSize}, true
	case msg.Audio != nil:
		return attachment{
			FileID:   msg.Audio.FileID,
			FileName: fileName(msg.Audio.FileName, msg.Audio.MimeType),
			FileSize: msg.Audio.FileSize,
		}, true
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "audio/"):
		return attachment{
			FileID:   msg.Document.FileID,
			FileName: fileName(msg.Document.FileName, msg.Document.MimeType),
			FileSize: msg.Document.FileSize,
		}, true
	}
	return attachment{}, false
}

func fileName(name, mimeType string) string {
	if name != "" {
		return name
	}
	if exts, _ := mime.ExtensionsByType(mimeType); len(exts) > 0 {
		return "audio" + exts[0]
	}
	return "audio"
}

func (app *BotApp) handleVoice(ctx context.Context, msg *tgbotapi.Message, att attachment) {
	chatID := msg.Chat.ID
	log := app.log.With("chat", chatID, "file_id", att.FileID)

	if app.pipeline.Snapshot().Busy() {
		app.reply(chatID, "⏳ "+pipeline.UserMessage(pipeline.ErrBusy))
		return
	}
	if app.maxBytes > 0 && int64(att.FileSize) > app.maxBytes {
		app.reply(chatID, "⚠️ The audio file is too large.")
		return
	}

	url, err := app.bot.GetFileDirectURL(att.FileID)
	if err != nil {
		log.Warnw("[voice] get file fail", "error", err)
		app.reply(chatID, "⚠️ Could not fetch the voice message.")
		return
	}

	body, err := app.download(ctx, url)
	if err != nil {
		log.Warnw("[voice] download fail", "error", err)
		app.reply(chatID, "⚠️ Could not download the voice message.")
		return
	}
	defer body.Close()

	app.reply(chatID, "🎧 Analyzing your speech...")

	snap, err := app.pipeline.LoadFromFile(ctx, att.FileName, body)
	if err != nil {
		log.Warnw("[voice] rejected", "error", err)
		app.reply(chatID, "⚠️ "+pipeline.UserMessage(err))
		return
	}

	app.reply(chatID, FormatSnapshot(snap))
	log.Infow("[voice] done", "run_id", snap.RunID, "state", snap.State.String())

	if snap.State == pipeline.Complete {
		app.sendSpokenFeedback(ctx, chatID, snap)
	}
}

func (app *BotApp) download(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := app.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// sendSpokenFeedback reads the overall feedback aloud when TTS is configured.
func (app *BotApp) sendSpokenFeedback(ctx context.Context, chatID int64, snap pipeline.Snapshot) {
	if app.tts == nil || snap.Feedback == nil || snap.Feedback.OverallFeedback == "" {
		return
	}

	audio, err := app.tts.Synthesize(ctx, snap.Feedback.OverallFeedback)
	if err != nil {
		var cfgErr *ports.ConfigurationError
		if !errors.As(err, &cfgErr) {
			app.log.Warnw("[voice] synth fail", "chat", chatID, "error", err)
		}
		return
	}

	voice := tgbotapi.NewVoice(chatID, tgbotapi.FileBytes{Name: "feedback.mp3", Bytes: audio})
	if _, err := app.bot.Send(voice); err != nil {
		app.log.Warnw("[voice] send fail", "chat", chatID, "error", err)
	}
}
