package telegram

import (
	"context"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type BotApp struct {
	bot        BotAPI
	pipeline   Pipeline
	tts        Synthesizer
	httpClient *http.Client
	maxBytes   int64
	log        *zap.SugaredLogger
}

func NewBotApp(bot BotAPI, p Pipeline, tts Synthesizer, maxBytes int64, log *zap.SugaredLogger) *BotApp {
	return &BotApp{
		bot:        bot,
		pipeline:   p,
		tts:        tts,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		maxBytes:   maxBytes,
		log:        log,
	}
}

// Run — главный цикл получения апдейтов. Voice notes are handled one at a
// time in arrival order; the pipeline only runs one job anyway.
func (app *BotApp) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	app.log.Infow("[bot_loop] started")

	for {
		select {
		case <-ctx.Done():
			app.log.Infow("[bot_loop] stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			app.handleMessage(ctx, update.Message)
		}
	}
}

func (app *BotApp) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From != nil {
		app.log.Debugw("[bot_touch]", "from", msg.From.ID, "chat", msg.Chat.ID)
	}

	if att, ok := audioAttachment(msg); ok {
		app.handleVoice(ctx, msg, att)
		return
	}
	app.handleText(msg)
}

func (app *BotApp) reply(chatID int64, text string) {
	if _, err := app.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		app.log.Warnw("[bot] send fail", "chat", chatID, "error", err)
	}
}
