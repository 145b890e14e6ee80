package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = "🎙 Send me a voice message or an audio file and I will transcribe it " +
	"and give you feedback on clarity, tonality, vocabulary and sentiment.\n\n" +
	"Speak naturally for 15–60 seconds. Reading a short paragraph aloud works well."

func (app *BotApp) handleText(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		app.reply(msg.Chat.ID, helpText)
	case "status":
		snap := app.pipeline.Snapshot()
		app.reply(msg.Chat.ID, "Current state: "+snap.State.String())
	default:
		app.reply(msg.Chat.ID, "Please send a voice message. /help")
	}
}
