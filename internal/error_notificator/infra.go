package error_notificator

import (
	"context"
	"fmt"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// telegram rejects longer messages
const maxMessageLen = 4096

type TelegramInfra struct {
	bot     Sender
	chatIDs []int64
	log     *zap.SugaredLogger
}

func NewTelegramInfra(bot Sender, chatIDs []int64, log *zap.SugaredLogger) *TelegramInfra {
	return &TelegramInfra{bot: bot, chatIDs: chatIDs, log: log}
}

func (i *TelegramInfra) Notify(ctx context.Context, err error, details string) error {
	if i.bot == nil {
		return fmt.Errorf("telegram bot is not configured")
	}

	text := truncate(fmt.Sprintf(
		"❗ Ошибка в speech coach\n\nОшибка: %v\n\nДетали: %s",
		err,
		details,
	))

	var sendErr error
	for _, chatID := range i.chatIDs {
		if _, e := i.bot.Send(tgbotapi.NewMessage(chatID, text)); e != nil {
			i.log.Warnw("[error_notificator] send fail", "chat_id", chatID, "error", e)
			sendErr = multierr.Append(sendErr, fmt.Errorf("chat %d: %w", chatID, e))
		}
	}
	return sendErr
}

// LogInfra only writes the failure to the log. Used when no admin chat is set.
type LogInfra struct {
	log *zap.SugaredLogger
}

func NewLogInfra(log *zap.SugaredLogger) *LogInfra {
	return &LogInfra{log: log}
}

func (i *LogInfra) Notify(ctx context.Context, err error, details string) error {
	i.log.Errorw("[error_notificator] pipeline failure", "error", err, "details", details)
	return nil
}

func truncate(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	cut := maxMessageLen - len("…")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
