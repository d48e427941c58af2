// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"fmt"
	"strings"
	"time"

	"homework_status_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// StatsProvider exposes the watcher's current stats snapshot.
type StatsProvider interface {
	Stats() app.Stats
}

// RegisterBotCommands wires /start and /status. Both answer only in the configured
// chat, since that is the chat the watcher reports to.
func RegisterBotCommands(
	b *telebot.Bot,
	chatID int64,
	stats StatsProvider,
	baseLogger *logrus.Entry, // For contextual logging
) {
	cmdLogger := baseLogger.WithField("handler_group", "bot_commands")

	allowed := func(c telebot.Context, command string) (*logrus.Entry, bool) {
		logCtx := cmdLogger.WithField("command", command)
		if c.Chat() != nil {
			logCtx = logCtx.WithField("chat_id", c.Chat().ID)
		}
		if c.Sender() != nil {
			logCtx = logCtx.WithField("sender_id", c.Sender().ID)
		}
		if c.Chat() == nil || c.Chat().ID != chatID {
			logCtx.Warn("Command from foreign chat ignored")
			return logCtx, false
		}
		return logCtx, true
	}

	b.Handle("/start", func(c telebot.Context) error {
		logCtx, ok := allowed(c, "/start")
		if !ok {
			return c.Send("Этот бот отправляет уведомления только в настроенный чат.")
		}
		logCtx.Info("Processing /start command")
		return c.Send("Привет! Я слежу за статусом проверки домашних работ и сообщу, когда он изменится.\n\n`/status` - состояние наблюдателя.",
			&telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})

	b.Handle("/status", func(c telebot.Context) error {
		logCtx, ok := allowed(c, "/status")
		if !ok {
			return c.Send("Этот бот отправляет уведомления только в настроенный чат.")
		}
		logCtx.Info("Processing /status command")
		return c.Send(FormatStats(stats.Stats()))
	})
}

// FormatStats renders a stats snapshot for a chat reply.
func FormatStats(st app.Stats) string {
	var sb strings.Builder
	sb.WriteString("Состояние наблюдателя:\n")
	fmt.Fprintf(&sb, "Запущен: %s\n", st.StartedAt.Format(time.RFC3339))
	if st.LastCycleAt != nil {
		fmt.Fprintf(&sb, "Последний опрос: %s\n", st.LastCycleAt.Format(time.RFC3339))
	} else {
		sb.WriteString("Последний опрос: ещё не было\n")
	}
	fmt.Fprintf(&sb, "Курсор: %d\n", st.Cursor)
	fmt.Fprintf(&sb, "Опросов: %d, с ошибкой: %d\n", st.TotalCycles, st.FailedCycles)
	fmt.Fprintf(&sb, "Уведомлений отправлено: %d", st.NotificationsSent)
	if st.LastError != "" {
		fmt.Fprintf(&sb, "\nПоследняя ошибка: %s", st.LastError)
	}
	return sb.String()
}
