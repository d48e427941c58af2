// internal/infra/telegram/client.go
package telegram

import (
	"time"

	"gopkg.in/telebot.v3"
)

// NewBot creates the bot without calling getMe, so a Telegram outage at startup
// does not keep the watcher from running. apiURL may be empty for the public API.
func NewBot(token, apiURL string, onError func(error, telebot.Context)) (*telebot.Bot, error) {
	return telebot.NewBot(telebot.Settings{
		URL:     apiURL,
		Token:   token,
		Poller:  &telebot.LongPoller{Timeout: 10 * time.Second},
		Offline: true,
		OnError: onError,
	})
}

// TelebotAdapter sends messages through gopkg.in/telebot.v3.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a text message to the specified chat.
func (tba *TelebotAdapter) SendMessage(chatID int64, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{}
	}

	_, err := tba.bot.Send(telebot.ChatID(chatID), text, options)
	return err
}
