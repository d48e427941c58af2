// internal/app/notifier.go
package app

import (
	"context"

	"homework_status_bot/internal/domain/homework"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// MessageSender defines an interface for sending messages via a Telegram bot.
type MessageSender interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) error
}

// Notifier delivers status notifications to a single chat. Delivery faults
// are logged and dropped; Notify never fails its caller.
type Notifier struct {
	sender  MessageSender
	journal homework.Journal // nil disables journaling
	chatID  int64
	logger  *logrus.Entry
}

func NewNotifier(sender MessageSender, chatID int64, journal homework.Journal, logger *logrus.Entry) *Notifier {
	return &Notifier{
		sender:  sender,
		journal: journal,
		chatID:  chatID,
		logger:  logger,
	}
}

// Notify sends the notification once and reports whether it was delivered.
func (n *Notifier) Notify(ctx context.Context, note homework.Notification) bool {
	log := n.logger.WithFields(logrus.Fields{
		"chat_id":  n.chatID,
		"homework": note.Homework.Name,
		"status":   note.Homework.Status,
	})
	log.WithField("text", note.Text).Info("Sending notification")

	delivery := &homework.Delivery{
		HomeworkName: note.Homework.Name,
		Status:       note.Homework.Status,
		Message:      note.Text,
	}

	err := n.sender.SendMessage(n.chatID, note.Text, &telebot.SendOptions{DisableWebPagePreview: true})
	if err != nil {
		log.WithError(err).Error("Failed to send Telegram notification")
		delivery.Error = err.Error()
	} else {
		log.Info("Notification sent")
		delivery.Delivered = true
	}

	n.record(ctx, log, delivery)
	return delivery.Delivered
}

func (n *Notifier) record(ctx context.Context, log *logrus.Entry, d *homework.Delivery) {
	if n.journal == nil {
		return
	}
	if err := n.journal.RecordDelivery(ctx, d); err != nil {
		log.WithError(err).Warn("Failed to journal notification attempt")
		return
	}
	log.WithField("delivery_id", d.ID).Debug("Notification attempt journaled")
}
