package homework

import (
	"fmt"

	"github.com/pkg/errors"
)

// Status is the review state code reported by the grading API.
type Status string

const (
	StatusApproved  Status = "approved"
	StatusReviewing Status = "reviewing"
	StatusRejected  Status = "rejected"
)

var (
	ErrUnknownStatus    = errors.New("unknown homework status")
	ErrIncompleteRecord = errors.New("homework record is missing a name")
)

var statusMessages = map[Status]string{
	StatusApproved:  "Работа проверена: ревьюеру всё понравилось. Ура!",
	StatusReviewing: "Работа взята на проверку ревьюером.",
	StatusRejected:  "Работа проверена: у ревьюера есть замечания.",
}

// Message returns the display text for a known status.
func (s Status) Message() (string, bool) {
	msg, ok := statusMessages[s]
	return msg, ok
}

// ParseStatus renders the notification text for a homework record.
func ParseStatus(r Record) (string, error) {
	msg, ok := r.Status.Message()
	if !ok {
		return "", errors.Wrapf(ErrUnknownStatus, "%q", r.Status)
	}
	if r.Name == "" {
		return "", errors.WithStack(ErrIncompleteRecord)
	}
	return fmt.Sprintf("Изменился статус проверки работы \"%s\". %s", r.Name, msg), nil
}
