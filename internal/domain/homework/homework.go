// internal/domain/homework/homework.go
package homework

import (
	"time"

	"github.com/pkg/errors"
)

// ErrNoUpdates is returned by Validate when the response carries no homework records.
var ErrNoUpdates = errors.New("no homework updates in response")

// Record is a single homework entry as returned by the grading API.
type Record struct {
	Name   string `json:"homework_name"`
	Status Status `json:"status"`
}

// PollResponse is the decoded body of a homework_statuses request.
// Homeworks are ordered most-recent-first by the API.
type PollResponse struct {
	Homeworks   []Record `json:"homeworks"`
	CurrentDate *int64   `json:"current_date,omitempty"`
}

// Notification is a rendered status message ready to be delivered.
type Notification struct {
	Homework Record
	Text     string
}

// Delivery is one journaled notification attempt.
type Delivery struct {
	ID           int64
	HomeworkName string
	Status       Status
	Message      string
	Delivered    bool
	Error        string
	CreatedAt    time.Time
}

// Validate returns the homework records of a response unchanged.
// An absent or empty list yields ErrNoUpdates.
func Validate(resp PollResponse) ([]Record, error) {
	if len(resp.Homeworks) == 0 {
		return nil, ErrNoUpdates
	}
	return resp.Homeworks, nil
}
