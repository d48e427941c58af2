// internal/domain/homework/repository.go
package homework

import "context"

// Fetcher queries the grading API for homework updates since a Unix timestamp.
type Fetcher interface {
	FetchUpdates(ctx context.Context, since int64) (PollResponse, error)
}

// Journal records notification attempts. It is write-only: nothing in the
// watcher reads it back.
type Journal interface {
	RecordDelivery(ctx context.Context, d *Delivery) error
}
