package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"homework_status_bot/internal/domain/homework"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// HomeworkNotifier delivers one notification and reports whether it got through.
type HomeworkNotifier interface {
	Notify(ctx context.Context, note homework.Notification) bool
}

// Scheduler blocks between poll cycles.
type Scheduler interface {
	Wait(ctx context.Context) error
}

// Watcher polls the grading API and notifies about the latest homework status.
// The cursor is owned by the Run goroutine; other goroutines see it only
// through Stats.
type Watcher struct {
	fetcher   homework.Fetcher
	notifier  HomeworkNotifier
	scheduler Scheduler
	logger    *logrus.Entry

	cursor int64

	startedAtUnixNano int64
	lastCycleUnixNano atomic.Int64
	cursorSnapshot    atomic.Int64
	totalCycles       atomic.Int64
	failedCycles      atomic.Int64
	notificationsSent atomic.Int64
	lastErrorMu       sync.Mutex
	lastError         string
}

func NewWatcher(fetcher homework.Fetcher, notifier HomeworkNotifier, scheduler Scheduler, logger *logrus.Entry, cursor int64) *Watcher {
	w := &Watcher{
		fetcher:           fetcher,
		notifier:          notifier,
		scheduler:         scheduler,
		logger:            logger,
		cursor:            cursor,
		startedAtUnixNano: time.Now().UTC().UnixNano(),
	}
	w.cursorSnapshot.Store(cursor)
	return w
}

// Cursor returns the start of the next query window. Only safe from the Run goroutine.
func (w *Watcher) Cursor() int64 { return w.cursor }

// Run polls until ctx is cancelled. Cycle failures never stop it.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.WithField("cursor", w.cursor).Info("Homework status watcher started")
	for {
		w.cycle(ctx)
		if err := w.scheduler.Wait(ctx); err != nil {
			w.logger.WithError(err).Info("Homework status watcher stopped")
			return err
		}
	}
}

func (w *Watcher) cycle(ctx context.Context) {
	w.lastCycleUnixNano.Store(time.Now().UTC().UnixNano())
	w.totalCycles.Add(1)

	err := w.RunCycle(ctx)
	w.cursorSnapshot.Store(w.cursor)
	if err == nil {
		return
	}

	w.failedCycles.Add(1)
	w.lastErrorMu.Lock()
	w.lastError = err.Error()
	w.lastErrorMu.Unlock()

	log := w.logger.WithError(err).WithField("cursor", w.cursor)
	if errors.Is(err, homework.ErrNoUpdates) {
		log.Info("No homework updates this cycle")
		return
	}
	log.WithField("trace", fmt.Sprintf("%+v", err)).Error("Poll cycle failed")
}

// RunCycle performs one fetch, validate, notify pass. On error the cursor is
// left as it was before the call.
func (w *Watcher) RunCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("poll cycle panicked: %v", r)
		}
	}()

	log := w.logger.WithField("cursor", w.cursor)

	log.Debug("Fetching homework updates")
	resp, fetchErr := w.fetcher.FetchUpdates(ctx, w.cursor)
	if fetchErr != nil {
		log.WithError(fetchErr).
			WithField("trace", fmt.Sprintf("%+v", fetchErr)).
			Error("Fetch failed, treating response as empty")
		resp = homework.PollResponse{}
	}

	log.Debug("Checking response")
	records, err := homework.Validate(resp)
	if err != nil {
		return errors.Wrap(err, "validate response")
	}

	latest := records[0]
	text, err := homework.ParseStatus(latest)
	if err != nil {
		return errors.Wrapf(err, "parse status of homework %q", latest.Name)
	}

	if w.notifier.Notify(ctx, homework.Notification{Homework: latest, Text: text}) {
		w.notificationsSent.Add(1)
	}

	w.advance(log, resp.CurrentDate)
	return nil
}

func (w *Watcher) advance(log *logrus.Entry, currentDate *int64) {
	if currentDate == nil {
		log.Debug("Response has no current_date, keeping cursor")
		return
	}
	if *currentDate < w.cursor {
		log.WithField("current_date", *currentDate).Warn("current_date is behind cursor, keeping cursor")
		return
	}
	w.cursor = *currentDate
	log.WithField("new_cursor", w.cursor).Debug("Cursor advanced")
}

type Stats struct {
	StartedAt         time.Time  `json:"startedAt"`
	LastCycleAt       *time.Time `json:"lastCycleAt,omitempty"`
	Cursor            int64      `json:"cursor"`
	TotalCycles       int64      `json:"totalCycles"`
	FailedCycles      int64      `json:"failedCycles"`
	NotificationsSent int64      `json:"notificationsSent"`
	LastError         string     `json:"lastError,omitempty"`
}

func (w *Watcher) Stats() Stats {
	st := Stats{
		StartedAt:         time.Unix(0, w.startedAtUnixNano).UTC(),
		Cursor:            w.cursorSnapshot.Load(),
		TotalCycles:       w.totalCycles.Load(),
		FailedCycles:      w.failedCycles.Load(),
		NotificationsSent: w.notificationsSent.Load(),
	}
	if n := w.lastCycleUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastCycleAt = &t
	}
	w.lastErrorMu.Lock()
	st.LastError = w.lastError
	w.lastErrorMu.Unlock()
	return st
}
