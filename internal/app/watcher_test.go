package app

import (
	"context"
	"errors"
	"testing"

	"homework_status_bot/internal/domain/homework"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type fetchResult struct {
	resp homework.PollResponse
	err  error
}

type fakeFetcher struct {
	results []fetchResult
	since   []int64
	calls   int
}

func (f *fakeFetcher) FetchUpdates(ctx context.Context, since int64) (homework.PollResponse, error) {
	f.since = append(f.since, since)
	r := f.results[f.calls%len(f.results)]
	f.calls++
	return r.resp, r.err
}

type fakeNotifier struct {
	sent    []homework.Notification
	deliver bool
}

func (n *fakeNotifier) Notify(ctx context.Context, note homework.Notification) bool {
	n.sent = append(n.sent, note)
	return n.deliver
}

type countingScheduler struct {
	waits  int
	stopAt int
	cancel context.CancelFunc
}

func (s *countingScheduler) Wait(ctx context.Context) error {
	s.waits++
	if s.waits >= s.stopAt {
		s.cancel()
	}
	return ctx.Err()
}

func newTestWatcher(f homework.Fetcher, n HomeworkNotifier, cursor int64) (*Watcher, *logtest.Hook) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return NewWatcher(f, n, nil, logrus.NewEntry(log), cursor), hook
}

func date(v int64) *int64 { return &v }

func errorEntries(hook *logtest.Hook) []*logrus.Entry {
	var out []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			out = append(out, e)
		}
	}
	return out
}

func TestWatcher_RunCycle_ApprovedNotifiesAndAdvances(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{resp: homework.PollResponse{
		Homeworks:   []homework.Record{{Name: "hw1", Status: homework.StatusApproved}},
		CurrentDate: date(1000),
	}}}}
	n := &fakeNotifier{deliver: true}
	w, _ := newTestWatcher(f, n, 0)

	require.NoError(t, w.RunCycle(context.Background()))

	require.Equal(t, []int64{0}, f.since)
	require.Len(t, n.sent, 1)
	require.Contains(t, n.sent[0].Text, "hw1")
	require.Contains(t, n.sent[0].Text, "Работа проверена: ревьюеру всё понравилось. Ура!")
	require.Equal(t, int64(1000), w.Cursor())
	require.Equal(t, int64(1), w.Stats().NotificationsSent)
}

func TestWatcher_RunCycle_EmptyHomeworksKeepsCursor(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{resp: homework.PollResponse{
		Homeworks:   []homework.Record{},
		CurrentDate: date(2000),
	}}}}
	n := &fakeNotifier{deliver: true}
	w, _ := newTestWatcher(f, n, 500)

	err := w.RunCycle(context.Background())
	require.ErrorIs(t, err, homework.ErrNoUpdates)
	require.Empty(t, n.sent)
	require.Equal(t, int64(500), w.Cursor())
}

func TestWatcher_Cycle_UnknownStatusLoggedAndCursorKept(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{resp: homework.PollResponse{
		Homeworks: []homework.Record{{Name: "hw2", Status: "weird"}},
	}}}}
	n := &fakeNotifier{deliver: true}
	w, hook := newTestWatcher(f, n, 700)

	w.cycle(context.Background())

	require.Empty(t, n.sent)
	require.Equal(t, int64(700), w.Cursor())

	errs := errorEntries(hook)
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0].Data[logrus.ErrorKey].(error), homework.ErrUnknownStatus)
	require.Contains(t, errs[0].Data["trace"], "hw2")

	st := w.Stats()
	require.Equal(t, int64(1), st.FailedCycles)
	require.Contains(t, st.LastError, "weird")
}

func TestWatcher_RunCycle_FetchFailureTreatedAsEmpty(t *testing.T) {
	timeout := errors.New("Get \"https://practicum\": context deadline exceeded (Client.Timeout exceeded while awaiting headers)")
	f := &fakeFetcher{results: []fetchResult{{err: timeout}}}
	n := &fakeNotifier{deliver: true}
	w, hook := newTestWatcher(f, n, 1234)

	err := w.RunCycle(context.Background())
	require.ErrorIs(t, err, homework.ErrNoUpdates)
	require.Empty(t, n.sent)
	require.Equal(t, int64(1234), w.Cursor())

	errs := errorEntries(hook)
	require.Len(t, errs, 1)
	require.Equal(t, timeout, errs[0].Data[logrus.ErrorKey])
}

func TestWatcher_RunCycle_MissingCurrentDateKeepsCursor(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{resp: homework.PollResponse{
		Homeworks: []homework.Record{{Name: "hw3", Status: homework.StatusReviewing}},
	}}}}
	n := &fakeNotifier{deliver: true}
	w, _ := newTestWatcher(f, n, 42)

	require.NoError(t, w.RunCycle(context.Background()))
	require.Len(t, n.sent, 1)
	require.Equal(t, int64(42), w.Cursor())
}

func TestWatcher_RunCycle_OnlyFirstRecordNotified(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{resp: homework.PollResponse{
		Homeworks: []homework.Record{
			{Name: "newest", Status: homework.StatusRejected},
			{Name: "older", Status: homework.StatusApproved},
		},
		CurrentDate: date(10),
	}}}}
	n := &fakeNotifier{deliver: true}
	w, _ := newTestWatcher(f, n, 0)

	require.NoError(t, w.RunCycle(context.Background()))
	require.Len(t, n.sent, 1)
	require.Equal(t, "newest", n.sent[0].Homework.Name)
}

func TestWatcher_RunCycle_DeliveryFailureStillAdvances(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{resp: homework.PollResponse{
		Homeworks:   []homework.Record{{Name: "hw1", Status: homework.StatusApproved}},
		CurrentDate: date(99),
	}}}}
	n := &fakeNotifier{deliver: false}
	w, _ := newTestWatcher(f, n, 0)

	require.NoError(t, w.RunCycle(context.Background()))
	require.Equal(t, int64(99), w.Cursor())
	require.Zero(t, w.Stats().NotificationsSent)
}

func TestWatcher_RunCycle_CurrentDateBehindCursorIgnored(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{resp: homework.PollResponse{
		Homeworks:   []homework.Record{{Name: "hw1", Status: homework.StatusApproved}},
		CurrentDate: date(100),
	}}}}
	w, _ := newTestWatcher(f, &fakeNotifier{deliver: true}, 500)

	require.NoError(t, w.RunCycle(context.Background()))
	require.Equal(t, int64(500), w.Cursor())
}

type panickingFetcher struct{}

func (panickingFetcher) FetchUpdates(ctx context.Context, since int64) (homework.PollResponse, error) {
	panic("boom")
}

func TestWatcher_RunCycle_RecoversPanic(t *testing.T) {
	w, _ := newTestWatcher(panickingFetcher{}, &fakeNotifier{}, 77)

	err := w.RunCycle(context.Background())
	require.ErrorContains(t, err, "boom")
	require.Equal(t, int64(77), w.Cursor())
}

func TestWatcher_Run_RepeatsIdenticalStatus(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{resp: homework.PollResponse{
		Homeworks:   []homework.Record{{Name: "hw1", Status: homework.StatusReviewing}},
		CurrentDate: date(5),
	}}}}
	n := &fakeNotifier{deliver: true}
	w, _ := newTestWatcher(f, n, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.scheduler = &countingScheduler{stopAt: 2, cancel: cancel}

	require.ErrorIs(t, w.Run(ctx), context.Canceled)
	require.Len(t, n.sent, 2)
	require.Equal(t, n.sent[0].Text, n.sent[1].Text)
	require.Equal(t, []int64{0, 5}, f.since)
}

func TestWatcher_Run_SurvivesThousandFetchFailures(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{err: errors.New("connection refused")}}}
	n := &fakeNotifier{deliver: true}
	w, _ := newTestWatcher(f, n, 3000)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sched := &countingScheduler{stopAt: 1001, cancel: cancel}
	w.scheduler = sched

	err := w.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1001, f.calls)
	require.Equal(t, 1001, sched.waits)
	require.Empty(t, n.sent)
	require.Equal(t, int64(3000), w.Cursor())

	st := w.Stats()
	require.Equal(t, int64(1001), st.TotalCycles)
	require.Equal(t, int64(1001), st.FailedCycles)
	require.Equal(t, int64(3000), st.Cursor)
	require.NotNil(t, st.LastCycleAt)
}

func TestWatcher_Run_RecoversAfterFailures(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{
		{err: errors.New("dns failure")},
		{resp: homework.PollResponse{Homeworks: []homework.Record{{Name: "hw2", Status: "weird"}}, CurrentDate: date(50)}},
		{resp: homework.PollResponse{Homeworks: []homework.Record{{Name: "hw2", Status: homework.StatusApproved}}, CurrentDate: date(60)}},
	}}
	n := &fakeNotifier{deliver: true}
	w, _ := newTestWatcher(f, n, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.scheduler = &countingScheduler{stopAt: 3, cancel: cancel}

	require.ErrorIs(t, w.Run(ctx), context.Canceled)
	require.Equal(t, []int64{10, 10, 10}, f.since)
	require.Len(t, n.sent, 1)
	require.Equal(t, int64(60), w.Cursor())
	require.Equal(t, int64(2), w.Stats().FailedCycles)
}
