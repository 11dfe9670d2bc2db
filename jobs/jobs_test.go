package jobs

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"labquote/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	calls int
	err   error
}

func (f *fakeExpirer) ExpireLapsed(context.Context) (int, error) {
	f.calls++
	return 3, f.err
}

type fakeCleaner struct {
	grace time.Duration
}

func (f *fakeCleaner) CleanupSessions(_ context.Context, grace time.Duration) (int64, error) {
	f.grace = grace
	return 2, nil
}

func newScheduler(buf *bytes.Buffer) *Scheduler {
	return New(zerolog.New(buf))
}

func TestWrap_skipsOverlappingRuns(t *testing.T) {
	var buf bytes.Buffer
	s := newScheduler(&buf)

	release := make(chan struct{})
	entered := make(chan struct{})
	var mu sync.Mutex
	runs := 0
	run := s.wrap("slow", func(ctx context.Context) error {
		mu.Lock()
		runs++
		mu.Unlock()
		close(entered)
		<-release
		return nil
	})

	done := make(chan struct{})
	go func() {
		run()
		close(done)
	}()
	<-entered
	run() // returns immediately while the first run holds the guard
	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, runs)
	assert.Contains(t, buf.String(), "previous run still going")
}

func TestWrap_recoversPanicsAndLogsErrors(t *testing.T) {
	var buf bytes.Buffer
	s := newScheduler(&buf)

	calls := 0
	run := s.wrap("flaky", func(context.Context) error {
		calls++
		if calls == 1 {
			panic("kaput")
		}
		return nil
	})
	require.NotPanics(t, run)
	assert.Contains(t, buf.String(), "job panicked")

	// the guard is released after a panic
	run()
	assert.Equal(t, 2, calls)

	buf.Reset()
	s.wrap("fails", func(context.Context) error { return errors.New("db down") })()
	assert.Contains(t, buf.String(), "db down")
	assert.Contains(t, buf.String(), `"job":"fails"`)
}

func TestWrap_appliesTimeout(t *testing.T) {
	var buf bytes.Buffer
	s := newScheduler(&buf)
	s.timeout = 10 * time.Millisecond

	s.wrap("bounded", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})()
	assert.Contains(t, buf.String(), "context deadline exceeded")
}

func TestRegister(t *testing.T) {
	var buf bytes.Buffer
	s := newScheduler(&buf)
	exp := &fakeExpirer{}
	cl := &fakeCleaner{}

	err := Register(s, config.Jobs{ExpirySpec: "5 0 * * *", SessionCleanupSpec: "30 3 * * *", SessionGrace: time.Hour}, exp, cl)
	require.NoError(t, err)
	entries := s.cron.Entries()
	require.Len(t, entries, 2)

	for _, e := range entries {
		e.Job.Run()
	}
	assert.Equal(t, 1, exp.calls)
	assert.Equal(t, time.Hour, cl.grace)
	assert.Contains(t, buf.String(), `"expired":3`)
	assert.Contains(t, buf.String(), `"removed":2`)
}

func TestRegister_emptySpecDisables(t *testing.T) {
	var buf bytes.Buffer
	s := newScheduler(&buf)
	require.NoError(t, Register(s, config.Jobs{ExpirySpec: "5 0 * * *"}, &fakeExpirer{}, &fakeCleaner{}))
	assert.Len(t, s.cron.Entries(), 1)
	assert.Contains(t, buf.String(), "job disabled")
}

func TestRegister_badSpec(t *testing.T) {
	var buf bytes.Buffer
	s := newScheduler(&buf)
	err := Register(s, config.Jobs{ExpirySpec: "every day"}, &fakeExpirer{}, &fakeCleaner{})
	assert.ErrorContains(t, err, "expire-quotations")
}

func TestStop(t *testing.T) {
	var buf bytes.Buffer
	s := newScheduler(&buf)
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
