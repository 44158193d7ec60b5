package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type countingDispatcher struct {
	calls atomic.Int32
	err   error
}

func (d *countingDispatcher) DispatchDue(context.Context) (int, int, error) {
	d.calls.Add(1)
	return 1, 0, d.err
}

type countingJanitor struct {
	calls atomic.Int32
}

func (j *countingJanitor) CleanupExpired(context.Context) (int64, error) {
	j.calls.Add(1)
	return 2, nil
}

type countingArchiver struct {
	calls atomic.Int32
	err   error
}

func (a *countingArchiver) ArchiveTranscripts(context.Context) (int, error) {
	a.calls.Add(1)
	return 1, a.err
}

func newTestScheduler(d *countingDispatcher, j *countingJanitor, a *countingArchiver, interval time.Duration) *Scheduler {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(logger, d, j, a, interval)
}

func TestRunOnceDispatchesDueReminders(t *testing.T) {
	dispatcher := &countingDispatcher{}
	s := newTestScheduler(dispatcher, &countingJanitor{}, &countingArchiver{}, time.Minute)

	s.RunOnce(context.Background())

	assert.Equal(t, int32(1), dispatcher.calls.Load())
}

func TestRunMaintenanceRunsBothJobs(t *testing.T) {
	janitor := &countingJanitor{}
	archiver := &countingArchiver{}
	s := newTestScheduler(&countingDispatcher{}, janitor, archiver, time.Minute)

	s.RunMaintenance(context.Background())

	assert.Equal(t, int32(1), janitor.calls.Load())
	assert.Equal(t, int32(1), archiver.calls.Load())
}

func TestMaintenanceContinuesPastArchiveFailure(t *testing.T) {
	janitor := &countingJanitor{}
	archiver := &countingArchiver{err: errors.New("bucket gone")}
	s := newTestScheduler(&countingDispatcher{}, janitor, archiver, time.Minute)

	s.RunMaintenance(context.Background())

	assert.Equal(t, int32(1), janitor.calls.Load())
}

func TestStartIsIdempotent(t *testing.T) {
	dispatcher := &countingDispatcher{}
	s := newTestScheduler(dispatcher, &countingJanitor{}, &countingArchiver{}, 10*time.Millisecond)

	s.Start()
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return dispatcher.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestStopIsIdempotentAndHaltsTicks(t *testing.T) {
	dispatcher := &countingDispatcher{}
	s := newTestScheduler(dispatcher, &countingJanitor{}, &countingArchiver{}, 10*time.Millisecond)

	s.Start()
	assert.Eventually(t, func() bool {
		return dispatcher.calls.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()

	settled := dispatcher.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, dispatcher.calls.Load())
}
