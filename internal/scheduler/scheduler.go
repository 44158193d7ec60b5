package scheduler

import (
	"sync"
	"time"

	"AssistantGolang/pkg/log"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	defaultInterval = 60 * time.Second

	// maintenanceEvery spaces out the slow jobs: memory cleanup and
	// transcript archival run on every Nth dispatch tick.
	maintenanceEvery = 10
)

type DueDispatcher interface {
	DispatchDue(ctx context.Context) (sent int, failed int, err error)
}

type MemoryJanitor interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

type TranscriptArchiver interface {
	ArchiveTranscripts(ctx context.Context) (int, error)
}

// Scheduler drives the background loop: due-reminder dispatch every tick,
// maintenance every Nth tick. One loop per process; Start and Stop are
// idempotent.
type Scheduler struct {
	log      *logrus.Logger
	interval time.Duration

	dispatcher DueDispatcher
	janitor    MemoryJanitor
	archiver   TranscriptArchiver

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

func New(logger *logrus.Logger, dispatcher DueDispatcher, janitor MemoryJanitor, archiver TranscriptArchiver, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Scheduler{
		log:        logger,
		interval:   interval,
		dispatcher: dispatcher,
		janitor:    janitor,
		archiver:   archiver,
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.stopped = make(chan struct{})

	go s.loop(ctx, s.stopped)

	s.log.WithFields(log.Fields{
		"interval": s.interval.String(),
	}).Info("Scheduler started")
}

// Stop halts the loop and waits for the in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	stopped := s.stopped
	s.cancel = nil
	s.stopped = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-stopped

	s.log.Info("Scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, stopped chan struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick++
			s.RunOnce(ctx)
			if tick%maintenanceEvery == 0 {
				s.RunMaintenance(ctx)
			}
		}
	}
}

// RunOnce performs a single dispatch pass. Exposed so tests and operational
// tooling can trigger a tick without the timer.
func (s *Scheduler) RunOnce(ctx context.Context) {
	sent, failed, err := s.dispatcher.DispatchDue(ctx)
	if err != nil {
		s.log.WithFields(log.Fields{
			"error": err.Error(),
		}).Error("Reminder dispatch pass failed")
		return
	}

	if sent > 0 || failed > 0 {
		s.log.WithFields(log.Fields{
			"sent":   sent,
			"failed": failed,
		}).Info("Dispatched due reminders")
	}
}

// RunMaintenance archives transcripts and expires stale memories. Each job
// fails independently; one bad pass never blocks the other.
func (s *Scheduler) RunMaintenance(ctx context.Context) {
	archived, err := s.archiver.ArchiveTranscripts(ctx)
	if err != nil {
		s.log.WithFields(log.Fields{
			"error": err.Error(),
		}).Error("Transcript archival pass failed")
	} else if archived > 0 {
		s.log.WithFields(log.Fields{
			"archived": archived,
		}).Info("Archived conversation transcripts")
	}

	expired, err := s.janitor.CleanupExpired(ctx)
	if err != nil {
		s.log.WithFields(log.Fields{
			"error": err.Error(),
		}).Error("Memory cleanup pass failed")
	} else if expired > 0 {
		s.log.WithFields(log.Fields{
			"archived": expired,
		}).Info("Archived expired memories")
	}
}
