package services

import (
	"log/slog"
	"sync"
	"time"

	"github.com/nklact/normaai/internal/storage"
)

// CleanupScheduler deletes generated contract files once their retention
// window passes. One instance owns one contracts directory; the composing
// application constructs it explicitly and drives its lifecycle, there is no
// hidden process-wide registry.
//
// The durable queue and the filesystem are reconciled per sweep: the set of
// ids due now is taken under the queue lock, the actual file deletions run
// outside it, and only ids whose file is confirmed gone leave the queue. A
// file that refuses to delete stays queued and is retried next cycle.
type CleanupScheduler struct {
	queue    *storage.CleanupQueue
	files    *storage.FileManager
	ttl      time.Duration
	interval time.Duration

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

func NewCleanupScheduler(queue *storage.CleanupQueue, files *storage.FileManager, ttl, interval time.Duration) *CleanupScheduler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}

	return &CleanupScheduler{
		queue:    queue,
		files:    files,
		ttl:      ttl,
		interval: interval,
	}
}

// Schedule registers a document for deletion after the default retention
// window. The queue is persisted before this returns.
func (s *CleanupScheduler) Schedule(id string) {
	s.ScheduleAfter(id, s.ttl)
}

// ScheduleAfter registers a document for deletion after the given TTL,
// replacing any previous expiry for the same id.
func (s *CleanupScheduler) ScheduleAfter(id string, ttl time.Duration) {
	expiry := time.Now().Add(ttl)
	s.queue.Set(id, expiry)
	slog.Debug("scheduled contract cleanup", "id", id, "expiry", expiry)
}

// Cancel removes a document from the cleanup queue. Cancelling an unknown id
// is a no-op.
func (s *CleanupScheduler) Cancel(id string) {
	if s.queue.Remove(id) {
		slog.Debug("cancelled contract cleanup", "id", id)
	}
}

// Sweep runs one cleanup pass and returns how many files were removed.
func (s *CleanupScheduler) Sweep() int {
	due := s.queue.Due(time.Now())
	if len(due) == 0 {
		return 0
	}

	// File deletion happens outside the queue lock so slow disks never block
	// concurrent schedule or query calls.
	deleted := make([]string, 0, len(due))
	for _, id := range due {
		if s.files.Delete(id) {
			deleted = append(deleted, id)
		} else {
			slog.Warn("could not delete expired contract, keeping queued", "id", id)
		}
	}

	s.queue.RemoveBatch(deleted)

	if len(deleted) > 0 {
		slog.Info("cleaned up expired contracts", "deleted", len(deleted), "due", len(due))
	}
	return len(deleted)
}

// ForceSweep runs a sweep immediately, regardless of the background loop.
func (s *CleanupScheduler) ForceSweep() int {
	return s.Sweep()
}

// QueueSize reports how many documents are awaiting cleanup.
func (s *CleanupScheduler) QueueSize() int {
	return s.queue.Len()
}

// ExpiredCount reports how many queued documents are already due.
func (s *CleanupScheduler) ExpiredCount() int {
	return len(s.queue.Due(time.Now()))
}

// Start launches the background sweep loop. Calling Start on a running
// scheduler is a no-op.
func (s *CleanupScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.run(s.stop, s.done)
	slog.Info("cleanup scheduler started", "interval", s.interval, "ttl", s.ttl)
}

// Stop signals the sweep loop to exit and waits for it. The loop only checks
// the flag between cycles, so an in-flight sweep finishes first.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done
	slog.Info("cleanup scheduler stopped")
}

// run sweeps on a fixed interval until told to stop. A sweep that panics is
// logged and the loop keeps going: transient storage trouble must never kill
// cleanup for the rest of the process lifetime.
func (s *CleanupScheduler) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.safeSweep()
		}
	}
}

func (s *CleanupScheduler) safeSweep() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("cleanup sweep panicked", "panic", r)
		}
	}()
	s.Sweep()
}
