package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CleanupQueue is the durable record of which generated documents are still
// retrievable and when each one expires. Every mutation is persisted before
// the lock is released, so the snapshot on disk never gets ahead of memory
// and a restart recovers the exact pending set.
//
// Entries whose stored expiry cannot be parsed are kept with the zero time,
// which makes them due immediately: ambiguous state fails toward deletion,
// not toward retaining temp files forever.
type CleanupQueue struct {
	mu      sync.Mutex
	path    string
	entries map[string]time.Time
}

func NewCleanupQueue(path string) (*CleanupQueue, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create queue directory: %w", err)
	}

	q := &CleanupQueue{path: path}
	if err := q.load(); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *CleanupQueue) load() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = map[string]time.Time{}

	file, err := os.Open(q.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open queue file: %w", err)
	}
	defer file.Close()

	raw := map[string]string{}
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		slog.Warn("cleanup queue snapshot unreadable, starting empty", "path", q.path, "error", err)
		return nil
	}

	for id, stamp := range raw {
		expiry, err := time.Parse(time.RFC3339Nano, stamp)
		if err != nil {
			slog.Warn("invalid expiry in cleanup queue, treating as due", "id", id, "value", stamp)
			q.entries[id] = time.Time{}
			continue
		}
		q.entries[id] = expiry
	}

	return nil
}

// Set registers or refreshes an entry and persists before returning.
func (q *CleanupQueue) Set(id string, expiry time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries[id] = expiry
	q.saveLocked()
}

// Remove drops an entry if present and reports whether it was there.
func (q *CleanupQueue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.entries[id]; !ok {
		return false
	}
	delete(q.entries, id)
	q.saveLocked()
	return true
}

// RemoveBatch drops the given ids and persists once for the whole batch.
func (q *CleanupQueue) RemoveBatch(ids []string) {
	if len(ids) == 0 {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for _, id := range ids {
		delete(q.entries, id)
	}
	q.saveLocked()
}

// Due returns the ids whose expiry is at or before now.
func (q *CleanupQueue) Due(now time.Time) []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	due := make([]string, 0)
	for id, expiry := range q.entries {
		if !expiry.After(now) {
			due = append(due, id)
		}
	}
	return due
}

func (q *CleanupQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// saveLocked replaces the snapshot atomically. A failed save is logged and
// the in-memory queue stays authoritative until the next successful write;
// scheduling must not fail because the disk briefly did.
func (q *CleanupQueue) saveLocked() {
	raw := make(map[string]string, len(q.entries))
	for id, expiry := range q.entries {
		raw[id] = expiry.Format(time.RFC3339Nano)
	}

	tmp, err := os.CreateTemp(filepath.Dir(q.path), "queue-*.json")
	if err != nil {
		slog.Error("create temp queue snapshot", "error", err)
		return
	}

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		slog.Error("encode queue snapshot", "error", err)
		return
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		slog.Error("close temp queue snapshot", "error", err)
		return
	}

	if err := os.Rename(tmp.Name(), q.path); err != nil {
		os.Remove(tmp.Name())
		slog.Error("replace queue snapshot", "error", err)
	}
}
