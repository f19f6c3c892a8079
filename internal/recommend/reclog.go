// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package recommend

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/tablemap/internal/logging"
	"github.com/tomtom215/tablemap/internal/metrics"
)

// logWriteTimeout bounds a single log write.
const logWriteTimeout = 5 * time.Second

// LogEntry records the inputs and per-candidate breakdown of one request.
type LogEntry struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Context   Context     `json:"context"`
	Results   []LogResult `json:"results"`
	Fallback  bool        `json:"fallback"`
	CreatedAt time.Time   `json:"createdAt"`
}

// LogResult is one ranked restaurant in a LogEntry.
type LogResult struct {
	RestaurantID string    `json:"restaurantId"`
	TotalScore   float64   `json:"totalScore"`
	Breakdown    Breakdown `json:"breakdown"`
}

// RecLogger writes LogEntries asynchronously. Log is non-blocking and drops
// entries when the buffer is full; a failed write is logged and forgotten.
type RecLogger struct {
	store     LogStore
	entries   chan *LogEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewRecLogger starts the async writer. bufferSize must be positive.
func NewRecLogger(store LogStore, bufferSize int) *RecLogger {
	if bufferSize < 1 {
		bufferSize = 1
	}
	l := &RecLogger{
		store:    store,
		entries:  make(chan *LogEntry, bufferSize),
		stopChan: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.asyncWriter()

	return l
}

// Log queues an entry for writing.
func (l *RecLogger) Log(entry *LogEntry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	select {
	case l.entries <- entry:
	default:
		metrics.RecommendationLogDropped.Inc()
		logging.Warn().Str("entry_id", entry.ID).Msg("Recommendation log buffer full, dropping entry")
	}
}

// Close drains queued entries and stops the writer.
func (l *RecLogger) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

func (l *RecLogger) asyncWriter() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			for {
				select {
				case entry := <-l.entries:
					l.write(entry)
				default:
					return
				}
			}
		case entry := <-l.entries:
			l.write(entry)
		}
	}
}

func (l *RecLogger) write(entry *LogEntry) {
	if l.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), logWriteTimeout)
	defer cancel()

	if err := l.store.SaveRecommendationLog(ctx, entry); err != nil {
		logging.Warn().Err(err).Str("entry_id", entry.ID).Msg("Failed to save recommendation log")
	}
}
