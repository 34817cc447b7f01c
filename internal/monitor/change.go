// Package monitor compares consecutive category runs and reports the
// headlines that appeared, changed or dropped off between them.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/hhton/newscascade/internal/types"
)

// ChangeType identifies what kind of change occurred.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

// Change represents a detected difference between two runs of a category.
type Change struct {
	Category  types.Category   `json:"category"`
	Type      ChangeType       `json:"type"`
	Record    types.NewsRecord `json:"record"`
	OldTitle  string           `json:"old_title,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// ChangeDetector keeps the last snapshot of every category in memory.
type ChangeDetector struct {
	logger    *slog.Logger
	now       func() time.Time
	mu        sync.Mutex
	snapshots map[types.Category]map[string]types.NewsRecord
}

// NewChangeDetector creates a new change detector.
func NewChangeDetector(logger *slog.Logger) *ChangeDetector {
	return &ChangeDetector{
		logger:    logger.With("component", "change_detector"),
		now:       time.Now,
		snapshots: make(map[types.Category]map[string]types.NewsRecord),
	}
}

// Detect compares a result against the previous snapshot of its category and
// stores the result as the new snapshot. The first run of a category
// establishes the baseline and reports nothing. Results carrying an error
// marker are ignored.
func (cd *ChangeDetector) Detect(res *types.AggregationResult) []Change {
	if res == nil || res.Statistics.Error != "" {
		return nil
	}

	current := make(map[string]types.NewsRecord, len(res.News))
	for _, rec := range res.News {
		current[rec.Link] = rec
	}

	cd.mu.Lock()
	old, seen := cd.snapshots[res.Category]
	cd.snapshots[res.Category] = current
	cd.mu.Unlock()

	if !seen {
		cd.logger.Debug("baseline stored", "category", string(res.Category), "records", len(current))
		return nil
	}

	ts := cd.now()
	var changes []Change
	for _, rec := range res.News {
		prev, ok := old[rec.Link]
		switch {
		case !ok:
			changes = append(changes, Change{Category: res.Category, Type: ChangeAdded, Record: rec, Timestamp: ts})
		case prev.Title != rec.Title:
			changes = append(changes, Change{Category: res.Category, Type: ChangeModified, Record: rec, OldTitle: prev.Title, Timestamp: ts})
		}
	}
	for link, prev := range old {
		if _, ok := current[link]; !ok {
			changes = append(changes, Change{Category: res.Category, Type: ChangeRemoved, Record: prev, Timestamp: ts})
		}
	}

	cd.logger.Debug("changes detected", "category", string(res.Category), "changes", len(changes))
	return changes
}

// Added filters changes down to newly appeared records.
func Added(changes []Change) []Change {
	var out []Change
	for _, c := range changes {
		if c.Type == ChangeAdded {
			out = append(out, c)
		}
	}
	return out
}

// --- Notification System ---

// NotificationChannel is an interface for notification delivery.
type NotificationChannel interface {
	Send(ctx context.Context, changes []Change) error
	Type() string
}

// Notifier fans detected changes out to its channels.
type Notifier struct {
	channels []NotificationChannel
	logger   *slog.Logger
}

// NewNotifier creates a new change notifier.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{
		logger: logger.With("component", "notifier"),
	}
}

// AddChannel registers a notification channel.
func (n *Notifier) AddChannel(ch NotificationChannel) {
	n.channels = append(n.channels, ch)
}

// Notify sends changes to all registered channels.
func (n *Notifier) Notify(ctx context.Context, changes []Change) {
	if len(changes) == 0 {
		return
	}
	for _, ch := range n.channels {
		if err := ch.Send(ctx, changes); err != nil {
			n.logger.Error("notification failed", "channel", ch.Type(), "error", err)
		}
	}
}

// WriterChannel prints changes to a writer, one per line, as text or JSON.
type WriterChannel struct {
	W    io.Writer
	JSON bool

	mu sync.Mutex
}

func (w *WriterChannel) Type() string {
	if w.JSON {
		return "jsonl"
	}
	return "text"
}

func (w *WriterChannel) Send(_ context.Context, changes []Change) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.JSON {
		enc := json.NewEncoder(w.W)
		for _, c := range changes {
			if err := enc.Encode(c); err != nil {
				return fmt.Errorf("encode change: %w", err)
			}
		}
		return nil
	}

	for _, c := range changes {
		r := c.Record
		var err error
		if c.Type == ChangeModified {
			_, err = fmt.Fprintf(w.W, "[%s] %s %s %s | %s -> %s\n  %s\n", c.Category, c.Type, r.Date, r.Time, c.OldTitle, r.Title, r.Link)
		} else {
			_, err = fmt.Fprintf(w.W, "[%s] %s %s %s | %s (%s)\n  %s\n", c.Category, c.Type, r.Date, r.Time, r.Title, r.Source, r.Link)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
