// Package platform holds the adapters that differ per target. The composition
// root picks one implementation; nothing else branches on the platform.
package platform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Reminder is a scheduled local notification.
type Reminder struct {
	ID     string
	TaskID int64
	Title  string
	At     time.Time
}

// Notifier schedules and cancels local reminders.
type Notifier interface {
	Schedule(ctx context.Context, r Reminder) error
	Cancel(ctx context.Context, id string) error
}

// New returns the Notifier for a platform name from config.
func New(name string, logger *slog.Logger) (Notifier, error) {
	switch strings.ToLower(name) {
	case "", "desktop", "headless", "log":
		return NewLogNotifier(logger), nil
	case "none", "noop":
		return NoopNotifier{}, nil
	default:
		return nil, fmt.Errorf("unknown platform %q", name)
	}
}

// LogNotifier fires reminders by logging them when they fall due.
type LogNotifier struct {
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger, pending: make(map[string]*time.Timer)}
}

// Schedule replaces any reminder with the same id. Reminders in the past fire
// immediately.
func (n *LogNotifier) Schedule(ctx context.Context, r Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.schedule(r)
	return nil
}

// schedule must be called with n.mu held. A replaced timer that already fired
// leaves the entry of its successor alone.
func (n *LogNotifier) schedule(r Reminder) {
	if t, ok := n.pending[r.ID]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(time.Until(r.At), func() {
		n.mu.Lock()
		current := n.pending[r.ID] == t
		if current {
			delete(n.pending, r.ID)
		}
		n.mu.Unlock()
		if current {
			n.logger.Info("reminder due", "reminder_id", r.ID, "task_id", r.TaskID, "title", r.Title)
		}
	})
	n.pending[r.ID] = t
	n.logger.Debug("reminder scheduled", "reminder_id", r.ID, "at", r.At)
}

// Cancel is a no-op for unknown ids.
func (n *LogNotifier) Cancel(ctx context.Context, id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if t, ok := n.pending[id]; ok {
		t.Stop()
		delete(n.pending, id)
		n.logger.Debug("reminder cancelled", "reminder_id", id)
	}
	return nil
}

// Pending reports whether a reminder is waiting to fire.
func (n *LogNotifier) Pending(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.pending[id]
	return ok
}

// NoopNotifier drops every reminder.
type NoopNotifier struct{}

func (NoopNotifier) Schedule(context.Context, Reminder) error { return nil }
func (NoopNotifier) Cancel(context.Context, string) error     { return nil }
