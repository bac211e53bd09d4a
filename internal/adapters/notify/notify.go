// Package notify provides ports.Notifier sinks.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"stockSim/internal/domain"
	"stockSim/internal/ports"
)

// DefaultCapacity is the number of notifications a Recorder keeps.
const DefaultCapacity = 50

// LogNotifier writes notifications to the logger.
type LogNotifier struct {
	logger ports.Logger
}

// NewLogNotifier creates a notifier backed by logger.
func NewLogNotifier(logger ports.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements ports.Notifier.
func (n *LogNotifier) Notify(ctx context.Context, kind domain.NotificationType, message string) {
	fields := map[string]interface{}{"type": string(kind)}
	switch kind {
	case domain.NotifyError, domain.NotifyWarning:
		n.logger.Warn(ctx, message, fields)
	default:
		n.logger.Info(ctx, message, fields)
	}
}

// Recorder keeps the most recent notifications in memory, newest first.
type Recorder struct {
	mu       sync.Mutex
	capacity int
	items    []domain.Notification
	clock    func() time.Time
}

// NewRecorder creates a recorder holding up to capacity notifications.
// A non-positive capacity uses DefaultCapacity.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{capacity: capacity, clock: time.Now}
}

// Notify implements ports.Notifier.
func (r *Recorder) Notify(ctx context.Context, kind domain.NotificationType, message string) {
	n := domain.Notification{
		ID:        uuid.NewString(),
		Type:      kind,
		Message:   message,
		Timestamp: r.clock(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append([]domain.Notification{n}, r.items...)
	if len(r.items) > r.capacity {
		r.items = r.items[:r.capacity]
	}
}

// Notifications returns a copy of the recorded notifications, newest first.
func (r *Recorder) Notifications() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notification(nil), r.items...)
}

// Drain returns the recorded notifications, newest first, and empties the recorder.
func (r *Recorder) Drain() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items
	r.items = nil
	return items
}

// Fanout delivers each notification to every sink in order.
type Fanout []ports.Notifier

// Notify implements ports.Notifier.
func (f Fanout) Notify(ctx context.Context, kind domain.NotificationType, message string) {
	for _, n := range f {
		n.Notify(ctx, kind, message)
	}
}
