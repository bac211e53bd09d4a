package ports

import (
	"context"

	"stockSim/internal/domain"
)

// Notifier delivers user-facing messages. Calls are fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, kind domain.NotificationType, message string)
}
