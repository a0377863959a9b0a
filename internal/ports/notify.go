package ports

import "context"

// Notification is a human-readable status message for an external sink.
type Notification struct {
	Title  string
	Body   string
	Status string // completed, halted-fatal, cancelled
	RunID  string
}

// Notifier posts status to a notification sink (chat webhook, log stream).
// Delivery is best-effort; callers treat failures as recoverable.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
