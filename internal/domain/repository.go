package domain

import "context"

// NotificationRepository defines the port for notification persistence.
// Implementations live in infrastructure/postgres and infrastructure/sqlite.
type NotificationRepository interface {
	// Create stores a new notification, assigning the next integer id
	// (highest existing id + 1, or 1 for an empty store).
	Create(ctx context.Context, input CreateNotificationInput) (*Notification, error)

	// ListForViewer fetches candidates pre-filtered at the storage level by
	// role match (viewer role or "all") and audience match (broadcast or the
	// viewer's own id), ordered by created_at descending with ties in
	// insertion order. Each row carries its full dismissal set; the
	// dismissed-exclusion itself is applied by the caller.
	ListForViewer(ctx context.Context, viewerID string, viewerRole Role) ([]*Notification, error)

	// GetByID fetches a single notification. Returns ErrNotFound when absent.
	GetByID(ctx context.Context, id int64) (*Notification, error)

	// AddDismissal records that userID dismissed the notification. The write
	// is conflict-free: a duplicate dismissal inserts nothing and is not an
	// error. Returns the current record, whether a row was actually written,
	// and ErrNotFound when the notification does not exist.
	AddDismissal(ctx context.Context, id int64, userID string) (*Notification, bool, error)
}

// UserRepository defines the port for the auxiliary identity table.
type UserRepository interface {
	// Create stores a new user. A duplicate email is ErrInvalidInput.
	Create(ctx context.Context, input CreateUserInput) (*User, error)

	// GetByID fetches a user. Returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*User, error)
}
