package domain

import (
	"strings"
	"time"
)

// Role is the audience tag a notification is addressed to.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleUser   Role = "user"
	// RoleAll matches every viewer role.
	RoleAll Role = "all"
)

// Valid reports whether r is one of the fixed role values.
// Unknown roles are rejected at creation time, never filtered at read time.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleUser, RoleAll:
		return true
	}
	return false
}

// Notification is the core domain entity. A nil UserID means the message is
// broadcast to the whole role; a set UserID narrows it to that single viewer.
// Dismissed holds the viewers who hid the notification for themselves; the
// record itself is never deleted by dismissal.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    *string   `json:"userId"`
	Title     string    `json:"title"`
	Role      Role      `json:"role"`
	Message   string    `json:"message"`
	Dismissed []string  `json:"dismissed"`
	CreatedAt time.Time `json:"createdAt"`
}

// DismissedBy reports whether userID already dismissed the notification.
func (n *Notification) DismissedBy(userID string) bool {
	for _, id := range n.Dismissed {
		if id == userID {
			return true
		}
	}
	return false
}

// Visible decides whether n should appear in a listing for the given viewer.
// All three conditions must hold: role match, audience match, not dismissed.
func Visible(n *Notification, viewerID string, viewerRole Role) bool {
	if n.Role != viewerRole && n.Role != RoleAll {
		return false
	}
	if n.UserID != nil && *n.UserID != viewerID {
		return false
	}
	return !n.DismissedBy(viewerID)
}

// CreateNotificationInput is the persisted shape handed to the repository
// after the service has authorized and validated the request.
type CreateNotificationInput struct {
	UserID    *string
	Title     string
	Role      Role
	Message   string
	CreatedAt time.Time
}

// EventNotification is produced by Kafka event handlers. It is created with
// system authority, so it carries no requesting role.
type EventNotification struct {
	UserID        *string
	Title         string
	Role          Role
	Message       string
	SourceEventID string
}

// User is the auxiliary identity record. The visibility filter never consults
// it; viewer id and role arrive with each request.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateUserInput is the persisted shape for a new user.
type CreateUserInput struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
}

// NormalizeEmail lowercases and trims an email for the unique index.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
