package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/coralpress/notifications/internal/domain"
)

// Service composes the store, the visibility filter, and the dismissal
// mutator into the operations exposed over HTTP and Kafka.
type Service struct {
	notifications domain.NotificationRepository
	users         domain.UserRepository
}

// NewService creates a new application Service.
func NewService(notifications domain.NotificationRepository, users domain.UserRepository) *Service {
	return &Service{notifications: notifications, users: users}
}

// CreateInput carries a creation request along with the caller's role.
type CreateInput struct {
	Title          string
	Message        string
	Role           domain.Role
	UserID         *string
	RequestingRole domain.Role
}

// ListVisible returns the notifications the viewer may see, most recent
// first. The repository pre-filters by role and audience; the dismissal
// exclusion runs here, after fetch.
func (s *Service) ListVisible(ctx context.Context, viewerID string, viewerRole domain.Role) ([]*domain.Notification, error) {
	if viewerID == "" {
		return nil, fmt.Errorf("%w: userId is required", domain.ErrInvalidInput)
	}
	if !viewerRole.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, viewerRole)
	}

	candidates, err := s.notifications.ListForViewer(ctx, viewerID, viewerRole)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	visible := make([]*domain.Notification, 0, len(candidates))
	for _, n := range candidates {
		if domain.Visible(n, viewerID, viewerRole) {
			visible = append(visible, n)
		}
	}
	return visible, nil
}

// Create persists a new notification. Only admins may create; title, message
// and role are required, and role must be one of the fixed values.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Notification, error) {
	if input.RequestingRole != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can create notifications", domain.ErrForbidden)
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(input.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}
	if !input.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, input.Role)
	}
	if input.UserID != nil && *input.UserID == "" {
		return nil, fmt.Errorf("%w: userId must not be empty when set", domain.ErrInvalidInput)
	}

	n, err := s.notifications.Create(ctx, domain.CreateNotificationInput{
		UserID:    input.UserID,
		Title:     input.Title,
		Role:      input.Role,
		Message:   input.Message,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	log.Info().
		Int64("id", n.ID).
		Str("role", string(n.Role)).
		Bool("targeted", n.UserID != nil).
		Msg("notification created")

	return n, nil
}

// CreateFromEvent persists a notification derived from a Kafka event.
// Events originate from trusted CMS services, so they carry admin authority.
func (s *Service) CreateFromEvent(ctx context.Context, ev domain.EventNotification) (*domain.Notification, error) {
	n, err := s.Create(ctx, CreateInput{
		Title:          ev.Title,
		Message:        ev.Message,
		Role:           ev.Role,
		UserID:         ev.UserID,
		RequestingRole: domain.RoleAdmin,
	})
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int64("id", n.ID).
		Str("source_event_id", ev.SourceEventID).
		Msg("notification created from event")

	return n, nil
}

// Dismiss idempotently hides a notification for one user. The second return
// value reports whether the user had already dismissed it, in which case
// nothing was written.
func (s *Service) Dismiss(ctx context.Context, id int64, userID string) (*domain.Notification, bool, error) {
	if id <= 0 {
		return nil, false, fmt.Errorf("%w: malformed notification id", domain.ErrInvalidInput)
	}
	if userID == "" {
		return nil, false, fmt.Errorf("%w: userId is required", domain.ErrInvalidInput)
	}

	n, written, err := s.notifications.AddDismissal(ctx, id, userID)
	if err != nil {
		return nil, false, fmt.Errorf("dismiss notification %d: %w", id, err)
	}

	if written {
		log.Info().Int64("id", id).Str("user", userID).Msg("notification dismissed")
	}
	return n, !written, nil
}

// RegisterUserInput carries a user registration request.
type RegisterUserInput struct {
	Email          string
	Name           string
	Role           domain.Role
	RequestingRole domain.Role
}

// RegisterUser stores an auxiliary identity record. Admin-gated like Create.
func (s *Service) RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error) {
	if input.RequestingRole != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can register users", domain.ErrForbidden)
	}
	email := domain.NormalizeEmail(input.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if !input.Role.Valid() || input.Role == domain.RoleAll {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, input.Role)
	}

	u, err := s.users.Create(ctx, domain.CreateUserInput{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      input.Name,
		Role:      input.Role,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}

	log.Info().Str("id", u.ID).Str("role", string(u.Role)).Msg("user registered")
	return u, nil
}

// GetUser fetches a user by id.
func (s *Service) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}
