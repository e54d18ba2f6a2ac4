package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coralpress/notifications/internal/domain"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// Repository is the PostgreSQL implementation of domain.NotificationRepository.
// Dismissals live in a notification_dismissals join table, so concurrent
// dismissals by different users never contend on a serialized set column.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new postgres Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// notificationColumns aggregates the dismissal set per row; the FILTER clause
// keeps rows with no dismissals as an empty array instead of {NULL}.
const notificationColumns = `
	n.id, n.user_id, n.title, n.role, n.message, n.created_at,
	COALESCE(array_agg(d.user_id) FILTER (WHERE d.user_id IS NOT NULL), '{}')
`

// Create inserts a new notification, assigning highest id + 1 (1 when empty).
func (r *Repository) Create(ctx context.Context, input domain.CreateNotificationInput) (*domain.Notification, error) {
	n := domain.Notification{
		UserID:    input.UserID,
		Title:     input.Title,
		Role:      input.Role,
		Message:   input.Message,
		Dismissed: []string{},
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, title, role, message, created_at)
		SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, $4, $5 FROM notifications
		RETURNING id, created_at
	`, input.UserID, input.Title, string(input.Role), input.Message, input.CreatedAt).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return &n, nil
}

// ListForViewer fetches candidates pre-filtered by role and audience, with
// each row's dismissal set loaded. Ordering: newest first, ties by id.
func (r *Repository) ListForViewer(ctx context.Context, viewerID string, viewerRole domain.Role) ([]*domain.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+notificationColumns+`
		FROM notifications n
		LEFT JOIN notification_dismissals d ON d.notification_id = n.id
		WHERE (n.role = $1 OR n.role = 'all')
		  AND (n.user_id IS NULL OR n.user_id = $2)
		GROUP BY n.id
		ORDER BY n.created_at DESC, n.id ASC
	`, string(viewerRole), viewerID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var results []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return results, nil
}

// GetByID fetches a single notification with its dismissal set.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+notificationColumns+`
		FROM notifications n
		LEFT JOIN notification_dismissals d ON d.notification_id = n.id
		WHERE n.id = $1
		GROUP BY n.id
	`, id)

	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

// AddDismissal records a dismissal. ON CONFLICT DO NOTHING makes the repeat
// case a no-op, and the foreign key turns a missing notification into
// ErrNotFound without a separate existence check.
func (r *Repository) AddDismissal(ctx context.Context, id int64, userID string) (*domain.Notification, bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO notification_dismissals (notification_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, id, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("insert dismissal: %w", err)
	}

	n, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return n, tag.RowsAffected() == 1, nil
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Role, &n.Message, &n.CreatedAt, &n.Dismissed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan notification: %w", err)
	}
	if n.Dismissed == nil {
		n.Dismissed = []string{}
	}
	return &n, nil
}
