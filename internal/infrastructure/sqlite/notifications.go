package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coralpress/notifications/internal/domain"
)

// Create inserts a new notification, assigning highest id + 1 (1 when empty).
// The read and insert run in one transaction so ids stay sequential.
func (s *Store) Create(ctx context.Context, input domain.CreateNotificationInput) (*domain.Notification, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var next int64
	if err := tx.GetContext(ctx, &next, "SELECT COALESCE(MAX(id), 0) + 1 FROM notifications"); err != nil {
		return nil, fmt.Errorf("next notification id: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, title, role, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		next, input.UserID, input.Title, string(input.Role), input.Message, input.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit notification: %w", err)
	}

	return &domain.Notification{
		ID:        next,
		UserID:    input.UserID,
		Title:     input.Title,
		Role:      input.Role,
		Message:   input.Message,
		Dismissed: []string{},
		CreatedAt: input.CreatedAt,
	}, nil
}

// ListForViewer fetches candidates pre-filtered by role and audience with
// dismissal sets aggregated per row. Newest first, ties by id.
func (s *Store) ListForViewer(ctx context.Context, viewerID string, viewerRole domain.Role) ([]*domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT n.id, n.user_id, n.title, n.role, n.message, n.created_at,
		       COALESCE(json_group_array(d.user_id) FILTER (WHERE d.user_id IS NOT NULL), '[]')
		FROM notifications n
		LEFT JOIN notification_dismissals d ON d.notification_id = n.id
		WHERE (n.role = ? OR n.role = 'all')
		  AND (n.user_id IS NULL OR n.user_id = ?)
		GROUP BY n.id
		ORDER BY n.created_at DESC, n.id ASC
	`, string(viewerRole), viewerID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var results []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows.Scan)
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
func (s *Store) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT n.id, n.user_id, n.title, n.role, n.message, n.created_at,
		       COALESCE(json_group_array(d.user_id) FILTER (WHERE d.user_id IS NOT NULL), '[]')
		FROM notifications n
		LEFT JOIN notification_dismissals d ON d.notification_id = n.id
		WHERE n.id = ?
		GROUP BY n.id
	`, id)

	n, err := scanNotification(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

// AddDismissal records a dismissal. INSERT OR IGNORE keeps the repeat case a
// no-op; SQLite serializes writers, so nothing is lost across users.
func (s *Store) AddDismissal(ctx context.Context, id int64, userID string) (*domain.Notification, bool, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, false, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO notification_dismissals (notification_id, user_id)
		VALUES (?, ?)`, id, userID)
	if err != nil {
		return nil, false, fmt.Errorf("insert dismissal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert dismissal: %w", err)
	}

	n, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return n, affected == 1, nil
}

// scanNotification scans one joined row; dismissals arrive as a JSON array
// from json_group_array, so user ids survive any characters they contain.
func scanNotification(scan func(dest ...any) error) (*domain.Notification, error) {
	var (
		n         domain.Notification
		createdAt time.Time
		dismissed string
	)
	if err := scan(&n.ID, &n.UserID, &n.Title, &n.Role, &n.Message, &createdAt, &dismissed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan notification: %w", err)
	}
	n.CreatedAt = createdAt.UTC()
	if err := json.Unmarshal([]byte(dismissed), &n.Dismissed); err != nil {
		return nil, fmt.Errorf("decode dismissal set: %w", err)
	}
	if n.Dismissed == nil {
		n.Dismissed = []string{}
	}
	return &n, nil
}
