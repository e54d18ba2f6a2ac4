package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/coralpress/notifications/internal/domain"
)

// Create inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, input domain.CreateUserInput) (*domain.User, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		input.ID, input.Email, input.Name, string(input.Role), input.CreatedAt,
	)
	if err != nil {
		var serr *sqlite.Error
		if errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return nil, fmt.Errorf("%w: email already registered", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &domain.User{
		ID:        input.ID,
		Email:     input.Email,
		Name:      input.Name,
		Role:      input.Role,
		CreatedAt: input.CreatedAt,
	}, nil
}

// GetUserByID fetches a single user.
func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var (
		u         domain.User
		createdAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, name, role, created_at FROM users WHERE id = ?", id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = createdAt.UTC()
	return &u, nil
}

// Users returns an adapter satisfying domain.UserRepository, since the
// notification methods already occupy Create/GetByID on Store.
func (s *Store) Users() domain.UserRepository {
	return userStore{s}
}

type userStore struct {
	s *Store
}

func (u userStore) Create(ctx context.Context, input domain.CreateUserInput) (*domain.User, error) {
	return u.s.CreateUser(ctx, input)
}

func (u userStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return u.s.GetUserByID(ctx, id)
}
