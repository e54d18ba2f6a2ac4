package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coralpress/notifications/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})
	return s
}

func createAt(t *testing.T, s *Store, title string, role domain.Role, userID *string, at time.Time) *domain.Notification {
	t.Helper()
	n, err := s.Create(context.Background(), domain.CreateNotificationInput{
		UserID:    userID,
		Title:     title,
		Role:      role,
		Message:   "message for " + title,
		CreatedAt: at,
	})
	require.NoError(t, err)
	return n
}

func strptr(s string) *string { return &s }

func TestCreate_SequentialIDs(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	n1 := createAt(t, s, "first", domain.RoleAll, nil, now)
	n2 := createAt(t, s, "second", domain.RoleAll, nil, now)

	assert.Equal(t, int64(1), n1.ID)
	assert.Equal(t, int64(2), n2.ID)
	assert.Empty(t, n1.Dismissed)
}

func TestListForViewer_PrefiltersRoleAndAudience(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	createAt(t, s, "admin broadcast", domain.RoleAdmin, nil, now)
	createAt(t, s, "everyone", domain.RoleAll, nil, now.Add(time.Second))
	createAt(t, s, "targeted", domain.RoleAdmin, strptr("u1"), now.Add(2*time.Second))

	forU1, err := s.ListForViewer(context.Background(), "u1", domain.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, forU1, 3)
	assert.Equal(t, "targeted", forU1[0].Title)
	assert.Equal(t, "everyone", forU1[1].Title)
	assert.Equal(t, "admin broadcast", forU1[2].Title)

	forU2, err := s.ListForViewer(context.Background(), "u2", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, forU2, 2)

	forEditor, err := s.ListForViewer(context.Background(), "u3", domain.RoleEditor)
	require.NoError(t, err)
	require.Len(t, forEditor, 1)
	assert.Equal(t, "everyone", forEditor[0].Title)
}

func TestListForViewer_TieBreakByInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	createAt(t, s, "a", domain.RoleAll, nil, at)
	createAt(t, s, "b", domain.RoleAll, nil, at)

	out, err := s.ListForViewer(context.Background(), "u1", domain.RoleUser)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Title)
	assert.Equal(t, "b", out[1].Title)
}

func TestAddDismissal(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	n := createAt(t, s, "dismissable", domain.RoleAll, nil, now)

	got, written, err := s.AddDismissal(context.Background(), n.ID, "u1")
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, []string{"u1"}, got.Dismissed)

	// Repeat dismissal writes nothing and keeps the set duplicate-free.
	got, written, err = s.AddDismissal(context.Background(), n.ID, "u1")
	require.NoError(t, err)
	assert.False(t, written)
	assert.Equal(t, []string{"u1"}, got.Dismissed)

	// A second user's dismissal is independent.
	got, written, err = s.AddDismissal(context.Background(), n.ID, "u2")
	require.NoError(t, err)
	assert.True(t, written)
	assert.Len(t, got.Dismissed, 2)
}

func TestAddDismissal_UserIDWithComma(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	n := createAt(t, s, "odd ids", domain.RoleAll, nil, now)

	// Viewer ids are caller-supplied strings with no charset restriction;
	// the dismissal set must round-trip them verbatim.
	got, written, err := s.AddDismissal(context.Background(), n.ID, "a,b")
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, []string{"a,b"}, got.Dismissed)

	got, err = s.GetByID(context.Background(), n.ID)
	require.NoError(t, err)
	assert.True(t, got.DismissedBy("a,b"))
	assert.False(t, got.DismissedBy("a"))
	assert.False(t, got.DismissedBy("b"))

	out, err := s.ListForViewer(context.Background(), "a", domain.RoleUser)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, domain.Visible(out[0], "a", domain.RoleUser))
}

func TestAddDismissal_UnknownNotification(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.AddDismissal(context.Background(), 999, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByID(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	n := createAt(t, s, "lookup", domain.RoleEditor, strptr("u9"), now)

	got, err := s.GetByID(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, "lookup", got.Title)
	require.NotNil(t, got.UserID)
	assert.Equal(t, "u9", *got.UserID)
	assert.Empty(t, got.Dismissed)

	_, err = s.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	users := s.Users()
	now := time.Now().UTC().Truncate(time.Second)

	u, err := users.Create(context.Background(), domain.CreateUserInput{
		ID: "user-1", Email: "ed@example.com", Name: "Ed", Role: domain.RoleEditor, CreatedAt: now,
	})
	require.NoError(t, err)

	got, err := users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ed@example.com", got.Email)
	assert.Equal(t, domain.RoleEditor, got.Role)

	_, err = users.Create(context.Background(), domain.CreateUserInput{
		ID: "user-2", Email: "ed@example.com", Name: "Other", Role: domain.RoleUser, CreatedAt: now,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = users.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
