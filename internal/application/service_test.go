package application_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coralpress/notifications/internal/application"
	"github.com/coralpress/notifications/internal/domain"
)

// fakeNotificationRepo is an in-memory stand-in implementing the same
// role/audience pre-filter contract as the real stores.
type fakeNotificationRepo struct {
	items    []*domain.Notification
	failWith error
}

func (f *fakeNotificationRepo) Create(_ context.Context, input domain.CreateNotificationInput) (*domain.Notification, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var next int64 = 1
	for _, n := range f.items {
		if n.ID >= next {
			next = n.ID + 1
		}
	}
	n := &domain.Notification{
		ID:        next,
		UserID:    input.UserID,
		Title:     input.Title,
		Role:      input.Role,
		Message:   input.Message,
		Dismissed: []string{},
		CreatedAt: input.CreatedAt,
	}
	f.items = append(f.items, n)
	return n, nil
}

func (f *fakeNotificationRepo) ListForViewer(_ context.Context, viewerID string, viewerRole domain.Role) ([]*domain.Notification, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []*domain.Notification
	for _, n := range f.items {
		if n.Role != viewerRole && n.Role != domain.RoleAll {
			continue
		}
		if n.UserID != nil && *n.UserID != viewerID {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeNotificationRepo) GetByID(_ context.Context, id int64) (*domain.Notification, error) {
	for _, n := range f.items {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeNotificationRepo) AddDismissal(ctx context.Context, id int64, userID string) (*domain.Notification, bool, error) {
	if f.failWith != nil {
		return nil, false, f.failWith
	}
	n, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if n.DismissedBy(userID) {
		return n, false, nil
	}
	n.Dismissed = append(n.Dismissed, userID)
	return n, true, nil
}

type fakeUserRepo struct {
	users []*domain.User
}

func (f *fakeUserRepo) Create(_ context.Context, input domain.CreateUserInput) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == input.Email {
			return nil, fmt.Errorf("%w: email already registered", domain.ErrInvalidInput)
		}
	}
	u := &domain.User{
		ID:        input.ID,
		Email:     input.Email,
		Name:      input.Name,
		Role:      input.Role,
		CreatedAt: input.CreatedAt,
	}
	f.users = append(f.users, u)
	return u, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func newTestService() (*application.Service, *fakeNotificationRepo) {
	repo := &fakeNotificationRepo{}
	return application.NewService(repo, &fakeUserRepo{}), repo
}

func adminCreate(t *testing.T, svc *application.Service, title string, role domain.Role, userID *string) *domain.Notification {
	t.Helper()
	n, err := svc.Create(context.Background(), application.CreateInput{
		Title:          title,
		Message:        "body of " + title,
		Role:           role,
		UserID:         userID,
		RequestingRole: domain.RoleAdmin,
	})
	require.NoError(t, err)
	return n
}

func strptr(s string) *string { return &s }

func TestCreate_RequiresAdmin(t *testing.T) {
	svc, repo := newTestService()

	for _, role := range []domain.Role{domain.RoleEditor, domain.RoleUser, domain.RoleAll, ""} {
		_, err := svc.Create(context.Background(), application.CreateInput{
			Title:          "t",
			Message:        "m",
			Role:           domain.RoleAll,
			RequestingRole: role,
		})
		assert.ErrorIs(t, err, domain.ErrForbidden, string(role))
	}
	assert.Empty(t, repo.items)
}

func TestCreate_ForbiddenWinsOverMissingFields(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), application.CreateInput{
		RequestingRole: domain.RoleUser,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name  string
		input application.CreateInput
	}{
		{"empty title", application.CreateInput{Message: "m", Role: domain.RoleAll, RequestingRole: domain.RoleAdmin}},
		{"blank title", application.CreateInput{Title: "  ", Message: "m", Role: domain.RoleAll, RequestingRole: domain.RoleAdmin}},
		{"empty message", application.CreateInput{Title: "t", Role: domain.RoleAll, RequestingRole: domain.RoleAdmin}},
		{"empty role", application.CreateInput{Title: "t", Message: "m", RequestingRole: domain.RoleAdmin}},
		{"unknown role", application.CreateInput{Title: "t", Message: "m", Role: "superadmin", RequestingRole: domain.RoleAdmin}},
		{"empty target user", application.CreateInput{Title: "t", Message: "m", Role: domain.RoleAll, UserID: strptr(""), RequestingRole: domain.RoleAdmin}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCreate_AssignsSequentialIDs(t *testing.T) {
	svc, _ := newTestService()

	n1 := adminCreate(t, svc, "first", domain.RoleAll, nil)
	n2 := adminCreate(t, svc, "second", domain.RoleAll, nil)

	assert.Equal(t, int64(1), n1.ID)
	assert.Equal(t, n1.ID+1, n2.ID)
	assert.Empty(t, n1.Dismissed)
	assert.False(t, n1.CreatedAt.IsZero())
}

func TestListVisible_RoleScoping(t *testing.T) {
	svc, _ := newTestService()
	adminCreate(t, svc, "admins only", domain.RoleAdmin, nil)

	forAdmin, err := svc.ListVisible(context.Background(), "x", domain.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, forAdmin, 1)

	forEditor, err := svc.ListVisible(context.Background(), "x", domain.RoleEditor)
	require.NoError(t, err)
	assert.Empty(t, forEditor)
}

func TestListVisible_TargetedNotification(t *testing.T) {
	svc, _ := newTestService()
	adminCreate(t, svc, "for u1", domain.RoleAdmin, strptr("u1"))

	forU1, err := svc.ListVisible(context.Background(), "u1", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, forU1, 1)

	forU2, err := svc.ListVisible(context.Background(), "u2", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, forU2)
}

func TestListVisible_OrderMostRecentFirst(t *testing.T) {
	svc, repo := newTestService()
	adminCreate(t, svc, "a", domain.RoleAll, nil)
	adminCreate(t, svc, "b", domain.RoleAll, nil)
	adminCreate(t, svc, "c", domain.RoleAll, nil)

	// Force distinct timestamps and one tie.
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	repo.items[0].CreatedAt = base
	repo.items[1].CreatedAt = base.Add(time.Hour)
	repo.items[2].CreatedAt = base.Add(time.Hour)

	out, err := svc.ListVisible(context.Background(), "x", domain.RoleUser)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "b", out[0].Title) // ties keep insertion order
	assert.Equal(t, "c", out[1].Title)
	assert.Equal(t, "a", out[2].Title)
}

func TestListVisible_RejectsBadViewer(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.ListVisible(context.Background(), "", domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.ListVisible(context.Background(), "u1", "root")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDismiss_HidesOnlyForDismisser(t *testing.T) {
	svc, _ := newTestService()
	n := adminCreate(t, svc, "shared", domain.RoleAdmin, nil)

	_, already, err := svc.Dismiss(context.Background(), n.ID, "u1")
	require.NoError(t, err)
	assert.False(t, already)

	forU1, err := svc.ListVisible(context.Background(), "u1", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, forU1)

	forU2, err := svc.ListVisible(context.Background(), "u2", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, forU2, 1)
}

func TestDismiss_Idempotent(t *testing.T) {
	svc, _ := newTestService()
	n := adminCreate(t, svc, "once", domain.RoleAll, nil)

	first, already, err := svc.Dismiss(context.Background(), n.ID, "u1")
	require.NoError(t, err)
	assert.False(t, already)

	second, already, err := svc.Dismiss(context.Background(), n.ID, "u1")
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, first.Dismissed, second.Dismissed)
	assert.Len(t, second.Dismissed, 1)
}

func TestDismiss_UnknownID(t *testing.T) {
	svc, _ := newTestService()
	adminCreate(t, svc, "survivor", domain.RoleAll, nil)

	_, _, err := svc.Dismiss(context.Background(), 999, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	out, err := svc.ListVisible(context.Background(), "u1", domain.RoleUser)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestDismiss_MalformedArgs(t *testing.T) {
	svc, _ := newTestService()

	_, _, err := svc.Dismiss(context.Background(), 0, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = svc.Dismiss(context.Background(), 1, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStorageFailureIsPropagated(t *testing.T) {
	repo := &fakeNotificationRepo{failWith: errors.New("connection reset")}
	svc := application.NewService(repo, &fakeUserRepo{})

	_, err := svc.ListVisible(context.Background(), "u1", domain.RoleAdmin)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestCreateFromEvent(t *testing.T) {
	svc, _ := newTestService()

	n, err := svc.CreateFromEvent(context.Background(), domain.EventNotification{
		Title:         "Article published",
		Message:       "A new article went live.",
		Role:          domain.RoleEditor,
		SourceEventID: "evt-1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEditor, n.Role)

	_, err = svc.CreateFromEvent(context.Background(), domain.EventNotification{
		Title: "missing message", Role: domain.RoleEditor,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegisterUser(t *testing.T) {
	svc, _ := newTestService()

	u, err := svc.RegisterUser(context.Background(), application.RegisterUserInput{
		Email:          "Ed@Example.com",
		Name:           "Ed",
		Role:           domain.RoleEditor,
		RequestingRole: domain.RoleAdmin,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ed@example.com", u.Email)

	got, err := svc.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = svc.RegisterUser(context.Background(), application.RegisterUserInput{
		Email: "x@example.com", Name: "X", Role: domain.RoleUser, RequestingRole: domain.RoleUser,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.RegisterUser(context.Background(), application.RegisterUserInput{
		Email: "y@example.com", Name: "Y", Role: domain.RoleAll, RequestingRole: domain.RoleAdmin,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
