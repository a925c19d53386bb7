package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-auth-api/internal/model"
	"go-auth-api/internal/repository"
	"go-auth-api/internal/security"
)

func newUserService() (*UserService, *repository.MockUserRepository) {
	repo := new(repository.MockUserRepository)
	return NewUserService(repo, security.NewPasswordHasher(bcrypt.MinCost)), repo
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		page, size int
		wantOffset int
		wantLimit  int
	}{
		{name: "first page", page: 1, size: 20, wantOffset: 0, wantLimit: 20},
		{name: "third page", page: 3, size: 10, wantOffset: 20, wantLimit: 10},
		{name: "size is capped", page: 1, size: 500, wantOffset: 0, wantLimit: MaxPageSize},
		{name: "defaults", page: 0, size: 0, wantOffset: 0, wantLimit: DefaultPageSize},
		{name: "huge page is capped", page: 1 << 62, size: MaxPageSize, wantOffset: (MaxPage - 1) * MaxPageSize, wantLimit: MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newUserService()
			repo.On("Count", ctx).Return(int64(45), nil)
			repo.On("List", ctx, tt.wantOffset, tt.wantLimit).Return([]model.User{
				{ID: 1, Username: "alice", PasswordHash: "secret"},
			}, nil)

			items, meta, err := svc.List(ctx, tt.page, tt.size)

			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, "alice", items[0].Username)
			assert.Equal(t, int64(45), meta.Total)
			assert.Equal(t, tt.wantLimit, meta.Size)
			repo.AssertExpectations(t)
		})
	}

	t.Run("meta flags", func(t *testing.T) {
		svc, repo := newUserService()
		repo.On("Count", ctx).Return(int64(45), nil)
		repo.On("List", ctx, 20, 20).Return([]model.User{}, nil)

		_, meta, err := svc.List(ctx, 2, 20)

		require.NoError(t, err)
		assert.Equal(t, 3, meta.Pages)
		assert.True(t, meta.HasNext)
		assert.True(t, meta.HasPrev)
	})
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()
	svc, repo := newUserService()
	repo.On("GetByEmail", ctx, "root@example.com").Return(model.User{}, model.ErrUserNotFound)
	repo.On("GetByUsername", ctx, "root").Return(model.User{}, model.ErrUserNotFound)
	repo.On("Create", ctx, mock.MatchedBy(func(u model.User) bool {
		return u.IsSuperuser && !u.IsActive
	})).Return(model.User{ID: 9, Username: "root", IsSuperuser: true}, nil)

	user, err := svc.Create(ctx, model.NewUser{
		Email:       "root@example.com",
		Username:    "root",
		Password:    "Secret123",
		IsActive:    false,
		IsSuperuser: true,
	})

	require.NoError(t, err)
	assert.True(t, user.IsSuperuser)
	repo.AssertExpectations(t)
}

func TestUserService_Get(t *testing.T) {
	ctx := context.Background()
	alice := model.User{ID: 1, Username: "alice"}
	admin := model.User{ID: 2, Username: "admin", IsSuperuser: true}

	t.Run("self is served from the actor", func(t *testing.T) {
		svc, repo := newUserService()
		user, err := svc.Get(ctx, alice, 1)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		svc, _ := newUserService()
		_, err := svc.Get(ctx, alice, 3)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("superuser reads anyone", func(t *testing.T) {
		svc, repo := newUserService()
		repo.On("GetByID", ctx, int64(1)).Return(alice, nil)
		user, err := svc.Get(ctx, admin, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
	})

	t.Run("superuser gets not found", func(t *testing.T) {
		svc, repo := newUserService()
		repo.On("GetByID", ctx, int64(99)).Return(model.User{}, model.ErrUserNotFound)
		_, err := svc.Get(ctx, admin, 99)
		assert.ErrorIs(t, err, model.ErrUserNotFound)
	})
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()
	alice := model.User{ID: 1, Username: "alice"}
	admin := model.User{ID: 2, IsSuperuser: true}
	name := "Alice A."
	inactive := false

	t.Run("regular user cannot change is_active", func(t *testing.T) {
		svc, repo := newUserService()
		repo.On("Update", ctx, int64(1), model.UserPatch{FullName: &name}).Return(alice, nil)

		_, err := svc.Update(ctx, alice, 1, model.UserPatch{FullName: &name, IsActive: &inactive})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("superuser can deactivate others", func(t *testing.T) {
		svc, repo := newUserService()
		repo.On("Update", ctx, int64(1), model.UserPatch{IsActive: &inactive}).Return(alice, nil)

		_, err := svc.Update(ctx, admin, 1, model.UserPatch{IsActive: &inactive})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("updating someone else is forbidden", func(t *testing.T) {
		svc, repo := newUserService()
		_, err := svc.Update(ctx, alice, 2, model.UserPatch{FullName: &name})
		assert.ErrorIs(t, err, model.ErrForbidden)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("update me never touches is_active", func(t *testing.T) {
		svc, repo := newUserService()
		repo.On("Update", ctx, int64(2), model.UserPatch{FullName: &name}).Return(admin, nil)

		_, err := svc.UpdateMe(ctx, admin, model.UserPatch{FullName: &name, IsActive: &inactive})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
