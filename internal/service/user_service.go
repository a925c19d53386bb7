package service

import (
	"context"
	"math"

	"go-auth-api/internal/model"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*size inside a 32-bit OFFSET.
	MaxPage         = math.MaxInt32 / MaxPageSize
)

type UserService struct {
	users  UserStore
	hasher passwordHasher
}

func NewUserService(users UserStore, hasher passwordHasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

// List returns one page of users ordered by id. page starts at 1.
func (s *UserService) List(ctx context.Context, page int, size int) ([]model.PublicUser, *model.Meta, error) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, nil, err
	}

	users, err := s.users.List(ctx, (page-1)*size, size)
	if err != nil {
		return nil, nil, err
	}

	items := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		items = append(items, u.Public())
	}
	return items, model.NewMeta(page, size, total), nil
}

// Create lets a superuser add an account with explicit flags.
func (s *UserService) Create(ctx context.Context, in model.NewUser) (model.PublicUser, error) {
	user, err := createUser(ctx, s.users, s.hasher, in)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *UserService) Get(ctx context.Context, actor model.User, id int64) (model.PublicUser, error) {
	if !canAccess(actor, id) {
		return model.PublicUser{}, model.ErrForbidden
	}
	if actor.ID == id {
		return actor.Public(), nil
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

// Update applies patch to user id. Only superusers may change is_active;
// for anyone else that part of the patch is dropped.
func (s *UserService) Update(ctx context.Context, actor model.User, id int64, patch model.UserPatch) (model.PublicUser, error) {
	if !canAccess(actor, id) {
		return model.PublicUser{}, model.ErrForbidden
	}
	if !actor.IsSuperuser {
		patch.IsActive = nil
	}

	user, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *UserService) UpdateMe(ctx context.Context, actor model.User, patch model.UserPatch) (model.PublicUser, error) {
	patch.IsActive = nil
	user, err := s.users.Update(ctx, actor.ID, patch)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func canAccess(actor model.User, id int64) bool {
	return actor.IsSuperuser || actor.ID == id
}
