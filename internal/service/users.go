package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/geocoder89/valehub/internal/domain/user"
	"github.com/geocoder89/valehub/internal/policy"
	"github.com/geocoder89/valehub/internal/security"
)

type UserService struct {
	store          UserStore
	primaryAdminID string
	hash           func(string) (string, error)
	log            *slog.Logger
}

func NewUserService(store UserStore, primaryAdminID string, log *slog.Logger) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{
		store:          store,
		primaryAdminID: primaryAdminID,
		hash:           security.HashPassword,
		log:            log,
	}
}

func (s *UserService) List(ctx context.Context, actor policy.Actor) ([]user.User, error) {
	if err := policy.Authorize(actor, policy.ListUsers, policy.Target{}); err != nil {
		return nil, err
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]user.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// ListEmployees returns the employees as picker options, in creation order.
func (s *UserService) ListEmployees(ctx context.Context, actor policy.Actor) ([]user.Option, error) {
	users, err := s.List(ctx, actor)
	if err != nil {
		return nil, err
	}

	out := make([]user.Option, 0, len(users))
	for _, u := range users {
		if u.Role == user.RoleEmployee {
			out = append(out, user.Option{Value: u.ID, Label: u.Name})
		}
	}
	return out, nil
}

func (s *UserService) Create(ctx context.Context, actor policy.Actor, req user.CreateRequest) (user.User, error) {
	if err := policy.Authorize(actor, policy.CreateUser, policy.Target{}); err != nil {
		return user.User{}, err
	}
	if err := req.Validate(); err != nil {
		return user.User{}, err
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return user.User{}, err
	}

	created, err := s.store.CreateUser(ctx, user.New(req, hash))
	if err != nil {
		return user.User{}, err
	}

	s.log.InfoContext(ctx, "user created", "user_id", created.ID, "role", created.Role, "by", actor.UserID)
	return created.Public(), nil
}

// Update changes name and role. Demoting the primary or the last admin is
// rejected inside the store's critical section.
func (s *UserService) Update(ctx context.Context, actor policy.Actor, id string, req user.UpdateRequest) (user.User, error) {
	if err := policy.Authorize(actor, policy.UpdateUser, policy.Target{OwnerID: id}); err != nil {
		return user.User{}, err
	}
	if err := req.Validate(); err != nil {
		return user.User{}, err
	}

	updated, err := s.store.UpdateUser(ctx, id,
		user.Patch{Name: strings.TrimSpace(req.Name), Role: req.Role},
		policy.GuardRoleChange(s.primaryAdminID, req.Role),
	)
	if err != nil {
		return user.User{}, err
	}

	return updated.Public(), nil
}

// Delete removes the user together with their vouchers.
func (s *UserService) Delete(ctx context.Context, actor policy.Actor, id string) error {
	if err := policy.Authorize(actor, policy.DeleteUser, policy.Target{OwnerID: id}); err != nil {
		return err
	}

	if err := s.store.DeleteUser(ctx, id, policy.GuardRemoval(s.primaryAdminID)); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "user deleted", "user_id", id, "by", actor.UserID)
	return nil
}
