package service

import (
	"context"

	"github.com/pkg/errors"

	"marketplace-service/internal/entity"
	"marketplace-service/internal/repository"
)

const (
	MsgUserNotFound = "User not found"
	emailTaken      = "Email already exists"
)

type UserService struct {
	store  *repository.Store
	events EventPublisher
}

func NewUserService(store *repository.Store, events EventPublisher) *UserService {
	return &UserService{store: store, events: events}
}

func (s *UserService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	users, err := s.store.Users.ListUsers(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing users")
		return nil, err
	}
	return users, nil
}

// GetUser returns the user with its purchase history, newest first.
func (s *UserService) GetUser(ctx context.Context, id int64) (*entity.UserDetail, error) {
	user, err := s.store.Users.GetUserByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Message: MsgUserNotFound}
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting user %d", id)
		return nil, err
	}

	purchases, err := s.store.Purchases.ListHistory(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting purchases of user %d", id)
		return nil, err
	}
	return &entity.UserDetail{User: *user, Purchases: purchases}, nil
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, &ValidationError{Message: "Name and email are required"}
	}

	taken, err := s.store.Users.EmailTaken(ctx, in.Email, 0)
	if err != nil {
		logger.Error().Err(err).Msg("Error checking email")
		return nil, err
	}
	if taken {
		return nil, &ConflictError{Message: emailTaken}
	}

	id, err := s.store.Users.CreateUser(ctx, in.Name, in.Email)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, &ConflictError{Message: emailTaken}
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error creating user")
		return nil, err
	}

	user, err := s.store.Users.GetUserByID(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting user %d", id)
		return nil, err
	}
	publishEvent(ctx, s.events, "user", "created", id, user)
	return user, nil
}

// UpdateUser changes only the supplied fields. A user may keep its own email.
func (s *UserService) UpdateUser(ctx context.Context, id int64, in UpdateUserInput) error {
	found, err := s.store.Users.Exists(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting user %d", id)
		return err
	}
	if !found {
		return &NotFoundError{Message: MsgUserNotFound}
	}

	if in.Email != nil {
		taken, err := s.store.Users.EmailTaken(ctx, *in.Email, id)
		if err != nil {
			logger.Error().Err(err).Msg("Error checking email")
			return err
		}
		if taken {
			return &ConflictError{Message: emailTaken}
		}
	}

	err = s.store.Users.UpdateUser(ctx, id, in.Name, in.Email)
	if errors.Is(err, repository.ErrDuplicate) {
		return &ConflictError{Message: emailTaken}
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error updating user %d", id)
		return err
	}

	publishEvent(ctx, s.events, "user", "updated", id, in)
	return nil
}

// DeleteUser removes the user and every purchase it made.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	err := s.store.RunInTx(ctx, func(tx *repository.Store) error {
		found, err := tx.Users.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return &NotFoundError{Message: MsgUserNotFound}
		}
		if err := tx.Purchases.DeleteByUser(ctx, id); err != nil {
			return err
		}
		return tx.Users.DeleteUser(ctx, id)
	})
	if err != nil {
		if !isDomainError(err) {
			logger.Error().Err(err).Msgf("Error deleting user %d", id)
		}
		return err
	}

	publishEvent(ctx, s.events, "user", "deleted", id, map[string]int64{"id": id})
	return nil
}
