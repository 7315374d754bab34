package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/linemk/micro-shop/internal/domain/models"
	"github.com/linemk/micro-shop/internal/lib/httperr"
	"github.com/linemk/micro-shop/internal/storage"
)

// UserInput — создание/обновление пользователя
type UserInput struct {
	Email   string         `json:"email" validate:"required,email"`
	Name    string         `json:"name" validate:"required"`
	Address models.Address `json:"address"`
	Role    models.Role    `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
}

type UserService interface {
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	AddUser(ctx context.Context, input *UserInput) (*models.User, error)
	UpdateUser(ctx context.Context, id string, input *UserInput) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type userService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
}

func NewUserService(log *slog.Logger, userRepo storage.UserStorage) UserService {
	return &userService{log: log, userRepo: userRepo}
}

func validateUserID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return httperr.BadRequestf("invalid user id: %s", id)
	}
	return nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	const op = "service.userService.GetAllUsers"

	users, err := s.userRepo.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "service.userService.GetUserByID"

	if err := validateUserID(id); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, httperr.NotFoundf("user with id %s was not found", id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "service.userService.GetUserByEmail"

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, httperr.NotFoundf("user with email %s was not found", email)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (s *userService) AddUser(ctx context.Context, input *UserInput) (*models.User, error) {
	const op = "service.userService.AddUser"
	logger := s.log.With(slog.String("op", op), slog.String("email", input.Email))

	if err := validate.Struct(input); err != nil {
		return nil, httperr.BadRequestf("invalid user: %v", err)
	}

	user := &models.User{
		Email:   input.Email,
		Name:    input.Name,
		Address: input.Address,
		Role:    input.Role,
	}

	id, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			return nil, httperr.BadRequest("email is already taken")
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.userRepo.GetUserByID(ctx, id)
}

func (s *userService) UpdateUser(ctx context.Context, id string, input *UserInput) (*models.User, error) {
	const op = "service.userService.UpdateUser"

	if err := validateUserID(id); err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, httperr.BadRequestf("invalid user: %v", err)
	}

	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, httperr.NotFoundf("user with id %s not found", id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user.Email = input.Email
	user.Name = input.Name
	user.Address = input.Address
	if input.Role != "" {
		user.Role = input.Role
	}

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, httperr.NotFoundf("user with id %s not found", id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.userRepo.GetUserByID(ctx, id)
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	const op = "service.userService.DeleteUser"

	if err := validateUserID(id); err != nil {
		return err
	}

	if err := s.userRepo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return httperr.NotFoundf("user with id %s not found", id)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
