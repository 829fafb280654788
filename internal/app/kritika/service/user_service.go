package service

import (
	"context"
	"errors"
	"fmt"

	"kritika/internal/app/kritika/entity"
	"kritika/internal/app/kritika/repository"
	"kritika/internal/app/kritika/util"
	"kritika/pkg/logger"
)

// UserService - административное управление пользователями и профиль
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Create создает пользователя от имени администратора.
// Код подтверждения не генерируется: пользователь получит его
// через обычный signup.
func (s *UserService) Create(ctx context.Context, req *entity.CreateUserRequest) (*entity.User, error) {
	if err := util.ValidateUsername(req.Username); err != nil {
		return nil, NewValidationError("%s", err.Error())
	}
	if err := util.ValidateEmail(req.Email); err != nil {
		return nil, NewValidationError("%s", err.Error())
	}

	role := req.Role
	if role == "" {
		role = entity.RoleUser
	}
	if !role.Valid() {
		return nil, NewValidationError("unknown role %q", role)
	}

	user := &entity.User{
		Username:  req.Username,
		Email:     req.Email,
		Role:      role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, NewValidationError("username or email is already taken")
		}
		return nil, err
	}

	logger.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("user created by admin")
	return user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, search string, limit, offset int) ([]entity.User, int64, error) {
	return s.userRepo.List(ctx, search, limit, offset)
}

// UpdateByAdmin обновляет любого пользователя, включая роль
func (s *UserService) UpdateByAdmin(ctx context.Context, username string, req *entity.UpdateUserRequest) (*entity.User, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		if err := util.ValidateUsername(*req.Username); err != nil {
			return nil, NewValidationError("%s", err.Error())
		}
		user.Username = *req.Username
	}
	if req.Email != nil {
		if err := util.ValidateEmail(*req.Email); err != nil {
			return nil, NewValidationError("%s", err.Error())
		}
		user.Email = *req.Email
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, NewValidationError("unknown role %q", *req.Role)
		}
		user.Role = *req.Role
	}
	s.applyProfileFields(user, req)

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, NewValidationError("username or email is already taken")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// UpdateProfile обновляет собственный профиль пользователя.
// Поля username, email и role в этом пути молча игнорируются:
// менять их может только администратор.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *entity.UpdateUserRequest) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.applyProfileFields(user, req)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	logger.Info().Str("username", username).Msg("user deleted")
	return nil
}

func (s *UserService) applyProfileFields(user *entity.User, req *entity.UpdateUserRequest) {
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
}
