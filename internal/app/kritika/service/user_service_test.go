package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kritika/internal/app/kritika/entity"
	"kritika/internal/app/kritika/repository"
	"kritika/internal/app/kritika/repository/mocks"
)

func strPtr(s string) *string { return &s }

func TestUserService_Create_DefaultRole(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo)

	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)

	user, err := svc.Create(context.Background(), &entity.CreateUserRequest{
		Username: "reader",
		Email:    "reader@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, user.Role)
}

func TestUserService_Create_UnknownRole(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo)

	_, err := svc.Create(context.Background(), &entity.CreateUserRequest{
		Username: "reader",
		Email:    "reader@example.com",
		Role:     entity.Role("owner"),
	})

	assert.True(t, IsValidationError(err))
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Create_Conflict(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo)

	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).
		Return(repository.ErrConflict)

	_, err := svc.Create(context.Background(), &entity.CreateUserRequest{
		Username: "reader",
		Email:    "reader@example.com",
	})

	assert.True(t, IsValidationError(err))
}

func TestUserService_UpdateByAdmin_ChangesRole(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo)

	existing := &entity.User{ID: 7, Username: "reader", Email: "reader@example.com", Role: entity.RoleUser}
	userRepo.On("GetByUsername", mock.Anything, "reader").Return(existing, nil)
	userRepo.On("Update", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)

	role := entity.RoleModerator
	user, err := svc.UpdateByAdmin(context.Background(), "reader", &entity.UpdateUserRequest{
		Role: &role,
		Bio:  strPtr("люблю книги"),
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RoleModerator, user.Role)
	assert.Equal(t, "люблю книги", user.Bio)
}

func TestUserService_UpdateProfile_IgnoresRestrictedFields(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo)

	existing := &entity.User{ID: 7, Username: "reader", Email: "reader@example.com", Role: entity.RoleUser}
	userRepo.On("GetByID", mock.Anything, int64(7)).Return(existing, nil)
	userRepo.On("Update", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)

	role := entity.RoleAdmin
	user, err := svc.UpdateProfile(context.Background(), 7, &entity.UpdateUserRequest{
		Username:  strPtr("hacker"),
		Email:     strPtr("hacker@example.com"),
		Role:      &role,
		FirstName: strPtr("Иван"),
	})

	require.NoError(t, err)
	// Профиль меняется, а учетные поля и роль остаются прежними
	assert.Equal(t, "Иван", user.FirstName)
	assert.Equal(t, "reader", user.Username)
	assert.Equal(t, "reader@example.com", user.Email)
	assert.Equal(t, entity.RoleUser, user.Role)
}

func TestUserService_GetByUsername_NotFound(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo)

	userRepo.On("GetByUsername", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	_, err := svc.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_Delete(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo)

	existing := &entity.User{ID: 7, Username: "reader"}
	userRepo.On("GetByUsername", mock.Anything, "reader").Return(existing, nil)
	userRepo.On("Delete", mock.Anything, int64(7)).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), "reader"))
	userRepo.AssertExpectations(t)
}

func TestUserService_Delete_NotFound(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo)

	userRepo.On("GetByUsername", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), "ghost"), ErrNotFound)
}
