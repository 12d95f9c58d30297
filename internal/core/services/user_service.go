package services

import (
	"context"

	"garagehub/internal/adapters/persistence/models"
	"garagehub/internal/adapters/persistence/repositories"
	"garagehub/internal/core/domain"
)

// UserService handles user administration
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// List returns users, optionally filtered by role, as response DTOs.
func (s *UserService) List(ctx context.Context, role domain.Role, offset, limit int) ([]*models.UserResponse, int64, error) {
	if role != "" && !role.Valid() {
		return nil, 0, domain.ErrInvalidInput
	}

	users, total, err := s.userRepo.List(ctx, role, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}
	return responses, total, nil
}
