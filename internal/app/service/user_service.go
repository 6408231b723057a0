package service

import (
	"context"

	"medistore/internal/common"
	"medistore/internal/common/security"
	"medistore/internal/domain/model"
	"medistore/internal/domain/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"` // Empty keeps the stored password
	Role     string `json:"role"`
}

func (s *UserService) FindAll(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].HashedPassword = ""
	}
	return users, nil
}

func (s *UserService) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.HashedPassword = ""
	return user, nil
}

// Update overwrites the stored record. An empty password in the request
// preserves the previously stored credential; a non-empty one replaces
// it.
func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest) (*model.User, error) {
	existing, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Username = req.Username
	existing.Email = req.Email
	existing.Phone = req.Phone
	existing.Address = req.Address
	if req.Role != "" {
		existing.Role = req.Role
	}
	if req.Password != "" {
		hashed, err := security.HashPassword(req.Password)
		if err != nil {
			return nil, common.Errorf("failed to hash password: %w", err)
		}
		existing.HashedPassword = hashed
	}

	saved, err := s.userRepo.Save(ctx, existing)
	if err != nil {
		return nil, err
	}
	saved.HashedPassword = ""
	return saved, nil
}

// Delete removes the user record. Orders owned by the user are kept.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.userRepo.Delete(ctx, id)
}
