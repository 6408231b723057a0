package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"medistore/internal/common"
	"medistore/internal/common/security"
	"medistore/internal/domain/model"
	"medistore/internal/domain/repository"
	"medistore/internal/platform/config"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		HashedPassword: hashedPassword,
		Role:           model.RoleUser, // Default role
	}

	saved, err := s.userRepo.Save(ctx, user)
	if err != nil {
		// Repo returns common.ErrConflict on a duplicate email
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := security.GenerateToken(saved.ID, saved.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	saved.HashedPassword = "" // Clear password before returning
	return &AuthResponse{User: saved, Token: token}, nil
}

// Login resolves the user by email and checks the password. Both an
// unknown email and a wrong password yield the same generic error; the
// distinction is only logged.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Printf("INFO: Login rejected: no account for %s", req.Email)
			return nil, common.ErrUnauthorized // Generic message for security
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		log.Printf("INFO: Login rejected: wrong password for %s", req.Email)
		return nil, common.ErrUnauthorized
	}

	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

// EnsureAdmin seeds the administrator account on startup if it does not
// exist yet. Safe to run on every boot.
func (s *AuthService) EnsureAdmin(ctx context.Context) error {
	_, err := s.userRepo.FindByEmail(ctx, config.AppConfig.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("failed to check for admin account: %w", err)
	}

	hashedPassword, err := security.HashPassword(config.AppConfig.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &model.User{
		ID:             uuid.NewString(),
		Username:       "Admin",
		Email:          config.AppConfig.AdminEmail,
		Phone:          "1234567890",
		Address:        "Admin Office",
		HashedPassword: hashedPassword,
		Role:           model.RoleAdmin,
	}
	if _, err := s.userRepo.Save(ctx, admin); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}
	log.Printf("INFO: Seeded administrator account %s", admin.Email)
	return nil
}
