package services

import (
	"context"
	"errors"
	"log"

	"simia-portal/internal/adapters/persistence/models"
	"simia-portal/internal/adapters/persistence/repositories"
	"simia-portal/internal/pkg/password"

	"gorm.io/gorm"
)

// User errors
var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrWeakPassword      = errors.New("password must be at least 8 characters")
)

// UserService handles staff onboarding and lookup
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUserInput represents onboarding input
type CreateUserInput struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Password string  `json:"password" validate:"required,min=8"`
	Role     string  `json:"role" validate:"omitempty,oneof=admin employee"`
	Name     string  `json:"name" validate:"required,max=100"`
	Avatar   *string `json:"avatar"`
}

// List returns all users with passwords stripped
func (s *UserService) List(ctx context.Context) ([]*models.UserResponse, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToResponse())
	}
	return out, nil
}

// GetByID returns a single user
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Create onboards a new staff member. Role defaults to employee and the
// avatar defaults to a deterministic URI derived from the username.
func (s *UserService) Create(ctx context.Context, input *CreateUserInput) (*models.UserResponse, error) {
	if !password.ValidatePassword(input.Password) {
		return nil, ErrWeakPassword
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.RoleEmployee
	}

	avatar := input.Avatar
	if avatar == nil {
		uri := "https://api.dicebear.com/7.x/avataaars/svg?seed=" + input.Username
		avatar = &uri
	}

	user := &models.User{
		Username: input.Username,
		Password: hashed,
		Role:     role,
		Name:     input.Name,
		Avatar:   avatar,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ User onboarded: %s (role: %s)", user.Username, user.Role)
	return user.ToResponse(), nil
}
