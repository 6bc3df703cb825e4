// internal/domain/user/service.go
package user

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sweetcrumbs/bakery-backend/internal/config"
	"github.com/sweetcrumbs/bakery-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// Sentinel errors surfaced by the user service.
var (
	ErrNotFound           = errors.New("user not found")
	ErrAlreadyExists      = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid username/email or password")
	ErrSelfDemotion       = errors.New("cannot remove admin privileges from yourself")
)

// Service handles account business logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	passwords *auth.PasswordManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		passwords: auth.NewPasswordManager(cfg),
	}
}

// RegisterRequest represents registration data
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents login data; Login accepts username or email.
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account with a unique username and email.
func (s *Service) Register(req *RegisterRequest) (*User, error) {
	var existing User
	err := s.db.Where("username = ? OR email = ?", req.Username, strings.ToLower(req.Email)).First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
	}
	if err := s.db.Create(&u).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

// Authenticate verifies credentials, matching by username or email.
func (s *Service) Authenticate(req *LoginRequest) (*User, error) {
	var u User
	err := s.db.Where("username = ? OR email = ?", req.Login, strings.ToLower(req.Login)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.passwords.VerifyPassword(req.Password, u.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// Get retrieves a user by ID
func (s *Service) Get(userID uint) (*User, error) {
	var u User
	if err := s.db.First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &u, nil
}

// List retrieves all users (admin)
func (s *Service) List() ([]User, error) {
	var users []User
	if err := s.db.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ToggleAdmin flips admin privileges for a user. Admins cannot demote
// themselves.
func (s *Service) ToggleAdmin(actorID, targetID uint) (*User, error) {
	if actorID == targetID {
		return nil, ErrSelfDemotion
	}

	target, err := s.Get(targetID)
	if err != nil {
		return nil, err
	}

	target.IsAdmin = !target.IsAdmin
	if err := s.db.Model(target).Update("is_admin", target.IsAdmin).Error; err != nil {
		return nil, fmt.Errorf("failed to toggle admin flag: %w", err)
	}
	return target, nil
}
