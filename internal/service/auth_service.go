package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/campusdesk/complaint-service/internal/auth"
	"github.com/campusdesk/complaint-service/internal/config"
	"github.com/campusdesk/complaint-service/internal/domain"
	"github.com/campusdesk/complaint-service/internal/repository"
	apperrors "github.com/campusdesk/complaint-service/pkg/util/errorutil"
)

// AuthService coordinates login for dashboard accounts.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   tokens,
		bcryptCost: cfg.BcryptCost,
	}
}

// Login authenticates by email and password and issues a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("email and password are required", nil)
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// DemoUsers are the accounts seeded for a fresh environment.
var DemoUsers = []domain.User{
	{ID: "admin-1", Name: "Asha Admin", Email: "admin@campus.edu", Role: domain.RoleAdmin, Department: "Administration"},
	{ID: "staff-1", Name: "Ravi Kumar", Email: "ravi@campus.edu", Role: domain.RoleStaff, Department: "Facilities"},
	{ID: "staff-2", Name: "Meera Shah", Email: "meera@campus.edu", Role: domain.RoleStaff, Department: "Student Welfare"},
	{ID: "student-1", Name: "Arjun Patel", Email: "arjun@campus.edu", Role: domain.RoleStudent, Department: "Computer Science"},
	{ID: "student-2", Name: "Sara Thomas", Email: "sara@campus.edu", Role: domain.RoleStudent, Department: "Mechanical"},
}

// SeedUsers stores the demo accounts with a shared password.
func (s *AuthService) SeedUsers(ctx context.Context, password string) error {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	for _, u := range DemoUsers {
		user := u
		user.PasswordHash = hash
		if err := s.users.Create(ctx, &user); err != nil {
			return err
		}
	}
	return nil
}
