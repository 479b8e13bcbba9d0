package user

import (
	"LeftoverLink/domain"
	"LeftoverLink/entities"
	"LeftoverLink/pkg/jwt"
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const passwordCost = 10

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error)
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := s.userRepository.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, domain.ErrEmailRegistered
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entities.User{
		FirstName: req.Fullname.Firstname,
		LastName:  req.Fullname.Lastname,
		Email:     email,
		Password:  string(hashed),
	}
	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrEmailRegistered
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.authResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.authResponse(user), nil
}

func (s *userService) authResponse(user *entities.User) *domain.AuthResponse {
	return &domain.AuthResponse{
		Token: s.jwtService.GenerateTokenUser(user.ID.String(), domain.RoleUser),
		User:  ToDomainUser(user),
	}
}

func ToDomainUser(user *entities.User) domain.User {
	return domain.User{
		ID: user.ID.String(),
		Fullname: domain.Fullname{
			Firstname: user.FirstName,
			Lastname:  user.LastName,
		},
		Email: user.Email,
	}
}
