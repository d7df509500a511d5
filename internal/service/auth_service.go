package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"classboard/internal/domain"
	"classboard/internal/repository"
	"classboard/pkg/hash"
	"classboard/pkg/jwt"

	"github.com/google/uuid"
)

type AuthService struct {
	instructorRepo    repository.InstructorRepository
	jwtSecret         string
	jwtExpiration     time.Duration
	refreshExpiration time.Duration
}

func NewAuthService(instructorRepo repository.InstructorRepository, jwtSecret string, jwtExp, refreshExp time.Duration) *AuthService {
	return &AuthService{
		instructorRepo:    instructorRepo,
		jwtSecret:         jwtSecret,
		jwtExpiration:     jwtExp,
		refreshExpiration: refreshExp,
	}
}

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.Instructor, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.instructorRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := hash.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	instructor := &domain.Instructor{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.instructorRepo.Create(ctx, instructor); err != nil {
		return nil, fmt.Errorf("failed to create instructor: %w", err)
	}

	instructor.Password = ""
	return instructor, nil
}

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	instructor, err := s.instructorRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrInstructorNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := hash.Compare(instructor.Password, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := jwt.GenerateToken(instructor.ID, s.jwtExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := jwt.GenerateRefreshToken(instructor.ID, s.refreshExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	instructor.Password = ""

	return &domain.LoginResponse{
		Instructor:   instructor,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtExpiration.Seconds()),
	}, nil
}

func (s *AuthService) RefreshToken(req *domain.RefreshTokenRequest) (*domain.TokenResponse, error) {
	claims, err := jwt.ValidateTokenType(req.RefreshToken, s.jwtSecret, jwt.TokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}

	accessToken, err := jwt.GenerateToken(claims.UserID, s.jwtExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwtExpiration.Seconds()),
	}, nil
}

func (s *AuthService) ValidateToken(token string) (*jwt.Claims, error) {
	claims, err := jwt.ValidateTokenType(token, s.jwtSecret, jwt.TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
