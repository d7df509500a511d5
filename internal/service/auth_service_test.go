package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"classboard/internal/domain"
	"classboard/pkg/hash"
	. "classboard/pkg/jwt"
)

func TestAuthService_Register(t *testing.T) {
	repo := newMockInstructorRepository()
	service := NewAuthService(repo, "test-secret", 15*time.Minute, 7*24*time.Hour)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     *domain.RegisterRequest
		wantErr error
		setup   func()
	}{
		{
			name: "successful registration",
			req: &domain.RegisterRequest{
				Name:     "Lucia Perez",
				Email:    "lucia@example.com",
				Password: "Password123!",
			},
			setup: func() {},
		},
		{
			name: "duplicate email ignores case",
			req: &domain.RegisterRequest{
				Name:     "Another",
				Email:    "Existing@Example.com",
				Password: "Password123!",
			},
			wantErr: ErrEmailTaken,
			setup: func() {
				hashedPw, _ := hash.Hash("ExistingPass123!")
				repo.Create(ctx, &domain.Instructor{
					ID:       "existing-id",
					Name:     "Existing",
					Email:    "existing@example.com",
					Password: hashedPw,
				})
			},
		},
		{
			name: "weak password",
			req: &domain.RegisterRequest{
				Name:     "Weak",
				Email:    "weak@example.com",
				Password: "weak",
			},
			wantErr: hash.ErrPasswordTooShort,
			setup:   func() {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo.instructors = make(map[string]*domain.Instructor)
			tt.setup()

			instructor, err := service.Register(ctx, tt.req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("Register() unexpected error = %v", err)
			}
			if instructor.Password != "" {
				t.Error("Register() returned instructor with password")
			}

			exists, _ := repo.EmailExists(ctx, tt.req.Email)
			if !exists {
				t.Error("Register() instructor not created in repository")
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	repo := newMockInstructorRepository()
	service := NewAuthService(repo, "test-secret-key", 15*time.Minute, 7*24*time.Hour)
	ctx := context.Background()

	password := "InstructorPassword123!"
	hashedPassword, _ := hash.Hash(password)

	repo.Create(ctx, &domain.Instructor{
		ID:       "test-instructor-id",
		Name:     "Test",
		Email:    "test@example.com",
		Password: hashedPassword,
	})

	tests := []struct {
		name    string
		req     *domain.LoginRequest
		wantErr bool
	}{
		{
			name:    "successful login",
			req:     &domain.LoginRequest{Email: "test@example.com", Password: password},
			wantErr: false,
		},
		{
			name:    "email is case insensitive",
			req:     &domain.LoginRequest{Email: " TEST@example.com ", Password: password},
			wantErr: false,
		},
		{
			name:    "wrong password",
			req:     &domain.LoginRequest{Email: "test@example.com", Password: "WrongPassword"},
			wantErr: true,
		},
		{
			name:    "non-existent email",
			req:     &domain.LoginRequest{Email: "nonexistent@example.com", Password: password},
			wantErr: true,
		},
		{
			name:    "empty password",
			req:     &domain.LoginRequest{Email: "test@example.com", Password: ""},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := service.Login(ctx, tt.req)

			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCredentials) {
					t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Login() unexpected error = %v", err)
			}

			if resp.AccessToken == "" {
				t.Error("Login() returned empty access token")
			}
			if resp.RefreshToken == "" {
				t.Error("Login() returned empty refresh token")
			}
			if resp.Instructor == nil {
				t.Fatal("Login() returned nil instructor")
			}
			if resp.Instructor.Password != "" {
				t.Error("Login() returned instructor with password (security issue)")
			}
			if resp.ExpiresIn != int64(15*time.Minute.Seconds()) {
				t.Errorf("Login() expiresIn = %v, want %v", resp.ExpiresIn, 15*60)
			}
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	repo := newMockInstructorRepository()
	secret := "refresh-test-secret-key"
	service := NewAuthService(repo, secret, 15*time.Minute, 7*24*time.Hour)

	validToken, _ := GenerateRefreshToken("refresh-instructor-id", 7*24*time.Hour, secret)
	expiredToken, _ := GenerateRefreshToken("refresh-instructor-id", -1*time.Hour, secret)
	accessToken, _ := GenerateToken("refresh-instructor-id", time.Hour, secret)

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "valid refresh token", token: validToken},
		{name: "expired refresh token", token: expiredToken, wantErr: true},
		{name: "access token rejected", token: accessToken, wantErr: true},
		{name: "invalid refresh token", token: "invalid.token.here", wantErr: true},
		{name: "empty refresh token", token: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := service.RefreshToken(&domain.RefreshTokenRequest{RefreshToken: tt.token})

			if tt.wantErr {
				if !errors.Is(err, ErrInvalidToken) {
					t.Errorf("RefreshToken() error = %v, want ErrInvalidToken", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("RefreshToken() unexpected error = %v", err)
			}
			if resp.AccessToken == "" {
				t.Error("RefreshToken() returned empty access token")
			}
			if resp.ExpiresIn != int64(15*time.Minute.Seconds()) {
				t.Errorf("RefreshToken() expiresIn = %v, want %v", resp.ExpiresIn, 15*60)
			}
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	repo := newMockInstructorRepository()
	secret := "validation-test-secret"
	service := NewAuthService(repo, secret, 15*time.Minute, 7*24*time.Hour)

	validToken, _ := GenerateToken("instructor-id", 1*time.Hour, secret)
	refreshToken, _ := GenerateRefreshToken("instructor-id", 1*time.Hour, secret)

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "valid token", token: validToken},
		{name: "refresh token is not an access token", token: refreshToken, wantErr: true},
		{name: "invalid token", token: "invalid.token.format", wantErr: true},
		{name: "empty token", token: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(tt.token)

			if tt.wantErr {
				if err == nil {
					t.Error("ValidateToken() expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("ValidateToken() unexpected error = %v", err)
			}
			if claims.UserID != "instructor-id" {
				t.Errorf("ValidateToken() userID = %s, want instructor-id", claims.UserID)
			}
		})
	}
}
