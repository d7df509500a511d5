package handler

import (
	"context"

	"classboard/internal/domain"
	"classboard/pkg/jwt"
)

// The handlers depend on these narrow views of the services so routes can be
// exercised with in-memory fakes.

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.Instructor, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	RefreshToken(req *domain.RefreshTokenRequest) (*domain.TokenResponse, error)
	ValidateToken(token string) (*jwt.Claims, error)
}

type InstructorService interface {
	GetByID(ctx context.Context, id string) (*domain.Instructor, error)
	UpdateProfile(ctx context.Context, id string, req *domain.UpdateInstructorRequest) (*domain.Instructor, error)
}

type StudentService interface {
	List(ctx context.Context, instructorID string, page int, tags []string) ([]*domain.Student, error)
	Get(ctx context.Context, instructorID, id string) (*domain.Student, error)
	Create(ctx context.Context, instructorID, originClientID string, req *domain.CreateStudentRequest) (*domain.Student, error)
	Update(ctx context.Context, instructorID, id, originClientID string, req *domain.UpdateStudentRequest) (*domain.Student, error)
	ToggleArchive(ctx context.Context, instructorID, id, originClientID string) (*domain.Student, error)
	Delete(ctx context.Context, instructorID, id, originClientID string) error
}

type TimelineService interface {
	List(ctx context.Context, authorID string, page int, tags []string) ([]*domain.Timeline, error)
	Get(ctx context.Context, id string) (*domain.Timeline, error)
	Tags(ctx context.Context, authorID string) ([]string, error)
	Create(ctx context.Context, authorID, originClientID string, req *domain.CreateTimelineRequest) (*domain.Timeline, error)
	Delete(ctx context.Context, authorID, id, originClientID string) error
}
