package service

import (
	"context"
	"fmt"
	"time"

	"classboard/internal/domain"
	"classboard/internal/repository"
)

type InstructorService struct {
	instructorRepo repository.InstructorRepository
}

func NewInstructorService(instructorRepo repository.InstructorRepository) *InstructorService {
	return &InstructorService{
		instructorRepo: instructorRepo,
	}
}

func (s *InstructorService) GetByID(ctx context.Context, id string) (*domain.Instructor, error) {
	instructor, err := s.instructorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	instructor.Password = ""
	return instructor, nil
}

func (s *InstructorService) UpdateProfile(ctx context.Context, id string, req *domain.UpdateInstructorRequest) (*domain.Instructor, error) {
	instructor, err := s.instructorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		instructor.Name = req.Name
	}
	if req.Image != "" {
		instructor.Image = req.Image
	}
	instructor.UpdatedAt = time.Now()

	if err := s.instructorRepo.Update(ctx, instructor); err != nil {
		return nil, fmt.Errorf("failed to update instructor: %w", err)
	}

	instructor.Password = ""
	return instructor, nil
}
