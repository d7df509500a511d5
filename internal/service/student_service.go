package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"classboard/internal/domain"
	"classboard/internal/repository"

	"github.com/google/uuid"
)

type StudentService struct {
	repo        repository.StudentRepository
	archiveRepo repository.ArchiveRepository
	notifier    ChangeNotifier
	pageSize    int
}

func NewStudentService(
	repo repository.StudentRepository,
	archiveRepo repository.ArchiveRepository,
	notifier ChangeNotifier,
	pageSize int,
) *StudentService {
	return &StudentService{
		repo:        repo,
		archiveRepo: archiveRepo,
		notifier:    notifier,
		pageSize:    pageSize,
	}
}

// List returns page `page` of the roster, or every student carrying all of
// tags when tags is non-empty.
func (s *StudentService) List(ctx context.Context, instructorID string, page int, tags []string) ([]*domain.Student, error) {
	if page < 0 {
		page = 0
	}

	return s.repo.List(ctx, domain.StudentFilter{
		InstructorID: instructorID,
		Tags:         normalizeTags(tags),
		Page:         page,
		PageSize:     s.pageSize,
	})
}

func (s *StudentService) Get(ctx context.Context, instructorID, id string) (*domain.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if student.InstructorID != instructorID {
		return nil, ErrAccessDenied
	}

	return student, nil
}

func (s *StudentService) Create(ctx context.Context, instructorID, originClientID string, req *domain.CreateStudentRequest) (*domain.Student, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	if _, err := s.repo.FindByName(ctx, instructorID, name); err == nil {
		return nil, ErrDuplicateStudent
	} else if !errors.Is(err, repository.ErrStudentNotFound) {
		return nil, fmt.Errorf("failed to check student name: %w", err)
	}

	now := time.Now()
	student := &domain.Student{
		ID:           uuid.New().String(),
		InstructorID: instructorID,
		Name:         name,
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		Details:      req.Details,
		Image:        req.Image,
		Tags:         normalizeTags(req.Tags),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, student); err != nil {
		return nil, err
	}

	s.notify(student, domain.ChangeCreated, originClientID)
	return student, nil
}

func (s *StudentService) Update(ctx context.Context, instructorID, id, originClientID string, req *domain.UpdateStudentRequest) (*domain.Student, error) {
	student, err := s.Get(ctx, instructorID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		if name != student.Name {
			if _, err := s.repo.FindByName(ctx, instructorID, name); err == nil {
				return nil, ErrDuplicateStudent
			} else if !errors.Is(err, repository.ErrStudentNotFound) {
				return nil, fmt.Errorf("failed to check student name: %w", err)
			}
		}
		student.Name = name
	}
	if req.Email != nil {
		student.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		student.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Details != nil {
		student.Details = *req.Details
	}
	if req.Image != nil {
		student.Image = *req.Image
	}
	if req.Tags != nil {
		student.Tags = normalizeTags(req.Tags)
	}
	student.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, err
	}

	s.notify(student, domain.ChangeUpdated, originClientID)
	return student, nil
}

// ToggleArchive flips the archive flag; a student without one becomes archived.
func (s *StudentService) ToggleArchive(ctx context.Context, instructorID, id, originClientID string) (*domain.Student, error) {
	student, err := s.Get(ctx, instructorID, id)
	if err != nil {
		return nil, err
	}

	toggled := domain.ToggleArchived(*student)
	toggled.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, &toggled); err != nil {
		return nil, err
	}

	s.notify(&toggled, domain.ChangeArchived, originClientID)
	return &toggled, nil
}

// Delete keeps a copy of the student in the archive before removing it.
func (s *StudentService) Delete(ctx context.Context, instructorID, id, originClientID string) error {
	student, err := s.Get(ctx, instructorID, id)
	if err != nil {
		return err
	}

	if err := s.archiveRepo.SaveStudent(ctx, &domain.DeletedStudent{
		Student:   *student,
		DeletedAt: time.Now(),
	}); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.notify(student, domain.ChangeDeleted, originClientID)
	return nil
}

func (s *StudentService) notify(student *domain.Student, op domain.ChangeOp, originClientID string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(domain.ChangeEvent{
		Collection: domain.CollectionStudents,
		OwnerID:    student.InstructorID,
		RecordID:   student.ID,
		Op:         op,
	}, originClientID)
}
