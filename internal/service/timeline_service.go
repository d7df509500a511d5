package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"classboard/internal/domain"
	"classboard/internal/repository"

	"github.com/google/uuid"
)

type TimelineService struct {
	repo           repository.TimelineRepository
	archiveRepo    repository.ArchiveRepository
	instructorRepo repository.InstructorRepository
	notifier       ChangeNotifier
	pageSize       int
}

func NewTimelineService(
	repo repository.TimelineRepository,
	archiveRepo repository.ArchiveRepository,
	instructorRepo repository.InstructorRepository,
	notifier ChangeNotifier,
	pageSize int,
) *TimelineService {
	return &TimelineService{
		repo:           repo,
		archiveRepo:    archiveRepo,
		instructorRepo: instructorRepo,
		notifier:       notifier,
		pageSize:       pageSize,
	}
}

// List returns page `page` of authorID's feed, newest first, or every entry
// carrying all of tags when tags is non-empty.
func (s *TimelineService) List(ctx context.Context, authorID string, page int, tags []string) ([]*domain.Timeline, error) {
	if page < 0 {
		page = 0
	}

	return s.repo.List(ctx, domain.TimelineFilter{
		AuthorID: authorID,
		Tags:     normalizeTags(tags),
		Page:     page,
		PageSize: s.pageSize,
	})
}

func (s *TimelineService) Get(ctx context.Context, id string) (*domain.Timeline, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TimelineService) Tags(ctx context.Context, authorID string) ([]string, error) {
	return s.repo.Tags(ctx, authorID)
}

func (s *TimelineService) Create(ctx context.Context, authorID, originClientID string, req *domain.CreateTimelineRequest) (*domain.Timeline, error) {
	author, err := s.instructorRepo.FindByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load author: %w", err)
	}

	id := uuid.New().String()
	entry := &domain.Timeline{
		ID:         id,
		AuthorID:   authorID,
		AuthorName: author.Name,
		MainText:   strings.TrimSpace(req.MainText),
		Length:     strings.TrimSpace(req.Length),
		Photo:      req.Photo,
		Links:      req.Links,
		Tags:       normalizeTags(req.Tags),
		URLSlug:    slugify(req.MainText, id[:8]),
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.notify(entry, domain.ChangeCreated, originClientID)
	return entry, nil
}

// Delete keeps a copy of the entry in the archive before removing it.
func (s *TimelineService) Delete(ctx context.Context, authorID, id, originClientID string) error {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if entry.AuthorID != authorID {
		return ErrAccessDenied
	}

	if err := s.archiveRepo.SaveTimeline(ctx, &domain.DeletedTimeline{
		Timeline:  *entry,
		DeletedAt: time.Now(),
	}); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.notify(entry, domain.ChangeDeleted, originClientID)
	return nil
}

func (s *TimelineService) notify(entry *domain.Timeline, op domain.ChangeOp, originClientID string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(domain.ChangeEvent{
		Collection: domain.CollectionTimeline,
		OwnerID:    entry.AuthorID,
		RecordID:   entry.ID,
		Op:         op,
	}, originClientID)
}
