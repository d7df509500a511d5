package repository

import (
	"context"
	"fmt"

	"classboard/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

// ArchiveRepository keeps copies of removed students and timeline entries.
type ArchiveRepository interface {
	SaveStudent(ctx context.Context, deleted *domain.DeletedStudent) error
	SaveTimeline(ctx context.Context, deleted *domain.DeletedTimeline) error
}

type deletedStudentDoc struct {
	studentDoc
	DeletedAt string `json:"deleted_at"`
}

type deletedTimelineDoc struct {
	timelineDoc
	DeletedAt string `json:"deleted_at"`
}

type archiveRepository struct {
	db *kivik.DB
}

func NewArchiveRepository(client *kivik.Client, dbName string) ArchiveRepository {
	return &archiveRepository{
		db: client.DB(dbName),
	}
}

func (r *archiveRepository) SaveStudent(ctx context.Context, deleted *domain.DeletedStudent) error {
	doc := deletedStudentDoc{
		studentDoc: *studentToDoc(&deleted.Student),
		DeletedAt:  formatTime(deleted.DeletedAt),
	}
	doc.ID = fmt.Sprintf("%s:%s:%d", docTypeDeletedStudent, deleted.ID, deleted.DeletedAt.UnixNano())
	doc.DocType = docTypeDeletedStudent

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		return fmt.Errorf("failed to archive student: %w", err)
	}

	return nil
}

func (r *archiveRepository) SaveTimeline(ctx context.Context, deleted *domain.DeletedTimeline) error {
	doc := deletedTimelineDoc{
		timelineDoc: *timelineToDoc(&deleted.Timeline),
		DeletedAt:   formatTime(deleted.DeletedAt),
	}
	doc.ID = fmt.Sprintf("%s:%s:%d", docTypeDeletedTimeline, deleted.ID, deleted.DeletedAt.UnixNano())
	doc.DocType = docTypeDeletedTimeline

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		return fmt.Errorf("failed to archive timeline entry: %w", err)
	}

	return nil
}
