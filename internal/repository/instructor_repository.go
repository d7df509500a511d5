package repository

import (
	"context"
	"errors"
	"fmt"

	"classboard/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

var ErrInstructorNotFound = errors.New("instructor not found")

type InstructorRepository interface {
	Create(ctx context.Context, instructor *domain.Instructor) error
	FindByEmail(ctx context.Context, email string) (*domain.Instructor, error)
	FindByID(ctx context.Context, id string) (*domain.Instructor, error)
	Update(ctx context.Context, instructor *domain.Instructor) error
	EmailExists(ctx context.Context, email string) (bool, error)
}

type instructorDoc struct {
	ID        string `json:"_id"`
	Rev       string `json:"_rev,omitempty"`
	DocType   string `json:"doc_type"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Image     string `json:"image,omitempty"`
	Password  string `json:"password"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type instructorRepository struct {
	db *kivik.DB
}

func NewInstructorRepository(client *kivik.Client, dbName string) InstructorRepository {
	return &instructorRepository{
		db: client.DB(dbName),
	}
}

func instructorDocID(id string) string {
	return fmt.Sprintf("%s:%s", docTypeInstructor, id)
}

func (r *instructorRepository) Create(ctx context.Context, instructor *domain.Instructor) error {
	doc := instructorToDoc(instructor)

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		return fmt.Errorf("failed to create instructor: %w", err)
	}

	return nil
}

func (r *instructorRepository) FindByEmail(ctx context.Context, email string) (*domain.Instructor, error) {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type": docTypeInstructor,
			"email":    email,
		},
		"limit": 1,
	}

	rows := r.db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query instructor by email: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrInstructorNotFound
	}

	var doc instructorDoc
	if err := rows.ScanDoc(&doc); err != nil {
		return nil, fmt.Errorf("failed to scan instructor: %w", err)
	}

	return docToInstructor(&doc)
}

func (r *instructorRepository) FindByID(ctx context.Context, id string) (*domain.Instructor, error) {
	var doc instructorDoc
	if err := r.db.Get(ctx, instructorDocID(id)).ScanDoc(&doc); err != nil {
		if isNotFound(err) {
			return nil, ErrInstructorNotFound
		}
		return nil, fmt.Errorf("failed to find instructor by ID: %w", err)
	}

	return docToInstructor(&doc)
}

func (r *instructorRepository) Update(ctx context.Context, instructor *domain.Instructor) error {
	var existing instructorDoc
	if err := r.db.Get(ctx, instructorDocID(instructor.ID)).ScanDoc(&existing); err != nil {
		if isNotFound(err) {
			return ErrInstructorNotFound
		}
		return fmt.Errorf("failed to get instructor for update: %w", err)
	}

	doc := instructorToDoc(instructor)
	doc.Rev = existing.Rev
	if doc.Password == "" {
		doc.Password = existing.Password
	}

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		return fmt.Errorf("failed to update instructor: %w", err)
	}

	return nil
}

func (r *instructorRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrInstructorNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func instructorToDoc(i *domain.Instructor) *instructorDoc {
	return &instructorDoc{
		ID:        instructorDocID(i.ID),
		DocType:   docTypeInstructor,
		Name:      i.Name,
		Email:     i.Email,
		Image:     i.Image,
		Password:  i.Password,
		CreatedAt: formatTime(i.CreatedAt),
		UpdatedAt: formatTime(i.UpdatedAt),
	}
}

func docToInstructor(doc *instructorDoc) (*domain.Instructor, error) {
	createdAt, err := parseTime(doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	updatedAt, err := parseTime(doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return &domain.Instructor{
		ID:        trimDocID(docTypeInstructor, doc.ID),
		Name:      doc.Name,
		Email:     doc.Email,
		Image:     doc.Image,
		Password:  doc.Password,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
