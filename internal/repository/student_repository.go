package repository

import (
	"context"
	"errors"
	"fmt"

	"classboard/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrStudentExists   = errors.New("student already exists")
)

type StudentRepository interface {
	Create(ctx context.Context, student *domain.Student) error
	FindByID(ctx context.Context, id string) (*domain.Student, error)
	FindByName(ctx context.Context, instructorID, name string) (*domain.Student, error)
	List(ctx context.Context, filter domain.StudentFilter) ([]*domain.Student, error)
	Update(ctx context.Context, student *domain.Student) error
	Delete(ctx context.Context, id string) error
}

type studentDoc struct {
	ID           string   `json:"_id"`
	Rev          string   `json:"_rev,omitempty"`
	DocType      string   `json:"doc_type"`
	InstructorID string   `json:"instructor_id"`
	Name         string   `json:"name"`
	Email        string   `json:"email,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Details      string   `json:"details,omitempty"`
	Image        string   `json:"image,omitempty"`
	Tags         []string `json:"tags"`
	IsArchived   *bool    `json:"is_archived,omitempty"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

type CouchDBStudentRepository struct {
	db *kivik.DB
}

func NewStudentRepository(client *kivik.Client, dbName string) *CouchDBStudentRepository {
	return &CouchDBStudentRepository{
		db: client.DB(dbName),
	}
}

func studentDocID(id string) string {
	return fmt.Sprintf("%s:%s", docTypeStudent, id)
}

func (r *CouchDBStudentRepository) Create(ctx context.Context, student *domain.Student) error {
	doc := studentToDoc(student)

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		if isConflict(err) {
			return ErrStudentExists
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

func (r *CouchDBStudentRepository) FindByID(ctx context.Context, id string) (*domain.Student, error) {
	doc, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return docToStudent(doc)
}

func (r *CouchDBStudentRepository) FindByName(ctx context.Context, instructorID, name string) (*domain.Student, error) {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type":      docTypeStudent,
			"instructor_id": instructorID,
			"name":          name,
		},
		"limit": 1,
	}

	rows := r.db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query student by name: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrStudentNotFound
	}

	var doc studentDoc
	if err := rows.ScanDoc(&doc); err != nil {
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}

	return docToStudent(&doc)
}

// List returns one page of the roster, newest first. A filter with tags
// ignores paging and returns every student carrying all of them.
func (r *CouchDBStudentRepository) List(ctx context.Context, filter domain.StudentFilter) ([]*domain.Student, error) {
	selector := map[string]interface{}{
		"doc_type":      docTypeStudent,
		"instructor_id": filter.InstructorID,
	}

	pageSize := filter.PageSize
	if len(filter.Tags) > 0 {
		selector["tags"] = map[string]interface{}{"$all": filter.Tags}
		pageSize = 0
	}

	rows := r.db.Find(ctx, pageQuery(selector, filter.Page, pageSize))
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	students := []*domain.Student{}
	for rows.Next() {
		var doc studentDoc
		if err := rows.ScanDoc(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}

		student, err := docToStudent(&doc)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}

	return students, rows.Err()
}

func (r *CouchDBStudentRepository) Update(ctx context.Context, student *domain.Student) error {
	existing, err := r.get(ctx, student.ID)
	if err != nil {
		return err
	}

	doc := studentToDoc(student)
	doc.Rev = existing.Rev

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}

	return nil
}

func (r *CouchDBStudentRepository) Delete(ctx context.Context, id string) error {
	doc, err := r.get(ctx, id)
	if err != nil {
		return err
	}

	if _, err := r.db.Delete(ctx, doc.ID, doc.Rev); err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}

	return nil
}

func (r *CouchDBStudentRepository) get(ctx context.Context, id string) (*studentDoc, error) {
	var doc studentDoc
	if err := r.db.Get(ctx, studentDocID(id)).ScanDoc(&doc); err != nil {
		if isNotFound(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &doc, nil
}

func studentToDoc(s *domain.Student) *studentDoc {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}

	return &studentDoc{
		ID:           studentDocID(s.ID),
		DocType:      docTypeStudent,
		InstructorID: s.InstructorID,
		Name:         s.Name,
		Email:        s.Email,
		Phone:        s.Phone,
		Details:      s.Details,
		Image:        s.Image,
		Tags:         tags,
		IsArchived:   s.IsArchived,
		CreatedAt:    formatTime(s.CreatedAt),
		UpdatedAt:    formatTime(s.UpdatedAt),
	}
}

func docToStudent(doc *studentDoc) (*domain.Student, error) {
	createdAt, err := parseTime(doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	updatedAt, err := parseTime(doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return &domain.Student{
		ID:           trimDocID(docTypeStudent, doc.ID),
		InstructorID: doc.InstructorID,
		Name:         doc.Name,
		Email:        doc.Email,
		Phone:        doc.Phone,
		Details:      doc.Details,
		Image:        doc.Image,
		Tags:         doc.Tags,
		IsArchived:   doc.IsArchived,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}
