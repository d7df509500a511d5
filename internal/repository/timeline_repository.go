package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"classboard/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

var ErrTimelineNotFound = errors.New("timeline entry not found")

type TimelineRepository interface {
	Create(ctx context.Context, entry *domain.Timeline) error
	FindByID(ctx context.Context, id string) (*domain.Timeline, error)
	List(ctx context.Context, filter domain.TimelineFilter) ([]*domain.Timeline, error)
	Tags(ctx context.Context, authorID string) ([]string, error)
	Delete(ctx context.Context, id string) error
}

type timelineDoc struct {
	ID         string   `json:"_id"`
	Rev        string   `json:"_rev,omitempty"`
	DocType    string   `json:"doc_type"`
	AuthorID   string   `json:"author_id"`
	AuthorName string   `json:"author_name"`
	MainText   string   `json:"main_text"`
	Length     string   `json:"length,omitempty"`
	Photo      string   `json:"photo,omitempty"`
	Links      []string `json:"links,omitempty"`
	Tags       []string `json:"tags"`
	URLSlug    string   `json:"url_slug"`
	CreatedAt  string   `json:"created_at"`
}

type CouchDBTimelineRepository struct {
	db *kivik.DB
}

func NewTimelineRepository(client *kivik.Client, dbName string) *CouchDBTimelineRepository {
	return &CouchDBTimelineRepository{
		db: client.DB(dbName),
	}
}

func timelineDocID(id string) string {
	return fmt.Sprintf("%s:%s", docTypeTimeline, id)
}

func (r *CouchDBTimelineRepository) Create(ctx context.Context, entry *domain.Timeline) error {
	doc := timelineToDoc(entry)

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		return fmt.Errorf("failed to create timeline entry: %w", err)
	}

	return nil
}

func (r *CouchDBTimelineRepository) FindByID(ctx context.Context, id string) (*domain.Timeline, error) {
	doc, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return docToTimeline(doc)
}

// List returns one page of an author's entries, newest first. With tags set
// it returns every entry carrying all of them, unpaged.
func (r *CouchDBTimelineRepository) List(ctx context.Context, filter domain.TimelineFilter) ([]*domain.Timeline, error) {
	selector := map[string]interface{}{
		"doc_type":  docTypeTimeline,
		"author_id": filter.AuthorID,
	}

	pageSize := filter.PageSize
	if len(filter.Tags) > 0 {
		selector["tags"] = map[string]interface{}{"$all": filter.Tags}
		pageSize = 0
	}

	rows := r.db.Find(ctx, pageQuery(selector, filter.Page, pageSize))
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list timeline: %w", err)
	}
	defer rows.Close()

	entries := []*domain.Timeline{}
	for rows.Next() {
		var doc timelineDoc
		if err := rows.ScanDoc(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan timeline entry: %w", err)
		}

		entry, err := docToTimeline(&doc)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Tags returns the sorted set of tags an author has used.
func (r *CouchDBTimelineRepository) Tags(ctx context.Context, authorID string) ([]string, error) {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type":  docTypeTimeline,
			"author_id": authorID,
		},
		"fields": []string{"tags"},
		"limit":  unpagedLimit,
	}

	rows := r.db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query timeline tags: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var doc struct {
			Tags []string `json:"tags"`
		}
		if err := rows.ScanDoc(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan timeline tags: %w", err)
		}
		for _, t := range doc.Tags {
			seen[t] = struct{}{}
		}
	}

	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	return tags, rows.Err()
}

func (r *CouchDBTimelineRepository) Delete(ctx context.Context, id string) error {
	doc, err := r.get(ctx, id)
	if err != nil {
		return err
	}

	if _, err := r.db.Delete(ctx, doc.ID, doc.Rev); err != nil {
		return fmt.Errorf("failed to delete timeline entry: %w", err)
	}

	return nil
}

func (r *CouchDBTimelineRepository) get(ctx context.Context, id string) (*timelineDoc, error) {
	var doc timelineDoc
	if err := r.db.Get(ctx, timelineDocID(id)).ScanDoc(&doc); err != nil {
		if isNotFound(err) {
			return nil, ErrTimelineNotFound
		}
		return nil, fmt.Errorf("failed to get timeline entry: %w", err)
	}
	return &doc, nil
}

func timelineToDoc(t *domain.Timeline) *timelineDoc {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}

	return &timelineDoc{
		ID:         timelineDocID(t.ID),
		DocType:    docTypeTimeline,
		AuthorID:   t.AuthorID,
		AuthorName: t.AuthorName,
		MainText:   t.MainText,
		Length:     t.Length,
		Photo:      t.Photo,
		Links:      t.Links,
		Tags:       tags,
		URLSlug:    t.URLSlug,
		CreatedAt:  formatTime(t.CreatedAt),
	}
}

func docToTimeline(doc *timelineDoc) (*domain.Timeline, error) {
	createdAt, err := parseTime(doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return &domain.Timeline{
		ID:         trimDocID(docTypeTimeline, doc.ID),
		AuthorID:   doc.AuthorID,
		AuthorName: doc.AuthorName,
		MainText:   doc.MainText,
		Length:     doc.Length,
		Photo:      doc.Photo,
		Links:      doc.Links,
		Tags:       doc.Tags,
		URLSlug:    doc.URLSlug,
		CreatedAt:  createdAt,
	}, nil
}
