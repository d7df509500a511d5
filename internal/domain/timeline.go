package domain

import "time"

type Timeline struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	MainText   string    `json:"main_text"`
	Length     string    `json:"length,omitempty"`
	Photo      string    `json:"photo,omitempty"`
	Links      []string  `json:"links,omitempty"`
	Tags       []string  `json:"tags"`
	URLSlug    string    `json:"url_slug"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecordID identifies the entry inside client-side list caches.
func (t Timeline) RecordID() string {
	return t.ID
}

func (t Timeline) HasTags(want []string) bool {
	return containsAll(t.Tags, want)
}

type CreateTimelineRequest struct {
	MainText string   `json:"main_text" validate:"required,max=10000"`
	Length   string   `json:"length" validate:"max=40"`
	Photo    string   `json:"photo" validate:"omitempty,url"`
	Links    []string `json:"links" validate:"dive,url"`
	Tags     []string `json:"tags" validate:"dive,min=1,max=40"`
}

type TimelineFilter struct {
	AuthorID string
	Tags     []string
	Page     int
	PageSize int
}
