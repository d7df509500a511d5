package domain

import "time"

type Student struct {
	ID           string    `json:"id"`
	InstructorID string    `json:"instructor_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Details      string    `json:"details,omitempty"`
	Image        string    `json:"image,omitempty"`
	Tags         []string  `json:"tags"`
	IsArchived   *bool     `json:"is_archived,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RecordID identifies the student inside client-side list caches.
func (s Student) RecordID() string {
	return s.ID
}

// Archived treats a missing flag as not archived.
func (s Student) Archived() bool {
	return s.IsArchived != nil && *s.IsArchived
}

// ToggleArchived returns a copy with the archive flag flipped. A student that
// never had the flag set becomes archived.
func ToggleArchived(s Student) Student {
	next := true
	if s.IsArchived != nil {
		next = !*s.IsArchived
	}
	s.IsArchived = &next
	return s
}

// HasTags reports whether every tag in want is present on the student.
func (s Student) HasTags(want []string) bool {
	return containsAll(s.Tags, want)
}

type CreateStudentRequest struct {
	Name    string   `json:"name" validate:"required,min=1,max=120"`
	Email   string   `json:"email" validate:"omitempty,email"`
	Phone   string   `json:"phone" validate:"omitempty,max=32"`
	Details string   `json:"details" validate:"max=2000"`
	Image   string   `json:"image" validate:"omitempty,url"`
	Tags    []string `json:"tags" validate:"dive,min=1,max=40"`
}

type UpdateStudentRequest struct {
	Name    *string  `json:"name" validate:"omitempty,min=1,max=120"`
	Email   *string  `json:"email" validate:"omitempty,email"`
	Phone   *string  `json:"phone" validate:"omitempty,max=32"`
	Details *string  `json:"details" validate:"omitempty,max=2000"`
	Image   *string  `json:"image" validate:"omitempty,url"`
	Tags    []string `json:"tags" validate:"omitempty,dive,min=1,max=40"`
}

type StudentFilter struct {
	InstructorID string
	Tags         []string
	Page         int
	PageSize     int
}

func containsAll(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, t := range have {
		set[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}
