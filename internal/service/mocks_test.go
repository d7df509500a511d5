package service

import (
	"context"
	"errors"
	"sort"

	"classboard/internal/domain"
	"classboard/internal/repository"
)

type mockInstructorRepository struct {
	instructors map[string]*domain.Instructor
}

func newMockInstructorRepository() *mockInstructorRepository {
	return &mockInstructorRepository{
		instructors: make(map[string]*domain.Instructor),
	}
}

func (m *mockInstructorRepository) Create(ctx context.Context, instructor *domain.Instructor) error {
	cp := *instructor
	m.instructors[instructor.ID] = &cp
	return nil
}

func (m *mockInstructorRepository) FindByEmail(ctx context.Context, email string) (*domain.Instructor, error) {
	for _, i := range m.instructors {
		if i.Email == email {
			cp := *i
			return &cp, nil
		}
	}
	return nil, repository.ErrInstructorNotFound
}

func (m *mockInstructorRepository) FindByID(ctx context.Context, id string) (*domain.Instructor, error) {
	if i, ok := m.instructors[id]; ok {
		cp := *i
		return &cp, nil
	}
	return nil, repository.ErrInstructorNotFound
}

func (m *mockInstructorRepository) Update(ctx context.Context, instructor *domain.Instructor) error {
	if _, ok := m.instructors[instructor.ID]; !ok {
		return repository.ErrInstructorNotFound
	}
	cp := *instructor
	m.instructors[instructor.ID] = &cp
	return nil
}

func (m *mockInstructorRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

type mockStudentRepo struct {
	students map[string]*domain.Student
	failNext error
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{
		students: make(map[string]*domain.Student),
	}
}

func (m *mockStudentRepo) Create(ctx context.Context, student *domain.Student) error {
	cp := *student
	m.students[student.ID] = &cp
	return nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*domain.Student, error) {
	if s, ok := m.students[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, repository.ErrStudentNotFound
}

func (m *mockStudentRepo) FindByName(ctx context.Context, instructorID, name string) (*domain.Student, error) {
	for _, s := range m.students {
		if s.InstructorID == instructorID && s.Name == name {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrStudentNotFound
}

func (m *mockStudentRepo) List(ctx context.Context, filter domain.StudentFilter) ([]*domain.Student, error) {
	var all []*domain.Student
	for _, s := range m.students {
		if s.InstructorID == filter.InstructorID && s.HasTags(filter.Tags) {
			cp := *s
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if len(filter.Tags) > 0 || filter.PageSize == 0 {
		return all, nil
	}
	return paginate(all, filter.Page, filter.PageSize), nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *domain.Student) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	if _, ok := m.students[student.ID]; !ok {
		return repository.ErrStudentNotFound
	}
	cp := *student
	m.students[student.ID] = &cp
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return repository.ErrStudentNotFound
	}
	delete(m.students, id)
	return nil
}

type mockTimelineRepo struct {
	entries map[string]*domain.Timeline
}

func newMockTimelineRepo() *mockTimelineRepo {
	return &mockTimelineRepo{
		entries: make(map[string]*domain.Timeline),
	}
}

func (m *mockTimelineRepo) Create(ctx context.Context, entry *domain.Timeline) error {
	cp := *entry
	m.entries[entry.ID] = &cp
	return nil
}

func (m *mockTimelineRepo) FindByID(ctx context.Context, id string) (*domain.Timeline, error) {
	if e, ok := m.entries[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, repository.ErrTimelineNotFound
}

func (m *mockTimelineRepo) List(ctx context.Context, filter domain.TimelineFilter) ([]*domain.Timeline, error) {
	var all []*domain.Timeline
	for _, e := range m.entries {
		if e.AuthorID == filter.AuthorID && e.HasTags(filter.Tags) {
			cp := *e
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if len(filter.Tags) > 0 || filter.PageSize == 0 {
		return all, nil
	}
	return paginate(all, filter.Page, filter.PageSize), nil
}

func (m *mockTimelineRepo) Tags(ctx context.Context, authorID string) ([]string, error) {
	seen := map[string]struct{}{}
	for _, e := range m.entries {
		if e.AuthorID != authorID {
			continue
		}
		for _, t := range e.Tags {
			seen[t] = struct{}{}
		}
	}
	var tags []string
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags, nil
}

func (m *mockTimelineRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.entries[id]; !ok {
		return repository.ErrTimelineNotFound
	}
	delete(m.entries, id)
	return nil
}

type mockArchiveRepo struct {
	students  []*domain.DeletedStudent
	timelines []*domain.DeletedTimeline
	fail      bool
}

func (m *mockArchiveRepo) SaveStudent(ctx context.Context, deleted *domain.DeletedStudent) error {
	if m.fail {
		return errors.New("archive unavailable")
	}
	m.students = append(m.students, deleted)
	return nil
}

func (m *mockArchiveRepo) SaveTimeline(ctx context.Context, deleted *domain.DeletedTimeline) error {
	if m.fail {
		return errors.New("archive unavailable")
	}
	m.timelines = append(m.timelines, deleted)
	return nil
}

type notification struct {
	event  domain.ChangeEvent
	origin string
}

type mockNotifier struct {
	sent []notification
}

func (m *mockNotifier) Notify(event domain.ChangeEvent, originClientID string) {
	m.sent = append(m.sent, notification{event: event, origin: originClientID})
}

func paginate[T any](all []T, page, size int) []T {
	start := page * size
	if start >= len(all) {
		return []T{}
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
