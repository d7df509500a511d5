package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"classboard/internal/domain"
	"classboard/internal/repository"
)

func seedStudents(repo *mockStudentRepo, instructorID string, n int) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		repo.students[fmt.Sprintf("s-%02d", i)] = &domain.Student{
			ID:           fmt.Sprintf("s-%02d", i),
			InstructorID: instructorID,
			Name:         fmt.Sprintf("Student %02d", i),
			Tags:         []string{"all"},
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
	}
}

func TestStudentService_List(t *testing.T) {
	repo := newMockStudentRepo()
	seedStudents(repo, "inst-1", 23)
	repo.students["tagged"] = &domain.Student{
		ID:           "tagged",
		InstructorID: "inst-1",
		Name:         "Tagged",
		Tags:         []string{"all", "beginner", "evening"},
		CreatedAt:    time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	service := NewStudentService(repo, &mockArchiveRepo{}, nil, 10)
	ctx := context.Background()

	tests := []struct {
		name    string
		page    int
		tags    []string
		wantLen int
	}{
		{name: "first page", page: 0, wantLen: 10},
		{name: "last partial page", page: 2, wantLen: 4},
		{name: "past the end", page: 3, wantLen: 0},
		{name: "negative page is first page", page: -1, wantLen: 10},
		{name: "tag filter is unpaged", page: 0, tags: []string{"all"}, wantLen: 24},
		{name: "tag filter requires every tag", tags: []string{"beginner", "evening"}, wantLen: 1},
		{name: "tag filter with no match", tags: []string{"beginner", "morning"}, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			students, err := service.List(ctx, "inst-1", tt.page, tt.tags)
			if err != nil {
				t.Fatalf("List() unexpected error = %v", err)
			}
			if len(students) != tt.wantLen {
				t.Errorf("List() returned %d students, want %d", len(students), tt.wantLen)
			}
		})
	}

	t.Run("newest first", func(t *testing.T) {
		students, _ := service.List(ctx, "inst-1", 0, nil)
		if students[0].ID != "s-22" {
			t.Errorf("List() first = %s, want s-22", students[0].ID)
		}
	})

	t.Run("other instructors see nothing", func(t *testing.T) {
		students, _ := service.List(ctx, "inst-2", 0, nil)
		if len(students) != 0 {
			t.Errorf("List() returned %d students for another instructor", len(students))
		}
	})
}

func TestStudentService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		req     *domain.CreateStudentRequest
		wantErr error
	}{
		{
			name: "creates student",
			req:  &domain.CreateStudentRequest{Name: "  Ana Gomez ", Tags: []string{"a", " a", "b", ""}},
		},
		{
			name:    "duplicate name",
			req:     &domain.CreateStudentRequest{Name: "Existing"},
			wantErr: ErrDuplicateStudent,
		},
		{
			name:    "blank name",
			req:     &domain.CreateStudentRequest{Name: "   "},
			wantErr: ErrNameRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockStudentRepo()
			repo.students["existing"] = &domain.Student{ID: "existing", InstructorID: "inst-1", Name: "Existing"}
			notifier := &mockNotifier{}
			service := NewStudentService(repo, &mockArchiveRepo{}, notifier, 10)

			student, err := service.Create(ctx, "inst-1", "client-a", tt.req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
				}
				if len(notifier.sent) != 0 {
					t.Error("Create() notified on failure")
				}
				return
			}

			if err != nil {
				t.Fatalf("Create() unexpected error = %v", err)
			}
			if student.Name != "Ana Gomez" {
				t.Errorf("Create() name = %q, want trimmed", student.Name)
			}
			if len(student.Tags) != 2 {
				t.Errorf("Create() tags = %v, want [a b]", student.Tags)
			}
			if student.Archived() {
				t.Error("Create() new student should not be archived")
			}
			if _, ok := repo.students[student.ID]; !ok {
				t.Error("Create() student not stored")
			}
			if len(notifier.sent) != 1 || notifier.sent[0].origin != "client-a" {
				t.Fatalf("Create() notifications = %+v", notifier.sent)
			}
			if ev := notifier.sent[0].event; ev.Collection != domain.CollectionStudents || ev.Op != domain.ChangeCreated {
				t.Errorf("Create() event = %+v", ev)
			}
		})
	}

	t.Run("same name for another instructor is allowed", func(t *testing.T) {
		repo := newMockStudentRepo()
		repo.students["existing"] = &domain.Student{ID: "existing", InstructorID: "inst-1", Name: "Existing"}
		service := NewStudentService(repo, &mockArchiveRepo{}, nil, 10)

		if _, err := service.Create(ctx, "inst-2", "", &domain.CreateStudentRequest{Name: "Existing"}); err != nil {
			t.Errorf("Create() unexpected error = %v", err)
		}
	})
}

func TestStudentService_Update(t *testing.T) {
	ctx := context.Background()
	newName := "Renamed"
	taken := "Taken"
	details := "Prefers mornings"

	tests := []struct {
		name       string
		instructor string
		req        *domain.UpdateStudentRequest
		wantErr    error
	}{
		{
			name:       "partial update",
			instructor: "inst-1",
			req:        &domain.UpdateStudentRequest{Name: &newName, Details: &details},
		},
		{
			name:       "name collides with another student",
			instructor: "inst-1",
			req:        &domain.UpdateStudentRequest{Name: &taken},
			wantErr:    ErrDuplicateStudent,
		},
		{
			name:       "another instructor",
			instructor: "inst-2",
			req:        &domain.UpdateStudentRequest{Name: &newName},
			wantErr:    ErrAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockStudentRepo()
			repo.students["s1"] = &domain.Student{ID: "s1", InstructorID: "inst-1", Name: "Original", Email: "o@example.com"}
			repo.students["s2"] = &domain.Student{ID: "s2", InstructorID: "inst-1", Name: "Taken"}
			service := NewStudentService(repo, &mockArchiveRepo{}, nil, 10)

			student, err := service.Update(ctx, tt.instructor, "s1", "", tt.req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Update() error = %v, want %v", err, tt.wantErr)
				}
				if repo.students["s1"].Name != "Original" {
					t.Error("Update() modified the stored student on failure")
				}
				return
			}

			if err != nil {
				t.Fatalf("Update() unexpected error = %v", err)
			}
			if student.Name != newName || student.Details != details {
				t.Errorf("Update() = %+v", student)
			}
			if student.Email != "o@example.com" {
				t.Error("Update() cleared a field that was not sent")
			}
		})
	}
}

func TestStudentService_ToggleArchive(t *testing.T) {
	repo := newMockStudentRepo()
	repo.students["s1"] = &domain.Student{ID: "s1", InstructorID: "inst-1", Name: "Ana"}
	notifier := &mockNotifier{}
	service := NewStudentService(repo, &mockArchiveRepo{}, notifier, 10)
	ctx := context.Background()

	for i, want := range []bool{true, false, true} {
		student, err := service.ToggleArchive(ctx, "inst-1", "s1", "client-a")
		if err != nil {
			t.Fatalf("ToggleArchive() #%d unexpected error = %v", i, err)
		}
		if student.Archived() != want {
			t.Errorf("ToggleArchive() #%d archived = %v, want %v", i, student.Archived(), want)
		}
		if repo.students["s1"].Archived() != want {
			t.Errorf("ToggleArchive() #%d stored archived = %v, want %v", i, repo.students["s1"].Archived(), want)
		}
	}

	if len(notifier.sent) != 3 {
		t.Errorf("ToggleArchive() sent %d notifications, want 3", len(notifier.sent))
	}

	t.Run("update failure leaves the flag", func(t *testing.T) {
		repo.failNext = errors.New("couch unavailable")
		if _, err := service.ToggleArchive(ctx, "inst-1", "s1", ""); err == nil {
			t.Fatal("ToggleArchive() expected error")
		}
		if !repo.students["s1"].Archived() {
			t.Error("ToggleArchive() changed the stored flag on failure")
		}
	})
}

func TestStudentService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("archives then removes", func(t *testing.T) {
		repo := newMockStudentRepo()
		repo.students["s1"] = &domain.Student{ID: "s1", InstructorID: "inst-1", Name: "Ana"}
		archive := &mockArchiveRepo{}
		notifier := &mockNotifier{}
		service := NewStudentService(repo, archive, notifier, 10)

		if err := service.Delete(ctx, "inst-1", "s1", "client-a"); err != nil {
			t.Fatalf("Delete() unexpected error = %v", err)
		}
		if _, ok := repo.students["s1"]; ok {
			t.Error("Delete() student still stored")
		}
		if len(archive.students) != 1 || archive.students[0].ID != "s1" {
			t.Errorf("Delete() archive = %+v", archive.students)
		}
		if archive.students[0].DeletedAt.IsZero() {
			t.Error("Delete() archive copy has no deletion time")
		}
		if len(notifier.sent) != 1 || notifier.sent[0].event.Op != domain.ChangeDeleted {
			t.Errorf("Delete() notifications = %+v", notifier.sent)
		}
	})

	t.Run("archive failure keeps the student", func(t *testing.T) {
		repo := newMockStudentRepo()
		repo.students["s1"] = &domain.Student{ID: "s1", InstructorID: "inst-1", Name: "Ana"}
		service := NewStudentService(repo, &mockArchiveRepo{fail: true}, nil, 10)

		if err := service.Delete(ctx, "inst-1", "s1", ""); err == nil {
			t.Fatal("Delete() expected error")
		}
		if _, ok := repo.students["s1"]; !ok {
			t.Error("Delete() removed the student although archiving failed")
		}
	})

	t.Run("unknown student", func(t *testing.T) {
		service := NewStudentService(newMockStudentRepo(), &mockArchiveRepo{}, nil, 10)
		if err := service.Delete(ctx, "inst-1", "missing", ""); !errors.Is(err, repository.ErrStudentNotFound) {
			t.Errorf("Delete() error = %v, want ErrStudentNotFound", err)
		}
	})
}
