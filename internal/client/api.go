package client

import (
	"context"
	"net/http"
	"net/url"

	"classboard/internal/domain"
)

func (c *Client) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.Instructor, error) {
	var instructor domain.Instructor
	if err := c.do(ctx, "register", http.MethodPost, "/auth/register", nil, req, &instructor); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// Login authenticates and keeps the access token for later calls.
func (c *Client) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	var resp domain.LoginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	c.token = resp.AccessToken
	return &resp, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*domain.TokenResponse, error) {
	var resp domain.TokenResponse
	req := &domain.RefreshTokenRequest{RefreshToken: refreshToken}
	if err := c.do(ctx, "refresh token", http.MethodPost, "/auth/refresh", nil, req, &resp); err != nil {
		return nil, err
	}
	c.token = resp.AccessToken
	return &resp, nil
}

func (c *Client) Me(ctx context.Context) (*domain.Instructor, error) {
	var instructor domain.Instructor
	if err := c.do(ctx, "get profile", http.MethodGet, "/instructors/me", nil, nil, &instructor); err != nil {
		return nil, err
	}
	return &instructor, nil
}

func (c *Client) UpdateMe(ctx context.Context, req *domain.UpdateInstructorRequest) (*domain.Instructor, error) {
	var instructor domain.Instructor
	if err := c.do(ctx, "update profile", http.MethodPut, "/instructors/me", nil, req, &instructor); err != nil {
		return nil, err
	}
	return &instructor, nil
}

func (c *Client) CreateStudent(ctx context.Context, req *domain.CreateStudentRequest) (*domain.Student, error) {
	var student domain.Student
	if err := c.do(ctx, "create student", http.MethodPost, "/students", nil, req, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

func (c *Client) GetStudent(ctx context.Context, id string) (*domain.Student, error) {
	var student domain.Student
	if err := c.do(ctx, "get student", http.MethodGet, "/students/"+url.PathEscape(id), nil, nil, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

func (c *Client) UpdateStudent(ctx context.Context, id string, req *domain.UpdateStudentRequest) (*domain.Student, error) {
	var student domain.Student
	if err := c.do(ctx, "update student", http.MethodPut, "/students/"+url.PathEscape(id), nil, req, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// ToggleArchive flips the archive flag and returns the server's copy.
func (c *Client) ToggleArchive(ctx context.Context, id string) (*domain.Student, error) {
	var student domain.Student
	if err := c.do(ctx, "toggle archive", http.MethodPatch, "/students/"+url.PathEscape(id)+"/archive", nil, nil, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

func (c *Client) DeleteStudent(ctx context.Context, id string) error {
	return c.do(ctx, "delete student", http.MethodDelete, "/students/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) CreateTimeline(ctx context.Context, req *domain.CreateTimelineRequest) (*domain.Timeline, error) {
	var entry domain.Timeline
	if err := c.do(ctx, "create timeline entry", http.MethodPost, "/timeline", nil, req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) GetTimeline(ctx context.Context, id string) (*domain.Timeline, error) {
	var entry domain.Timeline
	if err := c.do(ctx, "get timeline entry", http.MethodGet, "/timeline/"+url.PathEscape(id), nil, nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) DeleteTimeline(ctx context.Context, id string) error {
	return c.do(ctx, "delete timeline entry", http.MethodDelete, "/timeline/"+url.PathEscape(id), nil, nil, nil)
}

// TimelineTags lists the categories used in the caller's feed.
func (c *Client) TimelineTags(ctx context.Context) ([]string, error) {
	var tags []string
	if err := c.do(ctx, "list timeline tags", http.MethodGet, "/timeline/tags", nil, nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
