package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"classboard/internal/repository"
	"classboard/internal/service"
	"classboard/pkg/hash"
	"classboard/pkg/response"
)

var errInvalidPage = errors.New("page must be a non-negative integer")

// writeError maps service and repository errors onto HTTP statuses. Anything
// unrecognised is logged and reported as a 500 without its message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrStudentNotFound),
		errors.Is(err, repository.ErrTimelineNotFound),
		errors.Is(err, repository.ErrInstructorNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		response.Forbidden(w, err.Error())
	case errors.Is(err, service.ErrDuplicateStudent):
		response.Conflict(w, err.Error())
	case errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, hash.ErrPasswordTooShort),
		errors.Is(err, errInvalidPage):
		response.BadRequest(w, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		response.Unauthorized(w, err.Error())
	default:
		log.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
		response.InternalError(w, "Internal server error")
	}
}

// pageParam reads ?page=N. A missing page is page 0.
func pageParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 0, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 0 {
		return 0, errInvalidPage
	}
	return page, nil
}

// tagsParam accepts repeated ?tags=a&tags=b as well as ?tags=a,b.
func tagsParam(r *http.Request) []string {
	var tags []string
	for _, raw := range r.URL.Query()["tags"] {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}
