package handler

import (
	"encoding/json"
	"net/http"

	"classboard/internal/domain"
	"classboard/internal/middleware"
	"classboard/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type TimelineHandler struct {
	service  TimelineService
	validate *validator.Validate
}

func NewTimelineHandler(service TimelineService) *TimelineHandler {
	return &TimelineHandler{
		service:  service,
		validate: validator.New(),
	}
}

// List serves a page of ?author's feed (the caller's by default), or every
// entry carrying all of ?tags.
func (h *TimelineHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	authorID := r.URL.Query().Get("author")
	if authorID == "" {
		authorID = middleware.GetUserID(r)
	}

	entries, err := h.service.List(r.Context(), authorID, page, tagsParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.List(w, entries)
}

func (h *TimelineHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.Tags(r.Context(), middleware.GetUserID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.List(w, tags)
}

func (h *TimelineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTimelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	entry, err := h.service.Create(r.Context(), middleware.GetUserID(r), middleware.GetClientID(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, entry)
}

func (h *TimelineHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, entry)
}

func (h *TimelineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"], middleware.GetClientID(r)); err != nil {
		writeError(w, r, err)
		return
	}

	response.NoContent(w)
}
