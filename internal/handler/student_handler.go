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

type StudentHandler struct {
	service  StudentService
	validate *validator.Validate
}

func NewStudentHandler(service StudentService) *StudentHandler {
	return &StudentHandler{
		service:  service,
		validate: validator.New(),
	}
}

// List serves one roster page as a bare array, or every student carrying all
// of the requested tags.
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	students, err := h.service.List(r.Context(), middleware.GetUserID(r), page, tagsParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.List(w, students)
}

func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	student, err := h.service.Create(r.Context(), middleware.GetUserID(r), middleware.GetClientID(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, student)
}

func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	student, err := h.service.Get(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, student)
}

func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	student, err := h.service.Update(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"], middleware.GetClientID(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, student)
}

func (h *StudentHandler) ToggleArchive(w http.ResponseWriter, r *http.Request) {
	student, err := h.service.ToggleArchive(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"], middleware.GetClientID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, student)
}

func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"], middleware.GetClientID(r)); err != nil {
		writeError(w, r, err)
		return
	}

	response.NoContent(w)
}
