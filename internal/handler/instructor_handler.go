package handler

import (
	"encoding/json"
	"net/http"

	"classboard/internal/domain"
	"classboard/internal/middleware"
	"classboard/pkg/response"

	"github.com/go-playground/validator/v10"
)

type InstructorHandler struct {
	instructorService InstructorService
	validator         *validator.Validate
}

func NewInstructorHandler(instructorService InstructorService) *InstructorHandler {
	return &InstructorHandler{
		instructorService: instructorService,
		validator:         validator.New(),
	}
}

func (h *InstructorHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	instructorID := middleware.GetUserID(r)
	if instructorID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	instructor, err := h.instructorService.GetByID(r.Context(), instructorID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, instructor)
}

func (h *InstructorHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	instructorID := middleware.GetUserID(r)
	if instructorID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req domain.UpdateInstructorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	instructor, err := h.instructorService.UpdateProfile(r.Context(), instructorID, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, instructor)
}
