package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/rally/internal/api/dto"
	"github.com/hugh/rally/internal/api/middleware"
	"github.com/hugh/rally/internal/questions"
	"github.com/hugh/rally/internal/validation"
)

type AnswerHandler struct {
	questions *questions.Service
	users     UserFinder
	validator *validation.Validator
	logger    *slog.Logger
}

func NewAnswerHandler(questionService *questions.Service, users UserFinder, validator *validation.Validator, logger *slog.Logger) *AnswerHandler {
	return &AnswerHandler{
		questions: questionService,
		users:     users,
		validator: validator,
		logger:    logger,
	}
}

// List handles GET /api/v1/questions/{id}/answers
func (h *AnswerHandler) List(w http.ResponseWriter, r *http.Request) {
	p := paginationParams(r)

	list, total, err := h.questions.ListAnswers(r.Context(), idParam(r, "id"), p.Offset(), p.PerPage)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewPaginatedResponse(list, total, p))
}

// Create handles POST /api/v1/questions/{id}/answers
func (h *AnswerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.AnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(r.Context(), req.Fields(), validation.AnswerRules); err != nil {
		writeError(w, h.logger, err)
		return
	}

	question, err := h.questions.Find(r.Context(), idParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	user, err := h.users.GetUserByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	answer, err := h.questions.AddAnswer(r.Context(), req.Body.Value, question, user)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeOK(w, "Answer added successfully", answer)
}

// Update handles PUT /api/v1/answers/{id}
func (h *AnswerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.AnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(r.Context(), req.Fields(), validation.AnswerRules); err != nil {
		writeError(w, h.logger, err)
		return
	}

	answer, err := h.questions.UpdateAnswer(r.Context(), idParam(r, "id"), req.Body.Value, middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeOK(w, "Answer updated successfully", answer)
}

// Delete handles DELETE /api/v1/answers/{id}
func (h *AnswerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.questions.RemoveAnswer(r.Context(), idParam(r, "id"), middleware.GetUserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeOK(w, "Answer deleted successfully", nil)
}

// MarkBest handles POST /api/v1/answers/{id}/best
func (h *AnswerHandler) MarkBest(w http.ResponseWriter, r *http.Request) {
	answer, err := h.questions.MarkBestAnswer(r.Context(), idParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeOK(w, "Answer marked as best", answer)
}
