package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/rally/internal/api/dto"
	"github.com/hugh/rally/internal/api/middleware"
	"github.com/hugh/rally/internal/channels"
	"github.com/hugh/rally/internal/database/models"
	"github.com/hugh/rally/internal/questions"
	"github.com/hugh/rally/internal/validation"
)

// UserFinder loads the authenticated user.
type UserFinder interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

type QuestionHandler struct {
	questions *questions.Service
	channels  *channels.Service
	users     UserFinder
	validator *validation.Validator
	logger    *slog.Logger
}

func NewQuestionHandler(
	questionService *questions.Service,
	channelService *channels.Service,
	users UserFinder,
	validator *validation.Validator,
	logger *slog.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		questions: questionService,
		channels:  channelService,
		users:     users,
		validator: validator,
		logger:    logger,
	}
}

// List handles GET /api/v1/questions
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	p := paginationParams(r)

	list, total, err := h.questions.List(r.Context(), p.Offset(), p.PerPage)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewPaginatedResponse(list, total, p))
}

// Create handles POST /api/v1/questions
func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.QuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(r.Context(), req.Fields(), validation.QuestionRules); err != nil {
		writeError(w, h.logger, err)
		return
	}

	channel, err := h.channels.Find(r.Context(), req.Channel.Uint())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	user, err := h.users.GetUserByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	question, err := h.questions.Add(r.Context(), req.Title.Value, req.Body.Value, channel, user)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeOK(w, "Question created successfully", question)
}

// Show handles GET /api/v1/questions/{slug}
func (h *QuestionHandler) Show(w http.ResponseWriter, r *http.Request) {
	question, err := h.questions.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeOK(w, "", question)
}

// Replace handles PUT /api/v1/questions/{id}. Every field is required.
func (h *QuestionHandler) Replace(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, validation.QuestionRules)
}

// Patch handles PATCH /api/v1/questions/{id}. Fields left out are kept.
func (h *QuestionHandler) Patch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, validation.QuestionPatchRules)
}

// update checks ownership before looking at the payload, so a non-owner is
// refused whatever the body holds.
func (h *QuestionHandler) update(w http.ResponseWriter, r *http.Request, rules validation.Rules) {
	id := idParam(r, "id")
	userID := middleware.GetUserID(r.Context())
	if _, err := h.questions.FindOwned(r.Context(), id, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req dto.QuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if err := h.validator.Validate(r.Context(), req.Fields(), rules); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var channel *models.Channel
	if req.Channel.Set {
		found, err := h.channels.Find(r.Context(), req.Channel.Uint())
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		channel = found
	}

	question, err := h.questions.Update(r.Context(), id, questions.QuestionUpdate{
		Title: req.Title.Ptr(),
		Body:  req.Body.Ptr(),
	}, userID, channel)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeOK(w, "Question updated successfully", question)
}

// Delete handles DELETE /api/v1/questions/{id}
func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.questions.Remove(r.Context(), idParam(r, "id"), middleware.GetUserID(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeOK(w, "Question deleted successfully", nil)
}
