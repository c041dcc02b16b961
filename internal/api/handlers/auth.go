package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/rally/internal/api/dto"
	"github.com/hugh/rally/internal/api/middleware"
	"github.com/hugh/rally/internal/auth"
	"github.com/hugh/rally/internal/events"
)

// EventEmitter hands events to the notification bus.
type EventEmitter interface {
	EmitAll(ctx context.Context, evs []events.Event)
}

type AuthHandler struct {
	authService auth.Authenticator
	events      EventEmitter
	logger      *slog.Logger
}

func NewAuthHandler(authService auth.Authenticator, emitter EventEmitter, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, events: emitter, logger: logger}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	reg, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	// The request context ends with the response; the bus outlives it.
	h.events.EmitAll(context.WithoutCancel(r.Context()), reg.Events)

	writeOK(w, "Account created successfully", reg.User)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Message: "Logged in successfully",
		Status:  http.StatusOK,
		Token:   resp.Token,
		User:    resp.User,
	})
}

// Verify handles GET /api/v1/auth/verify/{token}, the link sent by email.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.VerifyAccount(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeOK(w, "Account verified successfully", user)
}

// Me handles GET /api/v1/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.GetUserByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeOK(w, "", user)
}
