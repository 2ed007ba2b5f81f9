package handlers

import (
	"errors"
	"net/http"

	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/domain"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/http/response"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/service"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/logger"
)

// SendMagicLink handles POST /api/auth/send-magic-link
func (h *Handlers) SendMagicLink(w http.ResponseWriter, r *http.Request) {
	var req domain.SendMagicLinkRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	err := h.authService.SendMagicLink(r.Context(), &req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Magic link sent"})
	case errors.Is(err, service.ErrAccountNotFound):
		response.NotFound(w, "Account not found")
	case errors.Is(err, service.ErrRateLimited):
		response.RateLimit(w, "Too many magic link requests. Please try again later.")
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(w, err.Error())
	default:
		logger.ErrorContext(r.Context(), "Failed to send magic link", "error", err)
		response.WriteError(w, http.StatusInternalServerError, "Failed to send magic link email", response.CodeDependency)
	}
}

// VerifyToken handles POST /api/auth/verify-token
func (h *Handlers) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.authService.VerifyToken(r.Context(), &req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, service.ErrInvalidToken):
		response.WriteError(w, http.StatusUnauthorized, "Invalid or expired token", response.CodeInvalidToken)
	case errors.Is(err, service.ErrAccountNotFound):
		response.NotFound(w, "Account not found")
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(w, err.Error())
	default:
		logger.ErrorContext(r.Context(), "Failed to verify token", "error", err)
		response.InternalError(w, "Failed to verify token")
	}
}
