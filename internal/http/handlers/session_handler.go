package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/domain"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/http/response"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/service"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/logger"
)

// SaveSession handles POST /api/whatsapp-auth/save
func (h *Handlers) SaveSession(w http.ResponseWriter, r *http.Request) {
	var req domain.SaveSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	err := h.sessionService.Save(r.Context(), &req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Session saved"})
	case errors.Is(err, service.ErrAccountNotFound):
		response.NotFound(w, "Account not found")
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(w, err.Error())
	default:
		logger.ErrorContext(r.Context(), "Failed to save session", "error", err)
		response.InternalError(w, "Error saving session")
	}
}

// SessionExists handles POST /api/whatsapp-auth/session-exists
func (h *Handlers) SessionExists(w http.ResponseWriter, r *http.Request) {
	var req domain.SessionLookupRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	exists, err := h.sessionService.Exists(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.BadRequest(w, err.Error())
			return
		}
		logger.ErrorContext(r.Context(), "Failed to check session", "error", err)
		response.InternalError(w, "Error checking session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

// VerifySession handles POST /api/whatsapp-auth/verify
func (h *Handlers) VerifySession(w http.ResponseWriter, r *http.Request) {
	var req domain.SessionLookupRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	valid, err := h.sessionService.Verify(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.BadRequest(w, err.Error())
			return
		}
		logger.ErrorContext(r.Context(), "Failed to verify session", "error", err)
		response.InternalError(w, "Error verifying session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

// DeleteSession handles DELETE /api/whatsapp-auth/{accountID}/{sessionName}
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	accountID, ok := urlParamInt64(r, "accountID")
	if !ok {
		response.BadRequest(w, "Invalid account id")
		return
	}
	sessionName := chi.URLParam(r, "sessionName")
	if sessionName == "" {
		response.BadRequest(w, "Session name is required")
		return
	}

	err := h.sessionService.Delete(r.Context(), accountID, sessionName)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Session deleted"})
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(w, "Session not found")
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(w, err.Error())
	default:
		logger.ErrorContext(r.Context(), "Failed to delete session", "error", err)
		response.InternalError(w, "Error deleting session")
	}
}
